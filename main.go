package main

import "github.com/brogergvhs/pagepal/cmd"

func main() {
	cmd.Execute()
}
