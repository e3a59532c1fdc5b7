package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/brogergvhs/pagepal/internal/config"
	"github.com/brogergvhs/pagepal/internal/util"

	"github.com/spf13/cobra"
)

var (
	flagAssembleWorkers int
	flagAssembleSkip    bool
)

func init() {
	assembleCmd := &cobra.Command{
		Use:   "assemble <url>",
		Short: "Start a new book from a chapter page and add it to the library",
		Args:  cobra.ExactArgs(1),
		RunE:  runAssemble,
	}

	assembleCmd.Flags().IntVar(&flagAssembleWorkers, "image-workers", 0, "parallel image downloads")
	assembleCmd.Flags().BoolVar(&flagAssembleSkip, "skip-broken", false, "skip failed images instead of failing the chapter")

	rootCmd.AddCommand(assembleCmd)
}

func runAssemble(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(config.Options{
		ImageWorkers: flagAssembleWorkers,
		SkipBroken:   flagAssembleSkip,
	}, "")
	if err != nil {
		return err
	}

	util.SetupInterruptHandler(&util.Pending{}, rt.cfg.LibraryDir)

	start := time.Now()
	title, b, err := rt.ret.AssembleNewBook(context.Background(), args[0])
	if err != nil {
		return err
	}

	if err := shelve(rt.cfg, title, b); err != nil {
		return err
	}

	ch := b.CurrentChapter()
	fmt.Fprintf(cmd.OutOrStdout(), "Added %q (%d pages) from %s in %s\n",
		title, ch.Count(), b.Source, time.Since(start).Round(time.Millisecond))

	return nil
}
