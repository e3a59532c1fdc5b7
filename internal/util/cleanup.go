package util

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"sync"
	"syscall"
)

// Pending tracks chapter folders that are still being written, so an
// interrupted run doesn't leave half a chapter behind.
type Pending struct {
	mu   sync.Mutex
	dirs map[string]struct{}
}

func (p *Pending) Add(dir string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dirs == nil {
		p.dirs = make(map[string]struct{})
	}
	p.dirs[dir] = struct{}{}
}

func (p *Pending) Done(dir string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.dirs, dir)
}

func (p *Pending) Dirs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, 0, len(p.dirs))
	for d := range p.dirs {
		out = append(out, d)
	}
	sort.Strings(out)

	return out
}

// Cleanup removes every pending folder and then its parent if that ended
// up empty. It returns the folders removed.
func (p *Pending) Cleanup() []string {
	var removed []string
	for _, dir := range p.Dirs() {
		if err := os.RemoveAll(dir); err != nil {
			fmt.Printf("Error cleaning up %s: %v\n", dir, err)
			continue
		}
		removed = append(removed, dir)
		p.Done(dir)
		RemoveIfEmpty(filepath.Dir(dir))
	}

	return removed
}

func SetupInterruptHandler(p *Pending, root string) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		fmt.Println("\nInterrupt received. Cleaning up...")

		for _, dir := range p.Cleanup() {
			fmt.Printf("Removed %s\n", dir)
		}
		RemoveIfEmpty(root)
		fmt.Println("\nExiting due to interrupt.")

		os.Exit(1)
	}()
}

// RemoveIfEmpty deletes dir when it has no entries. It reports whether dir
// was removed.
func RemoveIfEmpty(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return false
	}

	return os.Remove(dir) == nil
}
