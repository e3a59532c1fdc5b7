package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/brogergvhs/pagepal/internal/library"

	"github.com/spf13/cobra"
)

var flagOpenAdd bool

func init() {
	openCmd := &cobra.Command{
		Use:   "open <dir> <title>",
		Short: "Read a book from a folder of chapter folders and list its chapters",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := library.Label(args[1])
			b, err := library.Open(args[0], title)
			if err != nil {
				return err
			}

			printChapters(cmd.OutOrStdout(), title, b)

			if !flagOpenAdd {
				return nil
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := shelve(cfg, title, b); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %q to %s\n", title, cfg.LibraryIndex())

			return nil
		},
	}
	openCmd.Flags().BoolVar(&flagOpenAdd, "add", false, "add the book to the library index")

	rootCmd.AddCommand(openCmd)
}

func printChapters(out io.Writer, title library.Label, b *library.Book) {
	fmt.Fprintf(out, "%s: %d units, %d chapters, at unit %d\n", title, b.Len(), b.ChapterCount()-1, b.Position())
	if b.Source != "" {
		fmt.Fprintf(out, "Source: %s\n", b.Source)
	}
	if cover := b.Cover(); !cover.IsEmpty() {
		fmt.Fprintf(out, "Cover:  %s\n", cover.Location)
	}
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tNAME\tUNITS\tSPAN\t")
	for n := 1; n < b.ChapterCount(); n++ {
		ch, _ := b.ChapterInfo(n)
		mark := ""
		if n == b.Current {
			mark = "<"
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%d\t%d-%d\t%s\n", n, ch.Name, ch.Count(), ch.Start(), ch.End(), mark)
	}

	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to flush table output: %v\n", err)
	}
}
