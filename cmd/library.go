package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/brogergvhs/pagepal/internal/config"
	"github.com/brogergvhs/pagepal/internal/library"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "List the books in the library",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, lib, err := openLibrary()
		if err != nil {
			return err
		}
		if lib.Size() == 0 {
			fmt.Printf("No books in %s yet.\n", cfg.LibraryIndex())
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 4, ' ', 0)
		_, _ = fmt.Fprintln(w, "TITLE\tCHAPTERS\tREADING\tSOURCE")
		for _, title := range lib.Labels() {
			b, _ := lib.Lookup(title)
			_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", title, b.ChapterCount()-1, b.Current, b.Source)
		}
		if err := w.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to flush table output: %v\n", err)
		}

		for _, g := range lib.Groups() {
			names, _ := lib.GroupNames(g)
			list := make([]string, 0, len(names))
			for _, n := range names {
				list = append(list, n.String())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n[%s] %s\n", g, strings.Join(list, ", "))
		}

		return nil
	},
}

var (
	flagReadNext    bool
	flagReadPrev    bool
	flagReadChapter int
	flagReadTurn    int
)

var libraryShowCmd = &cobra.Command{
	Use:   "show [title]",
	Short: "Show a book's chapters and move its bookmark",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, lib, err := openLibrary()
		if err != nil {
			return err
		}

		var title library.Label
		if len(args) == 1 {
			title = library.Label(args[0])
		} else if title, err = pickBook(lib); err != nil {
			return err
		}

		b, ok := lib.Lookup(title)
		if !ok {
			return fmt.Errorf("%q: %w", title, library.ErrNoBook)
		}

		moved := true
		switch {
		case flagReadChapter > 0:
			if err := b.SelectChapter(flagReadChapter); err != nil {
				return err
			}
		case flagReadNext:
			if !b.NextChapter() {
				fmt.Println("Already at the last chapter.")
			}
			_ = b.SelectChapter(b.Current)
		case flagReadPrev:
			if !b.PrevChapter() {
				fmt.Println("Already at the first chapter.")
			}
			_ = b.SelectChapter(b.Current)
		case flagReadTurn > 0:
			b.AdvanceBy(library.ID(flagReadTurn))
		case flagReadTurn < 0:
			b.BacktrackBy(library.ID(-flagReadTurn))
		default:
			moved = false
		}

		printChapters(cmd.OutOrStdout(), title, b)
		fmt.Fprintln(cmd.OutOrStdout())
		for _, e := range b.CurrentPage() {
			fmt.Fprintf(cmd.OutOrStdout(), "%5d  %-5s  %s\n", e.ID, e.Content.Kind, e.Content.Location)
		}
		if b.IsLast() {
			fmt.Fprintln(cmd.OutOrStdout(), "(last page)")
		}

		if !moved {
			return nil
		}

		return lib.Save(cfg.LibraryIndex())
	},
}

var libraryRenameCmd = &cobra.Command{
	Use:   "rename <old_title> <new_title>",
	Short: "Rename a book",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, lib, err := openLibrary()
		if err != nil {
			return err
		}
		if err := lib.Rename(library.Label(args[0]), library.Label(args[1])); err != nil {
			return err
		}

		fmt.Printf("Renamed %q to %q\n", args[0], args[1])
		return lib.Save(cfg.LibraryIndex())
	},
}

var libraryRemoveCmd = &cobra.Command{
	Use:   "remove <title>",
	Short: "Forget a book (its files are kept)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, lib, err := openLibrary()
		if err != nil {
			return err
		}
		if _, err := lib.Remove(library.Label(args[0])); err != nil {
			return err
		}

		fmt.Printf("Removed %q\n", args[0])
		return lib.Save(cfg.LibraryIndex())
	},
}

var flagGroupRemove bool

var libraryGroupCmd = &cobra.Command{
	Use:   "group <group> <title>...",
	Short: "Put books into a group, creating it if needed",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, lib, err := openLibrary()
		if err != nil {
			return err
		}

		group := args[0]
		titles := make([]library.Label, 0, len(args)-1)
		for _, a := range args[1:] {
			titles = append(titles, library.Label(a))
		}

		if flagGroupRemove {
			err = lib.RemoveFromGroup(group, titles...)
		} else {
			lib.AddGroup(group)
			err = lib.AddToGroup(group, titles...)
		}
		if err != nil {
			return err
		}

		fmt.Printf("[%s] now holds %d books\n", group, lib.GroupSize(group))
		return lib.Save(cfg.LibraryIndex())
	},
}

func init() {
	libraryShowCmd.Flags().BoolVar(&flagReadNext, "next", false, "move to the next chapter")
	libraryShowCmd.Flags().BoolVar(&flagReadPrev, "prev", false, "move to the previous chapter")
	libraryShowCmd.Flags().IntVar(&flagReadChapter, "chapter", 0, "jump to chapter n")
	libraryShowCmd.Flags().IntVar(&flagReadTurn, "turn", 0, "turn n pages forward (negative: back)")
	libraryGroupCmd.Flags().BoolVar(&flagGroupRemove, "remove", false, "take the books out of the group instead")

	libraryCmd.AddCommand(libraryShowCmd, libraryRenameCmd, libraryRemoveCmd, libraryGroupCmd)
	rootCmd.AddCommand(libraryCmd)
}

func openLibrary() (*config.Config, *library.Library, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	lib, err := loadLibrary(cfg)
	if err != nil {
		return nil, nil, err
	}

	return cfg, lib, nil
}

func pickBook(lib *library.Library) (library.Label, error) {
	titles := lib.Labels()
	if len(titles) == 0 {
		return "", fmt.Errorf("the library is empty")
	}

	items := make([]string, 0, len(titles))
	for _, t := range titles {
		items = append(items, t.String())
	}

	prompt := promptui.Select{
		Label: "Select book",
		Items: items,
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("selection cancelled")
	}

	return titles[idx], nil
}
