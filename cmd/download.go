package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/brogergvhs/pagepal/internal/archive"
	"github.com/brogergvhs/pagepal/internal/chapters"
	"github.com/brogergvhs/pagepal/internal/config"
	"github.com/brogergvhs/pagepal/internal/library"
	"github.com/brogergvhs/pagepal/internal/retriever"
	"github.com/brogergvhs/pagepal/internal/ui"
	"github.com/brogergvhs/pagepal/internal/util"

	"github.com/spf13/cobra"
)

var (
	// selection
	flagChapter string
	flagRange   string
	flagList    string
	flagTitle   string

	// runtime
	flagOutput       string
	flagImageWorkers int
	flagDryRun       bool
	flagSkipBroken   bool
	flagCBZ          bool

	// headers/auth
	flagCookie     string
	flagCookieFile string
	flagUserAgent  string
)

func init() {
	downloadCmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Append chapters from a series index to a library book. Uses the defaults from the selected config, overwritten by CLI flags",
		Args:  cobra.ExactArgs(1),
		RunE:  runDownload,
	}

	// selection
	downloadCmd.Flags().StringVar(&flagChapter, "chapter", "", "download single chapter by index or label (e.g. 5 or 28-5)")
	downloadCmd.Flags().StringVar(&flagRange, "range", "", "download range of chapters by index (e.g. 5-12)")
	downloadCmd.Flags().StringVar(&flagList, "list", "", "download specific chapter indices (e.g. 1,3,5)")
	downloadCmd.Flags().StringVar(&flagTitle, "title", "", "book title (default: taken from the page)")

	// runtime
	downloadCmd.Flags().StringVar(&flagOutput, "output", "", "output folder for CBZ files")
	downloadCmd.Flags().IntVar(&flagImageWorkers, "image-workers", 5, "parallel image downloads per chapter")
	downloadCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "show what would be downloaded, don't download")
	downloadCmd.Flags().BoolVar(&flagSkipBroken, "skip-broken", false, "skip failed images instead of failing the whole chapter")
	downloadCmd.Flags().BoolVar(&flagCBZ, "cbz", false, "also pack every downloaded chapter into a CBZ file")

	// headers/auth
	downloadCmd.Flags().StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	downloadCmd.Flags().StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	downloadCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	opts := config.Options{
		Output:     flagOutput,
		Cookie:     flagCookie,
		CookieFile: flagCookieFile,
		UserAgent:  flagUserAgent,
		SkipBroken: flagSkipBroken,
	}
	if cmd.Flags().Changed("image-workers") {
		opts.ImageWorkers = flagImageWorkers
	}

	rt, err := newRuntime(opts, "")
	if err != nil {
		return err
	}
	logSvc := rt.log

	fmt.Printf("Config file: %s\n", rt.used)
	fmt.Println("Full config:")
	rt.cfg.Print()
	fmt.Println()

	ctx := context.Background()

	start, err := retriever.NewPage(args[0])
	if err != nil {
		return err
	}
	if _, err := rt.ret.Get(ctx, start); err != nil {
		return err
	}

	title := library.Label(flagTitle)
	if title == "" {
		title = rt.ret.Title(start)
	}
	if title == "" {
		return fmt.Errorf("%s: %w (use --title)", args[0], retriever.ErrNoTitle)
	}

	index, err := rt.ret.Index(ctx, start)
	if err != nil {
		return err
	}

	all, err := rt.ret.ChapterLinks(index)
	if err != nil {
		return err
	}
	fmt.Printf("Found %d chapters for %q.\n\n", len(all), title)

	selected, err := chapters.Select(all, chapters.Selection{
		Chapter: flagChapter,
		Range:   flagRange,
		List:    flagList,
	})
	if err != nil {
		return err
	}

	if flagDryRun {
		fmt.Printf("Dry-run: %d chapters selected.\n\n", len(selected))
		for i, ch := range selected {
			fmt.Printf("%3d) %s  [%s]\n    %s\n", i+1, ch.Title, ch.Label, ch.URL)
		}
		return nil
	}

	lib, err := loadLibrary(rt.cfg)
	if err != nil {
		return err
	}
	b, err := lib.Book(title)
	if err != nil {
		return err
	}
	if b.Source == "" {
		b.Source = index.String()
	}

	known := make(map[string]bool)
	for _, ch := range b.Chapters[1:] {
		known[ch.Source] = true
	}

	pending := &util.Pending{}
	util.SetupInterruptHandler(pending, rt.cfg.LibraryDir)

	pm := ui.NewProgressManager(nil, "pages")
	stats := &ui.Stats{}
	begin := time.Now()

	for _, ch := range selected {
		if known[ch.URL] {
			logSvc.Infof("Chapter %s already in %q, skipping\n", ch.Label, title)
			continue
		}

		page, err := retriever.NewPage(ch.URL)
		if err != nil {
			logSvc.Errorf("Chapter %s: %v\n", ch.Label, err)
			stats.Failed.Add(1)
			continue
		}
		dir := filepath.Dir(rt.ret.Store().Path(title, rt.ret.Num(page).Chapter, 1, ""))
		pending.Add(dir)

		handle := pm.Register("Ch." + ch.Label)
		added, n, err := rt.ret.AppendChapter(ctx, b, title, library.Chapter{Name: library.Label(ch.Title), Source: ch.URL}, handle)
		handle.MarkDone()
		if err != nil {
			logSvc.Errorf("Chapter %s failed: %v\n", ch.Label, err)
			stats.Failed.Add(1)
			continue
		}
		pending.Done(dir)
		stats.AddChapter(added.Count(), n)

		if flagCBZ {
			entries, err := b.Chapter(b.ChapterCount() - 1)
			if err != nil {
				return err
			}
			units := make([]library.Content, 0, len(entries))
			for _, e := range entries {
				units = append(units, e.Content)
			}
			if err := archive.CBZ(ch.OutputCBZPath(rt.cfg.Output), units); err != nil {
				logSvc.Errorf("CBZ for %s failed: %v\n", ch.Label, err)
			}
		}
	}
	pm.Close()

	if b.Current == 0 && b.ChapterCount() > 1 {
		if err := b.SelectChapter(1); err != nil {
			return err
		}
	}
	if err := lib.AddToGroup(library.DefaultGroup, title); err != nil {
		return err
	}
	if err := lib.Save(rt.cfg.LibraryIndex()); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Download Summary:")
	fmt.Printf("Book:     %s (%d chapters)\n", title, b.ChapterCount()-1)
	fmt.Printf("Added:    %s\n", stats.Summary())
	fmt.Printf("Time:     %s\n", time.Since(begin).Round(time.Second))
	fmt.Println("\nAll done.")

	return nil
}
