package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/brogergvhs/pagepal/internal/archive"
	"github.com/brogergvhs/pagepal/internal/config"
	"github.com/brogergvhs/pagepal/internal/library"
	"github.com/brogergvhs/pagepal/internal/retriever"
	"github.com/brogergvhs/pagepal/internal/ui"
	"github.com/brogergvhs/pagepal/internal/util"

	"github.com/spf13/cobra"
)

var (
	flagCrawlNext      string
	flagCrawlSplit     string
	flagCrawlOutDir    string
	flagCrawlTitle     string
	flagCrawlDelay     int
	flagCrawlMaxPages  int
	flagCrawlNovel     bool
	flagCrawlManga     bool
	flagCrawlRoyalRoad bool
	flagCrawlCBZ       bool
	flagCrawlEPUB      bool
	flagCrawlKeep      bool
)

func init() {
	crawlCmd := &cobra.Command{
		Use:   "crawl <url>",
		Short: "Follow next links from a page and save every page as a chapter",
		Args:  cobra.ExactArgs(1),
		RunE:  runCrawl,
	}

	f := crawlCmd.Flags()
	f.StringVar(&flagCrawlNext, "next", "", "text of the link to the next page (default from config)")
	f.StringVar(&flagCrawlSplit, "split", "", "marker cutting the chapter part off page titles")
	f.StringVar(&flagCrawlOutDir, "out-dir", "", "folder to save into (default: the library)")
	f.StringVar(&flagCrawlTitle, "title", "", "book title (default: taken from the first page)")
	f.IntVar(&flagCrawlDelay, "delay", 0, "milliseconds between requests to one site (default from config)")
	f.IntVar(&flagCrawlMaxPages, "max-pages", 0, "stop after this many pages (0 = no limit)")
	f.BoolVar(&flagCrawlNovel, "novel", false, "keep only the text of each page")
	f.BoolVar(&flagCrawlManga, "manga", false, "keep only the pictures of each page")
	f.BoolVar(&flagCrawlRoyalRoad, "royalroad", false, "use the Royal Road text rules")
	f.BoolVar(&flagCrawlCBZ, "cbz", false, "pack the result into a CBZ file")
	f.BoolVar(&flagCrawlEPUB, "epub", false, "pack the result into an EPUB file")
	f.BoolVar(&flagCrawlKeep, "keep-folders", false, "keep page folders after packing")
	crawlCmd.MarkFlagsMutuallyExclusive("novel", "manga")

	rootCmd.AddCommand(crawlCmd)
}

func crawlMode() retriever.Mode {
	switch {
	case flagCrawlNovel:
		return retriever.TextOnly
	case flagCrawlManga:
		return retriever.ImagesOnly
	default:
		return retriever.Auto
	}
}

// crawlFinder builds the finder for the start page out of the command flags.
func crawlFinder(cfg *config.Config, domain string) (retriever.Finder, error) {
	ps := retriever.Preset{Domain: domain, Next: cfg.NextText, Split: cfg.SplitText}
	if flagCrawlRoyalRoad {
		ps.Finder = "royalroad"
	}
	if flagCrawlNext != "" {
		ps.Next = flagCrawlNext
	}
	if flagCrawlSplit != "" {
		ps.Split = flagCrawlSplit
	}

	return ps.Build()
}

func crawlOptions() config.Options {
	return config.Options{
		DelayMS:     flagCrawlDelay,
		MaxPages:    flagCrawlMaxPages,
		KeepFolders: flagCrawlKeep,
	}
}

// inLibrary reports whether dir is the library folder, where a crawled book
// gets shelved.
func inLibrary(cfg *config.Config, dir string) bool {
	return filepath.Clean(dir) == filepath.Clean(cfg.LibraryDir)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(crawlOptions(), flagCrawlOutDir)
	if err != nil {
		return err
	}
	logSvc := rt.log
	outDir := rt.ret.Store().Root

	start, err := retriever.NewPage(args[0])
	if err != nil {
		return err
	}

	// Only override the site rules when asked to; presets stay in charge
	// otherwise.
	if flagCrawlNext != "" || flagCrawlSplit != "" || flagCrawlRoyalRoad {
		f, err := crawlFinder(rt.cfg, start.Domain())
		if err != nil {
			return err
		}
		rt.ret.Register(f, start.Domain())
	}

	pending := &util.Pending{}
	util.SetupInterruptHandler(pending, outDir)

	ctx := context.Background()
	title := library.Label(flagCrawlTitle)
	b := library.NewBook(start.String())
	pm := ui.NewProgressManager(nil, "units")
	stats := &ui.Stats{}
	mode := crawlMode()
	begin := time.Now()

	n, err := rt.ret.Crawl(ctx, start, rt.cfg.MaxPages, func(ctx context.Context, p *retriever.Page, n int) error {
		if title == "" {
			if title = rt.ret.Title(p); title == "" {
				title = library.Label(p.Domain())
			}
		}

		dir := filepath.Dir(rt.ret.Store().Path(title, n, 1, ""))
		pending.Add(dir)

		handle := pm.Register(fmt.Sprintf("#%d", n))
		units, bytes, err := rt.ret.MaterializeAs(ctx, title, n, p, mode, handle)
		handle.MarkDone()
		if err != nil {
			return err
		}
		pending.Done(dir)

		if len(units) == 0 {
			logSvc.Warnf("%s: nothing to keep\n", p)
			return nil
		}

		name := rt.ret.Title(p)
		if name == "" {
			name = library.Label(fmt.Sprintf("Page %d", n))
		}
		ch := rt.ret.NewChapter(p)
		ch.Name = name
		if _, err := retriever.AddChapter(b, ch, units); err != nil {
			return err
		}
		stats.AddChapter(len(units), bytes)

		return nil
	})
	pm.Close()
	if err != nil {
		return fmt.Errorf("crawl stopped after %d pages: %w", n, err)
	}
	if b.ChapterCount() < 2 {
		return fmt.Errorf("%s: %w", args[0], retriever.ErrNoBook)
	}
	if err := b.SelectChapter(1); err != nil {
		return err
	}

	if err := packCrawl(rt.cfg, outDir, title, b); err != nil {
		return err
	}

	if inLibrary(rt.cfg, outDir) {
		if err := shelve(rt.cfg, title, b); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Crawled %d pages of %q: %s in %s\n",
		n, title, stats.Summary(), time.Since(begin).Round(time.Second))

	return nil
}

// packCrawl writes the requested archives. Page folders are removed after
// packing unless asked to keep them or the book is shelved and still needs them.
func packCrawl(cfg *config.Config, outDir string, title library.Label, b *library.Book) error {
	if !flagCrawlCBZ && !flagCrawlEPUB {
		return nil
	}

	base := filepath.Join(cfg.Output, title.String())
	if flagCrawlCBZ {
		var units []library.Content
		for _, e := range b.Content.Entries() {
			if e.ID > 0 {
				units = append(units, e.Content)
			}
		}
		if err := archive.CBZ(base+".cbz", units); err != nil {
			return err
		}
	}
	if flagCrawlEPUB {
		if err := archive.EPUB(base+".epub", title, "pagepal", archive.Sections(b)); err != nil {
			return err
		}
	}

	if !cfg.KeepFolders && !inLibrary(cfg, outDir) {
		return os.RemoveAll(filepath.Join(outDir, title.String()))
	}

	return nil
}
