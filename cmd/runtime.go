package cmd

import (
	"fmt"

	"github.com/brogergvhs/pagepal/internal/config"
	"github.com/brogergvhs/pagepal/internal/library"
	"github.com/brogergvhs/pagepal/internal/retriever"
	"github.com/brogergvhs/pagepal/internal/storage"
	"github.com/brogergvhs/pagepal/internal/ui"
	"github.com/brogergvhs/pagepal/internal/util"
)

// runtime bundles what every command that touches the network needs.
type runtime struct {
	cfg  *config.Config
	log  *ui.Logger
	ret  *retriever.Retriever
	used string
}

// newRuntime loads the merged config and builds a retriever storing under
// root, or under the library folder when root is empty.
func newRuntime(opts config.Options, root string) (*runtime, error) {
	opts.IgnoreConfig = flagIgnoreConfig
	opts.Debug = opts.Debug || flagDebug
	if opts.LibraryDir == "" {
		opts.LibraryDir = flagLibraryDir
	}

	cfg, used, err := config.LoadMerged(opts)
	if err != nil {
		return nil, err
	}

	log := ui.NewLogger(cfg.Debug)
	log.Debugf("Config file: %s\n", used)

	client, err := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:          cfg.Timeout(),
		UserAgent:        util.PickUserAgent(cfg.UserAgent),
		Cookie:           cfg.Cookie,
		CookieFile:       cfg.CookieFile,
		CloudflareBypass: cfg.CloudflareBypass,
		DebugLogger:      log,
	})
	if err != nil {
		return nil, err
	}

	if root == "" {
		root = cfg.LibraryDir
	}

	ret, err := retriever.New(retriever.Options{
		Client:     client,
		Store:      storage.New(root),
		Logger:     log,
		Delay:      cfg.Delay(),
		Attempts:   cfg.Attempts,
		Workers:    cfg.ImageWorkers,
		SkipBroken: cfg.SkipBroken,
		Presets:    cfg.Sites,
	})
	if err != nil {
		return nil, err
	}

	return &runtime{cfg: cfg, log: log, ret: ret, used: used}, nil
}

// loadConfig is newRuntime for commands that only read the library.
func loadConfig() (*config.Config, error) {
	cfg, _, err := config.LoadMerged(config.Options{
		IgnoreConfig: flagIgnoreConfig,
		Debug:        flagDebug,
		LibraryDir:   flagLibraryDir,
	})

	return cfg, err
}

func loadLibrary(cfg *config.Config) (*library.Library, error) {
	lib, err := library.Load(cfg.LibraryIndex())
	if err != nil {
		return nil, fmt.Errorf("library %s: %w", cfg.LibraryIndex(), err)
	}

	return lib, nil
}

// shelve stores b under title, adds it to the reading group and writes the
// index back.
func shelve(cfg *config.Config, title library.Label, b *library.Book) error {
	lib, err := loadLibrary(cfg)
	if err != nil {
		return err
	}

	if _, err := lib.Replace(title, b); err != nil {
		return err
	}
	if err := lib.AddToGroup(library.DefaultGroup, title); err != nil {
		return err
	}

	return lib.Save(cfg.LibraryIndex())
}
