package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/brogergvhs/pagepal/internal/retriever"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LibraryDir   string `yaml:"library_dir"`
	Output       string `yaml:"output"`
	ImageWorkers int    `yaml:"image_workers"`
	DelayMS      int    `yaml:"delay_ms"`
	Attempts     int    `yaml:"attempts"`
	TimeoutS     int    `yaml:"timeout_s"`
	MaxPages     int    `yaml:"max_pages"`
	NextText     string `yaml:"next_text"`
	SplitText    string `yaml:"split_text"`
	KeepFolders  bool   `yaml:"keep_folders"`
	Debug        bool   `yaml:"debug"`

	Cookie           string `yaml:"cookie"`
	CookieFile       string `yaml:"cookie_file"`
	UserAgent        string `yaml:"user_agent"`
	CloudflareBypass bool   `yaml:"cloudflare_bypass"`

	SkipBroken bool `yaml:"skip_broken"`

	// Sites tune the built-in finders for extra domains.
	Sites []retriever.Preset `yaml:"sites,omitempty"`
}

type Options struct {
	IgnoreConfig     bool
	Debug            bool
	LibraryDir       string
	Output           string
	ImageWorkers     int
	DelayMS          int
	Attempts         int
	MaxPages         int
	NextText         string
	SplitText        string
	KeepFolders      bool
	Cookie           string
	CookieFile       string
	UserAgent        string
	SkipBroken       bool
	CloudflareBypass bool
}

func DefaultConfig() *Config {
	return &Config{
		LibraryDir:   "library",
		Output:       ".",
		ImageWorkers: 5,
		DelayMS:      int(retriever.DefaultDelay / time.Millisecond),
		Attempts:     3,
		TimeoutS:     30,
		NextText:     "Next",
		SplitText:    " Chapter",
	}
}

func (c *Config) Delay() time.Duration { return time.Duration(c.DelayMS) * time.Millisecond }

func (c *Config) Timeout() time.Duration { return time.Duration(c.TimeoutS) * time.Second }

// LibraryIndex is the file the library is saved to.
func (c *Config) LibraryIndex() string { return filepath.Join(c.LibraryDir, "library.yaml") }

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadMerged reads the active profile, applies the CLI overrides on top and
// fills in defaults. The second return describes where the config came from.
func LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	activePath, err := ActiveConfigPath()
	if err == ErrNoConfig || activePath == "" {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `pagepal config init` to create an actual config\n", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, activePath, nil
}

func mergeConfig(c *Config, o Options) {
	if o.LibraryDir != "" {
		c.LibraryDir = o.LibraryDir
	}
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.ImageWorkers != 0 {
		c.ImageWorkers = o.ImageWorkers
	}
	if o.DelayMS != 0 {
		c.DelayMS = o.DelayMS
	}
	if o.Attempts != 0 {
		c.Attempts = o.Attempts
	}
	if o.MaxPages != 0 {
		c.MaxPages = o.MaxPages
	}
	if o.NextText != "" {
		c.NextText = o.NextText
	}
	if o.SplitText != "" {
		c.SplitText = o.SplitText
	}
	if o.KeepFolders {
		c.KeepFolders = true
	}
	if o.Debug {
		c.Debug = true
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.SkipBroken {
		c.SkipBroken = true
	}
	if o.CloudflareBypass {
		c.CloudflareBypass = true
	}
}

func normalizeDefaults(c *Config) {
	def := DefaultConfig()
	if c.LibraryDir == "" {
		c.LibraryDir = def.LibraryDir
	}
	if c.Output == "" {
		c.Output = def.Output
	}
	if c.ImageWorkers <= 0 {
		c.ImageWorkers = def.ImageWorkers
	}
	if c.DelayMS <= 0 {
		c.DelayMS = def.DelayMS
	}
	if c.Attempts <= 0 {
		c.Attempts = def.Attempts
	}
	if c.TimeoutS <= 0 {
		c.TimeoutS = def.TimeoutS
	}
	if c.MaxPages < 0 {
		c.MaxPages = 0
	}
	if c.NextText == "" {
		c.NextText = def.NextText
	}
	if c.SplitText == "" {
		c.SplitText = def.SplitText
	}
}

func (c *Config) Print() { c.Fprint(os.Stdout) }

func (c *Config) Fprint(w io.Writer) {
	p := func(format string, args ...any) { _, _ = fmt.Fprintf(w, format, args...) }

	p(" -library_dir: %s\n", c.LibraryDir)
	if c.Output != "" {
		p(" -output: %s\n", c.Output)
	}
	p(" -image_workers: %d\n", c.ImageWorkers)
	p(" -delay_ms: %d\n", c.DelayMS)
	p(" -attempts: %d\n", c.Attempts)
	p(" -timeout_s: %d\n", c.TimeoutS)
	if c.MaxPages > 0 {
		p(" -max_pages: %d\n", c.MaxPages)
	}
	p(" -next_text: %q\n", c.NextText)
	p(" -split_text: %q\n", c.SplitText)
	if c.KeepFolders {
		p(" -keep_folders: %t\n", c.KeepFolders)
	}
	if c.Debug {
		p(" -debug: %t\n", c.Debug)
	}
	if c.CookieFile != "" {
		p(" -cookie_file: %s\n", c.CookieFile)
	}
	if c.UserAgent != "" {
		p(" -user_agent: %s\n", c.UserAgent)
	}
	if c.SkipBroken {
		p(" -skip_broken: %t\n", c.SkipBroken)
	}
	if c.CloudflareBypass {
		p(" -cloudflare_bypass: %t\n", c.CloudflareBypass)
	}
	for _, s := range c.Sites {
		finder := s.Finder
		if finder == "" {
			finder = "default"
		}
		p(" -site: %s (%s)\n", s.Domain, finder)
	}
}
