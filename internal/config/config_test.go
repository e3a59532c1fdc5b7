package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/brogergvhs/pagepal/internal/retriever"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempRoot(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("APPDATA", "")
	t.Setenv("XDG_CONFIG_HOME", dir)

	return filepath.Join(dir, "pagepal")
}

func TestLoadMerged_NoConfig(t *testing.T) {
	useTempRoot(t)

	cfg, used, err := LoadMerged(Options{DelayMS: 400, Debug: true})
	require.NoError(t, err)
	assert.Contains(t, used, "default config in memory")
	assert.Equal(t, 400, cfg.DelayMS)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "library", cfg.LibraryDir)
	assert.Equal(t, filepath.Join("library", "library.yaml"), cfg.LibraryIndex())
}

func TestLoadMerged_ActiveProfile(t *testing.T) {
	root := useTempRoot(t)

	path, err := InitDefaultConfig()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "configs", "Default.yaml"), path)

	require.NoError(t, os.WriteFile(path, []byte(`
library_dir: /srv/books
image_workers: 0
delay_ms: 250
next_text: Weiter
sites:
  - domain: example.org
    finder: manganato
    next: Weiter
`), 0644))

	cfg, used, err := LoadMerged(Options{ImageWorkers: 8, SkipBroken: true})
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, "/srv/books", cfg.LibraryDir)
	assert.Equal(t, 8, cfg.ImageWorkers)
	assert.Equal(t, 250, cfg.DelayMS)
	assert.Equal(t, "Weiter", cfg.NextText)
	assert.Equal(t, " Chapter", cfg.SplitText)
	assert.Equal(t, 3, cfg.Attempts)
	assert.True(t, cfg.SkipBroken)
	assert.Equal(t, []retriever.Preset{{Domain: "example.org", Finder: "manganato", Next: "Weiter"}}, cfg.Sites)

	cfg, used, err = LoadMerged(Options{IgnoreConfig: true})
	require.NoError(t, err)
	assert.Equal(t, "(ignored config)", used)
	assert.Equal(t, "library", cfg.LibraryDir)
}

func TestLoadMerged_BrokenProfile(t *testing.T) {
	useTempRoot(t)

	path, err := InitDefaultConfig()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("delay_ms: [nope"), 0644))

	_, _, err = LoadMerged(Options{})
	assert.Error(t, err)
}

func TestProfiles(t *testing.T) {
	useTempRoot(t)

	_, err := CurrentLabel()
	assert.ErrorIs(t, err, ErrNoConfig)

	_, err = InitDefaultConfig()
	require.NoError(t, err)
	_, err = InitDefaultConfig()
	assert.ErrorIs(t, err, os.ErrExist)

	_, err = CreateConfig("fast", "")
	require.NoError(t, err)
	_, err = CreateConfig("fast", "")
	assert.ErrorIs(t, err, ErrConfigExists)
	_, err = CreateConfig("../escape", "")
	assert.ErrorIs(t, err, ErrBadLabel)

	require.NoError(t, SwitchConfig("fast"))
	assert.ErrorIs(t, SwitchConfig("missing"), ErrUnknown)

	require.NoError(t, RenameConfig("fast", "quick"))
	label, err := CurrentLabel()
	require.NoError(t, err)
	assert.Equal(t, "quick", label)

	list, err := ListConfigs()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Default", list[0].Label)
	assert.False(t, list[0].Active)
	assert.Equal(t, "quick", list[1].Label)
	assert.True(t, list[1].Active)

	switched, err := RemoveConfig("quick")
	require.NoError(t, err)
	assert.True(t, switched)
	label, err = CurrentLabel()
	require.NoError(t, err)
	assert.Equal(t, DefaultLabel, label)

	_, err = RemoveConfig(DefaultLabel)
	assert.Error(t, err)
}

func TestCreateConfig_FromFile(t *testing.T) {
	useTempRoot(t)

	src := filepath.Join(t.TempDir(), "src.yaml")
	require.NoError(t, os.WriteFile(src, []byte("attempts: 7\n"), 0644))

	path, err := CreateConfig("copied", src)
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "attempts: 7\n", string(raw))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("attempts: [x"), 0644))
	_, err = CreateConfig("broken", bad)
	assert.Error(t, err)
}

func TestResetActive(t *testing.T) {
	useTempRoot(t)

	_, err := ResetActive()
	assert.ErrorIs(t, err, ErrNoConfig)

	path, err := InitDefaultConfig()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("attempts: 9\n"), 0644))

	_, err = ResetActive()
	require.NoError(t, err)

	cfg, err := loadYAML(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Attempts)
}

func TestConfig_Fprint(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.SkipBroken = true
	cfg.Sites = []retriever.Preset{{Domain: "example.org"}}

	var buf bytes.Buffer
	cfg.Fprint(&buf)

	out := buf.String()
	assert.Contains(t, out, " -library_dir: library\n")
	assert.Contains(t, out, " -delay_ms: 100\n")
	assert.Contains(t, out, " -skip_broken: true\n")
	assert.Contains(t, out, " -site: example.org (default)\n")
	assert.NotContains(t, out, "cloudflare")
}
