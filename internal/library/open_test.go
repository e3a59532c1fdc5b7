package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestOpen(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := filepath.Join(root, "Title")
	touch(t, filepath.Join(dir, "Title.jpg"))
	touch(t, filepath.Join(dir, "a.jpg"))
	touch(t, filepath.Join(dir, "b.png"))
	touch(t, filepath.Join(dir, "c.jpg"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "0001", "0001.jpg"))
	touch(t, filepath.Join(dir, "0001", "0002.jpg"))
	touch(t, filepath.Join(dir, "0001", "cover.jpg"))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty"), 0755))

	b, err := Open(root, "Title")
	require.NoError(t, err)

	assert.Equal(t, 2, b.ChapterCount())
	assert.Equal(t, KindImage, b.Cover().Kind)
	assert.Equal(t, filepath.Join(dir, "Title.jpg"), b.Cover().Location)
	assert.Equal(t, 6, b.Len())

	units, err := b.Chapter(1)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, ID(4), units[0].ID)
	assert.Equal(t, filepath.Join(dir, "0001", "0002.jpg"), units[1].Content.Location)

	assert.Equal(t, Label("0001"), b.CurrentChapter().Name)
	assert.Equal(t, ID(4), b.Position())
}

func TestOpen_Missing(t *testing.T) {
	t.Parallel()

	_, err := Open(t.TempDir(), "nope")
	assert.Error(t, err)
}
