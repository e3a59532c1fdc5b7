package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPending_Cleanup(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	done := filepath.Join(root, "Foo", "0001")
	partial := filepath.Join(root, "Foo", "0002")
	lonely := filepath.Join(root, "Bar", "0001")
	for _, d := range []string{done, partial, lonely} {
		require.NoError(t, os.MkdirAll(d, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(d, "0001.png"), []byte("x"), 0644))
	}

	var p Pending
	p.Add(done)
	p.Add(partial)
	p.Add(lonely)
	p.Done(done)

	assert.Equal(t, []string{lonely, partial}, p.Dirs())
	assert.Equal(t, []string{lonely, partial}, p.Cleanup())
	assert.Empty(t, p.Dirs())

	assert.DirExists(t, done)
	assert.NoDirExists(t, partial)
	assert.NoDirExists(t, filepath.Join(root, "Bar"))
}

func TestRemoveIfEmpty(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	empty := filepath.Join(root, "empty")
	require.NoError(t, os.Mkdir(empty, 0755))

	assert.True(t, RemoveIfEmpty(empty))
	assert.False(t, RemoveIfEmpty(empty))

	require.NoError(t, os.WriteFile(filepath.Join(root, "f"), nil, 0644))
	assert.False(t, RemoveIfEmpty(root))
}
