package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brogergvhs/pagepal/internal/library"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Path(t *testing.T) {
	t.Parallel()

	s := New("lib")
	assert.Equal(t, filepath.Join("lib", "Foo", "0012", "0003.jpg"), s.Path("Foo", 12, 3, ".jpg"))
	assert.Equal(t, filepath.Join("lib", "Foo", "0001", "0000.png"), s.Path("Foo", 1, 0, "png"))
	assert.Equal(t, "library", New("").Root)
}

func TestFileStore_SaveLoad(t *testing.T) {
	t.Parallel()

	s := New(t.TempDir())

	t.Run("image", func(t *testing.T) {
		t.Parallel()

		unit := library.Image(s.Path("Foo", 1, 1, ".png"), "https://example.com/1.png")
		_, err := s.Save(unit, []byte{0x89, 'P', 'N', 'G'})
		require.NoError(t, err)

		got, err := s.Load(unit.Location)
		require.NoError(t, err)
		assert.Equal(t, library.KindImage, got.Kind)
		assert.True(t, got.Equal(unit))
	})

	t.Run("text body", func(t *testing.T) {
		t.Parallel()

		unit := library.Text(s.Path("Foo", 2, 1, ".txt"), "", "first\n\nsecond")
		_, err := s.Save(unit, nil)
		require.NoError(t, err)

		got, err := s.Load(unit.Location)
		require.NoError(t, err)
		assert.Equal(t, library.KindText, got.Kind)
		assert.Equal(t, "first\n\nsecond", got.Body)
	})

	t.Run("missing location", func(t *testing.T) {
		t.Parallel()

		_, err := s.Save(library.Image("", ""), []byte("x"))
		assert.Error(t, err)

		_, err = s.Load(filepath.Join(s.Root, "none.jpg"))
		assert.Error(t, err)
	})
}

func TestFileStore_Write(t *testing.T) {
	t.Parallel()

	s := New(t.TempDir())
	unit := library.Image(s.Path("Bar", 3, 7, ".jpg"), "")
	payload := strings.Repeat("a", 70*1024)

	var last int64
	n, err := s.Write(unit, strings.NewReader(payload), func(done int64) { last = done })
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)
	assert.Equal(t, n, last)

	b, err := os.ReadFile(unit.Location)
	require.NoError(t, err)
	assert.Len(t, b, len(payload))
}
