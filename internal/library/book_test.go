package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoChapterBook holds ten images split into chapters 1..5 and 6..10.
func twoChapterBook(t *testing.T) *Book {
	t.Helper()

	b := NewBook("")
	_, err := b.Insert(images("p", 10), Last)
	require.NoError(t, err)

	_, err = b.AddChapterFromParts(-1, 4)
	require.NoError(t, err)
	_, err = b.AddChapterFromParts(-1, 4)
	require.NoError(t, err)
	require.NoError(t, b.SelectChapter(1))

	return b
}

func TestBook_ChapterFromParts(t *testing.T) {
	t.Parallel()

	b := NewBook("")
	placeholders := make([]Content, 5)
	_, err := b.Insert(placeholders, Last)
	require.NoError(t, err)

	_, err = b.AddChapterFromParts(-1, 2)
	require.NoError(t, err)

	units, err := b.Chapter(1)
	require.NoError(t, err)
	assert.Len(t, units, 3)

	_, err = b.AddChapterFromParts(7, 1)
	assert.ErrorIs(t, err, ErrChapterIndex)
}

func TestBook_Insert(t *testing.T) {
	t.Parallel()

	t.Run("cover replaces slot zero and the rest goes in front", func(t *testing.T) {
		t.Parallel()

		b := NewBook("")
		_, err := b.Insert(images("p", 2), Last)
		require.NoError(t, err)

		r, err := b.Insert(images("c", 3), Cover)
		require.NoError(t, err)
		assert.Equal(t, "c0.jpg", b.Cover().Location)
		assert.Equal(t, IDRange{Lo: 1, Hi: 2}, r)
		assert.Equal(t,
			[]string{"c1.jpg", "c2.jpg", "p0.jpg", "p1.jpg"},
			locations(b.Content.Between(1, 10)))
	})

	t.Run("last appends after everything", func(t *testing.T) {
		t.Parallel()

		b := twoChapterBook(t)
		r, err := b.Insert(images("x", 2), Last)
		require.NoError(t, err)
		assert.Equal(t, IDRange{Lo: 11, Hi: 12}, r)
		assert.Equal(t, "p9.jpg", mustGet(t, b, 10).Location)
	})

	t.Run("after current lands past the bookmark", func(t *testing.T) {
		t.Parallel()

		b := twoChapterBook(t)
		r, err := b.Insert(images("x", 1), AfterCurrent)
		require.NoError(t, err)
		assert.Equal(t, IDRange{Lo: 2, Hi: 2}, r)
	})
}

func TestBook_Splice(t *testing.T) {
	t.Parallel()

	b := NewBook("")
	_, err := b.Insert(images("p", 5), Last)
	require.NoError(t, err)
	b.AddChapter(Chapter{Offset: 3, Length: 2})
	require.NoError(t, b.SelectChapter(1))

	_, err = b.Splice(images("x", 2), First)
	require.NoError(t, err)

	assert.Equal(t, ID(5), b.Chapters[1].Start())
	assert.Equal(t, ID(5), b.Position())

	units, err := b.Chapter(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2.jpg", "p3.jpg", "p4.jpg"}, locations(units))
}

func TestBook_SpliceBeforeCurrent(t *testing.T) {
	t.Parallel()

	b := twoChapterBook(t)
	require.NoError(t, b.SelectChapter(2))

	r, err := b.Splice(images("x", 2), BeforeCurrent)
	require.NoError(t, err)
	assert.Equal(t, IDRange{Lo: 6, Hi: 7}, r)
	assert.Equal(t, "x0.jpg", mustGet(t, b, 6).Location)
	assert.Equal(t, "x1.jpg", mustGet(t, b, 7).Location)
	assert.Equal(t, "p5.jpg", mustGet(t, b, 8).Location)
	assert.Equal(t, 13, b.Len())

	assert.Equal(t, Chapter{Offset: 1, Length: 4}, b.Chapters[1])
	assert.Equal(t, Chapter{Offset: 6, Length: 6}, b.Chapters[2])
	assert.Equal(t, ID(8), b.Position())
	assert.Equal(t, []string{"p5.jpg"}, locations(b.CurrentPage()))
}

func mustGet(t *testing.T, b *Book, id ID) Content {
	t.Helper()

	c, ok := b.Content.Get(id)
	require.True(t, ok, "no unit %d", id)
	return c
}

func TestBook_Navigation(t *testing.T) {
	t.Parallel()

	t.Run("advance then backtrack inside a chapter", func(t *testing.T) {
		t.Parallel()

		b := twoChapterBook(t)
		b.AdvanceBy(3)
		assert.Equal(t, ID(4), b.Position())
		b.BacktrackBy(3)
		assert.Equal(t, ID(1), b.Position())
		assert.Equal(t, 1, b.Current)
	})

	t.Run("advance rolls into the next chapter", func(t *testing.T) {
		t.Parallel()

		b := twoChapterBook(t)
		b.AdvanceBy(5)
		assert.Equal(t, 2, b.Current)
		assert.Equal(t, ID(6), b.Position())

		b.AdvanceBy(100)
		assert.Equal(t, 2, b.Current)
		assert.Equal(t, ID(10), b.Position())
		assert.True(t, b.IsLast())
	})

	t.Run("backtrack steps to the previous chapter start", func(t *testing.T) {
		t.Parallel()

		b := twoChapterBook(t)
		require.NoError(t, b.SelectChapter(2))
		b.BacktrackBy(1)
		assert.Equal(t, 1, b.Current)
		assert.Equal(t, ID(1), b.Position())

		b.BacktrackBy(1)
		assert.Equal(t, 1, b.Current)
		assert.Equal(t, ID(1), b.Position())
	})

	t.Run("page window is clamped to the chapter", func(t *testing.T) {
		t.Parallel()

		b := twoChapterBook(t)
		require.NoError(t, b.SelectChapter(2))
		require.NoError(t, b.ChapterSetLength(0, 3))
		assert.Len(t, b.CurrentPage(), 3)

		require.NoError(t, b.ChapterSetLength(0, 50))
		assert.Equal(t, ID(4), b.Bookmark().Length)
		assert.Len(t, b.CurrentPage(), 5)

		b.AdvanceBy(3)
		assert.Len(t, b.CurrentPage(), 2)
	})

	t.Run("next and previous chapter", func(t *testing.T) {
		t.Parallel()

		b := twoChapterBook(t)
		assert.True(t, b.NextChapter())
		assert.False(t, b.NextChapter())
		assert.True(t, b.PrevChapter())
		assert.False(t, b.PrevChapter())
		assert.ErrorIs(t, b.SelectChapter(3), ErrChapterIndex)
	})
}

func TestBook_ChapterManagement(t *testing.T) {
	t.Parallel()

	t.Run("remove drops the covered content", func(t *testing.T) {
		t.Parallel()

		b := twoChapterBook(t)
		require.NoError(t, b.SelectChapter(2))

		ch, removed, err := b.RemoveChapter(1)
		require.NoError(t, err)
		assert.Equal(t, ID(1), ch.Start())
		assert.Len(t, removed, 5)
		assert.Equal(t, 6, b.Len())
		assert.Equal(t, 2, b.ChapterCount())
		assert.Equal(t, 1, b.Current)
		assert.Equal(t, ID(6), b.CurrentChapter().Start())

		_, err = b.Chapter(2)
		assert.ErrorIs(t, err, ErrChapterIndex)
	})

	t.Run("swap keeps the reader on their chapter", func(t *testing.T) {
		t.Parallel()

		b := twoChapterBook(t)
		require.NoError(t, b.SwapChapters(1, 2))
		assert.Equal(t, 2, b.Current)
		assert.Equal(t, ID(6), b.Chapters[1].Start())
		assert.ErrorIs(t, b.SwapChapters(0, 1), ErrChapterIndex)
	})

	t.Run("sort by source", func(t *testing.T) {
		t.Parallel()

		b := twoChapterBook(t)
		b.Chapters[1].SetSource("https://example.com/b")
		b.Chapters[2].SetSource("https://example.com/a")

		b.SortChaptersBySource()
		assert.Equal(t, "https://example.com/a", b.Chapters[1].Source)
		assert.Equal(t, 2, b.Current)
	})
}
