package library

import (
	"errors"
	"fmt"
	"sort"
)

var ErrChapterIndex = errors.New("chapter index out of range")

// Position says where Insert places new content relative to the reader.
type Position int

const (
	Last Position = iota
	First
	BeforeCurrent
	AfterCurrent
	Cover
)

func (p Position) String() string {
	switch p {
	case First:
		return "first"
	case BeforeCurrent:
		return "before-current"
	case AfterCurrent:
		return "after-current"
	case Cover:
		return "cover"
	default:
		return "last"
	}
}

// Book owns a sparse content store and the chapters laid over it.
// Chapters[0] is the bookmark: its offset is the reading position and its
// length the number of extra units shown per page turn.
type Book struct {
	Source   string
	Content  *Store
	Chapters []Chapter
	Current  int
}

func NewBook(source string) *Book {
	st := NewStore()
	st.Set(0, Empty())

	return &Book{
		Source:   source,
		Content:  st,
		Chapters: []Chapter{{}},
	}
}

func (b *Book) valid(n int) bool { return n > 0 && n < len(b.Chapters) }

func (b *Book) Cover() Content {
	c, _ := b.Content.Get(0)
	return c
}

func (b *Book) Bookmark() Chapter { return b.Chapters[0] }

func (b *Book) Position() ID { return b.Chapters[0].Offset }

func (b *Book) Len() int { return b.Content.Len() }

func (b *Book) ChapterCount() int { return len(b.Chapters) }

func (b *Book) CurrentChapter() Chapter { return b.Chapters[b.Current] }

// Chapter returns the units covered by real chapter n (n >= 1).
func (b *Book) Chapter(n int) ([]Entry, error) {
	if !b.valid(n) {
		return nil, fmt.Errorf("chapter %d: %w", n, ErrChapterIndex)
	}

	r := b.Chapters[n].Range()
	return b.Content.Between(r.Lo, r.Hi), nil
}

func (b *Book) ChapterInfo(n int) (Chapter, error) {
	if n < 0 || n >= len(b.Chapters) {
		return Chapter{}, fmt.Errorf("chapter %d: %w", n, ErrChapterIndex)
	}

	return b.Chapters[n], nil
}

// Insert splices units into the content store. Chapter spans are left alone;
// use Splice when they should follow the shifted content.
func (b *Book) Insert(units []Content, pos Position) (IDRange, error) {
	if len(units) == 0 {
		return IDRange{Lo: 1, Hi: 0}, nil
	}

	var target ID
	switch pos {
	case First:
		target = 1
	case BeforeCurrent:
		target = max(1, b.Chapters[0].Start())
	case AfterCurrent:
		target = addSat(b.Chapters[0].End(), 1)
	case Cover:
		b.Content.Set(0, units[0])
		if len(units) == 1 {
			return IDRange{Lo: 0, Hi: 0}, nil
		}
		units = units[1:]
		target = 1
	default:
		return b.Content.Append(units)
	}

	return b.Content.Insert(units, target)
}

// Splice inserts units and grows every chapter so its span keeps pointing at
// the same content.
func (b *Book) Splice(units []Content, pos Position) (IDRange, error) {
	r, err := b.Insert(units, pos)
	if err != nil || r.Count() == 0 || (pos == Cover && len(units) == 1) {
		return r, err
	}

	for i := 1; i < len(b.Chapters); i++ {
		b.Chapters[i].Grow(r)
	}
	if b.Chapters[0].Offset >= r.Lo && b.Chapters[0].Offset != 0 {
		b.Chapters[0].Offset = addSat(b.Chapters[0].Offset, r.Count())
	}

	return r, nil
}

// AddChapter appends a prebuilt span.
func (b *Book) AddChapter(ch Chapter) *Chapter {
	b.Chapters = append(b.Chapters, ch)
	return &b.Chapters[len(b.Chapters)-1]
}

// AddChapterFromParts appends a chapter of the given length starting right
// after chapter `after`, or after the furthest chapter when after < 0.
func (b *Book) AddChapterFromParts(after int, length ID) (*Chapter, error) {
	var start ID
	switch {
	case after < 0:
		var end ID
		for _, c := range b.Chapters[1:] {
			end = max(end, c.End())
		}
		start = addSat(end, 1)
	case b.valid(after):
		start = addSat(b.Chapters[after].End(), 1)
	default:
		return nil, fmt.Errorf("chapter %d: %w", after, ErrChapterIndex)
	}

	return b.AddChapter(Chapter{Offset: start, Length: length}), nil
}

// RemoveChapter drops chapter n together with the content it covers.
// Neighbouring chapters keep their offsets; the hole stays.
func (b *Book) RemoveChapter(n int) (Chapter, []Content, error) {
	if !b.valid(n) {
		return Chapter{}, nil, fmt.Errorf("chapter %d: %w", n, ErrChapterIndex)
	}

	ch := b.Chapters[n]
	b.Chapters = append(b.Chapters[:n], b.Chapters[n+1:]...)
	removed := b.Content.RemoveRange(ch.Range())

	switch {
	case b.Current > n:
		b.Current--
	case b.Current >= len(b.Chapters):
		b.Current = len(b.Chapters) - 1
	}
	if b.Current > 0 && !b.CurrentChapter().Contains(b.Chapters[0].Offset) {
		b.Chapters[0].Offset = b.CurrentChapter().Start()
	}

	return ch, removed, nil
}

func (b *Book) SwapChapters(x, y int) error {
	if !b.valid(x) || !b.valid(y) {
		return fmt.Errorf("swap %d<->%d: %w", x, y, ErrChapterIndex)
	}
	if x == y {
		return nil
	}

	b.Chapters[x], b.Chapters[y] = b.Chapters[y], b.Chapters[x]
	switch b.Current {
	case x:
		b.Current = y
	case y:
		b.Current = x
	}

	return nil
}

func (b *Book) SwapContent(x, y ID) bool { return b.Content.Swap(x, y) }

// SortChaptersBySource orders the real chapters by source address, keeping
// the reader on the chapter they were on.
func (b *Book) SortChaptersBySource() {
	cur := b.CurrentChapter()
	rest := b.Chapters[1:]
	sort.SliceStable(rest, func(i, j int) bool { return rest[i].Source < rest[j].Source })

	if b.Current == 0 {
		return
	}
	for i := 1; i < len(b.Chapters); i++ {
		if b.Chapters[i] == cur {
			b.Current = i
			return
		}
	}
}

func (b *Book) NextChapter() bool {
	if !b.valid(b.Current + 1) {
		return false
	}

	b.Current++
	return true
}

func (b *Book) PrevChapter() bool {
	if !b.valid(b.Current - 1) {
		return false
	}

	b.Current--
	return true
}

// SelectChapter jumps to chapter n and puts the bookmark on its first unit.
func (b *Book) SelectChapter(n int) error {
	if !b.valid(n) {
		return fmt.Errorf("chapter %d: %w", n, ErrChapterIndex)
	}

	b.Current = n
	b.Chapters[0].Offset = b.Chapters[n].Start()

	return nil
}

// CurrentPage returns the units inside the bookmark window, cut at the end of
// the current chapter.
func (b *Book) CurrentPage() []Entry {
	bm := b.Chapters[0]
	hi := bm.End()
	if b.Current > 0 {
		hi = min(hi, b.CurrentChapter().End())
	}

	return b.Content.Between(bm.Offset, hi)
}

// AdvanceBy moves the bookmark forward n units, rolling into the next chapter
// when the current one is exhausted.
func (b *Book) AdvanceBy(n ID) []Entry {
	limit, _ := b.Content.Max()
	adv := min(addSat(b.Position(), int(n)), limit)
	cur := b.CurrentChapter()

	switch {
	case cur.Contains(adv):
		b.Chapters[0].Offset = adv
	case cur.End() < adv && b.valid(b.Current+1):
		b.Current++
		b.Chapters[0].Offset = b.CurrentChapter().Start()
	case b.Current > 0:
		b.Chapters[0].Offset = max(cur.Start(), min(adv, cur.End()))
	default:
		b.Chapters[0].Offset = adv
	}

	return b.CurrentPage()
}

// BacktrackBy moves the bookmark back n units, stepping into the previous
// chapter when crossing the start of the current one.
func (b *Book) BacktrackBy(n ID) []Entry {
	back := max(1, subSat(b.Position(), int(n)))
	cur := b.CurrentChapter()

	switch {
	case cur.Contains(back):
		b.Chapters[0].Offset = back
	case back < cur.Start() && b.Current > 1:
		b.Current--
		b.Chapters[0].Offset = b.CurrentChapter().Start()
	case b.Current >= 1:
		b.Chapters[0].Offset = cur.Start()
	}

	return b.CurrentPage()
}

// ChapterSetLength resizes chapter idx to hold n units. For the bookmark this
// is the page window, clamped to what the current chapter can show.
func (b *Book) ChapterSetLength(idx int, n ID) error {
	if idx < 0 || idx >= len(b.Chapters) {
		return fmt.Errorf("chapter %d: %w", idx, ErrChapterIndex)
	}

	length := subSat(n, 1)
	if idx == 0 && b.Current > 0 {
		length = min(length, b.CurrentChapter().Length)
	}
	b.Chapters[idx].Length = length

	return nil
}

// IsLast reports whether the current chapter reaches the end of the content.
func (b *Book) IsLast() bool {
	m, ok := b.Content.Max()
	return !ok || b.CurrentChapter().End() >= m
}
