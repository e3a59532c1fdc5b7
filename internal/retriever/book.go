package retriever

import (
	"context"
	"fmt"

	"github.com/brogergvhs/pagepal/internal/library"
)

// AddChapter splices units at the end of b and registers ch over them.
func AddChapter(b *library.Book, ch library.Chapter, units []library.Content) (library.Chapter, error) {
	if len(units) == 0 {
		return ch, fmt.Errorf("chapter %q: nothing to add", ch.Name)
	}

	rng, err := b.Splice(units, library.Last)
	if err != nil {
		return ch, err
	}

	ch.Offset = rng.Lo
	ch.Length = rng.Hi - rng.Lo
	ch.Full = true

	return *b.AddChapter(ch), nil
}

// AppendChapter downloads ch and adds it as the last chapter of b.
func (r *Retriever) AppendChapter(ctx context.Context, b *library.Book, title library.Label, ch library.Chapter, progress Progress) (library.Chapter, int64, error) {
	units, n, err := r.DownloadChapter(ctx, title, ch, progress)
	if err != nil {
		return ch, n, err
	}

	ch, err = AddChapter(b, ch, units)
	return ch, n, err
}

// AssembleNewBook builds a one-chapter book from a chapter address. The
// book's source is the series index when one can be found.
func (r *Retriever) AssembleNewBook(ctx context.Context, address string) (library.Label, *library.Book, error) {
	start, err := NewPage(address)
	if err != nil {
		return "", nil, err
	}
	if _, err := r.Get(ctx, start); err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer start.Empty()

	f := r.Finder(start)
	if len(f.Images(start)) == 0 && len(f.Text(start)) == 0 {
		return "", nil, fmt.Errorf("%s: %w", address, ErrNoBook)
	}

	title := r.Title(start)
	if title == "" {
		return "", nil, fmt.Errorf("%s: %w", address, ErrNoTitle)
	}

	source := start.URL.String()
	if index, err := r.Index(ctx, start); err != nil {
		r.log.Debugf("no index for %s: %v\n", address, err)
	} else if index != start {
		source = index.URL.String()
		index.Empty()
	}

	units, _, err := r.Materialize(ctx, title, start, nil)
	if err != nil {
		return title, nil, err
	}

	b := library.NewBook(source)
	if _, err := AddChapter(b, r.NewChapter(start), units); err != nil {
		return title, nil, fmt.Errorf("%s: %w", address, ErrNoBook)
	}
	if err := b.SelectChapter(1); err != nil {
		return title, nil, err
	}

	return title, b, nil
}
