package retriever

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/brogergvhs/pagepal/internal/library"
	"golang.org/x/sync/errgroup"
)

// Progress receives download counters. ui.ProgressHandle satisfies it.
type Progress interface {
	Update(done, total int, bytes int64)
	MarkDone()
}

type nopProgress struct{}

func (nopProgress) Update(int, int, int64) {}
func (nopProgress) MarkDone()              {}

// Mode restricts what Materialize keeps from a page.
type Mode int

const (
	// Auto keeps the pictures, or the text when there are none.
	Auto Mode = iota
	ImagesOnly
	TextOnly
)

// Materialize saves the content of an already fetched chapter page under
// <title>/<chapter>/, numbering the chapter from the page address.
func (r *Retriever) Materialize(ctx context.Context, title library.Label, page *Page, progress Progress) ([]library.Content, int64, error) {
	return r.MaterializeAs(ctx, title, r.Num(page).Chapter, page, Auto, progress)
}

// MaterializeAs saves the page content into chapter folder chapter. Image
// pages yield one unit per picture, in page order; text pages yield a single
// unit.
func (r *Retriever) MaterializeAs(ctx context.Context, title library.Label, chapter int, page *Page, mode Mode, progress Progress) ([]library.Content, int64, error) {
	if mode != TextOnly {
		if images := r.Images(ctx, page); len(images) > 0 {
			return r.fetchImages(ctx, title, chapter, images, progress)
		}
		if mode == ImagesOnly {
			return nil, 0, nil
		}
	}

	lines := r.Text(page)
	if len(lines) == 0 {
		return nil, 0, nil
	}

	unit := library.FromLines(lines)
	unit.Location = r.store.Path(title, chapter, 1, ".txt")
	unit.Source = page.URL.String()
	if _, err := r.store.Save(unit, nil); err != nil {
		return nil, 0, err
	}
	if progress != nil {
		progress.Update(1, 1, int64(len(unit.Body)))
		progress.MarkDone()
	}

	return []library.Content{unit}, int64(len(unit.Body)), nil
}

// DownloadChapter fetches ch.Source and materialises it.
func (r *Retriever) DownloadChapter(ctx context.Context, title library.Label, ch library.Chapter, progress Progress) ([]library.Content, int64, error) {
	page, err := NewPage(ch.Source)
	if err != nil {
		return nil, 0, err
	}
	if _, err := r.Get(ctx, page); err != nil {
		return nil, 0, err
	}
	defer page.Empty()

	return r.Materialize(ctx, title, page, progress)
}

func (r *Retriever) fetchImages(ctx context.Context, title library.Label, chapter int, images []*Page, progress Progress) ([]library.Content, int64, error) {
	if progress == nil {
		progress = nopProgress{}
	}

	total := len(images)
	units := make([]library.Content, total)
	saved := make([]bool, total)

	var mu sync.Mutex
	var done int
	var bytes int64
	progress.Update(0, total, 0)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, img := range images {
		g.Go(func() error {
			var last int64
			unit, err := r.fetchImage(gctx, title, chapter, i+1, img, func(n int64) {
				delta := n - last
				if delta <= 0 {
					return
				}

				last = n
				mu.Lock()
				bytes += delta
				progress.Update(done, total, bytes)
				mu.Unlock()
			})
			img.Empty()

			mu.Lock()
			done++
			progress.Update(done, total, bytes)
			mu.Unlock()

			if err != nil {
				if r.skipBroken && gctx.Err() == nil {
					r.log.Debugf("skipping image %d of %s: %v\n", i+1, title, err)
					return nil
				}
				return fmt.Errorf("image %d: %w", i+1, err)
			}

			units[i] = unit
			saved[i] = true
			return nil
		})
	}

	err := g.Wait()
	progress.MarkDone()

	out := make([]library.Content, 0, total)
	for i, u := range units {
		if saved[i] {
			out = append(out, u)
		}
	}

	return out, bytes, err
}

func (r *Retriever) fetchImage(ctx context.Context, title library.Label, chapter, seq int, img *Page, progress func(int64)) (library.Content, error) {
	resp, err := r.do(ctx, img)
	if err != nil {
		return library.Content{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	ext, err := imageExt(img, resp)
	if err != nil {
		return library.Content{}, err
	}

	unit := library.Image(r.store.Path(title, chapter, seq, ext), img.URL.String())
	if _, err := r.store.Write(unit, resp.Body, progress); err != nil {
		return library.Content{}, err
	}

	return unit, nil
}

// imageExt picks the file extension from the address, falling back to the
// response type. Non-image responses are rejected.
func imageExt(img *Page, resp *http.Response) (string, error) {
	var mt string
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		mt, _, _ = mime.ParseMediaType(ct)
		if !strings.HasPrefix(mt, "image/") {
			return "", fmt.Errorf("unexpected MIME: %s", ct)
		}
	}

	if ext := strings.ToLower(path.Ext(img.URL.Path)); library.IsImagePath(ext) {
		return ext, nil
	}
	if mt != "" {
		if exts, _ := mime.ExtensionsByType(mt); len(exts) > 0 {
			return exts[0], nil
		}
	}

	return ".jpg", nil
}
