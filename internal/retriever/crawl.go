package retriever

import (
	"context"
	"fmt"
)

// Visit handles one fetched page of a crawl. n counts from 1.
type Visit func(ctx context.Context, p *Page, n int) error

// Crawl walks next links from start, calling visit on each page. It stops
// when a page has no next link, when maxPages pages were visited (0 means no
// cap), or when a next link points back at a page already seen.
func (r *Retriever) Crawl(ctx context.Context, start *Page, maxPages int, visit Visit) (int, error) {
	queue := []*Page{start}
	seen := make(map[string]bool)
	n := 0

	for len(queue) > 0 {
		if maxPages > 0 && n >= maxPages {
			r.log.Debugf("page cap %d reached\n", maxPages)
			break
		}
		if err := ctx.Err(); err != nil {
			return n, err
		}

		p := queue[0]
		queue = queue[1:]

		key := *p.URL
		key.Fragment = ""
		if seen[key.String()] {
			r.log.Debugf("%s already visited, stopping\n", p.URL)
			break
		}
		seen[key.String()] = true

		if !p.Fetched() {
			if _, err := r.Get(ctx, p); err != nil {
				return n, err
			}
		}

		n++
		if err := visit(ctx, p, n); err != nil {
			return n, fmt.Errorf("page %d (%s): %w", n, p.URL, err)
		}

		if next, ok := r.Finder(p).Next(p); ok {
			queue = append(queue, next)
		}
		p.Empty()
	}

	return n, nil
}
