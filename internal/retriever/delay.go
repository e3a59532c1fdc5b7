package retriever

import (
	"context"
	"sync"
	"time"
)

// DefaultDelay is the minimum spacing between two requests to one domain.
const DefaultDelay = 100 * time.Millisecond

// Delay spaces out requests to a single domain. Callers for the same domain
// queue on mu, so each observes the full interval after the previous one.
type Delay struct {
	mu   sync.Mutex
	last time.Time
}

// Wait blocks until interval has passed since the previous call returned. The
// first call never waits.
func (d *Delay) Wait(ctx context.Context, interval time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.last.IsZero() {
		if wait := time.Until(d.last.Add(interval)); wait > 0 {
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
	}
	d.last = time.Now()

	return nil
}

type delays struct {
	mu sync.Mutex
	m  map[string]*Delay
}

func (ds *delays) get(domain string) *Delay {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.m == nil {
		ds.m = make(map[string]*Delay)
	}

	d, ok := ds.m[domain]
	if !ok {
		d = &Delay{}
		ds.m[domain] = d
	}

	return d
}
