package retriever

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/brogergvhs/pagepal/internal/library"
	"github.com/brogergvhs/pagepal/internal/storage"
	"github.com/brogergvhs/pagepal/internal/util"
)

type Logger interface {
	Debugf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}

type Options struct {
	Client *http.Client
	Store  *storage.FileStore
	Logger Logger

	// Delay is the minimum spacing between requests to one domain.
	Delay      time.Duration
	Attempts   int
	Backoff    time.Duration
	Workers    int
	SkipBroken bool
	Presets    []Preset
}

// Retriever fetches pages politely and turns them into book content. The
// finder registry and the delay map are shared by every in-flight request.
type Retriever struct {
	client     *http.Client
	store      *storage.FileStore
	log        Logger
	interval   time.Duration
	attempts   int
	backoff    time.Duration
	workers    int
	skipBroken bool

	mu      sync.RWMutex
	finders []Finder
	hosts   map[string]int

	delays delays
}

func New(opts Options) (*Retriever, error) {
	client := opts.Client
	if client == nil {
		c, err := util.NewHTTPClient(util.HTTPClientOptions{
			Timeout:   30 * time.Second,
			UserAgent: util.PickUserAgent(""),
		})
		if err != nil {
			return nil, err
		}
		client = c
	}

	r := &Retriever{
		client:     client,
		store:      opts.Store,
		log:        opts.Logger,
		interval:   opts.Delay,
		attempts:   max(1, opts.Attempts),
		backoff:    opts.Backoff,
		workers:    max(1, opts.Workers),
		skipBroken: opts.SkipBroken,
		finders:    []Finder{NewGeneric()},
		hosts:      make(map[string]int),
	}
	if r.store == nil {
		r.store = storage.New("")
	}
	if r.log == nil {
		r.log = nopLogger{}
	}
	if r.interval <= 0 {
		r.interval = DefaultDelay
	}
	if r.backoff <= 0 {
		r.backoff = 500 * time.Millisecond
	}

	for domain, name := range builtinHosts {
		f, _ := Builtin(name)
		r.Register(f, domain)
	}
	for _, ps := range opts.Presets {
		f, err := ps.Build()
		if err != nil {
			return nil, err
		}
		r.Register(f, ps.Domain)
	}

	return r, nil
}

func (r *Retriever) Store() *storage.FileStore { return r.store }

// Register adds a finder and routes the given domains to it. It returns the
// finder's index.
func (r *Retriever) Register(f Finder, domains ...string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.finders = append(r.finders, f)
	idx := len(r.finders) - 1
	for _, d := range domains {
		r.hosts[d] = idx
	}

	return idx
}

// AddHost routes domain to an already registered finder.
func (r *Retriever) AddHost(domain string, idx int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx < 0 || idx >= len(r.finders) {
		return fmt.Errorf("finder %d out of range", idx)
	}
	r.hosts[domain] = idx

	return nil
}

// AddRelated lets rel's domain inherit the finder of from's domain, unless rel
// already has one.
func (r *Retriever) AddRelated(from, rel *Page) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.addRelated(from.Domain(), rel.Domain())
}

func (r *Retriever) AddRelatedBatch(from *Page, rels []*Page) {
	r.mu.Lock()
	defer r.mu.Unlock()

	src := from.Domain()
	if _, ok := r.hosts[src]; !ok {
		return
	}
	for _, rel := range rels {
		r.addRelated(src, rel.Domain())
	}
}

func (r *Retriever) addRelated(src, dst string) {
	idx, ok := r.hosts[src]
	if !ok {
		return
	}
	if _, taken := r.hosts[dst]; !taken {
		r.hosts[dst] = idx
	}
}

// Finder returns the finder registered for the page's domain, or the
// default one.
func (r *Retriever) Finder(p *Page) Finder {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.finders[r.hosts[p.Domain()]]
}

// do prepares and sends the page's request, honouring the domain delay.
// The caller owns the response body.
func (r *Retriever) do(ctx context.Context, p *Page) (*http.Response, error) {
	if !p.Prepared() {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.URL, ErrBadAddress)
		}
		for k, v := range r.Finder(p).Headers() {
			req.Header[k] = v
		}
		p.Prepare(req)
	}

	if err := r.delays.get(p.Domain()).Wait(ctx, r.interval); err != nil {
		return nil, err
	}

	resp, err := util.DoWithRetry(ctx, r.client, p.Request(), r.attempts, r.backoff)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", p.URL, err)
	}
	if resp.StatusCode >= 400 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %w", p.URL, &util.StatusError{Code: resp.StatusCode, Attempts: 1})
	}

	return resp, nil
}

// Get fetches the page and caches its body.
func (r *Retriever) Get(ctx context.Context, p *Page) (*Page, error) {
	resp, err := r.do(ctx, p)
	if err != nil {
		return p, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return p, fmt.Errorf("read %s: %w", p.URL, err)
	}
	p.store(body)
	r.log.Debugf("fetched %s (%d bytes)\n", p.URL, len(body))

	return p, nil
}

func (r *Retriever) Num(p *Page) Numbering { return r.Finder(p).Num(p) }

func (r *Retriever) Title(p *Page) library.Label { return r.Finder(p).Title(p) }

func (r *Retriever) Text(p *Page) []string { return r.Finder(p).Text(p) }

// Index fetches the page's table of contents. Pages without one are their own
// index.
func (r *Retriever) Index(ctx context.Context, p *Page) (*Page, error) {
	idx, ok := r.Finder(p).Index(p)
	if !ok {
		return p, nil
	}

	return r.Get(ctx, idx)
}

// Next fetches the following page. ok is false when there is none.
func (r *Retriever) Next(ctx context.Context, p *Page) (next *Page, ok bool, err error) {
	next, ok = r.Finder(p).Next(p)
	if !ok {
		return nil, false, nil
	}

	next, err = r.Get(ctx, next)
	if err != nil {
		return nil, false, err
	}

	return next, true, nil
}

// Links fetches every link of the page's largest link block. Links that fail
// are left out and reported together.
func (r *Retriever) Links(ctx context.Context, p *Page) ([]*Page, error) {
	var out []*Page
	var errs []error
	for _, l := range r.Finder(p).Links(p) {
		if _, err := r.Get(ctx, l); err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			errs = append(errs, err)
			continue
		}
		out = append(out, l)
	}

	return out, errors.Join(errs...)
}

// Images returns the page's pictures with requests prepared but not sent;
// Materialize fetches and stores them. Image hosts inherit the page's finder
// so they get the right headers.
func (r *Retriever) Images(ctx context.Context, p *Page) []*Page {
	images := r.Finder(p).Images(p)
	r.AddRelatedBatch(p, images)

	for _, img := range images {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, img.URL.String(), nil)
		if err != nil {
			continue
		}
		for k, v := range r.Finder(img).Headers() {
			req.Header[k] = v
		}
		if req.Header.Get("Referer") == "" {
			req.Header.Set("Referer", p.URL.String())
		}
		req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")
		img.Prepare(req)
	}

	return images
}

// NewChapter describes the chapter found at p without downloading it.
func (r *Retriever) NewChapter(p *Page) library.Chapter {
	return library.Chapter{
		Name:   r.Title(p),
		Source: p.URL.String(),
	}
}
