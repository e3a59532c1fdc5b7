package retriever

import (
	"bytes"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/publicsuffix"
)

// StaleAfter is how long a fetched body is considered current.
const StaleAfter = 10 * time.Minute

type pageState struct {
	mu   sync.RWMutex
	body []byte
	last time.Time
}

// Page is one network resource. Clones share the body and fetch time, so
// handing a Page to several consumers never copies the document.
type Page struct {
	URL    *url.URL
	req    *http.Request
	shared *pageState
}

func NewPage(address string) (*Page, error) {
	u, err := url.Parse(strings.TrimSpace(address))
	if err != nil {
		return nil, fmt.Errorf("%q: %w", address, ErrBadAddress)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%q is not absolute: %w", address, ErrBadAddress)
	}

	return pageFromURL(u), nil
}

func pageFromURL(u *url.URL) *Page {
	return &Page{URL: u, shared: &pageState{}}
}

func (p *Page) Clone() *Page {
	u := *p.URL
	return &Page{URL: &u, req: p.req, shared: p.shared}
}

func (p *Page) String() string { return p.URL.String() }

// Prepare attaches the request used by the next fetch.
func (p *Page) Prepare(req *http.Request) { p.req = req }

func (p *Page) Prepared() bool { return p.req != nil }

func (p *Page) Request() *http.Request { return p.req }

func (p *Page) store(body []byte) {
	p.shared.mu.Lock()
	defer p.shared.mu.Unlock()

	p.shared.body = body
	p.shared.last = time.Now()
}

func (p *Page) Body() []byte {
	p.shared.mu.RLock()
	defer p.shared.mu.RUnlock()

	return p.shared.body
}

func (p *Page) HTML() string { return string(p.Body()) }

// Document parses the cached body.
func (p *Page) Document() (*goquery.Document, error) {
	body := p.Body()
	if body == nil {
		return nil, fmt.Errorf("%s: %w", p.URL, ErrNotFetched)
	}

	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

func (p *Page) Fetched() bool { return p.Body() != nil }

func (p *Page) LastFetched() time.Time {
	p.shared.mu.RLock()
	defer p.shared.mu.RUnlock()

	return p.shared.last
}

// IsOld reports whether the page was never fetched or was fetched more than
// maxAge ago.
func (p *Page) IsOld(maxAge time.Duration) bool {
	last := p.LastFetched()
	return last.IsZero() || time.Since(last) > maxAge
}

// Empty drops the body. The fetch time is kept.
func (p *Page) Empty() {
	p.shared.mu.Lock()
	defer p.shared.mu.Unlock()

	p.shared.body = nil
}

// Domain is the registrable domain of the page. IP and single-label hosts
// keep their port so that local servers stay apart.
func (p *Page) Domain() string {
	host := p.URL.Hostname()
	if net.ParseIP(host) != nil || !strings.Contains(host, ".") {
		return p.URL.Host
	}

	d, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}

	return d
}

func (p *Page) Origin() string {
	return p.URL.Scheme + "://" + p.URL.Host + "/"
}

// Resolve turns an href found on this page into a new Page.
func (p *Page) Resolve(href string) (*Page, error) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "#") {
		return nil, fmt.Errorf("%q: %w", href, ErrBadAddress)
	}

	ref, err := url.Parse(href)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", href, ErrBadAddress)
	}

	u := p.URL.ResolveReference(ref)
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%q: %w", href, ErrBadAddress)
	}

	return pageFromURL(u), nil
}
