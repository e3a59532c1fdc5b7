package retriever

import (
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/pagepal/internal/library"
)

// Finder pulls structured data out of a fetched page. Every hook returns an
// empty result rather than an error when the page doesn't have what it looks
// for.
type Finder interface {
	Name() string
	// Pred is the text the "next" anchor must contain.
	Pred() string
	// SplitBy cuts the chapter part off a page title.
	SplitBy() string
	Headers() http.Header
	Num(p *Page) Numbering
	Title(p *Page) library.Label
	Next(p *Page) (*Page, bool)
	Index(p *Page) (*Page, bool)
	Links(p *Page) []*Page
	Text(p *Page) []string
	Images(p *Page) []*Page
}

// Generic implements every hook with DOM heuristics. Site finders embed it
// and override what differs.
type Generic struct {
	ID      string
	NextPre string
	Split   string
	Referer string
}

func NewGeneric() *Generic {
	return &Generic{ID: "default", NextPre: "Next", Split: " Chapter"}
}

func (g *Generic) Name() string    { return g.ID }
func (g *Generic) Pred() string    { return g.NextPre }
func (g *Generic) SplitBy() string { return g.Split }

func (g *Generic) Headers() http.Header {
	h := http.Header{}
	if g.Referer != "" {
		h.Set("Referer", g.Referer)
	}

	return h
}

func (g *Generic) Num(p *Page) Numbering { return numbering(p.URL) }

// Title is the document title up to the split marker.
func (g *Generic) Title(p *Page) library.Label {
	doc, err := p.Document()
	if err != nil {
		return ""
	}

	title := doc.Find("title").First().Text()
	if g.Split != "" && strings.Contains(title, g.Split) {
		for _, part := range strings.Split(title, g.Split) {
			if part != "" {
				title = part
				break
			}
		}
	}

	return library.Label(strings.TrimSpace(title))
}

// Next follows the first anchor whose text contains Pred.
func (g *Generic) Next(p *Page) (*Page, bool) {
	doc, err := p.Document()
	if err != nil {
		return nil, false
	}

	return firstAnchor(p, doc.Selection, func(a *goquery.Selection) bool {
		return strings.Contains(a.Text(), g.NextPre)
	})
}

// Index guesses the table of contents by cutting chapter and page segments
// off the address.
func (g *Generic) Index(p *Page) (*Page, bool) {
	segs := segments(p.URL.Path)
	keep := len(segs)
	for keep > 0 && looksLikeChapterSegment(segs[keep-1]) {
		keep--
	}
	if keep == len(segs) {
		return nil, false
	}

	u := *p.URL
	u.Path = "/" + strings.Join(segs[:keep], "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""

	return pageFromURL(&u), true
}

// Links returns the anchors of the largest p/table/ul block nested in a div.
func (g *Generic) Links(p *Page) []*Page {
	doc, err := p.Document()
	if err != nil {
		return nil
	}

	best := largest(doc.Find("div p, div table, div ul"), func(s *goquery.Selection) *goquery.Selection {
		return s.Find("a[href]")
	})
	if best == nil {
		return nil
	}

	return resolveAttr(p, best, "href")
}

// Text returns the paragraphs of the div holding the most direct p children.
func (g *Generic) Text(p *Page) []string {
	doc, err := p.Document()
	if err != nil {
		return nil
	}

	parent := largestParent(doc.Find("div > p"))
	if parent == nil {
		return nil
	}

	return textLines(parent)
}

// Images returns the pictures of the div holding the most direct img children.
func (g *Generic) Images(p *Page) []*Page {
	doc, err := p.Document()
	if err != nil {
		return nil
	}

	best := largest(doc.Find("div > img"), func(s *goquery.Selection) *goquery.Selection {
		return s.Parent().Find("img")
	})
	if best == nil {
		return nil
	}

	var out []*Page
	best.Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		if !ok || strings.TrimSpace(src) == "" {
			src, ok = img.Attr("data-src")
		}
		if !ok {
			return
		}
		if pg, err := p.Resolve(src); err == nil {
			out = append(out, pg)
		}
	})

	return out
}

// largest maps every node in sel to a group and returns the biggest group.
// Ties go to the later node.
func largest(sel *goquery.Selection, group func(*goquery.Selection) *goquery.Selection) *goquery.Selection {
	var best *goquery.Selection
	sel.Each(func(_ int, s *goquery.Selection) {
		g := group(s)
		if g.Length() == 0 {
			return
		}
		if best == nil || g.Length() >= best.Length() {
			best = g
		}
	})

	return best
}

// largestParent returns the parent with the most children among the parents
// of sel.
func largestParent(sel *goquery.Selection) *goquery.Selection {
	var best *goquery.Selection
	bestN := 0
	sel.Each(func(_ int, s *goquery.Selection) {
		parent := s.Parent()
		if n := parent.Children().Length(); best == nil || n >= bestN {
			best, bestN = parent, n
		}
	})

	return best
}

// textLines collects the non-blank text of every child node, elements and
// bare text alike, in document order.
func textLines(parent *goquery.Selection) []string {
	var out []string
	parent.Contents().Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			out = append(out, t)
		}
	})

	return out
}

func resolveAttr(p *Page, sel *goquery.Selection, attr string) []*Page {
	var out []*Page
	sel.Each(func(_ int, s *goquery.Selection) {
		v, ok := s.Attr(attr)
		if !ok {
			return
		}
		if pg, err := p.Resolve(v); err == nil {
			out = append(out, pg)
		}
	})

	return out
}

func firstAnchor(p *Page, root *goquery.Selection, match func(*goquery.Selection) bool) (*Page, bool) {
	var found *Page
	root.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if !match(a) {
			return true
		}

		href, _ := a.Attr("href")
		pg, err := p.Resolve(href)
		if err != nil {
			return true
		}

		found = pg
		return false
	})

	return found, found != nil
}
