package retriever

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func (g *Generic) generic() *Generic { return g }

// Manganato uses upper-case navigation and rejects images without a Referer.
type Manganato struct{ *Generic }

func NewManganato() *Manganato {
	g := NewGeneric()
	g.ID = "manganato"
	g.NextPre = "NEXT"
	g.Referer = "https://manganato.com/"

	return &Manganato{g}
}

// RoyalRoad chapters are loose text separated by p and br tags.
type RoyalRoad struct{ *Generic }

func NewRoyalRoad() *RoyalRoad {
	g := NewGeneric()
	g.ID = "royalroad"

	return &RoyalRoad{g}
}

// Text takes the parent of the largest p/br cluster.
func (r *RoyalRoad) Text(p *Page) []string {
	doc, err := p.Document()
	if err != nil {
		return nil
	}

	parent := largestParent(doc.Find("p, br"))
	if parent == nil {
		return nil
	}

	return textLines(parent)
}

// Realm pages carry their navigation in an embedded JSON blob rather than in
// the markup.
type Realm struct{ *Generic }

func NewRealm() *Realm {
	g := NewGeneric()
	g.ID = "realm"

	return &Realm{g}
}

// quoted splits raw HTML on double quotes and returns the tokens from the
// first one mentioning key onwards.
func quoted(html, key string) []string {
	tokens := strings.Split(html, `"`)
	for i, t := range tokens {
		if strings.Contains(t, key) {
			return tokens[i:]
		}
	}

	return nil
}

func (r *Realm) Next(p *Page) (*Page, bool) {
	tokens := quoted(p.HTML(), "nextUrl")
	if len(tokens) < 3 {
		return nil, false
	}

	pg, err := p.Resolve(strings.ReplaceAll(tokens[2], `\`, ""))
	if err != nil {
		return nil, false
	}

	return pg, true
}

func (r *Realm) Images(p *Page) []*Page {
	tokens := quoted(p.HTML(), "nextUrl")
	start := -1
	for i, t := range tokens {
		if strings.Contains(t, "images") {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}

	var out []*Page
	for i := start + 2; i < len(tokens); i += 2 {
		t := tokens[i]
		if !strings.Contains(t, "http") {
			break
		}
		if pg, err := p.Resolve(strings.ReplaceAll(t, `\`, "")); err == nil {
			out = append(out, pg)
		}
	}

	return out
}

func (r *Realm) Index(p *Page) (*Page, bool) {
	doc, err := p.Document()
	if err != nil {
		return nil, false
	}

	return firstAnchor(p, doc.Selection, func(a *goquery.Selection) bool {
		return strings.Contains(a.Parent().Text(), "All chapters are in ")
	})
}

// Builtin returns a fresh finder by name.
func Builtin(name string) (Finder, bool) {
	switch strings.ToLower(name) {
	case "", "default", "generic":
		return NewGeneric(), true
	case "manganato":
		return NewManganato(), true
	case "royalroad":
		return NewRoyalRoad(), true
	case "realm":
		return NewRealm(), true
	default:
		return nil, false
	}
}

// builtinHosts are registered on every new Retriever.
var builtinHosts = map[string]string{
	"manganato.com":     "manganato",
	"chapmanganato.com": "manganato",
	"readmanganato.com": "manganato",
	"royalroad.com":     "royalroad",
}

// Preset adjusts a built-in finder for one domain.
type Preset struct {
	Domain  string `yaml:"domain"`
	Finder  string `yaml:"finder,omitempty"`
	Next    string `yaml:"next,omitempty"`
	Split   string `yaml:"split,omitempty"`
	Referer string `yaml:"referer,omitempty"`
}

func (ps Preset) Build() (Finder, error) {
	f, ok := Builtin(ps.Finder)
	if !ok {
		return nil, fmt.Errorf("preset %s: unknown finder %q", ps.Domain, ps.Finder)
	}

	g := f.(interface{ generic() *Generic }).generic()
	if ps.Domain != "" {
		g.ID = ps.Domain
	}
	if ps.Next != "" {
		g.NextPre = ps.Next
	}
	if ps.Split != "" {
		g.Split = ps.Split
	}
	if ps.Referer != "" {
		g.Referer = ps.Referer
	}

	return f, nil
}
