package retriever

import (
	"net/http"
	"testing"

	"github.com/brogergvhs/pagepal/internal/library"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addresses(pages []*Page) []string {
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		out = append(out, p.String())
	}

	return out
}

func TestGeneric_Title(t *testing.T) {
	t.Parallel()

	g := NewGeneric()

	p := loaded(t, "https://example.com/foo/chapter-12", "<html><head><title>Foo Bar Chapter 12</title></head></html>")
	assert.Equal(t, library.Label("Foo Bar"), g.Title(p))

	p = loaded(t, "https://example.com/about", "<html><head><title> About us </title></head></html>")
	assert.Equal(t, library.Label("About us"), g.Title(p))

	p, err := NewPage("https://example.com/")
	require.NoError(t, err)
	assert.Equal(t, library.Label(""), g.Title(p))
}

func TestGeneric_Next(t *testing.T) {
	t.Parallel()

	g := NewGeneric()
	p := loaded(t, "https://example.com/foo/chapter-1", `<html><body>
		<a href="/foo/chapter-0">Prev</a>
		<a href="javascript:void(0)">Next</a>
		<a href="chapter-2">Next chapter</a>
		<a href="chapter-3">Next</a>
	</body></html>`)

	next, ok := g.Next(p)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/foo/chapter-2", next.String())

	_, ok = NewManganato().Next(p)
	assert.False(t, ok)
}

func TestGeneric_Links(t *testing.T) {
	t.Parallel()

	g := NewGeneric()
	p := loaded(t, "https://example.com/foo", `<html><body>
		<div class="side"><ul><li><a href="/a">a</a></li><li><a href="/b">b</a></li></ul></div>
		<div class="main"><ul>
			<li><a href="/foo/chapter-1">1</a></li>
			<li><a href="/foo/chapter-2">2</a></li>
			<li><a href="#">top</a></li>
			<li><a href="/foo/chapter-3">3</a></li>
		</ul></div>
	</body></html>`)

	assert.Equal(t, []string{
		"https://example.com/foo/chapter-1",
		"https://example.com/foo/chapter-2",
		"https://example.com/foo/chapter-3",
	}, addresses(g.Links(p)))

	empty := loaded(t, "https://example.com/", "<html><body><p>none</p></body></html>")
	assert.Empty(t, g.Links(empty))
}

func TestGeneric_Text(t *testing.T) {
	t.Parallel()

	g := NewGeneric()
	p := loaded(t, "https://example.com/novel/1", `<html><body>
		<div id="nav"><p>Menu</p></div>
		<div id="chapter"><p>One</p><p> Two </p><p></p><p>Three</p></div>
	</body></html>`)

	assert.Equal(t, []string{"One", "Two", "Three"}, g.Text(p))

	empty := loaded(t, "https://example.com/", "<html><body></body></html>")
	assert.Empty(t, g.Text(empty))
}

func TestGeneric_Images(t *testing.T) {
	t.Parallel()

	g := NewGeneric()
	p := loaded(t, "https://example.com/foo/chapter-1", `<html><body>
		<div class="ad"><img src="/ad.png"></div>
		<div class="reader">
			<img src="/img/1.jpg">
			<img data-src="/img/2.jpg">
			<img alt="broken">
			<img src="https://cdn.example.net/3.jpg">
		</div>
	</body></html>`)

	assert.Equal(t, []string{
		"https://example.com/img/1.jpg",
		"https://example.com/img/2.jpg",
		"https://cdn.example.net/3.jpg",
	}, addresses(g.Images(p)))

	empty := loaded(t, "https://example.com/", "<html><body><p>text only</p></body></html>")
	assert.Empty(t, g.Images(empty))
}

func TestGeneric_Index(t *testing.T) {
	t.Parallel()

	g := NewGeneric()

	p := loaded(t, "https://example.com/manga/foo/chapter-12?page=2", "")
	idx, ok := g.Index(p)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/manga/foo", idx.String())

	p = loaded(t, "https://example.com/read/foo/12/3", "")
	idx, ok = g.Index(p)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/read/foo", idx.String())

	p = loaded(t, "https://example.com/about", "")
	_, ok = g.Index(p)
	assert.False(t, ok)
}

func TestGeneric_Headers(t *testing.T) {
	t.Parallel()

	assert.Empty(t, NewGeneric().Headers())
	assert.Equal(t, "https://manganato.com/", NewManganato().Headers().Get("Referer"))
	assert.Equal(t, "NEXT", NewManganato().Pred())
	assert.Equal(t, " Chapter", NewManganato().SplitBy())
}

func TestRoyalRoad_Text(t *testing.T) {
	t.Parallel()

	p := loaded(t, "https://www.royalroad.com/fiction/1/chapter/2", `<html><body>
		<div class="author"><p>About the author</p></div>
		<div class="chapter-content">Line one<br>Line two<br>Line three<br></div>
	</body></html>`)

	assert.Equal(t, []string{"Line one", "Line two", "Line three"}, NewRoyalRoad().Text(p))
}

func TestRealm(t *testing.T) {
	t.Parallel()

	r := NewRealm()
	p := loaded(t, "https://realm.example/series/foo/1", `<html><body>
		<p>All chapters are in <a href="/series/foo">Foo</a></p>
		<script>var data = {"nextUrl":"https:\/\/realm.example\/series\/foo\/2","images":["https:\/\/cdn.example\/1.jpg","https:\/\/cdn.example\/2.jpg"]};</script>
	</body></html>`)

	next, ok := r.Next(p)
	require.True(t, ok)
	assert.Equal(t, "https://realm.example/series/foo/2", next.String())

	assert.Equal(t, []string{
		"https://cdn.example/1.jpg",
		"https://cdn.example/2.jpg",
	}, addresses(r.Images(p)))

	idx, ok := r.Index(p)
	require.True(t, ok)
	assert.Equal(t, "https://realm.example/series/foo", idx.String())

	plain := loaded(t, "https://realm.example/", "<html></html>")
	_, ok = r.Next(plain)
	assert.False(t, ok)
	assert.Empty(t, r.Images(plain))
}

func TestPreset_Build(t *testing.T) {
	t.Parallel()

	f, err := Preset{Domain: "example.org", Finder: "manganato", Next: "Weiter", Split: " Kapitel"}.Build()
	require.NoError(t, err)
	assert.Equal(t, "example.org", f.Name())
	assert.Equal(t, "Weiter", f.Pred())
	assert.Equal(t, " Kapitel", f.SplitBy())
	assert.Equal(t, http.Header{"Referer": {"https://manganato.com/"}}, f.Headers())

	f, err = Preset{Domain: "novel.example", Finder: "royalroad"}.Build()
	require.NoError(t, err)
	assert.IsType(t, &RoyalRoad{}, f)

	_, err = Preset{Domain: "x.example", Finder: "nope"}.Build()
	assert.Error(t, err)
}

func TestNumbering(t *testing.T) {
	t.Parallel()

	cases := []struct {
		address string
		want    Numbering
	}{
		{"https://example.com/manga/foo/chapter-12", Numbering{Chapter: 12, Label: "12"}},
		{"https://example.com/series/foo/chapter-12/3", Numbering{Chapter: 12, Page: 3, Label: "12"}},
		{"https://example.com/read/7/15", Numbering{Chapter: 7, Page: 15, Label: "7"}},
		{"https://example.com/", Numbering{}},
	}

	for _, tc := range cases {
		p, err := NewPage(tc.address)
		require.NoError(t, err)
		assert.Equal(t, tc.want, NewGeneric().Num(p), tc.address)
	}
}
