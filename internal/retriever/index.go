package retriever

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/pagepal/internal/chapters"
)

// ChapterLinks lists the chapter anchors of a fetched index page, ordered by
// chapter number. Anchors that don't parse as chapters are skipped.
func (r *Retriever) ChapterLinks(index *Page) ([]chapters.Chapter, error) {
	doc, err := index.Document()
	if err != nil {
		return nil, err
	}

	var out []chapters.Chapter
	seen := map[string]bool{}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		text := strings.TrimSpace(a.Text())
		if !looksLikeChapterLink(href, text) {
			return
		}

		n, ok := parseChapterLabel(strings.TrimSpace(href), text)
		if !ok {
			return
		}

		pg, err := index.Resolve(href)
		if err != nil {
			return
		}
		u := pg.URL.String()
		if seen[u] {
			return
		}
		seen[u] = true

		title := text
		if title == "" {
			title = "Chapter " + n.Label
		}

		out = append(out, chapters.Chapter{
			URL:        u,
			Title:      title,
			Num:        n.Chapter,
			SuffixType: n.SuffixType,
			SuffixNum:  n.SuffixNum,
			Label:      n.Label,
		})
	})

	sort.SliceStable(out, func(i, j int) bool { return out[i].Less(out[j]) })

	return out, nil
}
