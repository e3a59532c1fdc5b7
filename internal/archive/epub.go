package archive

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/brogergvhs/pagepal/internal/library"
	"github.com/go-shiori/go-epub"
)

// Section is one chapter of an EPUB.
type Section struct {
	Title string
	Units []library.Content
}

// Sections splits a book into one section per chapter, skipping the
// bookmark. Chapters without content are left out.
func Sections(b *library.Book) []Section {
	var out []Section
	for n := 1; n < b.ChapterCount(); n++ {
		entries, err := b.Chapter(n)
		if err != nil || len(entries) == 0 {
			continue
		}

		info, _ := b.ChapterInfo(n)
		title := info.Name.String()
		if title == "" {
			title = fmt.Sprintf("Chapter %d", n)
		}

		units := make([]library.Content, 0, len(entries))
		for _, e := range entries {
			units = append(units, e.Content)
		}
		out = append(out, Section{Title: title, Units: units})
	}

	return out
}

// EPUB writes sections as an e-book at output. Images are embedded one per
// page; text units become paragraphs split on blank lines.
func EPUB(output string, title library.Label, author string, sections []Section) error {
	if len(sections) == 0 {
		return fmt.Errorf("epub %s: %w", output, ErrNoPages)
	}

	e, err := epub.NewEpub(title.String())
	if err != nil {
		return fmt.Errorf("epub: %w", err)
	}
	if author != "" {
		e.SetAuthor(author)
	}
	e.SetLang("en")

	for i, s := range sections {
		body, err := sectionBody(e, i+1, s)
		if err != nil {
			return fmt.Errorf("epub: section %q: %w", s.Title, err)
		}
		if _, err := e.AddSection(body, s.Title, "", ""); err != nil {
			return fmt.Errorf("epub: section %q: %w", s.Title, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return fmt.Errorf("epub: %w", err)
	}
	if err := e.Write(output); err != nil {
		return fmt.Errorf("epub: write %s: %w", output, err)
	}

	return nil
}

func sectionBody(e *epub.Epub, n int, s Section) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(s.Title))

	for i, u := range s.Units {
		switch u.Kind {
		case library.KindImage:
			name := fmt.Sprintf("s%04d_%04d%s", n, i+1, strings.ToLower(filepath.Ext(u.Location)))
			internal, err := e.AddImage(u.Location, name)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, `<div class="page"><img src="%s" alt="Page %d" style="width:100%%;height:auto;"/></div>`+"\n", internal, i+1)
		case library.KindText:
			for _, para := range strings.Split(u.Body, "\n\n") {
				if para = strings.TrimSpace(para); para != "" {
					fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(para))
				}
			}
		}
	}

	return b.String(), nil
}
