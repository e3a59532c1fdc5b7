package library

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type contentFile struct {
	ID       ID     `yaml:"id"`
	Kind     string `yaml:"kind"`
	Location string `yaml:"location,omitempty"`
	Source   string `yaml:"source,omitempty"`
	Body     string `yaml:"body,omitempty"`
}

type chapterFile struct {
	Offset ID     `yaml:"offset"`
	Length ID     `yaml:"length"`
	Source string `yaml:"source,omitempty"`
	Name   string `yaml:"name,omitempty"`
	Full   bool   `yaml:"full,omitempty"`
}

type bookFile struct {
	Title    string        `yaml:"title"`
	Source   string        `yaml:"source,omitempty"`
	Current  int           `yaml:"current"`
	Chapters []chapterFile `yaml:"chapters"`
	Content  []contentFile `yaml:"content"`
}

type libraryFile struct {
	Books  []bookFile          `yaml:"books"`
	Groups map[string][]string `yaml:"groups,omitempty"`
}

func kindFromString(s string) Kind {
	switch s {
	case "image":
		return KindImage
	case "text":
		return KindText
	case "other":
		return KindOther
	default:
		return KindEmpty
	}
}

func encodeBook(title Label, b *Book) bookFile {
	bf := bookFile{Title: string(title), Source: b.Source, Current: b.Current}
	for _, c := range b.Chapters {
		bf.Chapters = append(bf.Chapters, chapterFile{
			Offset: c.Offset,
			Length: c.Length,
			Source: c.Source,
			Name:   string(c.Name),
			Full:   c.Full,
		})
	}
	for _, e := range b.Content.Entries() {
		bf.Content = append(bf.Content, contentFile{
			ID:       e.ID,
			Kind:     e.Content.Kind.String(),
			Location: e.Content.Location,
			Source:   e.Content.Source,
			Body:     e.Content.Body,
		})
	}

	return bf
}

func decodeBook(bf bookFile) (*Book, error) {
	b := &Book{Source: bf.Source, Content: NewStore()}
	for _, c := range bf.Chapters {
		b.Chapters = append(b.Chapters, Chapter{
			Offset: c.Offset,
			Length: c.Length,
			Source: c.Source,
			Name:   Label(c.Name),
			Full:   c.Full,
		})
	}
	if len(b.Chapters) == 0 {
		b.Chapters = []Chapter{{}}
	}
	for _, c := range bf.Content {
		if b.Content.Has(c.ID) {
			return nil, fmt.Errorf("book %q: duplicate content id %d", bf.Title, c.ID)
		}
		b.Content.Set(c.ID, Content{
			Kind:     kindFromString(c.Kind),
			Location: c.Location,
			Source:   c.Source,
			Body:     c.Body,
		})
	}
	if !b.Content.Has(0) {
		b.Content.Set(0, Empty())
	}
	if bf.Current < 0 || bf.Current >= len(b.Chapters) {
		return nil, fmt.Errorf("book %q: current chapter %d: %w", bf.Title, bf.Current, ErrChapterIndex)
	}
	b.Current = bf.Current

	return b, nil
}

// Save writes the library index as YAML.
func (l *Library) Save(path string) error {
	var lf libraryFile
	for _, name := range l.Labels() {
		lf.Books = append(lf.Books, encodeBook(name, l.books[l.ids[name]]))
	}
	lf.Groups = make(map[string][]string, len(l.groups))
	for _, g := range l.Groups() {
		names, _ := l.GroupNames(g)
		list := make([]string, 0, len(names))
		for _, n := range names {
			list = append(list, string(n))
		}
		lf.Groups[g] = list
	}

	data, err := yaml.Marshal(&lf)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Load reads a library index written by Save. A missing file yields an
// empty library.
func Load(path string) (*Library, error) {
	l := New()

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, err
	}

	var lf libraryFile
	if err := yaml.Unmarshal(raw, &lf); err != nil {
		return nil, fmt.Errorf("parse library %s: %w", path, err)
	}

	for _, bf := range lf.Books {
		b, err := decodeBook(bf)
		if err != nil {
			return nil, err
		}
		if _, err := l.Add(Label(bf.Title), b); err != nil {
			return nil, err
		}
	}
	for g, names := range lf.Groups {
		l.AddGroup(g)
		for _, n := range names {
			if err := l.AddToGroup(g, Label(n)); err != nil {
				return nil, err
			}
		}
	}

	return l, nil
}
