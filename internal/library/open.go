package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Open builds a book out of root/title. The image named after the title is
// used as the cover, loose images are added without a chapter and every
// subdirectory becomes one chapter.
func Open(root string, title Label) (*Book, error) {
	dir := filepath.Join(root, string(title))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("open book %q: %w", title, err)
	}

	book := NewBook("")

	coverName := string(title) + ".jpg"
	if _, err := os.Stat(filepath.Join(dir, coverName)); err == nil {
		if _, err := book.Insert([]Content{Image(filepath.Join(dir, coverName), "")}, Cover); err != nil {
			return nil, err
		}
	}

	var top []Content
	var subdirs []string
	for _, e := range entries {
		name := e.Name()
		switch {
		case e.IsDir():
			subdirs = append(subdirs, name)
		case name == coverName:
		case IsImagePath(name):
			top = append(top, Image(filepath.Join(dir, name), ""))
		}
	}

	sortContent(top)
	if _, err := book.Insert(top, Last); err != nil {
		return nil, err
	}

	sort.Strings(subdirs)
	for _, sub := range subdirs {
		units, err := scanChapterDir(filepath.Join(dir, sub))
		if err != nil {
			return nil, err
		}
		if len(units) == 0 {
			continue
		}

		r, err := book.Insert(units, Last)
		if err != nil {
			return nil, err
		}

		book.AddChapter(Chapter{
			Offset: r.Lo,
			Length: r.Hi - r.Lo,
			Name:   Label(sub),
			Full:   true,
		})
	}

	if book.valid(1) {
		_ = book.SelectChapter(1)
	}

	return book, nil
}

func scanChapterDir(dir string) ([]Content, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	var out []Content
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !IsImagePath(name) {
			continue
		}
		if strings.TrimSuffix(name, filepath.Ext(name)) == "cover" {
			continue
		}

		out = append(out, Image(filepath.Join(dir, name), ""))
	}
	sortContent(out)

	return out, nil
}

func sortContent(units []Content) {
	sort.SliceStable(units, func(i, j int) bool { return units[i].Less(units[j]) })
}
