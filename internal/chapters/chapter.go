package chapters

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// Chapter is one entry of a series index.
type Chapter struct {
	URL        string
	Title      string
	Num        int
	SuffixType string
	SuffixNum  int
	Label      string
}

// Less orders chapters by number, then by suffix.
func (c Chapter) Less(o Chapter) bool {
	if c.Num != o.Num {
		return c.Num < o.Num
	}
	if c.SuffixType != o.SuffixType {
		return c.SuffixType < o.SuffixType
	}

	return c.SuffixNum < o.SuffixNum
}

var reUnderscore = regexp.MustCompile(`_+`)

func sanitize(s string) string {
	s = strings.ToLower(s)

	s = strings.NewReplacer(
		"•", "_",
		"-", "_",
		"—", "_",
		"–", "_",
		"/", "_",
		"\\", "_",
		".", "_",
		" ", "_",
		"(", "",
		")", "",
	).Replace(s)

	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return r
		}
		return -1
	}, s)

	return strings.Trim(reUnderscore.ReplaceAllString(s, "_"), "_")
}

func (c Chapter) baseName() string {
	lbl := sanitize(c.Label)
	title := sanitize(c.Title)

	if title != "" && title != lbl {
		return lbl + "_" + title
	}

	return lbl
}

func (c Chapter) OutputCBZ() string {
	return c.baseName() + ".cbz"
}

func (c Chapter) OutputCBZPath(out string) string {
	return filepath.Join(out, c.OutputCBZ())
}
