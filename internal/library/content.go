package library

import (
	"path/filepath"
	"strings"
)

type Kind int

const (
	KindEmpty Kind = iota
	KindImage
	KindText
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindText:
		return "text"
	case KindOther:
		return "other"
	default:
		return "empty"
	}
}

// Content is one unit of reading material. Location is where the unit lives
// on disk, Source the network address it was fetched from (if any).
type Content struct {
	Kind     Kind
	Location string
	Source   string
	Body     string
}

func Image(location, source string) Content {
	return Content{Kind: KindImage, Location: location, Source: source}
}

func Text(location, source, body string) Content {
	return Content{Kind: KindText, Location: location, Source: source, Body: body}
}

func Other(location, source string) Content {
	return Content{Kind: KindOther, Location: location, Source: source}
}

func Empty() Content {
	return Content{}
}

// FromLines builds an unsorted text unit out of extracted paragraphs.
func FromLines(lines []string) Content {
	return Text(filepath.Join("library", "unsorted"), "", strings.Join(lines, "\n\n"))
}

func (c Content) IsEmpty() bool { return c.Kind == KindEmpty }

func (c Content) Visual() bool { return c.Kind == KindImage }

// Equal ignores Source: two units are the same if they point at the same file
// (and, for text, carry the same body).
func (c Content) Equal(o Content) bool {
	if c.Kind != o.Kind {
		return false
	}

	switch c.Kind {
	case KindEmpty:
		return true
	case KindText:
		return c.Location == o.Location && c.Body == o.Body
	default:
		return c.Location == o.Location
	}
}

func (c Content) Less(o Content) bool {
	if c.Location != o.Location {
		return c.Location < o.Location
	}

	return c.Body < o.Body
}

var imageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".gif":  true,
	".tiff": true,
	".webp": true,
}

// IsImagePath reports whether the file extension is one we render as a picture.
func IsImagePath(p string) bool {
	return imageExt[strings.ToLower(filepath.Ext(p))]
}
