package library

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrNoBook      = errors.New("book not found")
	ErrLabelTaken  = errors.New("label already in use")
	ErrNoGroup     = errors.New("group not found")
	ErrLibraryFull = errors.New("no free book identifiers")
)

const DefaultGroup = "Reading"

// Label is the display title a caller uses to find a book.
type Label string

func (l Label) String() string { return string(l) }

// Library maps labels to books. Each label gets a numeric identifier the first
// time it is seen; identifiers come from a counter owned by the library.
type Library struct {
	ids    map[Label]ID
	titles map[ID]Label
	books  map[ID]*Book
	groups map[string]map[ID]struct{}
	nextID ID
}

func New() *Library {
	return &Library{
		ids:    make(map[Label]ID),
		titles: make(map[ID]Label),
		books:  make(map[ID]*Book),
		groups: map[string]map[ID]struct{}{DefaultGroup: {}},
	}
}

// allocate hands out the next free identifier, wrapping around at the top.
func (l *Library) allocate() (ID, error) {
	for range math.MaxUint16 + 1 {
		id := l.nextID
		l.nextID++
		if _, used := l.titles[id]; !used {
			return id, nil
		}
	}

	return 0, ErrLibraryFull
}

func (l *Library) id(name Label) (ID, error) {
	if id, ok := l.ids[name]; ok {
		return id, nil
	}

	id, err := l.allocate()
	if err != nil {
		return 0, err
	}
	l.ids[name] = id
	l.titles[id] = name

	return id, nil
}

// Book returns the book stored under name, creating an empty one if needed.
func (l *Library) Book(name Label) (*Book, error) {
	id, err := l.id(name)
	if err != nil {
		return nil, err
	}

	bk, ok := l.books[id]
	if !ok {
		bk = NewBook("")
		l.books[id] = bk
	}

	return bk, nil
}

// Lookup returns the book without creating it.
func (l *Library) Lookup(name Label) (*Book, bool) {
	id, ok := l.ids[name]
	if !ok {
		return nil, false
	}

	bk, ok := l.books[id]
	return bk, ok
}

func (l *Library) ByID(id ID) (*Book, bool) {
	bk, ok := l.books[id]
	return bk, ok
}

func (l *Library) Name(id ID) (Label, bool) {
	name, ok := l.titles[id]
	return name, ok
}

// Add stores bk under name and returns the book it replaced, if any.
func (l *Library) Add(name Label, bk *Book) (*Book, error) {
	id, err := l.id(name)
	if err != nil {
		return nil, err
	}

	prev := l.books[id]
	l.books[id] = bk

	return prev, nil
}

func (l *Library) Replace(name Label, bk *Book) (*Book, error) { return l.Add(name, bk) }

// Remove drops the book and forgets its label.
func (l *Library) Remove(name Label) (*Book, error) {
	id, ok := l.ids[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrNoBook)
	}

	bk := l.books[id]
	delete(l.books, id)
	delete(l.ids, name)
	delete(l.titles, id)
	for _, g := range l.groups {
		delete(g, id)
	}

	return bk, nil
}

func (l *Library) Rename(old, name Label) error {
	id, ok := l.ids[old]
	if !ok {
		return fmt.Errorf("%q: %w", old, ErrNoBook)
	}
	if _, taken := l.ids[name]; taken {
		return fmt.Errorf("%q: %w", name, ErrLabelTaken)
	}

	delete(l.ids, old)
	l.ids[name] = id
	l.titles[id] = name

	return nil
}

func (l *Library) Size() int { return len(l.books) }

// Labels lists the titles of all stored books in order.
func (l *Library) Labels() []Label {
	out := make([]Label, 0, len(l.books))
	for id := range l.books {
		out = append(out, l.titles[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

func (l *Library) AddGroup(name string) {
	if _, ok := l.groups[name]; !ok {
		l.groups[name] = make(map[ID]struct{})
	}
}

func (l *Library) RemoveGroup(name string) bool {
	if _, ok := l.groups[name]; !ok {
		return false
	}

	delete(l.groups, name)
	return true
}

func (l *Library) AddToGroup(group string, names ...Label) error {
	g, ok := l.groups[group]
	if !ok {
		return fmt.Errorf("%q: %w", group, ErrNoGroup)
	}

	for _, n := range names {
		id, ok := l.ids[n]
		if !ok {
			return fmt.Errorf("%q: %w", n, ErrNoBook)
		}
		g[id] = struct{}{}
	}

	return nil
}

func (l *Library) RemoveFromGroup(group string, names ...Label) error {
	g, ok := l.groups[group]
	if !ok {
		return fmt.Errorf("%q: %w", group, ErrNoGroup)
	}

	for _, n := range names {
		if id, ok := l.ids[n]; ok {
			delete(g, id)
		}
	}

	return nil
}

// GroupNames lists the labels in a group in order.
func (l *Library) GroupNames(group string) ([]Label, bool) {
	g, ok := l.groups[group]
	if !ok {
		return nil, false
	}

	out := make([]Label, 0, len(g))
	for id := range g {
		if name, ok := l.titles[id]; ok {
			out = append(out, name)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out, true
}

func (l *Library) Group(group string) ([]*Book, bool) {
	names, ok := l.GroupNames(group)
	if !ok {
		return nil, false
	}

	out := make([]*Book, 0, len(names))
	for _, n := range names {
		if bk, ok := l.books[l.ids[n]]; ok {
			out = append(out, bk)
		}
	}

	return out, true
}

func (l *Library) Groups() []string {
	out := make([]string, 0, len(l.groups))
	for name := range l.groups {
		out = append(out, name)
	}
	sort.Strings(out)

	return out
}

func (l *Library) GroupSize(group string) int { return len(l.groups[group]) }
