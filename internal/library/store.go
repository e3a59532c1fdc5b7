package library

import (
	"errors"
	"math"
	"slices"
	"sort"
)

var ErrIDOverflow = errors.New("content identifiers exhausted")

// Entry pairs a content unit with its identifier.
type Entry struct {
	ID      ID
	Content Content
}

// Store is a sparse ordered map of content units. Keys are kept sorted so
// range reads and splices don't need to sort on every call.
type Store struct {
	items map[ID]Content
	keys  []ID
}

func NewStore() *Store {
	return &Store{items: make(map[ID]Content)}
}

func (s *Store) Len() int { return len(s.keys) }

func (s *Store) Get(id ID) (Content, bool) {
	c, ok := s.items[id]
	return c, ok
}

func (s *Store) Has(id ID) bool {
	_, ok := s.items[id]
	return ok
}

func (s *Store) Set(id ID, c Content) {
	if _, ok := s.items[id]; !ok {
		i := s.ceil(id)
		s.keys = slices.Insert(s.keys, i, id)
	}
	s.items[id] = c
}

func (s *Store) Delete(id ID) bool {
	if _, ok := s.items[id]; !ok {
		return false
	}

	delete(s.items, id)
	i := s.ceil(id)
	s.keys = slices.Delete(s.keys, i, i+1)

	return true
}

func (s *Store) Keys() []ID { return slices.Clone(s.keys) }

func (s *Store) Max() (ID, bool) {
	if len(s.keys) == 0 {
		return 0, false
	}

	return s.keys[len(s.keys)-1], true
}

// Between returns the units with lo <= id <= hi in identifier order.
func (s *Store) Between(lo, hi ID) []Entry {
	if hi < lo {
		return nil
	}

	var out []Entry
	for i := s.ceil(lo); i < len(s.keys) && s.keys[i] <= hi; i++ {
		id := s.keys[i]
		out = append(out, Entry{ID: id, Content: s.items[id]})
	}

	return out
}

func (s *Store) Entries() []Entry {
	out := make([]Entry, 0, len(s.keys))
	for _, id := range s.keys {
		out = append(out, Entry{ID: id, Content: s.items[id]})
	}

	return out
}

// Swap exchanges the units stored under a and b. Both must exist.
func (s *Store) Swap(a, b ID) bool {
	ca, okA := s.items[a]
	cb, okB := s.items[b]
	if !okA || !okB || a == b {
		return false
	}

	s.items[a], s.items[b] = cb, ca
	return true
}

// RemoveRange deletes every unit inside r and returns them in order.
func (s *Store) RemoveRange(r IDRange) []Content {
	entries := s.Between(r.Lo, r.Hi)
	out := make([]Content, 0, len(entries))
	for _, e := range entries {
		s.Delete(e.ID)
		out = append(out, e.Content)
	}

	return out
}

// Insert splices units in front of the first identifier >= target, or in
// front of the highest identifier when target is past the end. Everything
// from that identifier on is shifted up by len(units), keeping gaps intact.
// The returned range holds the identifiers assigned to the new units.
func (s *Store) Insert(units []Content, target ID) (IDRange, error) {
	k := len(units)
	if k == 0 {
		return IDRange{Lo: 1, Hi: 0}, nil
	}
	if target < 1 {
		target = 1
	}

	if len(s.keys) == 0 {
		if k > math.MaxUint16 {
			return IDRange{}, ErrIDOverflow
		}
		// the cover slot must never be missing
		s.Set(0, units[0])
		for n, u := range units {
			s.Set(ID(n+1), u)
		}

		return IDRange{Lo: 1, Hi: ID(k)}, nil
	}

	split := s.ceil(target)
	if split == len(s.keys) && len(s.keys) > 1 {
		// past the end: split at the highest key
		split--
	}
	base := int(target)
	if split > 0 {
		base = int(s.keys[split-1]) + 1
	}

	last := base + k - 1
	if split < len(s.keys) {
		last = int(s.keys[len(s.keys)-1]) + k
	}
	if last > math.MaxUint16 {
		return IDRange{}, ErrIDOverflow
	}

	leftovers := make([]Entry, 0, len(s.keys)-split)
	for _, id := range s.keys[split:] {
		leftovers = append(leftovers, Entry{ID: id, Content: s.items[id]})
		delete(s.items, id)
	}
	s.keys = s.keys[:split]

	for n, u := range units {
		s.Set(ID(base+n), u)
	}
	for _, e := range leftovers {
		s.Set(e.ID+ID(k), e.Content)
	}

	return IDRange{Lo: ID(base), Hi: ID(base + k - 1)}, nil
}

// Append places units right after the highest identifier. Nothing moves.
func (s *Store) Append(units []Content) (IDRange, error) {
	if len(units) == 0 {
		return IDRange{Lo: 1, Hi: 0}, nil
	}
	m, ok := s.Max()
	if !ok {
		return s.Insert(units, 1)
	}
	if int(m)+len(units) > math.MaxUint16 {
		return IDRange{}, ErrIDOverflow
	}

	for n, u := range units {
		s.Set(m+1+ID(n), u)
	}

	return IDRange{Lo: m + 1, Hi: m + ID(len(units))}, nil
}

// ceil returns the index of the first key >= id.
func (s *Store) ceil(id ID) int {
	return sort.Search(len(s.keys), func(i int) bool { return s.keys[i] >= id })
}
