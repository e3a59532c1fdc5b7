package library

import "math"

// ID addresses a content unit inside a Book. 0 is the cover slot.
type ID = uint16

// IDRange is a closed range of identifiers [Lo, Hi].
type IDRange struct {
	Lo ID
	Hi ID
}

func (r IDRange) Contains(n ID) bool { return r.Lo <= n && n <= r.Hi }

func (r IDRange) Count() int {
	if r.Hi < r.Lo {
		return 0
	}

	return int(r.Hi-r.Lo) + 1
}

// Chapter is a named span [Offset, Offset+Length] over content identifiers.
type Chapter struct {
	Offset ID
	Length ID
	Source string
	Name   Label
	Full   bool
}

func (c Chapter) Start() ID { return c.Offset }

func (c Chapter) End() ID { return addSat(c.Offset, int(c.Length)) }

func (c Chapter) Contains(n ID) bool { return c.Offset <= n && n <= c.End() }

func (c Chapter) Range() IDRange { return IDRange{Lo: c.Offset, Hi: c.End()} }

// Count is the number of identifiers covered by the span.
func (c Chapter) Count() int { return c.Range().Count() }

func (c *Chapter) SetSource(src string) *Chapter {
	c.Source = src
	return c
}

func (c *Chapter) SetName(name Label) *Chapter {
	c.Name = name
	return c
}

// Shrink adjusts the span after the identifiers in r were removed from the
// book and returns the new length.
func (c *Chapter) Shrink(r IDRange) ID {
	if c.End() < r.Lo {
		return c.Length
	}

	count := r.Count()
	if r.Hi < c.Start() {
		c.Offset = subSat(c.Offset, count)
		return c.Length
	}

	rng := c.Range()
	switch hasLo, hasHi := rng.Contains(r.Lo), rng.Contains(r.Hi); {
	case hasLo && hasHi:
		c.Length = subSat(c.Length, count)
	case !hasLo && hasHi:
		c.Offset = subSat(c.Offset, int(rng.Lo-r.Lo))
		c.Length = subSat(c.Length, int(r.Hi-rng.Lo)+1)
	case hasLo && !hasHi:
		c.Length = subSat(c.Length, int(rng.Hi-r.Lo)+1)
	default:
		c.Length = 0
	}

	return c.Length
}

// Grow is the mirror of Shrink for identifiers inserted into the book.
func (c *Chapter) Grow(r IDRange) ID {
	if c.End() < r.Lo {
		return c.Length
	}

	count := r.Count()
	if r.Hi < c.Start() {
		c.Offset = addSat(c.Offset, count)
		return c.Length
	}

	rng := c.Range()
	switch hasLo, hasHi := rng.Contains(r.Lo), rng.Contains(r.Hi); {
	case hasLo && hasHi:
		c.Length = addSat(c.Length, count)
	case !hasLo && hasHi:
		c.Offset = addSat(c.Offset, int(rng.Lo-r.Lo))
		c.Length = addSat(c.Length, int(r.Hi-rng.Lo)+1)
	case hasLo && !hasHi:
		c.Length = addSat(c.Length, int(rng.Hi-r.Lo)+1)
	default:
		c.Length = addSat(c.Length, count)
	}

	return c.Length
}

func addSat(a ID, n int) ID {
	v := int(a) + n
	if v > math.MaxUint16 {
		return math.MaxUint16
	}
	if v < 0 {
		return 0
	}

	return ID(v)
}

func subSat(a ID, n int) ID { return addSat(a, -n) }
