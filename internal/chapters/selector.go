package chapters

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrNoneSelected = errors.New("no chapters selected")

// Selection picks chapters out of an index. Chapter matches a label first and
// falls back to a 1-based position; Range is "from-to" and List "a,b,c", both
// 1-based. The first non-empty field wins.
type Selection struct {
	Chapter string
	Range   string
	List    string
}

func (s Selection) Empty() bool {
	return s.Chapter == "" && s.Range == "" && s.List == ""
}

// Select applies sel to all. An empty selection keeps everything.
func Select(all []Chapter, sel Selection) ([]Chapter, error) {
	var out []Chapter
	switch {
	case sel.Chapter != "":
		out = ByLabel(all, sel.Chapter)
		if len(out) == 0 {
			if idx, err := atoi(sel.Chapter); err == nil && idx > 0 && idx <= len(all) {
				out = []Chapter{all[idx-1]}
			}
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("chapter %q not found: %w", sel.Chapter, ErrNoneSelected)
		}
	case sel.Range != "":
		var err error
		if out, err = ByRange(all, sel.Range); err != nil {
			return nil, err
		}
	case sel.List != "":
		out = ByList(all, sel.List)
	default:
		out = all
	}

	if len(out) == 0 {
		return nil, ErrNoneSelected
	}

	return out, nil
}

func ByLabel(all []Chapter, label string) []Chapter {
	var out []Chapter
	for _, ch := range all {
		if ch.Label == label {
			out = append(out, ch)
		}
	}

	return out
}

func ByRange(all []Chapter, rng string) ([]Chapter, error) {
	parts := strings.Split(rng, "-")
	if len(parts) != 2 {
		return nil, fmt.Errorf("range %q: want from-to", rng)
	}

	start, err1 := atoi(parts[0])
	end, err2 := atoi(parts[1])
	if err1 != nil || err2 != nil {
		return nil, fmt.Errorf("range %q: not a number", rng)
	}
	if start <= 0 || start > end || end > len(all) {
		return nil, fmt.Errorf("range %q outside 1-%d: %w", rng, len(all), ErrNoneSelected)
	}

	return all[start-1 : end], nil
}

// ByList keeps the listed positions in the given order, skipping ones that
// don't exist.
func ByList(all []Chapter, list string) []Chapter {
	var out []Chapter
	for n := range strings.SplitSeq(list, ",") {
		idx, err := atoi(n)
		if err != nil || idx <= 0 || idx > len(all) {
			continue
		}
		out = append(out, all[idx-1])
	}

	return out
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
