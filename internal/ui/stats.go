package ui

import (
	"fmt"
	"sync/atomic"

	"github.com/brogergvhs/pagepal/internal/util"
)

// Stats totals a run across chapters. Safe for concurrent use.
type Stats struct {
	TotalUnits    atomic.Int64
	TotalBytes    atomic.Int64
	TotalChapters atomic.Int64
	Failed        atomic.Int64
}

// AddChapter records one finished chapter.
func (s *Stats) AddChapter(units int, bytes int64) {
	s.TotalChapters.Add(1)
	s.TotalUnits.Add(int64(units))
	s.TotalBytes.Add(bytes)
}

func (s *Stats) Summary() string {
	msg := fmt.Sprintf("%d chapters, %d pages, %s", s.TotalChapters.Load(), s.TotalUnits.Load(), util.Human(s.TotalBytes.Load()))
	if n := s.Failed.Load(); n > 0 {
		msg += fmt.Sprintf(", %d failed", n)
	}

	return msg
}
