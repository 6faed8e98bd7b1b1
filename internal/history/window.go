package history

import (
	"math"
	"slices"
	"time"
)

// RankWindow returns the 2*window+1 events centred on rank location, oldest
// first. A window that would run past either end of the history is shrunk
// symmetrically so the result stays in bounds. An out-of-range location is
// clamped. An empty history yields nil.
func (s *Store) RankWindow(location, window int) []Event {
	n := s.tree.Len()
	if n == 0 {
		return nil
	}
	location = clamp(location, 0, n-1)
	if window < 0 {
		window = -window
	}
	window = min(window, location, n-1-location)

	// Ranks count from the newest end, so the newest event in the slice has
	// rank location-window.
	start := location - window
	size := 2*window + 1
	out := make([]Event, 0, size)
	rank := 0
	s.tree.Descend(func(e Event) bool {
		if rank >= start {
			out = append(out, e)
		}
		rank++
		return len(out) < size
	})
	slices.Reverse(out)
	return out
}

// maxSpanSeconds is the widest span a time.Duration can hold.
const maxSpanSeconds = math.MaxInt64 / int64(time.Second)

// DurationWindow returns every event whose timestamp lies within seconds of
// the event at rank location, oldest first. The anchor itself is always
// included. Unlike RankWindow the result has no fixed length.
func (s *Store) DurationWindow(location int, seconds int64) []Event {
	n := s.tree.Len()
	if n == 0 {
		return nil
	}
	anchor, _ := s.At(clamp(location, 0, n-1))
	if seconds < 0 {
		seconds = -seconds
	}
	if seconds < 0 || seconds > maxSpanSeconds {
		seconds = maxSpanSeconds
	}
	span := time.Duration(seconds) * time.Second
	lo := anchor.Time.Add(-span)
	hi := anchor.Time.Add(span)

	var out []Event
	s.tree.DescendLessOrEqual(anchor, func(e Event) bool {
		if e.Time.Before(lo) {
			return false
		}
		out = append(out, e)
		return true
	})
	slices.Reverse(out)

	s.tree.AscendGreaterOrEqual(anchor, func(e Event) bool {
		if Equal(e, anchor) {
			return true
		}
		if e.Time.After(hi) {
			return false
		}
		out = append(out, e)
		return true
	})
	return out
}

// LocationFromAddress resolves a dual-mode address to a rank.
//
// A value in [0, 1) is a proportion of Len(). A value >= 1 is an absolute
// rank. A negative value means the last rank. The result is clamped to
// [0, Len()-1]; an empty history always resolves to 0.
func (s *Store) LocationFromAddress(value float64) int {
	n := s.tree.Len()
	if n == 0 || math.IsNaN(value) {
		return 0
	}
	var loc int
	switch {
	case value < 0:
		loc = n
	case value < 1:
		loc = int(value * float64(n))
	case value >= float64(n):
		loc = n
	default:
		loc = int(value)
	}
	return clamp(loc, 0, n-1)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
