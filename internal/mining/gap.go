package mining

import (
	"context"
	"slices"
)

// DefaultMinLength is the shortest pattern GapMiner reports. Single symbols
// are frequent by construction of the vocabulary and carry no sequence.
const DefaultMinLength = 2

// GapMiner is a depth-first prefix-growth miner with an upper gap bound.
//
// Patterns are grown one symbol at a time from every frequent prefix, trying
// symbols in ascending order, so the result order is deterministic: each
// pattern is followed by its own extensions before its siblings.
type GapMiner struct {
	MinLength int
}

// NewGapMiner returns a miner reporting patterns of DefaultMinLength or more.
func NewGapMiner() *GapMiner {
	return &GapMiner{MinLength: DefaultMinLength}
}

// projection records, for one sequence, every item index at which an
// occurrence of the current prefix can end.
type projection struct {
	seq  int
	ends []int
}

type search struct {
	ctx    context.Context
	in     Input
	attrs  [][]int
	theta  int
	minLen int
	out    []Pattern
}

// Mine implements Engine.
func (m *GapMiner) Mine(ctx context.Context, in Input) ([]Pattern, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.NumSymbols == 0 || maxLen(in.Items) == 0 {
		return nil, nil
	}

	s := &search{
		ctx:    ctx,
		in:     in,
		attrs:  in.Attrs,
		theta:  max(in.Theta, 1),
		minLen: max(m.MinLength, 1),
	}
	if s.attrs == nil {
		s.attrs = indexAttrs(in.Items)
	}

	for sym := 1; sym <= in.NumSymbols; sym++ {
		proj := s.seed(sym)
		if len(proj) < s.theta {
			continue
		}
		if !s.grow([]int{sym}, proj) {
			break
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.out, nil
}

// seed collects the occurrences of a single symbol.
func (s *search) seed(sym int) []projection {
	var proj []projection
	for i, seq := range s.in.Items {
		var ends []int
		for j, v := range seq {
			if v == sym {
				ends = append(ends, j)
			}
		}
		if len(ends) > 0 {
			proj = append(proj, projection{seq: i, ends: ends})
		}
	}
	return proj
}

// grow emits prefix if long enough and recurses into its frequent
// extensions. It returns false once the search must stop.
func (s *search) grow(prefix []int, proj []projection) bool {
	if s.ctx.Err() != nil {
		return false
	}
	if len(prefix) >= s.minLen {
		s.out = append(s.out, Pattern{Items: slices.Clone(prefix), Support: len(proj)})
		if s.in.MaxPatterns > 0 && len(s.out) >= s.in.MaxPatterns {
			return false
		}
	}

	for _, sym := range s.candidates(proj) {
		next := s.extend(proj, sym)
		if len(next) < s.theta {
			continue
		}
		if !s.grow(append(prefix, sym), next) {
			return false
		}
	}
	return true
}

// candidates returns, in ascending order, the symbols reachable within the
// gap bound from enough sequences to possibly be frequent.
func (s *search) candidates(proj []projection) []int {
	counts := make(map[int]int)
	for _, p := range proj {
		seen := make(map[int]bool)
		s.reachable(p, func(q int) {
			sym := s.in.Items[p.seq][q]
			if !seen[sym] {
				seen[sym] = true
				counts[sym]++
			}
		})
	}
	var syms []int
	for sym, n := range counts {
		if n >= s.theta {
			syms = append(syms, sym)
		}
	}
	slices.Sort(syms)
	return syms
}

// extend projects proj onto occurrences of prefix+sym.
func (s *search) extend(proj []projection, sym int) []projection {
	var next []projection
	for _, p := range proj {
		var ends []int
		s.reachable(p, func(q int) {
			if s.in.Items[p.seq][q] == sym {
				ends = append(ends, q)
			}
		})
		if len(ends) == 0 {
			continue
		}
		slices.Sort(ends)
		next = append(next, projection{seq: p.seq, ends: slices.Compact(ends)})
	}
	return next
}

// reachable calls fn for every item index that may directly follow one of
// p's end positions under the gap bound. Indices may repeat.
func (s *search) reachable(p projection, fn func(q int)) {
	seq := s.in.Items[p.seq]
	attr := s.attrs[p.seq]
	for _, end := range p.ends {
		for q := end + 1; q < len(seq); q++ {
			if s.in.MaxGap >= 0 && attr[q]-attr[end] > s.in.MaxGap {
				break
			}
			fn(q)
		}
	}
}

func indexAttrs(items [][]int) [][]int {
	attrs := make([][]int, len(items))
	for i, seq := range items {
		attrs[i] = make([]int, len(seq))
		for j := range seq {
			attrs[i][j] = j
		}
	}
	return attrs
}

func maxLen(items [][]int) int {
	n := 0
	for _, seq := range items {
		n = max(n, len(seq))
	}
	return n
}
