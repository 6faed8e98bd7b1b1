package extract

// Segmentation is a window re-expressed as integer sequences for mining.
type Segmentation struct {
	// Items holds one sequence of vocabulary IDs per chunk.
	Items [][]int

	// Positions holds, parallel to Items, a counter that increases by one
	// for every kept symbol across all chunks. It is the distance unit of
	// the gap bound, independent of how many non-repeating events were
	// skipped in between.
	Positions [][]int
}

// MaxLen returns the length of the longest sequence.
func (s Segmentation) MaxLen() int {
	n := 0
	for _, seq := range s.Items {
		n = max(n, len(seq))
	}
	return n
}

// Empty reports whether no chunk kept any symbol.
func (s Segmentation) Empty() bool {
	return s.MaxLen() == 0
}

// Segment splits sigs into numSplits contiguous chunks of len(sigs)/numSplits
// entries each, the last chunk taking the remainder, and keeps only the
// signatures known to vocab. numSplits below 1 is treated as 1.
func Segment(sigs []string, vocab *Vocabulary, numSplits int) Segmentation {
	numSplits = max(numSplits, 1)
	seg := Segmentation{
		Items:     make([][]int, numSplits),
		Positions: make([][]int, numSplits),
	}

	chunk := len(sigs) / numSplits
	pos := 0
	for split := 0; split < numSplits; split++ {
		start := split * chunk
		end := start + chunk
		if split == numSplits-1 {
			end = len(sigs)
		}
		items := []int{}
		positions := []int{}
		for _, sig := range sigs[start:end] {
			id, ok := vocab.ID(sig)
			if !ok {
				continue
			}
			items = append(items, id)
			positions = append(positions, pos)
			pos++
		}
		seg.Items[split] = items
		seg.Positions[split] = positions
	}
	return seg
}
