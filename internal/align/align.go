// Package align lines mined patterns up against a reference pattern so that
// a display can mark where each pattern best overlaps the first one.
package align

// ComputePatternShift returns one shift per pattern. patterns[0] is the
// reference and always gets shift 0. Each other pattern p is scored at every
// shift s in [-(len(ref)-1)/2, len(p)-1) by the fraction of overlapping
// positions where ref[c] != p[c+s]; the first strictly smallest fraction wins.
//
// Patterns hold symbol IDs only, without a trailing support count.
func ComputePatternShift(patterns [][]int) []int {
	shifts := make([]int, len(patterns))
	if len(patterns) == 0 {
		return shifts
	}
	ref := patterns[0]
	start := -((len(ref) - 1) / 2)

	for i := 1; i < len(patterns); i++ {
		p := patterns[i]
		best, bestScore, scored := 0, 0.0, false
		for s := start; s < len(p)-1; s++ {
			score := mismatch(ref, p, s)
			if !scored || score < bestScore {
				best, bestScore, scored = s, score, true
			}
		}
		shifts[i] = best
	}
	return shifts
}

// mismatch returns the fraction of differing symbols where ref overlaps p
// shifted by s, or 1 if nothing overlaps.
func mismatch(ref, p []int, s int) float64 {
	var diff, compared int
	for c, sym := range ref {
		idx := c + s
		if idx < 0 || idx >= len(p) {
			continue
		}
		compared++
		if p[idx] != sym {
			diff++
		}
	}
	if compared == 0 {
		return 1
	}
	return float64(diff) / float64(compared)
}
