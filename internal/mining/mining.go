// Package mining finds frequent, gap-constrained sequential patterns.
//
// An Engine receives a set of integer sequences whose symbols are vocabulary
// IDs (1-based, 0 is never a symbol) and returns the ordered symbol lists that
// occur in at least Theta of the sequences. Consecutive elements of an
// occurrence must be at most MaxGap apart, measured on the per-item attribute
// supplied alongside the sequences.
package mining

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidInput is returned for inputs whose shape is inconsistent.
var ErrInvalidInput = errors.New("invalid mining input")

// Input describes one mining run.
type Input struct {
	// Items holds N sequences of symbol IDs in 1..NumSymbols.
	Items [][]int

	// Attrs holds one attribute value per item, strictly increasing within a
	// sequence. Nil means "use the item's index".
	Attrs [][]int

	// MaxLen is the length of the longest sequence.
	MaxLen int

	// NumSymbols is the vocabulary size.
	NumSymbols int

	// Theta is the minimum number of sequences a pattern must occur in.
	Theta int

	// MaxGap bounds the attribute difference between consecutive pattern
	// elements. Negative disables the bound.
	MaxGap int

	// MaxPatterns caps the result size. Zero means no cap.
	MaxPatterns int
}

// Validate checks that the input is internally consistent.
func (in Input) Validate() error {
	if in.Attrs != nil && len(in.Attrs) != len(in.Items) {
		return fmt.Errorf("%w: %d attribute rows for %d sequences", ErrInvalidInput, len(in.Attrs), len(in.Items))
	}
	for i, seq := range in.Items {
		if in.Attrs != nil && len(in.Attrs[i]) != len(seq) {
			return fmt.Errorf("%w: sequence %d has %d items and %d attributes", ErrInvalidInput, i, len(seq), len(in.Attrs[i]))
		}
		if in.Attrs != nil {
			for j := 1; j < len(seq); j++ {
				if in.Attrs[i][j] <= in.Attrs[i][j-1] {
					return fmt.Errorf("%w: attributes of sequence %d not strictly increasing at %d", ErrInvalidInput, i, j)
				}
			}
		}
		for _, sym := range seq {
			if sym < 1 || sym > in.NumSymbols {
				return fmt.Errorf("%w: symbol %d outside 1..%d in sequence %d", ErrInvalidInput, sym, in.NumSymbols, i)
			}
		}
	}
	return nil
}

// Pattern is one mined symbol sequence and the number of input sequences it
// occurs in.
type Pattern struct {
	Items   []int
	Support int
}

// Engine mines patterns. Implementations must return an empty result, not an
// error, for an empty vocabulary or all-empty sequences, and must honour
// MaxPatterns.
type Engine interface {
	Mine(ctx context.Context, in Input) ([]Pattern, error)
}
