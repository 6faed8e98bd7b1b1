// Package extract finds repeating event sequences inside a history window.
//
// A window is turned into a vocabulary of signatures that occur at least
// twice, split into chunks, and each chunk re-expressed as vocabulary IDs.
// The chunks go to a mining.Engine; the patterns it returns are translated
// back into signatures and aligned against the first pattern for display.
package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/loco/internal/align"
	"github.com/roach88/loco/internal/history"
	"github.com/roach88/loco/internal/mining"
)

// Defaults for Options.
const (
	DefaultNumSplits   = 6
	DefaultLimit       = 10
	DefaultMaxPatterns = 1000
)

// Options controls detection.
type Options struct {
	// NumSplits is the number of chunks the window is cut into.
	NumSplits int

	// Limit is the largest allowed distance, in kept symbols, between
	// consecutive elements of a pattern occurrence.
	Limit int

	// MinObservations is the minimum support. Zero means NumSplits.
	MinObservations int

	// MaxPatterns caps how many patterns the engine may return.
	MaxPatterns int

	// ValuePlusOriginator makes the source file part of an event's signature.
	ValuePlusOriginator bool
}

// DefaultOptions returns the stock detection settings.
func DefaultOptions() Options {
	return Options{
		NumSplits:           DefaultNumSplits,
		Limit:               DefaultLimit,
		MaxPatterns:         DefaultMaxPatterns,
		ValuePlusOriginator: true,
	}
}

// Theta returns the effective minimum support.
func (o Options) Theta() int {
	if o.MinObservations > 0 {
		return o.MinObservations
	}
	return max(o.NumSplits, 1)
}

// Pattern is a mined pattern translated back to signatures.
type Pattern struct {
	Items      []int    `json:"items"`
	Signatures []string `json:"signatures"`
	Support    int      `json:"support"`

	// Shift is the best overlap with the first pattern. The element at
	// index Shift, if any, is the aligned one.
	Shift int `json:"shift"`
}

// Aligned reports whether element j is the aligned element.
func (p Pattern) Aligned(j int) bool {
	return j == p.Shift
}

// Detection is the outcome of one Detect call.
type Detection struct {
	Window       int // events in the window
	Vocabulary   *Vocabulary
	Segmentation Segmentation
	Patterns     []Pattern
}

// Detector runs the extraction pipeline.
type Detector struct {
	opts   Options
	engine mining.Engine
	logger *slog.Logger
}

// NewDetector creates a detector. A nil engine selects mining.NewGapMiner();
// a nil logger selects slog.Default().
func NewDetector(opts Options, engine mining.Engine, logger *slog.Logger) *Detector {
	if engine == nil {
		engine = mining.NewGapMiner()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{opts: opts, engine: engine, logger: logger}
}

// Options returns the detector's settings.
func (d *Detector) Options() Options {
	return d.opts
}

// Detect mines window for repeating sequences. A window without repeating
// events yields a Detection with no patterns and no error.
func (d *Detector) Detect(ctx context.Context, window []history.Event) (*Detection, error) {
	sigs := Signatures(window, d.opts.ValuePlusOriginator)
	vocab := BuildVocabulary(sigs)
	seg := Segment(sigs, vocab, d.opts.NumSplits)

	det := &Detection{
		Window:       len(window),
		Vocabulary:   vocab,
		Segmentation: seg,
	}
	d.logger.Debug("vocabulary built",
		"window", len(window),
		"unique", vocab.Unique(),
		"repeating", vocab.Len(),
	)
	if vocab.Len() == 0 || seg.Empty() {
		return det, nil
	}

	mined, err := d.engine.Mine(ctx, mining.Input{
		Items:       seg.Items,
		Attrs:       seg.Positions,
		MaxLen:      seg.MaxLen(),
		NumSymbols:  vocab.Len(),
		Theta:       d.opts.Theta(),
		MaxGap:      d.opts.Limit,
		MaxPatterns: d.opts.MaxPatterns,
	})
	if err != nil {
		return nil, fmt.Errorf("mine patterns: %w", err)
	}

	items := make([][]int, len(mined))
	for i, p := range mined {
		items[i] = p.Items
	}
	shifts := align.ComputePatternShift(items)

	det.Patterns = make([]Pattern, len(mined))
	for i, p := range mined {
		sigs := make([]string, len(p.Items))
		for j, id := range p.Items {
			sigs[j] = vocab.Signature(id)
		}
		det.Patterns[i] = Pattern{
			Items:      p.Items,
			Signatures: sigs,
			Support:    p.Support,
			Shift:      shifts[i],
		}
	}
	d.logger.Debug("patterns mined", "count", len(det.Patterns))
	return det, nil
}
