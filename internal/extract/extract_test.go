package extract

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/loco/internal/history"
	"github.com/roach88/loco/internal/mining"
)

var t0 = time.Date(2024, 9, 7, 10, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// window builds one event per message, a second apart, all from origin.
func window(origin string, msgs ...string) []history.Event {
	out := make([]history.Event, len(msgs))
	for i, m := range msgs {
		out[i] = history.NewEvent(t0.Add(time.Duration(i)*time.Second), origin, history.SeverityInfo, m)
	}
	return out
}

func TestSignature(t *testing.T) {
	e := history.NewEvent(t0, "/var/log/app.log", history.SeverityInfo, "disk full")
	assert.Equal(t, "disk full [app]", Signature(e, true))
	assert.Equal(t, "disk full", Signature(e, false))

	// Composed and decomposed forms collapse.
	composed := history.NewEvent(t0, "a.log", history.SeverityInfo, "caf\u00e9")
	decomposed := history.NewEvent(t0, "a.log", history.SeverityInfo, "cafe\u0301")
	assert.Equal(t, Signature(composed, false), Signature(decomposed, false))
}

func TestBuildVocabulary(t *testing.T) {
	v := BuildVocabulary([]string{"b", "a", "c", "b", "z", "a", "b"})

	assert.Equal(t, 2, v.Len())
	assert.Equal(t, 4, v.Unique())
	assert.Equal(t, []string{"a", "b"}, v.Symbols())

	id, ok := v.ID("a")
	assert.True(t, ok)
	assert.Equal(t, 1, id)
	id, ok = v.ID("c")
	assert.False(t, ok)
	assert.Zero(t, id)

	assert.Equal(t, "b", v.Signature(2))
	assert.Empty(t, v.Signature(0))
	assert.Empty(t, v.Signature(3))
}

func TestBuildVocabulary_Deterministic(t *testing.T) {
	sigs := []string{"x", "y", "x", "q", "y", "r", "q", "x"}
	first := BuildVocabulary(sigs)
	firstSeg := Segment(sigs, first, 3)
	for i := 0; i < 10; i++ {
		again := BuildVocabulary(sigs)
		assert.Equal(t, first.Symbols(), again.Symbols())
		if diff := cmp.Diff(firstSeg, Segment(sigs, again, 3)); diff != "" {
			t.Fatalf("segmentation changed (-first +again):\n%s", diff)
		}
	}
}

func TestSegment(t *testing.T) {
	sigs := []string{"a", "x", "b", "a", "b", "y", "a", "b", "z", "a"}
	v := BuildVocabulary(sigs) // a=1 b=2

	seg := Segment(sigs, v, 3)

	// chunk size 3: [a x b] [a b y] [a b z a]
	assert.Equal(t, [][]int{{1, 2}, {1, 2}, {1, 2, 1}}, seg.Items)
	assert.Equal(t, [][]int{{0, 1}, {2, 3}, {4, 5, 6}}, seg.Positions)
	assert.Equal(t, 3, seg.MaxLen())
	assert.False(t, seg.Empty())
}

func TestSegment_MoreSplitsThanEvents(t *testing.T) {
	sigs := []string{"a", "a"}
	seg := Segment(sigs, BuildVocabulary(sigs), 4)

	assert.Equal(t, [][]int{{}, {}, {}, {1, 1}}, seg.Items)
	assert.Equal(t, [][]int{{}, {}, {}, {0, 1}}, seg.Positions)
}

func TestSegment_PreservesTotalLength(t *testing.T) {
	for n := 0; n < 20; n++ {
		sigs := make([]string, n)
		for i := range sigs {
			sigs[i] = "same"
		}
		v := BuildVocabulary(sigs)
		for splits := 1; splits < 7; splits++ {
			seg := Segment(sigs, v, splits)
			require.Len(t, seg.Items, splits)
			total := 0
			for _, s := range seg.Items {
				total += len(s)
			}
			if n > 1 {
				assert.Equal(t, n, total, "n=%d splits=%d", n, splits)
			}
		}
	}
}

func TestSegment_NonPositiveSplits(t *testing.T) {
	sigs := []string{"a", "a"}
	seg := Segment(sigs, BuildVocabulary(sigs), 0)
	assert.Equal(t, [][]int{{1, 1}}, seg.Items)
}

// recordingEngine captures its input and replays fixed patterns.
type recordingEngine struct {
	got    mining.Input
	calls  int
	result []mining.Pattern
}

func (e *recordingEngine) Mine(_ context.Context, in mining.Input) ([]mining.Pattern, error) {
	e.got = in
	e.calls++
	return e.result, nil
}

func TestDetect_EngineInput(t *testing.T) {
	eng := &recordingEngine{result: []mining.Pattern{
		{Items: []int{1, 2}, Support: 2},
		{Items: []int{3, 1, 2}, Support: 2},
	}}
	opts := Options{NumSplits: 2, Limit: 7, MaxPatterns: 50, ValuePlusOriginator: false}
	d := NewDetector(opts, eng, quietLogger())

	det, err := d.Detect(context.Background(), window("a.log", "a", "b", "c", "a", "b", "c"))
	require.NoError(t, err)

	assert.Equal(t, 1, eng.calls)
	assert.Equal(t, [][]int{{1, 2, 3}, {1, 2, 3}}, eng.got.Items)
	assert.Equal(t, [][]int{{0, 1, 2}, {3, 4, 5}}, eng.got.Attrs)
	assert.Equal(t, 3, eng.got.MaxLen)
	assert.Equal(t, 3, eng.got.NumSymbols)
	assert.Equal(t, 2, eng.got.Theta, "theta defaults to NumSplits")
	assert.Equal(t, 7, eng.got.MaxGap)
	assert.Equal(t, 50, eng.got.MaxPatterns)

	require.Len(t, det.Patterns, 2)
	assert.Equal(t, []string{"a", "b"}, det.Patterns[0].Signatures)
	assert.Equal(t, []string{"c", "a", "b"}, det.Patterns[1].Signatures)
	assert.Equal(t, 0, det.Patterns[0].Shift)
	assert.Equal(t, 1, det.Patterns[1].Shift)
	assert.True(t, det.Patterns[1].Aligned(1))
	assert.False(t, det.Patterns[1].Aligned(0))
}

func TestDetect_NoRepeatsSkipsEngine(t *testing.T) {
	eng := &recordingEngine{}
	d := NewDetector(DefaultOptions(), eng, quietLogger())

	det, err := d.Detect(context.Background(), window("a.log", "one", "two", "three", "four"))
	require.NoError(t, err)
	assert.Empty(t, det.Patterns)
	assert.Zero(t, det.Vocabulary.Len())
	assert.Zero(t, eng.calls)
}

func TestDetect_EmptyWindow(t *testing.T) {
	det, err := NewDetector(DefaultOptions(), nil, quietLogger()).Detect(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, det.Patterns)
	assert.Zero(t, det.Window)
}

func TestDetect_ValuePlusOriginator(t *testing.T) {
	events := append(window("a.log", "tick"), window("b.log", "tick")...)
	events[1].Time = events[1].Time.Add(time.Second)

	with := NewDetector(Options{NumSplits: 1, ValuePlusOriginator: true}, nil, quietLogger())
	det, err := with.Detect(context.Background(), events)
	require.NoError(t, err)
	assert.Zero(t, det.Vocabulary.Len(), "same message from two files is two signatures")

	without := NewDetector(Options{NumSplits: 1, ValuePlusOriginator: false}, nil, quietLogger())
	det, err = without.Detect(context.Background(), events)
	require.NoError(t, err)
	assert.Equal(t, []string{"tick"}, det.Vocabulary.Symbols())
}

func TestOptionsTheta(t *testing.T) {
	assert.Equal(t, 6, DefaultOptions().Theta())
	assert.Equal(t, 3, Options{NumSplits: 6, MinObservations: 3}.Theta())
	assert.Equal(t, 1, Options{}.Theta())
}
