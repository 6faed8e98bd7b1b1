package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/loco/internal/history"
	"github.com/roach88/loco/internal/ingest"
	"github.com/roach88/loco/internal/testutil"
)

func ingestLines(t *testing.T, lines ...string) *history.Store {
	t.Helper()
	path := testutil.WriteLog(t, t.TempDir(), "story.log", lines...)
	st := history.NewStore()
	tr := ingest.NewTracker(0, quietLogger())
	tr.Add(path)
	stats := tr.Run(st)
	require.Zero(t, stats.Failed)
	return st
}

func TestScenario_RepeatingMessages(t *testing.T) {
	st := ingestLines(t,
		"2024-09-07 10:00:00: And then a hippo appeared.",
		"2024-09-07 10:00:01: And then a crocodile appeared.",
		"2024-09-07 10:00:02: And they lived happily ever after.",
		"2024-09-07 10:00:03: And then a hippo appeared.",
		"2024-09-07 10:00:04: And then a crocodile appeared.",
		"2024-09-07 10:00:05: And they lived happily ever after.",
		"2024-09-07 10:00:06: And then a hippo appeared.",
		"2024-09-07 10:00:07: And then a crocodile appeared.",
		"2024-09-07 10:00:08: And they lived happily ever after.",
		"2024-09-07 10:00:09: It was a dark and stormy night.",
	)
	require.Equal(t, 10, st.Len())

	w := st.DurationWindow(st.LocationFromAddress(0.5), 3600)
	require.Len(t, w, 10)

	d := NewDetector(Options{NumSplits: 3, Limit: 10, MinObservations: 3, MaxPatterns: 1000, ValuePlusOriginator: true}, nil, quietLogger())
	det, err := d.Detect(context.Background(), w)
	require.NoError(t, err)

	assert.Equal(t, 3, det.Vocabulary.Len())
	require.NotEmpty(t, det.Patterns)
	for _, p := range det.Patterns {
		assert.GreaterOrEqual(t, len(p.Items), 1)
		assert.GreaterOrEqual(t, p.Support, 3)
		assert.Len(t, p.Signatures, len(p.Items))
	}
	assert.Zero(t, det.Patterns[0].Shift)

	var found bool
	for _, p := range det.Patterns {
		if assert.ObjectsAreEqual([]string{
			"And then a hippo appeared. [story]",
			"And then a crocodile appeared. [story]",
			"And they lived happily ever after. [story]",
		}, p.Signatures) {
			found = true
		}
	}
	assert.True(t, found, "the full three-step story must be mined")
}

func TestScenario_NoRepeatingMessages(t *testing.T) {
	st := ingestLines(t,
		"2024-09-07 10:00:00 one",
		"2024-09-07 10:00:01 two",
		"2024-09-07 10:00:02 three",
		"2024-09-07 10:00:03 four",
		"2024-09-07 10:00:04 five",
	)

	det, err := NewDetector(DefaultOptions(), nil, quietLogger()).Detect(context.Background(), st.RankWindow(2, 2))
	require.NoError(t, err)
	assert.Empty(t, det.Patterns)
	assert.Equal(t, 5, det.Window)
}
