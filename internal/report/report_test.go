package report

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/loco/internal/extract"
	"github.com/roach88/loco/internal/history"
	"github.com/roach88/loco/internal/ingest"
)

var t0 = time.Date(2024, 9, 7, 10, 0, 0, 0, time.UTC)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func sample() []history.Event {
	return []history.Event{
		history.NewEvent(t0, "app.log", history.SeverityInfo, "INFO service started"),
		history.NewEvent(t0.Add(time.Second), "db.log", history.SeverityWarn, "WARNING slow query"),
		history.NewEvent(t0.Add(2*time.Second), "app.log", history.SeverityError, "ERROR request failed"),
	}
}

func TestHistory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, History(&buf, sample()))
	newGoldie(t).Assert(t, "history", buf.Bytes())
}

func TestWindow(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Window(&buf, 1, 1, sample()))
	newGoldie(t).Assert(t, "window", buf.Bytes())
}

func TestPatterns(t *testing.T) {
	det := &extract.Detection{
		Window: 10,
		Patterns: []extract.Pattern{
			{Items: []int{2, 1}, Signatures: []string{"hippo [story]", "crocodile [story]"}, Support: 3, Shift: 0},
			{Items: []int{3, 2, 1}, Signatures: []string{"lived [story]", "hippo [story]", "crocodile [story]"}, Support: 3, Shift: 1},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Patterns(&buf, det))
	newGoldie(t).Assert(t, "patterns", buf.Bytes())
}

func TestPatterns_None(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Patterns(&buf, &extract.Detection{Window: 4}))
	assert.Equal(t, NoPatterns+"\n", buf.String())

	buf.Reset()
	require.NoError(t, Patterns(&buf, nil))
	assert.Equal(t, NoPatterns+"\n", buf.String())
}

func TestSummary(t *testing.T) {
	r := Run{
		ID:          "test-run-default",
		Started:     t0,
		CommandLine: "loco scan logs",
		Events:      12,
		Logs: []ingest.Summary{
			{Path: "logs/app.log", LastImported: t0.Add(-time.Minute), LastWrite: t0.Add(-time.Minute), Entries: 8, Imported: 8},
			{Path: "logs/locked.log", LastWrite: t0.Add(-time.Hour), LastError: "permission denied"},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Summary(&buf, r))
	newGoldie(t).Assert(t, "summary", buf.Bytes())
}

type failingWriter struct{ writes int }

func (f *failingWriter) Write(p []byte) (int, error) {
	f.writes++
	return 0, errors.New("disk full")
}

func TestWriteErrorsPropagate(t *testing.T) {
	fw := &failingWriter{}
	assert.Error(t, History(fw, sample()))
	assert.Error(t, Window(fw, 0, 1, sample()))
	assert.Error(t, Patterns(fw, nil))

	fw = &failingWriter{}
	assert.EqualError(t, Summary(fw, Run{ID: "x"}), "disk full")
	assert.Equal(t, 1, fw.writes, "summary stops writing after the first failure")
}
