package ingest

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/roach88/loco/internal/history"
	"github.com/roach88/loco/internal/parse"
)

// ErrFileAccess wraps failures to stat, open or read a tracked file.
var ErrFileAccess = errors.New("file access")

// Stats accumulates counts over one or more imports.
type Stats struct {
	Files    int `json:"files"`    // files examined
	Skipped  int `json:"skipped"`  // unmodified since the last import
	Failed   int `json:"failed"`   // unreadable this run
	Parsed   int `json:"parsed"`   // lines staged as events
	Dropped  int `json:"dropped"`  // lines without a timestamp
	Imported int `json:"imported"` // events new to the history
}

// Add folds o into s.
func (s *Stats) Add(o Stats) {
	s.Files += o.Files
	s.Skipped += o.Skipped
	s.Failed += o.Failed
	s.Parsed += o.Parsed
	s.Dropped += o.Dropped
	s.Imported += o.Imported
}

// Tracker owns the watermarks of all tracked files.
// It is not safe for concurrent use.
type Tracker struct {
	readCap int64
	logger  *slog.Logger

	files  []*Watermark
	byPath map[string]*Watermark
}

// NewTracker creates a tracker reading at most readCap trailing bytes per
// file. A non-positive readCap selects DefaultReadCap; a nil logger selects
// slog.Default().
func NewTracker(readCap int64, logger *slog.Logger) *Tracker {
	if readCap <= 0 {
		readCap = DefaultReadCap
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		readCap: readCap,
		logger:  logger,
		byPath:  make(map[string]*Watermark),
	}
}

// Add starts tracking path. Returns false if it was already tracked.
func (t *Tracker) Add(path string) bool {
	if _, ok := t.byPath[path]; ok {
		return false
	}
	w := &Watermark{Path: path}
	if info, err := os.Stat(path); err == nil {
		w.LastWrite = info.ModTime()
	}
	t.files = append(t.files, w)
	t.byPath[path] = w
	t.logger.Debug("tracking file", "path", path)
	return true
}

// Files returns the tracked watermarks in the order they were added.
func (t *Tracker) Files() []*Watermark {
	return t.files
}

// Lookup returns the watermark for path.
func (t *Tracker) Lookup(path string) (*Watermark, bool) {
	w, ok := t.byPath[path]
	return w, ok
}

// Run imports every tracked file in order. Unreadable files are logged and
// skipped; Run itself never fails.
func (t *Tracker) Run(st *history.Store) Stats {
	var total Stats
	for _, w := range t.files {
		s, err := t.Import(st, w)
		if err != nil {
			t.logger.Warn("skipping file", "path", w.Path, "error", err)
		}
		total.Add(s)
	}
	t.logger.Info("ingestion finished",
		"files", total.Files,
		"skipped", total.Skipped,
		"failed", total.Failed,
		"parsed", total.Parsed,
		"dropped", total.Dropped,
		"imported", total.Imported,
		"history", st.Len(),
	)
	return total
}

// Import merges one file into st if it changed since its watermark.
// On error the watermark is left as it was, apart from LastWrite and
// LastError.
func (t *Tracker) Import(st *history.Store, w *Watermark) (Stats, error) {
	stats := Stats{Files: 1}

	info, err := os.Stat(w.Path)
	if err != nil {
		return t.fail(w, stats, err)
	}
	modTime := info.ModTime()
	w.LastWrite = modTime

	if !w.NeedsImport(modTime) {
		stats.Skipped = 1
		t.logger.Debug("file unchanged", "path", w.Path, "last_imported", w.LastImported)
		return stats, nil
	}

	lines, err := readTail(w.Path, t.readCap)
	if err != nil {
		return t.fail(w, stats, err)
	}

	staged := make([]history.Event, 0, len(lines))
	for _, line := range lines {
		e, err := parse.Line(line, w.Path)
		if err != nil {
			stats.Dropped++
			continue
		}
		staged = append(staged, e)
	}
	stats.Parsed = len(staged)

	for _, e := range staged {
		if st.Insert(e) {
			stats.Imported++
		}
	}

	w.staged = staged
	w.Entries += len(staged)
	w.Imported += stats.Imported
	w.LastImported = modTime
	w.LastError = ""

	t.logger.Debug("file imported",
		"path", w.Path,
		"parsed", stats.Parsed,
		"dropped", stats.Dropped,
		"new", stats.Imported,
	)
	return stats, nil
}

func (t *Tracker) fail(w *Watermark, stats Stats, err error) (Stats, error) {
	stats.Failed = 1
	w.LastError = err.Error()
	return stats, fmt.Errorf("%w: %s: %w", ErrFileAccess, w.Path, err)
}

// Summaries snapshots every tracked file.
func (t *Tracker) Summaries() []Summary {
	out := make([]Summary, len(t.files))
	for i, w := range t.files {
		out[i] = w.Summary()
	}
	return out
}
