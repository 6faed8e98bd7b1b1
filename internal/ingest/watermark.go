package ingest

import (
	"time"

	"github.com/roach88/loco/internal/history"
)

// Watermark tracks how much of one file has been merged into the history.
type Watermark struct {
	Path string

	// LastWrite is the modification time seen by the most recent stat.
	LastWrite time.Time

	// LastImported is the modification time observed at the start of the last
	// successful import. Events from a file not modified since are assumed
	// merged already.
	LastImported time.Time

	// Entries counts lines parsed from this file over every import.
	Entries int

	// Imported counts events from this file that were new to the history.
	Imported int

	// LastError holds the most recent access failure, cleared on success.
	LastError string

	// staged holds the events parsed by the most recent import.
	staged []history.Event
}

// NeedsImport reports whether a file written at modTime has unmerged content.
func (w *Watermark) NeedsImport(modTime time.Time) bool {
	return modTime.After(w.LastImported)
}

// Staged returns the events parsed by the most recent import.
func (w *Watermark) Staged() []history.Event {
	return w.staged
}

// Summary is the reportable state of one tracked file.
type Summary struct {
	Path         string    `json:"filename"`
	LastImported time.Time `json:"last_imported_time"`
	LastWrite    time.Time `json:"last_write_time"`
	Entries      int       `json:"num_entries"`
	Imported     int       `json:"num_imported"`
	LastError    string    `json:"last_error,omitempty"`
}

// Summary snapshots the watermark.
func (w *Watermark) Summary() Summary {
	return Summary{
		Path:         w.Path,
		LastImported: w.LastImported,
		LastWrite:    w.LastWrite,
		Entries:      w.Entries,
		Imported:     w.Imported,
		LastError:    w.LastError,
	}
}
