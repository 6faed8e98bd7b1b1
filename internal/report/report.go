// Package report renders histories, windows, detected patterns and run
// summaries as plain text.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/roach88/loco/internal/extract"
	"github.com/roach88/loco/internal/history"
	"github.com/roach88/loco/internal/ingest"
)

// NoPatterns is printed when a window holds no repeating sequence.
const NoPatterns = "No pattern detected..."

// History writes every event on its own numbered line, oldest first.
func History(w io.Writer, events []history.Event) error {
	for i, e := range events {
		if _, err := fmt.Fprintf(w, "H-%02d %s\n", i+1, e); err != nil {
			return err
		}
	}
	return nil
}

// Window writes a window header followed by its events.
func Window(w io.Writer, location, width int, events []history.Event) error {
	if _, err := fmt.Fprintf(w, "Specific local time history entries [location: %d, width: %d]\n", location, width); err != nil {
		return err
	}
	for i, e := range events {
		if _, err := fmt.Fprintf(w, "\t%d %s\n", i, e); err != nil {
			return err
		}
	}
	return nil
}

// Patterns writes each detected pattern with its elements numbered from 1.
// The element aligned with the first pattern is marked with '*'.
func Patterns(w io.Writer, det *extract.Detection) error {
	if det == nil || len(det.Patterns) == 0 {
		_, err := fmt.Fprintln(w, NoPatterns)
		return err
	}
	for i, p := range det.Patterns {
		if _, err := fmt.Fprintf(w, "pattern %02d, length: %d, %d times\n", i+1, len(p.Items), p.Support); err != nil {
			return err
		}
		for j, sig := range p.Signatures {
			mark := " "
			if p.Aligned(j) {
				mark = "*"
			}
			if _, err := fmt.Fprintf(w, "\t%s[%d] %s\n", mark, j+1, sig); err != nil {
				return err
			}
		}
	}
	return nil
}

// Run describes one invocation and the files it tracked.
type Run struct {
	ID          string           `json:"run_id"`
	Started     time.Time        `json:"started"`
	CommandLine string           `json:"command_line"`
	Events      int              `json:"events"`
	Logs        []ingest.Summary `json:"logs"`
}

// RenderText writes r with Summary.
func (r Run) RenderText(w io.Writer) error {
	return Summary(w, r)
}

// Summary writes r as an indented text block.
func Summary(w io.Writer, r Run) error {
	ew := &errWriter{w: w}
	ew.printf("run: %s\n", r.ID)
	ew.printf("started: %s\n", formatTime(r.Started))
	ew.printf("command: %s\n", r.CommandLine)
	ew.printf("events: %d\n", r.Events)
	ew.printf("logs:\n")
	for _, s := range r.Logs {
		ew.printf("  %s\n", s.Path)
		ew.printf("    last write:    %s\n", formatTime(s.LastWrite))
		ew.printf("    last imported: %s\n", formatTime(s.LastImported))
		ew.printf("    entries: %d, imported: %d\n", s.Entries, s.Imported)
		if s.LastError != "" {
			ew.printf("    error: %s\n", s.LastError)
		}
	}
	return ew.err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.UTC().Format(time.RFC3339)
}

// errWriter keeps the first write error and drops later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
