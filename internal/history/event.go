package history

import (
	"cmp"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// TimeLayout is the layout used when rendering event timestamps.
const TimeLayout = "2006-01-02 15:04:05"

// Severity is the tag derived from keywords found in a log line.
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityDebug   Severity = "DEBUG"
	SeverityWarn    Severity = "WARN"
	SeverityError   Severity = "ERROR"
	SeverityUnknown Severity = "UNKNOWN"
)

// Event is one parsed, timestamped log line.
//
// Events are values. Once inserted into a Store they are never mutated.
type Event struct {
	Time       time.Time `json:"time"`       // second resolution, UTC
	Originator string    `json:"originator"` // path of the source file
	Severity   Severity  `json:"severity"`
	Message    string    `json:"message"` // line text after the timestamp prefix
}

// NewEvent truncates t to whole seconds so that re-parsing the same bytes
// always yields an identical key.
func NewEvent(t time.Time, originator string, sev Severity, message string) Event {
	return Event{
		Time:       t.UTC().Truncate(time.Second),
		Originator: originator,
		Severity:   sev,
		Message:    message,
	}
}

// Compare orders events by timestamp, then message, then originator.
// It returns -1, 0 or +1. Severity is not part of the key.
func Compare(a, b Event) int {
	if c := a.Time.Compare(b.Time); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Message, b.Message); c != 0 {
		return c
	}
	return cmp.Compare(a.Originator, b.Originator)
}

// Less reports whether a sorts before b.
func Less(a, b Event) bool {
	return Compare(a, b) < 0
}

// Equal reports whether a and b have the same identity.
func Equal(a, b Event) bool {
	return Compare(a, b) == 0
}

// Source returns the originator's file name without directory or extension.
func (e Event) Source() string {
	name := filepath.Base(e.Originator)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// String renders the event as "timestamp: [originator][severity] message".
func (e Event) String() string {
	return fmt.Sprintf("%s: [%s][%s] %s", e.Time.Format(TimeLayout), e.Originator, e.Severity, e.Message)
}
