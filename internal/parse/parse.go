// Package parse turns raw log lines into history events.
//
// Two leading timestamp shapes are recognised:
//
//	2024-09-07 23:00:04 rest of the line
//	Sat Sep  7 11:00:04 PM CEST 2024 rest of the line
//
// The zone name in the second shape is skipped and never interpreted; both
// shapes are read as UTC wall-clock time.
package parse

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/roach88/loco/internal/history"
)

// ErrUnparseable is returned for lines without a recognisable leading timestamp.
var ErrUnparseable = errors.New("unparseable line")

// MinLineLength is the shortest line that can carry a timestamp.
const MinLineLength = 16

const (
	isoLayout     = "2006-01-02 15:04:05"
	verboseLayout = "Mon Jan 2 3:04:05 PM 2006"

	// weekday month day clock meridiem zone year
	verboseFields = 7
)

// severityKeywords are checked in order; the first keyword found wins.
var severityKeywords = []struct {
	keyword  string
	severity history.Severity
}{
	{"INFO", history.SeverityInfo},
	{"DEBUG", history.SeverityDebug},
	{"ERROR", history.SeverityError},
	{"WARNING", history.SeverityWarn},
}

// Line parses one log line read from originator.
func Line(line, originator string) (history.Event, error) {
	ts, rest, err := Timestamp(line)
	if err != nil {
		return history.Event{}, err
	}
	return history.NewEvent(ts, originator, Severity(line), rest), nil
}

// Timestamp extracts the leading timestamp of line and returns it together
// with the remaining text.
func Timestamp(line string) (time.Time, string, error) {
	if len(line) < MinLineLength {
		return time.Time{}, "", fmt.Errorf("%w: shorter than %d characters", ErrUnparseable, MinLineLength)
	}
	if t, rest, ok := parseISO(line); ok {
		return t, rest, nil
	}
	if t, rest, ok := parseVerbose(line); ok {
		return t, rest, nil
	}
	return time.Time{}, "", fmt.Errorf("%w: no leading timestamp", ErrUnparseable)
}

// Severity tags line by keyword. Lines without a keyword are UNKNOWN.
func Severity(line string) history.Severity {
	for _, k := range severityKeywords {
		if strings.Contains(line, k.keyword) {
			return k.severity
		}
	}
	return history.SeverityUnknown
}

func parseISO(line string) (time.Time, string, bool) {
	if len(line) < len(isoLayout) {
		return time.Time{}, "", false
	}
	t, err := time.ParseInLocation(isoLayout, line[:len(isoLayout)], time.UTC)
	if err != nil {
		return time.Time{}, "", false
	}
	// Anything glued to the clock (":" or ",123") belongs to the prefix.
	rest := line[len(isoLayout):]
	if i := strings.IndexFunc(rest, unicode.IsSpace); i >= 0 {
		rest = rest[i:]
	} else {
		rest = ""
	}
	return t, strings.TrimLeftFunc(rest, unicode.IsSpace), true
}

func parseVerbose(line string) (time.Time, string, bool) {
	fields, rest := cutFields(line, verboseFields)
	if len(fields) < verboseFields {
		return time.Time{}, "", false
	}
	// fields[5] is the zone name and is dropped.
	stamp := strings.Join([]string{fields[0], fields[1], fields[2], fields[3], fields[4], fields[6]}, " ")
	t, err := time.ParseInLocation(verboseLayout, stamp, time.UTC)
	if err != nil {
		return time.Time{}, "", false
	}
	return t, rest, true
}

// cutFields splits off up to n leading whitespace-separated fields and returns
// them with the remainder, left-trimmed.
func cutFields(s string, n int) ([]string, string) {
	fields := make([]string, 0, n)
	for len(fields) < n {
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
		if s == "" {
			break
		}
		end := strings.IndexFunc(s, unicode.IsSpace)
		if end < 0 {
			end = len(s)
		}
		fields = append(fields, s[:end])
		s = s[end:]
	}
	return fields, strings.TrimLeftFunc(s, unicode.IsSpace)
}
