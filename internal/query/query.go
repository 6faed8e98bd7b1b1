// Package query parses and runs window-query commands of the form
//
//	<location>, <width>     rank mode: width events either side
//	<location>, <width>s    duration mode: width seconds either side
//
// Both numbers are dual-mode: a value in [0, 1) is a proportion, a value of
// 1 or more is absolute. A negative location means the oldest event.
package query

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/loco/internal/history"
)

// ErrInvalidQuery is returned for malformed commands.
var ErrInvalidQuery = errors.New("invalid query")

// Usage describes the accepted syntax.
const Usage = "Usage: .15, 0.004s (units of time) or .15, 0.004 (number of entries)"

// Default is the query suggested at startup.
const Default = ".15, .004"

// Mode selects how Width is interpreted.
type Mode int

const (
	ModeRank Mode = iota
	ModeDuration
)

func (m Mode) String() string {
	if m == ModeDuration {
		return "duration"
	}
	return "rank"
}

// Query is a parsed window-query command.
type Query struct {
	Location float64
	Width    float64
	Mode     Mode
}

// Parse reads a command such as ".15, 0.004s".
func Parse(line string) (Query, error) {
	locText, widthText, ok := strings.Cut(line, ",")
	if !ok {
		return Query{}, fmt.Errorf("%w: expected <location>, <width>", ErrInvalidQuery)
	}
	widthText = strings.TrimSpace(widthText)

	q := Query{Mode: ModeRank}
	if w, found := strings.CutSuffix(widthText, "s"); found {
		widthText = strings.TrimSpace(w)
		q.Mode = ModeDuration
	}

	var err error
	if q.Location, err = parseNumber(locText); err != nil {
		return Query{}, fmt.Errorf("%w: location: %v", ErrInvalidQuery, err)
	}
	if q.Width, err = parseNumber(widthText); err != nil {
		return Query{}, fmt.Errorf("%w: width: %v", ErrInvalidQuery, err)
	}
	return q, nil
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

// Resolved holds a query's location rank and width after dual-mode
// resolution against a particular history.
type Resolved struct {
	Location int
	Width    int
	Mode     Mode
}

// maxWidth bounds resolved widths so the float to int conversion stays
// defined. Windows wider than the history are shrunk by the store anyway.
const maxWidth = math.MaxInt32

// Resolve turns q into concrete numbers for st. A fractional width is a
// proportion of the history's size in both modes; in duration mode the
// result is then read as seconds. Widths below 1 become 1.
func (q Query) Resolve(st *history.Store) Resolved {
	r := Resolved{Location: st.LocationFromAddress(q.Location), Mode: q.Mode}

	width := math.Abs(q.Width)
	if width < 1 {
		width *= float64(st.Len())
	}
	r.Width = max(int(min(width, maxWidth)), 1)
	return r
}

// Window extracts the events r selects.
func (r Resolved) Window(st *history.Store) []history.Event {
	if r.Mode == ModeDuration {
		return st.DurationWindow(r.Location, int64(r.Width))
	}
	return st.RankWindow(r.Location, r.Width)
}

// Run parses line and returns the selected window.
func Run(st *history.Store, line string) (Resolved, []history.Event, error) {
	q, err := Parse(line)
	if err != nil {
		return Resolved{}, nil, err
	}
	r := q.Resolve(st)
	return r, r.Window(st), nil
}
