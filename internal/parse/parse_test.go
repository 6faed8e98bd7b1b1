package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/loco/internal/history"
)

func TestLine_ISO(t *testing.T) {
	e, err := Line("2024-09-07 23:00:04 INFO service started", "/var/log/app.log")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 9, 7, 23, 0, 4, 0, time.UTC), e.Time)
	assert.Equal(t, "/var/log/app.log", e.Originator)
	assert.Equal(t, history.SeverityInfo, e.Severity)
	assert.Equal(t, "INFO service started", e.Message)
}

func TestLine_ISOWithSuffix(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"2024-09-07 23:00:04: And then a hippo appeared.", "And then a hippo appeared."},
		{"2024-09-07 23:00:04,512   padded", "padded"},
		{"2024-09-07 23:00:04", ""},
		{"2024-09-07 23:00:04\tTAB", "TAB"},
	}
	for _, tt := range tests {
		_, rest, err := Timestamp(tt.line)
		require.NoError(t, err, tt.line)
		assert.Equal(t, tt.want, rest, tt.line)
	}
}

// The verbose shape carries a zone name that is skipped, not interpreted.
func TestLine_VerboseFormat(t *testing.T) {
	want := time.Date(2024, 9, 7, 23, 0, 4, 0, time.UTC)

	for _, line := range []string{
		"Sat Sep  7 11:00:04 PM CEST 2024 backup finished",
		"Sat Sep 7 11:00:04 PM UTC 2024 backup finished",
		"Sat Sep 07 11:00:04 PM XYZT 2024   backup finished",
	} {
		e, err := Line(line, "cron.log")
		require.NoError(t, err, line)
		assert.Equal(t, want, e.Time, line)
		assert.Equal(t, "backup finished", e.Message, line)
	}

	e, err := Line("Sun Sep  8 12:30:00 AM CEST 2024 midnight", "cron.log")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 9, 8, 0, 30, 0, 0, time.UTC), e.Time)
}

func TestLine_Unparseable(t *testing.T) {
	for _, line := range []string{
		"",
		"short line",
		"2024-09-07 23:0",
		"no timestamp at the start of this line",
		"2024-13-07 23:00:04 bad month",
		"Sat Sep  7 11:00:04 PM CEST",
		"Sat Sep 7 25:00:04 PM CEST 2024 bad hour",
		"  2024-09-07 23:00:04 leading space",
	} {
		_, err := Line(line, "x.log")
		assert.ErrorIs(t, err, ErrUnparseable, "line %q", line)
	}
}

func TestSeverity_FirstKeywordWins(t *testing.T) {
	tests := []struct {
		line string
		want history.Severity
	}{
		{"2024-09-07 23:00:04 INFO ok", history.SeverityInfo},
		{"2024-09-07 23:00:04 DEBUG x", history.SeverityDebug},
		{"2024-09-07 23:00:04 ERROR x", history.SeverityError},
		{"2024-09-07 23:00:04 WARNING x", history.SeverityWarn},
		{"2024-09-07 23:00:04 ERROR after INFO", history.SeverityInfo},
		{"2024-09-07 23:00:04 WARNING then DEBUG", history.SeverityDebug},
		{"2024-09-07 23:00:04 WARNING and ERROR", history.SeverityError},
		{"2024-09-07 23:00:04 WARN is not a keyword", history.SeverityUnknown},
		{"2024-09-07 23:00:04 plain", history.SeverityUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Severity(tt.line), tt.line)
	}
}

func TestLine_Deterministic(t *testing.T) {
	line := "2024-09-07 23:00:04 ERROR disk full"
	a, err := Line(line, "a.log")
	require.NoError(t, err)
	b, err := Line(line, "a.log")
	require.NoError(t, err)
	assert.True(t, history.Equal(a, b))
}
