package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/loco/internal/extract"
	"github.com/roach88/loco/internal/history"
	"github.com/roach88/loco/internal/query"
	"github.com/roach88/loco/internal/report"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	settings settingFlags
}

// QueryResult is one evaluated window query.
type QueryResult struct {
	Query      string            `json:"query"`
	Mode       string            `json:"mode"`
	Location   int               `json:"location"`
	Width      int               `json:"width"`
	Window     []history.Event   `json:"window"`
	Vocabulary int               `json:"vocabulary"`
	Patterns   []extract.Pattern `json:"patterns"`

	detection *extract.Detection
}

func newQueryResult(line string, r query.Resolved, window []history.Event, det *extract.Detection) *QueryResult {
	res := &QueryResult{
		Query:      line,
		Mode:       r.Mode.String(),
		Location:   r.Location,
		Width:      r.Width,
		Window:     window,
		Vocabulary: det.Vocabulary.Len(),
		Patterns:   det.Patterns,
		detection:  det,
	}
	if res.Window == nil {
		res.Window = []history.Event{}
	}
	if res.Patterns == nil {
		res.Patterns = []extract.Pattern{}
	}
	return res
}

// RenderText prints the window followed by the pattern report.
func (r *QueryResult) RenderText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "run: %d %d\n", r.Location, r.Width); err != nil {
		return err
	}
	if err := report.Window(w, r.Location, r.Width, r.Window); err != nil {
		return err
	}
	if err := report.Patterns(w, r.detection); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "run finished: %d %d\n", r.Location, r.Width)
	return err
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <location, width[s]> <path>...",
		Short: "Run one window query and report repeating patterns",
		Long: `Merge the named log files, select a window of the history and mine it
for repeating sequences of events.

` + query.Usage + `

Example:
  loco query ".15, .004" data/
  loco query "0.5, 60s" --num-splits 3 app.log db.log`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], args[1:], cmd)
		},
	}

	opts.settings.registerIngest(cmd)
	opts.settings.registerDetection(cmd)

	return cmd
}

func runQuery(opts *QueryOptions, line string, paths []string, cmd *cobra.Command) error {
	// Reject a malformed query before touching any file.
	if _, err := query.Parse(line); err != nil {
		f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
		return f.Fail(ExitCommandError, ErrCodeInvalidQuery, query.Usage, err)
	}

	s, err := openSession(cmd, opts.RootOptions, &opts.settings, paths)
	if err != nil {
		return err
	}

	ctx, stop := interruptible(cmd.Context())
	defer stop()

	res, err := s.evaluate(ctx, line)
	if err != nil {
		if errors.Is(err, query.ErrInvalidQuery) {
			return s.formatter.Fail(ExitCommandError, ErrCodeInvalidQuery, query.Usage, err)
		}
		return s.formatter.Fail(ExitFailure, ErrCodeGeneric, "pattern detection failed", err)
	}
	return s.formatter.Success(res)
}
