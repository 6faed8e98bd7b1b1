package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/loco/internal/ingest"
	"github.com/roach88/loco/internal/query"
)

// ReplOptions holds flags for the repl command.
type ReplOptions struct {
	*RootOptions
	settings settingFlags
}

// RescanResult reports one re-import of the tracked files.
type RescanResult struct {
	Stats  ingest.Stats `json:"stats"`
	Events int          `json:"events"`
}

// RenderText prints the rescan totals on one line.
func (r RescanResult) RenderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Rescanned %d files: %d new events (%d unchanged, %d failed), history holds %d events\n",
		r.Stats.Files, r.Stats.Imported, r.Stats.Skipped, r.Stats.Failed, r.Events)
	return err
}

const replHelp = `Commands:
  <location>, <width>     window of width entries around location
  <location>, <width>s    window of width seconds around location
  rescan                  re-import files modified since the last import
  help                    show this help
  quit                    leave`

// NewReplCommand creates the repl command.
func NewReplCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "repl <path>...",
		Short: "Merge log files and query the history interactively",
		Long: `Merge the named log files and read window queries from standard input,
one per line. Each query prints the selected window and the repeating
patterns found in it.

` + query.Usage,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(opts, args, cmd)
		},
	}

	opts.settings.registerIngest(cmd)
	opts.settings.registerDetection(cmd)

	return cmd
}

func runRepl(opts *ReplOptions, paths []string, cmd *cobra.Command) error {
	s, err := openSession(cmd, opts.RootOptions, &opts.settings, paths)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	interactive := opts.Format != "json"
	prompt := func() {
		if interactive {
			fmt.Fprint(out, ">>> ")
		}
	}
	if interactive {
		fmt.Fprintf(out, "Instructions: \n\t%s\n", s.cfg.DefaultQuery)
	}

	sc := bufio.NewScanner(cmd.InOrStdin())
loop:
	for prompt(); sc.Scan(); prompt() {
		line := strings.TrimSpace(sc.Text())
		switch line {
		case "":
			continue
		case "quit", "exit":
			break loop
		case "help":
			if interactive {
				fmt.Fprintln(out, replHelp)
			}
			continue
		case "rescan":
			stats := s.rescan()
			if err := s.formatter.Success(RescanResult{Stats: stats, Events: s.store.Len()}); err != nil {
				return err
			}
			continue
		}

		ctx, stop := interruptible(cmd.Context())
		res, err := s.evaluate(ctx, line)
		stop()
		switch {
		case errors.Is(err, query.ErrInvalidQuery):
			s.formatter.Error(ErrCodeInvalidQuery, query.Usage, err.Error())
		case err != nil:
			s.formatter.Error(ErrCodeGeneric, "pattern detection failed", err.Error())
		default:
			if err := s.formatter.Success(res); err != nil {
				return err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return s.formatter.Fail(ExitFailure, ErrCodeGeneric, "failed to read input", err)
	}

	if opts.Verbose {
		return s.formatter.Success(s.summary())
	}
	return nil
}
