package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/loco/internal/export"
	"github.com/roach88/loco/internal/history"
	"github.com/roach88/loco/internal/ingest"
	"github.com/roach88/loco/internal/report"
)

// ScanOptions holds flags for the scan command.
type ScanOptions struct {
	*RootOptions
	settings settingFlags

	List   bool
	Export string
}

// ScanResult is the outcome of a scan.
type ScanResult struct {
	Run     report.Run      `json:"run"`
	Stats   ingest.Stats    `json:"stats"`
	History []history.Event `json:"history,omitempty"`
	Export  string          `json:"export,omitempty"`
}

// RenderText prints the optional listing, the ingestion totals and the
// run summary.
func (r ScanResult) RenderText(w io.Writer) error {
	if err := report.History(w, r.History); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Merged %d events from %d files (%d parsed, %d dropped, %d failed, %d unchanged)\n",
		r.Stats.Imported, r.Stats.Files, r.Stats.Parsed, r.Stats.Dropped, r.Stats.Failed, r.Stats.Skipped)
	if err != nil {
		return err
	}
	if r.Export != "" {
		if _, err := fmt.Fprintf(w, "Exported to %s\n", r.Export); err != nil {
			return err
		}
	}
	return report.Summary(w, r.Run)
}

// NewScanCommand creates the scan command.
func NewScanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scan <path>...",
		Short: "Merge log files and report what was imported",
		Long: `Merge every log file named on the command line, or found below a named
directory, into one ordered history and print a per-file summary.

With --list (or --verbose) the whole history is printed, oldest first.
With --export the history and summaries are also written to a SQLite file.

Example:
  loco scan data/
  loco scan --list --export merged.db data/*.log`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.List, "list", "l", false, "print the whole merged history")
	cmd.Flags().StringVar(&opts.Export, "export", "", "write the history to this SQLite database")
	opts.settings.registerIngest(cmd)

	return cmd
}

func runScan(opts *ScanOptions, paths []string, cmd *cobra.Command) error {
	s, err := openSession(cmd, opts.RootOptions, &opts.settings, paths)
	if err != nil {
		return err
	}

	result := ScanResult{Run: s.summary(), Stats: s.stats}
	if opts.List || opts.Verbose {
		result.History = s.store.Events()
	}

	if opts.Export != "" {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := exportRun(ctx, opts.Export, s); err != nil {
			return s.formatter.Fail(ExitFailure, ErrCodeExportFailed, "export failed", err)
		}
		result.Export = opts.Export
	}

	return s.formatter.Success(result)
}

func exportRun(ctx context.Context, path string, s *session) (err error) {
	exp, err := export.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := exp.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := exp.WriteRun(ctx, export.Run{
		ID:          s.run.ID,
		Started:     s.run.Started,
		CommandLine: s.run.CommandLine,
	}); err != nil {
		return err
	}
	added, err := exp.WriteHistory(ctx, s.run.ID, s.store.Events())
	if err != nil {
		return err
	}
	s.logger.Debug("history exported", "path", path, "events", added)
	return exp.WriteSummaries(ctx, s.run.ID, s.tracker.Summaries())
}
