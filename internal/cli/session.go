package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/loco/internal/config"
	"github.com/roach88/loco/internal/extract"
	"github.com/roach88/loco/internal/history"
	"github.com/roach88/loco/internal/ingest"
	"github.com/roach88/loco/internal/query"
	"github.com/roach88/loco/internal/report"
)

// settingFlags are per-command overrides of config file values. Only flags
// the user actually set are applied.
type settingFlags struct {
	extensions []string
	readCap    int64

	detection           bool
	numSplits           int
	limit               int
	minObservations     int
	maxPatterns         int
	valuePlusOriginator bool
}

func (f *settingFlags) registerIngest(cmd *cobra.Command) {
	d := config.Default()
	cmd.Flags().StringSliceVar(&f.extensions, "ext", d.Ingest.Extensions, "file extensions picked up when scanning directories")
	cmd.Flags().Int64Var(&f.readCap, "read-cap", d.Ingest.ReadCap, "trailing bytes read per file and import")
}

func (f *settingFlags) registerDetection(cmd *cobra.Command) {
	d := config.Default().Detection
	f.detection = true
	cmd.Flags().IntVar(&f.numSplits, "num-splits", d.NumSplits, "chunks a window is cut into before mining")
	cmd.Flags().IntVar(&f.limit, "limit", d.Limit, "largest gap between consecutive pattern elements")
	cmd.Flags().IntVar(&f.minObservations, "min-observations", d.MinObservations, "minimum pattern support (0 means num-splits)")
	cmd.Flags().IntVar(&f.maxPatterns, "max-patterns", d.MaxPatterns, "maximum number of patterns reported (0 means no cap)")
	cmd.Flags().BoolVar(&f.valuePlusOriginator, "value-plus-originator", d.ValuePlusOriginator, "treat the same message from different files as different events")
}

func (f *settingFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("ext") {
		cfg.Ingest.Extensions = f.extensions
	}
	if changed("read-cap") {
		cfg.Ingest.ReadCap = f.readCap
	}
	if !f.detection {
		return
	}
	if changed("num-splits") {
		cfg.Detection.NumSplits = f.numSplits
	}
	if changed("limit") {
		cfg.Detection.Limit = f.limit
	}
	if changed("min-observations") {
		cfg.Detection.MinObservations = f.minObservations
	}
	if changed("max-patterns") {
		cfg.Detection.MaxPatterns = f.maxPatterns
	}
	if changed("value-plus-originator") {
		cfg.Detection.ValuePlusOriginator = f.valuePlusOriginator
	}
}

// session is the state shared by every command: settings, the tracked
// files and the merged history.
type session struct {
	cfg       config.Config
	logger    *slog.Logger
	formatter *OutputFormatter
	tracker   *ingest.Tracker
	store     *history.Store
	detector  *extract.Detector
	run       report.Run
	stats     ingest.Stats
}

// openSession loads settings, discovers the files named by paths and merges
// them into a fresh history. Returned errors are ExitErrors that have
// already been reported through the formatter.
func openSession(cmd *cobra.Command, opts *RootOptions, flags *settingFlags, paths []string) (*session, error) {
	s := &session{
		run: report.Run{
			ID:          opts.runIDs().Generate(),
			Started:     opts.clock().Now().UTC(),
			CommandLine: strings.Join(append([]string{cmd.CommandPath()}, cmd.Flags().Args()...), " "),
		},
		store: history.NewStore(),
	}
	s.formatter = &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
		RunID:     s.run.ID,
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, s.formatter.Fail(ExitCommandError, ErrCodeInvalidConfig, "failed to load config", err)
	}
	flags.apply(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return nil, s.formatter.Fail(ExitCommandError, ErrCodeInvalidConfig, "invalid settings", err)
	}
	s.cfg = cfg

	level, _ := config.ParseLevel(cfg.Log.Level)
	if opts.Verbose {
		level = slog.LevelDebug
	}
	s.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	s.detector = extract.NewDetector(cfg.Options(), nil, s.logger)

	files, err := ingest.Discover(paths, cfg.Ingest.Extensions)
	if err != nil {
		code := ErrCodeGeneric
		if errors.Is(err, ingest.ErrInvalidPath) {
			code = ErrCodeInvalidPath
		}
		return nil, s.formatter.Fail(ExitCommandError, code, "logfiles argument is not a valid directory or file", err)
	}
	s.logger.Debug("files discovered", "count", len(files))

	s.tracker = ingest.NewTracker(cfg.Ingest.ReadCap, s.logger)
	for _, f := range files {
		s.tracker.Add(f)
	}
	s.rescan()
	return s, nil
}

// rescan re-imports every tracked file. Unchanged files are skipped.
func (s *session) rescan() ingest.Stats {
	for _, w := range s.tracker.Files() {
		s.formatter.VerboseLog("Reading in %s", w.Path)
	}
	stats := s.tracker.Run(s.store)
	s.stats.Add(stats)
	return stats
}

// summary snapshots the run and every tracked file.
func (s *session) summary() report.Run {
	r := s.run
	r.Events = s.store.Len()
	r.Logs = s.tracker.Summaries()
	return r
}

// evaluate runs one window query and mines the selected window.
func (s *session) evaluate(ctx context.Context, line string) (*QueryResult, error) {
	resolved, window, err := query.Run(s.store, line)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("window selected",
		"mode", resolved.Mode,
		"location", resolved.Location,
		"width", resolved.Width,
		"events", len(window),
	)

	det, err := s.detector.Detect(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("detect patterns: %w", err)
	}
	return newQueryResult(line, resolved, window, det), nil
}

// interruptible cancels the returned context on SIGINT or SIGTERM until
// stop is called.
func interruptible(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
