// Package export writes a merged history and its file summaries to a SQLite
// database. The database is a write-only snapshot; loco never reads it back.
package export

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/loco/internal/history"
	"github.com/roach88/loco/internal/ingest"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// Run identifies the invocation that produced an export.
type Run struct {
	ID          string
	Started     time.Time
	CommandLine string
}

// Exporter writes snapshots into one SQLite database.
type Exporter struct {
	db *sql.DB
}

// Open creates or opens the database at path and applies the schema.
//
// The database is configured with:
//   - WAL mode
//   - NORMAL synchronous mode
//   - 5-second busy timeout
//   - Foreign key enforcement
func Open(path string) (*Exporter, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Exporter{db: db}, nil
}

// Close closes the database.
func (e *Exporter) Close() error {
	if e.db == nil {
		return nil
	}
	return e.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// WriteRun records r. Writing the same run twice is a no-op.
func (e *Exporter) WriteRun(ctx context.Context, r Run) error {
	_, err := e.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, command_line)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, r.ID, formatTime(r.Started), r.CommandLine)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteHistory stores events, oldest first, under runID in one transaction.
// The run must have been written first. It returns the number of rows added.
func (e *Exporter) WriteHistory(ctx context.Context, runID string, events []history.Event) (int, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("write history: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (run_id, seq, ts, originator, severity, message)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("write history: %w", err)
	}
	defer stmt.Close()

	added := 0
	for i, ev := range events {
		res, err := stmt.ExecContext(ctx, runID, i, ev.Time.Format(time.RFC3339), ev.Originator, string(ev.Severity), ev.Message)
		if err != nil {
			return 0, fmt.Errorf("write history: event %d: %w", i, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			added += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("write history: commit: %w", err)
	}
	return added, nil
}

// WriteSummaries stores one row per tracked file under runID, replacing any
// earlier row for the same file.
func (e *Exporter) WriteSummaries(ctx context.Context, runID string, summaries []ingest.Summary) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write summaries: %w", err)
	}
	defer tx.Rollback()

	for _, s := range summaries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO files
			(run_id, filename, last_imported_time, last_write_time, num_entries, num_imported, last_error)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(run_id, filename) DO UPDATE SET
				last_imported_time = excluded.last_imported_time,
				last_write_time    = excluded.last_write_time,
				num_entries        = excluded.num_entries,
				num_imported       = excluded.num_imported,
				last_error         = excluded.last_error
		`,
			runID,
			s.Path,
			nullTime(s.LastImported),
			nullTime(s.LastWrite),
			s.Entries,
			s.Imported,
			sql.NullString{String: s.LastError, Valid: s.LastError != ""},
		)
		if err != nil {
			return fmt.Errorf("write summaries: %s: %w", s.Path, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write summaries: commit: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(t), Valid: true}
}
