package export

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// SQLite writes logbook runs to a local SQLite database. Each call to
// WriteLogbook becomes one run, identified by a fresh UUID, so repeated
// exports of the same feed stay distinguishable.
type SQLite struct {
	conn *sql.DB
}

// OpenSQLite opens (or creates) the database with WAL mode enabled and
// ensures the schema exists.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	dsn := path + "?_journal=WAL&_busy_timeout=5000"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// transaction conflicts between concurrent feed exports.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	if _, err := conn.ExecContext(ctx, "PRAGMA synchronous = NORMAL"); err != nil {
		log.Printf("Warning: failed to set synchronous pragma: %v", err)
	}
	if _, err := conn.ExecContext(ctx, schemaSQL); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// WriteLogbook inserts one exported run and its rows in a single
// transaction, returning the run id.
func (s *SQLite) WriteLogbook(ctx context.Context, feedID string, rows []Row) (string, error) {
	runID := uuid.New().String()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO logbook_runs (run_id, feed_id, exported_at_utc) VALUES (?, ?, ?)",
		runID, feedID, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO logbook_records (
			run_id, trip_id, stop_id, stop_name, stop_sequence,
			first_seen_estimate, last_seen_estimate, finalized_time, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("prepare record statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		var finalized any
		if row.FinalizedTime != 0 {
			finalized = row.FinalizedTime
		}
		var stopName any
		if row.StopName != "" {
			stopName = row.StopName
		}
		if _, err := stmt.ExecContext(ctx,
			runID, row.TripID, row.StopID, stopName, row.StopSequence,
			row.FirstSeenEstimate, row.LastSeenEstimate, finalized, string(row.Status),
		); err != nil {
			return "", fmt.Errorf("insert record %s/%d: %w", row.TripID, row.StopSequence, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}
