package export

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchemaSQL = `
CREATE TABLE IF NOT EXISTS logbook_runs (
    run_id          UUID PRIMARY KEY,
    feed_id         TEXT NOT NULL,
    exported_at_utc TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS logbook_records (
    run_id              UUID NOT NULL REFERENCES logbook_runs(run_id),
    trip_id             TEXT NOT NULL,
    stop_id             TEXT NOT NULL,
    stop_name           TEXT,
    stop_sequence       INTEGER NOT NULL,
    first_seen_estimate BIGINT NOT NULL,
    last_seen_estimate  BIGINT NOT NULL,
    finalized_time      BIGINT,
    status              TEXT NOT NULL,
    PRIMARY KEY (run_id, trip_id, stop_sequence)
)`

// EnsurePostgresSchema creates the export tables if they do not exist.
func EnsurePostgresSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, postgresSchemaSQL); err != nil {
		return fmt.Errorf("create postgres schema: %w", err)
	}
	return nil
}

// WritePostgres inserts one exported run and its rows using a batch,
// returning the run id.
func WritePostgres(ctx context.Context, pool *pgxpool.Pool, feedID string, rows []Row) (string, error) {
	runID := uuid.New().String()

	if _, err := pool.Exec(ctx,
		`INSERT INTO logbook_runs (run_id, feed_id) VALUES ($1, $2)`,
		runID, feedID,
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	batch := &pgx.Batch{}
	query := `INSERT INTO logbook_records (
    run_id, trip_id, stop_id, stop_name, stop_sequence,
    first_seen_estimate, last_seen_estimate, finalized_time, status
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	for _, row := range rows {
		var finalized *int64
		if row.FinalizedTime != 0 {
			f := row.FinalizedTime
			finalized = &f
		}
		var stopName *string
		if row.StopName != "" {
			n := row.StopName
			stopName = &n
		}
		batch.Queue(query, runID, row.TripID, row.StopID, stopName, row.StopSequence,
			row.FirstSeenEstimate, row.LastSeenEstimate, finalized, string(row.Status))
	}

	res := pool.SendBatch(ctx, batch)
	defer res.Close()

	for range rows {
		if _, err := res.Exec(); err != nil {
			return "", fmt.Errorf("insert record: %w", err)
		}
	}
	return runID, nil
}
