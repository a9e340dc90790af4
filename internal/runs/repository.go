package runs

import (
	"context"
	"fmt"
	"time"

	"github.com/fortuna/courtside/internal/ingest"
	"github.com/fortuna/courtside/internal/store"
)

const runColumns = `run_id, trigger_source, team_id, season, status,
	teams_upserted, players_upserted, stats_replaced, records_skipped,
	used_fallback, error_count, summary, started_at, finished_at`

// Repository handles persistence for ingestion run history.
type Repository struct {
	db *store.Database
}

// NewRepository constructs a Repository.
func NewRepository(db *store.Database) *Repository {
	return &Repository{db: db}
}

// Create inserts a running row and returns the stored record.
func (r *Repository) Create(ctx context.Context, trigger, teamCode string, season int, startedAt time.Time) (*Run, error) {
	query := r.db.Rebind(`
		INSERT INTO ingest_runs (trigger_source, team_id, season, status, started_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING ` + runColumns)

	row := r.db.DB().QueryRowContext(ctx, query, trigger, teamCode, season, StatusRunning, startedAt)
	return scanRun(row)
}

// Finish stores the outcome of a run.
func (r *Repository) Finish(ctx context.Context, runID int64, result *ingest.Result) error {
	query := r.db.Rebind(`
		UPDATE ingest_runs
		SET status = ?,
			teams_upserted = ?,
			players_upserted = ?,
			stats_replaced = ?,
			records_skipped = ?,
			used_fallback = ?,
			error_count = ?,
			summary = ?,
			finished_at = ?
		WHERE run_id = ?
	`)

	_, err := r.db.DB().ExecContext(ctx, query,
		result.Status(), result.TeamsUpserted, result.PlayersUpserted, result.StatsReplaced,
		result.RecordsSkipped, result.UsedFallback, len(result.Errors), result.Summary(),
		result.FinishedAt, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// Fail marks a run that ended without a result.
func (r *Repository) Fail(ctx context.Context, runID int64, cause error) error {
	query := r.db.Rebind(`
		UPDATE ingest_runs
		SET status = ?, error_count = error_count + 1, summary = ?, finished_at = ?
		WHERE run_id = ?
	`)
	if _, err := r.db.DB().ExecContext(ctx, query, ingest.StatusFailed, cause.Error(), time.Now().UTC(), runID); err != nil {
		return fmt.Errorf("fail run: %w", err)
	}
	return nil
}

// MarkInterrupted closes runs left running by a previous process.
func (r *Repository) MarkInterrupted(ctx context.Context) (int64, error) {
	query := r.db.Rebind(`
		UPDATE ingest_runs
		SET status = ?, summary = ?, finished_at = ?
		WHERE status = ?
	`)
	res, err := r.db.DB().ExecContext(ctx, query,
		StatusInterrupted, "Interrupted by service restart", time.Now().UTC(), StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("mark interrupted runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark interrupted runs: %w", err)
	}
	return n, nil
}

// ListRecent returns the latest runs, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]*Run, error) {
	query := r.db.Rebind(`
		SELECT ` + runColumns + `
		FROM ingest_runs
		ORDER BY started_at DESC, run_id DESC
		LIMIT ?
	`)

	rows, err := r.db.DB().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	run := &Run{}
	err := row.Scan(
		&run.RunID, &run.Trigger, &run.TeamCode, &run.Season, &run.Status,
		&run.TeamsUpserted, &run.PlayersUpserted, &run.StatsReplaced, &run.RecordsSkipped,
		&run.UsedFallback, &run.ErrorCount, &run.Summary, &run.StartedAt, &run.FinishedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	return run, nil
}
