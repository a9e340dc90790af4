package runs

import (
	"database/sql"
	"time"
)

// StatusRunning marks a run that has started but not finished.
// Finished runs carry the ingest result status.
const StatusRunning = "running"

// StatusInterrupted marks a run the process died during.
const StatusInterrupted = "interrupted"

// Run models one row of ingestion history.
type Run struct {
	RunID           int64          `json:"run_id"`
	Trigger         string         `json:"trigger"`
	TeamCode        string         `json:"team_id"`
	Season          int            `json:"season"`
	Status          string         `json:"status"`
	TeamsUpserted   int            `json:"teams_upserted"`
	PlayersUpserted int            `json:"players_upserted"`
	StatsReplaced   int            `json:"stats_replaced"`
	RecordsSkipped  int            `json:"records_skipped"`
	UsedFallback    bool           `json:"used_fallback"`
	ErrorCount      int            `json:"error_count"`
	Summary         sql.NullString `json:"-"`
	StartedAt       time.Time      `json:"started_at"`
	FinishedAt      sql.NullTime   `json:"-"`
}

// Copy returns a shallow copy to prevent external mutation.
func (r *Run) Copy() *Run {
	if r == nil {
		return nil
	}
	cpy := *r
	return &cpy
}

// StatusSummary is returned to API callers.
type StatusSummary struct {
	ActiveRun *Run   `json:"active_run,omitempty"`
	History   []*Run `json:"recent_runs,omitempty"`
}
