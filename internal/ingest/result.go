package ingest

import (
	"fmt"
	"time"
)

// Run status values.
const (
	StatusSucceeded = "succeeded"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
)

// Result tracks what one ingestion run persisted and what went wrong.
type Result struct {
	TeamCode        string    `json:"team_id"`
	Season          int       `json:"season"`
	Trigger         string    `json:"trigger"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
	TeamsUpserted   int       `json:"teams_upserted"`
	PlayersUpserted int       `json:"players_upserted"`
	StatsReplaced   int       `json:"stats_replaced"`
	RecordsSkipped  int       `json:"records_skipped"`
	UsedFallback    bool      `json:"used_fallback"`
	Errors          []string  `json:"errors,omitempty"`
}

// AddError records an error message.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// AddErrorf records a formatted error message.
func (r *Result) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Status classifies the run from its counters and errors.
func (r *Result) Status() string {
	switch {
	case len(r.Errors) == 0:
		return StatusSucceeded
	case r.TeamsUpserted+r.PlayersUpserted+r.StatsReplaced > 0:
		return StatusPartial
	default:
		return StatusFailed
	}
}

// Duration is the wall time of the run.
func (r *Result) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"team=%s season=%d teams=%d players=%d player_stats=%d skipped=%d fallback=%t errors=%d",
		r.TeamCode, r.Season, r.TeamsUpserted, r.PlayersUpserted, r.StatsReplaced,
		r.RecordsSkipped, r.UsedFallback, len(r.Errors),
	)
}
