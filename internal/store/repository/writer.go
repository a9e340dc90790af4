package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/fortuna/courtside/internal/store"
)

// PersistenceError reports a write transaction that was rolled back
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s rolled back: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Writer applies ingestion batches to the store. Every operation runs in
// its own transaction and leaves the store untouched when it fails.
type Writer struct {
	db      *store.Database
	teams   *TeamRepository
	players *PlayerRepository
	stats   *StatsRepository
	logger  *slog.Logger
}

// NewWriter creates a writer over db
func NewWriter(db *store.Database, logger *slog.Logger) *Writer {
	return &Writer{
		db:      db,
		teams:   NewTeamRepository(db),
		players: NewPlayerRepository(db),
		stats:   NewStatsRepository(db),
		logger:  logger.With("component", "writer"),
	}
}

// UpsertTeam inserts the team or overwrites the row with the same code
func (w *Writer) UpsertTeam(ctx context.Context, team *store.Team) error {
	var inserted bool
	err := w.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		inserted, err = w.teams.upsert(ctx, tx, team)
		return err
	})
	if err != nil {
		w.logger.Error("team upsert failed", "team", team.TeamCode, "error", err)
		return &PersistenceError{Op: "upsert team", Err: err}
	}

	w.logger.Info("team upserted",
		"team", team.TeamCode,
		"wins", team.Wins,
		"losses", team.Losses,
		"inserted", inserted,
	)
	return nil
}

// UpsertPlayers writes the whole roster in one transaction.
// A single failing player rolls back the batch.
func (w *Writer) UpsertPlayers(ctx context.Context, players []*store.Player) error {
	var inserted, updated int
	err := w.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, p := range players {
			isNew, err := w.players.upsert(ctx, tx, p)
			if err != nil {
				return err
			}
			if isNew {
				inserted++
			} else {
				updated++
			}
		}
		return nil
	})
	if err != nil {
		w.logger.Error("player upsert failed", "players", len(players), "error", err)
		return &PersistenceError{Op: "upsert players", Err: err}
	}

	w.logger.Info("players upserted", "inserted", inserted, "updated", updated)
	return nil
}

// ReplacePlayerStats swaps every stat row of season for records.
// The delete and the inserts share one transaction so a failure keeps the
// previous rows.
func (w *Writer) ReplacePlayerStats(ctx context.Context, records []*store.PlayerStats, season int) error {
	var deleted int64
	err := w.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		deleted, err = w.stats.deleteSeason(ctx, tx, season)
		if err != nil {
			return err
		}
		for _, s := range records {
			if s.Season != season {
				return fmt.Errorf("stats for %s are season %d, expected %d", s.PlayerID, s.Season, season)
			}
			if err := w.stats.insert(ctx, tx, s); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		w.logger.Error("player stats replace failed", "season", season, "records", len(records), "error", err)
		return &PersistenceError{Op: "replace player stats", Err: err}
	}

	w.logger.Info("player stats replaced", "season", season, "deleted", deleted, "inserted", len(records))
	return nil
}
