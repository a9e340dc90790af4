package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fortuna/courtside/internal/ingest/normalize"
	"github.com/fortuna/courtside/internal/store"
)

const playerColumns = `player_id, team_id, name, number, position, height, weight,
	birth_date, nationality, experience, college`

// PlayerRepository handles player data access
type PlayerRepository struct {
	db *store.Database
}

// NewPlayerRepository creates a new player repository
func NewPlayerRepository(db *store.Database) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// GetByID finds a player by the id mined from their profile link
func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (*store.Player, error) {
	player, err := r.find(ctx, r.db.DB(), playerID)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, fmt.Errorf("player %s: %w", playerID, ErrNotFound)
	}
	return player, nil
}

// GetByTeam returns a team's players ordered by name
func (r *PlayerRepository) GetByTeam(ctx context.Context, teamCode string) ([]*store.Player, error) {
	query := r.db.Rebind(`
		SELECT ` + playerColumns + `
		FROM players
		WHERE team_id = ?
		ORDER BY name
	`)

	rows, err := r.db.DB().QueryContext(ctx, query, teamCode)
	if err != nil {
		return nil, fmt.Errorf("querying players: %w", err)
	}
	defer rows.Close()

	return scanPlayers(rows)
}

// Roster returns the team's players with height and weight parsed to numbers
func (r *PlayerRepository) Roster(ctx context.Context, teamCode string) ([]store.RosterEntry, error) {
	players, err := r.GetByTeam(ctx, teamCode)
	if err != nil {
		return nil, err
	}

	roster := make([]store.RosterEntry, 0, len(players))
	for _, p := range players {
		roster = append(roster, NewRosterEntry(p))
	}
	return roster, nil
}

// NewRosterEntry flattens p and parses its height and weight.
// Values that do not parse are left null.
func NewRosterEntry(p *store.Player) store.RosterEntry {
	entry := store.RosterEntry{
		PlayerID:    p.PlayerID,
		TeamCode:    p.TeamCode,
		Name:        p.Name,
		Number:      store.NullStringPtr(p.Number),
		Position:    store.NullStringPtr(p.Position),
		Height:      store.NullStringPtr(p.Height),
		Weight:      store.NullStringPtr(p.Weight),
		BirthDate:   store.NullStringPtr(p.BirthDate),
		Nationality: store.NullStringPtr(p.Nationality),
		Experience:  store.NullStringPtr(p.Experience),
		College:     store.NullStringPtr(p.College),
	}
	if p.Height.Valid {
		if inches, err := normalize.ToHeightInches(p.Height.String); err == nil {
			entry.HeightInches = &inches
		}
	}
	if p.Weight.Valid {
		if lbs, err := normalize.ToWeightPounds(p.Weight.String); err == nil {
			entry.WeightLbs = store.NullInt32Ptr(lbs)
		}
	}
	return entry
}

// Count returns the number of stored players for a team
func (r *PlayerRepository) Count(ctx context.Context, teamCode string) (int, error) {
	var n int
	err := r.db.DB().QueryRowContext(ctx, r.db.Rebind(`SELECT COUNT(*) FROM players WHERE team_id = ?`), teamCode).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting players: %w", err)
	}
	return n, nil
}

// find returns nil without error when no row matches
func (r *PlayerRepository) find(ctx context.Context, q querier, playerID string) (*store.Player, error) {
	query := r.db.Rebind(`
		SELECT ` + playerColumns + `
		FROM players
		WHERE player_id = ?
	`)

	p := &store.Player{}
	err := q.QueryRowContext(ctx, query, playerID).Scan(
		&p.PlayerID, &p.TeamCode, &p.Name, &p.Number, &p.Position, &p.Height, &p.Weight,
		&p.BirthDate, &p.Nationality, &p.Experience, &p.College,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying player: %w", err)
	}
	return p, nil
}

// upsert looks the player up by id and overwrites or inserts it.
// It reports whether a new row was inserted.
func (r *PlayerRepository) upsert(ctx context.Context, q querier, incoming *store.Player) (bool, error) {
	if incoming.PlayerID == "" {
		return false, fmt.Errorf("player %q has no player_id", incoming.Name)
	}

	existing, err := r.find(ctx, q, incoming.PlayerID)
	if err != nil {
		return false, err
	}

	if existing != nil {
		mergePlayer(existing, incoming)
		query := r.db.Rebind(`
			UPDATE players
			SET team_id = ?, name = ?, number = ?, position = ?, height = ?, weight = ?,
				birth_date = ?, nationality = ?, experience = ?, college = ?
			WHERE player_id = ?
		`)
		_, err := q.ExecContext(ctx, query,
			existing.TeamCode, existing.Name, existing.Number, existing.Position, existing.Height, existing.Weight,
			existing.BirthDate, existing.Nationality, existing.Experience, existing.College,
			existing.PlayerID,
		)
		if err != nil {
			return false, fmt.Errorf("updating player %s: %w", existing.PlayerID, err)
		}
		return false, nil
	}

	query := r.db.Rebind(`
		INSERT INTO players (` + playerColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err = q.ExecContext(ctx, query,
		incoming.PlayerID, incoming.TeamCode, incoming.Name, incoming.Number, incoming.Position, incoming.Height, incoming.Weight,
		incoming.BirthDate, incoming.Nationality, incoming.Experience, incoming.College,
	)
	if err != nil {
		return false, fmt.Errorf("inserting player %s: %w", incoming.PlayerID, err)
	}
	return true, nil
}

// mergePlayer copies every non-key attribute of src onto dst
func mergePlayer(dst, src *store.Player) {
	dst.TeamCode = src.TeamCode
	dst.Name = src.Name
	dst.Number = src.Number
	dst.Position = src.Position
	dst.Height = src.Height
	dst.Weight = src.Weight
	dst.BirthDate = src.BirthDate
	dst.Nationality = src.Nationality
	dst.Experience = src.Experience
	dst.College = src.College
}

func scanPlayers(rows *sql.Rows) ([]*store.Player, error) {
	var players []*store.Player
	for rows.Next() {
		p := &store.Player{}
		err := rows.Scan(
			&p.PlayerID, &p.TeamCode, &p.Name, &p.Number, &p.Position, &p.Height, &p.Weight,
			&p.BirthDate, &p.Nationality, &p.Experience, &p.College,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}
