package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fortuna/courtside/internal/store"
)

// TeamRepository handles team data access
type TeamRepository struct {
	db *store.Database
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *store.Database) *TeamRepository {
	return &TeamRepository{db: db}
}

// GetAll returns every stored team
func (r *TeamRepository) GetAll(ctx context.Context) ([]*store.Team, error) {
	query := `
		SELECT team_id, name, year, wins, losses, last_updated
		FROM teams
		ORDER BY team_id
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying teams: %w", err)
	}
	defer rows.Close()

	var teams []*store.Team
	for rows.Next() {
		team := &store.Team{}
		err := rows.Scan(&team.TeamCode, &team.Name, &team.Year, &team.Wins, &team.Losses, &team.LastUpdated)
		if err != nil {
			return nil, fmt.Errorf("scanning team: %w", err)
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}

// GetByCode finds a team by its code (e.g., "LAL")
func (r *TeamRepository) GetByCode(ctx context.Context, code string) (*store.Team, error) {
	team, err := r.find(ctx, r.db.DB(), code)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, fmt.Errorf("team %s: %w", code, ErrNotFound)
	}
	return team, nil
}

// find returns nil without error when no row matches
func (r *TeamRepository) find(ctx context.Context, q querier, code string) (*store.Team, error) {
	query := r.db.Rebind(`
		SELECT team_id, name, year, wins, losses, last_updated
		FROM teams
		WHERE team_id = ?
	`)

	team := &store.Team{}
	err := q.QueryRowContext(ctx, query, code).Scan(
		&team.TeamCode, &team.Name, &team.Year, &team.Wins, &team.Losses, &team.LastUpdated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying team: %w", err)
	}

	return team, nil
}

// upsert looks the team up by code and overwrites or inserts it.
// It reports whether a new row was inserted.
func (r *TeamRepository) upsert(ctx context.Context, q querier, incoming *store.Team) (bool, error) {
	existing, err := r.find(ctx, q, incoming.TeamCode)
	if err != nil {
		return false, err
	}

	if existing != nil {
		mergeTeam(existing, incoming)
		query := r.db.Rebind(`
			UPDATE teams
			SET name = ?, year = ?, wins = ?, losses = ?, last_updated = ?
			WHERE team_id = ?
		`)
		_, err := q.ExecContext(ctx, query,
			existing.Name, existing.Year, existing.Wins, existing.Losses, existing.LastUpdated,
			existing.TeamCode,
		)
		if err != nil {
			return false, fmt.Errorf("updating team %s: %w", existing.TeamCode, err)
		}
		return false, nil
	}

	query := r.db.Rebind(`
		INSERT INTO teams (team_id, name, year, wins, losses, last_updated)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	_, err = q.ExecContext(ctx, query,
		incoming.TeamCode, incoming.Name, incoming.Year, incoming.Wins, incoming.Losses, incoming.LastUpdated,
	)
	if err != nil {
		return false, fmt.Errorf("inserting team %s: %w", incoming.TeamCode, err)
	}
	return true, nil
}

// mergeTeam copies every non-key attribute of src onto dst
func mergeTeam(dst, src *store.Team) {
	dst.Name = src.Name
	dst.Year = src.Year
	dst.Wins = src.Wins
	dst.Losses = src.Losses
	dst.LastUpdated = src.LastUpdated
}
