package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/courtside/internal/store"
)

// leaderColumns whitelists the stat columns a leaderboard may sort by
var leaderColumns = map[string]string{
	"points":         "ps.points_per_game",
	"rebounds":       "ps.rebounds_per_game",
	"assists":        "ps.assists_per_game",
	"minutes":        "ps.minutes_played",
	"fg_pct":         "ps.field_goal_percentage",
	"three_pct":      "ps.three_point_percentage",
	"two_pct":        "ps.two_point_percentage",
	"three_pointers": "ps.three_pointers",
	"games":          "ps.games_played",
}

const statLineSelect = `
	SELECT ps.player_id, COALESCE(p.name, ps.player_id), p.position, ps.team_id, ps.season,
		ps.games_played, ps.games_started, ps.minutes_played,
		ps.field_goals, ps.field_goal_attempts, ps.field_goal_percentage,
		ps.three_pointers, ps.three_point_attempts, ps.three_point_percentage,
		ps.two_pointers, ps.two_point_attempts, ps.two_point_percentage,
		ps.points_per_game, ps.rebounds_per_game, ps.assists_per_game, ps.last_updated
	FROM player_stats ps
	LEFT JOIN players p ON p.player_id = ps.player_id
`

// StatsRepository handles player stat line data access
type StatsRepository struct {
	db *store.Database
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *store.Database) *StatsRepository {
	return &StatsRepository{db: db}
}

// IsLeaderStat reports whether stat can be used with Leaders
func IsLeaderStat(stat string) bool {
	_, ok := leaderColumns[stat]
	return ok
}

// StatLines returns a season's stat rows joined with player names,
// best scorers first
func (r *StatsRepository) StatLines(ctx context.Context, season int) ([]store.StatLine, error) {
	query := r.db.Rebind(statLineSelect + `
		WHERE ps.season = ?
		ORDER BY ps.points_per_game DESC, ps.player_id
	`)

	rows, err := r.db.DB().QueryContext(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("querying stat lines: %w", err)
	}
	defer rows.Close()

	return scanStatLines(rows)
}

// Leaders returns the top limit stat lines for a season ordered by stat
func (r *StatsRepository) Leaders(ctx context.Context, season int, stat string, limit int) ([]store.StatLine, error) {
	column, ok := leaderColumns[stat]
	if !ok {
		return nil, fmt.Errorf("unknown leaderboard stat %q", stat)
	}
	if limit <= 0 {
		limit = 5
	}

	query := r.db.Rebind(statLineSelect + `
		WHERE ps.season = ?
		ORDER BY ` + column + ` DESC, ps.player_id
		LIMIT ?
	`)

	rows, err := r.db.DB().QueryContext(ctx, query, season, limit)
	if err != nil {
		return nil, fmt.Errorf("querying leaders: %w", err)
	}
	defer rows.Close()

	return scanStatLines(rows)
}

// GetByPlayer returns every stored stat row for one player
func (r *StatsRepository) GetByPlayer(ctx context.Context, playerID string) ([]store.StatLine, error) {
	query := r.db.Rebind(statLineSelect + `
		WHERE ps.player_id = ?
		ORDER BY ps.season DESC, ps.id
	`)

	rows, err := r.db.DB().QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("querying player stats: %w", err)
	}
	defer rows.Close()

	return scanStatLines(rows)
}

// CountBySeason returns how many stat rows exist for a season
func (r *StatsRepository) CountBySeason(ctx context.Context, season int) (int, error) {
	var n int
	err := r.db.DB().QueryRowContext(ctx, r.db.Rebind(`SELECT COUNT(*) FROM player_stats WHERE season = ?`), season).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting player stats: %w", err)
	}
	return n, nil
}

// deleteSeason removes every stat row for season and returns the count
func (r *StatsRepository) deleteSeason(ctx context.Context, q querier, season int) (int64, error) {
	res, err := q.ExecContext(ctx, r.db.Rebind(`DELETE FROM player_stats WHERE season = ?`), season)
	if err != nil {
		return 0, fmt.Errorf("deleting season %d stats: %w", season, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted season %d stats: %w", season, err)
	}
	return n, nil
}

// insert writes one fresh stat row
func (r *StatsRepository) insert(ctx context.Context, q querier, s *store.PlayerStats) error {
	query := r.db.Rebind(`
		INSERT INTO player_stats (
			player_id, team_id, season, games_played, games_started, minutes_played,
			field_goals, field_goal_attempts, field_goal_percentage,
			three_pointers, three_point_attempts, three_point_percentage,
			two_pointers, two_point_attempts, two_point_percentage,
			points_per_game, rebounds_per_game, assists_per_game, last_updated
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	var playerID any = s.PlayerID
	if s.PlayerID == "" {
		// NOT NULL on player_id rejects the row
		playerID = nil
	}

	_, err := q.ExecContext(ctx, query,
		playerID, s.TeamCode, s.Season, s.GamesPlayed, s.GamesStarted, s.MinutesPlayed,
		s.FieldGoals, s.FieldGoalAttempts, s.FieldGoalPercentage,
		s.ThreePointers, s.ThreePointAttempts, s.ThreePointPercentage,
		s.TwoPointers, s.TwoPointAttempts, s.TwoPointPercentage,
		s.PointsPerGame, s.ReboundsPerGame, s.AssistsPerGame, s.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("inserting stats for %s: %w", s.PlayerID, err)
	}
	return nil
}

func scanStatLines(rows *sql.Rows) ([]store.StatLine, error) {
	var lines []store.StatLine
	for rows.Next() {
		var (
			l            store.StatLine
			position     sql.NullString
			gamesPlayed  sql.NullInt32
			gamesStarted sql.NullInt32
		)
		err := rows.Scan(
			&l.PlayerID, &l.Name, &position, &l.TeamCode, &l.Season,
			&gamesPlayed, &gamesStarted, &l.MinutesPlayed,
			&l.FieldGoals, &l.FieldGoalAttempts, &l.FieldGoalPercentage,
			&l.ThreePointers, &l.ThreePointAttempts, &l.ThreePointPercentage,
			&l.TwoPointers, &l.TwoPointAttempts, &l.TwoPointPercentage,
			&l.PointsPerGame, &l.ReboundsPerGame, &l.AssistsPerGame, &l.LastUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning stat line: %w", err)
		}
		l.Position = store.NullStringPtr(position)
		l.GamesPlayed = store.NullInt32Ptr(gamesPlayed)
		l.GamesStarted = store.NullInt32Ptr(gamesStarted)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
