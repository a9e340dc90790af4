package store

import (
	"database/sql"
	"time"
)

// Team is one franchise's season record, keyed by its short team code
type Team struct {
	TeamCode    string    `json:"team_id" db:"team_id"`
	Name        string    `json:"name" db:"name"`
	Year        int       `json:"year" db:"year"`
	Wins        int       `json:"wins" db:"wins"`
	Losses      int       `json:"losses" db:"losses"`
	LastUpdated time.Time `json:"last_updated" db:"last_updated"`
}

// Player is a rostered player, keyed by the slug from their profile link
type Player struct {
	PlayerID    string         `json:"player_id" db:"player_id"`
	TeamCode    string         `json:"team_id" db:"team_id"`
	Name        string         `json:"name" db:"name"`
	Number      sql.NullString `json:"number,omitempty" db:"number"`
	Position    sql.NullString `json:"position,omitempty" db:"position"`
	Height      sql.NullString `json:"height,omitempty" db:"height"`
	Weight      sql.NullString `json:"weight,omitempty" db:"weight"`
	BirthDate   sql.NullString `json:"birth_date,omitempty" db:"birth_date"`
	Nationality sql.NullString `json:"nationality,omitempty" db:"nationality"`
	Experience  sql.NullString `json:"experience,omitempty" db:"experience"`
	College     sql.NullString `json:"college,omitempty" db:"college"`

	// Not in database - assembly snapshot time
	ScrapedAt time.Time `json:"-" db:"-"`
}

// PlayerStats is one per-game stat line for a player in a season.
// Percentages are on the 0-100 scale.
type PlayerStats struct {
	ID                   int64         `json:"id" db:"id"`
	PlayerID             string        `json:"player_id" db:"player_id"`
	TeamCode             string        `json:"team_id" db:"team_id"`
	Season               int           `json:"season" db:"season"`
	GamesPlayed          sql.NullInt32 `json:"games_played,omitempty" db:"games_played"`
	GamesStarted         sql.NullInt32 `json:"games_started,omitempty" db:"games_started"`
	MinutesPlayed        float64       `json:"minutes_played" db:"minutes_played"`
	FieldGoals           float64       `json:"field_goals" db:"field_goals"`
	FieldGoalAttempts    float64       `json:"field_goal_attempts" db:"field_goal_attempts"`
	FieldGoalPercentage  float64       `json:"field_goal_percentage" db:"field_goal_percentage"`
	ThreePointers        float64       `json:"three_pointers" db:"three_pointers"`
	ThreePointAttempts   float64       `json:"three_point_attempts" db:"three_point_attempts"`
	ThreePointPercentage float64       `json:"three_point_percentage" db:"three_point_percentage"`
	TwoPointers          float64       `json:"two_pointers" db:"two_pointers"`
	TwoPointAttempts     float64       `json:"two_point_attempts" db:"two_point_attempts"`
	TwoPointPercentage   float64       `json:"two_point_percentage" db:"two_point_percentage"`
	PointsPerGame        float64       `json:"points_per_game" db:"points_per_game"`
	ReboundsPerGame      float64       `json:"rebounds_per_game" db:"rebounds_per_game"`
	AssistsPerGame       float64       `json:"assists_per_game" db:"assists_per_game"`
	LastUpdated          time.Time     `json:"last_updated" db:"last_updated"`

	// Not in database - display name carried from the stats row
	PlayerName string `json:"-" db:"-"`
}

// RosterEntry is a player row with derived numeric measurements
type RosterEntry struct {
	PlayerID     string  `json:"player_id"`
	TeamCode     string  `json:"team_id"`
	Name         string  `json:"name"`
	Number       *string `json:"number"`
	Position     *string `json:"position"`
	Height       *string `json:"height"`
	HeightInches *int    `json:"height_inches"`
	Weight       *string `json:"weight"`
	WeightLbs    *int    `json:"weight_lbs"`
	BirthDate    *string `json:"birth_date"`
	Nationality  *string `json:"nationality"`
	Experience   *string `json:"experience"`
	College      *string `json:"college"`
}

// StatLine is a player_stats row joined with its player
type StatLine struct {
	PlayerID             string    `json:"player_id"`
	Name                 string    `json:"name"`
	Position             *string   `json:"position"`
	TeamCode             string    `json:"team_id"`
	Season               int       `json:"season"`
	GamesPlayed          *int      `json:"games_played"`
	GamesStarted         *int      `json:"games_started"`
	MinutesPlayed        float64   `json:"minutes_played"`
	FieldGoals           float64   `json:"field_goals"`
	FieldGoalAttempts    float64   `json:"field_goal_attempts"`
	FieldGoalPercentage  float64   `json:"field_goal_percentage"`
	ThreePointers        float64   `json:"three_pointers"`
	ThreePointAttempts   float64   `json:"three_point_attempts"`
	ThreePointPercentage float64   `json:"three_point_percentage"`
	TwoPointers          float64   `json:"two_pointers"`
	TwoPointAttempts     float64   `json:"two_point_attempts"`
	TwoPointPercentage   float64   `json:"two_point_percentage"`
	PointsPerGame        float64   `json:"points_per_game"`
	ReboundsPerGame      float64   `json:"rebounds_per_game"`
	AssistsPerGame       float64   `json:"assists_per_game"`
	LastUpdated          time.Time `json:"last_updated"`
}

// NullStringPtr exposes a nullable column as an optional JSON value
func NullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// NullInt32Ptr exposes a nullable column as an optional JSON value
func NullInt32Ptr(ni sql.NullInt32) *int {
	if !ni.Valid {
		return nil
	}
	n := int(ni.Int32)
	return &n
}
