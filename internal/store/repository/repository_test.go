package repository

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/courtside/internal/store"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func openTestDB(t *testing.T) *store.Database {
	t.Helper()
	db, err := store.NewDatabase(filepath.Join(t.TempDir(), "repo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations(context.Background(), testLogger))
	return db
}

func text(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func games(n int32) sql.NullInt32 {
	return sql.NullInt32{Int32: n, Valid: true}
}

func countRows(t *testing.T, db *store.Database, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.DB().QueryRow(db.Rebind(query), args...).Scan(&n))
	return n
}

func statLine(playerID string, season int, ppg float64) *store.PlayerStats {
	return &store.PlayerStats{
		PlayerID:            playerID,
		TeamCode:            "LAL",
		Season:              season,
		GamesPlayed:         games(71),
		MinutesPlayed:       35.3,
		FieldGoalPercentage: 54.0,
		PointsPerGame:       ppg,
		LastUpdated:         time.Now().UTC(),
	}
}

func TestUpsertTeamTwiceKeepsOneRowWithLatestValues(t *testing.T) {
	db := openTestDB(t)
	w := NewWriter(db, testLogger)
	ctx := context.Background()

	first := &store.Team{TeamCode: "LAL", Name: "Los Angeles Lakers", Year: 2024, Wins: 17, Losses: 15, LastUpdated: time.Now().UTC()}
	require.NoError(t, w.UpsertTeam(ctx, first))

	second := &store.Team{TeamCode: "LAL", Name: "Los Angeles Lakers", Year: 2024, Wins: 47, Losses: 35, LastUpdated: time.Now().UTC()}
	require.NoError(t, w.UpsertTeam(ctx, second))

	assert.Equal(t, 1, countRows(t, db, "SELECT COUNT(*) FROM teams WHERE team_id = ?", "LAL"))

	got, err := NewTeamRepository(db).GetByCode(ctx, "LAL")
	require.NoError(t, err)
	assert.Equal(t, 47, got.Wins)
	assert.Equal(t, 35, got.Losses)
}

func TestGetByCodeMissingTeam(t *testing.T) {
	db := openTestDB(t)

	_, err := NewTeamRepository(db).GetByCode(context.Background(), "BOS")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertPlayersOverlapNeverDuplicates(t *testing.T) {
	db := openTestDB(t)
	w := NewWriter(db, testLogger)
	ctx := context.Background()

	require.NoError(t, w.UpsertPlayers(ctx, []*store.Player{
		{PlayerID: "jamesle01", TeamCode: "LAL", Name: "LeBron James", Number: text("23"), Position: text("F"), Height: text("6-9")},
		{PlayerID: "davisan02", TeamCode: "LAL", Name: "Anthony Davis", Number: text("3"), Position: text("F-C"), Height: text("6-10")},
	}))

	require.NoError(t, w.UpsertPlayers(ctx, []*store.Player{
		{PlayerID: "jamesle01", TeamCode: "LAL", Name: "LeBron James", Number: text("6"), Position: text("F"), Height: text("6-9")},
		{PlayerID: "reaveau01", TeamCode: "LAL", Name: "Austin Reaves", Number: text("15"), Position: text("G"), Height: text("6-5")},
	}))

	assert.Equal(t, 1, countRows(t, db, "SELECT COUNT(*) FROM players WHERE player_id = ?", "jamesle01"))
	assert.Equal(t, 3, countRows(t, db, "SELECT COUNT(*) FROM players"))

	lebron, err := NewPlayerRepository(db).GetByID(ctx, "jamesle01")
	require.NoError(t, err)
	assert.Equal(t, "6", lebron.Number.String)
}

func TestUpsertPlayersRollsBackWholeBatch(t *testing.T) {
	db := openTestDB(t)
	w := NewWriter(db, testLogger)

	err := w.UpsertPlayers(context.Background(), []*store.Player{
		{PlayerID: "jamesle01", TeamCode: "LAL", Name: "LeBron James"},
		{PlayerID: "", TeamCode: "LAL", Name: "Nobody"},
	})

	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "upsert players", perr.Op)
	assert.Zero(t, countRows(t, db, "SELECT COUNT(*) FROM players"))
}

func TestReplacePlayerStatsReplacesSeason(t *testing.T) {
	db := openTestDB(t)
	w := NewWriter(db, testLogger)
	ctx := context.Background()

	require.NoError(t, w.ReplacePlayerStats(ctx, []*store.PlayerStats{
		statLine("oldguy01", 2024, 10.1),
		statLine("jamesle01", 2024, 25.7),
		statLine("davisan02", 2024, 24.7),
	}, 2024))
	require.NoError(t, w.ReplacePlayerStats(ctx, []*store.PlayerStats{
		statLine("jamesle01", 2023, 28.9),
	}, 2023))

	fresh := []*store.PlayerStats{
		statLine("jamesle01", 2024, 26.0),
		statLine("reaveau01", 2024, 15.9),
	}
	require.NoError(t, w.ReplacePlayerStats(ctx, fresh, 2024))

	n, err := NewStatsRepository(db).CountBySeason(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, len(fresh), n)
	assert.Zero(t, countRows(t, db, "SELECT COUNT(*) FROM player_stats WHERE season = ? AND player_id = ?", 2024, "oldguy01"))
	assert.Zero(t, countRows(t, db, "SELECT COUNT(*) FROM player_stats WHERE season = ? AND points_per_game = ?", 2024, 25.7))

	// other seasons are not touched
	assert.Equal(t, 1, countRows(t, db, "SELECT COUNT(*) FROM player_stats WHERE season = ?", 2023))
}

func TestReplacePlayerStatsFailureKeepsPreviousRows(t *testing.T) {
	db := openTestDB(t)
	w := NewWriter(db, testLogger)
	ctx := context.Background()

	require.NoError(t, w.ReplacePlayerStats(ctx, []*store.PlayerStats{
		statLine("jamesle01", 2024, 25.7),
		statLine("davisan02", 2024, 24.7),
	}, 2024))

	err := w.ReplacePlayerStats(ctx, []*store.PlayerStats{
		statLine("reaveau01", 2024, 15.9),
		statLine("", 2024, 1.0),
	}, 2024)

	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, countRows(t, db, "SELECT COUNT(*) FROM player_stats WHERE season = ?", 2024))
	assert.Equal(t, 1, countRows(t, db, "SELECT COUNT(*) FROM player_stats WHERE player_id = ?", "jamesle01"))
	assert.Zero(t, countRows(t, db, "SELECT COUNT(*) FROM player_stats WHERE player_id = ?", "reaveau01"))
}

func TestReplacePlayerStatsRejectsForeignSeason(t *testing.T) {
	db := openTestDB(t)
	w := NewWriter(db, testLogger)

	err := w.ReplacePlayerStats(context.Background(), []*store.PlayerStats{
		statLine("jamesle01", 2023, 25.7),
	}, 2024)
	require.Error(t, err)
	assert.Zero(t, countRows(t, db, "SELECT COUNT(*) FROM player_stats"))
}

func TestRosterDerivesHeightInches(t *testing.T) {
	db := openTestDB(t)
	w := NewWriter(db, testLogger)
	ctx := context.Background()

	require.NoError(t, w.UpsertPlayers(ctx, []*store.Player{
		{PlayerID: "jamesle01", TeamCode: "LAL", Name: "LeBron James", Height: text("6-9"), Weight: text("250")},
		{PlayerID: "hachiru01", TeamCode: "LAL", Name: "Rui Hachimura", Height: text("6'8\"")},
		{PlayerID: "elsewhere", TeamCode: "BOS", Name: "Not A Laker", Height: text("6-0")},
	}))

	roster, err := NewPlayerRepository(db).Roster(ctx, "LAL")
	require.NoError(t, err)
	require.Len(t, roster, 2)

	byID := map[string]store.RosterEntry{}
	for _, e := range roster {
		byID[e.PlayerID] = e
	}
	require.NotNil(t, byID["jamesle01"].HeightInches)
	assert.Equal(t, 81, *byID["jamesle01"].HeightInches)
	require.NotNil(t, byID["jamesle01"].WeightLbs)
	assert.Equal(t, 250, *byID["jamesle01"].WeightLbs)
	assert.Nil(t, byID["hachiru01"].HeightInches)
	assert.Nil(t, byID["hachiru01"].Number)
}

func TestStatLinesJoinPlayersAndOrderByScoring(t *testing.T) {
	db := openTestDB(t)
	w := NewWriter(db, testLogger)
	ctx := context.Background()

	require.NoError(t, w.UpsertPlayers(ctx, []*store.Player{
		{PlayerID: "jamesle01", TeamCode: "LAL", Name: "LeBron James", Position: text("F")},
		{PlayerID: "reaveau01", TeamCode: "LAL", Name: "Austin Reaves", Position: text("G")},
	}))
	noGames := statLine("reaveau01", 2024, 15.9)
	noGames.GamesPlayed = sql.NullInt32{}
	require.NoError(t, w.ReplacePlayerStats(ctx, []*store.PlayerStats{
		noGames,
		statLine("jamesle01", 2024, 25.7),
		statLine("orphan01", 2024, 2.0),
	}, 2024))

	repo := NewStatsRepository(db)
	lines, err := repo.StatLines(ctx, 2024)
	require.NoError(t, err)

	var names []string
	for _, l := range lines {
		names = append(names, l.Name)
	}
	if diff := cmp.Diff([]string{"LeBron James", "Austin Reaves", "orphan01"}, names); diff != "" {
		t.Errorf("stat line order mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, lines[1].GamesPlayed)
	require.NotNil(t, lines[0].GamesPlayed)
	assert.Equal(t, 71, *lines[0].GamesPlayed)
	assert.InDelta(t, 54.0, lines[0].FieldGoalPercentage, 1e-9)

	leaders, err := repo.Leaders(ctx, 2024, "points", 1)
	require.NoError(t, err)
	require.Len(t, leaders, 1)
	assert.Equal(t, "jamesle01", leaders[0].PlayerID)

	_, err = repo.Leaders(ctx, 2024, "blocks; DROP TABLE players", 1)
	assert.Error(t, err)
}

func TestMergePlayerCopiesEveryField(t *testing.T) {
	dst := &store.Player{PlayerID: "jamesle01", TeamCode: "CLE", Name: "L. James", Number: text("23"), College: text("St. Vincent-St. Mary")}
	src := &store.Player{
		PlayerID:    "ignored",
		TeamCode:    "LAL",
		Name:        "LeBron James",
		Number:      text("6"),
		Position:    text("F"),
		Height:      text("6-9"),
		Weight:      text("250"),
		BirthDate:   text("December 30, 1984"),
		Nationality: text("us"),
		Experience:  text("20"),
	}

	mergePlayer(dst, src)

	want := *src
	want.PlayerID = "jamesle01"
	if diff := cmp.Diff(want, *dst); diff != "" {
		t.Errorf("merged player mismatch (-want +got):\n%s", diff)
	}
}

type countlessResult struct{}

func (countlessResult) LastInsertId() (int64, error) { return 0, errors.New("unsupported") }
func (countlessResult) RowsAffected() (int64, error) { return 0, errors.New("rows affected unavailable") }

// countlessQuerier executes nothing and reports no row count
type countlessQuerier struct {
	*sql.DB
}

func (countlessQuerier) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return countlessResult{}, nil
}

func TestDeleteSeasonReportsMissingRowCount(t *testing.T) {
	db := openTestDB(t)
	stats := NewStatsRepository(db)

	n, err := stats.deleteSeason(context.Background(), countlessQuerier{db.DB()}, 2024)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rows affected unavailable")
	assert.Zero(t, n)
}
