package bref

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/courtside/internal/ingest/normalize"
	"github.com/fortuna/courtside/internal/store"
)

var snapshot = time.Date(2024, 4, 15, 3, 0, 0, 0, time.UTC)

func text(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func TestAssembleRosterMinimalDocument(t *testing.T) {
	doc, err := ParseDocument(`
		<table id="roster">
			<thead><tr><th>No.</th><th>Player</th><th>Pos</th></tr></thead>
			<tbody><tr>
				<th>23</th>
				<td><a href="https://www.basketball-reference.com/players/j/jamesle01.html">LeBron James</a></td>
				<td>F</td>
			</tr></tbody>
		</table>`)
	require.NoError(t, err)
	table, err := FindTable(doc, RosterTableID)
	require.NoError(t, err)

	players := AssembleRoster(table, "LAL", snapshot)
	require.Len(t, players, 1)

	want := &store.Player{
		PlayerID:  "jamesle01",
		TeamCode:  "LAL",
		Name:      "LeBron James",
		Number:    text("23"),
		Position:  text("F"),
		ScrapedAt: snapshot,
	}
	if diff := cmp.Diff(want, players[0]); diff != "" {
		t.Errorf("assembled player mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleRosterHeaderRowWithoutThead(t *testing.T) {
	doc, err := ParseDocument(`
		<table id="roster">
			<tr><th>No.</th><th>Player</th><th>Pos</th></tr>
			<tr>
				<th>23</th>
				<td><a href="/players/j/jamesle01.html">LeBron James</a></td>
				<td>F</td>
			</tr>
		</table>`)
	require.NoError(t, err)
	table, err := FindTable(doc, RosterTableID)
	require.NoError(t, err)

	players := AssembleRoster(table, "LAL", snapshot)
	require.Len(t, players, 1)
	assert.Equal(t, "jamesle01", players[0].PlayerID)
	assert.Equal(t, "LeBron James", players[0].Name)
	assert.Equal(t, text("23"), players[0].Number)
	assert.Equal(t, text("F"), players[0].Position)
}

func TestAssembleRosterFullPage(t *testing.T) {
	doc, err := ParseDocument(loadPage(t))
	require.NoError(t, err)
	table, err := FindTable(doc, RosterTableID)
	require.NoError(t, err)

	players := AssembleRoster(table, "LAL", snapshot)
	require.Len(t, players, 2, "row without a profile link is skipped")

	davis := players[1]
	assert.Equal(t, "davisan02", davis.PlayerID)
	assert.Equal(t, text("6-10"), davis.Height)
	assert.Equal(t, text("253"), davis.Weight)
	assert.Equal(t, text("March 11, 1993"), davis.BirthDate)
	assert.Equal(t, text("us"), davis.Nationality)
	assert.Equal(t, text("11"), davis.Experience)
	assert.Equal(t, text("Kentucky"), davis.College)
	assert.False(t, players[0].College.Valid)
}

func TestAssembleStatsFullPage(t *testing.T) {
	doc, err := ParseDocument(loadPage(t))
	require.NoError(t, err)
	table, err := FindTable(doc, PerGameTableID)
	require.NoError(t, err)

	stats, errs := AssembleStats(table, "LAL", 2024, snapshot)
	require.Len(t, stats, 2)
	require.Len(t, errs, 1)

	var nerr *normalize.NormalizationError
	require.True(t, errors.As(errs[0], &nerr))
	assert.Equal(t, "games_played", nerr.Field)
	assert.Contains(t, errs[0].Error(), "brokenro01")

	lebron := stats[0]
	assert.Equal(t, "jamesle01", lebron.PlayerID)
	assert.Equal(t, "LeBron James", lebron.PlayerName)
	assert.Equal(t, 2024, lebron.Season)
	assert.Equal(t, "LAL", lebron.TeamCode)
	assert.Equal(t, sql.NullInt32{Int32: 71, Valid: true}, lebron.GamesPlayed)
	assert.InDelta(t, 54.0, lebron.FieldGoalPercentage, 1e-9)
	assert.InDelta(t, 41.0, lebron.ThreePointPercentage, 1e-9)
	assert.InDelta(t, 25.7, lebron.PointsPerGame, 1e-9)
	assert.InDelta(t, 7.3, lebron.ReboundsPerGame, 1e-9)
	assert.InDelta(t, 8.3, lebron.AssistsPerGame, 1e-9)
	assert.Equal(t, snapshot, lebron.LastUpdated)

	christie := stats[1]
	assert.False(t, christie.GamesStarted.Valid, "blank integer stays unset")
	assert.Equal(t, 0.0, christie.ThreePointPercentage, "blank percentage becomes zero")
}

func TestAssembleStatsWithoutPlayerColumn(t *testing.T) {
	doc, err := ParseDocument(`<table id="per_game_stats"><thead><tr><th>G</th></tr></thead><tbody><tr><td>1</td></tr></tbody></table>`)
	require.NoError(t, err)
	table, err := FindTable(doc, PerGameTableID)
	require.NoError(t, err)

	stats, errs := AssembleStats(table, "LAL", 2024, snapshot)
	assert.Empty(t, stats)
	assert.Empty(t, errs)
}
