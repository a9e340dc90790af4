package bref

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadPage(t *testing.T) string {
	t.Helper()
	b, err := os.ReadFile("testdata/team_page.html")
	require.NoError(t, err)
	return string(b)
}

func TestExtractRecord(t *testing.T) {
	doc, err := ParseDocument(loadPage(t))
	require.NoError(t, err)

	wins, losses, err := ExtractRecord(doc)
	require.NoError(t, err)
	assert.Equal(t, 47, wins)
	assert.Equal(t, 35, losses)
}

func TestExtractRecordFirstMatchWins(t *testing.T) {
	doc, err := ParseDocument(`<div class="scoreboard"><p>Streak: none</p><p>12-3</p><p>40-42</p></div>`)
	require.NoError(t, err)

	wins, losses, err := ExtractRecord(doc)
	require.NoError(t, err)
	assert.Equal(t, 12, wins)
	assert.Equal(t, 3, losses)
}

func TestExtractRecordMissing(t *testing.T) {
	tests := map[string]string{
		"no scoreboard": `<div class="summary">47-35</div>`,
		"no pattern":    `<div class="scoreboard"><p>Record pending</p></div>`,
	}
	for name, markup := range tests {
		t.Run(name, func(t *testing.T) {
			doc, err := ParseDocument(markup)
			require.NoError(t, err)

			_, _, err = ExtractRecord(doc)
			assert.ErrorIs(t, err, ErrExtractionEmpty)
		})
	}
}

func TestFindTableInsideComment(t *testing.T) {
	doc, err := ParseDocument(loadPage(t))
	require.NoError(t, err)

	table, err := FindTable(doc, PerGameTableID)
	require.NoError(t, err)
	assert.Len(t, tableRows(table), 4)
}

func TestFindTableLegacyPerGameID(t *testing.T) {
	doc, err := ParseDocument(`<table id="per_game"><tbody><tr><td>x</td></tr></tbody></table>`)
	require.NoError(t, err)

	_, err = FindTable(doc, PerGameTableID)
	assert.NoError(t, err)
}

func TestFindTableMissing(t *testing.T) {
	doc, err := ParseDocument(`<html><body><table id="injuries"></table></body></html>`)
	require.NoError(t, err)

	_, err = FindTable(doc, RosterTableID)
	assert.ErrorIs(t, err, ErrExtractionEmpty)
}

func TestMapColumnsFallsBackToDataStat(t *testing.T) {
	doc, err := ParseDocument(loadPage(t))
	require.NoError(t, err)
	table, err := FindTable(doc, RosterTableID)
	require.NoError(t, err)

	cols := mapColumns(table)
	assert.Equal(t, 0, cols.index("no"))
	assert.Equal(t, 5, cols.index("birth date"))
	assert.Equal(t, 6, cols.index("birth", "@flag"))
	assert.Equal(t, -1, cols.index("salary"))
}

func TestMapColumnsWithoutThead(t *testing.T) {
	doc, err := ParseDocument(`
		<table id="per_game_stats">
			<tr><th>Rk</th><th>Player</th><th>PTS</th></tr>
			<tr><th>1</th><td>Anthony Davis</td><td>24.7</td></tr>
			<tr><th>2</th><td>LeBron James</td><td>25.7</td></tr>
		</table>`)
	require.NoError(t, err)
	table, err := FindTable(doc, PerGameTableID)
	require.NoError(t, err)

	cols := mapColumns(table)
	assert.Equal(t, 1, cols.index("player"))
	assert.Equal(t, 2, cols.index("pts"))

	rows := tableRows(table)
	require.Len(t, rows, 2, "header row is not a data row")
	assert.Equal(t, "1", cellText(rowCells(rows[0]), 0))
}

func TestMapColumnsWithoutHeader(t *testing.T) {
	doc, err := ParseDocument(`
		<table id="roster">
			<tr><th>23</th><td>LeBron James</td></tr>
		</table>`)
	require.NoError(t, err)
	table, err := FindTable(doc, RosterTableID)
	require.NoError(t, err)

	assert.Empty(t, mapColumns(table))
	assert.Len(t, tableRows(table), 1)
}
