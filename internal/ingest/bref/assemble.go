package bref

import (
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/fortuna/courtside/internal/ingest/normalize"
	"github.com/fortuna/courtside/internal/store"
)

// rosterColumns are the header labels read from the roster table.
type rosterColumns struct {
	number, player, position, height, weight    int
	birthDate, nationality, experience, college int
}

func mapRosterColumns(table *goquery.Selection) rosterColumns {
	c := mapColumns(table)
	return rosterColumns{
		number:      c.index("no", "#", "@number"),
		player:      c.index("player", "@player"),
		position:    c.index("pos", "@pos"),
		height:      c.index("ht", "@height"),
		weight:      c.index("wt", "@weight"),
		birthDate:   c.index("birth date", "@birth_date"),
		nationality: c.index("birth", "@birth_country", "@flag"),
		experience:  c.index("exp", "@years_experience"),
		college:     c.index("college", "@college"),
	}
}

// AssembleRoster turns roster rows into players. Rows whose player cell has
// no profile link are skipped.
func AssembleRoster(table *goquery.Selection, teamCode string, now time.Time) []*store.Player {
	cols := mapRosterColumns(table)
	if cols.player < 0 {
		return nil
	}

	var players []*store.Player
	for _, row := range tableRows(table) {
		cells := rowCells(row)
		if cols.player >= len(cells) {
			continue
		}

		markup, err := goquery.OuterHtml(cells[cols.player])
		if err != nil {
			continue
		}
		id, ok := PlayerIDFromCell(markup)
		if !ok {
			continue
		}
		name := cellText(cells, cols.player)
		if name == "" {
			continue
		}

		players = append(players, &store.Player{
			PlayerID:    id,
			TeamCode:    teamCode,
			Name:        name,
			Number:      normalize.ToOptionalText(cellText(cells, cols.number)),
			Position:    normalize.ToOptionalText(cellText(cells, cols.position)),
			Height:      normalize.ToOptionalText(cellText(cells, cols.height)),
			Weight:      normalize.ToOptionalText(cellText(cells, cols.weight)),
			BirthDate:   normalize.ToOptionalText(cellText(cells, cols.birthDate)),
			Nationality: normalize.ToOptionalText(cellText(cells, cols.nationality)),
			Experience:  normalize.ToOptionalText(cellText(cells, cols.experience)),
			College:     normalize.ToOptionalText(cellText(cells, cols.college)),
			ScrapedAt:   now,
		})
	}
	return players
}

// statColumns are the header labels read from the per-game table.
type statColumns struct {
	player, games, started, minutes                 int
	fg, fga, fgPct, threes, threeAtt, threePct      int
	twos, twoAtt, twoPct, points, rebounds, assists int
}

func mapStatColumns(table *goquery.Selection) statColumns {
	c := mapColumns(table)
	return statColumns{
		player:   c.index("player", "@player", "@name_display"),
		games:    c.index("g", "@g", "@games"),
		started:  c.index("gs", "@gs", "@games_started"),
		minutes:  c.index("mp", "@mp_per_g"),
		fg:       c.index("fg", "@fg_per_g"),
		fga:      c.index("fga", "@fga_per_g"),
		fgPct:    c.index("fg%", "@fg_pct"),
		threes:   c.index("3p", "@fg3_per_g"),
		threeAtt: c.index("3pa", "@fg3a_per_g"),
		threePct: c.index("3p%", "@fg3_pct"),
		twos:     c.index("2p", "@fg2_per_g"),
		twoAtt:   c.index("2pa", "@fg2a_per_g"),
		twoPct:   c.index("2p%", "@fg2_pct"),
		points:   c.index("pts", "@pts_per_g"),
		rebounds: c.index("trb", "@trb_per_g"),
		assists:  c.index("ast", "@ast_per_g"),
	}
}

// AssembleStats turns per-game rows into stat lines for season. Rows with
// no player name or no profile link are skipped silently. Rows with a cell
// that does not normalize are skipped and reported in the returned errors.
func AssembleStats(table *goquery.Selection, teamCode string, season int, now time.Time) ([]*store.PlayerStats, []error) {
	cols := mapStatColumns(table)
	if cols.player < 0 {
		return nil, nil
	}

	var (
		stats []*store.PlayerStats
		errs  []error
	)
	for _, row := range tableRows(table) {
		cells := rowCells(row)
		name := cellText(cells, cols.player)
		if name == "" {
			continue
		}

		markup, err := goquery.OuterHtml(cells[cols.player])
		if err != nil {
			continue
		}
		id, ok := PlayerIDFromCell(markup)
		if !ok {
			continue
		}

		line, err := buildStatLine(cells, cols)
		if err != nil {
			errs = append(errs, fmt.Errorf("player %s: %w", id, err))
			continue
		}
		line.PlayerID = id
		line.PlayerName = name
		line.TeamCode = teamCode
		line.Season = season
		line.LastUpdated = now
		stats = append(stats, line)
	}
	return stats, errs
}

// statField pairs a destination with the cell it is parsed from.
type statField struct {
	name  string
	col   int
	dst   *float64
	parse func(string) (float64, error)
}

func buildStatLine(cells []*goquery.Selection, cols statColumns) (*store.PlayerStats, error) {
	s := &store.PlayerStats{}

	var err error
	if s.GamesPlayed, err = normalize.ToOptionalInt(cellText(cells, cols.games)); err != nil {
		return nil, normalize.WithField(err, "games_played")
	}
	if s.GamesStarted, err = normalize.ToOptionalInt(cellText(cells, cols.started)); err != nil {
		return nil, normalize.WithField(err, "games_started")
	}

	fields := []statField{
		{"minutes_played", cols.minutes, &s.MinutesPlayed, normalize.ToPercentOrZero},
		{"field_goals", cols.fg, &s.FieldGoals, normalize.ToPercentOrZero},
		{"field_goal_attempts", cols.fga, &s.FieldGoalAttempts, normalize.ToPercentOrZero},
		{"field_goal_percentage", cols.fgPct, &s.FieldGoalPercentage, normalize.ToPercentage},
		{"three_pointers", cols.threes, &s.ThreePointers, normalize.ToPercentOrZero},
		{"three_point_attempts", cols.threeAtt, &s.ThreePointAttempts, normalize.ToPercentOrZero},
		{"three_point_percentage", cols.threePct, &s.ThreePointPercentage, normalize.ToPercentage},
		{"two_pointers", cols.twos, &s.TwoPointers, normalize.ToPercentOrZero},
		{"two_point_attempts", cols.twoAtt, &s.TwoPointAttempts, normalize.ToPercentOrZero},
		{"two_point_percentage", cols.twoPct, &s.TwoPointPercentage, normalize.ToPercentage},
		{"points_per_game", cols.points, &s.PointsPerGame, normalize.ToPercentOrZero},
		{"rebounds_per_game", cols.rebounds, &s.ReboundsPerGame, normalize.ToPercentOrZero},
		{"assists_per_game", cols.assists, &s.AssistsPerGame, normalize.ToPercentOrZero},
	}
	for _, f := range fields {
		v, err := f.parse(cellText(cells, f.col))
		if err != nil {
			return nil, normalize.WithField(err, f.name)
		}
		*f.dst = v
	}
	return s, nil
}
