package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/fortuna/courtside/internal/service"
	"github.com/fortuna/courtside/internal/store"
)

func (a *app) reportCmd() *cobra.Command {
	var season int
	var teamCode string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the stored team, roster and stat lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			if season == 0 {
				season = a.cfg.Season
			}
			if teamCode == "" {
				teamCode = a.cfg.TeamCode
			}

			db, err := a.openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			return writeReport(cmd.Context(), os.Stdout, db, teamCode, season)
		},
	}
	cmd.Flags().IntVar(&season, "season", 0, "Season year (defaults to SEASON)")
	cmd.Flags().StringVar(&teamCode, "team", "", "Team code (defaults to TEAM_CODE)")
	return cmd
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(title)
	return t
}

// writeReport renders three tables. A missing team is reported inline so
// the roster and stats are still printed.
func writeReport(ctx context.Context, w io.Writer, db *store.Database, teamCode string, season int) error {
	teams := service.NewTeamService(db)
	stats := service.NewStatsService(db)

	t := newTable(w, "Team")
	t.AppendHeader(table.Row{"Team", "Name", "Year", "W", "L", "Last Updated"})
	if team, err := teams.GetTeam(ctx, teamCode); err == nil {
		t.AppendRow(table.Row{team.TeamCode, team.Name, team.Year, team.Wins, team.Losses, team.LastUpdated.Format("2006-01-02 15:04")})
	} else {
		t.AppendRow(table.Row{teamCode, "not stored", "", "", "", ""})
	}
	t.Render()

	roster, err := teams.GetRoster(ctx, teamCode)
	if err != nil {
		roster = nil
	}
	t = newTable(w, fmt.Sprintf("Roster (%d)", len(roster)))
	t.AppendHeader(table.Row{"No.", "Player", "Pos", "Ht", "In", "Wt", "Exp", "College"})
	for _, p := range roster {
		t.AppendRow(table.Row{str(p.Number), p.Name, str(p.Position), str(p.Height), num(p.HeightInches), str(p.Weight), str(p.Experience), str(p.College)})
	}
	t.Render()

	lines, err := stats.GetSeasonStats(ctx, season)
	if err != nil {
		return err
	}
	t = newTable(w, fmt.Sprintf("Per Game %d", season))
	t.AppendHeader(table.Row{"Player", "G", "GS", "MP", "FG%", "3P%", "2P%", "PTS", "TRB", "AST"})
	for _, l := range lines {
		t.AppendRow(table.Row{
			l.Name, num(l.GamesPlayed), num(l.GamesStarted),
			fmt.Sprintf("%.1f", l.MinutesPlayed),
			fmt.Sprintf("%.1f", l.FieldGoalPercentage),
			fmt.Sprintf("%.1f", l.ThreePointPercentage),
			fmt.Sprintf("%.1f", l.TwoPointPercentage),
			fmt.Sprintf("%.1f", l.PointsPerGame),
			fmt.Sprintf("%.1f", l.ReboundsPerGame),
			fmt.Sprintf("%.1f", l.AssistsPerGame),
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	t.Render()
	return nil
}

func str(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func num(n *int) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprint(*n)
}
