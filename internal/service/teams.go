package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/fortuna/courtside/internal/store"
	"github.com/fortuna/courtside/internal/store/repository"
)

// TeamService handles team-related business logic
type TeamService struct {
	teamRepo   *repository.TeamRepository
	playerRepo *repository.PlayerRepository
	statsRepo  *repository.StatsRepository
}

// NewTeamService creates a new team service
func NewTeamService(db *store.Database) *TeamService {
	return &TeamService{
		teamRepo:   repository.NewTeamRepository(db),
		playerRepo: repository.NewPlayerRepository(db),
		statsRepo:  repository.NewStatsRepository(db),
	}
}

// ListTeams returns every stored team
func (s *TeamService) ListTeams(ctx context.Context) ([]*store.Team, error) {
	teams, err := s.teamRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching teams: %w", err)
	}
	return teams, nil
}

// GetTeam retrieves a team by code
func (s *TeamService) GetTeam(ctx context.Context, teamCode string) (*store.Team, error) {
	team, err := s.teamRepo.GetByCode(ctx, teamCode)
	if err != nil {
		return nil, fmt.Errorf("fetching team: %w", err)
	}
	return team, nil
}

// GetRoster retrieves the team's players with parsed height and weight
func (s *TeamService) GetRoster(ctx context.Context, teamCode string) ([]store.RosterEntry, error) {
	if _, err := s.GetTeam(ctx, teamCode); err != nil {
		return nil, err
	}

	roster, err := s.playerRepo.Roster(ctx, teamCode)
	if err != nil {
		return nil, fmt.Errorf("fetching roster: %w", err)
	}
	return roster, nil
}

// GetOverview summarizes a team's record, roster make-up and top scorer
func (s *TeamService) GetOverview(ctx context.Context, teamCode string) (*TeamOverview, error) {
	team, err := s.GetTeam(ctx, teamCode)
	if err != nil {
		return nil, err
	}

	roster, err := s.playerRepo.Roster(ctx, teamCode)
	if err != nil {
		return nil, fmt.Errorf("fetching roster: %w", err)
	}

	lines, err := s.statsRepo.StatLines(ctx, team.Year)
	if err != nil {
		return nil, fmt.Errorf("fetching stat lines: %w", err)
	}

	overview := &TeamOverview{
		Team:        team,
		GamesPlayed: team.Wins + team.Losses,
		WinPct:      winPct(team.Wins, team.Losses),
		RosterSize:  len(roster),
		Positions:   positionCounts(roster),
	}

	var heights []int
	for _, entry := range roster {
		if entry.HeightInches != nil {
			heights = append(heights, *entry.HeightInches)
		}
	}
	if len(heights) > 0 {
		overview.AvgHeightInches = average(heights)
	}

	for i := range lines {
		if lines[i].TeamCode == team.TeamCode {
			overview.TopScorer = &lines[i]
			break
		}
	}

	return overview, nil
}

// TeamOverview contains derived team facts
type TeamOverview struct {
	Team            *store.Team     `json:"team"`
	GamesPlayed     int             `json:"games_played"`
	WinPct          float64         `json:"win_pct"`
	RosterSize      int             `json:"roster_size"`
	Positions       []PositionCount `json:"positions"`
	AvgHeightInches float64         `json:"avg_height_inches,omitempty"`
	TopScorer       *store.StatLine `json:"top_scorer,omitempty"`
}

// PositionCount is one bucket of the roster position distribution
type PositionCount struct {
	Position string `json:"position"`
	Players  int    `json:"players"`
}

func winPct(wins, losses int) float64 {
	return round3(safeDiv(float64(wins), float64(wins+losses)))
}

// positionCounts buckets players by listed position, largest bucket first.
// Players without a position are counted under "N/A".
func positionCounts(roster []store.RosterEntry) []PositionCount {
	counts := make(map[string]int)
	for _, entry := range roster {
		pos := "N/A"
		if entry.Position != nil && *entry.Position != "" {
			pos = *entry.Position
		}
		counts[pos]++
	}

	out := make([]PositionCount, 0, len(counts))
	for pos, n := range counts {
		out = append(out, PositionCount{Position: pos, Players: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Players != out[j].Players {
			return out[i].Players > out[j].Players
		}
		return out[i].Position < out[j].Position
	})
	return out
}

func average(values []int) float64 {
	var total int
	for _, v := range values {
		total += v
	}
	return math.Round(float64(total)/float64(len(values))*10) / 10
}

func safeDiv(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
