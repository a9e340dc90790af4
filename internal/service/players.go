package service

import (
	"context"
	"fmt"

	"github.com/fortuna/courtside/internal/store"
	"github.com/fortuna/courtside/internal/store/repository"
)

// PlayerService handles player-related business logic
type PlayerService struct {
	playerRepo *repository.PlayerRepository
	statsRepo  *repository.StatsRepository
	teamRepo   *repository.TeamRepository
}

// NewPlayerService creates a new player service
func NewPlayerService(db *store.Database) *PlayerService {
	return &PlayerService{
		playerRepo: repository.NewPlayerRepository(db),
		statsRepo:  repository.NewStatsRepository(db),
		teamRepo:   repository.NewTeamRepository(db),
	}
}

// GetPlayer retrieves a player by ID with team details and stored seasons
func (s *PlayerService) GetPlayer(ctx context.Context, playerID string) (*PlayerProfile, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("fetching player: %w", err)
	}

	// a player can outlive its team row only if teams were edited by hand
	team, _ := s.teamRepo.GetByCode(ctx, player.TeamCode)

	seasons, err := s.statsRepo.GetByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("fetching player stats: %w", err)
	}

	return &PlayerProfile{
		Player:  repository.NewRosterEntry(player),
		Team:    team,
		Seasons: seasons,
	}, nil
}

// PlayerProfile contains player details with team information
type PlayerProfile struct {
	Player  store.RosterEntry `json:"player"`
	Team    *store.Team       `json:"team,omitempty"`
	Seasons []store.StatLine  `json:"seasons"`
}
