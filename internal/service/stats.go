package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fortuna/courtside/internal/store"
	"github.com/fortuna/courtside/internal/store/repository"
)

// ErrUnknownStat is returned for a leaderboard stat that is not supported
var ErrUnknownStat = errors.New("unknown leaderboard stat")

// MaxLeaders caps the leaderboard size
const MaxLeaders = 25

// StatsService handles statistics-related business logic
type StatsService struct {
	statsRepo *repository.StatsRepository
}

// NewStatsService creates a new stats service
func NewStatsService(db *store.Database) *StatsService {
	return &StatsService{
		statsRepo: repository.NewStatsRepository(db),
	}
}

// GetSeasonStats returns a season's stat lines ordered by points per game
func (s *StatsService) GetSeasonStats(ctx context.Context, season int) ([]store.StatLine, error) {
	lines, err := s.statsRepo.StatLines(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("fetching season stats: %w", err)
	}
	return lines, nil
}

// GetLeaders returns the season leaders for one stat
func (s *StatsService) GetLeaders(ctx context.Context, season int, stat string, limit int) ([]store.StatLine, error) {
	if !repository.IsLeaderStat(stat) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStat, stat)
	}
	if limit <= 0 {
		limit = 5
	}
	if limit > MaxLeaders {
		limit = MaxLeaders
	}

	leaders, err := s.statsRepo.Leaders(ctx, season, stat, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching leaders: %w", err)
	}
	return leaders, nil
}
