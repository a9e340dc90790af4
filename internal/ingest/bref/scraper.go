package bref

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/fortuna/courtside/internal/store"
)

// Target names the team page and the defaults used when it cannot be read.
type Target struct {
	PageURL        string
	TeamCode       string
	TeamName       string
	Season         int
	FallbackWins   int
	FallbackLosses int
}

// Scraper extracts team, roster and stats records from the team page.
// Each extraction fetches on its own and never fails: a missing page or
// element yields the fallback record or an empty list.
type Scraper struct {
	fetcher Fetcher
	target  Target
	logger  *slog.Logger
	now     func() time.Time
}

// NewScraper creates a scraper for target.
func NewScraper(fetcher Fetcher, target Target, logger *slog.Logger) *Scraper {
	return &Scraper{
		fetcher: fetcher,
		target:  target,
		logger:  logger.With("component", "scraper", "team", target.TeamCode, "season", target.Season),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// GetTeamInfo returns the team with its scraped record. When the record
// cannot be read it returns the fallback record and reports true.
func (s *Scraper) GetTeamInfo(ctx context.Context) (*store.Team, bool) {
	team := &store.Team{
		TeamCode:    s.target.TeamCode,
		Name:        s.target.TeamName,
		Year:        s.target.Season,
		LastUpdated: s.now(),
	}

	doc, err := s.document(ctx)
	if err == nil {
		team.Wins, team.Losses, err = ExtractRecord(doc)
	}
	if err != nil {
		team.Wins, team.Losses = s.target.FallbackWins, s.target.FallbackLosses
		s.logger.Warn("using fallback team record",
			"wins", team.Wins,
			"losses", team.Losses,
			"error", err,
		)
		return team, true
	}

	s.logger.Info("scraped team info", "wins", team.Wins, "losses", team.Losses)
	return team, false
}

// GetRoster returns the players on the roster table.
func (s *Scraper) GetRoster(ctx context.Context) []*store.Player {
	doc, err := s.document(ctx)
	if err != nil {
		s.logger.Error("roster fetch failed", "error", err)
		return nil
	}

	table, err := FindTable(doc, RosterTableID)
	if err != nil {
		s.logger.Error("roster table missing", "error", err)
		return nil
	}

	players := AssembleRoster(table, s.target.TeamCode, s.now())
	s.logger.Info("scraped roster", "players", len(players))
	return players
}

// GetPlayerStats returns per-game stat lines for the target season, plus
// the normalization errors of rows that were dropped.
func (s *Scraper) GetPlayerStats(ctx context.Context) ([]*store.PlayerStats, []error) {
	doc, err := s.document(ctx)
	if err != nil {
		s.logger.Error("stats fetch failed", "error", err)
		return nil, nil
	}

	table, err := FindTable(doc, PerGameTableID)
	if err != nil {
		s.logger.Error("stats table missing", "error", err)
		return nil, nil
	}

	stats, errs := AssembleStats(table, s.target.TeamCode, s.target.Season, s.now())
	for _, e := range errs {
		s.logger.Warn("skipped stats row", "error", e)
	}
	s.logger.Info("scraped player stats", "players", len(stats), "skipped", len(errs))
	return stats, errs
}

func (s *Scraper) document(ctx context.Context) (*goquery.Document, error) {
	markup, err := s.fetcher.Fetch(ctx, s.target.PageURL)
	if err != nil {
		return nil, err
	}
	return ParseDocument(markup)
}

// runFetcher remembers successful pages for the lifetime of one run so the
// three extractions share a single download. Failures are not remembered.
type runFetcher struct {
	next  Fetcher
	mu    sync.Mutex
	pages map[string]string
}

// PerRun wraps next so each page is downloaded at most once.
func PerRun(next Fetcher) Fetcher {
	return &runFetcher{next: next, pages: map[string]string{}}
}

func (f *runFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if body, ok := f.pages[url]; ok {
		return body, nil
	}
	body, err := f.next.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	f.pages[url] = body
	return body, nil
}
