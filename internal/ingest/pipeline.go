// Package ingest runs the scrape-normalize-upsert pipeline for one team season.
package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/fortuna/courtside/internal/ingest/bref"
	"github.com/fortuna/courtside/internal/store"
)

// Trigger sources recorded on each run.
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
	TriggerAPI       = "api"
)

// Store persists the records of one run.
type Store interface {
	UpsertTeam(ctx context.Context, team *store.Team) error
	UpsertPlayers(ctx context.Context, players []*store.Player) error
	ReplacePlayerStats(ctx context.Context, records []*store.PlayerStats, season int) error
}

// Notifier is told about every finished run.
type Notifier interface {
	NotifyRun(ctx context.Context, result *Result) error
}

// Pipeline scrapes the team page and writes team, roster and stats.
// The three steps are independent: a failing step is logged and recorded
// and the next step still runs.
type Pipeline struct {
	fetcher   bref.Fetcher
	target    bref.Target
	store     Store
	notifiers []Notifier
	logger    *slog.Logger
}

// NewPipeline creates a pipeline over fetcher and store.
func NewPipeline(fetcher bref.Fetcher, target bref.Target, st Store, logger *slog.Logger, notifiers ...Notifier) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		target:    target,
		store:     st,
		notifiers: notifiers,
		logger:    logger.With("component", "pipeline"),
	}
}

// Run executes one ingestion. Step failures end up in the result; the
// returned error is reserved for a run that could not start.
func (p *Pipeline) Run(ctx context.Context, trigger string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{
		TeamCode:  p.target.TeamCode,
		Season:    p.target.Season,
		Trigger:   trigger,
		StartedAt: time.Now().UTC(),
	}
	logger := p.logger.With("team", p.target.TeamCode, "season", p.target.Season, "trigger", trigger)
	logger.Info("ingestion run started", "url", p.target.PageURL)

	scraper := bref.NewScraper(bref.PerRun(p.fetcher), p.target, p.logger)

	p.syncTeam(ctx, logger, scraper, result)
	p.syncRoster(ctx, logger, scraper, result)
	p.syncStats(ctx, logger, scraper, result)

	result.FinishedAt = time.Now().UTC()
	logger.Info("ingestion run finished",
		"status", result.Status(),
		"summary", result.Summary(),
		"elapsed", result.Duration(),
	)

	for _, n := range p.notifiers {
		if err := n.NotifyRun(ctx, result); err != nil {
			logger.Warn("run notification failed", "error", err)
		}
	}
	return result, nil
}

func (p *Pipeline) syncTeam(ctx context.Context, logger *slog.Logger, scraper *bref.Scraper, result *Result) {
	logger.Info("syncing team")

	team, usedFallback := scraper.GetTeamInfo(ctx)
	result.UsedFallback = usedFallback
	if team == nil {
		return
	}

	if err := p.store.UpsertTeam(ctx, team); err != nil {
		result.AddErrorf("team %s: %v", team.TeamCode, err)
		return
	}
	result.TeamsUpserted = 1
}

func (p *Pipeline) syncRoster(ctx context.Context, logger *slog.Logger, scraper *bref.Scraper, result *Result) {
	logger.Info("syncing roster")

	players := scraper.GetRoster(ctx)
	if len(players) == 0 {
		result.AddError("roster: no players extracted")
		return
	}

	if err := p.store.UpsertPlayers(ctx, players); err != nil {
		result.AddErrorf("roster: %v", err)
		return
	}
	result.PlayersUpserted = len(players)
}

func (p *Pipeline) syncStats(ctx context.Context, logger *slog.Logger, scraper *bref.Scraper, result *Result) {
	logger.Info("syncing player stats")

	stats, skipped := scraper.GetPlayerStats(ctx)
	result.RecordsSkipped += len(skipped)
	for _, err := range skipped {
		result.AddErrorf("player stats: %v", err)
	}
	if len(stats) == 0 {
		result.AddError("player stats: no stat lines extracted")
		return
	}

	if err := p.store.ReplacePlayerStats(ctx, stats, p.target.Season); err != nil {
		result.AddErrorf("player stats: %v", err)
		return
	}
	result.StatsReplaced = len(stats)
}
