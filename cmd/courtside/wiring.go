package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fortuna/courtside/internal/cache"
	"github.com/fortuna/courtside/internal/config"
	"github.com/fortuna/courtside/internal/ingest"
	"github.com/fortuna/courtside/internal/ingest/bref"
	"github.com/fortuna/courtside/internal/publisher"
	"github.com/fortuna/courtside/internal/store"
	"github.com/fortuna/courtside/internal/store/repository"
)

// openDatabase connects and applies pending migrations.
func (a *app) openDatabase(ctx context.Context) (*store.Database, error) {
	db, err := store.NewDatabase(a.cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(ctx, a.logger); err != nil {
		db.Close()
		return nil, err
	}
	a.logger.Info("database ready", "dialect", db.Dialect())
	return db, nil
}

// connectRedis returns nil when REDIS_URL is unset. attempts bounds how
// long startup waits for a Redis that is still coming up.
func (a *app) connectRedis(attempts int) (*cache.RedisCache, error) {
	if a.cfg.RedisURL == "" {
		return nil, nil
	}

	retryDelay := 2 * time.Second
	var lastErr error
	for i := 0; i < attempts; i++ {
		rc, err := cache.NewRedisCache(a.cfg.RedisURL)
		if err == nil {
			a.logger.Info("connected to redis")
			return rc, nil
		}
		lastErr = err
		if i < attempts-1 {
			a.logger.Warn("redis connection failed, retrying", "attempt", i+1, "max_attempts", attempts, "retry_in", retryDelay, "error", err)
			time.Sleep(retryDelay)
		}
	}
	return nil, fmt.Errorf("connecting to redis after %d attempts: %w", attempts, lastErr)
}

// buildFetcher picks the fetch strategy. The returned func releases
// browser resources and is always safe to call.
func (a *app) buildFetcher(rc *cache.RedisCache) (bref.Fetcher, func()) {
	switch a.cfg.FetchMode {
	case config.FetchModeBrowser:
		bf := bref.NewBrowserFetcher(a.cfg.UserAgent, a.cfg.HTTPTimeout, a.logger)
		return bf, bf.Close
	default:
		opts := bref.HTTPOptions{
			UserAgent:         a.cfg.UserAgent,
			Timeout:           a.cfg.HTTPTimeout,
			RequestsPerMinute: a.cfg.RequestsPerMinute,
		}
		if rc != nil && a.cfg.PageCacheTTL > 0 {
			opts.Cache = cache.NewPageCache(rc, a.cfg.PageCacheTTL)
		}
		return bref.NewHTTPFetcher(opts, a.logger), func() {}
	}
}

func (a *app) target() bref.Target {
	return bref.Target{
		PageURL:        a.cfg.TeamPageURL(),
		TeamCode:       a.cfg.TeamCode,
		TeamName:       a.cfg.TeamName,
		Season:         a.cfg.Season,
		FallbackWins:   a.cfg.FallbackWins,
		FallbackLosses: a.cfg.FallbackLosses,
	}
}

// buildPipeline wires fetcher, writer and notifiers. A Redis connection
// adds the run stream publisher.
func (a *app) buildPipeline(db *store.Database, fetcher bref.Fetcher, rc *cache.RedisCache, extra ...ingest.Notifier) *ingest.Pipeline {
	notifiers := append([]ingest.Notifier{}, extra...)
	if rc != nil {
		notifiers = append(notifiers, publisher.NewRedisStreamPublisher(rc.Client()))
	}
	writer := repository.NewWriter(db, a.logger)
	return ingest.NewPipeline(fetcher, a.target(), writer, a.logger, notifiers...)
}
