// Package scheduler triggers ingestion runs on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/fortuna/courtside/internal/ingest"
	"github.com/fortuna/courtside/internal/runs"
)

// RunStarter is the part of the runs service the scheduler needs.
type RunStarter interface {
	RunNow(ctx context.Context, trigger string) (*runs.Run, *ingest.Result, error)
}

// Orchestrator manages scheduled ingestion.
type Orchestrator struct {
	runs   RunStarter
	config *Config
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	entryID cron.EntryID
	ctx     context.Context
	cancel  context.CancelFunc
	lastRun time.Time
	lastErr error
}

// Config holds scheduler configuration
type Config struct {
	Schedule   string        // standard 5-field cron spec
	Enabled    bool          // Default: true
	RunOnStart bool          // Default: false
	MaxRetries int           // Default: 3
	RetryDelay time.Duration // Default: 30s
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		Schedule:   "0 3 * * *",
		Enabled:    true,
		MaxRetries: 3,
		RetryDelay: 30 * time.Second,
	}
}

// NewOrchestrator creates a new scheduler orchestrator. The schedule is
// parsed up front so a bad schedule fails at startup.
func NewOrchestrator(starter RunStarter, config *Config, logger *slog.Logger) (*Orchestrator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxRetries < 1 {
		config.MaxRetries = 1
	}

	logger = logger.With("component", "scheduler")
	o := &Orchestrator{
		runs:   starter,
		config: config,
		cron:   cron.New(cron.WithLogger(cronLogger{logger: logger})),
		logger: logger,
	}

	if config.Enabled {
		id, err := o.cron.AddFunc(config.Schedule, o.tick)
		if err != nil {
			return nil, fmt.Errorf("parsing schedule %q: %w", config.Schedule, err)
		}
		o.entryID = id
	}
	return o, nil
}

// Start begins scheduled runs and returns immediately.
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	o.ctx, o.cancel = context.WithCancel(ctx)
	o.mu.Unlock()

	if !o.config.Enabled {
		o.logger.Info("scheduled ingestion disabled")
		return
	}

	o.cron.Start()
	o.logger.Info("scheduler started", "schedule", o.config.Schedule, "next_run", o.nextRun())

	if o.config.RunOnStart {
		go o.tick()
	}
}

// Stop cancels an in-flight scheduled run and waits for the cron loop.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
	}
	o.mu.Unlock()

	<-o.cron.Stop().Done()
	o.logger.Info("scheduler stopped")
}

// GetStatus returns current scheduler status
func (o *Orchestrator) GetStatus() map[string]interface{} {
	o.mu.Lock()
	defer o.mu.Unlock()

	status := map[string]interface{}{
		"enabled":     o.config.Enabled,
		"schedule":    o.config.Schedule,
		"max_retries": o.config.MaxRetries,
	}
	if next := o.nextRun(); !next.IsZero() {
		status["next_run"] = next
	}
	if !o.lastRun.IsZero() {
		status["last_run"] = o.lastRun
	}
	if o.lastErr != nil {
		status["last_error"] = o.lastErr.Error()
	}
	return status
}

func (o *Orchestrator) nextRun() time.Time {
	if o.entryID == 0 {
		return time.Time{}
	}
	return o.cron.Entry(o.entryID).Next
}

func (o *Orchestrator) tick() {
	o.mu.Lock()
	ctx := o.ctx
	o.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	err := o.runWithRetry(ctx)

	o.mu.Lock()
	o.lastRun = time.Now()
	o.lastErr = err
	o.mu.Unlock()
}

// runWithRetry retries runs that could not start. A run that finished with
// step errors is not retried; its history row already records them.
func (o *Orchestrator) runWithRetry(ctx context.Context) error {
	var err error
	for attempt := 1; attempt <= o.config.MaxRetries; attempt++ {
		var run *runs.Run
		run, _, err = o.runs.RunNow(ctx, ingest.TriggerScheduled)
		if err == nil {
			o.logger.Info("scheduled run finished", "run_id", run.RunID, "status", run.Status)
			return nil
		}
		if errors.Is(err, runs.ErrRunInProgress) {
			o.logger.Info("skipping scheduled run, another run is active")
			return err
		}

		o.logger.Warn("scheduled run failed", "attempt", attempt, "max_retries", o.config.MaxRetries, "error", err)
		if attempt < o.config.MaxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(o.config.RetryDelay):
			}
		}
	}
	o.logger.Error("all scheduled run attempts failed", "error", err)
	return err
}

// cronLogger routes cron's internal logging to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
