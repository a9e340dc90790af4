package runs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/fortuna/courtside/internal/ingest"
	"github.com/fortuna/courtside/internal/store"
)

// ErrRunInProgress is returned when a run is requested while one is active.
var ErrRunInProgress = errors.New("an ingestion run is already in progress")

// Runner executes one ingestion.
type Runner interface {
	Run(ctx context.Context, trigger string) (*ingest.Result, error)
}

// Service serializes ingestion runs inside the process and keeps their
// history. Manual, API and scheduled runs all go through it.
type Service struct {
	repo     *Repository
	runner   Runner
	teamCode string
	season   int

	historyLimit int

	mu     sync.Mutex
	active *Run

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(db *store.Database, runner Runner, teamCode string, season int, logger *slog.Logger) *Service {
	ctx, cancel := context.WithCancel(context.Background())

	return &Service{
		repo:         NewRepository(db),
		runner:       runner,
		teamCode:     teamCode,
		season:       season,
		historyLimit: 10,
		ctx:          ctx,
		cancel:       cancel,
		logger:       logger.With("component", "runs"),
	}
}

// Recover closes runs a previous process left open.
func (s *Service) Recover(ctx context.Context) error {
	n, err := s.repo.MarkInterrupted(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Warn("closed interrupted runs", "count", n)
	}
	return nil
}

// RunNow executes a run on the calling goroutine.
func (s *Service) RunNow(ctx context.Context, trigger string) (*Run, *ingest.Result, error) {
	run, err := s.begin(ctx, trigger)
	if err != nil {
		return nil, nil, err
	}
	result, err := s.execute(ctx, run)
	return s.snapshot(run), result, err
}

// Trigger starts a run in the background and returns its history row.
func (s *Service) Trigger(ctx context.Context, trigger string) (*Run, error) {
	run, err := s.begin(ctx, trigger)
	if err != nil {
		return nil, err
	}

	started := s.snapshot(run)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if _, err := s.execute(s.ctx, run); err != nil {
			s.logger.Error("background run failed", "run_id", run.RunID, "error", err)
		}
	}()
	return started, nil
}

// GetStatus returns the active run plus recent history.
func (s *Service) GetStatus(ctx context.Context) (*StatusSummary, error) {
	history, err := s.repo.ListRecent(ctx, s.historyLimit)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	active := s.active.Copy()
	s.mu.Unlock()

	return &StatusSummary{
		ActiveRun: active,
		History:   history,
	}, nil
}

// Shutdown cancels background runs and waits for them.
func (s *Service) Shutdown(ctx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.wg.Wait()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (s *Service) begin(ctx context.Context, trigger string) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		return nil, ErrRunInProgress
	}

	run, err := s.repo.Create(ctx, trigger, s.teamCode, s.season, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	s.active = run
	return run, nil
}

func (s *Service) execute(ctx context.Context, run *Run) (*ingest.Result, error) {
	defer func() {
		s.mu.Lock()
		s.active = nil
		s.mu.Unlock()
	}()

	result, err := s.runner.Run(ctx, run.Trigger)
	// history writes outlive a cancelled run context
	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err != nil {
		if ferr := s.repo.Fail(writeCtx, run.RunID, err); ferr != nil {
			s.logger.Error("failed to record run failure", "run_id", run.RunID, "error", ferr)
		}
		s.mu.Lock()
		run.Status = ingest.StatusFailed
		s.mu.Unlock()
		return nil, err
	}

	if ferr := s.repo.Finish(writeCtx, run.RunID, result); ferr != nil {
		s.logger.Error("failed to record run result", "run_id", run.RunID, "error", ferr)
	}

	s.mu.Lock()
	run.Status = result.Status()
	run.TeamsUpserted = result.TeamsUpserted
	run.PlayersUpserted = result.PlayersUpserted
	run.StatsReplaced = result.StatsReplaced
	run.RecordsSkipped = result.RecordsSkipped
	run.UsedFallback = result.UsedFallback
	run.ErrorCount = len(result.Errors)
	s.mu.Unlock()

	s.logger.Info("run recorded", "run_id", run.RunID, "status", run.Status)
	return result, nil
}

func (s *Service) snapshot(run *Run) *Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return run.Copy()
}
