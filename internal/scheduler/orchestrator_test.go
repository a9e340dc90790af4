package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/courtside/internal/ingest"
	"github.com/fortuna/courtside/internal/runs"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeStarter struct {
	mu       sync.Mutex
	failures int
	calls    int
	triggers []string
	err      error
}

func (f *fakeStarter) RunNow(ctx context.Context, trigger string) (*runs.Run, *ingest.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.triggers = append(f.triggers, trigger)
	if f.err != nil {
		return nil, nil, f.err
	}
	if f.calls <= f.failures {
		return nil, nil, errors.New("database is locked")
	}
	return &runs.Run{RunID: int64(f.calls), Status: ingest.StatusSucceeded}, &ingest.Result{}, nil
}

func (f *fakeStarter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestNewOrchestratorRejectsBadSchedule(t *testing.T) {
	_, err := NewOrchestrator(&fakeStarter{}, &Config{Schedule: "every tuesday", Enabled: true}, testLogger)
	assert.Error(t, err)
}

func TestDisabledSchedulerSkipsParsing(t *testing.T) {
	o, err := NewOrchestrator(&fakeStarter{}, &Config{Schedule: "bogus", Enabled: false}, testLogger)
	require.NoError(t, err)

	o.Start(context.Background())
	defer o.Stop()

	status := o.GetStatus()
	assert.Equal(t, false, status["enabled"])
	assert.NotContains(t, status, "next_run")
}

func TestRunWithRetry(t *testing.T) {
	starter := &fakeStarter{failures: 2}
	o, err := NewOrchestrator(starter, &Config{Schedule: "0 9 * * *", Enabled: true, MaxRetries: 3}, testLogger)
	require.NoError(t, err)

	require.NoError(t, o.runWithRetry(context.Background()))
	assert.Equal(t, 3, starter.Calls())
	assert.Equal(t, []string{ingest.TriggerScheduled, ingest.TriggerScheduled, ingest.TriggerScheduled}, starter.triggers)
}

func TestRunWithRetryDoesNotRetryOverlap(t *testing.T) {
	starter := &fakeStarter{err: runs.ErrRunInProgress}
	o, err := NewOrchestrator(starter, &Config{Schedule: "0 9 * * *", Enabled: true, MaxRetries: 3}, testLogger)
	require.NoError(t, err)

	assert.ErrorIs(t, o.runWithRetry(context.Background()), runs.ErrRunInProgress)
	assert.Equal(t, 1, starter.Calls())
}

func TestRunOnStart(t *testing.T) {
	starter := &fakeStarter{}
	o, err := NewOrchestrator(starter, &Config{Schedule: "0 9 * * *", Enabled: true, RunOnStart: true, MaxRetries: 1}, testLogger)
	require.NoError(t, err)

	o.Start(context.Background())
	defer o.Stop()

	require.Eventually(t, func() bool { return starter.Calls() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		_, ok := o.GetStatus()["last_run"]
		return ok
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, o.GetStatus(), "next_run")
}
