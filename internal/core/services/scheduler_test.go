package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/askhub-ai/askhub/internal/core/domain"
)

type countingRunner struct {
	runs atomic.Int64
	err  error
}

func (r *countingRunner) Run(ctx context.Context) (domain.IngestSummary, error) {
	r.runs.Add(1)
	return domain.IngestSummary{}, r.err
}

func TestScheduler_RunsImmediatelyThenOnTicks(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(20*time.Millisecond, runner)

	s.Start(context.Background())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return runner.runs.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond)
}

func TestScheduler_StartTwiceIsNoOp(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(time.Hour, runner)

	ctx := context.Background()
	s.Start(ctx)
	s.Start(ctx)
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return runner.runs.Load() == 1
	}, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 1, runner.runs.Load())
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s := NewScheduler(time.Hour, &countingRunner{})
	s.Start(context.Background())

	s.Stop()
	s.Stop()
}

func TestScheduler_BusyRunnerDoesNotStopLoop(t *testing.T) {
	runner := &countingRunner{err: domain.ErrIngestRunning}
	s := NewScheduler(10*time.Millisecond, runner)

	s.Start(context.Background())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return runner.runs.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)
}

func TestScheduler_ContextCancelStopsLoop(t *testing.T) {
	runner := &countingRunner{}
	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler(10*time.Millisecond, runner)

	s.Start(ctx)
	cancel()

	assert.Eventually(t, func() bool {
		before := runner.runs.Load()
		time.Sleep(30 * time.Millisecond)
		return runner.runs.Load() == before
	}, 2*time.Second, 10*time.Millisecond)

	s.Stop()
}
