package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/askhub-ai/askhub/internal/core/domain"
	"github.com/askhub-ai/askhub/internal/core/ports/driving"
	"github.com/askhub-ai/askhub/internal/logger"
)

// Scheduler triggers ingestion runs on a fixed interval. It runs one
// pass immediately on start, then ticks until stopped.
type Scheduler struct {
	interval time.Duration
	runner   driving.IngestRunner

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler for the given interval.
func NewScheduler(interval time.Duration, runner driving.IngestRunner) *Scheduler {
	return &Scheduler{interval: interval, runner: runner}
}

// Start launches the scheduler loop in the background. Starting an
// already-running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop(ctx)
}

// Stop shuts the scheduler down and waits for an in-flight run to
// finish. Stopping a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
}

// loop is the scheduler's run loop.
func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce triggers one ingestion pass and logs the outcome. A tick
// that lands while a run is still active is skipped, not queued.
func (s *Scheduler) runOnce(ctx context.Context) {
	summary, err := s.runner.Run(ctx)
	switch {
	case errors.Is(err, domain.ErrIngestRunning):
		logger.Warn("scheduler: previous ingestion still running, tick skipped")
	case err != nil:
		logger.Error("scheduler: ingestion failed: %v", err)
	default:
		logger.Debug("scheduler: ingestion done: found=%d processed=%d skipped=%d",
			summary.Found, summary.Processed, summary.Skipped)
	}
}
