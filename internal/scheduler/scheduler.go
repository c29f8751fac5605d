package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler runs one cycle function on a fixed period from a single
// goroutine, so two cycles never execute concurrently: a slow cycle delays
// the following ticks instead of overlapping them.
type Scheduler struct {
	interval time.Duration
	cycle    func(context.Context)

	running atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(interval time.Duration, cycle func(context.Context)) (*Scheduler, error) {
	if interval <= 0 {
		return nil, errors.New("interval must be > 0")
	}
	if cycle == nil {
		return nil, errors.New("cycle must not be nil")
	}
	return &Scheduler{
		interval: interval,
		cycle:    cycle,
		done:     make(chan struct{}),
	}, nil
}

// Start launches the dispatch loop, running one cycle immediately so anything
// already queued is drained before the first full interval. Returns false if
// already running.
func (s *Scheduler) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running.Store(true)

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		slog.Info("dispatch loop started", "interval", s.interval.String())

		s.runCycle(ctx)

		for {
			select {
			case <-ctx.Done():
				slog.Info("dispatch loop stopping")
				return
			case <-ticker.C:
				s.runCycle(ctx)
			}
		}
	}()

	return true
}

// Stop cancels the loop and waits for any in-flight cycle to finish.
// Returns false if not running.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return false
	}

	s.cancel()
	<-s.done
	s.running.Store(false)

	slog.Info("dispatch loop stopped")
	return true
}

func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

// runCycle shields the loop from a panicking cycle; the schedule must
// survive any single cycle's failure.
func (s *Scheduler) runCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("dispatch cycle panic recovered", "panic", r)
		}
	}()

	start := time.Now()
	s.cycle(ctx)
	slog.Debug("dispatch cycle completed", "duration_ms", time.Since(start).Milliseconds())
}
