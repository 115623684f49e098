package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Task is one unit of periodic background work
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

// Config holds scheduler configuration
type Config struct {
	Interval time.Duration // time between runs
	Timeout  time.Duration // per run; zero means Interval
	// RunOnStart runs the task once immediately instead of waiting a full interval
	RunOnStart bool
}

// Stats reports what the scheduler has done so far
type Stats struct {
	Runs     int64
	Failures int64
	LastRun  time.Time
	LastErr  string
}

// Scheduler runs a single task on a fixed interval. Runs never overlap: a tick
// that arrives while the previous run is still going is skipped.
type Scheduler struct {
	config Config
	task   Task
	logger *zap.Logger

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
	stats   Stats
}

// New creates a scheduler for task
func New(config Config, task Task, logger *zap.Logger) (*Scheduler, error) {
	if config.Interval <= 0 {
		return nil, fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if config.Timeout <= 0 {
		config.Timeout = config.Interval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{config: config, task: task, logger: logger}, nil
}

// Start launches the run loop. Calling Start twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	s.started = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Scheduler started",
		zap.String("task", s.task.Name()),
		zap.Duration("interval", s.config.Interval),
		zap.Duration("timeout", s.config.Timeout),
	)
	return nil
}

// Stop cancels the loop and waits for an in-flight run, bounded by ctx
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped", zap.String("task", s.task.Name()))
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out", zap.String("task", s.task.Name()))
		return ctx.Err()
	}
}

// RunNow runs the task synchronously unless a run is already in progress
func (s *Scheduler) RunNow(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)
	return s.execute(ctx)
}

// Stats returns a snapshot of the run counters
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.tick(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if err := s.RunNow(ctx); errors.Is(err, ErrAlreadyRunning) {
		s.logger.Debug("Skipping tick, previous run still in progress", zap.String("task", s.task.Name()))
	}
}

func (s *Scheduler) execute(ctx context.Context) error {
	runCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	err := s.task.Run(runCtx)

	s.mu.Lock()
	s.stats.Runs++
	s.stats.LastRun = start
	s.stats.LastErr = ""
	if err != nil {
		s.stats.Failures++
		s.stats.LastErr = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Scheduled task failed",
			zap.String("task", s.task.Name()),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return err
	}
	s.logger.Debug("Scheduled task completed",
		zap.String("task", s.task.Name()),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}
