package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/villagecompute/jobkit/pkg/logger"
)

// Drainer is anything the scheduler can trigger. *Processor implements it.
type Drainer interface {
	Name() string
	ProcessBatch(ctx context.Context, limit int) int
}

// Scheduler is the timer-driven trigger for processors. On each check it runs
// every drain whose schedule is due, one invocation per drain per tick.
type Scheduler struct {
	drains   map[string]*scheduledDrain
	mu       sync.RWMutex
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// scheduledDrain holds configuration for one registered drain
type scheduledDrain struct {
	name       string
	schedule   Schedule
	drainer    Drainer
	batchLimit int
	nextRun    time.Time // zero until the first run
	running    sync.Mutex
}

// NewScheduler creates a scheduler with no drains
func NewScheduler(opts ...SchedulerOption) *Scheduler {
	options := &schedulerOptions{
		checkInterval: time.Second,
		logger:        slog.Default(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Scheduler{
		drains:   make(map[string]*scheduledDrain),
		interval: options.checkInterval,
		logger:   options.logger,
		now:      options.now,
	}
}

// AddDrain registers a drain under name. The first check after Start runs it
// right away; later runs follow schedule.
func (s *Scheduler) AddDrain(name string, schedule Schedule, d Drainer, opts ...DrainOption) error {
	if name == "" {
		return ErrEmptyName
	}
	if schedule == nil {
		return ErrNoScheduleSpecified
	}
	if d == nil {
		return ErrQueueNil
	}

	drainOpts := &drainOptions{}
	for _, opt := range opts {
		opt(drainOpts)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.drains[name]; exists {
		return fmt.Errorf("%w: %s", ErrDrainAlreadyRegistered, name)
	}

	s.drains[name] = &scheduledDrain{
		name:       name,
		schedule:   schedule,
		drainer:    d,
		batchLimit: drainOpts.batchLimit,
	}

	s.logger.Info("registered drain",
		logger.Drain(name),
		logger.JobType(d.Name()),
		slog.String("schedule", schedule.String()),
		slog.Int("batch_limit", drainOpts.batchLimit))

	return nil
}

// RemoveDrain unregisters a drain
func (s *Scheduler) RemoveDrain(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.drains, name)

	s.logger.Info("removed drain", logger.Drain(name))
}

// ListDrains returns the names of all registered drains, sorted
func (s *Scheduler) ListDrains() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.drains))
}

// Start runs the check loop until ctx is done
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.RLock()
	count := len(s.drains)
	s.mu.RUnlock()

	if count == 0 {
		return ErrSchedulerNotConfigured
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.checkDrains(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.checkDrains(ctx)
		}
	}
}

// Run returns a function suitable for errgroup. Cancellation is a clean exit.
func (s *Scheduler) Run(ctx context.Context) func() error {
	return func() error {
		if err := s.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
}

// DrainNow runs a registered drain immediately, outside its schedule, and
// returns the number of jobs processed. Used for operator "drain now" actions.
func (s *Scheduler) DrainNow(ctx context.Context, name string) (int, error) {
	s.mu.RLock()
	d, ok := s.drains[name]
	s.mu.RUnlock()

	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrDrainNotFound, name)
	}
	return s.runDrain(ctx, d), nil
}

// checkDrains runs every drain that is due
func (s *Scheduler) checkDrains(ctx context.Context) {
	s.mu.RLock()
	drains := slices.Collect(maps.Values(s.drains))
	s.mu.RUnlock()

	now := s.now()
	for _, d := range drains {
		if ctx.Err() != nil {
			return
		}
		if !d.nextRun.IsZero() && d.nextRun.After(now) {
			continue
		}
		s.runDrain(ctx, d)
		d.nextRun = d.schedule.Next(now)
	}
}

func (s *Scheduler) runDrain(ctx context.Context, d *scheduledDrain) int {
	// A drain never overlaps with itself, whether triggered by tick or by hand
	d.running.Lock()
	defer d.running.Unlock()

	start := s.now()
	processed := d.drainer.ProcessBatch(ctx, d.batchLimit)
	if processed == 0 {
		return 0
	}

	s.logger.Debug("drain completed",
		logger.Drain(d.name),
		logger.JobType(d.drainer.Name()),
		slog.Int("processed", processed),
		logger.Duration(s.now().Sub(start)))

	if d.batchLimit > 0 && processed >= d.batchLimit {
		s.logger.Info("drain reached batch limit, continuing next cycle",
			logger.Drain(d.name),
			slog.Int("batch_limit", d.batchLimit))
	}
	return processed
}
