package CronJobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"Folio/RateLimit"
)

// CounterSweeper periodically evicts expired rate-limit windows
type CounterSweeper struct {
	cronScheduler *cron.Cron
	counter       RateLimit.Counter
	schedule      string
	timeout       time.Duration
	logger        *zap.Logger
	jobID         cron.EntryID
}

// NewCounterSweeper creates a sweeper for counter on the given cron schedule
// (e.g. "@every 1m" or "0 */5 * * * *").
func NewCounterSweeper(counter RateLimit.Counter, schedule string, logger *zap.Logger) *CounterSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CounterSweeper{
		cronScheduler: cron.New(cron.WithSeconds()),
		counter:       counter,
		schedule:      schedule,
		timeout:       30 * time.Second,
		logger:        logger.With(zap.String("component", "counter_sweeper")),
	}
}

// Start schedules the sweep and starts the scheduler
func (s *CounterSweeper) Start() error {
	var err error
	s.jobID, err = s.cronScheduler.AddFunc(s.schedule, s.RunSweep)
	if err != nil {
		return fmt.Errorf("error scheduling cron job: %w", err)
	}

	s.cronScheduler.Start()
	s.logger.Info("counter sweeper started", zap.String("schedule", s.schedule))
	return nil
}

// Stop terminates the scheduler and waits for a running sweep to finish
func (s *CounterSweeper) Stop() {
	if s.cronScheduler != nil {
		<-s.cronScheduler.Stop().Done()
		s.logger.Info("counter sweeper stopped")
	}
}

// RunSweep evicts expired windows once
func (s *CounterSweeper) RunSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	removed, err := s.counter.Sweep(ctx)
	if err != nil {
		s.logger.Error("sweep failed", zap.Error(err))
		return
	}
	if removed > 0 {
		s.logger.Debug("expired windows removed", zap.Int64("removed", removed))
	}
}
