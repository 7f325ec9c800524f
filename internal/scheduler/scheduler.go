package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler triggers the runner on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	runner *Runner
	logger *zap.Logger
	ctx    context.Context
}

// NewScheduler creates a Scheduler. Expressions include a seconds field.
func NewScheduler(ctx context.Context, runner *Runner, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		runner: runner,
		logger: logger,
		ctx:    ctx,
	}
}

// Register adds the analysis task at spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.task); err != nil {
		return fmt.Errorf("register analysis task: %w", err)
	}
	s.logger.Info("analysis task registered", zap.String("cron", spec))
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// Entries returns the number of registered tasks.
func (s *Scheduler) Entries() int { return len(s.cron.Entries()) }

func (s *Scheduler) task() {
	if s.ctx.Err() != nil {
		return
	}
	// Errors are already logged and recorded by the runner.
	_, _ = s.runner.RunOnce(s.ctx)
}
