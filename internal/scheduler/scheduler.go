// Package scheduler runs background upkeep while a long-lived command such as
// the preview server is up: re-hydrating the saved-item cache and pruning the
// local mirror.
package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Task is one unit of periodic work.
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

// TaskFunc adapts a function to Task.
type TaskFunc struct {
	TaskName string
	Fn       func(ctx context.Context) error
}

func (t TaskFunc) Name() string                  { return t.TaskName }
func (t TaskFunc) Run(ctx context.Context) error { return t.Fn(ctx) }

// Scheduler owns the loop: ticks on an interval and runs each task sequentially.
type Scheduler struct {
	tasks    []Task
	interval time.Duration
	pause    time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a scheduler that runs tasks every interval, waiting
// pause between two tasks of the same cycle.
func NewScheduler(tasks []Task, interval, pause time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		tasks:    tasks,
		interval: interval,
		pause:    pause,
		logger:   logger,
	}
}

// Run ticks on the configured interval until ctx is cancelled. The first
// cycle runs after one interval, since callers hydrate before serving. It
// returns nil when ctx is cancelled (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler",
		"interval", s.interval.String(),
		"tasks", len(s.tasks),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(s.interval):
			s.runAll(ctx)
		}
	}
}

// runAll runs each task sequentially with a small pause between tasks.
func (s *Scheduler) runAll(ctx context.Context) {
	for i, t := range s.tasks {
		if ctx.Err() != nil {
			return
		}

		start := time.Now()
		if err := t.Run(ctx); err != nil {
			s.logger.Error("task failed",
				"task", t.Name(),
				"error", err,
			)
		} else {
			s.logger.Debug("task done", "task", t.Name(), "took", time.Since(start).String())
		}

		if i < len(s.tasks)-1 && s.pause > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.pause):
			}
		}
	}
}
