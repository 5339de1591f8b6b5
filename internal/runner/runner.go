// Package runner schedules the service's background tasks on cron.
package runner

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Task is a unit of scheduled background work.
type Task interface {
	// Name identifies the task in logs.
	Name() string
	// Schedule is a cron expression with seconds field.
	Schedule() string
	// Timeout bounds a single run.
	Timeout() time.Duration
	// Run executes the task.
	Run(ctx context.Context) error
}

// Runner owns the cron scheduler.
type Runner struct {
	cron *cron.Cron
}

// New creates a runner with second-granularity cron parsing.
func New() *Runner {
	return &Runner{
		cron: cron.New(cron.WithSeconds()),
	}
}

// Register adds a task to the schedule.
func (r *Runner) Register(task Task) error {
	_, err := r.cron.AddFunc(task.Schedule(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), task.Timeout())
		defer cancel()

		if err := task.Run(ctx); err != nil {
			slog.Error("background task failed", "task", task.Name(), "error", err)
		}
	})
	return err
}

// Start begins executing scheduled tasks.
func (r *Runner) Start() {
	r.cron.Start()
}

// Stop halts scheduling and waits for running tasks to finish.
func (r *Runner) Stop() {
	<-r.cron.Stop().Done()
}
