// Package periodic schedules the engine's background jobs: rescanning
// tracked URLs, re-enforcing ledger capacities and refreshing the rule
// catalog. Jobs are independent of each other but individually guarded
// against overlapping with themselves.
package periodic

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Job is one scheduled task.
type Job struct {
	Name  string
	Every time.Duration
	Run   func(ctx context.Context) error

	inFlight atomic.Bool
}

// Runner owns a set of jobs and their goroutines.
type Runner struct {
	log  *slog.Logger
	jobs []*Job
}

// New builds an empty runner.
func New(log *slog.Logger) *Runner {
	return &Runner{log: log}
}

// Add registers a job. Jobs with a non-positive interval are ignored.
func (r *Runner) Add(name string, every time.Duration, run func(ctx context.Context) error) {
	if every <= 0 {
		return
	}
	r.jobs = append(r.jobs, &Job{Name: name, Every: every, Run: run})
}

// Start launches one goroutine per job. Each loops on its own ticker until
// the context is cancelled. A tick that arrives while the previous run is
// still in flight is skipped: jobs never run concurrently with themselves.
func (r *Runner) Start(ctx context.Context) {
	for _, job := range r.jobs {
		go r.loop(ctx, job)
		r.log.Info("periodic job scheduled",
			slog.String("job", job.Name),
			slog.Duration("every", job.Every))
	}
}

func (r *Runner) loop(ctx context.Context, job *Job) {
	ticker := time.NewTicker(job.Every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runOnce(ctx, job)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context, job *Job) {
	if !job.inFlight.CompareAndSwap(false, true) {
		r.log.Warn("periodic job still running, tick skipped",
			slog.String("job", job.Name))
		return
	}
	defer job.inFlight.Store(false)

	if err := job.Run(ctx); err != nil && ctx.Err() == nil {
		r.log.Error("periodic job failed",
			slog.String("job", job.Name), slog.Any("error", err))
	}
}
