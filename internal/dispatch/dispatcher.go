// Package dispatch runs pipeline jobs on a bounded in-process queue with a
// fixed pool of workers, plus an optional cron schedule that enqueues scans
// for every registered repository.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/remedyhq/remedy-agent/internal/config"
	"github.com/remedyhq/remedy-agent/internal/pipeline"
)

// Runner is the job execution seam; the pipeline controller satisfies it.
type Runner interface {
	Run(ctx context.Context, job pipeline.Job) (*pipeline.Summary, error)
}

type Dispatcher struct {
	runner  Runner
	jobs    chan pipeline.Job
	workers int
	wg      sync.WaitGroup
}

func New(runner Runner, cfg config.WorkerConfig) *Dispatcher {
	workers := cfg.Count
	if workers <= 0 {
		workers = 1
	}
	size := cfg.QueueSize
	if size <= 0 {
		size = 16
	}
	return &Dispatcher{
		runner:  runner,
		jobs:    make(chan pipeline.Job, size),
		workers: workers,
	}
}

// Enqueue adds a job without blocking; a full queue rejects the job.
func (d *Dispatcher) Enqueue(job pipeline.Job) error {
	select {
	case d.jobs <- job:
		return nil
	default:
		return fmt.Errorf("job queue full (%d pending)", cap(d.jobs))
	}
}

// Start launches the worker pool. Workers drain the queue until ctx is
// cancelled; call Wait to block until they finish.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work(ctx, i)
	}
	slog.Info("dispatcher started", "workers", d.workers, "queue", cap(d.jobs))
}

// Wait blocks until all workers have exited.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) work(ctx context.Context, id int) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-d.jobs:
			summary, err := d.runner.Run(ctx, job)
			if err != nil {
				slog.Error("job failed",
					"worker", id, "repo_id", job.RepoID, "kind", job.Kind, "error", err)
				continue
			}
			slog.Info("job done",
				"worker", id,
				"scan_id", summary.ScanID,
				"kind", summary.Kind,
				"findings", summary.FindingCount,
				"applied_files", len(summary.AppliedFiles),
			)
		}
	}
}
