package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/remedyhq/remedy-agent/internal/database"
	"github.com/remedyhq/remedy-agent/internal/pipeline"
	"github.com/remedyhq/remedy-agent/models"
)

// Scheduler enqueues both scan kinds for every registered repository on a
// cron schedule.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler registers spec (standard 5-field cron syntax) and returns
// the scheduler, or an error when the expression does not parse.
func NewScheduler(spec string, db database.DB, d *Dispatcher) (*Scheduler, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		enqueueAll(context.Background(), db, d)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts scheduling; running jobs keep draining through the dispatcher.
func (s *Scheduler) Stop() { s.cron.Stop() }

func enqueueAll(ctx context.Context, db database.DB, d *Dispatcher) {
	var repos []models.Repo
	if err := db.Select(ctx, &repos, "SELECT * FROM repos ORDER BY created_at"); err != nil {
		slog.Error("scheduled enqueue: listing repos failed", "error", err)
		return
	}
	queued := 0
	for _, repo := range repos {
		for _, kind := range []string{models.ScanKindSAST, models.ScanKindSCA} {
			if err := d.Enqueue(pipeline.Job{RepoID: repo.ID, Kind: kind}); err != nil {
				slog.Warn("scheduled enqueue rejected", "repo", repo.Name, "kind", kind, "error", err)
				continue
			}
			queued++
		}
	}
	slog.Info("scheduled scans enqueued", "repos", len(repos), "jobs", queued)
}
