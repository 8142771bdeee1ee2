// Package pipeline orchestrates one scan-to-remediation job: clone the
// repository, run the scanners, rank findings, apply patch plans, publish
// a branch/PR, and persist everything.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/remedyhq/remedy-agent/internal/ai"
	"github.com/remedyhq/remedy-agent/internal/config"
	"github.com/remedyhq/remedy-agent/internal/database"
	"github.com/remedyhq/remedy-agent/internal/findings"
	"github.com/remedyhq/remedy-agent/internal/gitpr"
	"github.com/remedyhq/remedy-agent/internal/notify"
	"github.com/remedyhq/remedy-agent/internal/patch"
	"github.com/remedyhq/remedy-agent/internal/planner"
	"github.com/remedyhq/remedy-agent/internal/repository"
	"github.com/remedyhq/remedy-agent/internal/scanner"
	"github.com/remedyhq/remedy-agent/models"
)

// Job asks for one scan kind against one registered repository.
type Job struct {
	RepoID string
	Kind   string
}

// Summary is what one completed job produced.
type Summary struct {
	ScanID       string   `json:"scan_id"`
	RepoID       string   `json:"repo_id"`
	Kind         string   `json:"kind"`
	FindingCount int      `json:"finding_count"`
	Planned      int      `json:"planned"`
	AppliedFiles []string `json:"applied_files,omitempty"`
	SkippedEdits int      `json:"skipped_edits,omitempty"`
	Branch       string   `json:"branch,omitempty"`
	PRURL        string   `json:"pr_url,omitempty"`
}

// Cloner materialises and disposes of scan workspaces.
type Cloner interface {
	Clone(ctx context.Context, repo models.Repo) (*repository.Workspace, error)
	Cleanup(ws *repository.Workspace)
}

// PlanMaker turns enriched findings into patch plans.
type PlanMaker interface {
	Plan(ctx context.Context, raw []models.RawFinding) []models.PlanBundle
}

// Publisher commits and publishes applied edits.
type Publisher interface {
	Publish(ctx context.Context, workspace, originURL string, plans []models.PlanBundle) *gitpr.Metadata
}

// Applier applies patch plans to a workspace.
type Applier func(workspace string, plans []models.PlanBundle) patch.Result

// Controller runs jobs end to end. All collaborators sit behind the small
// interfaces above so tests can swap them for fakes.
type Controller struct {
	db        database.DB
	clones    Cloner
	scanners  scanner.Collector
	planner   PlanMaker
	apply     Applier
	publisher Publisher
	notifier  *notify.Dispatcher // nil when no channel is configured
}

func NewController(db database.DB, cfg *config.Config) *Controller {
	return &Controller{
		db:        db,
		clones:    repository.NewCloneManager(),
		scanners:  scanner.NewRunner(cfg.Scanner),
		planner:   planner.New(ai.New(cfg.AI)),
		apply:     patch.Apply,
		publisher: gitpr.New(cfg.GitHub, cfg.Git),
		notifier:  notify.NewDispatcher(cfg.Notify),
	}
}

// NewControllerWith wires explicit collaborators; used by tests.
func NewControllerWith(db database.DB, clones Cloner, scanners scanner.Collector, plans PlanMaker, apply Applier, publisher Publisher) *Controller {
	return &Controller{
		db:        db,
		clones:    clones,
		scanners:  scanners,
		planner:   plans,
		apply:     apply,
		publisher: publisher,
	}
}

// Run executes one job. The repository must already be registered: an
// unknown RepoID fails before any workspace or scan row exists. After the
// scan row is written, any failure marks it failed with an error payload
// and is returned to the caller.
func (c *Controller) Run(ctx context.Context, job Job) (*Summary, error) {
	if !models.ValidScanKind(job.Kind) {
		return nil, fmt.Errorf("unsupported scan kind %q (expected %s or %s)",
			job.Kind, models.ScanKindSAST, models.ScanKindSCA)
	}

	var repo models.Repo
	if err := c.db.Get(ctx, &repo, "SELECT * FROM repos WHERE id = ?", job.RepoID); err != nil {
		return nil, fmt.Errorf("looking up repo %s: %w", job.RepoID, err)
	}

	scan := models.Scan{
		ID:           uuid.NewString(),
		RepoID:       repo.ID,
		Kind:         job.Kind,
		Status:       models.ScanStatusRunning,
		FindingsJSON: "[]",
		CreatedAt:    time.Now().UTC(),
	}
	tx, err := c.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening transaction: %w", err)
	}
	if err := tx.Insert(ctx, "scans", scan); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("recording scan: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing scan record: %w", err)
	}

	slog.Info("scan started", "scan_id", scan.ID, "repo", repo.Name, "kind", scan.Kind)

	summary, err := c.execute(ctx, scan, repo)
	if err != nil {
		c.markFailed(ctx, scan.ID, err)
		c.notify(ctx, notify.Event{
			Type:  notify.EventScanFailed,
			Title: fmt.Sprintf("Scan of %s failed", repo.Name),
			Body:  err.Error(),
			Repo:  repo.Name,
		})
		return nil, err
	}

	if summary.PRURL != "" {
		c.notify(ctx, notify.Event{
			Type:  notify.EventPROpened,
			Title: fmt.Sprintf("Automated fix for %s", repo.Name),
			Body:  fmt.Sprintf("%d finding(s), %d fix(es) applied", summary.FindingCount, len(summary.AppliedFiles)),
			URL:   summary.PRURL,
			Repo:  repo.Name,
		})
	}

	slog.Info("scan finished",
		"scan_id", summary.ScanID,
		"findings", summary.FindingCount,
		"planned", summary.Planned,
		"applied_files", len(summary.AppliedFiles),
		"pr_url", summary.PRURL,
	)
	return summary, nil
}

func (c *Controller) execute(ctx context.Context, scan models.Scan, repo models.Repo) (*Summary, error) {
	ws, err := c.clones.Clone(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("workspace clone: %w", err)
	}
	defer c.clones.Cleanup(ws)

	enriched := findings.Enrich(c.scanners.Collect(ctx, scan.Kind, ws.Path))

	payload, err := json.Marshal(enriched)
	if err != nil {
		return nil, fmt.Errorf("encoding findings: %w", err)
	}
	tx, err := c.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening transaction: %w", err)
	}
	if err := tx.Exec(ctx,
		"UPDATE scans SET status = ?, findings_json = ? WHERE id = ?",
		models.ScanStatusCompleted, string(payload), scan.ID); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("storing findings: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing findings: %w", err)
	}

	summary := &Summary{
		ScanID:       scan.ID,
		RepoID:       repo.ID,
		Kind:         scan.Kind,
		FindingCount: len(enriched),
	}

	bundles := c.planner.Plan(ctx, enriched)
	summary.Planned = len(bundles)
	if len(bundles) == 0 {
		return summary, nil
	}

	result := c.apply(ws.Path, bundles)
	summary.AppliedFiles = result.Touched
	summary.SkippedEdits = len(result.Skipped)

	var meta *gitpr.Metadata
	if len(result.Touched) > 0 {
		meta = c.publisher.Publish(ctx, ws.Path, repo.URL, bundles)
	}
	if meta != nil {
		summary.Branch = meta.Branch
		summary.PRURL = meta.PRURL
	}

	if err := c.persistOutcome(ctx, scan, repo, bundles, meta); err != nil {
		return nil, err
	}
	return summary, nil
}

// persistOutcome records the planner's chosen findings and, when a branch
// was published, the pull request row, in one transaction.
func (c *Controller) persistOutcome(ctx context.Context, scan models.Scan, repo models.Repo, bundles []models.PlanBundle, meta *gitpr.Metadata) error {
	tx, err := c.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("opening transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, b := range bundles {
		f := models.Finding{
			ID:          uuid.NewString(),
			ScanID:      scan.ID,
			Severity:    models.NormalizeSeverity(b.Finding.Severity),
			Path:        b.Finding.Path,
			Line:        b.Finding.Line,
			RuleID:      b.Finding.RuleID,
			Description: b.Finding.Message,
			CreatedAt:   now,
		}
		if b.Plan != nil {
			pj, err := json.Marshal(b.Plan)
			if err != nil {
				return fmt.Errorf("encoding patch plan: %w", err)
			}
			f.PlanJSON = string(pj)
		}
		if err := tx.Insert(ctx, "findings", f); err != nil {
			return fmt.Errorf("recording finding: %w", err)
		}
	}

	if meta != nil {
		status := models.PRStatusDraft
		if meta.PRURL != "" {
			status = models.PRStatusOpen
		}
		pr := models.PullRequest{
			ID:        uuid.NewString(),
			RepoID:    repo.ID,
			Branch:    meta.Branch,
			PRURL:     meta.PRURL,
			Status:    status,
			Summary:   planSummaries(bundles),
			CreatedAt: now,
		}
		if err := tx.Insert(ctx, "pull_requests", pr); err != nil {
			return fmt.Errorf("recording pull request: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing outcome: %w", err)
	}
	return nil
}

// planSummaries joins every bundle's summary into the pull request summary.
func planSummaries(bundles []models.PlanBundle) string {
	var parts []string
	for _, b := range bundles {
		if b.Summary != "" {
			parts = append(parts, b.Summary)
		}
	}
	return strings.Join(parts, "; ")
}

func (c *Controller) notify(ctx context.Context, evt notify.Event) {
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(ctx, evt)
}

// markFailed flips the scan to its terminal failed state with the cause in
// the findings payload. Best effort: storage trouble here is only logged.
func (c *Controller) markFailed(ctx context.Context, scanID string, cause error) {
	payload, _ := json.Marshal(map[string]string{"error": cause.Error()})
	if err := c.db.Exec(ctx,
		"UPDATE scans SET status = ?, findings_json = ? WHERE id = ?",
		models.ScanStatusFailed, string(payload), scanID); err != nil {
		slog.Error("could not mark scan failed", "scan_id", scanID, "error", err)
	}
}
