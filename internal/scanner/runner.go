package scanner

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/remedyhq/remedy-agent/internal/config"
	osvapi "github.com/remedyhq/remedy-agent/internal/osv"
	"github.com/remedyhq/remedy-agent/models"
)

// Collector gathers raw findings for one scan kind against one workspace.
type Collector interface {
	Collect(ctx context.Context, kind, workspace string) []models.RawFinding
}

// Runner composes the scanner adapters per scan kind: semgrep for sast;
// osv-scanner plus the syft→grype SBOM pipeline for sca.
type Runner struct {
	semgrep    *SemgrepAdapter
	osv        *OSVAdapter
	syft       *SyftRunner
	grype      *GrypeAdapter
	advisories *osvapi.Enricher
}

// NewRunner constructs a Runner with the default command runner.
func NewRunner(cfg config.ScannerConfig) *Runner {
	return NewRunnerWithExec(cfg, RunCommand)
}

// NewRunnerWithExec constructs a Runner with an injected command runner.
func NewRunnerWithExec(cfg config.ScannerConfig, exec CommandRunner) *Runner {
	return &Runner{
		semgrep:    NewSemgrep(cfg, exec),
		osv:        NewOSV(cfg, exec),
		syft:       NewSyft(exec),
		grype:      NewGrype(exec),
		advisories: osvapi.NewEnricher(),
	}
}

// Collect runs the adapters for kind and returns the union of their
// normalized findings. Individual tool failures degrade to empty results;
// Collect itself never fails.
func (r *Runner) Collect(ctx context.Context, kind, workspace string) []models.RawFinding {
	start := time.Now()
	var findings []models.RawFinding

	switch kind {
	case models.ScanKindSAST:
		findings = r.semgrep.Run(ctx, workspace)
	case models.ScanKindSCA:
		findings = r.osv.Run(ctx, workspace)
		if sbomPath := r.syft.Generate(ctx, workspace); sbomPath != "" {
			findings = append(findings, r.grype.RunSBOM(ctx, sbomPath)...)
			if err := os.Remove(sbomPath); err != nil {
				slog.Warn("Failed to remove SBOM artifact", "path", sbomPath, "error", err)
			}
		}
		if r.advisories != nil {
			findings = r.advisories.Enrich(ctx, findings)
		}
	default:
		slog.Warn("Unknown scan kind", "kind", kind)
	}

	slog.Info("Scanners completed",
		"kind", kind,
		"findings", len(findings),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return findings
}
