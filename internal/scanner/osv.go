package scanner

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/remedyhq/remedy-agent/internal/config"
	"github.com/remedyhq/remedy-agent/models"
)

// OSVAdapter runs osv-scanner against a workspace for dependency
// vulnerabilities.
type OSVAdapter struct {
	cfg  config.ScannerConfig
	exec CommandRunner
}

// NewOSV creates an OSVAdapter. exec may be nil to use RunCommand.
func NewOSV(cfg config.ScannerConfig, exec CommandRunner) *OSVAdapter {
	if exec == nil {
		exec = RunCommand
	}
	return &OSVAdapter{cfg: cfg, exec: exec}
}

func (a *OSVAdapter) Name() string { return "osv-scanner" }
func (a *OSVAdapter) Kind() string { return models.ScanKindSCA }

// osvOutput mirrors the subset of osv-scanner's JSON report we consume.
type osvOutput struct {
	Results []struct {
		Source struct {
			Path string `json:"path"`
		} `json:"source"`
		Vulnerabilities []struct {
			ID       string `json:"id"`
			Summary  string `json:"summary"`
			Details  string `json:"details"`
			Severity []struct {
				Type  string `json:"type"`
				Score string `json:"score"`
			} `json:"severity"`
		} `json:"vulnerabilities"`
	} `json:"results"`
}

// Run invokes osv-scanner recursively over the workspace, writing the
// report to a temporary file. osv-scanner exits 1 when it finds
// vulnerabilities; that is a successful run.
func (a *OSVAdapter) Run(ctx context.Context, workspace string) []models.RawFinding {
	tmp, err := os.CreateTemp("", "remedy-osv-*.json")
	if err != nil {
		slog.Warn("Failed to create osv-scanner output file", "error", err)
		return nil
	}
	outPath := tmp.Name()
	tmp.Close()
	defer os.Remove(outPath)

	args := []string{"--recursive", workspace, "--format", "json", "--output", outPath}
	if a.cfg.OSVConfig != "" {
		args = append(args, "--config", a.cfg.OSVConfig)
	}

	res, err := a.exec(ctx, workspace, "osv-scanner", args...)
	if err != nil {
		if IsNotFound(err) {
			slog.Warn("osv-scanner binary not found; skipping dependency scan")
		} else {
			slog.Warn("osv-scanner invocation failed", "error", err)
		}
		return nil
	}

	if Classify("osv-scanner", res.ExitCode) == OutcomeFailure {
		slog.Warn("osv-scanner failed",
			"exit_code", res.ExitCode, "stderr", string(res.Stderr))
		return nil
	}

	data, err := os.ReadFile(outPath) // #nosec G304 -- outPath is our own temp file
	if err != nil {
		slog.Warn("Unable to read osv-scanner output", "error", err)
		return nil
	}

	var out osvOutput
	if err := json.Unmarshal(data, &out); err != nil {
		slog.Warn("Unable to parse osv-scanner output", "error", err)
		return nil
	}

	var findings []models.RawFinding
	for _, entry := range out.Results {
		srcPath := entry.Source.Path
		if rel, err := filepath.Rel(workspace, srcPath); err == nil && rel != "" && rel[0] != '.' {
			srcPath = rel
		}
		for _, vuln := range entry.Vulnerabilities {
			severity := "UNSPECIFIED"
			for _, s := range vuln.Severity {
				if s.Score != "" {
					severity = s.Score
					break
				}
			}
			msg := vuln.Summary
			if msg == "" {
				msg = vuln.Details
			}
			findings = append(findings, models.RawFinding{
				Severity: models.NormalizeSeverity(severity),
				Path:     srcPath,
				RuleID:   vuln.ID,
				Message:  msg,
			})
		}
	}
	return findings
}
