package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/remedyhq/remedy-agent/models"
)

// GrypeAdapter matches a previously generated SBOM artifact against the
// grype vulnerability database.
type GrypeAdapter struct {
	exec CommandRunner
}

// NewGrype creates a GrypeAdapter. exec may be nil to use RunCommand.
func NewGrype(exec CommandRunner) *GrypeAdapter {
	if exec == nil {
		exec = RunCommand
	}
	return &GrypeAdapter{exec: exec}
}

func (a *GrypeAdapter) Name() string { return "grype" }
func (a *GrypeAdapter) Kind() string { return models.ScanKindSCA }

// grypeOutput mirrors the subset of grype's JSON output we consume.
type grypeOutput struct {
	Matches []struct {
		Vulnerability struct {
			ID          string `json:"id"`
			Severity    string `json:"severity"`
			Description string `json:"description"`
		} `json:"vulnerability"`
		Artifact struct {
			Name      string `json:"name"`
			Version   string `json:"version"`
			Locations []struct {
				Path string `json:"path"`
			} `json:"locations"`
		} `json:"artifact"`
	} `json:"matches"`
}

// RunSBOM scans the SBOM at sbomPath. grype exits 1 when vulnerabilities
// are found; that is a successful run.
func (a *GrypeAdapter) RunSBOM(ctx context.Context, sbomPath string) []models.RawFinding {
	if _, err := os.Stat(sbomPath); err != nil {
		return nil
	}

	res, err := a.exec(ctx, "", "grype", fmt.Sprintf("sbom:%s", sbomPath), "-o", "json")
	if err != nil {
		if IsNotFound(err) {
			slog.Warn("grype binary not found; skipping SBOM scan")
		} else {
			slog.Warn("grype invocation failed", "error", err)
		}
		return nil
	}

	if Classify("grype", res.ExitCode) == OutcomeFailure {
		slog.Warn("grype failed", "exit_code", res.ExitCode, "stderr", string(res.Stderr))
		return nil
	}

	var out grypeOutput
	if err := json.Unmarshal(res.Stdout, &out); err != nil {
		slog.Warn("grype returned invalid JSON", "error", err)
		return nil
	}

	var findings []models.RawFinding
	for _, m := range out.Matches {
		if m.Vulnerability.ID == "" {
			continue
		}
		path := m.Artifact.Name
		if len(m.Artifact.Locations) > 0 && m.Artifact.Locations[0].Path != "" {
			path = m.Artifact.Locations[0].Path
		}
		if path == "" {
			path = "dependency"
		}
		msg := m.Vulnerability.Description
		if msg == "" {
			msg = fmt.Sprintf("%s %s vulnerable (%s)",
				m.Artifact.Name, m.Artifact.Version, m.Vulnerability.ID)
		}
		findings = append(findings, models.RawFinding{
			Severity: models.NormalizeSeverity(m.Vulnerability.Severity),
			Path:     path,
			RuleID:   m.Vulnerability.ID,
			Message:  msg,
		})
	}
	return findings
}
