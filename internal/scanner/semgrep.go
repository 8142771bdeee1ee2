package scanner

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/remedyhq/remedy-agent/internal/config"
	"github.com/remedyhq/remedy-agent/models"
)

// SemgrepAdapter runs semgrep against a workspace for SAST findings.
type SemgrepAdapter struct {
	cfg  config.ScannerConfig
	exec CommandRunner
}

// NewSemgrep creates a SemgrepAdapter. exec may be nil to use RunCommand.
func NewSemgrep(cfg config.ScannerConfig, exec CommandRunner) *SemgrepAdapter {
	if exec == nil {
		exec = RunCommand
	}
	return &SemgrepAdapter{cfg: cfg, exec: exec}
}

func (a *SemgrepAdapter) Name() string { return "semgrep" }
func (a *SemgrepAdapter) Kind() string { return models.ScanKindSAST }

// semgrepOutput mirrors the subset of semgrep's JSON output we consume.
type semgrepOutput struct {
	Results []struct {
		CheckID string `json:"check_id"`
		Path    string `json:"path"`
		Start   struct {
			Line int `json:"line"`
		} `json:"start"`
		Extra struct {
			Message  string `json:"message"`
			Severity string `json:"severity"`
			Metadata struct {
				ShortMessage string `json:"short_message"`
			} `json:"metadata"`
		} `json:"extra"`
	} `json:"results"`
}

// Run invokes semgrep in the workspace and normalizes its results.
// Tool absence, unexpected exit codes and malformed output all degrade to
// an empty finding list.
func (a *SemgrepAdapter) Run(ctx context.Context, workspace string) []models.RawFinding {
	timeout := a.cfg.TimeoutSec
	if timeout <= 0 {
		timeout = 180
	}
	ruleset := a.cfg.SemgrepConfig
	if ruleset == "" {
		ruleset = "auto"
	}

	res, err := a.exec(ctx, workspace, "semgrep",
		"--config", ruleset,
		"--json",
		"--timeout", strconv.Itoa(timeout),
		"--quiet",
	)
	if err != nil {
		if IsNotFound(err) {
			slog.Warn("semgrep binary not found; skipping SAST scan")
		} else {
			slog.Warn("semgrep invocation failed", "error", err)
		}
		return nil
	}

	if Classify("semgrep", res.ExitCode) == OutcomeFailure {
		slog.Warn("semgrep failed",
			"exit_code", res.ExitCode, "stderr", string(res.Stderr))
		return nil
	}

	var out semgrepOutput
	if err := json.Unmarshal(res.Stdout, &out); err != nil {
		slog.Warn("semgrep returned invalid JSON output", "error", err)
		return nil
	}

	findings := make([]models.RawFinding, 0, len(out.Results))
	for _, r := range out.Results {
		var line *int
		if r.Start.Line > 0 {
			l := r.Start.Line
			line = &l
		}
		msg := r.Extra.Message
		if msg == "" {
			msg = r.Extra.Metadata.ShortMessage
		}
		sev := r.Extra.Severity
		if sev == "" {
			sev = string(models.SeverityMedium)
		}
		findings = append(findings, models.RawFinding{
			Severity: models.NormalizeSeverity(sev),
			Path:     r.Path,
			Line:     line,
			RuleID:   r.CheckID,
			Message:  msg,
		})
	}
	return findings
}
