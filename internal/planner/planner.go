// Package planner turns scanner findings into ranked, concrete patch plans
// by driving a completion model through two prompt stages.
package planner

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"log/slog"
	"strings"
	"text/template"

	"github.com/remedyhq/remedy-agent/internal/ai"
	"github.com/remedyhq/remedy-agent/models"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var prompts = template.Must(template.ParseFS(promptFS, "prompts/*.tmpl"))

// maxPlans bounds how many findings get a full patch plan per scan.
const maxPlans = 3

type Planner struct {
	completer ai.Completer
}

func New(completer ai.Completer) *Planner {
	return &Planner{completer: completer}
}

// Plan ranks the findings, keeps the top candidates, and asks the model for
// a patch plan for each. It never fails: malformed model output shrinks the
// result, and zero findings short-circuits without any model call.
func (p *Planner) Plan(ctx context.Context, findings []models.RawFinding) []models.PlanBundle {
	if len(findings) == 0 {
		return nil
	}

	ranked := p.prioritize(ctx, findings)
	if len(ranked) == 0 {
		slog.Info("planner produced no ranked findings", "input", len(findings))
		return nil
	}
	if len(ranked) > maxPlans {
		ranked = ranked[:maxPlans]
	}

	byID := make(map[string]models.RawFinding, len(findings))
	for _, f := range findings {
		byID[f.FindingID] = f
	}

	var bundles []models.PlanBundle
	for _, entry := range ranked {
		finding, ok := byID[entry.FindingID]
		if !ok {
			slog.Warn("ranked finding not in scan results, skipping", "finding_id", entry.FindingID)
			continue
		}

		plan := p.planPatch(ctx, finding, entry)
		if plan == nil {
			continue
		}
		bundles = append(bundles, models.PlanBundle{
			Finding:       finding,
			Summary:       entry.Summary,
			Justification: entry.Justification,
			Plan:          plan,
		})
	}
	return bundles
}

func (p *Planner) prioritize(ctx context.Context, findings []models.RawFinding) []models.RankedFinding {
	payload, err := json.MarshalIndent(findings, "", "  ")
	if err != nil {
		slog.Warn("failed to encode findings for prioritisation", "error", err)
		return nil
	}

	prompt, err := renderPrompt("prioritize.tmpl", map[string]string{
		"Findings": string(payload),
	})
	if err != nil {
		slog.Warn("failed to render prioritisation prompt", "error", err)
		return nil
	}

	raw := stripFences(p.completer.Complete(ctx, prompt))

	var ranking struct {
		OrderedFindings []models.RankedFinding `json:"ordered_findings"`
	}
	if err := json.Unmarshal([]byte(raw), &ranking); err != nil {
		slog.Warn("prioritisation response is not valid JSON", "error", err)
		return nil
	}
	return ranking.OrderedFindings
}

func (p *Planner) planPatch(ctx context.Context, finding models.RawFinding, entry models.RankedFinding) *models.PatchPlan {
	payload, err := json.MarshalIndent(finding, "", "  ")
	if err != nil {
		slog.Warn("failed to encode finding for patch planning", "error", err)
		return nil
	}

	prompt, err := renderPrompt("plan_patch.tmpl", map[string]string{
		"Finding":     string(payload),
		"FixStrategy": entry.FixStrategy,
	})
	if err != nil {
		slog.Warn("failed to render patch plan prompt", "error", err)
		return nil
	}

	raw := stripFences(p.completer.Complete(ctx, prompt))

	var plan models.PatchPlan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		slog.Warn("patch plan response is not a JSON object, skipping",
			"finding_id", finding.FindingID, "error", err)
		return nil
	}
	if plan.FindingID == "" {
		plan.FindingID = finding.FindingID
	}
	if plan.Summary == "" {
		plan.Summary = entry.Summary
	}
	return &plan
}

func renderPrompt(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// stripFences removes a surrounding markdown code fence so models that wrap
// their JSON in ```json blocks still parse.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
