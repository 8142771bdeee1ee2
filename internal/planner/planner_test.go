package planner

import (
	"context"
	"strings"
	"testing"

	"github.com/remedyhq/remedy-agent/internal/ai"
	"github.com/remedyhq/remedy-agent/models"
)

// scriptedCompleter returns canned responses in order and counts calls.
type scriptedCompleter struct {
	responses []string
	calls     int
	prompts   []string
}

func (s *scriptedCompleter) Name() string { return "scripted" }

func (s *scriptedCompleter) IsAvailable(ctx context.Context) bool { return true }

func (s *scriptedCompleter) Complete(ctx context.Context, prompt string) string {
	s.prompts = append(s.prompts, prompt)
	if s.calls >= len(s.responses) {
		return ai.EmptyResult
	}
	resp := s.responses[s.calls]
	s.calls++
	return resp
}

func sampleFindings(n int) []models.RawFinding {
	ids := []string{"f-1", "f-2", "f-3", "f-4", "f-5"}
	out := make([]models.RawFinding, n)
	for i := 0; i < n; i++ {
		out[i] = models.RawFinding{
			FindingID: ids[i],
			Severity:  "HIGH",
			Path:      "main.go",
			RuleID:    "rule-" + ids[i],
			Message:   "issue " + ids[i],
		}
	}
	return out
}

func TestPlanSkipsModelOnZeroFindings(t *testing.T) {
	c := &scriptedCompleter{}
	if got := New(c).Plan(context.Background(), nil); got != nil {
		t.Fatalf("expected nil bundles, got %v", got)
	}
	if c.calls != 0 {
		t.Fatalf("model must not be called for zero findings, got %d calls", c.calls)
	}
}

func TestPlanRanksAndPlansTopThree(t *testing.T) {
	ranking := `{"ordered_findings":[
		{"finding_id":"f-3","fix_strategy":"bump dep","summary":"Bump lodash","justification":"critical"},
		{"finding_id":"f-1","fix_strategy":"use sha256","summary":"Replace md5"},
		{"finding_id":"f-5","fix_strategy":"escape input","summary":"Escape HTML"},
		{"finding_id":"f-2","fix_strategy":"ignored","summary":"beyond the cap"}
	]}`
	plan := `{"finding_id":"f-3","summary":"Bump lodash","fix_kind":"dependency_bump",
		"edits":[{"path":"package.json","match":"4.17.20","replace":"4.17.21"}],
		"test":{"cmd":"npm test","expect":"all green"}}`

	plan5 := `{"finding_id":"f-5","summary":"Escape HTML","fix_kind":"code_edit","edits":[]}`

	c := &scriptedCompleter{responses: []string{ranking, plan, "not json", plan5}}
	bundles := New(c).Plan(context.Background(), sampleFindings(5))

	// f-2 is beyond the cap; f-1's plan response never parses, so only two
	// of the three ranked entries come back as bundles.
	if len(bundles) != 2 {
		t.Fatalf("expected 2 bundles, got %d", len(bundles))
	}
	if c.calls != 4 {
		t.Fatalf("expected 1 ranking + 3 plan calls, got %d", c.calls)
	}

	if bundles[0].Finding.FindingID != "f-3" {
		t.Fatalf("expected ranking order preserved, got %s first", bundles[0].Finding.FindingID)
	}
	if bundles[0].Plan == nil || bundles[0].Plan.FixKind != "dependency_bump" {
		t.Fatalf("expected parsed plan for first bundle: %+v", bundles[0].Plan)
	}
	if bundles[0].Plan.Test == nil || bundles[0].Plan.Test.Cmd != "npm test" {
		t.Fatalf("expected test recipe: %+v", bundles[0].Plan.Test)
	}
	if bundles[1].Finding.FindingID != "f-5" {
		t.Fatalf("expected f-5 after the dropped entry, got %s", bundles[1].Finding.FindingID)
	}
}

func TestPlanDropsEntryOnUnparseablePlan(t *testing.T) {
	ranking := `{"ordered_findings":[{"finding_id":"f-1","fix_strategy":"use sha256","summary":"Replace md5"}]}`

	c := &scriptedCompleter{responses: []string{ranking, "this is not json"}}
	bundles := New(c).Plan(context.Background(), sampleFindings(1))

	if len(bundles) != 0 {
		t.Fatalf("expected no bundles when the plan response is unparseable, got %+v", bundles)
	}
	if c.calls != 2 {
		t.Fatalf("expected ranking + plan calls, got %d", c.calls)
	}
}

func TestPlanSkipsUnknownRankedIDs(t *testing.T) {
	ranking := `{"ordered_findings":[
		{"finding_id":"ghost","summary":"does not exist"},
		{"finding_id":"f-1","fix_strategy":"fix it","summary":"Real one"}
	]}`
	plan := `{"edits":[]}`

	c := &scriptedCompleter{responses: []string{ranking, plan}}
	bundles := New(c).Plan(context.Background(), sampleFindings(2))

	if len(bundles) != 1 {
		t.Fatalf("expected 1 bundle, got %d", len(bundles))
	}
	if bundles[0].Finding.FindingID != "f-1" {
		t.Fatalf("unexpected finding: %+v", bundles[0].Finding)
	}
	// Default-fill from the ranking entry.
	if bundles[0].Plan.FindingID != "f-1" || bundles[0].Plan.Summary != "Real one" {
		t.Fatalf("expected default-filled plan fields: %+v", bundles[0].Plan)
	}
}

func TestPlanToleratesNeutralAndMalformedRanking(t *testing.T) {
	for _, resp := range []string{ai.EmptyRanking, ai.EmptyResult, "garbage", `{"other_key":1}`} {
		c := &scriptedCompleter{responses: []string{resp}}
		if got := New(c).Plan(context.Background(), sampleFindings(2)); got != nil {
			t.Fatalf("response %q: expected nil bundles, got %v", resp, got)
		}
		if c.calls != 1 {
			t.Fatalf("response %q: expected only the ranking call, got %d", resp, c.calls)
		}
	}
}

func TestPlanUnwrapsFencedResponses(t *testing.T) {
	ranking := "```json\n{\"ordered_findings\":[{\"finding_id\":\"f-1\",\"summary\":\"Fenced\"}]}\n```"
	plan := "```\n{\"finding_id\":\"f-1\",\"summary\":\"Fenced\",\"edits\":[]}\n```"

	c := &scriptedCompleter{responses: []string{ranking, plan}}
	bundles := New(c).Plan(context.Background(), sampleFindings(1))
	if len(bundles) != 1 || bundles[0].Plan == nil {
		t.Fatalf("fenced responses must parse, got %+v", bundles)
	}
}

func TestPromptsIncludeFindingPayload(t *testing.T) {
	ranking := `{"ordered_findings":[{"finding_id":"f-1","fix_strategy":"strategy-text","summary":"S"}]}`
	c := &scriptedCompleter{responses: []string{ranking, `{"edits":[]}`}}
	New(c).Plan(context.Background(), sampleFindings(1))

	if len(c.prompts) != 2 {
		t.Fatalf("expected 2 prompts, got %d", len(c.prompts))
	}
	if !strings.Contains(c.prompts[0], `"f-1"`) {
		t.Fatal("ranking prompt must embed the findings JSON")
	}
	if !strings.Contains(c.prompts[1], "strategy-text") {
		t.Fatal("plan prompt must embed the fix strategy")
	}
}
