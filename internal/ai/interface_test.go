package ai

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/remedyhq/remedy-agent/internal/config"
)

func TestNewSelectsProvider(t *testing.T) {
	cases := map[string]string{
		"gemini":    "gemini",
		"anthropic": "anthropic",
		"":          "noop",
		"other":     "noop",
	}
	for provider, want := range cases {
		c := New(config.AIConfig{Provider: provider})
		if c.Name() != want {
			t.Errorf("New(%q).Name() = %q, want %q", provider, c.Name(), want)
		}
	}
}

func TestCompletersDegradeWithoutKeys(t *testing.T) {
	ctx := context.Background()
	completers := []Completer{
		NewGemini(config.AIConfig{}),
		NewAnthropic(config.AIConfig{}),
		NewNoop(),
	}
	for _, c := range completers {
		if c.IsAvailable(ctx) {
			t.Errorf("%s: must not be available without a key", c.Name())
		}
		if got := c.Complete(ctx, "rank these"); got != EmptyRanking {
			t.Errorf("%s: expected neutral ranking without a key, got %q", c.Name(), got)
		}
	}
}

func TestNeutralResponsesParseAsExpected(t *testing.T) {
	var ranking struct {
		OrderedFindings []json.RawMessage `json:"ordered_findings"`
	}
	if err := json.Unmarshal([]byte(EmptyRanking), &ranking); err != nil {
		t.Fatalf("EmptyRanking must be valid JSON: %v", err)
	}
	if len(ranking.OrderedFindings) != 0 {
		t.Fatalf("EmptyRanking must carry no findings, got %d", len(ranking.OrderedFindings))
	}

	var arr []json.RawMessage
	if err := json.Unmarshal([]byte(EmptyResult), &arr); err != nil {
		t.Fatalf("EmptyResult must be a valid JSON array: %v", err)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(EmptyResult), &obj); err == nil {
		t.Fatal("EmptyResult must not parse as an object")
	}
}
