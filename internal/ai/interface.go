package ai

import (
	"context"

	"github.com/remedyhq/remedy-agent/internal/config"
)

// Neutral responses returned when a provider cannot complete. Both parse
// to an empty result at the planner's two parse targets, so a provider
// outage degrades to "no remediation attempted" instead of failing a scan.
const (
	// EmptyRanking parses to a prioritisation with no ordered findings.
	EmptyRanking = `{"ordered_findings":[]}`
	// EmptyResult parses to neither a ranking nor a plan object.
	EmptyResult = `[]`
)

// Completer is the text-completion capability consumed by the planner.
// To add a new provider:
//  1. Create a file in internal/ai/ (e.g. mymodel.go)
//  2. Implement Completer
//  3. Register it in New()
type Completer interface {
	// Name returns the provider identifier (e.g. "gemini").
	Name() string

	// IsAvailable verifies the provider is configured and reachable.
	IsAvailable(ctx context.Context) bool

	// Complete renders a completion for prompt. It NEVER fails: on missing
	// credentials or any provider error it returns one of the neutral JSON
	// strings above.
	Complete(ctx context.Context, prompt string) string
}

// New returns the configured Completer. An empty or unknown provider name
// yields the NoopCompleter, which always returns the neutral ranking.
func New(cfg config.AIConfig) Completer {
	switch cfg.Provider {
	case "gemini":
		return NewGemini(cfg)
	case "anthropic":
		return NewAnthropic(cfg)
	default:
		return NewNoop()
	}
}
