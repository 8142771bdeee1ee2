package ai

import "context"

// NoopCompleter is used when no completion provider is configured. Every
// prompt yields the neutral ranking, so scans run without remediation.
type NoopCompleter struct{}

// NewNoop creates a NoopCompleter.
func NewNoop() *NoopCompleter { return &NoopCompleter{} }

func (n *NoopCompleter) Name() string { return "noop" }

func (n *NoopCompleter) IsAvailable(ctx context.Context) bool { return false }

func (n *NoopCompleter) Complete(ctx context.Context, prompt string) string {
	return EmptyRanking
}
