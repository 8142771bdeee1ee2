// Package notify fans out scan outcomes to configured channels. Delivery is
// best-effort: a failing channel is logged and never blocks the pipeline.
package notify

import "context"

// Event types emitted by the pipeline.
const (
	EventPROpened      = "pr_opened"
	EventScanFailed    = "scan_failed"
	EventScanCompleted = "scan_completed"
)

// Event is one notification from the remediation pipeline.
type Event struct {
	Type     string // pr_opened | scan_failed | scan_completed
	Title    string
	Body     string
	URL      string // optional deep link (e.g. PR URL)
	Severity string // highest severity involved, lowercase, or ""
	Repo     string
}

// Channel is implemented by each notification provider.
type Channel interface {
	Name() string
	IsConfigured() bool
	Send(ctx context.Context, evt Event) error
}
