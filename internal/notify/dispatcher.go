package notify

import (
	"context"
	"log/slog"

	"github.com/remedyhq/remedy-agent/internal/config"
)

// Dispatcher fans out events to all configured channels.
type Dispatcher struct {
	channels []Channel
}

// NewDispatcher creates a Dispatcher from the given config.
// Only channels with IsConfigured() == true are active.
func NewDispatcher(cfg config.NotifyConfig) *Dispatcher {
	d := &Dispatcher{}
	for _, ch := range []Channel{
		NewSlack(cfg.SlackWebhookURL),
		NewWebhook(cfg.WebhookURL),
	} {
		if ch.IsConfigured() {
			d.channels = append(d.channels, ch)
		}
	}
	return d
}

// Notify sends evt to all configured channels. Errors are logged but never
// returned.
func (d *Dispatcher) Notify(ctx context.Context, evt Event) {
	for _, ch := range d.channels {
		if err := ch.Send(ctx, evt); err != nil {
			slog.Warn("notify: channel send failed",
				"channel", ch.Name(), "event", evt.Type, "error", err)
		}
	}
}
