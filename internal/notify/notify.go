// Package notify fans notifications out to independent sinks.
package notify

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jy02140251/deploy-watcher/internal/config"
	"github.com/jy02140251/deploy-watcher/internal/probe"
)

// Sink delivers one notification to a single destination.
type Sink interface {
	Name() string
	Send(ctx context.Context, message string, results []probe.Result) error
}

// Outcome records one sink's delivery result.
type Outcome struct {
	Sink string
	Err  error
}

const sinkTimeout = 10 * time.Second

// Notifier delivers notifications to every configured sink concurrently.
// Delivery is best-effort: a failing sink never affects its siblings and
// never surfaces an error to the caller.
type Notifier struct {
	sinks  []Sink
	client *http.Client
	logger *slog.Logger
}

// New builds a Notifier from the notifications config. Sinks with no URL
// configured are skipped; an invalid shoutrrr URL or template is a startup
// error.
func New(cfg config.Notifications, logger *slog.Logger) (*Notifier, error) {
	n := &Notifier{
		client: &http.Client{Timeout: sinkTimeout},
		logger: logger,
	}

	if cfg.Slack.WebhookURL != "" {
		n.sinks = append(n.sinks, &Slack{URL: cfg.Slack.WebhookURL, Client: n.client})
	}
	if cfg.Webhook.URL != "" {
		n.sinks = append(n.sinks, &Webhook{URL: cfg.Webhook.URL, Client: n.client})
	}
	if cfg.Shoutrrr.URL != "" {
		s, err := NewShoutrrr(cfg.Shoutrrr.URL, cfg.Shoutrrr.Template)
		if err != nil {
			return nil, err
		}
		n.sinks = append(n.sinks, s)
	}

	return n, nil
}

// Sinks reports the names of the configured sinks.
func (n *Notifier) Sinks() []string {
	names := make([]string, len(n.sinks))
	for i, s := range n.sinks {
		names[i] = s.Name()
	}
	return names
}

// Notify dispatches to all sinks concurrently and waits for every one,
// collecting a per-sink outcome. Returns immediately when no sinks are
// configured.
func (n *Notifier) Notify(ctx context.Context, message string, results []probe.Result) []Outcome {
	if len(n.sinks) == 0 {
		return nil
	}

	outcomes := make([]Outcome, len(n.sinks))
	var wg sync.WaitGroup
	for i, s := range n.sinks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i] = Outcome{Sink: s.Name(), Err: s.Send(ctx, message, results)}
		}()
	}
	wg.Wait()

	for _, o := range outcomes {
		if o.Err != nil {
			n.logger.Error("notification failed", "sink", o.Sink, "error", o.Err)
		} else {
			n.logger.Debug("notification sent", "sink", o.Sink)
		}
	}
	return outcomes
}

// Close releases idle network connections.
func (n *Notifier) Close() {
	n.client.CloseIdleConnections()
}
