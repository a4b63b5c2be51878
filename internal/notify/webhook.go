package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jy02140251/deploy-watcher/internal/probe"
)

// Webhook posts the message, the full serialized result list, and a
// timestamp to a generic webhook URL.
type Webhook struct {
	URL    string
	Client *http.Client
}

type webhookPayload struct {
	Message   string         `json:"message"`
	Results   []probe.Result `json:"results"`
	Timestamp string         `json:"timestamp"`
}

func (w *Webhook) Name() string { return "webhook" }

func (w *Webhook) Send(ctx context.Context, message string, results []probe.Result) error {
	body, err := json.Marshal(webhookPayload{
		Message:   message,
		Results:   results,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("encoding webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("posting to webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}
