package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jy02140251/deploy-watcher/internal/probe"
)

// Slack posts to a Slack incoming-webhook URL with a blocks payload:
// a bolded summary section followed by one section per result.
type Slack struct {
	URL    string
	Client *http.Client
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackBlock struct {
	Type string    `json:"type"`
	Text slackText `json:"text"`
}

type slackPayload struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

func (s *Slack) Name() string { return "slack" }

func (s *Slack) Send(ctx context.Context, message string, results []probe.Result) error {
	blocks := make([]slackBlock, 0, len(results)+1)
	blocks = append(blocks, slackBlock{
		Type: "section",
		Text: slackText{Type: "mrkdwn", Text: "*" + message + "*"},
	})
	for _, r := range results {
		line := fmt.Sprintf("%s *%s*: %s (%.0fms)",
			slackEmoji(r.Status), r.Service, r.Status, r.ResponseTime)
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: slackText{Type: "mrkdwn", Text: line},
		})
	}

	body, err := json.Marshal(slackPayload{Text: message, Blocks: blocks})
	if err != nil {
		return fmt.Errorf("encoding slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("posting to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("slack returned %s", resp.Status)
	}
	return nil
}

func slackEmoji(s probe.Status) string {
	switch s {
	case probe.StatusHealthy:
		return ":white_check_mark:"
	case probe.StatusDegraded:
		return ":warning:"
	case probe.StatusDown:
		return ":red_circle:"
	case probe.StatusUnknown:
		return ":grey_question:"
	}
	return ":grey_question:"
}
