package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Mattermost posts messages to Mattermost (or Slack-compatible) incoming
// webhooks.
type Mattermost struct {
	client   *http.Client
	username string
}

// NewMattermost creates a new webhook sender. An empty username falls back
// to DefaultUsername.
func NewMattermost(username string) *Mattermost {
	if username == "" {
		username = DefaultUsername
	}
	return &Mattermost{
		client:   &http.Client{Timeout: 10 * time.Second},
		username: username,
	}
}

// Send performs exactly one POST. Any transport error or non-2xx status is
// returned as an error.
func (m *Mattermost) Send(ctx context.Context, webhookURL, text string) error {
	body, err := json.Marshal(Message{Text: text, Username: m.username})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "newsrelay/1.0")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook status %d", resp.StatusCode)
	}

	return nil
}
