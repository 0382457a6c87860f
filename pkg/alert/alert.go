package alert

import "context"

// DefaultUsername is the sender label shown in the chat channel.
const DefaultUsername = "RSS_BOT"

// Message is the JSON payload posted to an incoming webhook.
type Message struct {
	Text     string `json:"text"`
	Username string `json:"username"`
}

// Sender delivers a rendered message to a webhook URL.
type Sender interface {
	Send(ctx context.Context, webhookURL, text string) error
}
