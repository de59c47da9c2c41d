package model

import "time"

// WebhookEventType represents the type of webhook event received
type WebhookEventType string

const (
	EventTypePullRequest  WebhookEventType = "pull_request"
	EventTypeInstallation WebhookEventType = "installation"
	EventTypePing         WebhookEventType = "ping"
	EventTypeUnknown      WebhookEventType = "unknown"
)

// WebhookEvent represents a webhook event received from GitHub
type WebhookEvent struct {
	ID         string           // Retrieved from X-GitHub-Delivery header
	Type       WebhookEventType // Retrieved from X-GitHub-Event header
	Action     string           // Event action (e.g., opened, synchronize)
	Repository string           // Repository full name
	Sender     string           // Sender username
	ReceivedAt time.Time        // Time when the event was received
	RawPayload []byte           // Raw JSON payload
}

// IsSupportedEvent checks if the event triggers any processing
func (e *WebhookEvent) IsSupportedEvent() bool {
	switch e.Type {
	case EventTypePullRequest:
		return e.Action == "opened" || e.Action == "synchronize"
	case EventTypeInstallation:
		return e.Action == "created"
	case EventTypePing:
		return true
	default:
		return false
	}
}
