package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/assayer/pkg/domain/model"
)

func TestWebhookEvent_IsSupportedEvent(t *testing.T) {
	tests := []struct {
		name  string
		event model.WebhookEvent
		want  bool
	}{
		{
			name:  "pull_request opened",
			event: model.WebhookEvent{Type: model.EventTypePullRequest, Action: "opened"},
			want:  true,
		},
		{
			name:  "pull_request synchronize",
			event: model.WebhookEvent{Type: model.EventTypePullRequest, Action: "synchronize"},
			want:  true,
		},
		{
			name:  "pull_request closed",
			event: model.WebhookEvent{Type: model.EventTypePullRequest, Action: "closed"},
			want:  false,
		},
		{
			name:  "pull_request edited",
			event: model.WebhookEvent{Type: model.EventTypePullRequest, Action: "edited"},
			want:  false,
		},
		{
			name:  "installation created",
			event: model.WebhookEvent{Type: model.EventTypeInstallation, Action: "created"},
			want:  true,
		},
		{
			name:  "installation deleted",
			event: model.WebhookEvent{Type: model.EventTypeInstallation, Action: "deleted"},
			want:  false,
		},
		{
			name:  "ping",
			event: model.WebhookEvent{Type: model.EventTypePing},
			want:  true,
		},
		{
			name:  "unknown event type",
			event: model.WebhookEvent{Type: model.WebhookEventType("issues"), Action: "opened"},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, tt.event.IsSupportedEvent()).Equal(tt.want)
		})
	}
}

func TestFallbackResults(t *testing.T) {
	t.Run("malformed output restates the title", func(t *testing.T) {
		result := model.MalformedOutputResult("Add retry logic")
		gt.Value(t, result.QualityScore).Equal(7)
		gt.True(t, len(result.Summary) > 0)
		gt.True(t, result.Summary != model.UnavailableResult("x").Summary)
	})

	t.Run("unavailable service carries the reason", func(t *testing.T) {
		result := model.UnavailableResult("connection refused")
		gt.Value(t, result.QualityScore).Equal(5)
		gt.True(t, len(result.Suggestions) > 0)
	})
}
