package http

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"

	"github.com/m-mizutani/assayer/pkg/domain/interfaces"
	"github.com/m-mizutani/assayer/pkg/domain/model"
	"github.com/m-mizutani/assayer/pkg/utils/async"
)

// WebhookHandler handles GitHub webhook deliveries: verify the
// signature, acknowledge immediately, then hand the event to a detached
// background task. Orchestration failures can never affect the HTTP
// status already committed.
type WebhookHandler struct {
	secret    string
	processor interfaces.EventProcessor
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(secret string, processor interfaces.EventProcessor) *WebhookHandler {
	return &WebhookHandler{
		secret:    secret,
		processor: processor,
	}
}

// payloadEnvelope is the minimal shape peeked at for logging and
// classification. Full typed decoding happens in the background task,
// keyed on the event header.
type payloadEnvelope struct {
	Action     string `json:"action"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
	Sender struct {
		Login string `json:"login"`
	} `json:"sender"`
}

// Handle processes one webhook delivery
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error("Failed to read request body", "error", err)
		writeJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "failed to read request body"})
		return
	}
	defer r.Body.Close()

	deliveryID := r.Header.Get("X-GitHub-Delivery")
	if deliveryID == "" {
		deliveryID = uuid.NewString()
	}

	// Signature first: an unauthenticated payload is never parsed
	if !verifySignature(body, r.Header.Get("X-Hub-Signature-256"), h.secret) {
		logger.Warn("Invalid webhook signature", "delivery_id", deliveryID)
		writeJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "Invalid signature"})
		return
	}

	eventType := r.Header.Get("X-GitHub-Event")

	var envelope payloadEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		logger.Error("Failed to parse webhook payload", "error", err, "delivery_id", deliveryID)
		writeJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid JSON payload"})
		return
	}

	event := &model.WebhookEvent{
		ID:         deliveryID,
		Type:       model.WebhookEventType(eventType),
		Action:     envelope.Action,
		Repository: envelope.Repository.FullName,
		Sender:     envelope.Sender.Login,
		ReceivedAt: time.Now(),
		RawPayload: body,
	}

	logger.Info("Webhook delivery accepted",
		"event_type", event.Type,
		"action", event.Action,
		"repository", event.Repository,
		"sender", event.Sender,
		"delivery_id", deliveryID,
		"supported", event.IsSupportedEvent(),
	)

	// Acknowledge before any orchestration side effect. GitHub expects a
	// fast response; the heavy work runs after this commits.
	writeJSON(ctx, w, http.StatusAccepted, map[string]any{
		"accepted":   true,
		"event":      eventType,
		"deliveryId": deliveryID,
	})

	async.Dispatch(ctx, "webhook-event", func(ctx context.Context) error {
		return h.processor.ProcessEvent(ctx, event)
	})
}

// verifySignature checks the HMAC-SHA256 signature of the raw body in
// constant time. Missing header, malformed header and empty secret all
// verify as false.
func verifySignature(payload []byte, signatureHeader, secret string) bool {
	if signatureHeader == "" || secret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signatureHeader), []byte(expected))
}
