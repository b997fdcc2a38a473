package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wonny/coverline/internal/contracts"
	"github.com/wonny/coverline/pkg/config"
	"github.com/wonny/coverline/pkg/httputil"
	"github.com/wonny/coverline/pkg/logger"
	"github.com/wonny/coverline/pkg/redis"
)

// EventType names a lifecycle transition
type EventType string

const (
	QuoteCreated     EventType = "quote.created"
	QuoteCancelled   EventType = "quote.cancelled"
	PolicyIssued     EventType = "policy.issued"
	PolicyRenewed    EventType = "policy.renewed"
	PolicyCancelled  EventType = "policy.cancelled"
	PolicyRenewalDue EventType = "policy.renewal_due"
)

// Event is the JSON body posted to the webhook
type Event struct {
	ID         string            `json:"id"`
	Type       EventType         `json:"type"`
	Product    contracts.Product `json:"product"`
	UserID     string            `json:"user_id"`
	SubjectID  string            `json:"subject_id"`            // quote or policy id
	PreviousID string            `json:"previous_id,omitempty"` // predecessor on renewal, source quote on issue
	OccurredAt time.Time         `json:"occurred_at"`
	Data       any               `json:"data,omitempty"`
}

// Notifier publishes lifecycle events
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// New returns a webhook notifier when a URL is configured, otherwise a no-op.
// A non-nil limiter caps outbound posts at Webhook.RatePerSecond.
func New(cfg *config.Config, limiter *redis.RateLimiter, log *logger.Logger) Notifier {
	if cfg.Webhook.URL == "" {
		return Nop{}
	}
	client := httputil.New(cfg, log)
	if limiter != nil && cfg.Webhook.RatePerSecond > 0 {
		client.WithRateLimiter(limiter, redis.WebhookRateLimit(cfg.Webhook.RatePerSecond))
	}
	return NewWebhook(cfg.Webhook.URL, client, log)
}

// Nop drops every event
type Nop struct{}

// Notify does nothing
func (Nop) Notify(context.Context, Event) error { return nil }

// Webhook posts events as JSON through the retrying HTTP client
type Webhook struct {
	url    string
	client *httputil.Client
	logger *logger.Logger
}

// NewWebhook creates a webhook notifier
func NewWebhook(url string, client *httputil.Client, log *logger.Logger) *Webhook {
	return &Webhook{url: url, client: client, logger: log}
}

// Notify posts the event; any non-2xx answer is an error
func (w *Webhook) Notify(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = contracts.NewID()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	resp, err := w.client.PostJSON(ctx, w.url, event)
	if err != nil {
		return fmt.Errorf("failed to post %s event: %w", event.Type, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook rejected %s event: status %d", event.Type, resp.StatusCode)
	}

	w.logger.WithFields(map[string]interface{}{
		"event":   event.Type,
		"subject": event.SubjectID,
	}).Debug("Webhook delivered")
	return nil
}
