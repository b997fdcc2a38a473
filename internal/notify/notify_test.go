package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/coverline/internal/contracts"
	"github.com/wonny/coverline/pkg/config"
	"github.com/wonny/coverline/pkg/httputil"
	"github.com/wonny/coverline/pkg/logger"
	"github.com/wonny/coverline/pkg/redis"
)

func testConfig(url string) *config.Config {
	return &config.Config{Webhook: config.WebhookConfig{URL: url, Timeout: 2 * time.Second}}
}

func TestNew_NopWithoutURL(t *testing.T) {
	n := New(testConfig(""), nil, logger.NewNop())
	assert.IsType(t, Nop{}, n)
	assert.NoError(t, n.Notify(context.Background(), Event{Type: QuoteCreated}))
}

func TestWebhook_PostsEvent(t *testing.T) {
	received := make(chan Event, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var e Event
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		received <- e
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	n := New(testConfig(server.URL), nil, logger.NewNop())
	require.IsType(t, &Webhook{}, n)

	err := n.Notify(context.Background(), Event{
		Type:       PolicyRenewed,
		Product:    contracts.ProductAuto,
		UserID:     "u-1",
		SubjectID:  "p-2",
		PreviousID: "p-1",
	})
	require.NoError(t, err)

	e := <-received
	assert.Equal(t, PolicyRenewed, e.Type)
	assert.Equal(t, contracts.ProductAuto, e.Product)
	assert.Equal(t, "p-1", e.PreviousID)
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.OccurredAt.IsZero())
}

func TestWebhook_RejectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := httputil.New(testConfig(server.URL), logger.NewNop()).DisableRetry()
	err := NewWebhook(server.URL, client, logger.NewNop()).Notify(context.Background(), Event{Type: QuoteCancelled})
	assert.Error(t, err)
}

func TestWebhook_WithLimiter(t *testing.T) {
	hits := make(chan struct{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits <- struct{}{}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	rc, err := redis.New(&config.Config{})
	require.NoError(t, err)
	cfg := testConfig(server.URL)
	cfg.Webhook.RatePerSecond = 1

	// A disabled redis client admits every post
	n := New(cfg, redis.NewRateLimiter(rc, "test"), logger.NewNop())
	require.NoError(t, n.Notify(context.Background(), Event{Type: PolicyIssued}))
	<-hits
}
