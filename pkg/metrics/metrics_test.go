package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordLifecycle(t *testing.T) {
	before := testutil.ToFloat64(lifecycleEvents.WithLabelValues("auto", "renew", "renewed"))

	RecordLifecycle("auto", "renew", "renewed")
	RecordLifecycle("auto", "renew", "renewed")

	after := testutil.ToFloat64(lifecycleEvents.WithLabelValues("auto", "renew", "renewed"))
	assert.Equal(t, before+2, after)
}

func TestObserveRequest(t *testing.T) {
	assert.NotPanics(t, func() {
		ObserveRequest("GET", "/health", 200, 15*time.Millisecond)
		ObserveQuotedPremium("home", 145_000)
	})
}
