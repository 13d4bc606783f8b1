package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CartMutation("add", "guest")
		m.CartSyncFailure("user")
		m.SetCartsCached(3)
		m.OrderPlaced()
		m.EventPublishFailure()
		m.ObserveRequest("GET", "/health", 200, time.Millisecond)
	})
}

func TestRecorders(t *testing.T) {
	m := New()

	m.CartMutation("add", "guest")
	m.CartMutation("add", "guest")
	m.CartSyncFailure("user")
	m.OrderPlaced()
	m.SetCartsCached(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cartMutations.WithLabelValues("add", "guest")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cartSyncFails.WithLabelValues("user")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersPlaced))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.cartsCached))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodGet, "/menu", http.StatusOK, 5*time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `upahar_http_requests_total{method="GET",route="/menu",status="200"} 1`)
}
