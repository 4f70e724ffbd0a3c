package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionsCounted(t *testing.T) {
	m := NewMetrics()
	m.ObserveTransition("parcel", "received", "collected", false)
	m.ObserveTransition("parcel", "received", "collected", false)
	m.ObserveTransition("parcel", "received", "acknowledged", true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("parcel", "received", "collected", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("parcel", "received", "acknowledged", "true")))
}

func TestErrorsAndPublish(t *testing.T) {
	m := NewMetrics()
	m.ObserveError("FORBIDDEN")
	m.ObservePublish("parcel_received", nil)
	m.ObservePublish("parcel_received", errors.New("down"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("FORBIDDEN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.published.WithLabelValues("parcel_received", "error")))
}

func TestHandlerExposesRequests(t *testing.T) {
	m := NewMetrics()
	m.ObserveRequest("/api/parcels", http.MethodGet, 200, 20*time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `vpms_http_requests_total{method="GET",route="/api/parcels",status="200"} 1`)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("", "GET", 200, time.Second)
	m.ObserveTransition("visitor", "new", "exited", false)
	m.ObserveError("INTERNAL")
	m.ObservePublish("x", nil)
	assert.Nil(t, m.Registry())
}
