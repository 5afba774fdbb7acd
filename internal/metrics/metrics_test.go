package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestIndependentRegistries(t *testing.T) {
	a := New()
	b := New()

	a.ObserveHTTP("/api/products", "GET", 200, 10*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(a.HTTPRequests.WithLabelValues("/api/products", "GET", "200")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.HTTPRequests.WithLabelValues("/api/products", "GET", "200")))
}

func TestObserveResults(t *testing.T) {
	m := New()
	m.ObserveGateway("create_order", nil)
	m.ObserveGateway("create_order", errors.New("timeout"))
	m.ObserveEmail("otp", nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GatewayCalls.WithLabelValues("create_order", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GatewayCalls.WithLabelValues("create_order", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmailsSent.WithLabelValues("otp", "ok")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.OrderTotalMismatches.Inc()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "storefront_order_total_mismatches_total 1")
}
