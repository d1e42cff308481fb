package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetricsCounters(t *testing.T) {
	m := NewPrometheusMetrics()

	m.RecordCheckout("cash", "completed")
	m.RecordCheckout("cash", "completed")
	m.RecordCheckout("maya_checkout", "pending")
	m.RecordReconciliation("callback", "completed")
	m.RecordGatewayRequest("create_checkout", "200", 120*time.Millisecond)
	m.RecordHTTPRequest("/api/pos/checkout", "200", 35*time.Millisecond)
	m.SetDBPoolStats(3, 10)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.checkouts.WithLabelValues("cash", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.checkouts.WithLabelValues("maya_checkout", "pending")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reconciliations.WithLabelValues("callback", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.gatewayRequests.WithLabelValues("create_checkout", "200")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.dbPoolInUse))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.dbPoolOpen))
}

func TestPrometheusMetricsHandler(t *testing.T) {
	m := NewPrometheusMetrics()
	m.RecordHTTPRequest("/healthz", "200", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, name := range []string{
		"pos_http_requests_total",
		"pos_http_request_duration_ms",
		"pos_db_pool_in_use",
		"pos_db_pool_open",
	} {
		assert.True(t, strings.Contains(body, name), "missing %s", name)
	}
}
