package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCall(t *testing.T) {
	m := New("test")

	m.ObserveCall("tools/call", "search_properties", "ok", 10*time.Millisecond)
	m.ObserveCall("tools/call", "search_properties", "ok", 20*time.Millisecond)
	m.ObserveCall("tools/call", "search_properties", "validation_error", time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `test_mcp_calls_total{capability="search_properties",method="tools/call",outcome="ok"} 2`)
	assert.Contains(t, body, `test_mcp_calls_total{capability="search_properties",method="tools/call",outcome="validation_error"} 1`)
	assert.Contains(t, body, `test_mcp_call_duration_seconds_count{method="tools/call"} 3`)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCall("ping", "", "ok", time.Millisecond)
		m.ObserveHTTP("GET", "/health", 200, time.Millisecond)
	})
}

func TestObserveHTTP(t *testing.T) {
	m := New("test")
	m.ObserveHTTP("POST", "/mcp", 200, 5*time.Millisecond)

	assert.Contains(t, scrape(t, m), `test_http_requests_total{method="POST",route="/mcp",status="200"} 1`)
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}
