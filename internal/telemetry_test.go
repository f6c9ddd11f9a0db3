package lithotop

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelemetryCounters(t *testing.T) {
	tel := NewTelemetry()
	tel.ObserveRequest("stats", time.Now(), nil)
	tel.ObserveRequest("stats", time.Now(), errors.New("boom"))
	tel.CountReload("timer")
	tel.CountStale(loadChart)

	assert.Equal(t, 1.0, testutil.ToFloat64(tel.requests.WithLabelValues("stats", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(tel.requests.WithLabelValues("stats", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(tel.stale.WithLabelValues("chart")))
	assert.Equal(t, 1, testutil.CollectAndCount(tel.latency))
}

func TestTelemetryNilSafe(t *testing.T) {
	var tel *Telemetry
	assert.NotPanics(t, func() {
		tel.ObserveRequest("machines", time.Now(), nil)
		tel.CountReload("user")
		tel.CountStale(loadData)
	})
}

func TestTelemetryTotals(t *testing.T) {
	tel := NewTelemetry()
	tel.ObserveRequest("stats", time.Now(), nil)
	tel.ObserveRequest("metrics", time.Now(), errors.New("boom"))
	tel.ObserveRequest("metrics", time.Now(), nil)
	tel.CountReload("user")
	tel.CountReload("timer")

	totals, err := tel.Totals()
	require.NoError(t, err)
	assert.Equal(t, 3.0, totals["lithotop_api_requests_total"])
	assert.Equal(t, 3.0, totals["lithotop_api_request_duration_seconds"])
	assert.Equal(t, 2.0, totals["lithotop_reloads_total"])
	assert.NotContains(t, totals, "lithotop_stale_responses_total")
}

func TestTelemetryWriteText(t *testing.T) {
	tel := NewTelemetry()
	tel.CountReload("user")

	var buf bytes.Buffer
	require.NoError(t, tel.WriteText(&buf))
	assert.Contains(t, buf.String(), `lithotop_reloads_total{trigger="user"} 1`)
}

func TestTelemetryHandler(t *testing.T) {
	tel := NewTelemetry()
	tel.CountStale(loadLusu)

	rec := httptest.NewRecorder()
	tel.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "lithotop_stale_responses_total")
}
