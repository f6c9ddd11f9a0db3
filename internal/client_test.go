package lithotop

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/jondoveston/lithotop/internal/fixture"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixtureClient(t *testing.T, telemetry *Telemetry) *APIClient {
	t.Helper()
	srv := httptest.NewServer(fixture.New(fixture.Default()))
	t.Cleanup(srv.Close)
	base, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return NewAPIClient(base, 5*time.Second, telemetry)
}

func TestAPIClientMachines(t *testing.T) {
	telemetry := NewTelemetry()
	c := newFixtureClient(t, telemetry)

	machines, err := c.Machines(context.Background())
	require.NoError(t, err)
	require.Len(t, machines, 3)
	assert.Equal(t, Machine{ID: "LITHO-01", Name: "Scanner 01", Type: "XT-1900", Enabled: true}, machines[0])
	assert.False(t, machines[2].Enabled)

	assert.Equal(t, 1.0, testutil.ToFloat64(telemetry.requests.WithLabelValues("machines", "ok")))
}

func TestAPIClientMetricsAndStats(t *testing.T) {
	c := newFixtureClient(t, nil)
	ctx := context.Background()

	metrics, err := c.Metrics(ctx, "LITHO-01", 2)
	require.NoError(t, err)
	require.Len(t, metrics, 2)
	assert.Equal(t, "recipe", metrics[0].MetricName)
	assert.Equal(t, `layer "M1", rev 2`, metrics[0].Value)
	assert.Equal(t, "2024-03-02T09:00:00", metrics[0].Timestamp)

	stats, err := c.Stats(ctx, "LITHO-01")
	require.NoError(t, err)
	require.Len(t, stats, 3)
	assert.Equal(t, "dose", stats[0].MetricName)
	assert.Equal(t, int64(1), stats[0].RecordCount)
	assert.Equal(t, 2024, stats[0].LastRecord.Year())
}

func TestAPIClientLusuProcessed(t *testing.T) {
	c := newFixtureClient(t, nil)

	data, err := c.LusuProcessed(context.Background(), "LITHO-01")
	require.NoError(t, err)
	assert.Equal(t, 4, data.TotalRecords)
	require.Len(t, data.Records, 4)

	rec := data.Records[0]
	assert.Equal(t, "LITHO-01", rec.MachineID)
	assert.False(t, rec.Timestamp.IsZero())
	assert.NotContains(t, rec.Values, "machine_id")
	assert.NotContains(t, rec.Values, "record_timestamp")

	empty, err := c.LusuProcessed(context.Background(), "LITHO-02")
	require.NoError(t, err)
	assert.Zero(t, empty.TotalRecords)
	assert.Empty(t, empty.Records)
}

func TestAPIClientLusuChart(t *testing.T) {
	c := newFixtureClient(t, nil)

	chart, err := c.LusuChart(context.Background(), "LITHO-01", ChartQuery{IlluminationMode: "Conventional", NA: "0.75"})
	require.NoError(t, err)
	assert.Equal(t, 2, chart.FilteredRecords)
	require.Len(t, chart.Series["XT_Slit_U"], 2)
	assert.Equal(t, 0.412, chart.Series["XT_Slit_U"][0].Value)
	assert.NotContains(t, chart.Series, "PAS_LISU_Uniformity")

	none, err := c.LusuChart(context.Background(), "LITHO-01", ChartQuery{IlluminationMode: "Quasar"})
	require.NoError(t, err)
	assert.Empty(t, none.Series)
}

func TestAPIClientStatusError(t *testing.T) {
	telemetry := NewTelemetry()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	base, _ := url.Parse(srv.URL)

	_, err := NewAPIClient(base, time.Second, telemetry).Machines(context.Background())
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(telemetry.requests.WithLabelValues("machines", "error")))
}

func TestAPIClientMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer srv.Close()
	base, _ := url.Parse(srv.URL)
	c := NewAPIClient(base, time.Second, nil)

	_, err := c.Stats(context.Background(), "x")
	assert.ErrorIs(t, err, ErrMalformedResponse)
	_, err = c.LusuChart(context.Background(), "x", ChartQuery{})
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestDecodeFilteredChart(t *testing.T) {
	body := []byte(`{
		"filtered_records": 3,
		"chart_data": {
			"XT_Slit_U": [["2024-01-01T00:00:00", 0.4], ["2024-01-02T00:00:00", null], ["2024-01-03T00:00:00", "0.5"]],
			"XT_Intensity": [{"timestamp": 1704067200000, "value": 1000}],
			"PAS_LISU_Intensity": [["2024-01-01T00:00:00", null]]
		}
	}`)

	chart, err := decodeFilteredChart(body)
	require.NoError(t, err)
	assert.Equal(t, 3, chart.FilteredRecords)
	require.Len(t, chart.Series["XT_Slit_U"], 2)
	assert.Equal(t, 0.5, chart.Series["XT_Slit_U"][1].Value)
	require.Len(t, chart.Series["XT_Intensity"], 1)
	assert.True(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Equal(chart.Series["XT_Intensity"][0].Timestamp))
	assert.NotContains(t, chart.Series, "PAS_LISU_Intensity")
}
