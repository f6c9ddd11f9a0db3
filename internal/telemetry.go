package lithotop

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Telemetry holds the client-side Prometheus collectors
type Telemetry struct {
	Registry *prometheus.Registry

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	reloads  *prometheus.CounterVec
	stale    *prometheus.CounterVec
}

// NewTelemetry creates a registry with all lithotop collectors registered
func NewTelemetry() *Telemetry {
	t := &Telemetry{
		Registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lithotop",
			Name:      "api_requests_total",
			Help:      "API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lithotop",
			Name:      "api_request_duration_seconds",
			Help:      "API request latency by endpoint.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lithotop",
			Name:      "reloads_total",
			Help:      "Reloads by trigger (user, timer).",
		}, []string{"trigger"}),
		stale: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lithotop",
			Name:      "stale_responses_total",
			Help:      "Responses dropped because a newer request superseded them.",
		}, []string{"kind"}),
	}
	t.Registry.MustRegister(t.requests, t.latency, t.reloads, t.stale)
	return t
}

// ObserveRequest records one API call
func (t *Telemetry) ObserveRequest(endpoint string, started time.Time, err error) {
	if t == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	t.requests.WithLabelValues(endpoint, outcome).Inc()
	t.latency.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
}

// CountReload records a reload of the selected machine
func (t *Telemetry) CountReload(trigger string) {
	if t == nil {
		return
	}
	t.reloads.WithLabelValues(trigger).Inc()
}

// CountStale records a dropped out-of-date response
func (t *Telemetry) CountStale(kind loadKind) {
	if t == nil {
		return
	}
	t.stale.WithLabelValues(kind.String()).Inc()
}

// Handler exposes the registry for scraping
func (t *Telemetry) Handler() http.Handler {
	return promhttp.HandlerFor(t.Registry, promhttp.HandlerOpts{})
}

// WriteText writes the current registry contents in the Prometheus text format
func (t *Telemetry) WriteText(w io.Writer) error {
	families, err := t.Registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// Totals sums every counter family across its label values, keyed by family
// name. Histograms contribute their sample count.
func (t *Telemetry) Totals() (map[string]float64, error) {
	families, err := t.Registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}
	totals := make(map[string]float64, len(families))
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				totals[mf.GetName()] += m.GetCounter().GetValue()
			case dto.MetricType_HISTOGRAM:
				totals[mf.GetName()] += float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return totals, nil
}
