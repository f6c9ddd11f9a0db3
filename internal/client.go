package lithotop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrMalformedResponse is returned when a response body is not the expected JSON shape
var ErrMalformedResponse = errors.New("malformed response")

// StatusError reports a non-OK HTTP status. Every status outside 2xx is a failure.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.URL, e.Status)
}

// Backend is the telemetry API as seen by the dashboard
type Backend interface {
	Machines(ctx context.Context) ([]Machine, error)
	Metrics(ctx context.Context, machineID string, limit int) ([]MetricRecord, error)
	Stats(ctx context.Context, machineID string) ([]StatSummary, error)
	LusuProcessed(ctx context.Context, machineID string) (LusuProcessed, error)
	LusuChart(ctx context.Context, machineID string, query ChartQuery) (FilteredChart, error)
}

// LusuProcessed is the /api/lusu/{id}/processed payload
type LusuProcessed struct {
	TotalRecords int
	Records      []LusuRecord
}

// FilteredChart is the /api/lusu/{id}/chart payload
type FilteredChart struct {
	FilteredRecords int
	Series          map[string][]Point
}

// APIClient talks to the telemetry HTTP API
type APIClient struct {
	client    *http.Client
	base      *url.URL
	telemetry *Telemetry
}

// NewAPIClient creates a client for the API rooted at baseURL
func NewAPIClient(baseURL *url.URL, timeout time.Duration, telemetry *Telemetry) *APIClient {
	if timeout <= 0 {
		timeout = RequestTimeout()
	}
	return &APIClient{
		client:    &http.Client{Timeout: timeout},
		base:      baseURL,
		telemetry: telemetry,
	}
}

func (c *APIClient) get(ctx context.Context, endpoint string, query url.Values, path ...string) (body []byte, err error) {
	started := time.Now()
	defer func() { c.telemetry.ObserveRequest(endpoint, started, err) }()

	u := c.base.JoinPath(path...)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s failed: %w", u.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: u.Redacted(), Status: resp.StatusCode}
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// Machines fetches /api/machines
func (c *APIClient) Machines(ctx context.Context) ([]Machine, error) {
	body, err := c.get(ctx, "machines", nil, "api", "machines")
	if err != nil {
		return nil, err
	}
	var machines []Machine
	if err := json.Unmarshal(body, &machines); err != nil {
		return nil, fmt.Errorf("%w: machines: %v", ErrMalformedResponse, err)
	}
	return machines, nil
}

// Metrics fetches the most recent metric records for a machine
func (c *APIClient) Metrics(ctx context.Context, machineID string, limit int) ([]MetricRecord, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	body, err := c.get(ctx, "metrics", q, "api", "metrics", machineID)
	if err != nil {
		return nil, err
	}
	var records []MetricRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("%w: metrics: %v", ErrMalformedResponse, err)
	}
	return records, nil
}

// Stats fetches per-metric aggregates for a machine
func (c *APIClient) Stats(ctx context.Context, machineID string) ([]StatSummary, error) {
	body, err := c.get(ctx, "stats", nil, "api", "metrics", machineID, "stats")
	if err != nil {
		return nil, err
	}
	return decodeStats(body)
}

// LusuProcessed fetches the processed LUSU dataset for a machine
func (c *APIClient) LusuProcessed(ctx context.Context, machineID string) (LusuProcessed, error) {
	body, err := c.get(ctx, "lusu_processed", nil, "api", "lusu", machineID, "processed")
	if err != nil {
		return LusuProcessed{}, err
	}
	return decodeLusuProcessed(body)
}

// LusuChart fetches the server-filtered LUSU chart series for a machine
func (c *APIClient) LusuChart(ctx context.Context, machineID string, query ChartQuery) (FilteredChart, error) {
	body, err := c.get(ctx, "lusu_chart", query.Values(), "api", "lusu", machineID, "chart")
	if err != nil {
		return FilteredChart{}, err
	}
	return decodeFilteredChart(body)
}

func decodeStats(body []byte) ([]StatSummary, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: stats", ErrMalformedResponse)
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: stats is not an array", ErrMalformedResponse)
	}
	var stats []StatSummary
	root.ForEach(func(_, row gjson.Result) bool {
		stats = append(stats, StatSummary{
			MetricName:  row.Get("metric_name").String(),
			RecordCount: row.Get("record_count").Int(),
			FirstRecord: ParseTimestamp(row.Get("first_record").String()),
			LastRecord:  ParseTimestamp(row.Get("last_record").String()),
		})
		return true
	})
	return stats, nil
}

func decodeLusuProcessed(body []byte) (LusuProcessed, error) {
	if !gjson.ValidBytes(body) {
		return LusuProcessed{}, fmt.Errorf("%w: lusu data", ErrMalformedResponse)
	}
	root := gjson.ParseBytes(body)
	var out LusuProcessed
	root.Get("data").ForEach(func(_, row gjson.Result) bool {
		rec := LusuRecord{Values: make(map[string]any)}
		row.ForEach(func(key, value gjson.Result) bool {
			switch key.String() {
			case "machine_id":
				rec.MachineID = value.String()
			case "record_timestamp":
				rec.Timestamp = ParseTimestamp(value.String())
			default:
				if v := scalar(value); v != nil {
					rec.Values[key.String()] = v
				}
			}
			return true
		})
		out.Records = append(out.Records, rec)
		return true
	})
	out.TotalRecords = len(out.Records)
	if total := root.Get("total_records"); total.Exists() {
		out.TotalRecords = int(total.Int())
	}
	return out, nil
}

func decodeFilteredChart(body []byte) (FilteredChart, error) {
	if !gjson.ValidBytes(body) {
		return FilteredChart{}, fmt.Errorf("%w: chart data", ErrMalformedResponse)
	}
	root := gjson.ParseBytes(body)
	out := FilteredChart{
		FilteredRecords: int(root.Get("filtered_records").Int()),
		Series:          make(map[string][]Point),
	}
	root.Get("chart_data").ForEach(func(name, points gjson.Result) bool {
		var series []Point
		points.ForEach(func(_, p gjson.Result) bool {
			var ts, val gjson.Result
			if p.IsArray() {
				ts, val = p.Get("0"), p.Get("1")
			} else {
				ts, val = p.Get("timestamp"), p.Get("value")
			}
			if v, ok := pointValue(val); ok {
				series = append(series, Point{Timestamp: pointTime(ts), Value: v})
			}
			return true
		})
		if len(series) > 0 {
			out.Series[name.String()] = series
		}
		return true
	})
	return out, nil
}

// scalar converts a JSON value into the representation LusuRecord.Values uses
func scalar(v gjson.Result) any {
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.String:
		return v.Str
	case gjson.Number:
		return v.Num
	case gjson.True, gjson.False:
		return v.Bool()
	default:
		return v.Raw
	}
}

func pointValue(v gjson.Result) (float64, bool) {
	switch v.Type {
	case gjson.Number:
		return v.Num, !math.IsNaN(v.Num) && !math.IsInf(v.Num, 0)
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		return f, err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
	default:
		return 0, false
	}
}

// pointTime accepts either a timestamp string or epoch milliseconds
func pointTime(v gjson.Result) time.Time {
	if v.Type == gjson.Number {
		return time.UnixMilli(v.Int()).UTC()
	}
	return ParseTimestamp(v.String())
}
