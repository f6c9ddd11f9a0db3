package lithotop

import (
	"strings"
	"time"
)

// Machine is one entry of /api/machines
type Machine struct {
	ID      string `json:"machine_id"`
	Name    string `json:"machine_name"`
	Type    string `json:"machine_type"`
	Enabled bool   `json:"enabled"`
}

// MetricRecord is one telemetry observation.
// Timestamp keeps the raw wire string so exports reproduce it exactly.
type MetricRecord struct {
	MachineID  string `json:"machine_id"`
	MetricName string `json:"metric_name"`
	Value      string `json:"metric_value"`
	Timestamp  string `json:"record_timestamp"`
	SourceFile string `json:"source_file"`
}

// Time parses the record timestamp
func (r MetricRecord) Time() time.Time {
	return ParseTimestamp(r.Timestamp)
}

// StatSummary is the per-metric aggregate returned by /api/metrics/{id}/stats
type StatSummary struct {
	MetricName  string
	RecordCount int64
	FirstRecord time.Time
	LastRecord  time.Time
}

// LusuRecord is a wide LUSU row. Values holds every named column except
// machine_id and record_timestamp; a value is a string, float64, bool or nil.
type LusuRecord struct {
	MachineID string
	Timestamp time.Time
	Values    map[string]any
}

// Point is a chart-ready value at a specific timestamp.
type Point struct {
	Timestamp time.Time
	Value     float64
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp accepts the timestamp shapes the API emits.
// Unparseable input yields the zero time.
func ParseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
