package lithotop

import (
	"math"
	"net/url"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// Categorical LUSU columns, in display order
var FilterFields = []string{
	"XT_Illumination Mode",
	"Ill_Mode",
	"XT_NA",
	"XT_Sigma Inner",
	"XT_Sigma Outer",
}

// Numeric LUSU columns, in display order
var MetricFields = []string{
	"XT_Slit_U",
	"XT_Intensity",
	"PAS_LISU_Uniformity",
	"PAS_LISU_Intensity",
}

// IsSingleChoice reports whether a filter field allows exactly one value
func IsSingleChoice(field string) bool {
	return field == "XT_Illumination Mode" || field == "Ill_Mode"
}

// LusuDataset is the reshaped LUSU data: filter options and metric series
type LusuDataset struct {
	Filters map[string][]string
	Metrics map[string][]Point
}

// Transform groups wide LUSU records into distinct filter values per
// categorical field and time-ordered series per numeric field.
func Transform(records []LusuRecord) LusuDataset {
	ds := LusuDataset{
		Filters: make(map[string][]string),
		Metrics: make(map[string][]Point),
	}

	for _, field := range FilterFields {
		seen := make(map[string]struct{})
		for _, rec := range records {
			v, ok := rec.Values[field]
			if !ok || v == nil {
				continue
			}
			seen[valueString(v)] = struct{}{}
		}
		if len(seen) == 0 {
			continue
		}
		values := make([]string, 0, len(seen))
		for v := range seen {
			values = append(values, v)
		}
		slices.Sort(values)
		ds.Filters[field] = values
	}

	for _, field := range MetricFields {
		var points []Point
		for _, rec := range records {
			v, ok := rec.Values[field]
			if !ok || v == nil {
				continue
			}
			points = append(points, Point{Timestamp: rec.Timestamp, Value: toNumber(v)})
		}
		if len(points) == 0 {
			continue
		}
		sort.SliceStable(points, func(i, j int) bool {
			return points[i].Timestamp.Before(points[j].Timestamp)
		})
		ds.Metrics[field] = points
	}

	return ds
}

// valueString renders a LUSU value as a filter option label
func valueString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

// toNumber coerces a LUSU value to a float; anything non-numeric is 0
func toNumber(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// FilterSelection maps a filter field to its selected values
type FilterSelection map[string][]string

// First returns the first selected value of a field
func (s FilterSelection) First(field string) (string, bool) {
	values := s[field]
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// ChartQuery holds the server-side filter parameters of /api/lusu/{id}/chart
type ChartQuery struct {
	IlluminationMode string
	NA               string
	SigmaInner       string
	SigmaOuter       string
}

// QueryFromSelection takes the first selected value of the four server-side
// filter fields. Ill_Mode and any further selected values are not sent.
func QueryFromSelection(s FilterSelection) ChartQuery {
	var q ChartQuery
	q.IlluminationMode, _ = s.First("XT_Illumination Mode")
	q.NA, _ = s.First("XT_NA")
	q.SigmaInner, _ = s.First("XT_Sigma Inner")
	q.SigmaOuter, _ = s.First("XT_Sigma Outer")
	return q
}

// Values encodes the non-empty parameters
func (q ChartQuery) Values() url.Values {
	v := url.Values{}
	if q.IlluminationMode != "" {
		v.Set("illumination_mode", q.IlluminationMode)
	}
	if q.NA != "" {
		v.Set("na", q.NA)
	}
	if q.SigmaInner != "" {
		v.Set("sigma_inner", q.SigmaInner)
	}
	if q.SigmaOuter != "" {
		v.Set("sigma_outer", q.SigmaOuter)
	}
	return v
}
