package lithotop

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lusuAt(ts string, values map[string]any) LusuRecord {
	return LusuRecord{MachineID: "LITHO-01", Timestamp: ParseTimestamp(ts), Values: values}
}

func TestTransformFilterValues(t *testing.T) {
	records := []LusuRecord{
		lusuAt("2024-01-01T00:00:00", map[string]any{"XT_Illumination Mode": "x", "XT_NA": 0.85}),
		lusuAt("2024-01-02T00:00:00", map[string]any{"XT_Illumination Mode": "x", "XT_NA": 0.75}),
		lusuAt("2024-01-03T00:00:00", map[string]any{"XT_Illumination Mode": "y", "XT_NA": nil}),
	}

	ds := Transform(records)

	assert.Equal(t, []string{"x", "y"}, ds.Filters["XT_Illumination Mode"])
	assert.Equal(t, []string{"0.75", "0.85"}, ds.Filters["XT_NA"])
	// fields with no non-null values are omitted
	assert.NotContains(t, ds.Filters, "Ill_Mode")
	assert.NotContains(t, ds.Filters, "XT_Sigma Inner")

	for field, values := range ds.Filters {
		assert.True(t, slices.IsSorted(values), "%s not sorted", field)
		assert.Len(t, values, len(slices.Compact(slices.Clone(values))), "%s has duplicates", field)
	}
}

func TestTransformMetricSeries(t *testing.T) {
	records := []LusuRecord{
		lusuAt("2024-01-03T00:00:00", map[string]any{"XT_Slit_U": 0.3}),
		lusuAt("2024-01-01T00:00:00", map[string]any{"XT_Slit_U": "0.1", "XT_Intensity": "n/a"}),
		lusuAt("2024-01-02T00:00:00", map[string]any{"XT_Slit_U": 0.2, "XT_Intensity": nil}),
		lusuAt("2024-01-04T00:00:00", map[string]any{"PAS_LISU_Uniformity": true}),
	}

	ds := Transform(records)

	require.Contains(t, ds.Metrics, "XT_Slit_U")
	slit := ds.Metrics["XT_Slit_U"]
	require.Len(t, slit, 3)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, []float64{slit[0].Value, slit[1].Value, slit[2].Value})
	assert.True(t, slices.IsSortedFunc(slit, func(a, b Point) int { return a.Timestamp.Compare(b.Timestamp) }))

	// non-numeric values normalize to 0, nulls are skipped
	require.Len(t, ds.Metrics["XT_Intensity"], 1)
	assert.Equal(t, 0.0, ds.Metrics["XT_Intensity"][0].Value)
	assert.Equal(t, 0.0, ds.Metrics["PAS_LISU_Uniformity"][0].Value)

	assert.NotContains(t, ds.Metrics, "PAS_LISU_Intensity")
}

func TestTransformEmpty(t *testing.T) {
	ds := Transform(nil)
	assert.Empty(t, ds.Filters)
	assert.Empty(t, ds.Metrics)
}

func TestTransformKeepsOrderOfEqualTimestamps(t *testing.T) {
	records := []LusuRecord{
		lusuAt("2024-01-01T00:00:00", map[string]any{"XT_Intensity": 2.0}),
		lusuAt("2024-01-01T00:00:00", map[string]any{"XT_Intensity": 1.0}),
	}
	points := Transform(records).Metrics["XT_Intensity"]
	assert.Equal(t, 2.0, points[0].Value)
	assert.Equal(t, 1.0, points[1].Value)
}

func TestQueryFromSelection(t *testing.T) {
	sel := FilterSelection{
		"XT_Illumination Mode": {"Annular"},
		"Ill_Mode":             {"Dipole"},
		"XT_NA":                {"0.75", "0.85"},
		"XT_Sigma Inner":       {},
		"XT_Sigma Outer":       {"0.9"},
	}

	q := QueryFromSelection(sel)

	assert.Equal(t, ChartQuery{IlluminationMode: "Annular", NA: "0.75", SigmaOuter: "0.9"}, q)
	assert.Equal(t, "illumination_mode=Annular&na=0.75&sigma_outer=0.9", q.Values().Encode())
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC)
	for _, raw := range []string{
		"2024-01-01T12:30:00Z",
		"2024-01-01T12:30:00",
		"2024-01-01 12:30:00",
		"2024-01-01T12:30:00.000000",
	} {
		assert.True(t, want.Equal(ParseTimestamp(raw)), raw)
	}
	assert.True(t, ParseTimestamp("yesterday").IsZero())
	assert.True(t, ParseTimestamp("").IsZero())
}
