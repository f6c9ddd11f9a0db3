package fixture

import (
	"cmp"
	"net/http"
	"slices"
	"strconv"

	"github.com/labstack/echo/v4"
)

// server-side filter params and the LUSU columns they match
var chartFilters = []struct {
	param  string
	column string
}{
	{"illumination_mode", "XT_Illumination Mode"},
	{"na", "XT_NA"},
	{"sigma_inner", "XT_Sigma Inner"},
	{"sigma_outer", "XT_Sigma Outer"},
}

var chartColumns = []string{"XT_Slit_U", "XT_Intensity", "PAS_LISU_Uniformity", "PAS_LISU_Intensity"}

// Handler serves the fixture over the telemetry API routes
type Handler struct {
	fixture *Fixture
}

// New returns an echo instance with every API route registered
func New(f *Fixture) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	RegisterRoutes(e, &Handler{fixture: f})
	return e
}

// RegisterRoutes registers the API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, h *Handler) {
	api := e.Group("/api")
	api.GET("/machines", h.HandleMachines)
	api.GET("/metrics/:id", h.HandleMetrics)
	api.GET("/metrics/:id/stats", h.HandleStats)
	api.GET("/lusu/:id/processed", h.HandleLusuProcessed)
	api.GET("/lusu/:id/chart", h.HandleLusuChart)
}

func (h *Handler) HandleMachines(c echo.Context) error {
	machines := slices.Clone(h.fixture.Machines)
	slices.SortFunc(machines, func(a, b Machine) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return c.JSON(http.StatusOK, machines)
}

// HandleMetrics returns the newest records of a machine, newest first
func (h *Handler) HandleMetrics(c echo.Context) error {
	limit := 100
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}

	metrics := h.machineMetrics(c.Param("id"))
	slices.SortStableFunc(metrics, func(a, b Metric) int {
		return cmp.Compare(b.Timestamp, a.Timestamp)
	})
	if len(metrics) > limit {
		metrics = metrics[:limit]
	}
	return c.JSON(http.StatusOK, metrics)
}

type statRow struct {
	MetricName  string `json:"metric_name"`
	RecordCount int    `json:"record_count"`
	FirstRecord string `json:"first_record"`
	LastRecord  string `json:"last_record"`
}

// HandleStats aggregates count, first and last record per metric name
func (h *Handler) HandleStats(c echo.Context) error {
	byName := make(map[string]*statRow)
	for _, m := range h.machineMetrics(c.Param("id")) {
		row, ok := byName[m.Name]
		if !ok {
			row = &statRow{MetricName: m.Name, FirstRecord: m.Timestamp, LastRecord: m.Timestamp}
			byName[m.Name] = row
		}
		row.RecordCount++
		row.FirstRecord = min(row.FirstRecord, m.Timestamp)
		row.LastRecord = max(row.LastRecord, m.Timestamp)
	}

	stats := make([]statRow, 0, len(byName))
	for _, row := range byName {
		stats = append(stats, *row)
	}
	slices.SortFunc(stats, func(a, b statRow) int {
		return cmp.Compare(a.MetricName, b.MetricName)
	})
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) HandleLusuProcessed(c echo.Context) error {
	rows := h.machineLusu(c.Param("id"))
	if len(rows) == 0 {
		return c.JSON(http.StatusOK, map[string]any{"message": "no LUSU data", "data": []any{}})
	}
	data := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		rec := map[string]any{
			"machine_id":       row.MachineID,
			"record_timestamp": row.Timestamp,
		}
		for k, v := range row.Values {
			rec[k] = v
		}
		data = append(data, rec)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":       "success",
		"data":          data,
		"total_records": len(data),
	})
}

// HandleLusuChart applies exact-match filters and returns [timestamp, value]
// pairs per metric column
func (h *Handler) HandleLusuChart(c echo.Context) error {
	rows := h.machineLusu(c.Param("id"))
	if len(rows) == 0 {
		return c.JSON(http.StatusOK, map[string]any{"message": "no LUSU data", "chart_data": map[string]any{}})
	}

	for _, f := range chartFilters {
		want := c.QueryParam(f.param)
		if want == "" {
			continue
		}
		rows = slices.DeleteFunc(rows, func(r LusuRow) bool {
			v, ok := r.Values[f.column]
			return !ok || formatValue(v) != want
		})
	}
	slices.SortStableFunc(rows, func(a, b LusuRow) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})

	chart := make(map[string][][2]any)
	for _, column := range chartColumns {
		var pairs [][2]any
		present := false
		for _, r := range rows {
			v, ok := r.Values[column]
			if ok && v != nil {
				present = true
			}
			pairs = append(pairs, [2]any{r.Timestamp, v})
		}
		if present {
			chart[column] = pairs
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":          "success",
		"chart_data":       chart,
		"filtered_records": len(rows),
	})
}

func (h *Handler) machineMetrics(id string) []Metric {
	out := []Metric{}
	for _, m := range h.fixture.Metrics {
		if m.MachineID == id {
			out = append(out, m)
		}
	}
	return out
}

func (h *Handler) machineLusu(id string) []LusuRow {
	var out []LusuRow
	for _, r := range h.fixture.Lusu {
		if r.MachineID == id {
			out = append(out, r)
		}
	}
	return out
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}
