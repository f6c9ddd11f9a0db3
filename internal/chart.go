package lithotop

import (
	"fmt"
	"image"
	"maps"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
)

// ChartKind names the chart a series is drawn on
type ChartKind string

const (
	ChartUniformity ChartKind = "Uniformity"
	ChartIntensity  ChartKind = "Intensity"
)

var (
	uniformityPattern = regexp.MustCompile(`(?i)(uniformity|slit_u)`)
	intensityPattern  = regexp.MustCompile(`(?i)intensity`)
)

// SplitSeries buckets series by name. Names matching neither pattern are dropped.
func SplitSeries(series map[string][]Point) map[ChartKind]map[string][]Point {
	out := map[ChartKind]map[string][]Point{
		ChartUniformity: {},
		ChartIntensity:  {},
	}
	for name, points := range series {
		switch {
		case uniformityPattern.MatchString(name):
			out[ChartUniformity][name] = points
		case intensityPattern.MatchString(name):
			out[ChartIntensity][name] = points
		}
	}
	return out
}

var seriesColors = []ui.Color{ui.ColorBlue, ui.ColorGreen, ui.ColorYellow, ui.ColorRed, ui.ColorCyan, ui.ColorMagenta}

const minWindow = 0.02

// Chart is a multi-series line chart on a shared time axis with a zoomable
// window and a hover cursor
type Chart struct {
	Kind   ChartKind
	names  []string
	series map[string][]Point

	first, last time.Time
	start, end  float64 // visible window as fractions of [first, last]
	cursor      int     // hovered column
	columns     int     // columns of the last render
}

// NewChart creates a chart over a copy of series, each sorted by time
func NewChart(kind ChartKind, series map[string][]Point) *Chart {
	c := &Chart{
		Kind:   kind,
		series: make(map[string][]Point, len(series)),
		start:  0,
		end:    1,
	}
	seen := false
	for name, points := range series {
		if len(points) == 0 {
			continue
		}
		sorted := slices.Clone(points)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		})
		c.series[name] = sorted
		start, end := sorted[0].Timestamp, sorted[len(sorted)-1].Timestamp
		if !seen {
			c.first, c.last = start, end
			seen = true
			continue
		}
		if start.Before(c.first) {
			c.first = start
		}
		if end.After(c.last) {
			c.last = end
		}
	}
	c.names = slices.Sorted(maps.Keys(c.series))
	return c
}

// Names returns the series names in legend order
func (c *Chart) Names() []string {
	return c.names
}

// Empty reports whether the chart has no series
func (c *Chart) Empty() bool {
	return len(c.names) == 0
}

// Window returns the visible time range
func (c *Chart) Window() (time.Time, time.Time) {
	span := c.last.Sub(c.first)
	from := c.first.Add(time.Duration(float64(span) * c.start))
	to := c.first.Add(time.Duration(float64(span) * c.end))
	return from, to
}

// ZoomIn narrows the window by a quarter around its centre
func (c *Chart) ZoomIn() {
	c.resize((c.end - c.start) * 0.75)
}

// ZoomOut widens the window by a third around its centre
func (c *Chart) ZoomOut() {
	c.resize((c.end - c.start) / 0.75)
}

// ResetZoom shows the full time range
func (c *Chart) ResetZoom() {
	c.start, c.end = 0, 1
}

func (c *Chart) resize(width float64) {
	width = min(max(width, minWindow), 1)
	centre := (c.start + c.end) / 2
	c.start = centre - width/2
	c.end = centre + width/2
	c.clampWindow()
}

// Pan shifts the window by delta window widths
func (c *Chart) Pan(delta float64) {
	shift := delta * (c.end - c.start)
	c.start += shift
	c.end += shift
	c.clampWindow()
}

func (c *Chart) clampWindow() {
	width := c.end - c.start
	if c.start < 0 {
		c.start, c.end = 0, width
	}
	if c.end > 1 {
		c.start, c.end = 1-width, 1
	}
}

// MoveCursor moves the hover column by delta
func (c *Chart) MoveCursor(delta int) {
	c.cursor = max(c.cursor+delta, 0)
	if c.columns > 0 {
		c.cursor = min(c.cursor, c.columns-1)
	}
}

// columnTime is the time represented by column i of n
func (c *Chart) columnTime(i, n int) time.Time {
	from, to := c.Window()
	if n <= 1 {
		return from
	}
	return from.Add(time.Duration(float64(to.Sub(from)) * float64(i) / float64(n-1)))
}

// ValueAt returns the latest value of a series at or before t. It reports
// false before the series' first point.
func (c *Chart) ValueAt(name string, t time.Time) (float64, bool) {
	points := c.series[name]
	i := sort.Search(len(points), func(i int) bool {
		return points[i].Timestamp.After(t)
	})
	if i == 0 {
		return 0, false
	}
	return points[i-1].Value, true
}

// Resample samples every series onto n columns of the visible window.
// Columns before a series starts hold its first value.
func (c *Chart) Resample(n int) [][]float64 {
	data := make([][]float64, 0, len(c.names))
	for _, name := range c.names {
		row := make([]float64, n)
		for i := range row {
			v, ok := c.ValueAt(name, c.columnTime(i, n))
			if !ok {
				v = c.series[name][0].Value
			}
			row[i] = v
		}
		data = append(data, row)
	}
	return data
}

// Tooltip describes the hovered column: its time and every series' value
func (c *Chart) Tooltip() (time.Time, []string) {
	n := max(c.columns, 1)
	t := c.columnTime(min(c.cursor, n-1), n)
	lines := make([]string, 0, len(c.names))
	for _, name := range c.names {
		if v, ok := c.ValueAt(name, t); ok {
			lines = append(lines, fmt.Sprintf("%s: %s", name, FormatValue(v)))
		}
	}
	return t, lines
}

// Render draws the chart into a width x height block of text
func (c *Chart) Render(width, height int) string {
	if c.Empty() {
		return "No " + string(c.Kind) + " data"
	}

	// legend, time axis and tooltip take one line each
	plotHeight := max(height-3, 5)
	width = max(width, 12)

	p := widgets.NewPlot()
	p.Marker = widgets.MarkerBraille
	p.PlotType = widgets.LineChart
	p.ShowAxes = false
	p.SetRect(0, 0, width, plotHeight)

	c.columns = max(p.Inner.Dx(), 2)
	c.cursor = min(c.cursor, c.columns-1)

	data := c.Resample(c.columns)
	lo, hi := bounds(data)
	// shift onto a zero baseline so small variations fill the plot
	for _, row := range data {
		for i := range row {
			row[i] -= lo
		}
	}
	p.Data = data
	p.MaxVal = hi - lo
	if p.MaxVal <= 0 {
		p.MaxVal = 1
	}
	p.LineColors = make([]ui.Color, len(data))
	for i := range p.LineColors {
		p.LineColors[i] = seriesColors[i%len(seriesColors)]
	}
	p.Title = fmt.Sprintf("%s  %s … %s", c.Kind, FormatValue(lo), FormatValue(hi))

	buf := ui.NewBuffer(p.GetRect())
	p.Draw(buf)
	drawCursor(buf, p.Inner, c.cursor)

	var b strings.Builder
	b.WriteString(bufferString(buf))
	b.WriteString("\n")
	b.WriteString(c.renderAxis(width))
	b.WriteString("\n")
	b.WriteString(c.renderLegend())
	b.WriteString("\n")
	b.WriteString(c.renderTooltip())
	return b.String()
}

func (c *Chart) renderAxis(width int) string {
	from, to := c.Window()
	left := from.Format("2006-01-02 15:04")
	right := to.Format("2006-01-02 15:04")
	gap := max(width-len(left)-len(right), 1)
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Render(left + strings.Repeat("─", gap) + right)
}

func (c *Chart) renderLegend() string {
	items := make([]string, 0, len(c.names))
	for i, name := range c.names {
		color := seriesColors[i%len(seriesColors)]
		swatch := lipgloss.NewStyle().Foreground(termColor(color)).Render("■")
		items = append(items, swatch+" "+name)
	}
	return strings.Join(items, "  ")
}

func (c *Chart) renderTooltip() string {
	t, lines := c.Tooltip()
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Render(t.Format("2006-01-02 15:04:05") + "  " + strings.Join(lines, "  "))
}

func bounds(data [][]float64) (float64, float64) {
	lo, hi := 0.0, 0.0
	first := true
	for _, row := range data {
		for _, v := range row {
			if first {
				lo, hi = v, v
				first = false
				continue
			}
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}
	return lo, hi
}

func drawCursor(buf *ui.Buffer, area image.Rectangle, column int) {
	x := area.Min.X + column
	if x >= area.Max.X {
		return
	}
	for y := area.Min.Y; y < area.Max.Y; y++ {
		p := image.Pt(x, y)
		if cell := buf.GetCell(p); cell.Rune == ' ' || cell.Rune == 0 {
			buf.SetCell(ui.NewCell('│', ui.NewStyle(ui.Color(240))), p)
		}
	}
}

// bufferString converts a termui buffer into lipgloss-styled lines
func bufferString(buf *ui.Buffer) string {
	r := buf.Rectangle
	lines := make([]string, 0, r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		var line strings.Builder
		var run strings.Builder
		runColor := ui.ColorClear
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runColor == ui.ColorClear {
				line.WriteString(run.String())
			} else {
				line.WriteString(lipgloss.NewStyle().Foreground(termColor(runColor)).Render(run.String()))
			}
			run.Reset()
		}
		for x := r.Min.X; x < r.Max.X; x++ {
			cell := buf.GetCell(image.Pt(x, y))
			ch := cell.Rune
			if ch == 0 {
				ch = ' '
			}
			if cell.Style.Fg != runColor {
				flush()
				runColor = cell.Style.Fg
			}
			run.WriteRune(ch)
		}
		flush()
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

func termColor(c ui.Color) lipgloss.Color {
	return lipgloss.Color(strconv.Itoa(int(c)))
}
