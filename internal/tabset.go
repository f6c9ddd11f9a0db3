package lithotop

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TabSet manages the LUSU charts with tab navigation
type TabSet struct {
	charts      []*Chart
	selectedTab int
	width       int
	height      int
}

// NewTabSet creates a new TabSet
func NewTabSet() *TabSet {
	return &TabSet{
		charts:      []*Chart{},
		selectedTab: 0,
		width:       40,
		height:      10,
	}
}

// ReplaceSeries discards every chart and builds one per non-empty bucket of
// series, Uniformity first
func (ts *TabSet) ReplaceSeries(series map[string][]Point) *TabSet {
	buckets := SplitSeries(series)
	ts.charts = ts.charts[:0]
	for _, kind := range []ChartKind{ChartUniformity, ChartIntensity} {
		if len(buckets[kind]) > 0 {
			ts.charts = append(ts.charts, NewChart(kind, buckets[kind]))
		}
	}
	if ts.selectedTab >= len(ts.charts) {
		ts.selectedTab = max(0, len(ts.charts)-1)
	}
	return ts
}

// SetSize sets the dimensions for rendering
func (ts *TabSet) SetSize(width, height int) *TabSet {
	ts.width = width
	ts.height = height
	return ts
}

// NextTab moves to the next tab (wraps around)
func (ts *TabSet) NextTab() *TabSet {
	if len(ts.charts) > 0 {
		ts.selectedTab = (ts.selectedTab + 1) % len(ts.charts)
	}
	return ts
}

// PrevTab moves to the previous tab (wraps around)
func (ts *TabSet) PrevTab() *TabSet {
	if len(ts.charts) > 0 {
		ts.selectedTab = (ts.selectedTab - 1 + len(ts.charts)) % len(ts.charts)
	}
	return ts
}

// GetCharts returns all charts in the tab set
func (ts *TabSet) GetCharts() []*Chart {
	return ts.charts
}

// Current returns the chart of the selected tab, or nil
func (ts *TabSet) Current() *Chart {
	if ts.selectedTab < len(ts.charts) {
		return ts.charts[ts.selectedTab]
	}
	return nil
}

// Render renders the tab bar and the active chart
func (ts *TabSet) Render() string {
	if len(ts.charts) == 0 {
		return "No charts available"
	}

	var b strings.Builder
	b.WriteString(ts.renderTabs())
	b.WriteString("\n")

	// Account for tab bar height
	contentHeight := ts.height - 3
	b.WriteString(ts.charts[ts.selectedTab].Render(ts.width, contentHeight))

	return b.String()
}

// renderTabs renders the tab navigation bar
func (ts *TabSet) renderTabs() string {
	activeTabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("170")).
		Background(lipgloss.Color("235")).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("170"))

	inactiveTabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("236"))

	var renderedTabs []string
	for i, chart := range ts.charts {
		if i == ts.selectedTab {
			renderedTabs = append(renderedTabs, activeTabStyle.Render(string(chart.Kind)))
		} else {
			renderedTabs = append(renderedTabs, inactiveTabStyle.Render(string(chart.Kind)))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...)
}

// String is a convenience method that calls Render
func (ts *TabSet) String() string {
	return ts.Render()
}
