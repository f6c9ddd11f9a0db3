package lithotop

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDashboard(t *testing.T, backend *fakeBackend) dashboardModel {
	t.Helper()
	c := newTestController(backend)
	m := *NewDashboard(c)
	run(t, c, c.Init())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 45})
	return next.(dashboardModel)
}

func TestDashboardPlaceholderWithoutMachines(t *testing.T) {
	m := newTestDashboard(t, &fakeBackend{machines: []Machine{{ID: "X", Name: "off", Enabled: false}}})

	view := m.View()
	assert.Contains(t, view, "No enabled machines")
	assert.Contains(t, view, "Select a machine")
}

func TestDashboardMachineLoadFailure(t *testing.T) {
	m := newTestDashboard(t, &fakeBackend{machinesErr: errors.New("connection refused")})

	view := m.View()
	// the list pane wraps the message
	assert.Contains(t, view, "Load failed:")
	assert.Contains(t, view, "connection refused")
	assert.NotContains(t, view, "No enabled machines")
	assert.Contains(t, view, "Error: connection refused")
}

func TestDashboardSelectAndNavigate(t *testing.T) {
	backend := &fakeBackend{
		machines: []Machine{
			{ID: "M1", Name: "Scanner 01", Type: "XT-1900", Enabled: true},
			{ID: "M2", Name: "Scanner 02", Type: "XT-1950", Enabled: true},
		},
		metrics: []MetricRecord{{MachineID: "M2", MetricName: "dose", Value: "30.12", Timestamp: "2024-03-01T08:00:00"}},
		lusu:    testLusu,
	}
	m := newTestDashboard(t, backend)

	m, _ = m.Apply(CmdDown)
	m, _ = m.Apply(CmdDown)
	assert.Equal(t, 1, m.selected)

	m, cmd := m.Apply(CmdActivate)
	require.NotNil(t, cmd)
	run(t, m.ctrl, cmd)
	assert.Equal(t, "M2", m.ctrl.State.Current.ID)

	view := m.View()
	assert.Contains(t, view, "Scanner 02")
	assert.Contains(t, view, "dose")
	assert.Contains(t, view, "30.12")

	m, _ = m.Apply(CmdToggleView)
	assert.Equal(t, viewLusu, m.view)
	assert.NotPanics(t, func() { view = m.View() })
	assert.Contains(t, view, "LUSU filters")
	assert.Contains(t, view, "XT_Illumination Mode")

	m, _ = m.Apply(CmdFocusNext)
	assert.Equal(t, focusFilters, m.focus)
	m, _ = m.Apply(CmdDown)
	assert.Equal(t, 1, m.ctrl.State.Filters.Cursor())
	m, cmd = m.Apply(CmdActivate)
	assert.NotNil(t, cmd)

	m, _ = m.Apply(CmdNextChart)
	assert.Equal(t, ChartIntensity, m.ctrl.State.Charts.Current().Kind)
	m, _ = m.Apply(CmdZoomIn)
	assert.Less(t, m.ctrl.State.Charts.Current().end-m.ctrl.State.Charts.Current().start, 1.0)
	m, _ = m.Apply(CmdZoomReset)
	assert.Equal(t, 1.0, m.ctrl.State.Charts.Current().end)

	m, _ = m.Apply(CmdToggleView)
	assert.Equal(t, viewData, m.view)
	assert.Equal(t, focusMachines, m.focus)
}

func TestDashboardSearch(t *testing.T) {
	backend := &fakeBackend{machines: []Machine{
		{ID: "M1", Name: "Scanner 01", Type: "XT-1900", Enabled: true},
		{ID: "M3", Name: "Stepper 03", Type: "PAS-5500", Enabled: true},
	}}
	m := newTestDashboard(t, backend)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	m = next.(dashboardModel)
	require.True(t, m.searching)

	for _, r := range "pas" {
		next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(dashboardModel)
	}
	assert.Equal(t, "pas", m.ctrl.State.Search)
	require.Len(t, m.ctrl.State.VisibleMachines(), 1)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(dashboardModel)
	assert.False(t, m.searching)

	m, _ = m.Apply(CmdDismiss)
	assert.Empty(t, m.ctrl.State.Search)
}

func TestDashboardExportWarning(t *testing.T) {
	m := newTestDashboard(t, &fakeBackend{machines: []Machine{{ID: "M1", Name: "one", Enabled: true}}})

	m, _ = m.Apply(CmdExport)
	assert.Contains(t, m.View(), "No data to export")

	m, _ = m.Apply(CmdDismiss)
	assert.NotContains(t, m.View(), "No data to export")
}

func TestDashboardRefreshMessage(t *testing.T) {
	m := newTestDashboard(t, &fakeBackend{machines: []Machine{{ID: "M1", Name: "one", Enabled: true}}})

	_, cmd := m.Update(refreshMsg{trigger: "timer"})
	assert.Nil(t, cmd, "no machine selected")

	m, cmd = m.Apply(CmdActivate)
	run(t, m.ctrl, cmd)
	_, cmd = m.Update(refreshMsg{trigger: "timer"})
	assert.NotNil(t, cmd)
}

func TestKeyMapLookup(t *testing.T) {
	keys := DefaultKeyMap()
	assert.Equal(t, CmdQuit, keys.Lookup("q"))
	assert.Equal(t, CmdActivate, keys.Lookup("enter"))
	assert.Equal(t, CmdZoomIn, keys.Lookup("+"))
	assert.Equal(t, CmdNone, keys.Lookup("x"))
}
