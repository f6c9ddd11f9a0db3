package lithotop

import (
	"fmt"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type focusArea int

const (
	focusMachines focusArea = iota
	focusFilters
	focusChart
)

type viewMode int

const (
	viewData viewMode = iota
	viewLusu
)

type dashboardModel struct {
	ctrl      *Controller
	keys      KeyMap
	selected  int // index into the visible machines
	focus     focusArea
	view      viewMode
	searching bool
	width     int
	height    int
	ready     bool
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func NewDashboard(ctrl *Controller) *dashboardModel {
	return &dashboardModel{
		ctrl:  ctrl,
		keys:  DefaultKeyMap(),
		focus: focusMachines,
		view:  viewData,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.ctrl.Init(), tickCmd())
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg), nil
		}
		return m.Apply(m.keys.Lookup(msg.String()))

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case refreshMsg:
		return m, m.ctrl.Refresh(msg.trigger)

	case tickMsg:
		// redraw so expired notifications disappear
		return m, tickCmd()

	default:
		m.ctrl.Handle(msg)
		if m.selected >= len(m.ctrl.State.VisibleMachines()) {
			m.selected = max(0, len(m.ctrl.State.VisibleMachines())-1)
		}
	}

	return m, nil
}

func (m dashboardModel) updateSearch(msg tea.KeyMsg) dashboardModel {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.searching = false
	case tea.KeyBackspace:
		if s := []rune(m.ctrl.State.Search); len(s) > 0 {
			m.ctrl.State.Search = string(s[:len(s)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.ctrl.State.Search += string(msg.Runes)
	}
	m.selected = 0
	return m
}

// Apply maps a command onto a state transition
func (m dashboardModel) Apply(cmd Command) (dashboardModel, tea.Cmd) {
	state := &m.ctrl.State
	chart := state.Charts.Current()

	switch cmd {
	case CmdQuit:
		return m, tea.Quit
	case CmdUp:
		switch m.focus {
		case focusMachines:
			m.selected = max(m.selected-1, 0)
		case focusFilters:
			state.Filters.MoveCursor(-1)
		}
	case CmdDown:
		switch m.focus {
		case focusMachines:
			m.selected = min(m.selected+1, max(len(state.VisibleMachines())-1, 0))
		case focusFilters:
			state.Filters.MoveCursor(1)
		}
	case CmdActivate:
		switch m.focus {
		case focusMachines:
			visible := state.VisibleMachines()
			if m.selected < len(visible) {
				return m, m.ctrl.SelectMachine(visible[m.selected])
			}
		case focusFilters:
			if state.Filters.Toggle() {
				return m, m.ctrl.FilterChanged()
			}
		}
	case CmdRefresh:
		return m, m.ctrl.Refresh("user")
	case CmdExport:
		m.ctrl.Export()
	case CmdFocusNext:
		m.focus = m.nextFocus()
	case CmdSearch:
		m.searching = true
		m.focus = focusMachines
	case CmdToggleView:
		if m.view == viewData {
			m.view = viewLusu
		} else {
			m.view = viewData
			m.focus = focusMachines
		}
	case CmdNextChart:
		state.Charts.NextTab()
	case CmdPrevChart:
		state.Charts.PrevTab()
	case CmdZoomIn, CmdZoomOut, CmdZoomReset, CmdPanLeft, CmdPanRight, CmdCursorLeft, CmdCursorRight:
		if chart != nil {
			applyChartCommand(chart, cmd)
		}
	case CmdDismiss:
		m.ctrl.Notifications().Dismiss()
		state.Search = ""
	}
	return m, nil
}

func applyChartCommand(c *Chart, cmd Command) {
	switch cmd {
	case CmdZoomIn:
		c.ZoomIn()
	case CmdZoomOut:
		c.ZoomOut()
	case CmdZoomReset:
		c.ResetZoom()
	case CmdPanLeft:
		c.Pan(-0.25)
	case CmdPanRight:
		c.Pan(0.25)
	case CmdCursorLeft:
		c.MoveCursor(-1)
	case CmdCursorRight:
		c.MoveCursor(1)
	}
}

func (m dashboardModel) nextFocus() focusArea {
	if m.view == viewData {
		return focusMachines
	}
	return (m.focus + 1) % 3
}

func (m dashboardModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	state := &m.ctrl.State

	notes := m.renderNotifications()
	// Account for status lines at bottom (notifications + debug + help)
	bodyHeight := m.height - 2
	if notes != "" {
		bodyHeight -= lipgloss.Height(notes)
	}
	listWidth := m.machineListWidth()
	mainWidth := max(m.width-listWidth-4, 20)

	list := NewPane("Machines", listWidth, bodyHeight-2).
		SetContent(m.renderMachineList()).
		SetFocused(m.focus == focusMachines)

	var main strings.Builder
	main.WriteString(m.renderHeader())
	main.WriteString("\n")
	main.WriteString(m.renderStatsCards(mainWidth))
	main.WriteString("\n")

	// header line + stats cards (5 lines)
	contentHeight := max(bodyHeight-2-6, 6)
	if m.view == viewData {
		main.WriteString(m.renderDataTable(contentHeight))
	} else {
		main.WriteString(m.renderLusu(mainWidth, contentHeight))
	}

	mainPane := NewPane("", mainWidth, bodyHeight-2).SetContent(main.String())

	debugLine := lipgloss.NewStyle().
		Foreground(lipgloss.Color("244")).
		Width(m.width).
		Render(state.Debug)

	helpBar := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Background(lipgloss.Color("235")).
		Width(m.width).
		Align(lipgloss.Center).
		Render("enter=Select  /=Search  v=Data/LUSU  tab=Focus  r=Refresh  e=Export  []=Charts  +/-/0=Zoom  H/L=Pan  h/l=Cursor  q=Quit")

	view := Horizontal(list, mainPane) + "\n"
	if notes != "" {
		view += lipgloss.PlaceHorizontal(m.width, lipgloss.Right, notes) + "\n"
	}
	return view + debugLine + "\n" + helpBar
}

// machineListWidth is the widest "▶ name" or type line plus padding
func (m dashboardModel) machineListWidth() int {
	width := 20
	for _, machine := range m.ctrl.State.Machines {
		width = max(width, len(machine.Name)+6, len(machine.Type)+6)
	}
	return min(width, max(m.width/3, 20))
}

func (m dashboardModel) renderMachineList() string {
	state := &m.ctrl.State

	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true)
	typeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	currentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	var b strings.Builder
	if m.searching || state.Search != "" {
		b.WriteString(fmt.Sprintf("/%s\n", state.Search))
	}

	if state.MachinesErr != nil {
		b.WriteString(errorStyle.Render("Load failed: " + state.MachinesErr.Error()))
		return b.String()
	}
	if !state.Ready {
		b.WriteString("Loading...")
		return b.String()
	}
	if len(state.Machines) == 0 {
		b.WriteString("No enabled machines")
		return b.String()
	}

	for i, machine := range state.VisibleMachines() {
		name := machine.Name
		if state.Current != nil && state.Current.ID == machine.ID {
			name = currentStyle.Render("● ") + name
		}
		if i == m.selected && m.focus == focusMachines {
			b.WriteString(selectedStyle.Render("▶ "+machine.Name) + "\n")
		} else {
			b.WriteString("  " + name + "\n")
		}
		b.WriteString("  " + typeStyle.Render(machine.Type) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m dashboardModel) renderHeader() string {
	state := &m.ctrl.State
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	if state.Current == nil {
		return titleStyle.Render("Select a machine")
	}
	title := titleStyle.Render(state.Current.Name)
	if state.Loading {
		title += lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("  loading...")
	}
	return title
}

func (m dashboardModel) renderStatsCards(width int) string {
	summary := m.ctrl.State.Summary
	cardWidth := max(width/3-2, 12)
	return Horizontal(
		NewPane("Total records", cardWidth, 2).SetContent(fmt.Sprintf("%d", summary.TotalRecords)),
		NewPane("Metric types", cardWidth, 2).SetContent(fmt.Sprintf("%d", summary.MetricTypes)),
		NewPane("Last update", cardWidth, 2).SetContent(summary.LastUpdateString()),
	)
}

func (m dashboardModel) renderDataTable(height int) string {
	metrics := m.ctrl.State.Metrics
	if len(metrics) == 0 {
		return "No data"
	}
	rows := make([][]string, 0, len(metrics))
	for _, r := range metrics {
		ts := r.Timestamp
		if t := r.Time(); !t.IsZero() {
			ts = t.Local().Format("2006-01-02 15:04:05")
		}
		rows = append(rows, []string{r.MetricName, r.Value, ts, r.SourceFile})
	}
	return NewWrapTable().
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		MaxHeight(height).
		MaxCellWidth(32).
		Headers("Metric", "Value", "Time", "Source").
		Rows(rows...).
		Render()
}

func (m dashboardModel) renderLusu(width, height int) string {
	state := &m.ctrl.State
	filterWidth := min(max(width/4, 24), 40)
	chartWidth := max(width-filterWidth-4, 20)

	filters := NewPane("LUSU filters", filterWidth, height-2).
		SetContent(state.Filters.Render(m.focus == focusFilters)).
		SetFocused(m.focus == focusFilters)

	state.Charts.SetSize(chartWidth, height-2)
	charts := NewPane("", chartWidth, height-2).
		SetContent(state.Charts.Render()).
		SetFocused(m.focus == focusChart)

	return Horizontal(filters, charts)
}

func (m dashboardModel) renderNotifications() string {
	notes := m.ctrl.Notifications().Active()
	if len(notes) == 0 {
		return ""
	}
	colors := map[Level]lipgloss.Color{
		LevelInfo:    lipgloss.Color("33"),
		LevelSuccess: lipgloss.Color("42"),
		LevelWarning: lipgloss.Color("214"),
		LevelError:   lipgloss.Color("196"),
	}
	var rendered []string
	for _, n := range notes {
		rendered = append(rendered, lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors[n.Level]).
			Foreground(colors[n.Level]).
			Padding(0, 1).
			Render(n.Message+"  (esc)"))
	}
	return lipgloss.JoinVertical(lipgloss.Right, rendered...)
}

// Dashboard runs the program until the user quits
func Dashboard(ctrl *Controller, refreshInterval time.Duration) error {
	m := NewDashboard(ctrl)
	p := tea.NewProgram(m, tea.WithAltScreen())

	refresher, err := NewRefresher(refreshInterval, p.Send)
	if err != nil {
		return err
	}
	refresher.Start()
	defer refresher.Stop()

	if _, err := p.Run(); err != nil {
		log.Printf("Error running bubbletea program: %v", err)
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
