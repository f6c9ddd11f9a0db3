package lithotop

import (
	"context"
	"errors"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
)

// Controller owns the dashboard State and turns commands and load results
// into state transitions. It never touches the terminal.
type Controller struct {
	State State

	backend   Backend
	exporter  *Exporter
	notes     *Notifications
	telemetry *Telemetry
	limit     int

	// data generation whose success confirms a user refresh
	confirmGen uint64
}

// NewController wires a controller to its collaborators
func NewController(backend Backend, exporter *Exporter, notes *Notifications, telemetry *Telemetry, limit int) *Controller {
	if limit <= 0 {
		limit = METRICS_LIMIT
	}
	return &Controller{
		State:     State{Charts: NewTabSet()},
		backend:   backend,
		exporter:  exporter,
		notes:     notes,
		telemetry: telemetry,
		limit:     limit,
	}
}

// Notifications returns the notification store
func (c *Controller) Notifications() *Notifications {
	return c.notes
}

func (c *Controller) debug(format string, args ...any) {
	c.State.Debug = fmt.Sprintf(format, args...)
	log.Print(c.State.Debug)
}

func (c *Controller) next(kind loadKind) uint64 {
	c.State.gens[kind]++
	return c.State.gens[kind]
}

// stale reports whether a response was superseded by a newer request
func (c *Controller) stale(kind loadKind, gen uint64) bool {
	if gen == c.State.gens[kind] {
		return false
	}
	c.telemetry.CountStale(kind)
	log.Printf("Dropping stale %s response (gen %d, latest %d)", kind, gen, c.State.gens[kind])
	return true
}

// Init requests the machine list
func (c *Controller) Init() tea.Cmd {
	c.debug("Loading machine list...")
	gen := c.next(loadMachines)
	return func() tea.Msg {
		machines, err := c.backend.Machines(context.Background())
		return machinesLoadedMsg{gen: gen, machines: machines, err: err}
	}
}

// SelectMachine makes m current and loads its data and LUSU dataset
func (c *Controller) SelectMachine(m Machine) tea.Cmd {
	c.State.Current = &m
	log.Printf("Selected machine %s (%s)", m.Name, m.ID)
	return tea.Batch(c.loadMachineData(m.ID), c.loadLusu(m.ID))
}

// Refresh reloads the current machine. It is a no-op before the machine list
// loaded or without a selection.
func (c *Controller) Refresh(trigger string) tea.Cmd {
	if !c.State.Ready || c.State.Current == nil {
		return nil
	}
	c.telemetry.CountReload(trigger)
	id := c.State.Current.ID
	cmd := tea.Batch(c.loadMachineData(id), c.loadLusu(id))
	if trigger == "user" {
		c.confirmGen = c.State.gens[loadData]
	}
	return cmd
}

func (c *Controller) loadMachineData(machineID string) tea.Cmd {
	c.State.Loading = true
	gen := c.next(loadData)
	limit := c.limit
	return func() tea.Msg {
		var (
			metrics []MetricRecord
			stats   []StatSummary
		)
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			var err error
			stats, err = c.backend.Stats(ctx, machineID)
			return err
		})
		g.Go(func() error {
			var err error
			metrics, err = c.backend.Metrics(ctx, machineID, limit)
			return err
		})
		err := g.Wait()
		return machineDataMsg{gen: gen, machineID: machineID, metrics: metrics, stats: stats, err: err}
	}
}

func (c *Controller) loadLusu(machineID string) tea.Cmd {
	gen := c.next(loadLusu)
	// the reloaded dataset resets the filter panel, so pending filter results are void
	c.next(loadChart)
	c.debug("Loading LUSU data...")
	return func() tea.Msg {
		data, err := c.backend.LusuProcessed(context.Background(), machineID)
		return lusuLoadedMsg{gen: gen, machineID: machineID, data: data, err: err}
	}
}

// FilterChanged queries the server with the current filter controls
func (c *Controller) FilterChanged() tea.Cmd {
	if c.State.Current == nil {
		return nil
	}
	query := QueryFromSelection(c.State.Filters.Selection())
	machineID := c.State.Current.ID
	gen := c.next(loadChart)
	log.Printf("Filter changed: %s", query.Values().Encode())
	return func() tea.Msg {
		chart, err := c.backend.LusuChart(context.Background(), machineID, query)
		return chartLoadedMsg{gen: gen, machineID: machineID, chart: chart, err: err}
	}
}

// Export writes the loaded (unfiltered) metrics to a CSV file
func (c *Controller) Export() {
	machineID := ""
	if c.State.Current != nil {
		machineID = c.State.Current.ID
	}
	path, err := c.exporter.Export(machineID, c.State.Metrics)
	switch {
	case errors.Is(err, ErrNothingToExport):
		c.notes.Push(LevelWarning, "No data to export")
	case err != nil:
		log.Printf("Export failed: %v", err)
		c.notes.Push(LevelError, fmt.Sprintf("Export failed: %v", err))
	default:
		log.Printf("Exported %d records to %s", len(c.State.Metrics), path)
		c.notes.Push(LevelSuccess, "Exported to "+path)
	}
}

// Handle applies a load result. It returns true when msg was a load result.
func (c *Controller) Handle(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case machinesLoadedMsg:
		if c.stale(loadMachines, msg.gen) {
			return true
		}
		if msg.err != nil {
			c.State.MachinesErr = msg.err
			c.debug("Error: %v", msg.err)
			return true
		}
		c.State.MachinesErr = nil
		c.State.Machines = EnabledMachines(msg.machines)
		c.State.Ready = true
		c.debug("Got %d machines, %d enabled", len(msg.machines), len(c.State.Machines))

	case machineDataMsg:
		if c.stale(loadData, msg.gen) {
			return true
		}
		c.State.Loading = false
		if msg.err != nil {
			log.Printf("Failed to load machine data: %v", msg.err)
			c.notes.Push(LevelError, "Failed to load data, please try again later")
			return true
		}
		c.State.Metrics = msg.metrics
		c.State.Stats = msg.stats
		c.State.Summary = Summarize(msg.stats)
		if c.confirmGen != 0 && msg.gen == c.confirmGen {
			c.confirmGen = 0
			c.notes.Push(LevelSuccess, "Data refreshed")
		}

	case lusuLoadedMsg:
		if c.stale(loadLusu, msg.gen) {
			return true
		}
		if msg.err != nil {
			c.debug("LUSU load failed: %v", msg.err)
			return true
		}
		c.debug("Got %d LUSU records", msg.data.TotalRecords)
		if len(msg.data.Records) == 0 {
			c.debug("No LUSU data")
			return true
		}
		c.State.Lusu = Transform(msg.data.Records)
		c.State.Filters = NewFilterPanel(c.State.Lusu.Filters)
		c.State.Charts.ReplaceSeries(c.State.Lusu.Metrics)
		c.debug("Chart ready, %d series", len(c.State.Lusu.Metrics))

	case chartLoadedMsg:
		if c.stale(loadChart, msg.gen) {
			return true
		}
		if msg.err != nil {
			c.debug("Filter failed: %v", msg.err)
			c.notes.Push(LevelError, fmt.Sprintf("Filter failed: %v", msg.err))
			return true
		}
		if len(msg.chart.Series) == 0 {
			// the last chart stays on screen
			c.debug("No data after filtering")
			return true
		}
		c.State.Charts.ReplaceSeries(msg.chart.Series)
		c.debug("Showing %d filtered records", msg.chart.FilteredRecords)

	default:
		return false
	}
	return true
}
