package lithotop

import (
	"strings"
)

type loadKind int

const (
	loadMachines loadKind = iota
	loadData
	loadLusu
	loadChart
	numLoadKinds
)

func (k loadKind) String() string {
	switch k {
	case loadMachines:
		return "machines"
	case loadData:
		return "data"
	case loadLusu:
		return "lusu"
	case loadChart:
		return "chart"
	default:
		return "unknown"
	}
}

// Result messages of the asynchronous loads. gen is the generation the
// request was issued under.
type (
	machinesLoadedMsg struct {
		gen      uint64
		machines []Machine
		err      error
	}

	machineDataMsg struct {
		gen       uint64
		machineID string
		metrics   []MetricRecord
		stats     []StatSummary
		err       error
	}

	lusuLoadedMsg struct {
		gen       uint64
		machineID string
		data      LusuProcessed
		err       error
	}

	chartLoadedMsg struct {
		gen       uint64
		machineID string
		chart     FilteredChart
		err       error
	}
)

// State is everything the dashboard shows. Only the Controller mutates it.
type State struct {
	// Machines holds the enabled machines only
	Machines    []Machine
	MachinesErr error
	Ready       bool
	Search      string

	Current *Machine
	Metrics []MetricRecord
	Stats   []StatSummary
	Summary Summary
	Loading bool

	Lusu    LusuDataset
	Filters *FilterPanel
	Charts  *TabSet

	Debug string

	gens [numLoadKinds]uint64
}

// EnabledMachines keeps only machines with enabled set
func EnabledMachines(machines []Machine) []Machine {
	enabled := make([]Machine, 0, len(machines))
	for _, m := range machines {
		if m.Enabled {
			enabled = append(enabled, m)
		}
	}
	return enabled
}

// VisibleMachines applies the search term to the machine list by name or type
func (s *State) VisibleMachines() []Machine {
	term := strings.ToLower(strings.TrimSpace(s.Search))
	if term == "" {
		return s.Machines
	}
	var visible []Machine
	for _, m := range s.Machines {
		if strings.Contains(strings.ToLower(m.Name), term) || strings.Contains(strings.ToLower(m.Type), term) {
			visible = append(visible, m)
		}
	}
	return visible
}
