package lithotop

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
)

// FilterGroup is the control group of one filter field
type FilterGroup struct {
	Field    string
	Single   bool
	Options  []string
	Selected []bool
}

// FilterPanel holds the LUSU filter controls. Its checked state is the only
// record of the active selection.
type FilterPanel struct {
	groups []FilterGroup
	cursor int
}

// NewFilterPanel builds one control group per filter field present in filters.
// Single-choice groups start with their first option selected, the others with
// every option selected.
func NewFilterPanel(filters map[string][]string) *FilterPanel {
	fp := &FilterPanel{}
	for _, field := range FilterFields {
		options, ok := filters[field]
		if !ok || len(options) == 0 {
			continue
		}
		g := FilterGroup{
			Field:    field,
			Single:   IsSingleChoice(field),
			Options:  append([]string(nil), options...),
			Selected: make([]bool, len(options)),
		}
		for i := range g.Selected {
			g.Selected[i] = !g.Single || i == 0
		}
		fp.groups = append(fp.groups, g)
	}
	return fp
}

// Groups returns the control groups in display order
func (fp *FilterPanel) Groups() []FilterGroup {
	if fp == nil {
		return nil
	}
	return fp.groups
}

// Len returns the total number of options across all groups
func (fp *FilterPanel) Len() int {
	if fp == nil {
		return 0
	}
	n := 0
	for _, g := range fp.groups {
		n += len(g.Options)
	}
	return n
}

// Cursor returns the flat index of the focused option
func (fp *FilterPanel) Cursor() int {
	if fp == nil {
		return 0
	}
	return fp.cursor
}

// MoveCursor moves focus by delta options, clamped to the panel
func (fp *FilterPanel) MoveCursor(delta int) {
	if fp == nil || fp.Len() == 0 {
		return
	}
	fp.cursor = min(max(fp.cursor+delta, 0), fp.Len()-1)
}

// locate maps a flat option index to group and option indices
func (fp *FilterPanel) locate(index int) (int, int, bool) {
	for gi, g := range fp.groups {
		if index < len(g.Options) {
			return gi, index, true
		}
		index -= len(g.Options)
	}
	return 0, 0, false
}

// Toggle changes the focused option. A single-choice option becomes the only
// selected one of its group; a multi-choice option flips. It reports whether
// the selection changed.
func (fp *FilterPanel) Toggle() bool {
	if fp == nil {
		return false
	}
	gi, oi, ok := fp.locate(fp.cursor)
	if !ok {
		return false
	}
	g := &fp.groups[gi]
	if g.Single {
		if g.Selected[oi] {
			return false
		}
		for i := range g.Selected {
			g.Selected[i] = i == oi
		}
		return true
	}
	g.Selected[oi] = !g.Selected[oi]
	return true
}

// Selection reads the current control state. Every group is present; a
// multi-choice group with nothing checked maps to an empty list.
func (fp *FilterPanel) Selection() FilterSelection {
	sel := make(FilterSelection)
	if fp == nil {
		return sel
	}
	for _, g := range fp.groups {
		values := []string{}
		for i, opt := range g.Options {
			if g.Selected[i] {
				values = append(values, opt)
				if g.Single {
					break
				}
			}
		}
		sel[g.Field] = values
	}
	return sel
}

// Render draws the panel as a tree of groups with radio/checkbox markers
func (fp *FilterPanel) Render(focused bool) string {
	if fp == nil || len(fp.groups) == 0 {
		return "No LUSU filters"
	}

	fieldStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Bold(true)
	cursorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("170")).
		Bold(true)
	normalStyle := lipgloss.NewStyle()

	var trees []string
	index := 0
	for _, g := range fp.groups {
		t := tree.New().Root(fieldStyle.Render(g.Field))
		for i, opt := range g.Options {
			label := marker(g.Single, g.Selected[i]) + " " + opt
			if focused && index == fp.cursor {
				t = t.Child(cursorStyle.Render("▶ " + label))
			} else {
				t = t.Child(normalStyle.Render(label))
			}
			index++
		}
		trees = append(trees, t.String())
	}
	return strings.Join(trees, "\n")
}

func marker(single, selected bool) string {
	switch {
	case single && selected:
		return "(•)"
	case single:
		return "( )"
	case selected:
		return "[x]"
	default:
		return "[ ]"
	}
}
