package lithotop

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// WrapTable wraps lipgloss table to support height-based wrapping
// When data exceeds maxHeight, it creates multiple tables side-by-side
type WrapTable struct {
	headers      []string
	rows         [][]string
	maxHeight    int
	maxCellWidth int
	border       lipgloss.Border
	borderStyle  lipgloss.Style
	headerStyle  lipgloss.Style
}

// NewWrapTable creates a new wrap table
func NewWrapTable() *WrapTable {
	return &WrapTable{
		border:      lipgloss.NormalBorder(),
		borderStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		headerStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true),
	}
}

// Headers sets the table headers
func (wt *WrapTable) Headers(headers ...string) *WrapTable {
	wt.headers = headers
	return wt
}

// Rows sets the table rows
func (wt *WrapTable) Rows(rows ...[]string) *WrapTable {
	wt.rows = rows
	return wt
}

// MaxHeight sets the maximum height constraint
func (wt *WrapTable) MaxHeight(height int) *WrapTable {
	wt.maxHeight = height
	return wt
}

// MaxCellWidth truncates cells longer than width runes with an ellipsis
func (wt *WrapTable) MaxCellWidth(width int) *WrapTable {
	wt.maxCellWidth = width
	return wt
}

// BorderStyle sets the border styling
func (wt *WrapTable) BorderStyle(style lipgloss.Style) *WrapTable {
	wt.borderStyle = style
	return wt
}

// Render renders the table, splitting rows into side-by-side tables when
// they exceed maxHeight
func (wt *WrapTable) Render() string {
	if len(wt.rows) == 0 {
		return ""
	}

	// Account for header (1 line) + borders (top + bottom + header separator = 3)
	rowsPerTable := max(wt.maxHeight-4, 1)

	var tables []string
	for i := 0; i < len(wt.rows); i += rowsPerTable {
		end := min(i+rowsPerTable, len(wt.rows))
		tables = append(tables, wt.newTable(wt.rows[i:end]).String())
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, tables...)
}

func (wt *WrapTable) newTable(rows [][]string) *table.Table {
	return table.New().
		Border(wt.border).
		BorderStyle(wt.borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return wt.headerStyle
			}
			return lipgloss.NewStyle()
		}).
		Headers(wt.headers...).
		Rows(wt.truncate(rows)...)
}

func (wt *WrapTable) truncate(rows [][]string) [][]string {
	if wt.maxCellWidth <= 1 {
		return rows
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = make([]string, len(row))
		for j, cell := range row {
			if r := []rune(cell); len(r) > wt.maxCellWidth {
				cell = string(r[:wt.maxCellWidth-1]) + "…"
			}
			out[i][j] = cell
		}
	}
	return out
}

// String is a convenience method that calls Render
func (wt *WrapTable) String() string {
	return wt.Render()
}
