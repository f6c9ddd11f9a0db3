package lithotop

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Pane represents a bordered panel in the dashboard.
//
// Example usage:
//
//	pane := NewPane("Machines", 30, 10).
//	    SetContent("  LITHO-01\n  LITHO-02").
//	    SetFocused(true)
//	fmt.Println(pane.Render())
//
// Panes can be composed using layout helpers:
//
//	list := NewPane("Machines", 30, 20).SetContent("content")
//	main := NewPane("", 50, 20).SetContent("content")
//	dashboard := Horizontal(list, main)
type Pane struct {
	title       string
	content     string
	width       int
	height      int
	borderStyle lipgloss.Style
	titleStyle  lipgloss.Style
	focused     bool
}

// NewPane creates a new pane with default styling
func NewPane(title string, width, height int) Pane {
	return Pane{
		title:  title,
		width:  width,
		height: height,
		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")),
		titleStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true),
		focused: false,
	}
}

// SetContent sets the pane content
func (p Pane) SetContent(content string) Pane {
	p.content = content
	return p
}

// SetFocused sets the focus state
func (p Pane) SetFocused(focused bool) Pane {
	p.focused = focused
	if focused {
		p.borderStyle = p.borderStyle.BorderForeground(lipgloss.Color("170"))
	} else {
		p.borderStyle = p.borderStyle.BorderForeground(lipgloss.Color("240"))
	}
	return p
}

// Render draws the title, content and border clipped to the pane height
func (p Pane) Render() string {
	var b strings.Builder

	// Add title if present
	if p.title != "" {
		b.WriteString(p.titleStyle.Render(p.title) + "\n")
	}

	// Add content
	b.WriteString(p.content)

	// Drop lines that do not fit inside the border
	lines := strings.Split(b.String(), "\n")
	if p.height > 0 && len(lines) > p.height {
		lines = lines[:p.height]
	}

	return p.borderStyle.
		Width(p.width).
		Height(p.height).
		Render(strings.Join(lines, "\n"))
}
