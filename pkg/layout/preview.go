package layout

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// PreviewStyle controls how Preview draws each pane.
type PreviewStyle struct {
	Box   lipgloss.Style
	Index lipgloss.Style
	Label lipgloss.Style

	// Width is the inner width of every box; labels are truncated to fit.
	Width int
}

// DefaultPreviewStyle uses rounded borders and no colors.
func DefaultPreviewStyle() PreviewStyle {
	return PreviewStyle{
		Box:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		Index: lipgloss.NewStyle().Faint(true),
		Label: lipgloss.NewStyle(),
		Width: 24,
	}
}

// Preview draws the grid for len(labels) panes, one box per pane, labelled
// with its pane id and label.
func Preview(labels []string, st PreviewStyle) string {
	n := len(labels)
	if n == 0 {
		return ""
	}
	width := st.Width
	if width <= 0 {
		width = 24
	}

	rows := make([][]string, GridFor(n).Rows)
	for _, c := range Cells(n) {
		label := truncate(labels[c.Pane-1], width-4)
		content := st.Index.Render(fmt.Sprintf("%d", c.Pane)) + " " + st.Label.Render(label)
		rows[c.Row] = append(rows[c.Row], st.Box.Width(width).Render(content))
	}

	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = lipgloss.JoinHorizontal(lipgloss.Top, r...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func truncate(s string, w int) string {
	if w <= 1 {
		return s
	}
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	return string(r[:w-1]) + "…"
}
