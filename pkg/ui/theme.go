// Package ui holds terminal styling and the interactive host picker.
package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"iterm-ssh-grid/pkg/layout"
)

// Theme groups the lipgloss styles used for output. The zero value renders
// plain text.
type Theme struct {
	Enabled bool

	Header   lipgloss.Style
	Host     lipgloss.Style
	Dim      lipgloss.Style
	Selected lipgloss.Style
	Checkbox lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Border   lipgloss.Style
}

// NoTheme disables all styling.
func NoTheme() Theme {
	s := lipgloss.NewStyle()
	return Theme{
		Header: s, Host: s, Dim: s, Selected: s,
		Checkbox: s, Error: s, Success: s, Border: s,
	}
}

// DarkTheme is the default palette.
func DarkTheme() Theme {
	return Theme{
		Enabled:  true,
		Header:   lipgloss.NewStyle().Bold(true),
		Host:     lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Dim:      lipgloss.NewStyle().Faint(true),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		Checkbox: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Border:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// AutoTheme picks DarkTheme when f is a color-capable terminal.
func AutoTheme(f *os.File) Theme {
	if f == nil || !IsTerminal(f) || !colorAllowed() {
		return NoTheme()
	}
	return DarkTheme()
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

func colorAllowed() bool {
	// https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	t := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	return t != "" && t != "dumb"
}

// CheckboxMark renders "[x]" or "[ ]".
func (t Theme) CheckboxMark(on bool) string {
	if on {
		return t.Checkbox.Render("[x]")
	}
	return t.Dim.Render("[ ]")
}

// SelectedPrefix renders the cursor column.
func (t Theme) SelectedPrefix(current bool) string {
	if !current {
		return "  "
	}
	return t.Selected.Render("> ")
}

// PreviewStyle adapts the theme to layout previews.
func (t Theme) PreviewStyle() layout.PreviewStyle {
	st := layout.DefaultPreviewStyle()
	if !t.Enabled {
		return st
	}
	st.Box = st.Box.BorderForeground(t.Border.GetForeground())
	st.Index = t.Dim
	st.Label = t.Host
	return st
}
