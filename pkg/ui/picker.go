package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned when the user leaves the picker without
// confirming.
var ErrCancelled = errors.New("selection cancelled")

type pickerKeys struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	All     key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

func defaultPickerKeys() pickerKeys {
	return pickerKeys{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:  key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
		All:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all/none")),
		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open panes")),
		Cancel:  key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("esc/q", "cancel")),
	}
}

func (k pickerKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.All, k.Confirm, k.Cancel}
}

func (k pickerKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type pickerModel struct {
	hosts    []string
	selected []bool
	cursor   int
	offset   int
	height   int

	keys  pickerKeys
	help  help.Model
	theme Theme

	confirmed bool
	cancelled bool
}

func newPickerModel(hosts []string, theme Theme) pickerModel {
	sel := make([]bool, len(hosts))
	for i := range sel {
		sel[i] = true
	}
	return pickerModel{
		hosts:    append([]string(nil), hosts...),
		selected: sel,
		height:   20,
		keys:     defaultPickerKeys(),
		help:     help.New(),
		theme:    theme,
	}
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// header, blank line, help line
		m.height = max(msg.Height-3, 1)
		m.help.Width = msg.Width
		m.scroll()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Confirm):
			m.confirmed = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.move(-1)
		case key.Matches(msg, m.keys.Down):
			m.move(1)
		case key.Matches(msg, m.keys.Toggle):
			if len(m.selected) > 0 {
				m.selected[m.cursor] = !m.selected[m.cursor]
			}
		case key.Matches(msg, m.keys.All):
			m.toggleAll()
		}
	}
	return m, nil
}

func (m *pickerModel) move(delta int) {
	if len(m.hosts) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.hosts)-1)
	m.scroll()
}

func (m *pickerModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

// toggleAll selects everything unless everything is already selected.
func (m *pickerModel) toggleAll() {
	all := true
	for _, s := range m.selected {
		if !s {
			all = false
			break
		}
	}
	for i := range m.selected {
		m.selected[i] = !all
	}
}

func (m pickerModel) count() int {
	n := 0
	for _, s := range m.selected {
		if s {
			n++
		}
	}
	return n
}

// chosen returns selected hosts in input order.
func (m pickerModel) chosen() []string {
	out := make([]string, 0, m.count())
	for i, h := range m.hosts {
		if m.selected[i] {
			out = append(out, h)
		}
	}
	return out
}

func (m pickerModel) View() string {
	if m.confirmed || m.cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.theme.Header.Render(fmt.Sprintf("Select hosts (%d/%d)", m.count(), len(m.hosts))))
	b.WriteString("\n")

	end := min(m.offset+m.height, len(m.hosts))
	for i := m.offset; i < end; i++ {
		line := m.theme.SelectedPrefix(i == m.cursor) + m.theme.CheckboxMark(m.selected[i]) + " "
		if i == m.cursor {
			line += m.theme.Selected.Render(m.hosts[i])
		} else {
			line += m.theme.Host.Render(m.hosts[i])
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// Pick lets the user narrow hosts down interactively. All hosts start
// selected. The result keeps the input order.
func Pick(hosts []string, theme Theme, in io.Reader, out io.Writer) ([]string, error) {
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}

	final, err := tea.NewProgram(newPickerModel(hosts, theme), opts...).Run()
	if err != nil {
		return nil, fmt.Errorf("picker: %w", err)
	}
	m, ok := final.(pickerModel)
	if !ok || m.cancelled || !m.confirmed {
		return nil, ErrCancelled
	}
	return m.chosen(), nil
}
