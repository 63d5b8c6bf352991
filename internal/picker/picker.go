// Package picker is a small terminal UI for choosing the target language.
package picker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fmueller/vidsub/internal/language"
)

var ErrCanceled = errors.New("language selection canceled")

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	containerStyle = lipgloss.NewStyle().Padding(1, 2)
)

const maxVisibleLines = 15

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Confirm   key.Binding
	Backspace key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓", "down"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Backspace: key.NewBinding(
			key.WithKeys("backspace"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

type model struct {
	options   []language.Selection
	visible   []int
	filter    string
	cursor    int
	offset    int
	height    int
	width     int
	confirmed bool
	keys      keyMap
}

func newModel(options []language.Selection, initial language.Selection) model {
	m := model{
		options: options,
		keys:    defaultKeyMap(),
	}
	m.applyFilter()
	for i, idx := range m.visible {
		if options[idx] == initial {
			m.cursor = i
			break
		}
	}
	m.adjustScroll()
	return m
}

func (m *model) applyFilter() {
	needle := strings.ToLower(m.filter)
	m.visible = m.visible[:0]
	for i, opt := range m.options {
		if needle == "" ||
			strings.Contains(strings.ToLower(opt.DisplayName), needle) ||
			strings.EqualFold(opt.Code, needle) {
			m.visible = append(m.visible, i)
		}
	}
	m.cursor = 0
	m.offset = 0
}

func (m model) visibleLines() int {
	if m.height <= 0 {
		return maxVisibleLines
	}
	available := m.height - 8
	if available > maxVisibleLines {
		return maxVisibleLines
	}
	if available < 5 {
		return 5
	}
	return available
}

func (m *model) adjustScroll() {
	visible := m.visibleLines()
	if m.cursor < m.offset {
		m.offset = m.cursor
	} else if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.adjustScroll()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.adjustScroll()
			}

		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.visible)-1 {
				m.cursor++
				m.adjustScroll()
			}

		case key.Matches(msg, m.keys.Confirm):
			if len(m.visible) == 0 {
				break
			}
			m.confirmed = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Backspace):
			if m.filter != "" {
				runes := []rune(m.filter)
				m.filter = string(runes[:len(runes)-1])
				m.applyFilter()
			}

		case msg.Type == tea.KeyRunes:
			m.filter += string(msg.Runes)
			m.applyFilter()

		case msg.Type == tea.KeySpace:
			m.filter += " "
			m.applyFilter()
		}
	}

	return m, nil
}

func (m model) selected() (language.Selection, bool) {
	if !m.confirmed || len(m.visible) == 0 {
		return language.Selection{}, false
	}
	return m.options[m.visible[m.cursor]], true
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("  %s\n", titleStyle.Render("Translate subtitles to")))
	if m.filter != "" {
		b.WriteString(fmt.Sprintf("  filter: %s\n", m.filter))
	}
	b.WriteString("\n")

	if len(m.visible) == 0 {
		b.WriteString(dimStyle.Render("  No matching language.") + "\n")
	}

	end := min(m.offset+m.visibleLines(), len(m.visible))
	for i := m.offset; i < end; i++ {
		opt := m.options[m.visible[i]]
		cursor, name := "  ", opt.DisplayName
		if i == m.cursor {
			cursor, name = selectedStyle.Render("> "), selectedStyle.Render(name)
		}
		if opt.Code != "" {
			name += " " + dimStyle.Render("("+opt.Code+")")
		}
		b.WriteString(cursor + name + "\n")
	}

	if len(m.visible) > m.visibleLines() {
		b.WriteString(dimStyle.Render(fmt.Sprintf(" (%d-%d of %d)", m.offset+1, end, len(m.visible))) + "\n")
	}

	b.WriteString(dimStyle.Render("  type to filter • ↑/↓ move • enter select • esc cancel") + "\n")

	content := containerStyle.Render(b.String())
	if m.width > 0 && m.height > 0 {
		content = lipgloss.Place(m.width, m.height, lipgloss.Left, lipgloss.Top, content)
	}
	return content
}

// Pick shows options and returns the confirmed choice. The cursor starts on
// initial when it is among the options.
func Pick(options []language.Selection, initial language.Selection) (language.Selection, error) {
	if len(options) == 0 {
		return language.Selection{}, errors.New("no languages to pick from")
	}

	p := tea.NewProgram(newModel(options, initial), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return language.Selection{}, fmt.Errorf("run language picker: %w", err)
	}

	sel, ok := finalModel.(model).selected()
	if !ok {
		return language.Selection{}, ErrCanceled
	}
	return sel, nil
}
