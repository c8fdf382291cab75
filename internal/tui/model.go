// Package tui is the terminal front end of the problem loader: a mode
// selector, a load trigger and the output area.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/raysh454/promptlab/internal/display"
	"github.com/raysh454/promptlab/internal/loader"
)

// Loader runs one load against the current mode and writes the output area.
type Loader interface {
	Load(ctx context.Context) loader.Outcome
}

// LoadedMsg carries the outcome of one triggered load.
type LoadedMsg struct {
	Seq     int
	Outcome loader.Outcome
}

// Model is the bubbletea model. The mode selector is backed by a ModeVar and
// the output area by a TextArea, both shared with the Loader.
type Model struct {
	ctx    context.Context
	loader Loader
	mode   *display.ModeVar
	area   *display.TextArea
	modes  []string
	cursor int

	started  int // loads triggered
	finished int // loads completed
	last     loader.Outcome
	width    int
}

// NewModel builds a Model. The cursor starts on the mode currently held by
// mode, or on the first entry when that mode is not listed.
func NewModel(ctx context.Context, l Loader, modes []string, mode *display.ModeVar, area *display.TextArea) Model {
	m := Model{
		ctx:    ctx,
		loader: l,
		mode:   mode,
		area:   area,
		modes:  modes,
	}
	for i, name := range modes {
		if name == mode.Mode() {
			m.cursor = i
			return m
		}
	}
	if len(modes) > 0 {
		mode.Set(modes[0])
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case LoadedMsg:
		m.finished++
		m.last = msg.Outcome
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.mode.Set(m.modes[m.cursor])
		}
	case "down", "j":
		if m.cursor < len(m.modes)-1 {
			m.cursor++
			m.mode.Set(m.modes[m.cursor])
		}
	case "enter", "l":
		m.started++
		return m, m.loadCmd(m.started)
	}
	return m, nil
}

// loadCmd runs the load off the UI goroutine. Overlapping loads are allowed;
// the output area keeps whichever finished last.
func (m Model) loadCmd(seq int) tea.Cmd {
	l, ctx := m.loader, m.ctx
	return func() tea.Msg {
		return LoadedMsg{Seq: seq, Outcome: l.Load(ctx)}
	}
}

// Loading reports whether any triggered load is still outstanding.
func (m Model) Loading() bool {
	return m.finished < m.started
}

// Selected is the mode under the cursor.
func (m Model) Selected() string {
	if len(m.modes) == 0 {
		return ""
	}
	return m.modes[m.cursor]
}

// ShowingError reports whether the output area holds a failure. It reads the
// area rather than the last LoadedMsg, since overlapping loads can deliver
// their messages in a different order than their writes.
func (m Model) ShowingError() bool {
	return strings.HasPrefix(m.area.Text(), loader.ErrorPrefix)
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle().Render("Problem loader"))
	b.WriteString("\n\n")

	for i, name := range m.modes {
		marker := "  "
		if i == m.cursor {
			marker = "> "
		}
		b.WriteString(modeStyle(i == m.cursor).Render(marker + name))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	text := m.area.Text()
	if text == "" {
		text = "Press enter to load the problem."
	}
	b.WriteString(resultStyle(m.width, m.ShowingError()).Render(text))
	b.WriteString("\n")

	b.WriteString(statusStyle(m.width).Render(m.status()))
	return b.String()
}

func (m Model) status() string {
	switch {
	case m.Loading():
		return fmt.Sprintf("Loading %s...", m.Selected())
	case m.finished == 0:
		return "↑/↓ select mode • enter load • q quit"
	case m.last.StatusCode != 0:
		return fmt.Sprintf("%s • HTTP %d", m.last.URL, m.last.StatusCode)
	default:
		return m.last.URL
	}
}

// Run starts the program and blocks until the user quits or ctx is done.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
