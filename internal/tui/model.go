package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/streaks/internal/logger"
	"github.com/julianstephens/streaks/internal/tracker"
	"github.com/julianstephens/streaks/internal/tui/components/board"
	"github.com/julianstephens/streaks/internal/tui/components/stats"
)

type SessionState int

const (
	StateHabits SessionState = iota
	StateStats
	StateAddHabit
	StateConfirmDelete
)

// tabCount is the number of states reachable with tab.
const tabCount = 2

type Model struct {
	tracker       *tracker.Tracker
	state         SessionState
	keys          KeyMap
	help          help.Model
	board         board.Model
	stats         stats.Model
	form          *huh.Form
	habitForm     *HabitFormModel
	habitToDelete string
	status        string
	err           error
	quitting      bool
	width         int
	height        int
}

func NewModel(t *tracker.Tracker) Model {
	m := Model{
		tracker: t,
		state:   StateHabits,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		board:   board.New(nil, 0, 0),
		stats:   stats.New(0, 0),
	}
	m.refresh()
	return m
}

// refresh reloads the board and the leaders from storage.
func (m *Model) refresh() {
	statuses, err := m.tracker.Board()
	if err != nil {
		m.setErr(err)
		return
	}
	m.board.SetBoard(statuses)

	current, err := m.tracker.TopCurrentStreaks()
	if err != nil {
		m.setErr(err)
		return
	}
	longest, err := m.tracker.TopLongestStreaks()
	if err != nil {
		m.setErr(err)
		return
	}
	m.stats.SetLeaders(current, longest)
}

func (m *Model) setErr(err error) {
	logger.Error("tui action failed", "error", err)
	m.err = err
	m.status = ""
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.err = nil
}

func (m Model) ShortHelp() []key.Binding {
	switch m.state {
	case StateHabits:
		return append(m.keys.ShortHelp(), m.keys.Add, m.keys.CheckOff, m.keys.Delete)
	case StateStats:
		return append(m.keys.ShortHelp(), m.keys.Refresh)
	case StateConfirmDelete:
		return []key.Binding{m.keys.Confirm, m.keys.Cancel}
	}
	return m.keys.ShortHelp()
}

func (m Model) FullHelp() [][]key.Binding {
	groups := m.keys.FullHelp()
	if m.state == StateHabits {
		groups = append(groups, []key.Binding{m.keys.Add, m.keys.CheckOff, m.keys.Delete})
	}
	return groups
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Run starts the interactive program on the terminal.
func Run(t *tracker.Tracker) error {
	p := tea.NewProgram(NewModel(t), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
