package board

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/streaks/internal/models"
	"github.com/julianstephens/streaks/internal/tracker"
)

type AddHabitMsg struct{}

type CheckOffMsg struct {
	Name string
}

type DeleteHabitMsg struct {
	Name string
}

type Item struct {
	Status tracker.Status
}

func (i Item) Title() string {
	if i.Status.Done {
		return "✓ " + i.Status.Habit.Name
	}
	return "○ " + i.Status.Habit.Name
}

func (i Item) Description() string {
	h := i.Status.Habit
	unit := "day"
	if h.Periodicity == models.PeriodicityWeekly {
		unit = "week"
	}
	desc := fmt.Sprintf("%s | streak %d %s(s) | best %d", h.Periodicity, h.CurrentStreak, unit, h.LongestStreak)
	if i.Status.Done {
		desc += " | done this " + unit
	}
	return desc
}

func (i Item) FilterValue() string { return i.Status.Habit.Name }

type KeyMap struct {
	Add      key.Binding
	CheckOff key.Binding
	Delete   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		CheckOff: key.NewBinding(
			key.WithKeys(" ", "c"),
			key.WithHelp("space/c", "check off"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(board []tracker.Status, width, height int) Model {
	l := list.New(items(board), list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.CheckOff, keys.Delete}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.CheckOff, keys.Delete}
	}

	return Model{list: l, keys: keys}
}

func items(board []tracker.Status) []list.Item {
	out := make([]list.Item, len(board))
	for i, s := range board {
		out[i] = Item{Status: s}
	}
	return out
}

func (m *Model) SetBoard(board []tracker.Status) {
	m.list.SetItems(items(board))
}

// Selected returns the highlighted habit, if any.
func (m Model) Selected() (tracker.Status, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i.Status, ok
}

// Filtering reports whether the user is typing a filter.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.CheckOff):
			if s, ok := m.Selected(); ok && !s.Done {
				name := s.Habit.Name
				return m, func() tea.Msg { return CheckOffMsg{Name: name} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if s, ok := m.Selected(); ok {
				name := s.Habit.Name
				return m, func() tea.Msg { return DeleteHabitMsg{Name: name} }
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No habits yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
