package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/streaks/internal/render"
	"github.com/julianstephens/streaks/internal/tui/components/board"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == StateAddHabit {
		return m.updateAddHabit(msg)
	}

	if m.state == StateConfirmDelete {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch {
			case key.Matches(msg, m.keys.Confirm):
				m.deleteHabit(m.habitToDelete)
				m.habitToDelete = ""
				m.state = StateHabits
			case key.Matches(msg, m.keys.Cancel):
				m.habitToDelete = ""
				m.state = StateHabits
			}
		}
		return m, nil
	}

	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		// Tabs, status line and help take four rows.
		m.board.SetSize(msg.Width-h, msg.Height-v-4)
		m.stats.SetSize(msg.Width-h, msg.Height-v-4)
		return m, nil

	case tea.KeyMsg:
		if m.state == StateHabits && m.board.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.refresh()
			return m, nil
		}

	case board.AddHabitMsg:
		m.habitForm = &HabitFormModel{}
		m.form = NewHabitForm(m.habitForm)
		m.state = StateAddHabit
		return m, m.form.Init()

	case board.CheckOffMsg:
		res, err := m.tracker.CheckOff(msg.Name)
		if err != nil {
			m.setErr(err)
			return m, nil
		}
		m.setStatus(render.CheckOff(res))
		m.refresh()
		return m, nil

	case board.DeleteHabitMsg:
		m.habitToDelete = msg.Name
		m.state = StateConfirmDelete
		return m, nil
	}

	switch m.state {
	case StateHabits:
		m.board, cmd = m.board.Update(msg)
	case StateStats:
		m.stats, cmd = m.stats.Update(msg)
	}
	return m, cmd
}

func (m Model) updateAddHabit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StateHabits
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.addHabit(m.habitForm.Name, m.habitForm.Periodicity)
		m.state = StateHabits
		return m, nil
	case huh.StateAborted:
		m.state = StateHabits
		return m, nil
	}
	return m, cmd
}

func (m *Model) addHabit(name, periodicity string) {
	h, err := m.tracker.AddHabit(name, periodicity)
	if err != nil {
		m.setErr(err)
		return
	}
	m.setStatus(fmt.Sprintf("Added %s habit %q", h.Periodicity, h.Name))
	m.refresh()
}

func (m *Model) deleteHabit(name string) {
	found, err := m.tracker.DeleteHabit(name)
	if err != nil {
		m.setErr(err)
		return
	}
	if !found {
		m.setStatus(fmt.Sprintf("No habit named %q", name))
		return
	}
	m.setStatus(fmt.Sprintf("Deleted %q", name))
	m.refresh()
}
