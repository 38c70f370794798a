package stats

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/streaks/internal/models"
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(18)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// Model shows the habits leading on current and longest streak.
type Model struct {
	viewport viewport.Model
	current  []models.Habit
	longest  []models.Habit
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m *Model) SetLeaders(current, longest []models.Habit) {
	m.current = current
	m.longest = longest
	m.viewport.SetContent(m.render())
}

func (m Model) render() string {
	if len(m.current) == 0 && len(m.longest) == 0 {
		return emptyStyle.Render("No habits yet.")
	}

	var b strings.Builder
	b.WriteString(row("Current streak", m.current, func(h models.Habit) int { return h.CurrentStreak }))
	b.WriteString("\n")
	b.WriteString(row("Longest streak", m.longest, func(h models.Habit) int { return h.LongestStreak }))
	return b.String()
}

func row(label string, habits []models.Habit, value func(models.Habit) int) string {
	if len(habits) == 0 {
		return labelStyle.Render(label) + emptyStyle.Render("none") + "\n"
	}
	names := make([]string, len(habits))
	for i, h := range habits {
		names[i] = h.Name
	}
	return labelStyle.Render(label) +
		valueStyle.Render(fmt.Sprintf("%d", value(habits[0]))) +
		"  " + strings.Join(names, ", ") + "\n"
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.viewport.SetContent(m.render())
}
