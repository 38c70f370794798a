// Package render formats habits and check-off results for the terminal.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/streaks/internal/constants"
	"github.com/julianstephens/streaks/internal/models"
	"github.com/julianstephens/streaks/internal/streak"
	"github.com/julianstephens/streaks/internal/tracker"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Italic(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

// Habits writes a table of habits and their streak counters.
func Habits(w io.Writer, habits []models.Habit) {
	if len(habits) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No habits found."))
		return
	}

	t := newTable("Name", "Periodicity", "Current", "Longest", "Created")
	for _, h := range habits {
		t.Row(
			h.Name,
			h.Periodicity.String(),
			strconv.Itoa(h.CurrentStreak),
			strconv.Itoa(h.LongestStreak),
			h.CreatedAt.Format(constants.DateFormat),
		)
	}
	fmt.Fprintln(w, t.Render())
}

// Habit writes a single habit's details.
func Habit(w io.Writer, h models.Habit) {
	fmt.Fprintf(w, "%s (%s)\n", successStyle.Render(h.Name), h.Periodicity)
	fmt.Fprintf(w, "  Current streak: %s\n", periods(h.CurrentStreak, h.Periodicity))
	fmt.Fprintf(w, "  Longest streak: %s\n", periods(h.LongestStreak, h.Periodicity))
	fmt.Fprintf(w, "  Created:        %s\n", h.CreatedAt.Format(constants.DateFormat))
}

// History writes the check-offs of a habit, newest first, labelled with the
// period each one counts for.
func History(w io.Writer, h models.Habit, checkOffs []models.CheckOff) {
	if len(checkOffs) == 0 {
		fmt.Fprintf(w, "%s has no check-offs yet.\n", h.Name)
		return
	}

	t := newTable("Day", "Period")
	for _, c := range checkOffs {
		label := c.Day
		if d, err := streak.ParseDay(c.Day); err == nil {
			label = streak.PeriodLabel(h.Periodicity, d)
		}
		t.Row(c.Day, label)
	}
	fmt.Fprintf(w, "%s (%s)\n", h.Name, h.Periodicity)
	fmt.Fprintln(w, t.Render())
}

// CheckOff returns the user-facing message for a check-off result.
func CheckOff(res tracker.CheckOffResult) string {
	h := res.Habit
	period := streak.PeriodLabel(h.Periodicity, res.Day)

	switch res.Decision.Outcome {
	case streak.StartedStreak:
		return successStyle.Render(fmt.Sprintf("Checked off %q for %s. Streak started!", h.Name, period))
	case streak.Continued:
		return successStyle.Render(fmt.Sprintf("Checked off %q for %s. Streak is now %s (longest %d).",
			h.Name, period, periods(h.CurrentStreak, h.Periodicity), h.LongestStreak))
	case streak.Reset:
		return warningStyle.Render(fmt.Sprintf("Checked off %q for %s. Streak broken, starting again at 1 (longest %d).",
			h.Name, period, h.LongestStreak))
	case streak.AlreadyCheckedOff:
		return mutedStyle.Render(fmt.Sprintf("%q is already checked off for %s.", h.Name, period))
	default:
		return fmt.Sprintf("Checked off %q.", h.Name)
	}
}

// Leaders writes the habits tied for the top value of one counter.
func Leaders(w io.Writer, title string, habits []models.Habit, value func(models.Habit) int) {
	if len(habits) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No habits found."))
		return
	}

	names := make([]string, 0, len(habits))
	for _, h := range habits {
		names = append(names, h.Name)
	}
	fmt.Fprintf(w, "%s: %d\n", title, value(habits[0]))
	fmt.Fprintf(w, "  %s\n", strings.Join(names, ", "))
}

// Violations writes audit findings, or a success line when there are none.
func Violations(w io.Writer, violations []tracker.Violation) {
	if len(violations) == 0 {
		fmt.Fprintln(w, successStyle.Render("✓ streak counters are consistent"))
		return
	}
	for _, v := range violations {
		fmt.Fprintln(w, warningStyle.Render("✗ "+v.String()))
	}
}

func periods(n int, p models.Periodicity) string {
	unit := "day"
	if p == models.PeriodicityWeekly {
		unit = "week"
	}
	if n != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s", n, unit)
}
