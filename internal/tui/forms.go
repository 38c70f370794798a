package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/streaks/internal/models"
)

type HabitFormModel struct {
	Name        string
	Periodicity string
}

// NewHabitForm creates a form for adding habits. The CLI reuses it when
// `habit add` is run without a name.
func NewHabitForm(fm *HabitFormModel) *huh.Form {
	if fm.Periodicity == "" {
		fm.Periodicity = string(models.PeriodicityDaily)
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("habit name cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Periodicity").
				Options(
					huh.NewOption("Daily", string(models.PeriodicityDaily)),
					huh.NewOption("Weekly", string(models.PeriodicityWeekly)),
				).
				Value(&fm.Periodicity),
		),
	).WithTheme(huh.ThemeDracula())
}
