// Package tracker runs habit operations against a store: it validates input,
// drives the streak engine and persists the outcome.
package tracker

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/streaks/internal/logger"
	"github.com/julianstephens/streaks/internal/models"
	"github.com/julianstephens/streaks/internal/storage"
	"github.com/julianstephens/streaks/internal/streak"
)

type Tracker struct {
	store storage.Provider
	clock streak.Clock
}

func New(store storage.Provider, clock streak.Clock) *Tracker {
	if clock == nil {
		clock = streak.SystemClock{}
	}
	return &Tracker{
		store: store,
		clock: clock,
	}
}

// CheckOffResult describes what a check-off did to a habit.
type CheckOffResult struct {
	// Habit carries the counters after the check-off.
	Habit    models.Habit
	Decision streak.Decision
	Day      time.Time
}

// Violation is a habit whose stored counters break longest >= current.
type Violation struct {
	Habit models.Habit
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: current streak %d exceeds longest streak %d",
		v.Habit.Name, v.Habit.CurrentStreak, v.Habit.LongestStreak)
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", models.ErrEmptyName
	}
	return name, nil
}

// AddHabit registers a habit created today with zeroed counters.
func (t *Tracker) AddHabit(name, periodicity string) (models.Habit, error) {
	name, err := normalizeName(name)
	if err != nil {
		return models.Habit{}, err
	}
	p, err := models.ParsePeriodicity(periodicity)
	if err != nil {
		return models.Habit{}, err
	}

	createdAt := t.clock.Today()
	id, err := t.store.AddHabit(name, p, createdAt)
	if err != nil {
		return models.Habit{}, err
	}
	logger.Info("habit added", "name", name, "periodicity", p)

	return models.Habit{
		ID:          id,
		Name:        name,
		Periodicity: p,
		CreatedAt:   createdAt,
	}, nil
}

// DeleteHabit removes a habit with its history. found is false when no habit
// has that name.
func (t *Tracker) DeleteHabit(name string) (bool, error) {
	found, err := t.store.DeleteHabit(strings.TrimSpace(name))
	if err != nil {
		return false, err
	}
	if found {
		logger.Info("habit deleted", "name", name)
	}
	return found, nil
}

func (t *Tracker) RenameHabit(oldName, newName string) (bool, error) {
	newName, err := normalizeName(newName)
	if err != nil {
		return false, err
	}
	found, err := t.store.RenameHabit(strings.TrimSpace(oldName), newName)
	if err != nil {
		return false, err
	}
	if found {
		logger.Info("habit renamed", "from", oldName, "to", newName)
	}
	return found, nil
}

// ChangePeriodicity switches a habit's cadence. Streak counters are kept as
// they are and are judged against the new cadence from the next check-off on.
func (t *Tracker) ChangePeriodicity(name, periodicity string) (bool, error) {
	p, err := models.ParsePeriodicity(periodicity)
	if err != nil {
		return false, err
	}
	found, err := t.store.ChangePeriodicity(strings.TrimSpace(name), p)
	if err != nil {
		return false, err
	}
	if found {
		logger.Info("habit periodicity changed", "name", name, "periodicity", p)
	}
	return found, nil
}

// Edit applies a rename and a periodicity change in one transaction. Empty
// arguments are left alone.
func (t *Tracker) Edit(name, newName, periodicity string) (bool, error) {
	name = strings.TrimSpace(name)

	var p models.Periodicity
	if periodicity != "" {
		parsed, err := models.ParsePeriodicity(periodicity)
		if err != nil {
			return false, err
		}
		p = parsed
	}
	if newName != "" {
		n, err := normalizeName(newName)
		if err != nil {
			return false, err
		}
		newName = n
	}

	found := false
	err := t.store.Atomic(func(tx storage.HabitStore) error {
		if _, err := tx.GetHabit(name); err != nil {
			if errors.Is(err, models.ErrHabitNotFound) {
				return nil
			}
			return err
		}
		found = true

		if p != "" {
			if _, err := tx.ChangePeriodicity(name, p); err != nil {
				return err
			}
		}
		if newName != "" && newName != name {
			if _, err := tx.RenameHabit(name, newName); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if found {
		logger.Info("habit edited", "name", name, "new_name", newName, "periodicity", p)
	}
	return found, nil
}

// CheckOff marks the habit done for today's period. The read of the latest
// check-off, the decision and the writes run in one transaction.
func (t *Tracker) CheckOff(name string) (CheckOffResult, error) {
	name = strings.TrimSpace(name)
	today := t.clock.Today()

	var result CheckOffResult
	err := t.store.Atomic(func(tx storage.HabitStore) error {
		habit, err := tx.GetHabit(name)
		if err != nil {
			return err
		}

		in := streak.Input{
			Periodicity: habit.Periodicity,
			Today:       today,
			Current:     habit.CurrentStreak,
			Longest:     habit.LongestStreak,
		}

		latest, ok, err := tx.MostRecentCheckOff(habit.ID)
		if err != nil {
			return err
		}
		if ok {
			prior, err := streak.ParseDay(latest.Day)
			if err != nil {
				return fmt.Errorf("habit %q has a malformed check-off %q: %w", habit.Name, latest.Day, err)
			}
			in.Prior = &prior
		}

		decision, err := streak.Evaluate(in)
		if err != nil {
			return err
		}

		if decision.Append {
			if err := tx.SetCounters(habit.ID, decision.Current, decision.Longest); err != nil {
				return err
			}
			if _, err := tx.AppendCheckOff(habit.ID, today); err != nil {
				return err
			}
		}

		habit.CurrentStreak = decision.Current
		habit.LongestStreak = decision.Longest
		result = CheckOffResult{Habit: habit, Decision: decision, Day: today}
		return nil
	})
	if err != nil {
		return CheckOffResult{}, err
	}

	logger.Info("habit checked off",
		"name", result.Habit.Name,
		"outcome", result.Decision.Outcome,
		"day", streak.FormatDay(today),
		"current", result.Decision.Current,
		"longest", result.Decision.Longest)

	return result, nil
}

func (t *Tracker) Habit(name string) (models.Habit, error) {
	return t.store.GetHabit(strings.TrimSpace(name))
}

// History returns the habit and its check-offs, newest first.
func (t *Tracker) History(name string) (models.Habit, []models.CheckOff, error) {
	habit, err := t.store.GetHabit(strings.TrimSpace(name))
	if err != nil {
		return models.Habit{}, nil, err
	}
	checkOffs, err := t.store.ListCheckOffs(habit.ID)
	if err != nil {
		return models.Habit{}, nil, err
	}
	return habit, checkOffs, nil
}

// List returns every habit, or only those with the given periodicity when it
// is non-empty.
func (t *Tracker) List(periodicity string) ([]models.Habit, error) {
	if strings.TrimSpace(periodicity) == "" {
		return t.store.ListAll()
	}
	p, err := models.ParsePeriodicity(periodicity)
	if err != nil {
		return nil, err
	}
	return t.store.ListByPeriodicity(p)
}

// TopCurrentStreaks returns the habits tied for the highest current streak.
func (t *Tracker) TopCurrentStreaks() ([]models.Habit, error) {
	return t.store.MaxCurrentStreak()
}

// TopLongestStreaks returns the habits tied for the highest longest streak.
func (t *Tracker) TopLongestStreaks() ([]models.Habit, error) {
	return t.store.MaxLongestStreak()
}

// Audit reports habits whose counters break longest >= current.
func (t *Tracker) Audit() ([]Violation, error) {
	habits, err := t.store.ListAll()
	if err != nil {
		return nil, err
	}

	var violations []Violation
	for _, h := range habits {
		if h.LongestStreak < h.CurrentStreak {
			violations = append(violations, Violation{Habit: h})
		}
	}
	if len(violations) > 0 {
		logger.Warn("streak counter violations found", "count", len(violations))
	}
	return violations, nil
}

// Today exposes the clock's date to callers that render periods.
func (t *Tracker) Today() time.Time {
	return t.clock.Today()
}

// Status is a habit together with whether today's period is already
// checked off.
type Status struct {
	Habit models.Habit
	Done  bool
	// LastDay is the most recent check-off day, empty when there is none.
	LastDay string
}

// Board returns the status of every habit for today's period.
func (t *Tracker) Board() ([]Status, error) {
	habits, err := t.store.ListAll()
	if err != nil {
		return nil, err
	}
	today := t.clock.Today()

	board := make([]Status, 0, len(habits))
	for _, h := range habits {
		s := Status{Habit: h}
		latest, ok, err := t.store.MostRecentCheckOff(h.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			s.LastDay = latest.Day
			if d, err := streak.ParseDay(latest.Day); err == nil {
				gap, err := streak.PeriodsBetween(h.Periodicity, d, today)
				s.Done = err == nil && gap == 0
			}
		}
		board = append(board, s)
	}
	return board, nil
}
