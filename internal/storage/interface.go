package storage

import (
	"time"

	"github.com/julianstephens/streaks/internal/models"
)

// HabitStore owns habits and their check-off events.
//
// Lookups by name use exact, case-sensitive matching. Operations that take a
// name and report found=false leave the store untouched when no habit matches.
type HabitStore interface {
	// AddHabit creates a habit with zeroed counters and returns its id.
	// It fails with models.ErrDuplicateName if the name is taken.
	AddHabit(name string, periodicity models.Periodicity, createdAt time.Time) (string, error)
	// DeleteHabit removes the habit and all of its check-offs.
	DeleteHabit(name string) (bool, error)
	// RenameHabit fails with models.ErrDuplicateName if newName belongs to another habit.
	RenameHabit(oldName, newName string) (bool, error)
	// ChangePeriodicity does not touch the streak counters.
	ChangePeriodicity(name string, periodicity models.Periodicity) (bool, error)
	// GetHabit returns models.ErrHabitNotFound when no habit has that name.
	GetHabit(name string) (models.Habit, error)

	// MostRecentCheckOff returns the check-off with the latest day. ok is
	// false when the habit has none.
	MostRecentCheckOff(habitID string) (checkOff models.CheckOff, ok bool, err error)
	// AppendCheckOff records a check-off without deduplicating.
	AppendCheckOff(habitID string, day time.Time) (models.CheckOff, error)
	// ListCheckOffs returns every check-off of a habit, newest first.
	ListCheckOffs(habitID string) ([]models.CheckOff, error)
	SetCounters(habitID string, current, longest int) error

	ListAll() ([]models.Habit, error)
	ListByPeriodicity(periodicity models.Periodicity) ([]models.Habit, error)
	// MaxCurrentStreak returns every habit tied for the highest current streak.
	MaxCurrentStreak() ([]models.Habit, error)
	// MaxLongestStreak returns every habit tied for the highest longest streak.
	MaxLongestStreak() ([]models.Habit, error)
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	HabitStore

	// Atomic runs fn inside a single transaction. Any error returned by fn
	// rolls back every change made through the HabitStore it was given.
	Atomic(fn func(HabitStore) error) error

	// Utils
	GetConfigPath() string
}
