package models

import (
	"fmt"
	"strings"
	"time"
)

// Periodicity is the cadence a habit is tracked on
type Periodicity string

const (
	PeriodicityDaily  Periodicity = "daily"
	PeriodicityWeekly Periodicity = "weekly"
)

// Periodicities lists every supported cadence in display order
var Periodicities = []Periodicity{PeriodicityDaily, PeriodicityWeekly}

// ParsePeriodicity validates a user supplied cadence. Matching ignores case and
// surrounding whitespace.
func ParsePeriodicity(s string) (Periodicity, error) {
	switch Periodicity(strings.ToLower(strings.TrimSpace(s))) {
	case PeriodicityDaily:
		return PeriodicityDaily, nil
	case PeriodicityWeekly:
		return PeriodicityWeekly, nil
	default:
		return "", fmt.Errorf("%w: %q (expected daily or weekly)", ErrInvalidPeriodicity, s)
	}
}

func (p Periodicity) Valid() bool {
	return p == PeriodicityDaily || p == PeriodicityWeekly
}

func (p Periodicity) String() string {
	return string(p)
}

// Habit represents a recurring practice to track
type Habit struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Periodicity   Periodicity `json:"periodicity"`
	CreatedAt     time.Time   `json:"created_at"`
	CurrentStreak int         `json:"current_streak"`
	LongestStreak int         `json:"longest_streak"`
}

// CheckOff records a habit as done for the period containing Day
type CheckOff struct {
	ID      string `json:"id"`
	HabitID string `json:"habit_id"`
	Day     string `json:"day"` // YYYY-MM-DD format
}
