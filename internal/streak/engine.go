package streak

import (
	"fmt"
	"time"

	"github.com/julianstephens/streaks/internal/models"
)

// Outcome classifies a check-off attempt
type Outcome int

const (
	// StartedStreak is the first check-off a habit has ever received
	StartedStreak Outcome = iota + 1
	// AlreadyCheckedOff means the current period already has a check-off
	AlreadyCheckedOff
	// Continued means the previous check-off fell in the immediately preceding period
	Continued
	// Reset means the previous check-off is older than the preceding period, or in the future
	Reset
)

func (o Outcome) String() string {
	switch o {
	case StartedStreak:
		return "started"
	case AlreadyCheckedOff:
		return "already-checked-off"
	case Continued:
		return "continued"
	case Reset:
		return "reset"
	default:
		return "unknown"
	}
}

// Input is everything the engine needs to judge one check-off attempt.
type Input struct {
	Periodicity models.Periodicity
	Today       time.Time
	// Prior is the date of the most recent existing check-off, nil if none.
	Prior   *time.Time
	Current int
	Longest int
}

// Decision is the result of Evaluate. Current and Longest are the counters to
// persist; Append reports whether a check-off dated today must be recorded.
type Decision struct {
	Outcome Outcome
	Current int
	Longest int
	Append  bool
}

// Evaluate decides how a check-off made on in.Today affects the streak.
// A duplicate leaves the counters untouched and asks for no new event.
func Evaluate(in Input) (Decision, error) {
	if !in.Periodicity.Valid() {
		return Decision{}, fmt.Errorf("%w: %q", models.ErrInvalidPeriodicity, in.Periodicity)
	}

	if in.Prior == nil {
		return Decision{
			Outcome: StartedStreak,
			Current: 1,
			Longest: max(in.Longest, 1),
			Append:  true,
		}, nil
	}

	gap, err := PeriodsBetween(in.Periodicity, *in.Prior, in.Today)
	if err != nil {
		return Decision{}, err
	}

	switch gap {
	case 0:
		return Decision{
			Outcome: AlreadyCheckedOff,
			Current: in.Current,
			Longest: in.Longest,
		}, nil
	case 1:
		current := in.Current + 1
		return Decision{
			Outcome: Continued,
			Current: current,
			Longest: max(in.Longest, current),
			Append:  true,
		}, nil
	default:
		// longest already holds the best run; it only moves off 0 for rows
		// whose counters were never written
		return Decision{
			Outcome: Reset,
			Current: 1,
			Longest: max(in.Longest, 1),
			Append:  true,
		}, nil
	}
}
