package streak

import "time"

// Clock supplies the calendar date a check-off is judged against.
type Clock interface {
	Today() time.Time
}

// SystemClock reads the host's local calendar date.
type SystemClock struct{}

func (SystemClock) Today() time.Time {
	return Day(time.Now())
}

// FixedClock is a Clock pinned to a chosen day. Tests move it with Advance.
type FixedClock struct {
	day time.Time
}

// NewFixedClock creates a clock that reports the calendar date of t.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{day: Day(t)}
}

func (c *FixedClock) Today() time.Time {
	return c.day
}

// Set moves the clock to the calendar date of t.
func (c *FixedClock) Set(t time.Time) {
	c.day = Day(t)
}

// Advance moves the clock by n days (negative moves it back).
func (c *FixedClock) Advance(days int) {
	c.day = c.day.AddDate(0, 0, days)
}
