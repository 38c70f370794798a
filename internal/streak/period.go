package streak

import (
	"fmt"
	"time"

	"github.com/julianstephens/streaks/internal/constants"
	"github.com/julianstephens/streaks/internal/models"
)

const oneDay = 24 * time.Hour

// Day strips the time of day from t, keeping the calendar date as seen in
// t's own location. The result is midnight UTC so that subtracting two days
// always yields a whole multiple of 24h regardless of DST.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a normalized day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return Day(t), nil
}

// FormatDay renders t as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return Day(t).Format(constants.DateFormat)
}

// DaysBetween returns the number of calendar days from a to b. It is negative
// when b precedes a.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)) / oneDay)
}

// WeekStart returns the Monday opening the ISO-8601 week that contains t.
func WeekStart(t time.Time) time.Time {
	d := Day(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// WeeksBetween returns the number of ISO weeks from a's week to b's week.
// Weeks are anchored on their Mondays, so the count is continuous across ISO
// year boundaries (2020-W53 to 2021-W01 is one week).
func WeeksBetween(a, b time.Time) int {
	return DaysBetween(WeekStart(a), WeekStart(b)) / 7
}

// PeriodsBetween counts whole periods of cadence p from prior to today.
// 0 means the same period and 1 the immediately preceding one.
func PeriodsBetween(p models.Periodicity, prior, today time.Time) (int, error) {
	switch p {
	case models.PeriodicityDaily:
		return DaysBetween(prior, today), nil
	case models.PeriodicityWeekly:
		return WeeksBetween(prior, today), nil
	default:
		return 0, fmt.Errorf("%w: %q", models.ErrInvalidPeriodicity, p)
	}
}

// PeriodLabel names the period containing t: the date for daily habits and
// the ISO week (e.g. 2024-W07) for weekly ones.
func PeriodLabel(p models.Periodicity, t time.Time) string {
	if p == models.PeriodicityWeekly {
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	}
	return FormatDay(t)
}
