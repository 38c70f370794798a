package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/streaks/internal/models"
)

func TestDayDropsTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	late := time.Date(2024, 3, 10, 23, 30, 0, 0, loc)

	d := Day(late)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), d)
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, DaysBetween(date(t, "2024-03-10"), date(t, "2024-03-10")))
	assert.Equal(t, 1, DaysBetween(date(t, "2024-03-09"), date(t, "2024-03-10")))
	assert.Equal(t, -1, DaysBetween(date(t, "2024-03-10"), date(t, "2024-03-09")))
	assert.Equal(t, 366, DaysBetween(date(t, "2024-01-01"), date(t, "2025-01-01")))
}

func TestDaysBetween_AcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	before := time.Date(2024, 3, 9, 23, 0, 0, 0, ny)
	after := time.Date(2024, 3, 10, 23, 0, 0, 0, ny)
	assert.Equal(t, 1, DaysBetween(before, after))
}

func TestWeekStart(t *testing.T) {
	tests := map[string]string{
		"2024-03-04": "2024-03-04", // Monday
		"2024-03-07": "2024-03-04",
		"2024-03-10": "2024-03-04", // Sunday
		"2021-01-03": "2020-12-28",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatDay(WeekStart(date(t, in))), in)
	}
}

func TestWeeksBetweenMatchesISOWeek(t *testing.T) {
	// Walk three years day by day; whenever the ISO week number changes the
	// distance from the previous day must be exactly one week.
	d := date(t, "2019-12-20")
	for i := 0; i < 3*366; i++ {
		next := d.AddDate(0, 0, 1)
		_, w1 := d.ISOWeek()
		_, w2 := next.ISOWeek()
		want := 0
		if w1 != w2 {
			want = 1
		}
		require.Equal(t, want, WeeksBetween(d, next), "%s -> %s", FormatDay(d), FormatDay(next))
		d = next
	}
}

func TestPeriodLabel(t *testing.T) {
	assert.Equal(t, "2024-03-10", PeriodLabel(models.PeriodicityDaily, date(t, "2024-03-10")))
	assert.Equal(t, "2024-W10", PeriodLabel(models.PeriodicityWeekly, date(t, "2024-03-10")))
	assert.Equal(t, "2020-W53", PeriodLabel(models.PeriodicityWeekly, date(t, "2021-01-03")))
}

func TestParseDay(t *testing.T) {
	_, err := ParseDay("2024-13-01")
	assert.Error(t, err)
}

func TestFixedClock(t *testing.T) {
	c := NewFixedClock(time.Date(2024, 3, 10, 18, 45, 0, 0, time.UTC))
	assert.Equal(t, "2024-03-10", FormatDay(c.Today()))

	c.Advance(1)
	assert.Equal(t, "2024-03-11", FormatDay(c.Today()))

	c.Advance(-3)
	assert.Equal(t, "2024-03-08", FormatDay(c.Today()))

	c.Set(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2025-01-01", FormatDay(c.Today()))
}
