// Package storagetest holds behavioral tests every storage.Provider must pass.
package storagetest

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/streaks/internal/models"
	"github.com/julianstephens/streaks/internal/storage"
)

// Factory returns a fresh, initialized and empty provider. Cleanup is the
// factory's job (t.Cleanup).
type Factory func(t *testing.T) storage.Provider

var created = time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func names(habits []models.Habit) []string {
	out := make([]string, 0, len(habits))
	for _, h := range habits {
		out = append(out, h.Name)
	}
	return out
}

// Run executes the full suite against providers built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("AddAndGet", func(t *testing.T) { testAddAndGet(t, newStore(t)) })
	t.Run("DuplicateName", func(t *testing.T) { testDuplicateName(t, newStore(t)) })
	t.Run("NamesAreCaseSensitive", func(t *testing.T) { testCaseSensitive(t, newStore(t)) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, newStore(t)) })
	t.Run("InvalidPeriodicity", func(t *testing.T) { testInvalidPeriodicity(t, newStore(t)) })
	t.Run("DeleteCascades", func(t *testing.T) { testDeleteCascades(t, newStore(t)) })
	t.Run("Rename", func(t *testing.T) { testRename(t, newStore(t)) })
	t.Run("ChangePeriodicityKeepsCounters", func(t *testing.T) { testChangePeriodicity(t, newStore(t)) })
	t.Run("CheckOffs", func(t *testing.T) { testCheckOffs(t, newStore(t)) })
	t.Run("SetCounters", func(t *testing.T) { testSetCounters(t, newStore(t)) })
	t.Run("Listing", func(t *testing.T) { testListing(t, newStore(t)) })
	t.Run("MaxStreaks", func(t *testing.T) { testMaxStreaks(t, newStore(t)) })
	t.Run("AtomicCommit", func(t *testing.T) { testAtomicCommit(t, newStore(t)) })
	t.Run("AtomicRollback", func(t *testing.T) { testAtomicRollback(t, newStore(t)) })
}

func testAddAndGet(t *testing.T, s storage.Provider) {
	id, err := s.AddHabit("Read", models.PeriodicityDaily, created)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	h, err := s.GetHabit("Read")
	require.NoError(t, err)
	assert.Equal(t, id, h.ID)
	assert.Equal(t, "Read", h.Name)
	assert.Equal(t, models.PeriodicityDaily, h.Periodicity)
	assert.True(t, created.Equal(h.CreatedAt), "created_at %v != %v", h.CreatedAt, created)
	assert.Zero(t, h.CurrentStreak)
	assert.Zero(t, h.LongestStreak)

	other, err := s.AddHabit("Run", models.PeriodicityWeekly, created)
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}

func testDuplicateName(t *testing.T, s storage.Provider) {
	_, err := s.AddHabit("Read", models.PeriodicityDaily, created)
	require.NoError(t, err)

	_, err = s.AddHabit("Read", models.PeriodicityWeekly, created)
	require.ErrorIs(t, err, models.ErrDuplicateName)

	all, err := s.ListAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, models.PeriodicityDaily, all[0].Periodicity)
}

func testCaseSensitive(t *testing.T, s storage.Provider) {
	_, err := s.AddHabit("Read", models.PeriodicityDaily, created)
	require.NoError(t, err)
	_, err = s.AddHabit("read", models.PeriodicityDaily, created)
	require.NoError(t, err)

	_, err = s.GetHabit("READ")
	assert.ErrorIs(t, err, models.ErrHabitNotFound)
}

func testGetMissing(t *testing.T, s storage.Provider) {
	_, err := s.GetHabit("Nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrHabitNotFound))
}

func testInvalidPeriodicity(t *testing.T, s storage.Provider) {
	_, err := s.AddHabit("Read", models.Periodicity("monthly"), created)
	require.ErrorIs(t, err, models.ErrInvalidPeriodicity)

	_, err = s.AddHabit("Read", models.PeriodicityDaily, created)
	require.NoError(t, err)
	_, err = s.ChangePeriodicity("Read", models.Periodicity("hourly"))
	require.ErrorIs(t, err, models.ErrInvalidPeriodicity)
}

func testDeleteCascades(t *testing.T, s storage.Provider) {
	id, err := s.AddHabit("Read", models.PeriodicityDaily, created)
	require.NoError(t, err)
	keepID, err := s.AddHabit("Run", models.PeriodicityDaily, created)
	require.NoError(t, err)

	for _, d := range []string{"2024-03-04", "2024-03-05"} {
		_, err := s.AppendCheckOff(id, day(d))
		require.NoError(t, err)
	}
	_, err = s.AppendCheckOff(keepID, day("2024-03-05"))
	require.NoError(t, err)

	found, err := s.DeleteHabit("Read")
	require.NoError(t, err)
	assert.True(t, found)

	_, err = s.GetHabit("Read")
	assert.ErrorIs(t, err, models.ErrHabitNotFound)

	orphans, err := s.ListCheckOffs(id)
	require.NoError(t, err)
	assert.Empty(t, orphans)

	kept, err := s.ListCheckOffs(keepID)
	require.NoError(t, err)
	assert.Len(t, kept, 1)

	found, err = s.DeleteHabit("Read")
	require.NoError(t, err)
	assert.False(t, found)
}

func testRename(t *testing.T, s storage.Provider) {
	id, err := s.AddHabit("Read", models.PeriodicityDaily, created)
	require.NoError(t, err)
	_, err = s.AddHabit("Run", models.PeriodicityDaily, created)
	require.NoError(t, err)

	found, err := s.RenameHabit("Read", "Read books")
	require.NoError(t, err)
	assert.True(t, found)

	h, err := s.GetHabit("Read books")
	require.NoError(t, err)
	assert.Equal(t, id, h.ID)

	_, err = s.GetHabit("Read")
	assert.ErrorIs(t, err, models.ErrHabitNotFound)

	_, err = s.RenameHabit("Read books", "Run")
	assert.ErrorIs(t, err, models.ErrDuplicateName)

	found, err = s.RenameHabit("Missing", "Other")
	require.NoError(t, err)
	assert.False(t, found)
}

func testChangePeriodicity(t *testing.T, s storage.Provider) {
	id, err := s.AddHabit("Read", models.PeriodicityDaily, created)
	require.NoError(t, err)
	require.NoError(t, s.SetCounters(id, 3, 5))

	found, err := s.ChangePeriodicity("Read", models.PeriodicityWeekly)
	require.NoError(t, err)
	assert.True(t, found)

	h, err := s.GetHabit("Read")
	require.NoError(t, err)
	assert.Equal(t, models.PeriodicityWeekly, h.Periodicity)
	assert.Equal(t, 3, h.CurrentStreak)
	assert.Equal(t, 5, h.LongestStreak)

	found, err = s.ChangePeriodicity("Missing", models.PeriodicityWeekly)
	require.NoError(t, err)
	assert.False(t, found)
}

func testCheckOffs(t *testing.T, s storage.Provider) {
	id, err := s.AddHabit("Read", models.PeriodicityDaily, created)
	require.NoError(t, err)

	_, ok, err := s.MostRecentCheckOff(id)
	require.NoError(t, err)
	assert.False(t, ok)

	// appended out of order on purpose
	for _, d := range []string{"2024-03-05", "2024-03-07", "2024-03-06"} {
		c, err := s.AppendCheckOff(id, day(d))
		require.NoError(t, err)
		assert.Equal(t, d, c.Day)
		assert.Equal(t, id, c.HabitID)
		assert.NotEmpty(t, c.ID)
	}

	latest, ok, err := s.MostRecentCheckOff(id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2024-03-07", latest.Day)

	all, err := s.ListCheckOffs(id)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2024-03-07", all[0].Day)
	assert.Equal(t, "2024-03-06", all[1].Day)
	assert.Equal(t, "2024-03-05", all[2].Day)
}

func testSetCounters(t *testing.T, s storage.Provider) {
	id, err := s.AddHabit("Read", models.PeriodicityDaily, created)
	require.NoError(t, err)

	require.NoError(t, s.SetCounters(id, 2, 4))
	h, err := s.GetHabit("Read")
	require.NoError(t, err)
	assert.Equal(t, 2, h.CurrentStreak)
	assert.Equal(t, 4, h.LongestStreak)

	err = s.SetCounters("00000000-0000-0000-0000-000000000000", 1, 1)
	assert.ErrorIs(t, err, models.ErrHabitNotFound)
}

func testListing(t *testing.T, s storage.Provider) {
	all, err := s.ListAll()
	require.NoError(t, err)
	assert.Empty(t, all)

	for _, h := range []struct {
		name string
		p    models.Periodicity
	}{
		{"Stretch", models.PeriodicityDaily},
		{"Call mom", models.PeriodicityWeekly},
		{"Read", models.PeriodicityDaily},
	} {
		_, err := s.AddHabit(h.name, h.p, created)
		require.NoError(t, err)
	}

	all, err = s.ListAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"Call mom", "Read", "Stretch"}, names(all))

	daily, err := s.ListByPeriodicity(models.PeriodicityDaily)
	require.NoError(t, err)
	assert.Equal(t, []string{"Read", "Stretch"}, names(daily))

	weekly, err := s.ListByPeriodicity(models.PeriodicityWeekly)
	require.NoError(t, err)
	assert.Equal(t, []string{"Call mom"}, names(weekly))
}

func testMaxStreaks(t *testing.T, s storage.Provider) {
	top, err := s.MaxCurrentStreak()
	require.NoError(t, err)
	assert.Empty(t, top)
	top, err = s.MaxLongestStreak()
	require.NoError(t, err)
	assert.Empty(t, top)

	a, err := s.AddHabit("A", models.PeriodicityDaily, created)
	require.NoError(t, err)
	b, err := s.AddHabit("B", models.PeriodicityWeekly, created)
	require.NoError(t, err)

	// all tied at zero
	top, err = s.MaxCurrentStreak()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, names(top))
	top, err = s.MaxLongestStreak()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, names(top))

	require.NoError(t, s.SetCounters(a, 1, 6))
	require.NoError(t, s.SetCounters(b, 2, 2))

	top, err = s.MaxCurrentStreak()
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, names(top))

	top, err = s.MaxLongestStreak()
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, names(top))
}

func testAtomicCommit(t *testing.T, s storage.Provider) {
	id, err := s.AddHabit("Read", models.PeriodicityDaily, created)
	require.NoError(t, err)

	err = s.Atomic(func(tx storage.HabitStore) error {
		if _, err := tx.AppendCheckOff(id, day("2024-03-04")); err != nil {
			return err
		}
		return tx.SetCounters(id, 1, 1)
	})
	require.NoError(t, err)

	h, err := s.GetHabit("Read")
	require.NoError(t, err)
	assert.Equal(t, 1, h.CurrentStreak)

	all, err := s.ListCheckOffs(id)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func testAtomicRollback(t *testing.T, s storage.Provider) {
	id, err := s.AddHabit("Read", models.PeriodicityDaily, created)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.Atomic(func(tx storage.HabitStore) error {
		if _, err := tx.AppendCheckOff(id, day("2024-03-04")); err != nil {
			return err
		}
		if err := tx.SetCounters(id, 1, 1); err != nil {
			return err
		}
		if _, err := tx.AddHabit("Run", models.PeriodicityDaily, created); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	h, err := s.GetHabit("Read")
	require.NoError(t, err)
	assert.Zero(t, h.CurrentStreak)
	assert.Zero(t, h.LongestStreak)

	all, err := s.ListCheckOffs(id)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = s.GetHabit("Run")
	assert.ErrorIs(t, err, models.ErrHabitNotFound)
}
