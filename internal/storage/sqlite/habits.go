package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/streaks/internal/constants"
	"github.com/julianstephens/streaks/internal/models"
)

const habitColumns = "id, name, periodicity, created_at, current_streak, longest_streak"

func (s *Store) AddHabit(name string, periodicity models.Periodicity, createdAt time.Time) (string, error) {
	if !periodicity.Valid() {
		return "", fmt.Errorf("%w: %q", models.ErrInvalidPeriodicity, periodicity)
	}

	id := uuid.NewString()
	_, err := s.q.Exec(`
		INSERT INTO habits (id, name, periodicity, created_at, current_streak, longest_streak)
		VALUES (?, ?, ?, ?, 0, 0)`,
		id, name, string(periodicity), createdAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%w: %q", models.ErrDuplicateName, name)
		}
		return "", fmt.Errorf("failed to add habit: %w", err)
	}
	return id, nil
}

func (s *Store) DeleteHabit(name string) (bool, error) {
	found := false
	err := s.atomic(func(tx *Store) error {
		var id string
		err := tx.q.QueryRow("SELECT id FROM habits WHERE name = ?", name).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to look up habit: %w", err)
		}

		if _, err := tx.q.Exec("DELETE FROM check_offs WHERE habit_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete check-offs: %w", err)
		}
		if _, err := tx.q.Exec("DELETE FROM habits WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete habit: %w", err)
		}
		found = true
		return nil
	})
	return found, err
}

func (s *Store) RenameHabit(oldName, newName string) (bool, error) {
	res, err := s.q.Exec("UPDATE habits SET name = ? WHERE name = ?", newName, oldName)
	if err != nil {
		if isUniqueViolation(err) {
			return false, fmt.Errorf("%w: %q", models.ErrDuplicateName, newName)
		}
		return false, fmt.Errorf("failed to rename habit: %w", err)
	}
	return affected(res)
}

func (s *Store) ChangePeriodicity(name string, periodicity models.Periodicity) (bool, error) {
	if !periodicity.Valid() {
		return false, fmt.Errorf("%w: %q", models.ErrInvalidPeriodicity, periodicity)
	}
	res, err := s.q.Exec("UPDATE habits SET periodicity = ? WHERE name = ?", string(periodicity), name)
	if err != nil {
		return false, fmt.Errorf("failed to change periodicity: %w", err)
	}
	return affected(res)
}

func (s *Store) GetHabit(name string) (models.Habit, error) {
	row := s.q.QueryRow("SELECT "+habitColumns+" FROM habits WHERE name = ?", name)
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, fmt.Errorf("%w: %q", models.ErrHabitNotFound, name)
	}
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to get habit: %w", err)
	}
	return h, nil
}

func (s *Store) MostRecentCheckOff(habitID string) (models.CheckOff, bool, error) {
	var c models.CheckOff
	err := s.q.QueryRow(`
		SELECT id, habit_id, day FROM check_offs
		WHERE habit_id = ?
		ORDER BY day DESC, rowid DESC
		LIMIT 1`, habitID).Scan(&c.ID, &c.HabitID, &c.Day)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CheckOff{}, false, nil
	}
	if err != nil {
		return models.CheckOff{}, false, fmt.Errorf("failed to get latest check-off: %w", err)
	}
	return c, true, nil
}

func (s *Store) AppendCheckOff(habitID string, day time.Time) (models.CheckOff, error) {
	c := models.CheckOff{
		ID:      uuid.NewString(),
		HabitID: habitID,
		Day:     day.Format(constants.DateFormat),
	}
	_, err := s.q.Exec("INSERT INTO check_offs (id, habit_id, day) VALUES (?, ?, ?)", c.ID, c.HabitID, c.Day)
	if err != nil {
		return models.CheckOff{}, fmt.Errorf("failed to append check-off: %w", err)
	}
	return c, nil
}

func (s *Store) ListCheckOffs(habitID string) ([]models.CheckOff, error) {
	rows, err := s.q.Query(`
		SELECT id, habit_id, day FROM check_offs
		WHERE habit_id = ?
		ORDER BY day DESC, rowid DESC`, habitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list check-offs: %w", err)
	}
	defer rows.Close()

	var checkOffs []models.CheckOff
	for rows.Next() {
		var c models.CheckOff
		if err := rows.Scan(&c.ID, &c.HabitID, &c.Day); err != nil {
			return nil, err
		}
		checkOffs = append(checkOffs, c)
	}
	return checkOffs, rows.Err()
}

func (s *Store) SetCounters(habitID string, current, longest int) error {
	res, err := s.q.Exec(
		"UPDATE habits SET current_streak = ?, longest_streak = ? WHERE id = ?",
		current, longest, habitID)
	if err != nil {
		return fmt.Errorf("failed to set counters: %w", err)
	}
	found, err := affected(res)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: id %s", models.ErrHabitNotFound, habitID)
	}
	return nil
}

func (s *Store) ListAll() ([]models.Habit, error) {
	return s.queryHabits("SELECT " + habitColumns + " FROM habits ORDER BY name")
}

func (s *Store) ListByPeriodicity(periodicity models.Periodicity) ([]models.Habit, error) {
	return s.queryHabits("SELECT "+habitColumns+" FROM habits WHERE periodicity = ? ORDER BY name", string(periodicity))
}

func (s *Store) MaxCurrentStreak() ([]models.Habit, error) {
	return s.queryHabits(`SELECT ` + habitColumns + ` FROM habits
		WHERE current_streak = (SELECT MAX(current_streak) FROM habits)
		ORDER BY name`)
}

func (s *Store) MaxLongestStreak() ([]models.Habit, error) {
	return s.queryHabits(`SELECT ` + habitColumns + ` FROM habits
		WHERE longest_streak = (SELECT MAX(longest_streak) FROM habits)
		ORDER BY name`)
}

func (s *Store) queryHabits(query string, args ...any) ([]models.Habit, error) {
	rows, err := s.q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var periodicity, createdAt string
	if err := row.Scan(&h.ID, &h.Name, &periodicity, &createdAt, &h.CurrentStreak, &h.LongestStreak); err != nil {
		return models.Habit{}, err
	}
	h.Periodicity = models.Periodicity(periodicity)

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("invalid created_at for habit %q: %w", h.Name, err)
	}
	h.CreatedAt = t
	return h, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}
