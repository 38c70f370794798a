package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/julianstephens/streaks/internal/constants"
	"github.com/julianstephens/streaks/internal/models"
)

var habitColumns = []string{"id", "name", "periodicity", "created_at", "current_streak", "longest_streak"}

const checkOffColumns = "id, habit_id, to_char(day, 'YYYY-MM-DD')"

func (s *Store) AddHabit(name string, periodicity models.Periodicity, createdAt time.Time) (string, error) {
	if !periodicity.Valid() {
		return "", fmt.Errorf("%w: %q", models.ErrInvalidPeriodicity, periodicity)
	}

	id := uuid.NewString()
	_, err := s.exec(psql.Insert("habits").
		Columns(habitColumns...).
		Values(id, name, string(periodicity), createdAt.UTC(), 0, 0))
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
		row, err := tx.queryRow(psql.Select("id").From("habits").Where(sq.Eq{"name": name}))
		if err != nil {
			return err
		}
		var id string
		if err := row.Scan(&id); errors.Is(err, sql.ErrNoRows) {
			return nil
		} else if err != nil {
			return fmt.Errorf("failed to look up habit: %w", err)
		}

		if _, err := tx.exec(psql.Delete("check_offs").Where(sq.Eq{"habit_id": id})); err != nil {
			return fmt.Errorf("failed to delete check-offs: %w", err)
		}
		if _, err := tx.exec(psql.Delete("habits").Where(sq.Eq{"id": id})); err != nil {
			return fmt.Errorf("failed to delete habit: %w", err)
		}
		found = true
		return nil
	})
	return found, err
}

func (s *Store) RenameHabit(oldName, newName string) (bool, error) {
	res, err := s.exec(psql.Update("habits").Set("name", newName).Where(sq.Eq{"name": oldName}))
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
	res, err := s.exec(psql.Update("habits").Set("periodicity", string(periodicity)).Where(sq.Eq{"name": name}))
	if err != nil {
		return false, fmt.Errorf("failed to change periodicity: %w", err)
	}
	return affected(res)
}

func (s *Store) GetHabit(name string) (models.Habit, error) {
	row, err := s.queryRow(psql.Select(habitColumns...).From("habits").Where(sq.Eq{"name": name}))
	if err != nil {
		return models.Habit{}, err
	}
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
	row, err := s.queryRow(psql.Select(checkOffColumns).From("check_offs").
		Where(sq.Eq{"habit_id": habitID}).
		OrderBy("day DESC").
		Limit(1))
	if err != nil {
		return models.CheckOff{}, false, err
	}

	var c models.CheckOff
	if err := row.Scan(&c.ID, &c.HabitID, &c.Day); errors.Is(err, sql.ErrNoRows) {
		return models.CheckOff{}, false, nil
	} else if err != nil {
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
	_, err := s.exec(psql.Insert("check_offs").
		Columns("id", "habit_id", "day").
		Values(c.ID, c.HabitID, c.Day))
	if err != nil {
		return models.CheckOff{}, fmt.Errorf("failed to append check-off: %w", err)
	}
	return c, nil
}

func (s *Store) ListCheckOffs(habitID string) ([]models.CheckOff, error) {
	rows, err := s.query(psql.Select(checkOffColumns).From("check_offs").
		Where(sq.Eq{"habit_id": habitID}).
		OrderBy("day DESC"))
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
	res, err := s.exec(psql.Update("habits").
		Set("current_streak", current).
		Set("longest_streak", longest).
		Where(sq.Eq{"id": habitID}))
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
	return s.queryHabits(psql.Select(habitColumns...).From("habits").OrderBy("name"))
}

func (s *Store) ListByPeriodicity(periodicity models.Periodicity) ([]models.Habit, error) {
	return s.queryHabits(psql.Select(habitColumns...).From("habits").
		Where(sq.Eq{"periodicity": string(periodicity)}).
		OrderBy("name"))
}

func (s *Store) MaxCurrentStreak() ([]models.Habit, error) {
	return s.queryHabits(psql.Select(habitColumns...).From("habits").
		Where("current_streak = (SELECT MAX(current_streak) FROM habits)").
		OrderBy("name"))
}

func (s *Store) MaxLongestStreak() ([]models.Habit, error) {
	return s.queryHabits(psql.Select(habitColumns...).From("habits").
		Where("longest_streak = (SELECT MAX(longest_streak) FROM habits)").
		OrderBy("name"))
}

func (s *Store) queryHabits(b sq.SelectBuilder) ([]models.Habit, error) {
	rows, err := s.query(b)
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
	var periodicity string
	if err := row.Scan(&h.ID, &h.Name, &periodicity, &h.CreatedAt, &h.CurrentStreak, &h.LongestStreak); err != nil {
		return models.Habit{}, err
	}
	h.Periodicity = models.Periodicity(periodicity)
	return h, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}
