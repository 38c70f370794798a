// Package memory is a map-backed storage.Provider for tests and dry runs.
package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/streaks/internal/constants"
	"github.com/julianstephens/streaks/internal/models"
	"github.com/julianstephens/streaks/internal/storage"
)

type state struct {
	habits    map[string]models.Habit // by id
	checkOffs map[string][]models.CheckOff
}

func (st *state) clone() *state {
	c := &state{
		habits:    make(map[string]models.Habit, len(st.habits)),
		checkOffs: make(map[string][]models.CheckOff, len(st.checkOffs)),
	}
	for id, h := range st.habits {
		c.habits[id] = h
	}
	for id, list := range st.checkOffs {
		c.checkOffs[id] = append([]models.CheckOff(nil), list...)
	}
	return c
}

type Store struct {
	mu   sync.Mutex
	data *state
}

func NewStore() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.data = &state{
		habits:    map[string]models.Habit{},
		checkOffs: map[string][]models.CheckOff{},
	}
}

func (s *Store) Init() error { return nil }
func (s *Store) Load() error { return nil }
func (s *Store) Close() error { return nil }
func (s *Store) GetConfigPath() string { return ":memory:" }

// Atomic runs fn against a copy of the data and swaps it in on success.
func (s *Store) Atomic(fn func(storage.HabitStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &view{data: s.data.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	s.data = tx.data
	return nil
}

func (s *Store) do(fn func(v *view) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&view{data: s.data})
}

func (s *Store) AddHabit(name string, periodicity models.Periodicity, createdAt time.Time) (id string, err error) {
	err = s.do(func(v *view) error { id, err = v.AddHabit(name, periodicity, createdAt); return err })
	return id, err
}

func (s *Store) DeleteHabit(name string) (found bool, err error) {
	err = s.do(func(v *view) error { found, err = v.DeleteHabit(name); return err })
	return found, err
}

func (s *Store) RenameHabit(oldName, newName string) (found bool, err error) {
	err = s.do(func(v *view) error { found, err = v.RenameHabit(oldName, newName); return err })
	return found, err
}

func (s *Store) ChangePeriodicity(name string, periodicity models.Periodicity) (found bool, err error) {
	err = s.do(func(v *view) error { found, err = v.ChangePeriodicity(name, periodicity); return err })
	return found, err
}

func (s *Store) GetHabit(name string) (h models.Habit, err error) {
	err = s.do(func(v *view) error { h, err = v.GetHabit(name); return err })
	return h, err
}

func (s *Store) MostRecentCheckOff(habitID string) (c models.CheckOff, ok bool, err error) {
	err = s.do(func(v *view) error { c, ok, err = v.MostRecentCheckOff(habitID); return err })
	return c, ok, err
}

func (s *Store) AppendCheckOff(habitID string, day time.Time) (c models.CheckOff, err error) {
	err = s.do(func(v *view) error { c, err = v.AppendCheckOff(habitID, day); return err })
	return c, err
}

func (s *Store) ListCheckOffs(habitID string) (list []models.CheckOff, err error) {
	err = s.do(func(v *view) error { list, err = v.ListCheckOffs(habitID); return err })
	return list, err
}

func (s *Store) SetCounters(habitID string, current, longest int) error {
	return s.do(func(v *view) error { return v.SetCounters(habitID, current, longest) })
}

func (s *Store) ListAll() (habits []models.Habit, err error) {
	err = s.do(func(v *view) error { habits, err = v.ListAll(); return err })
	return habits, err
}

func (s *Store) ListByPeriodicity(periodicity models.Periodicity) (habits []models.Habit, err error) {
	err = s.do(func(v *view) error { habits, err = v.ListByPeriodicity(periodicity); return err })
	return habits, err
}

func (s *Store) MaxCurrentStreak() (habits []models.Habit, err error) {
	err = s.do(func(v *view) error { habits, err = v.MaxCurrentStreak(); return err })
	return habits, err
}

func (s *Store) MaxLongestStreak() (habits []models.Habit, err error) {
	err = s.do(func(v *view) error { habits, err = v.MaxLongestStreak(); return err })
	return habits, err
}

// view implements storage.HabitStore over one state without locking.
type view struct {
	data *state
}

func (v *view) byName(name string) (models.Habit, bool) {
	for _, h := range v.data.habits {
		if h.Name == name {
			return h, true
		}
	}
	return models.Habit{}, false
}

func (v *view) AddHabit(name string, periodicity models.Periodicity, createdAt time.Time) (string, error) {
	if !periodicity.Valid() {
		return "", fmt.Errorf("%w: %q", models.ErrInvalidPeriodicity, periodicity)
	}
	if _, ok := v.byName(name); ok {
		return "", fmt.Errorf("%w: %q", models.ErrDuplicateName, name)
	}
	h := models.Habit{
		ID:          uuid.NewString(),
		Name:        name,
		Periodicity: periodicity,
		CreatedAt:   createdAt,
	}
	v.data.habits[h.ID] = h
	return h.ID, nil
}

func (v *view) DeleteHabit(name string) (bool, error) {
	h, ok := v.byName(name)
	if !ok {
		return false, nil
	}
	delete(v.data.habits, h.ID)
	delete(v.data.checkOffs, h.ID)
	return true, nil
}

func (v *view) RenameHabit(oldName, newName string) (bool, error) {
	h, ok := v.byName(oldName)
	if !ok {
		return false, nil
	}
	if other, taken := v.byName(newName); taken && other.ID != h.ID {
		return false, fmt.Errorf("%w: %q", models.ErrDuplicateName, newName)
	}
	h.Name = newName
	v.data.habits[h.ID] = h
	return true, nil
}

func (v *view) ChangePeriodicity(name string, periodicity models.Periodicity) (bool, error) {
	if !periodicity.Valid() {
		return false, fmt.Errorf("%w: %q", models.ErrInvalidPeriodicity, periodicity)
	}
	h, ok := v.byName(name)
	if !ok {
		return false, nil
	}
	h.Periodicity = periodicity
	v.data.habits[h.ID] = h
	return true, nil
}

func (v *view) GetHabit(name string) (models.Habit, error) {
	h, ok := v.byName(name)
	if !ok {
		return models.Habit{}, fmt.Errorf("%w: %q", models.ErrHabitNotFound, name)
	}
	return h, nil
}

func (v *view) MostRecentCheckOff(habitID string) (models.CheckOff, bool, error) {
	list, _ := v.ListCheckOffs(habitID)
	if len(list) == 0 {
		return models.CheckOff{}, false, nil
	}
	return list[0], true, nil
}

func (v *view) AppendCheckOff(habitID string, day time.Time) (models.CheckOff, error) {
	if _, ok := v.data.habits[habitID]; !ok {
		return models.CheckOff{}, fmt.Errorf("%w: id %s", models.ErrHabitNotFound, habitID)
	}
	c := models.CheckOff{
		ID:      uuid.NewString(),
		HabitID: habitID,
		Day:     day.Format(constants.DateFormat),
	}
	v.data.checkOffs[habitID] = append(v.data.checkOffs[habitID], c)
	return c, nil
}

func (v *view) ListCheckOffs(habitID string) ([]models.CheckOff, error) {
	src := v.data.checkOffs[habitID]
	out := make([]models.CheckOff, len(src))
	// reverse insertion order so that among equal days the newest wins
	for i, c := range src {
		out[len(src)-1-i] = c
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Day > out[j].Day })
	return out, nil
}

func (v *view) SetCounters(habitID string, current, longest int) error {
	h, ok := v.data.habits[habitID]
	if !ok {
		return fmt.Errorf("%w: id %s", models.ErrHabitNotFound, habitID)
	}
	if current < 0 || longest < 0 {
		return fmt.Errorf("streak counters cannot be negative")
	}
	h.CurrentStreak, h.LongestStreak = current, longest
	v.data.habits[habitID] = h
	return nil
}

func (v *view) filter(keep func(models.Habit) bool) []models.Habit {
	var out []models.Habit
	for _, h := range v.data.habits {
		if keep(h) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (v *view) ListAll() ([]models.Habit, error) {
	return v.filter(func(models.Habit) bool { return true }), nil
}

func (v *view) ListByPeriodicity(periodicity models.Periodicity) ([]models.Habit, error) {
	return v.filter(func(h models.Habit) bool { return h.Periodicity == periodicity }), nil
}

func (v *view) maxBy(counter func(models.Habit) int) []models.Habit {
	best := -1
	for _, h := range v.data.habits {
		if c := counter(h); c > best {
			best = c
		}
	}
	return v.filter(func(h models.Habit) bool { return counter(h) == best })
}

func (v *view) MaxCurrentStreak() ([]models.Habit, error) {
	return v.maxBy(func(h models.Habit) int { return h.CurrentStreak }), nil
}

func (v *view) MaxLongestStreak() ([]models.Habit, error) {
	return v.maxBy(func(h models.Habit) int { return h.LongestStreak }), nil
}
