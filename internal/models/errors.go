package models

import "errors"

var (
	// ErrHabitNotFound is returned when no habit matches the requested name or id
	ErrHabitNotFound = errors.New("habit not found")
	// ErrDuplicateName is returned when a habit with the same name already exists
	ErrDuplicateName = errors.New("habit already exists")
	// ErrInvalidPeriodicity is returned for a cadence other than daily or weekly
	ErrInvalidPeriodicity = errors.New("invalid periodicity")
	// ErrEmptyName is returned when a habit name is blank
	ErrEmptyName = errors.New("habit name cannot be empty")
)
