// Package keyring keeps the PostgreSQL connection string in the OS
// credential store so it never lands in the config file.
package keyring

import (
	"errors"
	"fmt"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/streaks/internal/constants"
)

var (
	// ErrNotFound is returned when no connection string is stored
	ErrNotFound = errors.New("no connection string stored in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring cannot be reached
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// entry is one service/user slot in the OS keyring.
type entry struct {
	service string
	user    string
}

var connection = entry{service: constants.AppName, user: constants.DefaultKeyringUser}

func (e entry) get() (string, error) {
	secret, err := gokeyring.Get(e.service, e.user)
	switch {
	case err == nil:
		return secret, nil
	case errors.Is(err, gokeyring.ErrNotFound):
		return "", ErrNotFound
	default:
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
}

func (e entry) set(secret string) error {
	if err := gokeyring.Set(e.service, e.user, secret); err != nil {
		return fmt.Errorf("store %s/%s in keyring: %w", e.service, e.user, err)
	}
	return nil
}

func (e entry) remove() error {
	err := gokeyring.Delete(e.service, e.user)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gokeyring.ErrNotFound):
		return ErrNotFound
	default:
		return fmt.Errorf("remove %s/%s from keyring: %w", e.service, e.user, err)
	}
}

// GetConnectionString returns the stored connection string.
func GetConnectionString() (string, error) {
	return connection.get()
}

// SetConnectionString replaces the stored connection string.
func SetConnectionString(connStr string) error {
	if connStr == "" {
		return errors.New("connection string cannot be empty")
	}
	return connection.set(connStr)
}

// DeleteConnectionString removes the stored connection string. It returns
// ErrNotFound when there was nothing to remove.
func DeleteConnectionString() error {
	return connection.remove()
}

// IsAvailable reports whether the OS keyring answers a read. A missing
// probe entry still counts as available.
func IsAvailable() bool {
	_, err := entry{service: constants.AppName, user: "availability-probe"}.get()
	return err == nil || errors.Is(err, ErrNotFound)
}
