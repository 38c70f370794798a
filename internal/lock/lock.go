package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/streaks/internal/constants"
	"github.com/julianstephens/streaks/internal/logger"
)

var (
	findProcessFunc = ps.FindProcess
	getpid          = os.Getpid
)

// ErrHeld is returned when another live streaks process owns the lockfile.
var ErrHeld = errors.New("lock is held by another streaks process")

// Lock is a pid lockfile. It only guards against a second interactive
// session or a restore underneath a running one; it is not a mutex.
type Lock struct {
	path string
}

// Holder reports the pid recorded in the lockfile and whether that process
// is still a running streaks binary. A missing lockfile is not an error.
func Holder(path string) (int, bool, error) {
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read lockfile: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil || pid <= 0 {
		return 0, false, fmt.Errorf("invalid process ID in lockfile %s", path)
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return pid, false, nil
	}
	if !strings.HasPrefix(process.Executable(), constants.AppName) {
		return pid, false, nil
	}
	return pid, true, nil
}

// Acquire writes the current pid to path. Stale or malformed lockfiles are
// replaced.
func Acquire(path string) (*Lock, error) {
	pid, running, err := Holder(path)
	if err != nil {
		logger.Warn("replacing unreadable lockfile", "path", path, "error", err)
	}
	if running && pid != getpid() {
		return nil, fmt.Errorf("%w (pid %d)", ErrHeld, pid)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create lockfile directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(getpid())), 0600); err != nil {
		return nil, fmt.Errorf("failed to write lockfile: %w", err)
	}

	logger.Debug("lock acquired", "path", path, "pid", getpid())
	return &Lock{path: path}, nil
}

// Release removes the lockfile if this process still owns it.
func (l *Lock) Release() error {
	content, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read lockfile: %w", err)
	}
	if strings.TrimSpace(string(content)) != strconv.Itoa(getpid()) {
		return nil
	}
	if err := os.Remove(l.path); err != nil {
		return fmt.Errorf("failed to remove lockfile: %w", err)
	}
	return nil
}

// EnsureFree fails with ErrHeld when a live process holds path.
func EnsureFree(path string) error {
	pid, running, err := Holder(path)
	if err != nil {
		return err
	}
	if running && pid != getpid() {
		return fmt.Errorf("%w (pid %d)", ErrHeld, pid)
	}
	return nil
}
