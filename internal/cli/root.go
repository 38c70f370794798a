package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/julianstephens/streaks/internal/backup"
	"github.com/julianstephens/streaks/internal/config"
	"github.com/julianstephens/streaks/internal/constants"
	"github.com/julianstephens/streaks/internal/lock"
	"github.com/julianstephens/streaks/internal/logger"
	"github.com/julianstephens/streaks/internal/storage"
	"github.com/julianstephens/streaks/internal/storage/postgres"
	"github.com/julianstephens/streaks/internal/storage/sqlite"
	"github.com/julianstephens/streaks/internal/tracker"
)

// Context is handed to every command's Run method.
type Context struct {
	Store   storage.Provider
	Tracker *tracker.Tracker
	Config  *config.Config
	Target  config.Target

	// ConfigPath is the config file `init` writes when it does not exist.
	ConfigPath string

	// Out and In default to the process streams when nil.
	Out io.Writer
	In  io.Reader
}

// Migrator is implemented by stores that own a versioned schema.
type Migrator interface {
	Migrate(logFn func(string)) (int, error)
	SchemaVersions() (current, latest int, err error)
}

var ErrBackupUnsupported = errors.New("backups are only supported for SQLite databases")

// NewContext wires a store and a tracker running on the system clock.
func NewContext(store storage.Provider, cfg *config.Config, target config.Target) *Context {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	return &Context{
		Store:   store,
		Tracker: tracker.New(store, nil),
		Config:  cfg,
		Target:  target,
	}
}

// OpenStore builds the store for target without connecting to it.
func OpenStore(target config.Target) (storage.Provider, error) {
	if !target.IsPostgres() {
		return sqlite.NewStore(target.Value), nil
	}

	if _, err := postgres.ValidateConnString(target.Value); err != nil {
		if errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return nil, errors.New("PostgreSQL connection strings with embedded passwords are not allowed; " +
				"use ~/.pgpass, PGPASSWORD or 'streaks db set-connection'")
		}
		return nil, err
	}
	return postgres.New(target.Value), nil
}

func (c *Context) Stdout() io.Writer {
	if c.Out != nil {
		return c.Out
	}
	return os.Stdout
}

func (c *Context) Stdin() io.Reader {
	if c.In != nil {
		return c.In
	}
	return os.Stdin
}

// BackupManager returns a manager for the SQLite database. PostgreSQL
// targets have no file to snapshot.
func (c *Context) BackupManager() (*backup.Manager, error) {
	if c.Target.IsPostgres() {
		return nil, ErrBackupUnsupported
	}
	keep := 0
	if c.Config != nil {
		keep = c.Config.Backup.Keep
	}
	return backup.NewManager(c.Store.GetConfigPath(), keep), nil
}

// PerformAutomaticBackup snapshots the database before a destructive
// command. Failures are logged and never interrupt the command.
func (c *Context) PerformAutomaticBackup() {
	if c.Config != nil && c.Config.Backup.Disabled {
		return
	}
	mgr, err := c.BackupManager()
	if err != nil {
		return
	}
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// LockPath is the lockfile a running TUI holds. SQLite databases keep it
// beside the file; PostgreSQL targets use the config directory.
func (c *Context) LockPath() string {
	if c.Target.IsPostgres() {
		return filepath.Join(config.Dir(), constants.LockfileName)
	}
	return filepath.Join(filepath.Dir(c.Store.GetConfigPath()), constants.LockfileName)
}

// EnsureNoSession fails while a TUI is running against the same database.
func (c *Context) EnsureNoSession(action string) error {
	if err := lock.EnsureFree(c.LockPath()); err != nil {
		if errors.Is(err, lock.ErrHeld) {
			return fmt.Errorf("cannot %s while the streaks TUI is running: %w", action, err)
		}
		return err
	}
	return nil
}
