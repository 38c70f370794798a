// Package clitest builds command contexts over throwaway SQLite databases.
package clitest

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/streaks/internal/cli"
	"github.com/julianstephens/streaks/internal/config"
	"github.com/julianstephens/streaks/internal/storage/sqlite"
	"github.com/julianstephens/streaks/internal/streak"
	"github.com/julianstephens/streaks/internal/tracker"
)

// Today is the fixed date commands see: Friday 2024-03-08.
var Today = time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)

// Env is a command context plus the pieces tests poke at.
type Env struct {
	Ctx   *cli.Context
	Store *sqlite.Store
	Clock *streak.FixedClock
	Out   *bytes.Buffer
	Dir   string
}

// New returns an uninitialized store wrapped in a context. Backups are off
// so tests that do not look at them leave no files behind.
func New(t *testing.T) *Env {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "streaks.db")
	store := sqlite.NewStore(dbPath)
	clock := streak.NewFixedClock(Today)

	cfg := config.Default()
	cfg.Backup.Disabled = true

	out := &bytes.Buffer{}
	ctx := &cli.Context{
		Store:   store,
		Tracker: tracker.New(store, clock),
		Config:  &cfg,
		Target:  config.Target{Value: dbPath, Source: config.SourceFlag},
		Out:     out,
	}

	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	return &Env{Ctx: ctx, Store: store, Clock: clock, Out: out, Dir: dir}
}

// Initialized is New with the schema already in place.
func Initialized(t *testing.T) *Env {
	t.Helper()
	env := New(t)
	if err := env.Store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	return env
}

// AddHabit creates a habit through the tracker.
func (e *Env) AddHabit(t *testing.T, name, periodicity string) {
	t.Helper()
	if _, err := e.Ctx.Tracker.AddHabit(name, periodicity); err != nil {
		t.Fatalf("failed to add habit %q: %v", name, err)
	}
}

// Output returns and clears everything written so far.
func (e *Env) Output() string {
	s := e.Out.String()
	e.Out.Reset()
	return s
}
