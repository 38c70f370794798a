package system

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/streaks/internal/cli/clitest"
	"github.com/julianstephens/streaks/internal/config"
)

func TestInitCmd_Success(t *testing.T) {
	env := clitest.New(t)
	env.Ctx.ConfigPath = filepath.Join(env.Dir, "config.yaml")

	cmd := &InitCmd{}
	if err := cmd.Run(env.Ctx); err != nil {
		t.Fatalf("init command failed: %v", err)
	}

	if _, err := os.Stat(env.Store.GetConfigPath()); os.IsNotExist(err) {
		t.Errorf("database file was not created at %s", env.Store.GetConfigPath())
	}
	if _, err := os.Stat(env.Ctx.ConfigPath); err != nil {
		t.Errorf("config file was not written: %v", err)
	}
	if _, err := config.Load(env.Ctx.ConfigPath); err != nil {
		t.Errorf("written config does not load: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "Initialized streaks storage") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestInitCmd_Idempotent(t *testing.T) {
	env := clitest.New(t)
	cmd := &InitCmd{}

	if err := cmd.Run(env.Ctx); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	env.AddHabit(t, "read", "daily")

	if err := cmd.Run(env.Ctx); err != nil {
		t.Fatalf("second init failed: %v", err)
	}
	if _, err := env.Ctx.Tracker.Habit("read"); err != nil {
		t.Errorf("second init lost data: %v", err)
	}
}

func TestInitCmd_KeepsExistingConfig(t *testing.T) {
	env := clitest.New(t)
	env.Ctx.ConfigPath = filepath.Join(env.Dir, "config.yaml")
	custom := "backup:\n  keep: 3\n"
	if err := os.WriteFile(env.Ctx.ConfigPath, []byte(custom), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if err := (&InitCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("init command failed: %v", err)
	}

	data, err := os.ReadFile(env.Ctx.ConfigPath)
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}
	if string(data) != custom {
		t.Errorf("init overwrote an existing config: %q", data)
	}
}

func TestInitCmd_Force(t *testing.T) {
	env := clitest.New(t)
	if err := (&InitCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	env.AddHabit(t, "read", "daily")

	if err := (&InitCmd{Force: true}).Run(env.Ctx); err != nil {
		t.Fatalf("forced init failed: %v", err)
	}

	habits, err := env.Ctx.Tracker.List("")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(habits) != 0 {
		t.Errorf("expected empty database after --force, got %d habits", len(habits))
	}
	if out := env.Output(); !strings.Contains(out, "Deleted existing database") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestInitCmd_ForceRejectsPostgres(t *testing.T) {
	env := clitest.New(t)
	env.Ctx.Target = config.Target{Value: "postgres://streaks@localhost/streaks", Source: config.SourceFlag}

	if err := (&InitCmd{Force: true}).Run(env.Ctx); err == nil {
		t.Error("expected --force to be refused for PostgreSQL")
	}
}
