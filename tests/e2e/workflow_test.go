package e2e

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// binary locates a built streaks binary: STREAKS_BIN_DIR, else ../../bin.
func binary(t *testing.T) string {
	t.Helper()

	binDir := os.Getenv("STREAKS_BIN_DIR")
	if binDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			t.Fatalf("Failed to get cwd: %v", err)
		}
		binDir = filepath.Join(cwd, "..", "..", "bin")
	}
	binDir, _ = filepath.Abs(binDir)

	cliPath := filepath.Join(binDir, "streaks")
	if _, err := os.Stat(cliPath); os.IsNotExist(err) {
		t.Skipf("CLI binary not found at %s; build it with 'go build -o bin/streaks ./cmd/streaks'", cliPath)
	}
	return cliPath
}

// isolatedEnv points HOME at a temp dir and clears STREAKS_* overrides.
func isolatedEnv(t *testing.T) ([]string, string) {
	t.Helper()
	tempDir := t.TempDir()

	var env []string
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "HOME=") || strings.HasPrefix(e, "XDG_CONFIG_HOME=") || strings.HasPrefix(e, "STREAKS_") {
			continue
		}
		env = append(env, e)
	}
	env = append(env,
		fmt.Sprintf("HOME=%s", tempDir),
		fmt.Sprintf("XDG_CONFIG_HOME=%s", filepath.Join(tempDir, ".config")),
	)
	return env, tempDir
}

func TestEndToEndWorkflow(t *testing.T) {
	cliPath := binary(t)
	env, home := isolatedEnv(t)

	run := func(args ...string) string {
		t.Helper()
		return runCmd(t, cliPath, env, args...)
	}

	// commands before init point at the missing database
	if out, err := runCmdErr(cliPath, env, "habit", "list"); err == nil {
		t.Fatalf("expected habit list to fail before init, got: %s", out)
	} else if !strings.Contains(out, "run 'streaks init' first") {
		t.Errorf("unexpected error output: %s", out)
	}

	run("init")
	if _, err := os.Stat(filepath.Join(home, ".config", "streaks", "streaks.db")); err != nil {
		t.Fatalf("database not created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".config", "streaks", "config.yaml")); err != nil {
		t.Fatalf("config not created: %v", err)
	}

	run("habit", "add", "Read", "--periodicity", "daily")
	run("habit", "add", "Gym", "-p", "weekly")

	if out, err := runCmdErr(cliPath, env, "habit", "add", "Read"); err == nil {
		t.Errorf("expected duplicate add to fail, got: %s", out)
	}
	if out, err := runCmdErr(cliPath, env, "habit", "add", "Swim", "-p", "monthly"); err == nil {
		t.Errorf("expected monthly periodicity to be rejected, got: %s", out)
	}

	if out := run("habit", "check-off", "Read"); !strings.Contains(out, "Streak started") {
		t.Errorf("unexpected check-off output: %s", out)
	}
	if out := run("habit", "check-off", "Read"); !strings.Contains(out, "already checked off") {
		t.Errorf("expected second check-off to be a no-op, got: %s", out)
	}

	if out := run("streak", "current"); !strings.Contains(out, "Highest current streak: 1") || !strings.Contains(out, "Read") {
		t.Errorf("unexpected streak output: %s", out)
	}

	run("habit", "edit", "Gym", "--name", "Lift", "--periodicity", "daily")
	if out := run("habit", "list", "-p", "daily"); !strings.Contains(out, "Lift") {
		t.Errorf("expected edited habit in daily list, got: %s", out)
	}

	if out := run("habit", "delete", "Nope"); !strings.Contains(out, "not found") {
		t.Errorf("expected not-found message, got: %s", out)
	}
	run("habit", "delete", "Lift")

	if out := run("backup", "list"); !strings.Contains(out, "Available backups") {
		t.Errorf("expected automatic backups from edit and delete, got: %s", out)
	}

	if out := run("doctor"); !strings.Contains(out, "All checks passed.") {
		t.Errorf("unexpected doctor output: %s", out)
	}
}

func runCmd(t *testing.T, path string, env []string, args ...string) string {
	t.Helper()
	out, err := runCmdErr(path, env, args...)
	if err != nil {
		t.Fatalf("Command %s %v failed: %v\nOutput: %s", path, args, err, out)
	}
	return out
}

func runCmdErr(path string, env []string, args ...string) (string, error) {
	cmd := exec.Command(path, args...)
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	return string(out), err
}
