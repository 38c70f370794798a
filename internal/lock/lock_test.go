package lock

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	ps "github.com/mitchellh/go-ps"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int {
	return m.pid
}

func (m *mockProcess) PPid() int {
	return 0
}

func (m *mockProcess) Executable() string {
	return m.executable
}

func stubProcesses(t *testing.T, self int, running map[int]string) {
	t.Helper()
	oldFind, oldPid := findProcessFunc, getpid
	t.Cleanup(func() {
		findProcessFunc = oldFind
		getpid = oldPid
	})

	getpid = func() int { return self }
	findProcessFunc = func(pid int) (ps.Process, error) {
		exe, ok := running[pid]
		if !ok {
			return nil, nil
		}
		return &mockProcess{pid: pid, executable: exe}, nil
	}
}

func TestHolder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tui.lock")
	stubProcesses(t, 1, map[int]string{42: "streaks", 43: "vim"})

	if pid, running, err := Holder(path); err != nil || running || pid != 0 {
		t.Fatalf("missing lockfile: got pid=%d running=%v err=%v", pid, running, err)
	}

	tests := []struct {
		name        string
		content     string
		wantPid     int
		wantRunning bool
		wantErr     bool
	}{
		{name: "live streaks process", content: "42", wantPid: 42, wantRunning: true},
		{name: "other executable", content: "43", wantPid: 43},
		{name: "dead process", content: "44", wantPid: 44},
		{name: "malformed", content: "abc", wantErr: true},
		{name: "negative", content: "-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			pid, running, err := Holder(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Holder() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if pid != tt.wantPid || running != tt.wantRunning {
				t.Errorf("Holder() = (%d, %v), want (%d, %v)", pid, running, tt.wantPid, tt.wantRunning)
			}
		})
	}
}

func TestAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tui.lock")
	stubProcesses(t, 7, map[int]string{7: "streaks", 42: "streaks"})

	l, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if err := EnsureFree(path); err != nil {
		t.Errorf("own lock should not block this process: %v", err)
	}
	if err := l.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected lockfile to be removed, got %v", err)
	}
	// releasing twice is fine
	if err := l.Release(); err != nil {
		t.Errorf("second Release failed: %v", err)
	}
}

func TestAcquireHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tui.lock")
	stubProcesses(t, 7, map[int]string{42: "streaks"})

	if err := os.WriteFile(path, []byte("42"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Acquire(path); !errors.Is(err, ErrHeld) {
		t.Fatalf("expected ErrHeld, got %v", err)
	}
	if err := EnsureFree(path); !errors.Is(err, ErrHeld) {
		t.Errorf("expected ErrHeld from EnsureFree, got %v", err)
	}
}

func TestAcquireReplacesStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tui.lock")
	stubProcesses(t, 7, map[int]string{})

	if err := os.WriteFile(path, []byte("42"), 0600); err != nil {
		t.Fatal(err)
	}

	l, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire over a stale lock failed: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "7" {
		t.Errorf("expected lockfile to hold pid 7, got %q", content)
	}

	// a lockfile rewritten by someone else is left alone
	if err := os.WriteFile(path, []byte("99"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := l.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected foreign lockfile to remain, got %v", err)
	}
}
