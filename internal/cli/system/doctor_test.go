package system

import (
	"strings"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/streaks/internal/cli/clitest"
)

func TestDoctorCmd_HealthyDB(t *testing.T) {
	gokeyring.MockInit()
	env := clitest.Initialized(t)
	env.AddHabit(t, "read", "daily")
	if _, err := env.Ctx.Tracker.CheckOff("read"); err != nil {
		t.Fatalf("CheckOff failed: %v", err)
	}

	// Missing backups is a warning, not a failure
	if err := (&DoctorCmd{}).Run(env.Ctx); err != nil {
		t.Errorf("doctor command failed on healthy database: %v", err)
	}
	out := env.Output()
	if !strings.Contains(out, "⚠ Backups present: WARNING") {
		t.Errorf("expected a backup warning, got:\n%s", out)
	}
	if !strings.Contains(out, "All checks passed.") {
		t.Errorf("expected success summary, got:\n%s", out)
	}
}

func TestDoctorCmd_Uninitialized(t *testing.T) {
	gokeyring.MockInit()
	env := clitest.New(t)

	if err := (&DoctorCmd{}).Run(env.Ctx); err == nil {
		t.Fatal("expected doctor to fail without a database")
	}
	out := env.Output()
	if !strings.Contains(out, "❌ Database reachable: FAIL") {
		t.Errorf("expected reachability failure, got:\n%s", out)
	}
	if !strings.Contains(out, "⊘ Schema version: SKIPPED") {
		t.Errorf("expected schema check to be skipped, got:\n%s", out)
	}
}

func TestDoctorCmd_CounterViolation(t *testing.T) {
	gokeyring.MockInit()
	env := clitest.Initialized(t)
	env.AddHabit(t, "read", "daily")

	h, err := env.Ctx.Tracker.Habit("read")
	if err != nil {
		t.Fatalf("Habit failed: %v", err)
	}
	if err := env.Store.SetCounters(h.ID, 5, 2); err != nil {
		t.Fatalf("SetCounters failed: %v", err)
	}

	if err := (&DoctorCmd{}).Run(env.Ctx); err == nil {
		t.Fatal("expected doctor to fail on inconsistent counters")
	}
	out := env.Output()
	if !strings.Contains(out, "read: current streak 5 exceeds longest streak 2") {
		t.Errorf("expected violation details, got:\n%s", out)
	}
}

func TestDoctorCmd_BrokenSchema(t *testing.T) {
	gokeyring.MockInit()
	env := clitest.Initialized(t)

	if _, err := env.Store.GetDB().Exec("UPDATE schema_version SET version = 999"); err != nil {
		t.Fatalf("failed to corrupt schema version: %v", err)
	}

	if err := (&DoctorCmd{}).Run(env.Ctx); err == nil {
		t.Fatal("expected doctor to fail on a future schema version")
	}
	if out := env.Output(); !strings.Contains(out, "❌ Schema version: FAIL") {
		t.Errorf("expected schema failure, got:\n%s", out)
	}
}

func TestDoctorCmd_FutureCheckOff(t *testing.T) {
	gokeyring.MockInit()
	env := clitest.Initialized(t)
	env.AddHabit(t, "read", "daily")
	if _, err := env.Ctx.Tracker.CheckOff("read"); err != nil {
		t.Fatalf("CheckOff failed: %v", err)
	}
	if _, err := env.Store.GetDB().Exec("UPDATE check_offs SET day = '2099-01-01'"); err != nil {
		t.Fatalf("failed to rewrite check-off: %v", err)
	}

	if err := (&DoctorCmd{}).Run(env.Ctx); err == nil {
		t.Fatal("expected doctor to flag a future check-off")
	}
	if out := env.Output(); !strings.Contains(out, "❌ Check-off dates: FAIL") {
		t.Errorf("expected date failure, got:\n%s", out)
	}
}
