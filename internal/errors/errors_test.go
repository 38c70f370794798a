package errors

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/julianstephens/streaks/internal/models"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil error", nil, ""},
		{"simple error", errors.New("something went wrong"), "Error: something went wrong"},
		{
			"wrapped sentinel",
			fmt.Errorf("%w: %q", models.ErrHabitNotFound, "read"),
			`Error: habit not found: "read"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.err); got != tt.expected {
				t.Errorf("Format() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFatalExitsWithCodeOne(t *testing.T) {
	var code int
	orig := exit
	exit = func(c int) { code = c }
	t.Cleanup(func() { exit = orig })

	var buf bytes.Buffer
	fatalTo(&buf, models.ErrDuplicateName)

	if code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if buf.String() != "Error: habit already exists\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestFatalNilIsNoop(t *testing.T) {
	called := false
	orig := exit
	exit = func(int) { called = true }
	t.Cleanup(func() { exit = orig })

	var buf bytes.Buffer
	fatalTo(&buf, nil)

	if called || buf.Len() != 0 {
		t.Error("Fatal(nil) should neither print nor exit")
	}
}

func TestFatalPrintsHint(t *testing.T) {
	orig := exit
	exit = func(int) {}
	t.Cleanup(func() { exit = orig })

	var buf bytes.Buffer
	fatalTo(&buf, fmt.Errorf("%w: %q", models.ErrInvalidPeriodicity, "monthly"))

	want := "Error: invalid periodicity: \"monthly\"\nUse --periodicity daily or --periodicity weekly.\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestHintNone(t *testing.T) {
	if got := Hint(models.ErrHabitNotFound); got != "" {
		t.Errorf("expected no hint, got %q", got)
	}
}
