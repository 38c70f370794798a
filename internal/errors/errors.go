package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/streaks/internal/logger"
	"github.com/julianstephens/streaks/internal/models"
)

// exit is swapped out in tests
var exit = os.Exit

// hints are printed under the error line when the error wraps the sentinel.
var hints = []struct {
	target error
	text   string
}{
	{models.ErrInvalidPeriodicity, "Use --periodicity daily or --periodicity weekly."},
	{models.ErrEmptyName, "Habit names need at least one non-space character."},
}

// Format renders err as a single "Error: ..." line.
func Format(err error) string {
	if err == nil {
		return ""
	}
	return "Error: " + err.Error()
}

// Hint returns a follow-up line for errors the user can fix by changing
// their input, or "" when there is none.
func Hint(err error) string {
	for _, h := range hints {
		if stderrors.Is(err, h.target) {
			return h.text
		}
	}
	return ""
}

// Fatal reports err on stderr and exits with status 1. A nil err is a no-op.
func Fatal(err error) {
	fatalTo(os.Stderr, err)
}

func fatalTo(w io.Writer, err error) {
	if err == nil {
		return
	}
	logger.Error("command failed", "error", err)
	fmt.Fprintln(w, Format(err))
	if hint := Hint(err); hint != "" {
		fmt.Fprintln(w, hint)
	}
	exit(1)
}
