package system

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/julianstephens/streaks/internal/cli"
	"github.com/julianstephens/streaks/internal/models"
)

type DebugCmd struct {
	DBPath     DebugDBPathCmd     `cmd:"" name:"db-path" help:"Show the database location as JSON."`
	DumpHabit  DebugDumpHabitCmd  `cmd:"" help:"Dump a habit and its check-offs as JSON."`
	DumpHabits DebugDumpHabitsCmd `cmd:"" help:"Dump every habit as JSON."`
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

type DebugDBPathCmd struct{}

func (c *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return writeJSON(ctx.Stdout(), map[string]string{
		"path":   ctx.Store.GetConfigPath(),
		"source": string(ctx.Target.Source),
	})
}

type DebugDumpHabitCmd struct {
	Name string `arg:"" help:"Name of the habit to dump."`
}

type habitDump struct {
	Habit     models.Habit      `json:"habit"`
	CheckOffs []models.CheckOff `json:"check_offs"`
}

func (c *DebugDumpHabitCmd) Run(ctx *cli.Context) error {
	habit, checkOffs, err := ctx.Tracker.History(c.Name)
	if err != nil {
		if errors.Is(err, models.ErrHabitNotFound) {
			return fmt.Errorf("no habit named %q", c.Name)
		}
		return fmt.Errorf("failed to get habit: %w", err)
	}
	if checkOffs == nil {
		checkOffs = []models.CheckOff{}
	}
	return writeJSON(ctx.Stdout(), habitDump{Habit: habit, CheckOffs: checkOffs})
}

type DebugDumpHabitsCmd struct{}

func (c *DebugDumpHabitsCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Tracker.List("")
	if err != nil {
		return fmt.Errorf("failed to list habits: %w", err)
	}
	if habits == nil {
		habits = []models.Habit{}
	}
	return writeJSON(ctx.Stdout(), habits)
}
