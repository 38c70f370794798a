package system

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/julianstephens/streaks/internal/cli"
	"github.com/julianstephens/streaks/internal/keyring"
	"github.com/julianstephens/streaks/internal/render"
	"github.com/julianstephens/streaks/internal/streak"
)

type DoctorCmd struct{}

type check struct {
	name string
	// needsDB checks are skipped when the database cannot be read.
	needsDB bool
	// warnOnly failures do not fail the command.
	warnOnly bool
	run      func(*cli.Context, io.Writer) error
}

var checks = []check{
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Streak counters", needsDB: true, run: checkStreakCounters},
	{name: "Check-off integrity", needsDB: true, run: checkOrphanedCheckOffs},
	{name: "Check-off dates", needsDB: true, run: checkCheckOffDates},
	{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "OS keyring", warnOnly: true, run: checkKeyring},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	out := ctx.Stdout()
	fmt.Fprintln(out, "Running diagnostics...")
	fmt.Fprintln(out)

	hasError := false
	dbReachable := true

	if err := checkDBReachable(ctx); err != nil {
		fmt.Fprintf(out, "❌ Database reachable: FAIL\n")
		fmt.Fprintf(out, "   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		fmt.Fprintf(out, "✓ Database reachable: OK (%s, %s)\n", ctx.Store.GetConfigPath(), ctx.Target.Source)
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			fmt.Fprintf(out, "⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx, out)
		switch {
		case err == nil:
			fmt.Fprintf(out, "✓ %s: OK\n", c.name)
		case c.warnOnly:
			fmt.Fprintf(out, "⚠ %s: WARNING\n", c.name)
			fmt.Fprintf(out, "   %v\n", err)
		default:
			fmt.Fprintf(out, "❌ %s: FAIL\n", c.name)
			fmt.Fprintf(out, "   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Fprintln(out)
	if hasError {
		return errors.New("one or more health checks failed")
	}
	fmt.Fprintln(out, "All checks passed.")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	_, err := ctx.Store.ListAll()
	return err
}

func checkSchemaVersion(ctx *cli.Context, _ io.Writer) error {
	m, ok := ctx.Store.(cli.Migrator)
	if !ok {
		return nil
	}
	current, latest, err := m.SchemaVersions()
	if err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version %d is newer than supported version %d", current, latest)
	}
	if current < latest {
		return fmt.Errorf("database schema version %d is behind %d, run 'streaks migrate'", current, latest)
	}
	return nil
}

func checkStreakCounters(ctx *cli.Context, out io.Writer) error {
	violations, err := ctx.Tracker.Audit()
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		render.Violations(out, violations)
		return fmt.Errorf("%d habit(s) have a current streak above their longest streak", len(violations))
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context, _ io.Writer) error {
	mgr, err := ctx.BackupManager()
	if errors.Is(err, cli.ErrBackupUnsupported) {
		return nil
	}
	if err != nil {
		return err
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found in %s", mgr.Dir())
	}
	return nil
}

func checkClockTimezone(_ *cli.Context, _ io.Writer) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

type dbHolder interface {
	GetDB() *sql.DB
}

func checkOrphanedCheckOffs(ctx *cli.Context, _ io.Writer) error {
	h, ok := ctx.Store.(dbHolder)
	if !ok || h.GetDB() == nil {
		return nil
	}
	var orphaned int
	err := h.GetDB().QueryRow(`
		SELECT COUNT(*)
		FROM check_offs c
		LEFT JOIN habits h ON c.habit_id = h.id
		WHERE h.id IS NULL
	`).Scan(&orphaned)
	if err != nil {
		return fmt.Errorf("failed to count orphaned check-offs: %w", err)
	}
	if orphaned > 0 {
		return fmt.Errorf("found %d check-off(s) referencing missing habits", orphaned)
	}
	return nil
}

func checkCheckOffDates(ctx *cli.Context, _ io.Writer) error {
	habits, err := ctx.Tracker.List("")
	if err != nil {
		return err
	}
	today := ctx.Tracker.Today()
	for _, h := range habits {
		_, checkOffs, err := ctx.Tracker.History(h.Name)
		if err != nil {
			return err
		}
		for _, c := range checkOffs {
			day, err := streak.ParseDay(c.Day)
			if err != nil {
				return fmt.Errorf("habit %q has a malformed check-off day %q", h.Name, c.Day)
			}
			if day.After(today) {
				return fmt.Errorf("habit %q has a check-off in the future (%s)", h.Name, c.Day)
			}
		}
	}
	return nil
}

func checkKeyring(_ *cli.Context, _ io.Writer) error {
	if !keyring.IsAvailable() {
		return errors.New("OS keyring is not available; PostgreSQL connection strings must come from --db or config")
	}
	return nil
}
