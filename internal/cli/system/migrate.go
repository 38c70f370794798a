package system

import (
	"fmt"

	"github.com/julianstephens/streaks/internal/cli"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	out := ctx.Stdout()

	m, ok := ctx.Store.(cli.Migrator)
	if !ok {
		return fmt.Errorf("store at %s has no versioned schema", ctx.Store.GetConfigPath())
	}

	count, err := m.Migrate(func(msg string) {
		fmt.Fprintln(out, msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		fmt.Fprintln(out, "No migrations to apply. Database is up to date.")
	} else {
		fmt.Fprintf(out, "\nSuccessfully applied %d migration(s).\n", count)
	}

	return nil
}
