package system

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/streaks/internal/cli"
	"github.com/julianstephens/streaks/internal/config"
)

type InitCmd struct {
	Force bool `help:"Force reset by deleting the existing SQLite database before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	out := ctx.Stdout()

	if c.Force {
		if ctx.Target.IsPostgres() {
			return errors.New("--force is only supported for SQLite databases")
		}
		if err := ctx.EnsureNoSession("reset the database"); err != nil {
			return err
		}
		dbPath := ctx.Store.GetConfigPath()
		if _, err := os.Stat(dbPath); err == nil {
			// close first so the file is not held open
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			fmt.Fprintf(out, "Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Initialized streaks storage at: %s\n", ctx.Store.GetConfigPath())

	if ctx.ConfigPath != "" {
		path := config.ExpandHome(ctx.ConfigPath)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := config.WriteDefault(path, false); err != nil {
				return err
			}
			fmt.Fprintf(out, "Wrote default configuration to: %s\n", path)
		}
	}

	return nil
}
