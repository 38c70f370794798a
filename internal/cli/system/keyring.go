package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/streaks/internal/cli"
	"github.com/julianstephens/streaks/internal/keyring"
	"github.com/julianstephens/streaks/internal/storage/postgres"
)

// SetConnectionCmd stores a PostgreSQL connection string in the OS keyring
type SetConnectionCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string without a password."`
}

func (cmd *SetConnectionCmd) Run(ctx *cli.Context) error {
	out := ctx.Stdout()

	if !postgres.IsConnString(cmd.ConnectionString) {
		return errors.New("connection string must start with postgres:// or postgresql://")
	}
	if _, err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
		if errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return errors.New("connection string contains a password; keep it in ~/.pgpass or PGPASSWORD instead")
		}
		return fmt.Errorf("invalid connection string: %w", err)
	}

	if err := keyring.SetConnectionString(cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}

	fmt.Fprintln(out, "✓ Connection string stored in OS keyring")
	fmt.Fprintln(out, "  It is used when neither --db nor a configured database path is set")
	return nil
}

// ClearConnectionCmd removes the connection string from the OS keyring
type ClearConnectionCmd struct{}

func (cmd *ClearConnectionCmd) Run(ctx *cli.Context) error {
	out := ctx.Stdout()

	err := keyring.DeleteConnectionString()
	if errors.Is(err, keyring.ErrNotFound) {
		fmt.Fprintln(out, "No connection string stored in keyring")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}

	fmt.Fprintln(out, "✓ Connection string deleted from OS keyring")
	return nil
}

// ConnectionStatusCmd reports which database is in use and where it came from
type ConnectionStatusCmd struct{}

func (cmd *ConnectionStatusCmd) Run(ctx *cli.Context) error {
	out := ctx.Stdout()

	fmt.Fprintf(out, "Database: %s\n", ctx.Store.GetConfigPath())
	fmt.Fprintf(out, "Source:   %s\n", ctx.Target.Source)

	if !keyring.IsAvailable() {
		fmt.Fprintln(out, "❌ OS keyring is not available on this system")
		return nil
	}
	_, err := keyring.GetConnectionString()
	switch {
	case err == nil:
		fmt.Fprintln(out, "✓ Connection string is stored in keyring")
	case errors.Is(err, keyring.ErrNotFound):
		fmt.Fprintln(out, "ℹ No connection string stored in keyring")
	default:
		return fmt.Errorf("failed to read keyring: %w", err)
	}
	return nil
}
