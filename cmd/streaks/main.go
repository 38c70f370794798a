package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/streaks/internal/cli"
	"github.com/julianstephens/streaks/internal/cli/backups"
	"github.com/julianstephens/streaks/internal/cli/habits"
	"github.com/julianstephens/streaks/internal/cli/streaks"
	"github.com/julianstephens/streaks/internal/cli/system"
	"github.com/julianstephens/streaks/internal/config"
	"github.com/julianstephens/streaks/internal/constants"
	"github.com/julianstephens/streaks/internal/errors"
	"github.com/julianstephens/streaks/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	DB      string `name:"db" help:"SQLite database path or PostgreSQL connection string. Passwords must NOT be embedded; use .pgpass, PGPASSWORD or the OS keyring." type:"string"`
	Config  string `help:"Config file path." type:"path" placeholder:"${config_file}"`
	Debug   bool   `help:"Log at debug level to stderr as well as the log file."`

	Init     system.InitCmd    `cmd:"" help:"Initialize streaks storage."`
	Migrate  system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Tui      system.TuiCmd     `cmd:"" help:"Launch the interactive habit board." default:"1"`
	Habit    habits.HabitCmd   `cmd:"" help:"Manage habits and check them off."`
	Streak   streaks.StreakCmd `cmd:"" help:"Query streak leaders across habits."`
	Backup   backups.BackupCmd `cmd:"" help:"Manage SQLite database backups."`
	DebugCmd system.DebugCmd   `cmd:"" name:"debug" help:"Inspect stored data as JSON."`
	DBCmd    struct {
		SetConnection   system.SetConnectionCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		ClearConnection system.ClearConnectionCmd  `cmd:"" help:"Remove the stored connection string from the OS keyring."`
		Status          system.ConnectionStatusCmd `cmd:"" help:"Show which database is in use."`
	} `cmd:"" name:"db" help:"Manage the database connection."`
}

// noLoad lists commands that run before, or without, an opened store.
var noLoad = []string{"init", "doctor", "db ", "debug db-path"}

func needsLoad(command string) bool {
	for _, prefix := range noLoad {
		if strings.HasPrefix(command, prefix) {
			return false
		}
	}
	return true
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Track daily and weekly habits and their streaks"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_file": constants.DefaultConfigFile,
		},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}

	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug || cfg.Log.Debug,
		LogDir:    cfg.Log.Dir,
		ConfigDir: config.Dir(),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	target := config.ResolveTarget(CLI.DB, cfg)
	store, err := cli.OpenStore(target)
	if err != nil {
		errors.Fatal(err)
	}
	logger.Debug("database target resolved", "source", target.Source, "store", store.GetConfigPath())

	appCtx := cli.NewContext(store, cfg, target)
	appCtx.ConfigPath = CLI.Config
	if appCtx.ConfigPath == "" {
		appCtx.ConfigPath = constants.DefaultConfigFile
	}

	if needsLoad(ctx.Command()) {
		if err := store.Load(); err != nil {
			errors.Fatal(err)
		}
	}

	err = ctx.Run(appCtx)
	if closeErr := store.Close(); closeErr != nil {
		logger.Warn("failed to close store", "error", closeErr)
	}
	errors.Fatal(err)
}
