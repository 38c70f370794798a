package config

import (
	"errors"
	"strings"

	"github.com/julianstephens/streaks/internal/constants"
	"github.com/julianstephens/streaks/internal/keyring"
	"github.com/julianstephens/streaks/internal/logger"
)

// Source names where a database target came from.
type Source string

const (
	SourceFlag    Source = "flag"
	SourceConfig  Source = "config"
	SourceKeyring Source = "keyring"
	SourceDefault Source = "default"
)

// Target is the resolved database location.
type Target struct {
	// Value is a SQLite path or a PostgreSQL connection string.
	Value  string
	Source Source
}

// IsPostgres reports whether the target is a PostgreSQL connection string.
func (t Target) IsPostgres() bool {
	return strings.HasPrefix(t.Value, "postgres://") || strings.HasPrefix(t.Value, "postgresql://")
}

// keyringLookup is replaced in tests
var keyringLookup = keyring.GetConnectionString

// ResolveTarget picks the database in order: the --db flag, the config file
// or STREAKS_DB, a connection string in the OS keyring, then the default
// SQLite path.
func ResolveTarget(flag string, cfg *Config) Target {
	if flag != "" {
		return Target{Value: ExpandHome(flag), Source: SourceFlag}
	}
	if cfg != nil && cfg.Database.Path != "" {
		return Target{Value: cfg.Database.Path, Source: SourceConfig}
	}

	connStr, err := keyringLookup()
	switch {
	case err == nil && connStr != "":
		return Target{Value: connStr, Source: SourceKeyring}
	case err != nil && !errors.Is(err, keyring.ErrNotFound):
		logger.Debug("keyring lookup failed", "error", err)
	}

	return Target{Value: ExpandHome(constants.DefaultConfigPath), Source: SourceDefault}
}
