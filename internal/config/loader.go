package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/streaks/internal/constants"
)

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
// A missing file is not an error unless the path was given explicitly.
func Load(path string) (*Config, error) {
	var cfg Config

	explicitPath := path != ""
	if !explicitPath {
		path = constants.DefaultConfigFile
	}
	path = ExpandHome(path)

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	cfg.Database.Path = ExpandHome(cfg.Database.Path)
	cfg.Log.Dir = ExpandHome(cfg.Log.Dir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file or env is present.
func Default() Config {
	return Config{
		Database: DatabaseConfig{Path: constants.DefaultConfigPath},
		Log:      LogConfig{Dir: constants.DefaultConfigDir + "/logs"},
		Backup:   BackupConfig{Keep: constants.MaxBackups},
	}
}

// starter is Default with the database path left empty so that a
// connection stored with `db set-connection` is still picked up.
func starter() Config {
	cfg := Default()
	cfg.Database.Path = ""
	return cfg
}

// WriteDefault writes a starter config file. It refuses to overwrite an
// existing file unless force is set.
func WriteDefault(path string, force bool) error {
	path = ExpandHome(path)

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file %s already exists", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("config: stat %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	data, err := yaml.Marshal(starter())
	if err != nil {
		return fmt.Errorf("config: marshal defaults: %w", err)
	}

	header := "# " + constants.AppName + " configuration. Environment variables override these values.\n" +
		"# An empty database.path falls through to the OS keyring, then " + constants.DefaultConfigPath + ".\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Dir returns the directory holding the config file and default database.
func Dir() string {
	return ExpandHome(constants.DefaultConfigDir)
}
