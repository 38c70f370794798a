package config

// Config is the root application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Backup   BackupConfig   `yaml:"backup"`
}

// DatabaseConfig selects the store. Path is a SQLite file path, or a
// postgres:// connection string without a password.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"STREAKS_DB"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Debug bool   `yaml:"debug" env:"STREAKS_DEBUG"   env-default:"false"`
	Dir   string `yaml:"dir"   env:"STREAKS_LOG_DIR"`
}

// BackupConfig controls the automatic SQLite backup taken before
// destructive commands. Backups are on unless Disabled is set.
type BackupConfig struct {
	Disabled bool `yaml:"disabled" env:"STREAKS_NO_BACKUP"`
	Keep     int  `yaml:"keep"     env:"STREAKS_BACKUP_KEEP" env-default:"14"`
}
