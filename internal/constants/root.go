package constants

const (
	AppName            = "streaks"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/streaks"
	DefaultConfigPath  = DefaultConfigDir + "/streaks.db"
	DefaultConfigFile  = DefaultConfigDir + "/config.yaml"
	Version            = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "streaks-"
	BackupFileSuffix = ".db"

	// LockfileName marks a running TUI next to the database
	LockfileName = "tui.lock"

	// Environment variables
	EnvDBConnection = "STREAKS_DB"
)
