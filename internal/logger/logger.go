// Package logger writes leveled, structured logs to a rotating file under the
// config directory. Debug mode also mirrors them to stderr.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/streaks/internal/constants"
)

// Logger is nil until Init runs; the package helpers drop messages until then.
var Logger *log.Logger

// Config holds logger configuration
type Config struct {
	Debug bool
	// LogDir overrides the default <ConfigDir>/logs location when set.
	LogDir    string
	ConfigDir string
}

// Dir returns the directory the log file is written to.
func (c Config) Dir() string {
	if c.LogDir != "" {
		return c.LogDir
	}
	return filepath.Join(c.ConfigDir, "logs")
}

func (c Config) level() log.Level {
	if c.Debug {
		return log.DebugLevel
	}
	return log.WarnLevel
}

func (c Config) rotatingFile() *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(c.Dir(), constants.AppName+".log"),
		MaxSize:    5, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
}

// Init builds the global logger from cfg.
func Init(cfg Config) error {
	if err := os.MkdirAll(cfg.Dir(), 0o755); err != nil {
		return err
	}

	var out io.Writer = cfg.rotatingFile()
	if cfg.Debug {
		out = io.MultiWriter(os.Stderr, out)
	}

	Logger = log.NewWithOptions(out, log.Options{
		Level:           cfg.level(),
		Prefix:          constants.AppName,
		ReportTimestamp: true,
		ReportCaller:    cfg.Debug,
	})
	return nil
}

func logAt(level log.Level, msg string, keyvals []interface{}) {
	if Logger == nil {
		return
	}
	Logger.Log(level, msg, keyvals...)
}

// Debug logs a debug message
func Debug(msg string, keyvals ...interface{}) { logAt(log.DebugLevel, msg, keyvals) }

// Info logs an info message
func Info(msg string, keyvals ...interface{}) { logAt(log.InfoLevel, msg, keyvals) }

// Warn logs a warning message
func Warn(msg string, keyvals ...interface{}) { logAt(log.WarnLevel, msg, keyvals) }

// Error logs an error message
func Error(msg string, keyvals ...interface{}) { logAt(log.ErrorLevel, msg, keyvals) }

// MigrationLog adapts the logger to the progress callback taken by the
// migration runner.
func MigrationLog(msg string) {
	Info(msg, "component", "migration")
}
