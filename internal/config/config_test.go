package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/streaks/internal/keyring"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"STREAKS_DB", "STREAKS_DEBUG", "STREAKS_LOG_DIR", "STREAKS_NO_BACKUP", "STREAKS_BACKUP_KEEP"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadFromYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
database:
  path: /var/lib/streaks/habits.db
log:
  debug: true
  dir: /tmp/streaks-logs
backup:
  disabled: true
  keep: 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/streaks/habits.db", cfg.Database.Path)
	assert.True(t, cfg.Log.Debug)
	assert.Equal(t, "/tmp/streaks-logs", cfg.Log.Dir)
	assert.True(t, cfg.Backup.Disabled)
	assert.Equal(t, 3, cfg.Backup.Keep)
}

func TestEnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "database:\n  path: /from/file.db\nbackup:\n  keep: 3\n")
	t.Setenv("STREAKS_DB", "/from/env.db")
	t.Setenv("STREAKS_BACKUP_KEEP", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env.db", cfg.Database.Path)
	assert.Equal(t, 7, cfg.Backup.Keep)
}

func TestDefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Database.Path)
	assert.False(t, cfg.Log.Debug)
	assert.False(t, cfg.Backup.Disabled)
	assert.Equal(t, 14, cfg.Backup.Keep)
}

func TestExplicitMissingFileFails(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsBadKeep(t *testing.T) {
	clearEnv(t)
	t.Setenv("STREAKS_BACKUP_KEEP", "-2")
	path := writeFile(t, "log:\n  debug: false\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backup.keep")
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, WriteDefault(path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# streaks configuration"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Database.Path)
	assert.Equal(t, 14, cfg.Backup.Keep)

	assert.Error(t, WriteDefault(path, false), "existing file must not be overwritten")
	assert.NoError(t, WriteDefault(path, true))
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, filepath.Join(home, "a/b.db"), ExpandHome("~/a/b.db"))
	assert.Equal(t, "/abs/path.db", ExpandHome("/abs/path.db"))
	assert.Equal(t, "~user/x", ExpandHome("~user/x"))
	assert.Equal(t, "postgres://h/db", ExpandHome("postgres://h/db"))
}

func stubKeyring(t *testing.T, value string, err error) {
	t.Helper()
	orig := keyringLookup
	keyringLookup = func() (string, error) { return value, err }
	t.Cleanup(func() { keyringLookup = orig })
}

func TestResolveTargetOrder(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	cfg := &Config{Database: DatabaseConfig{Path: "/from/config.db"}}

	stubKeyring(t, "postgres://streaks@db/streaks", nil)

	got := ResolveTarget("/from/flag.db", cfg)
	assert.Equal(t, Target{Value: "/from/flag.db", Source: SourceFlag}, got)

	got = ResolveTarget("", cfg)
	assert.Equal(t, Target{Value: "/from/config.db", Source: SourceConfig}, got)

	got = ResolveTarget("", &Config{})
	assert.Equal(t, SourceKeyring, got.Source)
	assert.True(t, got.IsPostgres())

	stubKeyring(t, "", keyring.ErrNotFound)
	got = ResolveTarget("", &Config{})
	assert.Equal(t, SourceDefault, got.Source)
	assert.Equal(t, filepath.Join(home, ".config/streaks/streaks.db"), got.Value)
	assert.False(t, got.IsPostgres())

	stubKeyring(t, "", errors.New("dbus unavailable"))
	got = ResolveTarget("", nil)
	assert.Equal(t, SourceDefault, got.Source)
}

func TestWrittenConfigFallsThroughToKeyring(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefault(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)

	stubKeyring(t, "postgres://streaks@db/streaks", nil)
	got := ResolveTarget("", cfg)
	assert.Equal(t, Target{Value: "postgres://streaks@db/streaks", Source: SourceKeyring}, got)

	stubKeyring(t, "", keyring.ErrNotFound)
	got = ResolveTarget("", cfg)
	assert.Equal(t, Target{Value: filepath.Join(home, ".config/streaks/streaks.db"), Source: SourceDefault}, got)
}
