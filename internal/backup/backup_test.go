package backup

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/streaks/internal/models"
	"github.com/julianstephens/streaks/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "streaks.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init test database: %v", err)
	}
	defer store.Close()

	for _, name := range []string{"Read", "Run"} {
		if _, err := store.AddHabit(name, models.PeriodicityDaily, time.Now()); err != nil {
			t.Fatalf("failed to add habit: %v", err)
		}
	}

	return dbPath
}

// steppedClock returns a now func that advances one minute per call
func steppedClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		t := current
		current = current.Add(time.Minute)
		return t
	}
}

func countHabits(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM habits").Scan(&count); err != nil {
		t.Fatalf("failed to count habits: %v", err)
	}
	return count
}

func TestCreateBackup(t *testing.T) {
	dbPath := setupTestDB(t)

	mgr := NewManager(dbPath, 0)
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	if filepath.Dir(backupPath) != mgr.Dir() {
		t.Errorf("backup written outside %s: %s", mgr.Dir(), backupPath)
	}
	if !strings.HasPrefix(filepath.Base(backupPath), "streaks-") {
		t.Errorf("unexpected backup name %s", filepath.Base(backupPath))
	}
	if got := countHabits(t, backupPath); got != 2 {
		t.Errorf("expected 2 habits in backup, got %d", got)
	}
}

func TestBackupRotation(t *testing.T) {
	dbPath := setupTestDB(t)

	mgr := NewManager(dbPath, 3)
	mgr.now = steppedClock(time.Date(2024, 3, 8, 10, 0, 0, 0, time.Local))

	var created []string
	for i := 0; i < 5; i++ {
		path, err := mgr.CreateBackup()
		if err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
		created = append(created, path)
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 backups after rotation, got %d", len(backups))
	}

	// newest first, and the two oldest are gone
	for i, want := range []string{created[4], created[3], created[2]} {
		if backups[i].Path != want {
			t.Errorf("backup %d: expected %s, got %s", i, want, backups[i].Path)
		}
	}
	for _, old := range created[:2] {
		if _, err := os.Stat(old); !os.IsNotExist(err) {
			t.Errorf("expected %s to be rotated away", old)
		}
	}
}

func TestUniqueBackupFilenames(t *testing.T) {
	dbPath := setupTestDB(t)

	mgr := NewManager(dbPath, 10)
	fixed := time.Date(2024, 3, 8, 10, 0, 0, 0, time.Local)
	mgr.now = func() time.Time { return fixed }

	seen := map[string]bool{}
	for i := 0; i < 4; i++ {
		path, err := mgr.CreateBackup()
		if err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
		if seen[path] {
			t.Fatalf("duplicate backup path %s", path)
		}
		seen[path] = true
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 4 {
		t.Fatalf("expected 4 backups, got %d", len(backups))
	}
	if !strings.HasSuffix(backups[0].Path, "-3.db") {
		t.Errorf("expected the highest counter first, got %s", backups[0].Path)
	}
}

func TestListBackupsIgnoresForeignFiles(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, 0)

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups on missing dir failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected no backups, got %d", len(backups))
	}

	if _, err := mgr.CreateBackup(); err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	for _, name := range []string{"notes.txt", "streaks-garbage.db", "streaks-20240308-101500-x.db", "other-20240308-101500.db"} {
		if err := os.WriteFile(filepath.Join(mgr.Dir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err = mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 1 {
		t.Errorf("expected 1 backup, got %d", len(backups))
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name string
		seq  int
		ok   bool
	}{
		{"streaks-20240308-101500.db", 0, true},
		{"streaks-20240308-101500-7.db", 7, true},
		{"streaks-20240308-1015.db", 0, false},
		{"streaks-20240308-101500_7.db", 0, false},
		{"other-20240308-101500.db", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stamp, seq, ok := parseName(tt.name)
			if ok != tt.ok {
				t.Fatalf("parseName(%q) ok = %v, want %v", tt.name, ok, tt.ok)
			}
			if !ok {
				return
			}
			if seq != tt.seq {
				t.Errorf("seq = %d, want %d", seq, tt.seq)
			}
			if stamp.Hour() != 10 || stamp.Minute() != 15 {
				t.Errorf("unexpected timestamp %v", stamp)
			}
		})
	}
}

func TestRestoreBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, 0)
	mgr.now = steppedClock(time.Date(2024, 3, 8, 10, 0, 0, 0, time.Local))

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := store.DeleteHabit("Read"); err != nil {
		t.Fatalf("DeleteHabit failed: %v", err)
	}
	store.Close()

	if got := countHabits(t, dbPath); got != 1 {
		t.Fatalf("expected 1 habit after delete, got %d", got)
	}

	preRestore, err := mgr.RestoreBackup(backupPath)
	if err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}

	if got := countHabits(t, dbPath); got != 2 {
		t.Errorf("expected 2 habits after restore, got %d", got)
	}
	if preRestore == "" {
		t.Fatal("expected a pre-restore snapshot")
	}
	if got := countHabits(t, preRestore); got != 1 {
		t.Errorf("pre-restore snapshot should hold the deleted state, got %d habits", got)
	}
	if _, err := os.Stat(dbPath + ".restore.tmp"); !os.IsNotExist(err) {
		t.Error("temporary restore file left behind")
	}
}

func TestRestoreWithoutCurrentDatabase(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, 0)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if err := os.Remove(dbPath); err != nil {
		t.Fatal(err)
	}

	preRestore, err := mgr.RestoreBackup(backupPath)
	if err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}
	if preRestore != "" {
		t.Errorf("expected no pre-restore snapshot, got %s", preRestore)
	}
	if got := countHabits(t, dbPath); got != 2 {
		t.Errorf("expected 2 habits, got %d", got)
	}
}

func TestRestoreRejectsInvalidBackups(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, 0)
	dir := t.TempDir()

	garbage := filepath.Join(dir, "garbage.db")
	if err := os.WriteFile(garbage, []byte("this is not sqlite"), 0600); err != nil {
		t.Fatal(err)
	}

	foreign := filepath.Join(dir, "foreign.db")
	db, err := sql.Open("sqlite", foreign)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("CREATE TABLE tasks (id TEXT)"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	for _, path := range []string{garbage, foreign, filepath.Join(dir, "missing.db")} {
		if _, err := mgr.RestoreBackup(path); err == nil {
			t.Errorf("expected RestoreBackup(%s) to fail", filepath.Base(path))
		}
	}

	if got := countHabits(t, dbPath); got != 2 {
		t.Errorf("database changed after rejected restores: %d habits", got)
	}
}

func TestBackupWithNoDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"), 0)

	if _, err := mgr.CreateBackup(); err == nil {
		t.Error("expected CreateBackup to fail without a database")
	}
}
