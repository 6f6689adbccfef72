package backup

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/dayscore/internal/constants"
	"github.com/julianstephens/dayscore/internal/storage/sqlite"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 1 }
func (m *mockProcess) Executable() string { return m.executable }

func stubProcesses(t *testing.T, procs ...ps.Process) {
	t.Helper()
	orig := processesFunc
	processesFunc = func() ([]ps.Process, error) { return procs, nil }
	t.Cleanup(func() { processesFunc = orig })
}

// setupTestDB creates an initialized dayscore database holding one value.
func setupTestDB(t *testing.T, goals string) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "dayscore.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer store.Close()
	if err := store.SaveValues(map[string]string{constants.KeyGoals: goals}); err != nil {
		t.Fatalf("SaveValues failed: %v", err)
	}
	return dbPath
}

func readGoals(t *testing.T, dbPath string) string {
	t.Helper()
	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer store.Close()
	values, err := store.Values()
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	return values[constants.KeyGoals]
}

func fixedClock(mgr *Manager, start time.Time, step time.Duration) {
	next := start
	mgr.now = func() time.Time {
		t := next
		next = next.Add(step)
		return t
	}
}

func TestCreateBackup(t *testing.T) {
	dbPath := setupTestDB(t, `{"calories":1800}`)
	mgr := NewManager(dbPath)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(backupPath), constants.BackupFilePrefix) {
		t.Errorf("unexpected backup name %s", backupPath)
	}
	if got := readGoals(t, backupPath); got != `{"calories":1800}` {
		t.Errorf("backup goals = %q", got)
	}
}

func TestCreateBackupMissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.CreateBackup(); err == nil {
		t.Error("expected error when backing up a missing database")
	}
}

func TestBackupRotation(t *testing.T) {
	mgr := NewManager(setupTestDB(t, `{}`))
	fixedClock(mgr, time.Date(2025, 10, 1, 8, 0, 0, 0, time.Local), time.Hour)

	for i := 0; i < constants.MaxBackups+5; i++ {
		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != constants.MaxBackups {
		t.Fatalf("expected %d backups after rotation, got %d", constants.MaxBackups, len(backups))
	}
	for i := 1; i < len(backups); i++ {
		if !backups[i].Timestamp.Before(backups[i-1].Timestamp) {
			t.Errorf("backups not sorted newest first at %d", i)
		}
	}
	oldestKept := time.Date(2025, 10, 1, 13, 0, 0, 0, time.Local)
	if !backups[len(backups)-1].Timestamp.Equal(oldestKept) {
		t.Errorf("oldest kept = %v, want %v", backups[len(backups)-1].Timestamp, oldestKept)
	}
}

func TestUniqueBackupFilenames(t *testing.T) {
	mgr := NewManager(setupTestDB(t, `{}`))
	fixedClock(mgr, time.Date(2025, 10, 1, 8, 0, 0, 0, time.Local), 0)

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		path, err := mgr.CreateBackup()
		if err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
		if seen[path] {
			t.Errorf("duplicate backup filename: %s", path)
		}
		seen[path] = true
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 5 {
		t.Errorf("expected 5 listed backups, got %d", len(backups))
	}
}

func TestParseBackupName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
		want time.Time
	}{
		{"dayscore-20251020-2130.db", true, time.Date(2025, 10, 20, 21, 30, 0, 0, time.Local)},
		{"dayscore-20251020-213005.db", true, time.Date(2025, 10, 20, 21, 30, 5, 0, time.Local)},
		{"dayscore-20251020-213005-3.db", true, time.Date(2025, 10, 20, 21, 30, 5, 0, time.Local)},
		{"otherapp-20251020-2130.db", false, time.Time{}},
		{"dayscore-latest.db", false, time.Time{}},
		{"dayscore-20251020-2130.db.tmp", false, time.Time{}},
	}

	for _, tt := range tests {
		got, ok := parseBackupName(tt.name)
		if ok != tt.ok || !got.Equal(tt.want) {
			t.Errorf("parseBackupName(%q) = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRestoreBackup(t *testing.T) {
	stubProcesses(t)
	dbPath := setupTestDB(t, `{"calories":1800}`)
	mgr := NewManager(dbPath)
	fixedClock(mgr, time.Date(2025, 10, 1, 8, 0, 0, 0, time.Local), time.Minute)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveValues(map[string]string{constants.KeyGoals: `{"calories":2500}`}); err != nil {
		t.Fatal(err)
	}
	store.Close()

	preRestore, err := mgr.RestoreBackup(backupPath)
	if err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}
	if got := readGoals(t, dbPath); got != `{"calories":1800}` {
		t.Errorf("goals after restore = %q", got)
	}
	if got := readGoals(t, preRestore); got != `{"calories":2500}` {
		t.Errorf("pre-restore backup goals = %q", got)
	}
	if _, err := os.Stat(dbPath + ".restore.tmp"); !os.IsNotExist(err) {
		t.Error("temporary restore file left behind")
	}
}

func TestRestoreRefusesWhileInUse(t *testing.T) {
	stubProcesses(t,
		&mockProcess{pid: os.Getpid(), executable: constants.AppName},
		&mockProcess{pid: 999999, executable: constants.AppName},
	)
	dbPath := setupTestDB(t, `{}`)
	mgr := NewManager(dbPath)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.RestoreBackup(backupPath); !errors.Is(err, ErrInUse) {
		t.Errorf("expected ErrInUse, got %v", err)
	}
}

func TestRestoreIgnoresSelfAndOthers(t *testing.T) {
	stubProcesses(t,
		&mockProcess{pid: os.Getpid(), executable: constants.AppName},
		&mockProcess{pid: 42, executable: "dayscore-helper"},
	)
	if err := ensureNoOtherInstance(); err != nil {
		t.Errorf("ensureNoOtherInstance = %v", err)
	}
}

func TestRestoreWithCorruptedBackup(t *testing.T) {
	stubProcesses(t)
	mgr := NewManager(setupTestDB(t, `{}`))

	if err := os.MkdirAll(mgr.GetBackupDir(), 0700); err != nil {
		t.Fatal(err)
	}
	corrupted := filepath.Join(mgr.GetBackupDir(), "corrupted.db")
	if err := os.WriteFile(corrupted, []byte("not a valid sqlite database"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := mgr.RestoreBackup(corrupted); err == nil {
		t.Error("expected error when restoring from corrupted backup")
	}
	if _, err := mgr.RestoreBackup(filepath.Join(mgr.GetBackupDir(), "missing.db")); err == nil {
		t.Error("expected error when restoring a missing backup")
	}
}
