package backups

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/julianstephens/dayscore/internal/backup"
	"github.com/julianstephens/dayscore/internal/cli"
	"github.com/julianstephens/dayscore/internal/ledger"
	"github.com/julianstephens/dayscore/internal/models"
	"github.com/julianstephens/dayscore/internal/storage"
	"github.com/julianstephens/dayscore/internal/storage/jsonfile"
	"github.com/julianstephens/dayscore/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) (*cli.Context, string) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return &cli.Context{Store: store}, dbPath
}

func TestBackupCreateAndList(t *testing.T) {
	ctx, dbPath := setupTestDB(t)

	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Errorf("list with no backups failed: %v", err)
	}
	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup create failed: %v", err)
	}
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Errorf("backup list failed: %v", err)
	}

	backups, err := backup.NewManager(dbPath).ListBackups()
	if err != nil {
		t.Fatalf("failed to list backups: %v", err)
	}
	if len(backups) != 1 {
		t.Errorf("got %d backups, want 1", len(backups))
	}
}

func TestBackupRestoreCmd(t *testing.T) {
	ctx, dbPath := setupTestDB(t)

	original := ledger.Ledger{"2025-10-20": {Score: 44, Components: models.ScoreComponents{Nutrition: 29, Hydration: 15}}}
	if err := storage.SaveState(ctx.Store, ledger.State{History: original, Goals: models.DefaultGoals()}); err != nil {
		t.Fatalf("failed to seed state: %v", err)
	}
	backupPath, err := backup.NewManager(dbPath).CreateBackup()
	if err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}

	if err := storage.SaveState(ctx.Store, ledger.State{Goals: models.DefaultGoals()}); err != nil {
		t.Fatalf("failed to overwrite state: %v", err)
	}

	cmd := &BackupRestoreCmd{BackupFile: filepath.Base(backupPath), Yes: true}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("backup restore failed: %v", err)
	}

	if err := ctx.Store.Load(); err != nil {
		t.Fatalf("failed to reload store: %v", err)
	}
	s, err := storage.LoadState(ctx.Store)
	if err != nil {
		t.Fatalf("failed to load state: %v", err)
	}
	if !s.History.Equal(original) {
		t.Errorf("restored history = %v, want %v", s.History, original)
	}
}

func TestResolveBackupPath(t *testing.T) {
	dir := t.TempDir()
	name := "dayscore-20251020-1300.db"
	full := filepath.Join(dir, name)
	if err := os.WriteFile(full, []byte("x"), 0600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "absolute", in: full, want: full},
		{name: "name in backup dir", in: name, want: full},
		{name: "missing absolute", in: filepath.Join(dir, "nope.db"), wantErr: true},
		{name: "missing name", in: "nope.db", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveBackupPath(tt.in, dir)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveBackupPath() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("resolveBackupPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBackupCmdsRejectJSONStore(t *testing.T) {
	store := jsonfile.NewStore(filepath.Join(t.TempDir(), "state.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	ctx := &cli.Context{Store: store}

	if err := (&BackupCreateCmd{}).Run(ctx); err == nil {
		t.Error("expected backup create to reject JSON storage")
	}
	if err := (&BackupListCmd{}).Run(ctx); err == nil {
		t.Error("expected backup list to reject JSON storage")
	}
}
