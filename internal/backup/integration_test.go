package backup

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/dayscore/internal/ledger"
	"github.com/julianstephens/dayscore/internal/models"
	"github.com/julianstephens/dayscore/internal/storage"
	"github.com/julianstephens/dayscore/internal/tracker"
)

// A repair snapshots the database first; restoring that snapshot brings
// back the ledger as it was before the repair.
func TestIntegrationRepairThenRestore(t *testing.T) {
	stubProcesses(t)
	dbPath := filepath.Join(t.TempDir(), "dayscore.db")

	store := storage.New(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	original := ledger.Ledger{
		"2025-10-20": {Score: 12, Components: models.ScoreComponents{Nutrition: 12}},
	}
	if err := storage.SaveState(store, ledger.State{History: original, IntakeDate: "2025-10-21", Goals: models.DefaultGoals()}); err != nil {
		t.Fatalf("SaveState failed: %v", err)
	}

	mgr := NewManager(dbPath)
	var snapshots []string
	trk := tracker.New(tracker.Options{
		Store: store,
		Now:   func() time.Time { return time.Date(2025, 10, 21, 9, 0, 0, 0, time.UTC) },
		BeforeRewrite: func(op string) error {
			path, err := mgr.CreateBackup()
			snapshots = append(snapshots, path)
			return err
		},
		Location: time.UTC,
	})

	intake := models.IntakeRecord{Calories: 2295, Protein: 59, Carbs: 390, Fat: 63, Water: 8}
	rec, _, err := trk.Repair(context.Background(), "2025-10-20", intake, nil)
	if err != nil {
		t.Fatalf("Repair failed: %v", err)
	}
	if rec.Score != 44 {
		t.Fatalf("repaired score = %d", rec.Score)
	}
	if len(snapshots) != 1 {
		t.Fatalf("expected one snapshot, got %v", snapshots)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := mgr.RestoreBackup(snapshots[0]); err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}

	restored := storage.New(dbPath)
	if err := restored.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer restored.Close()
	s, err := storage.LoadState(restored)
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if !s.History.Equal(original) {
		t.Errorf("history after restore = %+v, want %+v", s.History, original)
	}
}
