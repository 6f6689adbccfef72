package sqlite

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/dayscore/internal/constants"
	"github.com/julianstephens/dayscore/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "dayscore.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoadUninitialized(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	err := store.Load()
	if err == nil || !strings.Contains(err.Error(), "run 'dayscore init' first") {
		t.Errorf("expected init hint, got %v", err)
	}
}

func TestInitIsIdempotent(t *testing.T) {
	store := setupTestStore(t)
	if err := store.SaveValues(map[string]string{"goals": `{"calories":1800}`}); err != nil {
		t.Fatalf("SaveValues failed: %v", err)
	}
	if err := store.Init(); err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	values, err := store.Values()
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	if values["goals"] != `{"calories":1800}` {
		t.Errorf("Init clobbered existing values: %v", values)
	}

	current, latest, err := store.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if current != latest || current == 0 {
		t.Errorf("schema version = %d/%d, want migrated", current, latest)
	}
}

func TestSaveValuesOverwrites(t *testing.T) {
	store := setupTestStore(t)

	if err := store.SaveValues(map[string]string{"a": "1", "b": "2"}); err != nil {
		t.Fatalf("SaveValues failed: %v", err)
	}
	if err := store.SaveValues(map[string]string{"b": "3"}); err != nil {
		t.Fatalf("SaveValues failed: %v", err)
	}

	values, err := store.Values()
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	if values["a"] != "1" || values["b"] != "3" || len(values) != 2 {
		t.Errorf("unexpected values: %v", values)
	}
}

func TestNotLoaded(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "dayscore.db"))
	if _, err := store.Values(); err == nil {
		t.Error("Values should fail before Load")
	}
	if err := store.SaveValues(map[string]string{"a": "1"}); err == nil {
		t.Error("SaveValues should fail before Load")
	}
	if err := store.RecordSyncAttempt(models.SyncAttempt{}); err == nil {
		t.Error("RecordSyncAttempt should fail before Load")
	}
}

func TestSyncAttempts(t *testing.T) {
	store := setupTestStore(t)
	base := time.Date(2025, 12, 29, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		err := store.RecordSyncAttempt(models.SyncAttempt{
			ID:          fmt.Sprintf("attempt-%d", i),
			AttemptedAt: base.Add(time.Duration(i) * time.Minute),
			Operation:   "restore",
			Status:      constants.SyncStatusFailed,
			Fields:      []string{"daily_history", "daily_intake"},
			Error:       "connection refused",
		})
		if err != nil {
			t.Fatalf("RecordSyncAttempt failed: %v", err)
		}
	}

	attempts, err := store.SyncAttempts(2)
	if err != nil {
		t.Fatalf("SyncAttempts failed: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(attempts))
	}
	if attempts[0].ID != "attempt-2" || attempts[1].ID != "attempt-1" {
		t.Errorf("attempts not newest first: %s, %s", attempts[0].ID, attempts[1].ID)
	}
	if !attempts[0].AttemptedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("attempted_at = %v", attempts[0].AttemptedAt)
	}
	if len(attempts[0].Fields) != 2 || attempts[0].Fields[0] != "daily_history" {
		t.Errorf("fields = %v", attempts[0].Fields)
	}
}

func TestSyncAttemptsPruned(t *testing.T) {
	store := setupTestStore(t)
	base := time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC)

	for i := 0; i < constants.MaxSyncAttempts+5; i++ {
		err := store.RecordSyncAttempt(models.SyncAttempt{
			ID:          fmt.Sprintf("attempt-%03d", i),
			AttemptedAt: base.Add(time.Duration(i) * time.Second),
			Operation:   "push",
			Status:      constants.SyncStatusSynced,
		})
		if err != nil {
			t.Fatalf("RecordSyncAttempt failed: %v", err)
		}
	}

	attempts, err := store.SyncAttempts(0)
	if err != nil {
		t.Fatalf("SyncAttempts failed: %v", err)
	}
	if len(attempts) != constants.MaxSyncAttempts {
		t.Errorf("expected %d attempts after pruning, got %d", constants.MaxSyncAttempts, len(attempts))
	}
	if attempts[len(attempts)-1].ID != "attempt-005" {
		t.Errorf("oldest kept attempt = %s, want attempt-005", attempts[len(attempts)-1].ID)
	}
}
