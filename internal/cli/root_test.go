package cli

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/dayscore/internal/constants"
	"github.com/julianstephens/dayscore/internal/ledger"
	"github.com/julianstephens/dayscore/internal/models"
	"github.com/julianstephens/dayscore/internal/remote"
	"github.com/julianstephens/dayscore/internal/storage"
	"github.com/julianstephens/dayscore/internal/storage/jsonfile"
	"github.com/julianstephens/dayscore/internal/storage/sqlite"
	"github.com/julianstephens/dayscore/internal/tracker"
)

func TestResolveDay(t *testing.T) {
	tests := []struct {
		arg     string
		want    string
		wantErr bool
	}{
		{arg: "", want: "2025-10-21"},
		{arg: "today", want: "2025-10-21"},
		{arg: "Yesterday", want: "2025-10-20"},
		{arg: "2025-10-19", want: "2025-10-19"},
		{arg: "2025-10-22", want: "2025-10-22"},
		{arg: "2025-13-01", wantErr: true},
		{arg: "10/19/2025", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := ResolveDay(tt.arg, "2025-10-21")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveDay(%q) error = %v, wantErr %v", tt.arg, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ResolveDay(%q) = %q, want %q", tt.arg, got, tt.want)
			}
		})
	}
}

func TestParseMeals(t *testing.T) {
	meals, err := ParseMeals([]string{`{ "name": "oats", "calories": 300 }`, `{"name":"eggs"}`})
	if err != nil {
		t.Fatalf("ParseMeals() error = %v", err)
	}
	if len(meals) != 2 {
		t.Fatalf("got %d meals, want 2", len(meals))
	}
	if string(meals[0]) != `{"name":"oats","calories":300}` {
		t.Errorf("meal not compacted: %s", meals[0])
	}

	if _, err := ParseMeals([]string{`{"name":`}); err == nil {
		t.Error("expected error for malformed meal")
	}

	meals, err = ParseMeals(nil)
	if err != nil || meals != nil {
		t.Errorf("ParseMeals(nil) = %v, %v; want nil, nil", meals, err)
	}
}

func TestIntakeFlagsRecord(t *testing.T) {
	f := IntakeFlags{Calories: 2295, Protein: 59, Carbs: 390, Fat: 63, Water: 8}
	r := f.Record()
	if r.Calories != 2295 || r.Protein != 59 || r.Carbs != 390 || r.Fat != 63 || r.Activity != 0 || r.Water != 8 {
		t.Errorf("Record() = %+v", r)
	}
}

func TestIntakeFlagsValidate(t *testing.T) {
	tests := []struct {
		name    string
		flags   IntakeFlags
		wantErr bool
	}{
		{name: "zero", flags: IntakeFlags{}},
		{name: "finite", flags: IntakeFlags{Calories: 2295, Water: 8}},
		{name: "negative is clamped later", flags: IntakeFlags{Fat: -3}},
		{name: "NaN", flags: IntakeFlags{Carbs: math.NaN()}, wantErr: true},
		{name: "positive infinity", flags: IntakeFlags{Calories: math.Inf(1)}, wantErr: true},
		{name: "negative infinity", flags: IntakeFlags{Activity: math.Inf(-1)}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.flags.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestReportOutcome(t *testing.T) {
	tests := []struct {
		name string
		out  tracker.Outcome
		want []string
	}{
		{
			name: "synced",
			out:  tracker.Outcome{Remote: constants.SyncStatusSynced, Fields: []string{"daily_history", "daily_intake"}},
			want: []string{"✓ Local data updated", "✓ Remote synced (daily_history, daily_intake)"},
		},
		{
			name: "skipped",
			out:  tracker.Outcome{Remote: constants.SyncStatusSkipped},
			want: []string{"✓ Local data updated", "sync skipped"},
		},
		{
			name: "failed",
			out: tracker.Outcome{
				Remote:    constants.SyncStatusFailed,
				RemoteErr: errors.Join(remote.ErrPersistFailure, errors.New("connection refused")),
			},
			want: []string{"✓ Local data updated", "⚠ Local data is fixed, but remote sync failed", "connection refused", "sync push"},
		},
		{
			name: "not authenticated",
			out:  tracker.Outcome{Remote: constants.SyncStatusNotAuthenticated, RemoteErr: remote.ErrNotAuthenticated},
			want: []string{"✓ Local data updated", "remote sync failed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			ReportOutcome(&buf, tt.out)
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output %q missing %q", buf.String(), w)
				}
			}
			if tt.out.Remote != constants.SyncStatusSynced && strings.Contains(buf.String(), "Remote synced") {
				t.Errorf("output %q claims a sync that did not happen", buf.String())
			}
		})
	}
}

func TestBackupBeforeRewrite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	defer store.Close()

	ctx := &Context{Store: store}
	if err := ctx.BackupBeforeRewrite("repair"); err != nil {
		t.Fatalf("BackupBeforeRewrite() error = %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(filepath.Dir(dbPath), constants.BackupDirName))
	if err != nil {
		t.Fatalf("failed to read backup dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("got %d backups, want 1", len(entries))
	}
}

func TestBackupBeforeRewriteSkipsJSONStore(t *testing.T) {
	dir := t.TempDir()
	store := jsonfile.NewStore(filepath.Join(dir, "state.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	ctx := &Context{Store: store}
	if err := ctx.BackupBeforeRewrite("import"); err != nil {
		t.Fatalf("BackupBeforeRewrite() error = %v", err)
	}
	ctx.PerformAutomaticBackup()

	if _, err := os.Stat(filepath.Join(dir, constants.BackupDirName)); !os.IsNotExist(err) {
		t.Errorf("expected no backup dir for JSON store, stat err = %v", err)
	}
}

func TestEnsureRollover(t *testing.T) {
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	defer store.Close()

	seed := ledger.State{
		Intake:     models.IntakeRecord{Calories: 1200},
		IntakeDate: "2025-10-20",
		Goals:      models.DefaultGoals(),
	}
	if err := storage.SaveState(store, seed); err != nil {
		t.Fatalf("failed to seed state: %v", err)
	}
	ctx := &Context{
		Store: store,
		Tracker: tracker.New(tracker.Options{
			Store:    store,
			Location: time.UTC,
			Now:      func() time.Time { return time.Date(2025, 10, 21, 8, 0, 0, 0, time.UTC) },
		}),
	}

	var buf bytes.Buffer
	if err := ctx.EnsureRollover(&buf); err != nil {
		t.Fatalf("EnsureRollover() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Archived working day 2025-10-20") || !strings.Contains(buf.String(), "sync skipped") {
		t.Errorf("output = %q", buf.String())
	}

	buf.Reset()
	if err := ctx.EnsureRollover(&buf); err != nil {
		t.Fatalf("second EnsureRollover() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("nothing due, but printed %q", buf.String())
	}
}
