package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/julianstephens/dayscore/internal/backup"
	"github.com/julianstephens/dayscore/internal/constants"
	"github.com/julianstephens/dayscore/internal/errors"
	"github.com/julianstephens/dayscore/internal/logger"
	"github.com/julianstephens/dayscore/internal/models"
	"github.com/julianstephens/dayscore/internal/storage"
	"github.com/julianstephens/dayscore/internal/tracker"
	"github.com/julianstephens/dayscore/internal/utils"
)

type Context struct {
	Store   storage.Provider
	Tracker *tracker.Tracker
	// Remote describes where updates are pushed, for status output only.
	Remote string
	UserID string
	// Ping checks the remote connection. Nil when no remote is configured.
	Ping func(context.Context) error
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if storage.IsJSONPath(c.Store.GetConfigPath()) {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	_, err := mgr.CreateBackup()
	if err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// BackupBeforeRewrite snapshots the database before op rewrites history.
// It is installed as the tracker's BeforeRewrite hook.
func (c *Context) BackupBeforeRewrite(op string) error {
	if storage.IsJSONPath(c.Store.GetConfigPath()) {
		return nil
	}
	path, err := backup.NewManager(c.Store.GetConfigPath()).CreateBackup()
	if err != nil {
		return fmt.Errorf("backup before %s: %w", op, err)
	}
	logger.Debug("Backup created before rewrite", "op", op, "path", path)
	return nil
}

// EnsureRollover archives a working day left over from an earlier date
// before a command reads or pushes it. The rollover and its sync result are
// reported to w.
func (c *Context) EnsureRollover(w io.Writer) error {
	day, out, err := c.Tracker.EnsureRollover(context.Background())
	if err != nil {
		return fmt.Errorf("failed to roll over the working day: %w", err)
	}
	if day == "" {
		return nil
	}
	fmt.Fprintf(w, "Archived working day %s\n", day)
	ReportOutcome(w, out)
	return nil
}

// IntakeFlags are the per-quantity flags shared by intake, score and repair.
type IntakeFlags struct {
	Calories float64 `help:"Calories (kcal)."`
	Protein  float64 `help:"Protein (g)."`
	Carbs    float64 `help:"Carbohydrates (g)."`
	Fat      float64 `help:"Fat (g)."`
	Activity float64 `help:"Active minutes."`
	Water    float64 `help:"Water (cups)."`
}

func (f IntakeFlags) Record() models.IntakeRecord {
	return models.IntakeRecord{
		Calories: f.Calories,
		Protein:  f.Protein,
		Carbs:    f.Carbs,
		Fat:      f.Fat,
		Activity: f.Activity,
		Water:    f.Water,
	}
}

// Validate rejects quantities that are not finite numbers.
func (f IntakeFlags) Validate() error {
	for _, q := range []struct {
		name  string
		value float64
	}{
		{"calories", f.Calories},
		{"protein", f.Protein},
		{"carbs", f.Carbs},
		{"fat", f.Fat},
		{"activity", f.Activity},
		{"water", f.Water},
	} {
		if math.IsNaN(q.value) || math.IsInf(q.value, 0) {
			return fmt.Errorf("--%s must be a finite number, got %v", q.name, q.value)
		}
	}
	return nil
}

// ParseMeals validates each raw JSON meal document.
func ParseMeals(raw []string) ([]models.Meal, error) {
	var meals []models.Meal
	for i, r := range raw {
		m, err := models.NewMeal([]byte(r))
		if err != nil {
			return nil, fmt.Errorf("meal %d is not valid JSON: %w", i+1, err)
		}
		meals = append(meals, m)
	}
	return meals, nil
}

// ResolveDay turns "today", "yesterday" or a YYYY-MM-DD key into a day key
// relative to today's key.
func ResolveDay(arg, today string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "", "today":
		return today, nil
	case "yesterday":
		t, err := time.Parse(constants.DateFormat, today)
		if err != nil {
			return "", fmt.Errorf("invalid today key %q: %w", today, err)
		}
		return t.AddDate(0, 0, -1).Format(constants.DateFormat), nil
	}
	if !utils.ValidDayKey(arg) {
		return "", fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD, 'today' or 'yesterday')", arg)
	}
	return arg, nil
}

// ReportOutcome prints the result of a committed local change and of the
// remote push that followed it.
func ReportOutcome(w io.Writer, out tracker.Outcome) {
	fmt.Fprintln(w, "✓ Local data updated")
	switch out.Remote {
	case constants.SyncStatusSynced:
		fmt.Fprintf(w, "✓ Remote synced (%s)\n", strings.Join(out.Fields, ", "))
	case constants.SyncStatusSkipped:
		fmt.Fprintln(w, "ℹ No remote configured, sync skipped")
	default:
		fmt.Fprintf(w, "⚠ %s\n", errors.Partial(out.RemoteErr))
	}
}

// FormatComponents renders a score breakdown on one line.
func FormatComponents(c models.ScoreComponents) string {
	return fmt.Sprintf("%d (nutrition %d, activity %d, workout %d, hydration %d)",
		c.Total(), c.Nutrition, c.Activity, c.Workout, c.Hydration)
}

// FormatIntake renders an intake record on one line.
func FormatIntake(r models.IntakeRecord) string {
	return fmt.Sprintf("%g kcal, %gg protein, %gg carbs, %gg fat, %g min activity, %g cups water",
		r.Calories, r.Protein, r.Carbs, r.Fat, r.Activity, r.Water)
}
