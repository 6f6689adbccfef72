// Package tracker is the single handle through which every state change
// flows. Each operation loads the local state, applies a ledger operation,
// commits it locally and then asks the persister to push the affected
// fields. A remote failure never undoes the local commit.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/dayscore/internal/constants"
	"github.com/julianstephens/dayscore/internal/ledger"
	"github.com/julianstephens/dayscore/internal/logger"
	"github.com/julianstephens/dayscore/internal/models"
	"github.com/julianstephens/dayscore/internal/remote"
	"github.com/julianstephens/dayscore/internal/score"
	"github.com/julianstephens/dayscore/internal/storage"
	"github.com/julianstephens/dayscore/internal/utils"
)

// ErrFutureDay is returned when an operation targets a day after today.
var ErrFutureDay = errors.New("day is in the future")

// Options configures a Tracker. Store is required.
type Options struct {
	Store     storage.Provider
	Persister remote.Persister // defaults to remote.Nop
	UserID    string
	Location  *time.Location   // defaults to time.Local
	Timeout   time.Duration    // per remote call, defaults to constants.DefaultSyncTimeout
	Now       func() time.Time // defaults to time.Now
	// BeforeRewrite runs before an operation rewrites archived history.
	BeforeRewrite func(op string) error
}

type Tracker struct {
	mu            sync.Mutex
	store         storage.Provider
	persister     remote.Persister
	userID        string
	loc           *time.Location
	timeout       time.Duration
	now           func() time.Time
	beforeRewrite func(op string) error
}

func New(opts Options) *Tracker {
	t := &Tracker{
		store:         opts.Store,
		persister:     opts.Persister,
		userID:        opts.UserID,
		loc:           opts.Location,
		timeout:       opts.Timeout,
		now:           opts.Now,
		beforeRewrite: opts.BeforeRewrite,
	}
	if t.persister == nil {
		t.persister = remote.Nop{}
	}
	if t.loc == nil {
		t.loc = time.Local
	}
	if t.timeout <= 0 {
		t.timeout = constants.DefaultSyncTimeout
	}
	if t.now == nil {
		t.now = time.Now
	}
	return t
}

// Location returns the time zone that defines day boundaries.
func (t *Tracker) Location() *time.Location {
	return t.loc
}

// Now reads the tracker's clock.
func (t *Tracker) Now() time.Time {
	return t.now()
}

// Today returns today's day key.
func (t *Tracker) Today() string {
	return utils.DayKey(t.now(), t.loc)
}

// State returns the current local state.
func (t *Tracker) State() (ledger.State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return storage.LoadState(t.store)
}

// DayView summarises the working day.
type DayView struct {
	Date          string
	LastSavedDate string
	Intake        models.IntakeRecord
	Meals         []models.Meal
	Goals         models.GoalRecord
	Workouts      []models.WorkoutEntry
	Projected     models.ScoreComponents
	RolloverDue   bool
}

// Current returns the working day with its projected score.
func (t *Tracker) Current() (DayView, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := storage.LoadState(t.store)
	if err != nil {
		return DayView{}, err
	}
	now := t.now()
	day := s.IntakeDate
	if day == "" {
		day = utils.DayKey(now, t.loc)
	}
	return DayView{
		Date:          day,
		LastSavedDate: s.LastSavedDate,
		Intake:        s.Intake,
		Meals:         s.Meals,
		Goals:         s.Goals,
		Workouts:      score.WorkoutsOn(s.Workouts, day, t.loc),
		Projected:     score.ForDay(s.Intake, s.Goals, s.Workouts, day, t.loc),
		RolloverDue:   ledger.RolloverDue(s, now, t.loc),
	}, nil
}

// AddIntake accumulates delta and meals into the working day. A working
// day left over from an earlier date is archived first.
func (t *Tracker) AddIntake(ctx context.Context, delta models.IntakeRecord, meals []models.Meal) (Outcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := storage.LoadState(t.store)
	if err != nil {
		return Outcome{}, err
	}

	now := t.now()
	rolled := false
	if ledger.RolloverDue(s, now, t.loc) {
		if s, _, err = t.rollover(s, s.IntakeDate, now); err != nil {
			return Outcome{}, err
		}
		rolled = true
	}
	if s.IntakeDate == "" {
		s = ledger.ResetCurrentDay(s, now, t.loc)
	}

	s.Intake = s.Intake.Add(delta)
	s.Meals = append(append([]models.Meal(nil), s.Meals...), meals...)

	if err := storage.SaveState(t.store, s); err != nil {
		return Outcome{}, fmt.Errorf("failed to save intake: %w", err)
	}
	logger.Info("Intake recorded", "day", s.IntakeDate, "meals", len(meals), "rolled_over", rolled)

	intake := s.Intake
	mealsCopy := append([]models.Meal{}, s.Meals...)
	update := remote.Update{DailyIntake: &intake, RecentMeals: &mealsCopy, UpdatedAt: now.UTC()}
	if rolled {
		update.DailyHistory = s.History
	}
	return t.persist(ctx, "intake", update), nil
}

// SetGoals replaces the goals. Goals are local only.
func (t *Tracker) SetGoals(goals models.GoalRecord) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := storage.LoadState(t.store)
	if err != nil {
		return err
	}
	s.Goals = goals
	if err := storage.SaveState(t.store, s); err != nil {
		return fmt.Errorf("failed to save goals: %w", err)
	}
	logger.Info("Goals updated", "calories", goals.Calories, "protein", goals.Protein)
	return nil
}

// AddWorkout appends a workout to the local history.
func (t *Tracker) AddWorkout(w models.WorkoutEntry) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if w.Timestamp.IsZero() {
		w.Timestamp = t.now()
	}
	if !(w.CompletionRate >= 0 && w.CompletionRate <= 1) {
		return fmt.Errorf("completion rate %v outside [0, 1]", w.CompletionRate)
	}

	s, err := storage.LoadState(t.store)
	if err != nil {
		return err
	}
	s.Workouts = append(append([]models.WorkoutEntry(nil), s.Workouts...), w)
	if err := storage.SaveState(t.store, s); err != nil {
		return fmt.Errorf("failed to save workout: %w", err)
	}
	logger.Info("Workout recorded", "at", w.Timestamp, "completion", w.CompletionRate)
	return nil
}

// Rollover archives the working day under dayKey, or under its own date
// when dayKey is empty, and starts a fresh working day.
func (t *Tracker) Rollover(ctx context.Context, dayKey string) (models.DayRecord, Outcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := storage.LoadState(t.store)
	if err != nil {
		return models.DayRecord{}, Outcome{}, err
	}
	now := t.now()
	if dayKey == "" {
		dayKey = s.IntakeDate
	}
	if dayKey == "" {
		dayKey = utils.DayKey(now, t.loc)
	}
	if err := t.checkNotFuture(dayKey, now); err != nil {
		return models.DayRecord{}, Outcome{}, err
	}
	if _, exists := s.History[dayKey]; exists {
		t.snapshot("rollover")
	}

	s, rec, err := t.rollover(s, dayKey, now)
	if err != nil {
		return models.DayRecord{}, Outcome{}, err
	}
	if err := storage.SaveState(t.store, s); err != nil {
		return models.DayRecord{}, Outcome{}, fmt.Errorf("failed to save rollover: %w", err)
	}
	return rec, t.persist(ctx, "rollover", remote.SnapshotUpdate(s, now)), nil
}

// EnsureRollover archives the working day if it belongs to an earlier date
// and returns the archived day key, or "" when nothing was due.
func (t *Tracker) EnsureRollover(ctx context.Context) (string, Outcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := storage.LoadState(t.store)
	if err != nil {
		return "", Outcome{}, err
	}
	now := t.now()
	if !ledger.RolloverDue(s, now, t.loc) {
		return "", Outcome{Remote: constants.SyncStatusSkipped}, nil
	}

	day := s.IntakeDate
	s, _, err = t.rollover(s, day, now)
	if err != nil {
		return "", Outcome{}, err
	}
	if err := storage.SaveState(t.store, s); err != nil {
		return "", Outcome{}, fmt.Errorf("failed to save rollover: %w", err)
	}
	return day, t.persist(ctx, "rollover", remote.SnapshotUpdate(s, now)), nil
}

func (t *Tracker) rollover(s ledger.State, dayKey string, now time.Time) (ledger.State, models.DayRecord, error) {
	intake, meals := ledger.WorkingDay(s, dayKey)
	next, rec, err := ledger.Archive(s, dayKey, intake, meals, now, t.loc)
	if err != nil {
		return s, models.DayRecord{}, fmt.Errorf("failed to archive %s: %w", dayKey, err)
	}
	logger.Info("Day archived", "day", dayKey, "score", rec.Score)
	return next, rec, nil
}

// Repair archives explicit intake for a past day, replacing whatever was
// recorded, and resets the working day. The full snapshot is pushed so the
// remote copy cannot resurrect the stale working day.
func (t *Tracker) Repair(ctx context.Context, dayKey string, intake models.IntakeRecord, meals []models.Meal) (models.DayRecord, Outcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if err := t.checkNotFuture(dayKey, now); err != nil {
		return models.DayRecord{}, Outcome{}, err
	}

	s, err := storage.LoadState(t.store)
	if err != nil {
		return models.DayRecord{}, Outcome{}, err
	}
	t.snapshot("repair")

	s, rec, err := ledger.Archive(s, dayKey, intake, meals, now, t.loc)
	if err != nil {
		return models.DayRecord{}, Outcome{}, fmt.Errorf("failed to repair %s: %w", dayKey, err)
	}
	if err := storage.SaveState(t.store, s); err != nil {
		return models.DayRecord{}, Outcome{}, fmt.Errorf("failed to save repair: %w", err)
	}
	logger.Info("Day repaired", "day", dayKey, "score", rec.Score, "components", rec.Components)
	return rec, t.persist(ctx, "repair", remote.SnapshotUpdate(s, now)), nil
}

// RestoreDailyHistory merges operator-supplied entries into the ledger and
// pushes the merged history. With no entries nothing is changed.
func (t *Tracker) RestoreDailyHistory(ctx context.Context, entries []ledger.RestoreEntry) (ledger.Ledger, Outcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	patch, err := ledger.BuildRestorePatch(entries)
	if err != nil {
		return nil, Outcome{}, err
	}
	now := t.now()
	for _, day := range patch.Keys() {
		if err := t.checkNotFuture(day, now); err != nil {
			return nil, Outcome{}, err
		}
	}

	s, err := storage.LoadState(t.store)
	if err != nil {
		return nil, Outcome{}, err
	}
	t.snapshot("restore")

	patch = ledger.Stamp(patch, now)
	s.History = ledger.Merge(s.History, patch)
	if err := storage.SaveState(t.store, s); err != nil {
		return nil, Outcome{}, fmt.Errorf("failed to save restored history: %w", err)
	}
	logger.Info("History restored", "days", patch.Keys())

	update := remote.Update{DailyHistory: s.History, UpdatedAt: now.UTC()}
	return patch, t.persist(ctx, "restore", update), nil
}

// ExportDailyHistory returns the whole ledger as portable JSON.
func (t *Tracker) ExportDailyHistory() ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := storage.LoadState(t.store)
	if err != nil {
		return nil, err
	}
	return ledger.Export(s.History)
}

// ImportResult counts how each imported day was applied.
type ImportResult struct {
	Added     int
	Replaced  int
	Unchanged int
}

// ImportDailyHistory merges an exported ledger into the local one. A local
// day stamped later than its imported copy is kept unless overwrite is set,
// in which case every imported day replaces the local one. A malformed
// payload changes nothing.
func (t *Tracker) ImportDailyHistory(ctx context.Context, text []byte, overwrite bool) (ImportResult, Outcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	incoming, err := ledger.Import(text)
	if err != nil {
		return ImportResult{}, Outcome{}, err
	}

	s, err := storage.LoadState(t.store)
	if err != nil {
		return ImportResult{}, Outcome{}, err
	}
	t.snapshot("import")

	merged := ledger.MergeByFreshness(s.History, incoming)
	if overwrite {
		merged = ledger.Merge(s.History, incoming)
	}

	var res ImportResult
	for day := range incoming {
		old, existed := s.History[day]
		switch {
		case !existed:
			res.Added++
		case merged[day].Equal(old):
			res.Unchanged++
		default:
			res.Replaced++
		}
	}

	s.History = merged
	if err := storage.SaveState(t.store, s); err != nil {
		return ImportResult{}, Outcome{}, fmt.Errorf("failed to save imported history: %w", err)
	}
	logger.Info("History imported", "added", res.Added, "replaced", res.Replaced, "unchanged", res.Unchanged, "overwrite", overwrite)

	update := remote.Update{DailyHistory: s.History, UpdatedAt: t.now().UTC()}
	return res, t.persist(ctx, "import", update), nil
}

// Push sends the full current snapshot. It is the manual retry after a
// failed sync and is safe to repeat.
func (t *Tracker) Push(ctx context.Context) (Outcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := storage.LoadState(t.store)
	if err != nil {
		return Outcome{}, err
	}
	return t.persist(ctx, "push", remote.SnapshotUpdate(s, t.now())), nil
}

// SyncAttempts returns the most recent remote attempts, newest first.
func (t *Tracker) SyncAttempts(limit int) ([]models.SyncAttempt, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.SyncAttempts(limit)
}

func (t *Tracker) checkNotFuture(dayKey string, now time.Time) error {
	if !utils.ValidDayKey(dayKey) {
		return fmt.Errorf("%w: %q", ledger.ErrInvalidKey, dayKey)
	}
	if dayKey > utils.DayKey(now, t.loc) {
		return fmt.Errorf("%w: %s", ErrFutureDay, dayKey)
	}
	return nil
}

func (t *Tracker) snapshot(op string) {
	if t.beforeRewrite == nil {
		return
	}
	if err := t.beforeRewrite(op); err != nil {
		logger.Warn("Backup before rewrite failed", "op", op, "error", err)
	}
}

func newAttemptID() string {
	return uuid.NewString()
}
