package ledger

import (
	"time"

	"github.com/julianstephens/dayscore/internal/models"
	"github.com/julianstephens/dayscore/internal/score"
	"github.com/julianstephens/dayscore/internal/utils"
)

// State is the tracker's full local state: the working day plus the
// archived history.
type State struct {
	Intake        models.IntakeRecord
	Meals         []models.Meal
	IntakeDate    string // day the working intake belongs to
	LastSavedDate string // day of the most recent rollover or reset
	Goals         models.GoalRecord
	Workouts      []models.WorkoutEntry
	History       Ledger
}

// ResetCurrentDay zeroes the working intake, clears the pending meals and
// marks the local date of now as both the working day and the last save.
func ResetCurrentDay(s State, now time.Time, loc *time.Location) State {
	day := utils.DayKey(now, loc)
	s.Intake = models.IntakeRecord{}
	s.Meals = nil
	s.IntakeDate = day
	s.LastSavedDate = day
	return s
}

// BuildRecord scores intake for dayKey and returns the record to archive.
func BuildRecord(s State, dayKey string, intake models.IntakeRecord, meals []models.Meal, now time.Time, loc *time.Location) models.DayRecord {
	intake = intake.Clamp()
	components := score.ForDay(intake, s.Goals, s.Workouts, dayKey, loc)
	stamp := now.UTC()
	return models.DayRecord{
		Intake:     intake,
		Meals:      append([]models.Meal(nil), meals...),
		Score:      components.Total(),
		Components: components,
		UpdatedAt:  &stamp,
	}
}

// Archive scores intake, stores it under dayKey and resets the working day.
// This is both the nightly rollover (with the working intake) and the
// operator repair of a past day (with explicit intake).
func Archive(s State, dayKey string, intake models.IntakeRecord, meals []models.Meal, now time.Time, loc *time.Location) (State, models.DayRecord, error) {
	rec := BuildRecord(s, dayKey, intake, meals, now, loc)
	history, err := ArchiveDay(s.History, dayKey, rec)
	if err != nil {
		return s, models.DayRecord{}, err
	}
	s.History = history
	return ResetCurrentDay(s, now, loc), rec, nil
}

// Rollover archives the working day under its own date and resets it.
func Rollover(s State, now time.Time, loc *time.Location) (State, models.DayRecord, error) {
	day := s.IntakeDate
	if day == "" {
		day = utils.DayKey(now, loc)
	}
	intake, meals := WorkingDay(s, day)
	return Archive(s, day, intake, meals, now, loc)
}

// WorkingDay returns the intake and meals to archive under dayKey. When
// dayKey is the working day and already has an archived record (the day was
// rolled over or repaired before it ended), the working intake is added on
// top of that record instead of replacing it.
func WorkingDay(s State, dayKey string) (models.IntakeRecord, []models.Meal) {
	meals := append([]models.Meal(nil), s.Meals...)
	prev, ok := s.History[dayKey]
	if !ok || dayKey != s.IntakeDate {
		return s.Intake, meals
	}
	return prev.Intake.Add(s.Intake), append(append([]models.Meal(nil), prev.Meals...), meals...)
}

// RolloverDue reports whether the working day belongs to a date before
// today and must be archived before new intake is recorded.
func RolloverDue(s State, now time.Time, loc *time.Location) bool {
	if s.IntakeDate == "" {
		return false
	}
	return s.IntakeDate < utils.DayKey(now, loc)
}
