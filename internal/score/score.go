// Package score computes the daily wellness score from a day's intake,
// the user's goals and the day's workouts.
//
// The score is made of four point-weighted components:
//
//	nutrition  up to 40  calories and protein against goal, minus an over-eating penalty
//	activity   up to 15  active minutes against goal
//	workout    up to 30  mean completion of the day's workouts
//	hydration  up to 15  water against goal
//
// Every ratio is capped at 1 before it is scaled, so the total never exceeds 100.
package score

import (
	"math"
	"time"

	"github.com/julianstephens/dayscore/internal/constants"
	"github.com/julianstephens/dayscore/internal/models"
	"github.com/julianstephens/dayscore/internal/utils"
)

// Compute returns the score components for one day. workouts must already be
// restricted to that day; see ForDay.
func Compute(intake models.IntakeRecord, goals models.GoalRecord, workouts []models.WorkoutEntry) models.ScoreComponents {
	intake = intake.Clamp()

	return models.ScoreComponents{
		Nutrition: Nutrition(intake, goals),
		Activity:  round(capped(intake.Activity, goals.Activity) * constants.ActivityPoints),
		Workout:   Workout(workouts),
		Hydration: round(capped(intake.Water, goals.Water) * constants.HydrationPoints),
	}
}

// ForDay computes the components for dayKey, using only the workouts whose
// timestamp falls on that local calendar day.
func ForDay(intake models.IntakeRecord, goals models.GoalRecord, workouts []models.WorkoutEntry, dayKey string, loc *time.Location) models.ScoreComponents {
	return Compute(intake, goals, WorkoutsOn(workouts, dayKey, loc))
}

// Nutrition scores calories and protein. Both ratios are capped at 1 before
// they are averaged; the penalty uses the uncapped calorie ratio and is
// already expressed in points.
func Nutrition(intake models.IntakeRecord, goals models.GoalRecord) int {
	intake = intake.Clamp()
	calRatio := ratio(intake.Calories, goals.Calories)
	proteinRatio := ratio(intake.Protein, goals.Protein)

	penalty := math.Max(0, (calRatio-constants.CaloriePenaltyThreshold)*constants.CaloriePenaltyRate)
	avg := (math.Min(calRatio, 1) + math.Min(proteinRatio, 1)) / 2

	return round(math.Max(0, avg*constants.NutritionPoints-penalty))
}

// Workout scores the mean completion rate of the given workouts.
func Workout(workouts []models.WorkoutEntry) int {
	if len(workouts) == 0 {
		return 0
	}
	var sum float64
	for _, w := range workouts {
		sum += clamp01(w.CompletionRate)
	}
	return round(sum / float64(len(workouts)) * constants.WorkoutPoints)
}

// WorkoutsOn filters workouts to those logged on dayKey in loc.
func WorkoutsOn(workouts []models.WorkoutEntry, dayKey string, loc *time.Location) []models.WorkoutEntry {
	var out []models.WorkoutEntry
	for _, w := range workouts {
		if w.Timestamp.IsZero() {
			continue
		}
		if utils.DayKey(w.Timestamp, loc) == dayKey {
			out = append(out, w)
		}
	}
	return out
}

// ratio divides value by goal, treating goals below 1 as 1.
func ratio(value, goal float64) float64 {
	return value / math.Max(goal, 1)
}

func capped(value, goal float64) float64 {
	return math.Min(ratio(value, goal), 1)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(v, 1)
}

// round rounds half up. Inputs are never negative.
func round(v float64) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return int(math.Floor(v + 0.5))
}
