package score

import (
	"testing"
	"time"

	"github.com/julianstephens/dayscore/internal/models"
)

// Ratios are capped at 1 before averaging. Averaging the uncapped ratios
// would give nutrition 32 and a total of 47 for this intake, and could push
// the total past 100.
func TestComputeRepairScenario(t *testing.T) {
	intake := models.IntakeRecord{Calories: 2295, Protein: 59, Carbs: 390, Fat: 63, Activity: 0, Water: 8}
	goals := models.DefaultGoals()

	got := Compute(intake, goals, nil)
	want := models.ScoreComponents{Nutrition: 29, Activity: 0, Workout: 0, Hydration: 15}

	if got != want {
		t.Errorf("Compute() = %+v, want %+v", got, want)
	}
	if got.Total() != 44 {
		t.Errorf("Total() = %d, want 44", got.Total())
	}
}

func TestCompute(t *testing.T) {
	goals := models.DefaultGoals()
	day := time.Date(2025, 10, 20, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		intake   models.IntakeRecord
		goals    models.GoalRecord
		workouts []models.WorkoutEntry
		want     models.ScoreComponents
	}{
		{
			name:   "empty day",
			intake: models.IntakeRecord{},
			goals:  goals,
			want:   models.ScoreComponents{},
		},
		{
			name:   "perfect day",
			intake: models.IntakeRecord{Calories: 2000, Protein: 120, Activity: 30, Water: 8},
			goals:  goals,
			workouts: []models.WorkoutEntry{
				{Timestamp: day, CompletionRate: 1},
			},
			want: models.ScoreComponents{Nutrition: 40, Activity: 15, Workout: 30, Hydration: 15},
		},
		{
			name:   "over goal is capped before scaling",
			intake: models.IntakeRecord{Calories: 2200, Protein: 400, Activity: 300, Water: 40},
			goals:  goals,
			want:   models.ScoreComponents{Nutrition: 40, Activity: 15, Hydration: 15},
		},
		{
			name:   "heavy over-eating is penalised to zero",
			intake: models.IntakeRecord{Calories: 6000, Protein: 0},
			goals:  goals,
			want:   models.ScoreComponents{Nutrition: 0},
		},
		{
			name:   "half way",
			intake: models.IntakeRecord{Calories: 1000, Protein: 60, Activity: 15, Water: 4},
			goals:  goals,
			workouts: []models.WorkoutEntry{
				{Timestamp: day, CompletionRate: 0.5},
				{Timestamp: day, CompletionRate: 0.5},
			},
			want: models.ScoreComponents{Nutrition: 20, Activity: 8, Workout: 15, Hydration: 8},
		},
		{
			name:   "negative intake is clamped",
			intake: models.IntakeRecord{Calories: -500, Protein: -10, Activity: -5, Water: -1},
			goals:  goals,
			want:   models.ScoreComponents{},
		},
		{
			name:   "completion rates are clamped",
			intake: models.IntakeRecord{},
			goals:  goals,
			workouts: []models.WorkoutEntry{
				{Timestamp: day, CompletionRate: 7},
				{Timestamp: day, CompletionRate: -3},
			},
			want: models.ScoreComponents{Workout: 15},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.intake, tt.goals, tt.workouts)
			if got != tt.want {
				t.Errorf("Compute() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeZeroGoals(t *testing.T) {
	intake := models.IntakeRecord{Calories: 1, Protein: 1, Activity: 1, Water: 1}

	got := Compute(intake, models.GoalRecord{}, nil)
	// every denominator is treated as 1
	want := models.ScoreComponents{Nutrition: 40, Activity: 15, Hydration: 15}
	if got != want {
		t.Errorf("Compute() with zero goals = %+v, want %+v", got, want)
	}
}

func TestComputeBounds(t *testing.T) {
	goalSets := []models.GoalRecord{
		models.DefaultGoals(),
		{Calories: 1, Protein: 1, Activity: 1, Water: 1},
		{Calories: 0.5, Protein: 3000, Activity: 0, Water: 100},
	}
	values := []float64{0, 0.5, 1, 7, 59, 120, 2000, 2295, 9999, 1e9}

	for _, g := range goalSets {
		for _, cal := range values {
			for _, other := range values {
				intake := models.IntakeRecord{Calories: cal, Protein: other, Activity: other, Water: other}
				workouts := []models.WorkoutEntry{{CompletionRate: other / 100}}
				total := Compute(intake, g, workouts).Total()
				if total < 0 || total > 100 {
					t.Fatalf("Compute(%+v, %+v) total = %d, want within [0,100]", intake, g, total)
				}
			}
		}
	}
}

func TestForDay(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	workouts := []models.WorkoutEntry{
		// 23:30 UTC on the 19th is 01:30 on the 20th in loc
		{Timestamp: time.Date(2025, 10, 19, 23, 30, 0, 0, time.UTC), CompletionRate: 1},
		{Timestamp: time.Date(2025, 10, 20, 9, 0, 0, 0, loc), CompletionRate: 0},
		{Timestamp: time.Date(2025, 10, 21, 9, 0, 0, 0, loc), CompletionRate: 1},
		{CompletionRate: 1},
	}

	on := WorkoutsOn(workouts, "2025-10-20", loc)
	if len(on) != 2 {
		t.Fatalf("WorkoutsOn() returned %d entries, want 2", len(on))
	}

	got := ForDay(models.IntakeRecord{}, models.DefaultGoals(), workouts, "2025-10-20", loc)
	if got.Workout != 15 {
		t.Errorf("ForDay() workout = %d, want 15", got.Workout)
	}
}

func TestRoundHalfUp(t *testing.T) {
	tests := map[float64]int{0: 0, 0.49: 0, 0.5: 1, 1.5: 2, 2.5: 3, 14.999: 15}
	for in, want := range tests {
		if got := round(in); got != want {
			t.Errorf("round(%v) = %d, want %d", in, got, want)
		}
	}
}
