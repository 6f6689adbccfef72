package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/dayscore/internal/constants"
	"github.com/julianstephens/dayscore/internal/ledger"
	"github.com/julianstephens/dayscore/internal/models"
	"github.com/julianstephens/dayscore/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictInvalidDayKey       ConflictType = "invalid_day_key"
	ConflictFutureDay           ConflictType = "future_day"
	ConflictComponentOutOfRange ConflictType = "component_out_of_range"
	ConflictNegativeIntake      ConflictType = "negative_intake"
	ConflictInvalidGoal         ConflictType = "invalid_goal"
	ConflictWorkoutRate         ConflictType = "workout_rate"
	ConflictRolloverDue         ConflictType = "rollover_due"
	ConflictWorkingDayAhead     ConflictType = "working_day_ahead"
)

// Conflict represents one problem found in the local state
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string // YYYY-MM-DD, when the conflict belongs to a day
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", c.Description)
	}
	return b.String()
}

func (vr *ValidationResult) add(t ConflictType, date, format string, args ...any) {
	vr.Conflicts = append(vr.Conflicts, Conflict{
		Type:        t,
		Description: fmt.Sprintf(format, args...),
		Date:        date,
	})
}

// Validator checks the local state for values the ledger operations would
// not have produced.
type Validator struct {
	loc *time.Location
}

// New creates a Validator that judges day boundaries in loc.
func New(loc *time.Location) *Validator {
	if loc == nil {
		loc = time.Local
	}
	return &Validator{loc: loc}
}

// ValidateState checks the ledger, the working day, goals and workouts
// as of now.
func (v *Validator) ValidateState(s ledger.State, now time.Time) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	today := utils.DayKey(now, v.loc)

	v.validateLedger(&result, s.History, today)

	if n := negativeFields(s.Intake); len(n) > 0 {
		result.add(ConflictNegativeIntake, s.IntakeDate, "Working day has negative %s", strings.Join(n, ", "))
	}
	if s.IntakeDate != "" {
		switch {
		case s.IntakeDate < today:
			result.add(ConflictRolloverDue, s.IntakeDate, "Working day %s was never archived; run '%s rollover'", s.IntakeDate, constants.AppName)
		case s.IntakeDate > today:
			result.add(ConflictWorkingDayAhead, s.IntakeDate, "Working day %s is after today (%s); check the configured timezone", s.IntakeDate, today)
		}
	}

	for _, name := range nonPositiveGoals(s.Goals) {
		result.add(ConflictInvalidGoal, "", "Goal %s is not positive; it is scored as 1", name)
	}

	for i, w := range s.Workouts {
		if w.CompletionRate < 0 || w.CompletionRate > 1 {
			result.add(ConflictWorkoutRate, utils.DayKey(w.Timestamp, v.loc), "Workout %d has completion rate %v outside [0, 1]", i+1, w.CompletionRate)
		}
	}

	return result
}

// ValidateLedger checks archived records only.
func (v *Validator) ValidateLedger(l ledger.Ledger, now time.Time) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	v.validateLedger(&result, l, utils.DayKey(now, v.loc))
	return result
}

func (v *Validator) validateLedger(result *ValidationResult, l ledger.Ledger, today string) {
	for _, day := range l.Keys() {
		rec := l[day]
		if !utils.ValidDayKey(day) {
			result.add(ConflictInvalidDayKey, day, "Invalid day key %q", day)
			continue
		}
		if day > today {
			result.add(ConflictFutureDay, day, "Day %s is in the future", day)
		}
		c := rec.Components
		limits := []struct {
			name  string
			value int
			max   int
		}{
			{"nutrition", c.Nutrition, constants.NutritionPoints},
			{"activity", c.Activity, constants.ActivityPoints},
			{"workout", c.Workout, constants.WorkoutPoints},
			{"hydration", c.Hydration, constants.HydrationPoints},
		}
		for _, lim := range limits {
			if lim.value < 0 || lim.value > lim.max {
				result.add(ConflictComponentOutOfRange, day, "Day %s has %s %d outside [0, %d]", day, lim.name, lim.value, lim.max)
			}
		}
		if n := negativeFields(rec.Intake); len(n) > 0 {
			result.add(ConflictNegativeIntake, day, "Day %s has negative %s", day, strings.Join(n, ", "))
		}
	}
}

func negativeFields(r models.IntakeRecord) []string {
	var out []string
	for _, f := range intakeFields(r.Calories, r.Protein, r.Carbs, r.Fat, r.Activity, r.Water) {
		if f.value < 0 {
			out = append(out, f.name)
		}
	}
	return out
}

func nonPositiveGoals(g models.GoalRecord) []string {
	var out []string
	for _, f := range intakeFields(g.Calories, g.Protein, g.Carbs, g.Fat, g.Activity, g.Water) {
		if f.value <= 0 {
			out = append(out, f.name)
		}
	}
	return out
}

type field struct {
	name  string
	value float64
}

func intakeFields(calories, protein, carbs, fat, activity, water float64) []field {
	return []field{
		{"calories", calories},
		{"protein", protein},
		{"carbs", carbs},
		{"fat", fat},
		{"activity", activity},
		{"water", water},
	}
}
