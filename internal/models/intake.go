package models

import (
	"math"

	"github.com/julianstephens/dayscore/internal/constants"
)

// IntakeRecord is one day's consumed quantities. Units are implied:
// kcal, grams, grams, grams, minutes, cups.
type IntakeRecord struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Activity float64 `json:"activity"`
	Water    float64 `json:"water"`
}

// GoalRecord has the same shape as IntakeRecord but holds per-day targets.
type GoalRecord struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Activity float64 `json:"activity"`
	Water    float64 `json:"water"`
}

// DefaultGoals returns the goals used when none are configured.
func DefaultGoals() GoalRecord {
	return GoalRecord{
		Calories: constants.DefaultGoalCalories,
		Protein:  constants.DefaultGoalProtein,
		Carbs:    constants.DefaultGoalCarbs,
		Fat:      constants.DefaultGoalFat,
		Activity: constants.DefaultGoalActivity,
		Water:    constants.DefaultGoalWater,
	}
}

// Clamp returns a copy with every negative or non-finite quantity replaced
// by zero.
func (r IntakeRecord) Clamp() IntakeRecord {
	return IntakeRecord{
		Calories: nonNegative(r.Calories),
		Protein:  nonNegative(r.Protein),
		Carbs:    nonNegative(r.Carbs),
		Fat:      nonNegative(r.Fat),
		Activity: nonNegative(r.Activity),
		Water:    nonNegative(r.Water),
	}
}

// Add returns the field-wise sum of r and o, clamped to zero.
func (r IntakeRecord) Add(o IntakeRecord) IntakeRecord {
	return IntakeRecord{
		Calories: r.Calories + o.Calories,
		Protein:  r.Protein + o.Protein,
		Carbs:    r.Carbs + o.Carbs,
		Fat:      r.Fat + o.Fat,
		Activity: r.Activity + o.Activity,
		Water:    r.Water + o.Water,
	}.Clamp()
}

func (r IntakeRecord) IsZero() bool {
	return r == IntakeRecord{}
}

// nonNegative maps negative and non-finite values to zero.
func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
