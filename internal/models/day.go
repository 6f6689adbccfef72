package models

import (
	"encoding/json"
	"time"
)

// ScoreComponents are the weighted sub-scores of a day.
type ScoreComponents struct {
	Nutrition int `json:"nutrition"`
	Activity  int `json:"activity"`
	Workout   int `json:"workout"`
	Hydration int `json:"hydration"`
}

// Total returns the day score the components add up to.
func (c ScoreComponents) Total() int {
	return c.Nutrition + c.Activity + c.Workout + c.Hydration
}

func (c ScoreComponents) IsZero() bool {
	return c == ScoreComponents{}
}

// DayRecord is an archived day. It is only ever replaced whole.
type DayRecord struct {
	Intake     IntakeRecord    `json:"intake"`
	Meals      []Meal          `json:"meals"`
	Score      int             `json:"score"`
	Components ScoreComponents `json:"components"`
	UpdatedAt  *time.Time      `json:"updated_at,omitempty"` // RFC3339 timestamp
}

// Consistent reports whether the score equals the sum of its components.
func (r DayRecord) Consistent() bool {
	return r.Score == r.Components.Total()
}

// Equal compares two records by value. Timestamps compare by instant.
func (r DayRecord) Equal(o DayRecord) bool {
	if r.Intake != o.Intake || r.Score != o.Score || r.Components != o.Components {
		return false
	}
	if !MealsEqual(r.Meals, o.Meals) {
		return false
	}
	switch {
	case r.UpdatedAt == nil && o.UpdatedAt == nil:
		return true
	case r.UpdatedAt == nil || o.UpdatedAt == nil:
		return false
	default:
		return r.UpdatedAt.Equal(*o.UpdatedAt)
	}
}

// MarshalJSON always writes meals as an array, never null.
func (r DayRecord) MarshalJSON() ([]byte, error) {
	type plain DayRecord
	p := plain(r)
	if p.Meals == nil {
		p.Meals = []Meal{}
	}
	return json.Marshal(p)
}

// UnmarshalJSON accepts records written by older clients that omit meals
// or intake entirely.
func (r *DayRecord) UnmarshalJSON(data []byte) error {
	type plain DayRecord
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if len(p.Meals) == 0 {
		p.Meals = nil
	}
	*r = DayRecord(p)
	return nil
}
