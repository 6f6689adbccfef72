package ledger

import (
	"fmt"
	"time"

	"github.com/julianstephens/dayscore/internal/models"
	"github.com/julianstephens/dayscore/internal/utils"
)

// RestoreEntry is one operator-supplied day to put back into the ledger.
// Only Date and Score are required.
type RestoreEntry struct {
	Date       string                  `json:"date"`
	Score      int                     `json:"score"`
	Intake     *models.IntakeRecord    `json:"intake,omitempty"`
	Components *models.ScoreComponents `json:"components,omitempty"`
	Meals      []models.Meal           `json:"meals,omitempty"`
}

// BuildRestorePatch turns restore entries into a ledger patch to Merge into
// the current history. Later entries for the same date win.
func BuildRestorePatch(entries []RestoreEntry) (Ledger, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyRestore
	}

	patch := make(Ledger, len(entries))
	for i, e := range entries {
		rec, err := e.record()
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		patch[e.Date] = rec
	}
	return patch, nil
}

func (e RestoreEntry) record() (models.DayRecord, error) {
	if !utils.ValidDayKey(e.Date) {
		return models.DayRecord{}, invalidKey(e.Date)
	}
	if e.Score < 0 {
		return models.DayRecord{}, fmt.Errorf("%w: %s score %d is negative", ErrInvalidRecord, e.Date, e.Score)
	}

	rec := models.DayRecord{
		Score:      e.Score,
		Components: models.ScoreComponents{Nutrition: e.Score},
		Meals:      append([]models.Meal(nil), e.Meals...),
	}
	if e.Intake != nil {
		rec.Intake = e.Intake.Clamp()
	}
	if e.Components != nil {
		rec.Components = *e.Components
	}
	if !rec.Consistent() {
		return models.DayRecord{}, invalidRecord(e.Date, rec.Score, rec.Components.Total())
	}
	return rec, nil
}

// Stamp returns a copy of l where every record without an update time is
// stamped with now.
func Stamp(l Ledger, now time.Time) Ledger {
	out := l.Clone()
	stamp := now.UTC()
	for k, v := range out {
		if v.UpdatedAt == nil {
			v.UpdatedAt = &stamp
			out[k] = v
		}
	}
	return out
}
