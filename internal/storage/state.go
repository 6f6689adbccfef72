package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/dayscore/internal/constants"
	"github.com/julianstephens/dayscore/internal/ledger"
	"github.com/julianstephens/dayscore/internal/models"
	"github.com/julianstephens/dayscore/internal/utils"
)

// LoadState reads and decodes the tracker state from p.
func LoadState(p Provider) (ledger.State, error) {
	values, err := p.Values()
	if err != nil {
		return ledger.State{}, err
	}
	return DecodeState(values)
}

// SaveState encodes s and writes every key in one atomic save.
func SaveState(p Provider, s ledger.State) error {
	values, err := EncodeState(s)
	if err != nil {
		return err
	}
	return p.SaveValues(values)
}

// EncodeState renders every local key as a JSON document.
func EncodeState(s ledger.State) (map[string]string, error) {
	history := s.History
	if history == nil {
		history = ledger.Ledger{}
	}
	meals := s.Meals
	if meals == nil {
		meals = []models.Meal{}
	}
	workouts := s.Workouts
	if workouts == nil {
		workouts = []models.WorkoutEntry{}
	}

	docs := map[string]any{
		constants.KeyDailyHistory:    history,
		constants.KeyDailyIntake:     s.Intake,
		constants.KeyRecentMeals:     meals,
		constants.KeyDailyIntakeDate: s.IntakeDate,
		constants.KeyLastSavedDate:   s.LastSavedDate,
		constants.KeyGoals:           s.Goals,
		constants.KeyWorkoutHistory:  workouts,
	}

	values := make(map[string]string, len(docs))
	for key, doc := range docs {
		data, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", key, err)
		}
		values[key] = string(data)
	}
	return values, nil
}

// DecodeState parses the local keys. Absent or null keys take their zero
// value, except goals which fall back to the defaults.
func DecodeState(values map[string]string) (ledger.State, error) {
	var s ledger.State

	history, err := ledger.Import([]byte(values[constants.KeyDailyHistory]))
	if err != nil {
		return ledger.State{}, fmt.Errorf("decoding %s: %w", constants.KeyDailyHistory, err)
	}
	s.History = history

	if err := decodeKey(values, constants.KeyDailyIntake, &s.Intake); err != nil {
		return ledger.State{}, err
	}
	if err := decodeKey(values, constants.KeyRecentMeals, &s.Meals); err != nil {
		return ledger.State{}, err
	}
	if err := decodeKey(values, constants.KeyWorkoutHistory, &s.Workouts); err != nil {
		return ledger.State{}, err
	}

	s.Goals = models.DefaultGoals()
	if err := decodeKey(values, constants.KeyGoals, &s.Goals); err != nil {
		return ledger.State{}, err
	}

	if s.IntakeDate, err = decodeDay(values, constants.KeyDailyIntakeDate); err != nil {
		return ledger.State{}, err
	}
	if s.LastSavedDate, err = decodeDay(values, constants.KeyLastSavedDate); err != nil {
		return ledger.State{}, err
	}

	if len(s.Meals) == 0 {
		s.Meals = nil
	}
	if len(s.Workouts) == 0 {
		s.Workouts = nil
	}
	return s, nil
}

func decodeKey(values map[string]string, key string, dst any) error {
	raw := bytes.TrimSpace([]byte(values[key]))
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

// decodeDay accepts a JSON string or a bare day key.
func decodeDay(values map[string]string, key string) (string, error) {
	raw := bytes.TrimSpace([]byte(values[key]))
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	day := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &day); err != nil {
			return "", fmt.Errorf("decoding %s: %w", key, err)
		}
	}
	if day != "" && !utils.ValidDayKey(day) {
		return "", fmt.Errorf("decoding %s: %w: %q", key, ledger.ErrInvalidKey, day)
	}
	return day, nil
}
