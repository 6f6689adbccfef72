package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/dayscore/internal/models"
	"github.com/julianstephens/dayscore/internal/utils"
)

// Export serialises the ledger as an indented JSON object keyed by day.
func Export(l Ledger) ([]byte, error) {
	if l == nil {
		l = Ledger{}
	}
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize ledger: %w", err)
	}
	return data, nil
}

// Import parses a ledger exported by Export (or by the app itself). It is
// all-or-nothing: any malformed entry rejects the whole payload with a
// *DecodeError. Blank input and a JSON null decode to an empty ledger.
func Import(text []byte) (Ledger, error) {
	trimmed := bytes.TrimSpace(text)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Ledger{}, nil
	}
	if trimmed[0] != '{' {
		return nil, &DecodeError{Err: errors.New("top level value must be an object keyed by day")}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, &DecodeError{Err: err}
	}

	out := make(Ledger, len(raw))
	for key, msg := range raw {
		if !utils.ValidDayKey(key) {
			return nil, &DecodeError{Key: key, Err: ErrInvalidKey}
		}
		rec, err := decodeRecord(msg)
		if err != nil {
			return nil, &DecodeError{Key: key, Err: err}
		}
		if !rec.Consistent() {
			return nil, &DecodeError{Key: key, Err: invalidRecord(key, rec.Score, rec.Components.Total())}
		}
		out[key] = rec
	}
	return out, nil
}

func decodeRecord(msg json.RawMessage) (models.DayRecord, error) {
	trimmed := bytes.TrimSpace(msg)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return models.DayRecord{}, errors.New("record must be an object")
	}

	var shape struct {
		Components json.RawMessage `json:"components"`
	}
	if err := json.Unmarshal(trimmed, &shape); err != nil {
		return models.DayRecord{}, err
	}

	var rec models.DayRecord
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return models.DayRecord{}, err
	}
	if rec.Score < 0 {
		return models.DayRecord{}, fmt.Errorf("negative score %d", rec.Score)
	}

	// Records restored by score alone carry no breakdown; the whole score
	// counts as nutrition.
	if isAbsent(shape.Components) {
		rec.Components = models.ScoreComponents{Nutrition: rec.Score}
	}
	return rec, nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
