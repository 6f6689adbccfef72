package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// WorkoutEntry is one completed (or partially completed) workout.
type WorkoutEntry struct {
	Timestamp      time.Time `json:"timestamp"`
	CompletionRate float64   `json:"completionRate"` // 0..1
}

// UnmarshalJSON accepts the timestamp either as an RFC3339 string or as
// milliseconds since the Unix epoch, the two forms the app has written.
func (w *WorkoutEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Timestamp      json.RawMessage `json:"timestamp"`
		CompletionRate float64         `json:"completionRate"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	w.CompletionRate = raw.CompletionRate
	w.Timestamp = time.Time{}
	if len(raw.Timestamp) == 0 || string(raw.Timestamp) == "null" {
		return nil
	}

	var ms float64
	if err := json.Unmarshal(raw.Timestamp, &ms); err == nil {
		w.Timestamp = time.UnixMilli(int64(ms))
		return nil
	}

	var s string
	if err := json.Unmarshal(raw.Timestamp, &s); err != nil {
		return fmt.Errorf("workout timestamp: %w", err)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("workout timestamp %q: %w", s, err)
	}
	w.Timestamp = t
	return nil
}
