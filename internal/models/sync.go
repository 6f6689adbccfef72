package models

import "time"

// SyncAttempt records one remote persistence attempt.
type SyncAttempt struct {
	ID          string    `json:"id"`
	AttemptedAt time.Time `json:"attempted_at"`
	Operation   string    `json:"operation"`
	Status      string    `json:"status"`
	Fields      []string  `json:"fields"`
	Error       string    `json:"error,omitempty"`
}
