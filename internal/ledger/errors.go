package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidKey is returned when a day key is not a YYYY-MM-DD calendar date.
	ErrInvalidKey = errors.New("invalid day key")
	// ErrInvalidRecord is returned when a record's score does not equal the
	// sum of its components.
	ErrInvalidRecord = errors.New("invalid day record")
	// ErrEmptyRestore is returned when a restore is requested with no entries.
	ErrEmptyRestore = errors.New("no entries to restore")
	// ErrDecode matches every *DecodeError.
	ErrDecode = errors.New("malformed ledger payload")
)

// DecodeError reports why an imported ledger payload was rejected.
type DecodeError struct {
	Key string // offending day key, empty when the payload itself is malformed
	Err error
}

func (e *DecodeError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%v: entry %q: %v", ErrDecode, e.Key, e.Err)
	}
	return fmt.Sprintf("%v: %v", ErrDecode, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

func invalidKey(key string) error {
	return fmt.Errorf("%w: %q (want YYYY-MM-DD)", ErrInvalidKey, key)
}

func invalidRecord(key string, score, total int) error {
	return fmt.Errorf("%w: %s score %d does not match component total %d", ErrInvalidRecord, key, score, total)
}
