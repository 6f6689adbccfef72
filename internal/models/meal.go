package models

import (
	"bytes"
	"encoding/json"
)

// Meal is an opaque meal document owned by the host application.
// It is kept in compact form so that equal documents compare equal
// byte for byte.
type Meal json.RawMessage

// NewMeal validates raw as JSON and returns its compact form.
func NewMeal(raw []byte) (Meal, error) {
	var m Meal
	if err := m.UnmarshalJSON(raw); err != nil {
		return nil, err
	}
	return m, nil
}

func (m Meal) MarshalJSON() ([]byte, error) {
	if len(m) == 0 {
		return []byte("null"), nil
	}
	return []byte(m), nil
}

func (m *Meal) UnmarshalJSON(data []byte) error {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return err
	}
	*m = Meal(buf.Bytes())
	return nil
}

// MealsEqual reports whether a and b hold the same documents in the same
// order. A nil slice equals an empty one.
func MealsEqual(a, b []Meal) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
