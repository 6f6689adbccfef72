// Package ledger holds the archived day history and the operations that
// change it. Every operation returns a new value and leaves its inputs
// untouched.
package ledger

import (
	"sort"

	"github.com/julianstephens/dayscore/internal/models"
	"github.com/julianstephens/dayscore/internal/utils"
)

// Ledger maps a local calendar day (YYYY-MM-DD) to its archived record.
type Ledger map[string]models.DayRecord

// Keys returns the ledger's day keys in ascending order.
func (l Ledger) Keys() []string {
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy. Records are values and never mutated in
// place, so sharing their meal slices is safe.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// Equal reports whether both ledgers hold equal records under the same keys.
// A nil ledger equals an empty one.
func (l Ledger) Equal(o Ledger) bool {
	if len(l) != len(o) {
		return false
	}
	for k, v := range l {
		w, ok := o[k]
		if !ok || !v.Equal(w) {
			return false
		}
	}
	return true
}

// Validate checks every key and record invariant.
func (l Ledger) Validate() error {
	for _, k := range l.Keys() {
		if !utils.ValidDayKey(k) {
			return invalidKey(k)
		}
		if r := l[k]; !r.Consistent() {
			return invalidRecord(k, r.Score, r.Components.Total())
		}
	}
	return nil
}

// ArchiveDay returns a copy of l with dayKey mapped to record. An existing
// record under dayKey is replaced whole.
func ArchiveDay(l Ledger, dayKey string, record models.DayRecord) (Ledger, error) {
	if !utils.ValidDayKey(dayKey) {
		return nil, invalidKey(dayKey)
	}
	if !record.Consistent() {
		return nil, invalidRecord(dayKey, record.Score, record.Components.Total())
	}
	out := l.Clone()
	out[dayKey] = record
	return out, nil
}

// Merge is a right-biased union: every key in incoming overwrites the same
// key in base, keys only in base are kept.
func Merge(base, incoming Ledger) Ledger {
	out := base.Clone()
	for k, v := range incoming {
		out[k] = v
	}
	return out
}

// MergeByFreshness is Merge, except that a base record stamped strictly
// later than its incoming counterpart survives. Unstamped records count as
// oldest, so two unstamped records resolve to incoming like Merge does.
func MergeByFreshness(base, incoming Ledger) Ledger {
	out := base.Clone()
	for k, in := range incoming {
		if cur, ok := out[k]; ok && newer(cur, in) {
			continue
		}
		out[k] = in
	}
	return out
}

func newer(a, b models.DayRecord) bool {
	if a.UpdatedAt == nil {
		return false
	}
	if b.UpdatedAt == nil {
		return true
	}
	return a.UpdatedAt.After(*b.UpdatedAt)
}
