// Package remote pushes the tracker's state to the user's row in a remote
// store. The tracker always sends whole field snapshots, so a persister may
// be retried with the same update any number of times.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/dayscore/internal/ledger"
	"github.com/julianstephens/dayscore/internal/models"
)

var (
	// ErrNotAuthenticated means no user id is configured, so there is no
	// row to update.
	ErrNotAuthenticated = errors.New("not authenticated: no remote user configured")
	// ErrPersistFailure wraps any error returned while persisting.
	ErrPersistFailure = errors.New("remote persist failed")
	// ErrEmptyUpdate is returned for an update that carries no fields.
	ErrEmptyUpdate = errors.New("update has no fields")
)

// Remote column names.
const (
	ColumnDailyIntake  = "daily_intake"
	ColumnDailyHistory = "daily_history"
	ColumnRecentMeals  = "recent_meals"
	ColumnUpdatedAt    = "updated_at"
)

// Update is a partial row update. Nil fields are left untouched remotely.
type Update struct {
	DailyIntake  *models.IntakeRecord `json:"daily_intake,omitempty"`
	DailyHistory ledger.Ledger        `json:"daily_history,omitempty"`
	RecentMeals  *[]models.Meal       `json:"recent_meals,omitempty"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// SnapshotUpdate returns an update carrying every synced field of s.
func SnapshotUpdate(s ledger.State, at time.Time) Update {
	intake := s.Intake
	meals := append([]models.Meal{}, s.Meals...)
	history := s.History
	if history == nil {
		history = ledger.Ledger{}
	}
	return Update{
		DailyIntake:  &intake,
		DailyHistory: history,
		RecentMeals:  &meals,
		UpdatedAt:    at.UTC(),
	}
}

// Fields lists the columns the update sets, excluding updated_at.
func (u Update) Fields() []string {
	var fields []string
	if u.DailyHistory != nil {
		fields = append(fields, ColumnDailyHistory)
	}
	if u.DailyIntake != nil {
		fields = append(fields, ColumnDailyIntake)
	}
	if u.RecentMeals != nil {
		fields = append(fields, ColumnRecentMeals)
	}
	return fields
}

// columnValues renders each present field as a JSON document keyed by column.
func (u Update) columnValues() (map[string][]byte, error) {
	values := make(map[string][]byte, 3)
	add := func(col string, v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", col, err)
		}
		values[col] = data
		return nil
	}

	if u.DailyHistory != nil {
		if err := add(ColumnDailyHistory, u.DailyHistory); err != nil {
			return nil, err
		}
	}
	if u.DailyIntake != nil {
		if err := add(ColumnDailyIntake, *u.DailyIntake); err != nil {
			return nil, err
		}
	}
	if u.RecentMeals != nil {
		meals := *u.RecentMeals
		if meals == nil {
			meals = []models.Meal{}
		}
		if err := add(ColumnRecentMeals, meals); err != nil {
			return nil, err
		}
	}
	if len(values) == 0 {
		return nil, ErrEmptyUpdate
	}
	return values, nil
}

// Persister writes an update to the row identified by userID.
type Persister interface {
	Persist(ctx context.Context, userID string, update Update) error
}

// PersisterFunc adapts a function to the Persister interface.
type PersisterFunc func(ctx context.Context, userID string, update Update) error

func (f PersisterFunc) Persist(ctx context.Context, userID string, update Update) error {
	return f(ctx, userID, update)
}

// Nop accepts every update without doing anything. It stands in when no
// remote is configured.
type Nop struct{}

func (Nop) Persist(context.Context, string, Update) error { return nil }

// Chain tries each persister in order and stops at the first success.
type Chain []Persister

func (c Chain) Persist(ctx context.Context, userID string, update Update) error {
	if len(c) == 0 {
		return errors.New("no persisters configured")
	}
	var errs []error
	for i, p := range c {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		err := p.Persist(ctx, userID, update)
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("persister %d: %w", i+1, err))
	}
	return errors.Join(errs...)
}
