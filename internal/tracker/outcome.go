package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/dayscore/internal/constants"
	"github.com/julianstephens/dayscore/internal/logger"
	"github.com/julianstephens/dayscore/internal/models"
	"github.com/julianstephens/dayscore/internal/remote"
)

// Outcome reports what happened to the remote copy after a local change
// was committed. Remote is one of the constants.SyncStatus values.
type Outcome struct {
	Remote    string
	RemoteErr error
	AttemptID string
	Fields    []string
}

// Synced reports whether the remote copy now matches the local one.
func (o Outcome) Synced() bool {
	return o.Remote == constants.SyncStatusSynced
}

// Partial reports a committed local change whose remote push did not land.
func (o Outcome) Partial() bool {
	return o.Remote == constants.SyncStatusFailed || o.Remote == constants.SyncStatusNotAuthenticated
}

func (t *Tracker) persist(ctx context.Context, op string, update remote.Update) Outcome {
	out := Outcome{Fields: update.Fields()}

	if _, ok := t.persister.(remote.Nop); ok {
		out.Remote = constants.SyncStatusSkipped
		return out
	}

	if t.userID == "" {
		out.Remote = constants.SyncStatusNotAuthenticated
		out.RemoteErr = remote.ErrNotAuthenticated
	} else {
		ctx, cancel := context.WithTimeout(ctx, t.timeout)
		err := t.persister.Persist(ctx, t.userID, update)
		cancel()
		switch {
		case err == nil:
			out.Remote = constants.SyncStatusSynced
		case errors.Is(err, remote.ErrNotAuthenticated):
			out.Remote = constants.SyncStatusNotAuthenticated
			out.RemoteErr = err
		default:
			out.Remote = constants.SyncStatusFailed
			out.RemoteErr = fmt.Errorf("%w: %w", remote.ErrPersistFailure, err)
		}
	}

	out.AttemptID = newAttemptID()
	attempt := models.SyncAttempt{
		ID:          out.AttemptID,
		AttemptedAt: t.now().UTC(),
		Operation:   op,
		Status:      out.Remote,
		Fields:      out.Fields,
	}
	if out.RemoteErr != nil {
		attempt.Error = out.RemoteErr.Error()
		logger.Warn("Remote sync failed", "op", op, "status", out.Remote, "error", out.RemoteErr)
	} else {
		logger.Info("Remote synced", "op", op, "fields", out.Fields)
	}
	if err := t.store.RecordSyncAttempt(attempt); err != nil {
		logger.Warn("Failed to record sync attempt", "id", attempt.ID, "error", err)
	}
	return out
}
