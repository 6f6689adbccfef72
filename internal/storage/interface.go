package storage

import (
	"strings"

	"github.com/julianstephens/dayscore/internal/models"
	"github.com/julianstephens/dayscore/internal/storage/jsonfile"
	"github.com/julianstephens/dayscore/internal/storage/sqlite"
)

// Provider is a key/value document store for the tracker's local state.
// SaveValues must apply all of its keys or none of them.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Local state
	Values() (map[string]string, error)
	SaveValues(values map[string]string) error

	// Sync attempt log
	RecordSyncAttempt(models.SyncAttempt) error
	SyncAttempts(limit int) ([]models.SyncAttempt, error)

	// Utils
	GetConfigPath() string
}

// Migrator is implemented by backends with a versioned schema.
type Migrator interface {
	Migrate(logFn func(string)) (int, error)
	SchemaVersion() (current, latest int, err error)
}

// New returns the backend for path: a JSON file for *.json, SQLite otherwise.
func New(path string) Provider {
	if IsJSONPath(path) {
		return jsonfile.NewStore(path)
	}
	return sqlite.NewStore(path)
}

// IsJSONPath reports whether path selects the JSON file backend.
func IsJSONPath(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".json")
}

var (
	_ Provider = (*sqlite.Store)(nil)
	_ Provider = (*jsonfile.Store)(nil)
	_ Migrator = (*sqlite.Store)(nil)
)
