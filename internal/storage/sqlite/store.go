package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/dayscore/internal/constants"
	"github.com/julianstephens/dayscore/internal/migration"
	"github.com/julianstephens/dayscore/internal/models"
	"github.com/julianstephens/dayscore/migrations"
)

type Store struct {
	path string
	db   *sql.DB
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if s.db == nil {
		db, err := sql.Open("sqlite", s.path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		s.db = db
	}

	if _, err := s.Migrate(nil); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	return s.runner().ValidateVersion()
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) runner() *migration.Runner {
	// The embedded tree always contains the sqlite directory.
	sub, _ := fs.Sub(migrations.FS, "sqlite")
	return migration.NewRunner(s.db, sub)
}

// Migrate applies pending schema migrations and returns how many ran.
func (s *Store) Migrate(logFn func(string)) (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("storage not loaded")
	}
	return s.runner().ApplyMigrations(logFn)
}

// SchemaVersion returns the applied schema version and the latest one
// this binary ships.
func (s *Store) SchemaVersion() (current, latest int, err error) {
	if s.db == nil {
		return 0, 0, fmt.Errorf("storage not loaded")
	}
	r := s.runner()
	if current, err = r.CurrentVersion(); err != nil {
		return 0, 0, err
	}
	if latest, err = r.LatestVersion(); err != nil {
		return 0, 0, err
	}
	return current, latest, nil
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying database connection, nil before Init or Load.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

// Values returns every stored key with its raw JSON document.
func (s *Store) Values() (map[string]string, error) {
	if s.db == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	rows, err := s.db.Query("SELECT key, value FROM local_state")
	if err != nil {
		return nil, fmt.Errorf("failed to read local state: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		values[key] = value
	}
	return values, rows.Err()
}

// SaveValues writes all of values in one transaction.
func (s *Store) SaveValues(values map[string]string) error {
	if s.db == nil {
		return fmt.Errorf("storage not loaded")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO local_state (key, value, updated_at) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for key, value := range values {
		if _, err := stmt.Exec(key, value, now); err != nil {
			return fmt.Errorf("failed to save %s: %w", key, err)
		}
	}

	return tx.Commit()
}

func (s *Store) RecordSyncAttempt(a models.SyncAttempt) error {
	if s.db == nil {
		return fmt.Errorf("storage not loaded")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO sync_attempts (id, attempted_at, operation, status, fields, error) VALUES (?, ?, ?, ?, ?, ?)",
		a.ID, a.AttemptedAt.UTC().Format(attemptTimeLayout), a.Operation, a.Status, strings.Join(a.Fields, ","), a.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record sync attempt: %w", err)
	}

	_, err = tx.Exec(
		"DELETE FROM sync_attempts WHERE id NOT IN (SELECT id FROM sync_attempts ORDER BY attempted_at DESC, rowid DESC LIMIT ?)",
		constants.MaxSyncAttempts,
	)
	if err != nil {
		return fmt.Errorf("failed to prune sync attempts: %w", err)
	}

	return tx.Commit()
}

// attemptTimeLayout is fixed width so attempted_at sorts as text.
const attemptTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SyncAttempts returns up to limit attempts, newest first.
func (s *Store) SyncAttempts(limit int) ([]models.SyncAttempt, error) {
	if s.db == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	if limit <= 0 {
		limit = constants.MaxSyncAttempts
	}

	rows, err := s.db.Query(
		"SELECT id, attempted_at, operation, status, fields, error FROM sync_attempts ORDER BY attempted_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read sync attempts: %w", err)
	}
	defer rows.Close()

	var attempts []models.SyncAttempt
	for rows.Next() {
		var a models.SyncAttempt
		var at, fields string
		if err := rows.Scan(&a.ID, &at, &a.Operation, &a.Status, &fields, &a.Error); err != nil {
			return nil, err
		}
		if a.AttemptedAt, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("parsing attempted_at for %s: %w", a.ID, err)
		}
		if fields != "" {
			a.Fields = strings.Split(fields, ",")
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return attempts, nil
}
