// Package jsonfile keeps the local state in a single JSON document. It is
// selected when the configured path ends in ".json" and suits hosts that
// sync the file with other tools.
package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/julianstephens/dayscore/internal/constants"
	"github.com/julianstephens/dayscore/internal/models"
)

const fileVersion = 1

type document struct {
	Version      int                        `json:"version"`
	Values       map[string]json.RawMessage `json:"values"`
	SyncAttempts []models.SyncAttempt       `json:"sync_attempts"`
}

type Store struct {
	path string
	doc  *document
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

// Init creates an empty document. An existing file is loaded instead.
func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return s.Load()
	}

	s.doc = &document{
		Version: fileVersion,
		Values:  make(map[string]json.RawMessage),
	}
	return s.save()
}

func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	doc := &document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if doc.Version > fileVersion {
		return fmt.Errorf("storage file version (%d) is newer than supported version (%d) - please upgrade %s", doc.Version, fileVersion, constants.AppName)
	}
	if doc.Values == nil {
		doc.Values = make(map[string]json.RawMessage)
	}
	s.doc = doc
	return nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// save writes through a temporary file so a crash never leaves a torn document.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

func (s *Store) Values() (map[string]string, error) {
	if s.doc == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	values := make(map[string]string, len(s.doc.Values))
	for k, v := range s.doc.Values {
		values[k] = string(v)
	}
	return values, nil
}

// SaveValues replaces the given keys and rewrites the document once.
func (s *Store) SaveValues(values map[string]string) error {
	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}

	next := make(map[string]json.RawMessage, len(s.doc.Values)+len(values))
	for k, v := range s.doc.Values {
		next[k] = v
	}
	for k, v := range values {
		if !json.Valid([]byte(v)) {
			return fmt.Errorf("failed to save %s: value is not valid JSON", k)
		}
		next[k] = json.RawMessage(v)
	}

	prev := s.doc.Values
	s.doc.Values = next
	if err := s.save(); err != nil {
		s.doc.Values = prev
		return err
	}
	return nil
}

func (s *Store) RecordSyncAttempt(a models.SyncAttempt) error {
	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}

	prev := s.doc.SyncAttempts
	attempts := append([]models.SyncAttempt{a}, prev...)
	sortNewestFirst(attempts)
	if len(attempts) > constants.MaxSyncAttempts {
		attempts = attempts[:constants.MaxSyncAttempts]
	}

	s.doc.SyncAttempts = attempts
	if err := s.save(); err != nil {
		s.doc.SyncAttempts = prev
		return err
	}
	return nil
}

// SyncAttempts returns up to limit attempts, newest first.
func (s *Store) SyncAttempts(limit int) ([]models.SyncAttempt, error) {
	if s.doc == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	attempts := append([]models.SyncAttempt(nil), s.doc.SyncAttempts...)
	sortNewestFirst(attempts)
	if limit > 0 && len(attempts) > limit {
		attempts = attempts[:limit]
	}
	return attempts, nil
}

func sortNewestFirst(attempts []models.SyncAttempt) {
	sort.SliceStable(attempts, func(i, j int) bool {
		return attempts[i].AttemptedAt.After(attempts[j].AttemptedAt)
	})
}
