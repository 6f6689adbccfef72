package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/dayscore/internal/cli"
	"github.com/julianstephens/dayscore/internal/storage"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing database before initialization."`
	Source string `help:"Copy local state and the sync log from another store (.db or .json)."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		dbPath := ctx.Store.GetConfigPath()
		if c.Source != "" {
			absDbPath, err := filepath.Abs(dbPath)
			if err == nil {
				dbPath = absDbPath
			}
			absSource, err := filepath.Abs(c.Source)
			if err == nil && absSource == dbPath {
				return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
			}
		}
		if _, err := os.Stat(dbPath); err == nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			fmt.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized dayscore storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Copying data from: %s\n", c.Source)
		if err := copyStore(storage.New(c.Source), ctx.Store); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Migration completed successfully!")
	}
	return nil
}

// copyStore copies every local value and the sync log from src into dst.
func copyStore(src, dst storage.Provider) error {
	if err := src.Load(); err != nil {
		return fmt.Errorf("failed to load source store: %w", err)
	}
	defer src.Close()

	// Copy through the decoded state; an invalid source fails here.
	state, err := storage.LoadState(src)
	if err != nil {
		return fmt.Errorf("source state is invalid: %w", err)
	}
	if err := storage.SaveState(dst, state); err != nil {
		return fmt.Errorf("failed to save state to destination: %w", err)
	}
	fmt.Printf("  Copied %d archived days\n", len(state.History))

	attempts, err := src.SyncAttempts(0)
	if err != nil {
		return fmt.Errorf("failed to read sync attempts from source: %w", err)
	}
	for i := len(attempts) - 1; i >= 0; i-- {
		if err := dst.RecordSyncAttempt(attempts[i]); err != nil {
			return fmt.Errorf("failed to copy sync attempt %s: %w", attempts[i].ID, err)
		}
	}
	fmt.Printf("  Copied %d sync attempts\n", len(attempts))
	return nil
}
