package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/julianstephens/dayscore/internal/cli"
	"github.com/julianstephens/dayscore/internal/ledger"
)

// RestoreCmd merges operator-supplied day scores into the ledger.
type RestoreCmd struct {
	Entries []string `arg:"" optional:"" help:"Days to restore as DATE:SCORE (e.g. 2025-10-20:44)."`
	File    string   `short:"f" help:"JSON array of restore entries ('-' for stdin)."`
}

func (c *RestoreCmd) Run(ctx *cli.Context) error {
	var entries []ledger.RestoreEntry
	if c.File != "" {
		fromFile, err := readRestoreFile(c.File)
		if err != nil {
			return err
		}
		entries = append(entries, fromFile...)
	}
	for _, arg := range c.Entries {
		e, err := ParseRestoreArg(arg)
		if err != nil {
			return err
		}
		entries = append(entries, e)
	}

	patch, out, err := ctx.Tracker.RestoreDailyHistory(context.Background(), entries)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	for _, day := range patch.Keys() {
		fmt.Printf("Restored %s: score %s\n", day, cli.FormatComponents(patch[day].Components))
	}
	cli.ReportOutcome(os.Stdout, out)
	return nil
}

// ParseRestoreArg parses a DATE:SCORE argument.
func ParseRestoreArg(arg string) (ledger.RestoreEntry, error) {
	date, rawScore, ok := strings.Cut(strings.TrimSpace(arg), ":")
	if !ok {
		return ledger.RestoreEntry{}, fmt.Errorf("invalid restore entry %q (expected DATE:SCORE)", arg)
	}
	score, err := strconv.Atoi(strings.TrimSpace(rawScore))
	if err != nil {
		return ledger.RestoreEntry{}, fmt.Errorf("invalid score in %q: %w", arg, err)
	}
	return ledger.RestoreEntry{Date: strings.TrimSpace(date), Score: score}, nil
}

func readRestoreFile(path string) ([]ledger.RestoreEntry, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	var entries []ledger.RestoreEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse restore entries from %s: %w", path, err)
	}
	return entries, nil
}

// readInput reads path, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
