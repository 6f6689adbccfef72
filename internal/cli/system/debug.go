package system

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/dayscore/internal/cli"
	"github.com/julianstephens/dayscore/internal/constants"
)

type DebugCmd struct {
	DBPath    *DebugDBPathCmd    `cmd:"" help:"Show database path."`
	DumpState *DebugDumpStateCmd `cmd:"" help:"Dump the raw local state values as JSON."`
	DumpDay   *DebugDumpDayCmd   `cmd:"" help:"Dump one archived day as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	output := map[string]string{
		"path": ctx.Store.GetConfigPath(),
	}

	jsonBytes, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	fmt.Println(string(jsonBytes))
	return nil
}

// DebugDumpStateCmd prints every stored key with its JSON value.
type DebugDumpStateCmd struct {
	Key string `arg:"" optional:"" help:"Only dump this key."`
}

func (cmd *DebugDumpStateCmd) Run(ctx *cli.Context) error {
	values, err := ctx.Store.Values()
	if err != nil {
		return fmt.Errorf("failed to read local state: %w", err)
	}

	if cmd.Key != "" {
		v, ok := values[cmd.Key]
		if !ok {
			return fmt.Errorf("no value stored for key %q (known keys: %v)", cmd.Key, constants.StateKeys)
		}
		values = map[string]string{cmd.Key: v}
	}

	output := make(map[string]json.RawMessage, len(values))
	for k, v := range values {
		raw := json.RawMessage(v)
		if !json.Valid(raw) {
			// Corrupt values are dumped as strings.
			raw, _ = json.Marshal(v)
		}
		output[k] = raw
	}

	jsonBytes, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}

type DebugDumpDayCmd struct {
	Date string `arg:"" help:"Archived day to dump (YYYY-MM-DD, 'today' or 'yesterday')."`
}

func (cmd *DebugDumpDayCmd) Run(ctx *cli.Context) error {
	date, err := cli.ResolveDay(cmd.Date, ctx.Tracker.Today())
	if err != nil {
		return err
	}
	s, err := ctx.Tracker.State()
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}
	rec, ok := s.History[date]
	if !ok {
		return fmt.Errorf("no archived record for date: %s", date)
	}

	jsonBytes, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}
