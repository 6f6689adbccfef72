package remotesync

import (
	"context"
	"fmt"
	"os"

	"github.com/julianstephens/dayscore/internal/cli"
	"github.com/julianstephens/dayscore/internal/constants"
)

// PushCmd re-sends the full local snapshot. It is safe to repeat.
type PushCmd struct{}

func (c *PushCmd) Run(ctx *cli.Context) error {
	if err := ctx.EnsureRollover(os.Stdout); err != nil {
		return err
	}
	out, err := ctx.Tracker.Push(context.Background())
	if err != nil {
		return err
	}

	switch out.Remote {
	case constants.SyncStatusSynced:
		fmt.Printf("✓ Remote synced (%d fields)\n", len(out.Fields))
	case constants.SyncStatusSkipped:
		fmt.Println("ℹ No remote configured, nothing to push")
	default:
		// Nothing local changed, so a failed push fails the command.
		return fmt.Errorf("push failed (attempt %s): %w", out.AttemptID, out.RemoteErr)
	}
	return nil
}

type StatusCmd struct {
	Limit int `help:"Number of recent attempts to show." default:"10"`
}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	remote := ctx.Remote
	if remote == "" {
		remote = "none"
	}
	fmt.Printf("Remote: %s\n", remote)

	attempts, err := ctx.Tracker.SyncAttempts(c.Limit)
	if err != nil {
		return fmt.Errorf("failed to load sync attempts: %w", err)
	}
	if len(attempts) == 0 {
		fmt.Println("No sync attempts recorded.")
		return nil
	}

	if last := attempts[0]; last.Status != constants.SyncStatusSynced {
		fmt.Printf("⚠ Last attempt did not sync; run '%s sync push' to retry.\n", constants.AppName)
	}
	fmt.Printf("\nRecent attempts (newest first):\n")
	for _, a := range attempts {
		fmt.Printf("  %s  %-9s  %-17s  %v\n",
			a.AttemptedAt.In(ctx.Tracker.Location()).Format("2006-01-02 15:04:05"), a.Operation, a.Status, a.Fields)
		if a.Error != "" {
			fmt.Printf("      %s\n", a.Error)
		}
	}
	return nil
}
