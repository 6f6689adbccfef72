package system

import (
	"fmt"

	"github.com/julianstephens/dayscore/internal/cli"
	"github.com/julianstephens/dayscore/internal/validation"
)

type ValidateCmd struct{}

func (cmd *ValidateCmd) Run(ctx *cli.Context) error {
	s, err := ctx.Tracker.State()
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	fmt.Println("Validating local state...")
	result := validation.New(ctx.Tracker.Location()).ValidateState(s, ctx.Tracker.Now())

	fmt.Println()
	fmt.Println(result.FormatReport())

	if result.HasConflicts() {
		return fmt.Errorf("validation found %d conflict(s)", len(result.Conflicts))
	}
	return nil
}
