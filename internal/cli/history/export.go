package history

import (
	"fmt"
	"os"

	"github.com/julianstephens/dayscore/internal/cli"
)

type ExportCmd struct {
	Out string `short:"o" help:"Write the export to this file instead of stdout."`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	data, err := ctx.Tracker.ExportDailyHistory()
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if c.Out == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(c.Out, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.Out, err)
	}
	fmt.Printf("✓ History exported to %s\n", c.Out)
	return nil
}
