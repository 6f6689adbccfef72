package history

import (
	"context"
	"fmt"
	"os"

	"github.com/julianstephens/dayscore/internal/cli"
)

type ImportCmd struct {
	File      string `arg:"" help:"Exported history file ('-' for stdin)."`
	Overwrite bool   `help:"Replace every local day with its imported copy. By default a local day updated after the imported copy is kept."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	data, err := readInput(c.File)
	if err != nil {
		return err
	}

	res, out, err := ctx.Tracker.ImportDailyHistory(context.Background(), data, c.Overwrite)
	if err != nil {
		return fmt.Errorf("failed to import history: %w", err)
	}
	fmt.Printf("Imported %d days: %d added, %d replaced, %d unchanged\n",
		res.Added+res.Replaced+res.Unchanged, res.Added, res.Replaced, res.Unchanged)
	cli.ReportOutcome(os.Stdout, out)
	return nil
}
