package day

import (
	"context"
	"fmt"
	"os"

	"github.com/julianstephens/dayscore/internal/cli"
)

type RolloverCmd struct {
	Date string `help:"Archive the working day under this date instead of its own (YYYY-MM-DD or 'yesterday')."`
}

func (c *RolloverCmd) Run(ctx *cli.Context) error {
	var day string
	if c.Date != "" {
		var err error
		if day, err = cli.ResolveDay(c.Date, ctx.Tracker.Today()); err != nil {
			return err
		}
	} else {
		view, err := ctx.Tracker.Current()
		if err != nil {
			return err
		}
		day = view.Date
	}

	rec, out, err := ctx.Tracker.Rollover(context.Background(), day)
	if err != nil {
		return err
	}
	fmt.Printf("Archived %s: score %s\n", day, cli.FormatComponents(rec.Components))
	cli.ReportOutcome(os.Stdout, out)
	return nil
}
