package day

import (
	"context"
	"errors"
	"os"

	"github.com/julianstephens/dayscore/internal/cli"
)

type IntakeAddCmd struct {
	Intake cli.IntakeFlags `embed:""`
	Meal   []string        `help:"Meal document as JSON. Repeatable."`
}

func (c *IntakeAddCmd) Run(ctx *cli.Context) error {
	if err := c.Intake.Validate(); err != nil {
		return err
	}
	meals, err := cli.ParseMeals(c.Meal)
	if err != nil {
		return err
	}
	delta := c.Intake.Record()
	if delta.IsZero() && len(meals) == 0 {
		return errors.New("nothing to add: pass at least one quantity flag or --meal")
	}

	out, err := ctx.Tracker.AddIntake(context.Background(), delta, meals)
	if err != nil {
		return err
	}
	cli.ReportOutcome(os.Stdout, out)
	return nil
}
