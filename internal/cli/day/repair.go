package day

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/dayscore/internal/cli"
	"github.com/julianstephens/dayscore/internal/utils"
)

// RepairCmd archives explicit intake for a past day, replacing whatever the
// ledger holds for it, and resets the working day.
type RepairCmd struct {
	Date        string          `arg:"" help:"Day to repair (YYYY-MM-DD or 'yesterday')."`
	Intake      cli.IntakeFlags `embed:""`
	Meal        []string        `help:"Meal document as JSON. Repeatable."`
	Interactive bool            `short:"i" help:"Enter the values in a form."`
}

func (c *RepairCmd) Run(ctx *cli.Context) error {
	if c.Interactive {
		form, values := newRepairForm(c)
		if err := form.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Println("Repair cancelled.")
				return nil
			}
			return err
		}
		if err := values.applyTo(c); err != nil {
			return err
		}
	}

	if err := c.Intake.Validate(); err != nil {
		return err
	}
	day, err := cli.ResolveDay(c.Date, ctx.Tracker.Today())
	if err != nil {
		return err
	}
	meals, err := cli.ParseMeals(c.Meal)
	if err != nil {
		return err
	}

	if err := ctx.EnsureRollover(os.Stdout); err != nil {
		return err
	}
	rec, out, err := ctx.Tracker.Repair(context.Background(), day, c.Intake.Record(), meals)
	if err != nil {
		return err
	}
	fmt.Printf("Repaired %s: score %s\n", day, cli.FormatComponents(rec.Components))
	cli.ReportOutcome(os.Stdout, out)
	return nil
}

// repairValues holds the form's text inputs.
type repairValues struct {
	date                                           string
	calories, protein, carbs, fat, activity, water string
}

func newRepairForm(c *RepairCmd) (*huh.Form, *repairValues) {
	v := &repairValues{
		date:     c.Date,
		calories: formatQuantity(c.Intake.Calories),
		protein:  formatQuantity(c.Intake.Protein),
		carbs:    formatQuantity(c.Intake.Carbs),
		fat:      formatQuantity(c.Intake.Fat),
		activity: formatQuantity(c.Intake.Activity),
		water:    formatQuantity(c.Intake.Water),
	}

	quantity := func(title string, dst *string) huh.Field {
		return huh.NewInput().Title(title).Value(dst).Validate(validateQuantity)
	}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Day (YYYY-MM-DD)").Value(&v.date).Validate(validateDate),
			quantity("Calories (kcal)", &v.calories),
			quantity("Protein (g)", &v.protein),
			quantity("Carbs (g)", &v.carbs),
			quantity("Fat (g)", &v.fat),
			quantity("Activity (min)", &v.activity),
			quantity("Water (cups)", &v.water),
		),
	)
	return form, v
}

func (v *repairValues) applyTo(c *RepairCmd) error {
	targets := []struct {
		raw string
		dst *float64
	}{
		{v.calories, &c.Intake.Calories},
		{v.protein, &c.Intake.Protein},
		{v.carbs, &c.Intake.Carbs},
		{v.fat, &c.Intake.Fat},
		{v.activity, &c.Intake.Activity},
		{v.water, &c.Intake.Water},
	}
	for _, t := range targets {
		n, err := parseQuantity(t.raw)
		if err != nil {
			return err
		}
		*t.dst = n
	}
	c.Date = strings.TrimSpace(v.date)
	return nil
}

func validateDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "yesterday" || s == "today" || utils.ValidDayKey(s) {
		return nil
	}
	return errors.New("use YYYY-MM-DD")
}

func validateQuantity(s string) error {
	_, err := parseQuantity(s)
	return err
}

func parseQuantity(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("%q must not be negative", s)
	}
	return n, nil
}

func formatQuantity(n float64) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
