package history

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/dayscore/internal/cli"
)

type ListCmd struct {
	Limit int `help:"Show only the most recent N days (0 for all)." default:"30"`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	s, err := ctx.Tracker.State()
	if err != nil {
		return err
	}

	keys := s.History.Keys()
	if len(keys) == 0 {
		fmt.Println("No archived days yet.")
		return nil
	}
	if c.Limit > 0 && len(keys) > c.Limit {
		keys = keys[len(keys)-c.Limit:]
	}

	fmt.Printf("Archived days (%d total):\n", len(s.History))
	for i := len(keys) - 1; i >= 0; i-- {
		rec := s.History[keys[i]]
		fmt.Printf("  %s  %3d  (nutrition %d, activity %d, workout %d, hydration %d)",
			keys[i], rec.Score, rec.Components.Nutrition, rec.Components.Activity,
			rec.Components.Workout, rec.Components.Hydration)
		if n := len(rec.Meals); n > 0 {
			fmt.Printf("  %d meals", n)
		}
		if rec.UpdatedAt != nil {
			fmt.Printf("  updated %s", rec.UpdatedAt.In(ctx.Tracker.Location()).Format("2006-01-02 15:04"))
		}
		fmt.Println()
	}
	return nil
}

type ShowCmd struct {
	Date string `arg:"" help:"Day to show (YYYY-MM-DD, 'today' or 'yesterday')."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	day, err := cli.ResolveDay(c.Date, ctx.Tracker.Today())
	if err != nil {
		return err
	}
	s, err := ctx.Tracker.State()
	if err != nil {
		return err
	}
	rec, ok := s.History[day]
	if !ok {
		return fmt.Errorf("no archived record for %s", day)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	fmt.Printf("%s  score %s\n", day, cli.FormatComponents(rec.Components))
	fmt.Printf("intake: %s\n", cli.FormatIntake(rec.Intake))
	fmt.Println(string(data))
	return nil
}
