package day

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/dayscore/internal/cli"
	"github.com/julianstephens/dayscore/internal/tui/components/today"
)

type TodayCmd struct {
	JSON bool `help:"Print the working day as JSON."`
}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	report := io.Writer(os.Stdout)
	if c.JSON {
		report = os.Stderr
	}
	if err := ctx.EnsureRollover(report); err != nil {
		return err
	}

	view, err := ctx.Tracker.Current()
	if err != nil {
		return fmt.Errorf("failed to load working day: %w", err)
	}

	if c.JSON {
		out := struct {
			Date        string `json:"date"`
			LastSaved   string `json:"lastSavedDate,omitempty"`
			Intake      any    `json:"intake"`
			Goals       any    `json:"goals"`
			Meals       int    `json:"meals"`
			Workouts    int    `json:"workouts"`
			Projected   any    `json:"projected"`
			Score       int    `json:"score"`
			RolloverDue bool   `json:"rolloverDue"`
		}{
			Date:        view.Date,
			LastSaved:   view.LastSavedDate,
			Intake:      view.Intake,
			Goals:       view.Goals,
			Meals:       len(view.Meals),
			Workouts:    len(view.Workouts),
			Projected:   view.Projected,
			Score:       view.Projected.Total(),
			RolloverDue: view.RolloverDue,
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Print(today.Render(view))
	return nil
}
