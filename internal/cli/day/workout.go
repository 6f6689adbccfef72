package day

import (
	"fmt"
	"time"

	"github.com/julianstephens/dayscore/internal/cli"
	"github.com/julianstephens/dayscore/internal/models"
)

type WorkoutAddCmd struct {
	Completion float64 `help:"Completion rate between 0 and 1." default:"1"`
	At         string  `help:"Workout time (RFC3339). Defaults to now."`
}

func (c *WorkoutAddCmd) Run(ctx *cli.Context) error {
	w := models.WorkoutEntry{CompletionRate: c.Completion}
	if c.At != "" {
		ts, err := time.Parse(time.RFC3339, c.At)
		if err != nil {
			return fmt.Errorf("invalid --at %q (expected RFC3339): %w", c.At, err)
		}
		w.Timestamp = ts
	}

	if err := ctx.Tracker.AddWorkout(w); err != nil {
		return err
	}
	fmt.Printf("✓ Workout recorded (%.0f%% complete)\n", c.Completion*100)
	return nil
}
