package day

import (
	"fmt"

	"github.com/julianstephens/dayscore/internal/cli"
	"github.com/julianstephens/dayscore/internal/models"
	"github.com/julianstephens/dayscore/internal/score"
)

// ScoreCmd computes a score without recording anything.
type ScoreCmd struct {
	Intake  cli.IntakeFlags `embed:""`
	Workout []float64       `help:"Completion rate of a workout to include. Repeatable."`
}

func (c *ScoreCmd) Run(ctx *cli.Context) error {
	if err := c.Intake.Validate(); err != nil {
		return err
	}
	s, err := ctx.Tracker.State()
	if err != nil {
		return err
	}

	var workouts []models.WorkoutEntry
	for _, rate := range c.Workout {
		if !(rate >= 0 && rate <= 1) {
			return fmt.Errorf("completion rate %v outside [0, 1]", rate)
		}
		workouts = append(workouts, models.WorkoutEntry{CompletionRate: rate})
	}

	components := score.Compute(c.Intake.Record(), s.Goals, workouts)
	fmt.Printf("Score: %s\n", cli.FormatComponents(components))
	return nil
}
