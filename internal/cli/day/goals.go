package day

import (
	"fmt"

	"github.com/julianstephens/dayscore/internal/cli"
	"github.com/julianstephens/dayscore/internal/models"
)

type GoalsShowCmd struct{}

func (c *GoalsShowCmd) Run(ctx *cli.Context) error {
	s, err := ctx.Tracker.State()
	if err != nil {
		return err
	}
	printGoals(s.Goals)
	return nil
}

// GoalsSetCmd changes only the goals whose flags are given.
type GoalsSetCmd struct {
	Calories *float64 `help:"Daily calorie goal (kcal)."`
	Protein  *float64 `help:"Daily protein goal (g)."`
	Carbs    *float64 `help:"Daily carbohydrate goal (g)."`
	Fat      *float64 `help:"Daily fat goal (g)."`
	Activity *float64 `help:"Daily activity goal (minutes)."`
	Water    *float64 `help:"Daily water goal (cups)."`
	Reset    bool     `help:"Reset every goal to its default before applying flags."`
}

func (c *GoalsSetCmd) Run(ctx *cli.Context) error {
	s, err := ctx.Tracker.State()
	if err != nil {
		return err
	}

	goals := s.Goals
	if c.Reset {
		goals = models.DefaultGoals()
	}
	goals, err = c.apply(goals)
	if err != nil {
		return err
	}
	if err := ctx.Tracker.SetGoals(goals); err != nil {
		return err
	}

	fmt.Println("✓ Goals updated")
	printGoals(goals)
	return nil
}

func (c *GoalsSetCmd) apply(goals models.GoalRecord) (models.GoalRecord, error) {
	fields := []struct {
		name string
		flag *float64
		dst  *float64
	}{
		{"calories", c.Calories, &goals.Calories},
		{"protein", c.Protein, &goals.Protein},
		{"carbs", c.Carbs, &goals.Carbs},
		{"fat", c.Fat, &goals.Fat},
		{"activity", c.Activity, &goals.Activity},
		{"water", c.Water, &goals.Water},
	}
	for _, f := range fields {
		if f.flag == nil {
			continue
		}
		if *f.flag < 0 {
			return goals, fmt.Errorf("%s goal must not be negative, got %g", f.name, *f.flag)
		}
		*f.dst = *f.flag
	}
	return goals, nil
}

func printGoals(g models.GoalRecord) {
	fmt.Printf("Calories: %g kcal\n", g.Calories)
	fmt.Printf("Protein:  %g g\n", g.Protein)
	fmt.Printf("Carbs:    %g g\n", g.Carbs)
	fmt.Printf("Fat:      %g g\n", g.Fat)
	fmt.Printf("Activity: %g min\n", g.Activity)
	fmt.Printf("Water:    %g cups\n", g.Water)
}
