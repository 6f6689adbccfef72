package today

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/dayscore/internal/constants"
	"github.com/julianstephens/dayscore/internal/tracker"
)

const barWidth = 20

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle = lipgloss.NewStyle().Width(10)
	fullStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	emptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// Render draws the working day: intake against goals and the projected
// score breakdown.
func Render(v tracker.DayView) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Working day %s", v.Date)))
	b.WriteString("\n")
	if v.RolloverDue {
		b.WriteString(warnStyle.Render(fmt.Sprintf("⚠ not archived yet; run '%s rollover'", constants.AppName)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	intake := []struct {
		name        string
		value, goal float64
		unit        string
	}{
		{"Calories", v.Intake.Calories, v.Goals.Calories, "kcal"},
		{"Protein", v.Intake.Protein, v.Goals.Protein, "g"},
		{"Carbs", v.Intake.Carbs, v.Goals.Carbs, "g"},
		{"Fat", v.Intake.Fat, v.Goals.Fat, "g"},
		{"Activity", v.Intake.Activity, v.Goals.Activity, "min"},
		{"Water", v.Intake.Water, v.Goals.Water, "cups"},
	}
	for _, row := range intake {
		fmt.Fprintf(&b, "%s %s %.0f/%.0f %s\n",
			labelStyle.Render(row.name), Bar(row.value, row.goal, barWidth), row.value, row.goal, row.unit)
	}

	b.WriteString("\n")
	p := v.Projected
	components := []struct {
		name       string
		points, of int
	}{
		{"Nutrition", p.Nutrition, constants.NutritionPoints},
		{"Activity", p.Activity, constants.ActivityPoints},
		{"Workout", p.Workout, constants.WorkoutPoints},
		{"Hydration", p.Hydration, constants.HydrationPoints},
	}
	for _, c := range components {
		fmt.Fprintf(&b, "%s %s %d/%d\n",
			labelStyle.Render(c.name), Bar(float64(c.points), float64(c.of), barWidth), c.points, c.of)
	}
	fmt.Fprintf(&b, "\n%s %d/%d  (%d meals, %d workouts)\n",
		titleStyle.Render("Projected score"), p.Total(), constants.MaxScore, len(v.Meals), len(v.Workouts))

	return b.String()
}

// Bar renders value/goal as a fixed-width bar, full at or above goal.
func Bar(value, goal float64, width int) string {
	if goal <= 0 {
		goal = 1
	}
	filled := int(value / goal * float64(width))
	filled = min(max(filled, 0), width)
	return fullStyle.Render(strings.Repeat("█", filled)) + emptyStyle.Render(strings.Repeat("░", width-filled))
}
