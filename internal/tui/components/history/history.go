package history

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/dayscore/internal/ledger"
)

var columns = []table.Column{
	{Title: "Day", Width: 12},
	{Title: "Score", Width: 6},
	{Title: "Nutr", Width: 5},
	{Title: "Act", Width: 5},
	{Title: "Wkt", Width: 5},
	{Title: "Hyd", Width: 5},
	{Title: "kcal", Width: 7},
	{Title: "Protein", Width: 8},
	{Title: "Meals", Width: 6},
}

// Model is a scrollable table of archived days, newest first.
type Model struct {
	table table.Model
	count int
}

func New(l ledger.Ledger, width, height int) Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(height, 3)),
		table.WithWidth(width),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	m := Model{table: t}
	m.SetLedger(l)
	return m
}

// Rows renders the ledger newest first.
func Rows(l ledger.Ledger) []table.Row {
	keys := l.Keys()
	rows := make([]table.Row, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		day := keys[i]
		rec := l[day]
		rows = append(rows, table.Row{
			day,
			strconv.Itoa(rec.Score),
			strconv.Itoa(rec.Components.Nutrition),
			strconv.Itoa(rec.Components.Activity),
			strconv.Itoa(rec.Components.Workout),
			strconv.Itoa(rec.Components.Hydration),
			fmt.Sprintf("%.0f", rec.Intake.Calories),
			fmt.Sprintf("%.0f", rec.Intake.Protein),
			strconv.Itoa(len(rec.Meals)),
		})
	}
	return rows
}

func (m *Model) SetLedger(l ledger.Ledger) {
	rows := Rows(l)
	m.table.SetRows(rows)
	m.count = len(rows)
}

func (m *Model) SetSize(width, height int) {
	m.table.SetWidth(width)
	m.table.SetHeight(max(height, 3))
}

// SelectedDay returns the day under the cursor, empty for an empty ledger.
func (m Model) SelectedDay() string {
	row := m.table.SelectedRow()
	if len(row) == 0 {
		return ""
	}
	return row[0]
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.count == 0 {
		return "No archived days yet."
	}
	return m.table.View()
}
