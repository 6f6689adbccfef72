package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/dayscore/internal/constants"
	"github.com/julianstephens/dayscore/internal/tui/components/today"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch {
	case m.err != nil:
		content = dangerStyle.Render(fmt.Sprintf("Error: %v", m.err))
	case m.state == StateToday:
		content = today.Render(m.day)
	case m.state == StateHistory:
		content = m.history.View()
	case m.state == StateSync:
		content = m.viewSync()
	}

	parts := []string{m.viewTabs(), docStyle.Render(content)}
	if m.status != "" {
		parts = append(parts, statusStyle.Render(m.status))
	}
	parts = append(parts, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range tabTitles {
		if m.state == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewSync() string {
	if len(m.attempts) == 0 {
		return mutedStyle.Render("No sync attempts recorded.")
	}

	var b strings.Builder
	for _, a := range m.attempts {
		status := a.Status
		switch a.Status {
		case constants.SyncStatusSynced:
			status = statusStyle.Render("✓ " + a.Status)
		case constants.SyncStatusFailed, constants.SyncStatusNotAuthenticated:
			status = dangerStyle.Render("✗ " + a.Status)
		}
		fmt.Fprintf(&b, "%s  %-8s %s  %s\n",
			a.AttemptedAt.Local().Format("2006-01-02 15:04:05"), a.Operation, status, strings.Join(a.Fields, ","))
		if a.Error != "" {
			b.WriteString(mutedStyle.Render("    "+a.Error) + "\n")
		}
	}
	return b.String()
}
