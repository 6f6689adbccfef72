package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/dayscore/internal/constants"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.history.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case loadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.day = msg.day
			m.history.SetLedger(msg.history)
			m.attempts = msg.attempts
		}
		return m, nil

	case pushedMsg:
		m.pushing = false
		switch {
		case msg.err != nil:
			m.status = fmt.Sprintf("Push failed: %v", msg.err)
		case msg.outcome.Synced():
			m.status = "✓ Remote synced"
		case msg.outcome.Remote == constants.SyncStatusSkipped:
			m.status = "No remote configured"
		default:
			m.status = fmt.Sprintf("⚠ Remote sync %s: %v", msg.outcome.Remote, msg.outcome.RemoteErr)
		}
		return m, m.load

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab, m.keys.Right):
			m.state = (m.state + 1) % SessionState(len(tabTitles))
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab, m.keys.Left):
			m.state = (m.state - 1 + SessionState(len(tabTitles))) % SessionState(len(tabTitles))
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.status = ""
			return m, m.load
		case key.Matches(msg, m.keys.Push):
			if m.pushing {
				return m, nil
			}
			m.pushing = true
			m.status = "Pushing..."
			return m, m.push
		}

		if m.state == StateHistory {
			var cmd tea.Cmd
			m.history, cmd = m.history.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}
