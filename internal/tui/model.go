package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/dayscore/internal/ledger"
	"github.com/julianstephens/dayscore/internal/models"
	"github.com/julianstephens/dayscore/internal/tracker"
	"github.com/julianstephens/dayscore/internal/tui/components/history"
)

type SessionState int

const (
	StateToday SessionState = iota
	StateHistory
	StateSync
)

var tabTitles = []string{"Today", "History", "Sync"}

const syncAttemptLimit = 20

// Source is the read side of the tracker plus the manual push.
type Source interface {
	Current() (tracker.DayView, error)
	State() (ledger.State, error)
	SyncAttempts(limit int) ([]models.SyncAttempt, error)
	Push(ctx context.Context) (tracker.Outcome, error)
}

type Model struct {
	source   Source
	state    SessionState
	keys     KeyMap
	help     help.Model
	history  history.Model
	day      tracker.DayView
	attempts []models.SyncAttempt
	status   string
	err      error
	pushing  bool
	quitting bool
	width    int
	height   int
}

type loadedMsg struct {
	day      tracker.DayView
	history  ledger.Ledger
	attempts []models.SyncAttempt
	err      error
}

type pushedMsg struct {
	outcome tracker.Outcome
	err     error
}

func NewModel(source Source) Model {
	return Model{
		source:  source,
		state:   StateToday,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		history: history.New(nil, 0, 0),
	}
}

func (m Model) Init() tea.Cmd {
	return m.load
}

func (m Model) load() tea.Msg {
	day, err := m.source.Current()
	if err != nil {
		return loadedMsg{err: err}
	}
	s, err := m.source.State()
	if err != nil {
		return loadedMsg{err: err}
	}
	attempts, err := m.source.SyncAttempts(syncAttemptLimit)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{day: day, history: s.History, attempts: attempts}
}

func (m Model) push() tea.Msg {
	out, err := m.source.Push(context.Background())
	return pushedMsg{outcome: out, err: err}
}
