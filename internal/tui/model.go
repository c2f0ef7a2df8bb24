// Package tui is the live dashboard: statistics, reading history and the
// journal, refreshed whenever the profile changes.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/tarot/internal/app"
	"github.com/julianstephens/tarot/internal/logger"
	"github.com/julianstephens/tarot/internal/models"
	"github.com/julianstephens/tarot/internal/notifier"
)

type State int

const (
	StateStats State = iota
	StateReadings
	StateJournal
)

var tabs = []struct {
	state State
	title string
}{
	{StateStats, "Statistics"},
	{StateReadings, "Readings"},
	{StateJournal, "Journal"},
}

type Model struct {
	ctx     context.Context
	app     *app.App
	account models.Account
	loc     *time.Location
	updates <-chan models.Statistics

	state   State
	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	loading bool

	stats    models.Statistics
	readings []models.Reading
	entries  []models.JournalEntry
	cursor   int
	status   string
	err      error

	width    int
	height   int
	quitting bool
}

// New returns a dashboard for account. updates delivers fresh statistics
// whenever the profile changes; it may be nil.
func New(ctx context.Context, a *app.App, account models.Account, loc *time.Location, updates <-chan models.Statistics) Model {
	if loc == nil {
		loc = time.Local
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = titleStyle

	return Model{
		ctx:     ctx,
		app:     a,
		account: account,
		loc:     loc,
		updates: updates,
		state:   StateStats,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spinner: s,
		loading: true,
	}
}

// WithState returns the model opened on the given view.
func (m Model) WithState(state State) Model {
	m.state = state
	return m
}

type dataMsg struct {
	stats    models.Statistics
	readings []models.Reading
	entries  []models.JournalEntry
	err      error
}

type statsMsg models.Statistics

type favoriteMsg struct {
	reading models.Reading
	err     error
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load(), m.listen())
}

// load reads everything the views show.
func (m Model) load() tea.Cmd {
	ctx, a, userID := m.ctx, m.app, m.account.ID
	return func() tea.Msg {
		msg := dataMsg{stats: a.Stats.Compute(ctx, userID)}
		msg.readings, msg.err = a.Readings.List(ctx, userID)
		if msg.err != nil {
			return msg
		}
		msg.entries, msg.err = a.JournalEntriesFor(ctx, userID)
		return msg
	}
}

// listen waits for the next statistics update.
func (m Model) listen() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	updates := m.updates
	return func() tea.Msg {
		s, ok := <-updates
		if !ok {
			return nil
		}
		return statsMsg(s)
	}
}

func (m Model) toggleFavorite(r models.Reading) tea.Cmd {
	ctx, a, userID := m.ctx, m.app, m.account.ID
	return func() tea.Msg {
		updated, err := a.Readings.ToggleFavorite(ctx, r.ID, userID, !r.IsFavorite)
		return favoriteMsg{reading: updated, err: err}
	}
}

// Run shows the dashboard until the user quits. The statistics are
// recomputed on every repository event, and on writes by other processes
// when storePath names a profile file.
func Run(ctx context.Context, a *app.App, account models.Account, loc *time.Location, storePath string, state State, opts ...tea.ProgramOption) error {
	updates := make(chan models.Statistics, 1)
	stop := a.Stats.Watch(ctx, a.Notifier, account.ID, func(s models.Statistics) {
		// Keep only the newest value.
		select {
		case <-updates:
		default:
		}
		select {
		case updates <- s:
		default:
		}
	})
	defer stop()

	if storePath != "" {
		w, err := notifier.NewWatcher(storePath, a.Notifier)
		if err != nil {
			logger.Warn("Failed to watch profile", "error", err)
		} else if err := w.Start(ctx); err != nil {
			logger.Warn("Failed to watch profile", "error", err)
			w.Stop()
		} else {
			defer w.Stop()
		}
	}

	p := tea.NewProgram(New(ctx, a, account, loc, updates).WithState(state), opts...)
	_, err := p.Run()
	return err
}
