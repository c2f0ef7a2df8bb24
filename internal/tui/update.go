package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/tarot/internal/models"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case dataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.stats = msg.stats
			m.readings = msg.readings
			m.entries = msg.entries
			m.clampCursor()
		}
		return m, nil

	case statsMsg:
		m.stats = models.Statistics(msg)
		// The lists changed too.
		return m, tea.Batch(m.load(), m.listen())

	case favoriteMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if msg.reading.IsFavorite {
			m.status = fmt.Sprintf("Added %s to favorites", msg.reading.ID)
		} else {
			m.status = fmt.Sprintf("Removed %s from favorites", msg.reading.ID)
		}
		return m, m.load()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextTab):
		m.state = State((int(m.state) + 1) % len(tabs))
		m.cursor = 0
	case key.Matches(msg, m.keys.PrevTab):
		m.state = State((int(m.state) + len(tabs) - 1) % len(tabs))
		m.cursor = 0
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		m.cursor++
		m.clampCursor()
	case key.Matches(msg, m.keys.Favorite):
		if m.state == StateReadings && m.cursor < len(m.readings) {
			return m, m.toggleFavorite(m.readings[m.cursor])
		}
	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.load())
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) clampCursor() {
	n := m.listLen()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) listLen() int {
	switch m.state {
	case StateReadings:
		return len(m.readings)
	case StateJournal:
		return len(m.entries)
	}
	return 0
}
