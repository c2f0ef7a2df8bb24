package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/tarot/internal/models"
	"github.com/julianstephens/tarot/internal/utils"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateStats:
		content = m.viewStats()
	case StateReadings:
		content = m.viewReadings()
	case StateJournal:
		content = m.viewJournal()
	}

	var status string
	switch {
	case m.err != nil:
		status = dangerStyle.Render("Error: " + m.err.Error())
	case m.loading:
		status = m.spinner.View() + " Loading..."
	case m.status != "":
		status = warningStyle.Render(m.status)
	}

	return docStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		"",
		content,
		"",
		status,
		m.help.View(m.keys),
	))
}

func (m Model) viewTabs() string {
	rendered := make([]string, 0, len(tabs))
	for _, t := range tabs {
		if t.state == m.state {
			rendered = append(rendered, activeTabStyle.Render(t.title))
		} else {
			rendered = append(rendered, inactiveTabStyle.Render(t.title))
		}
	}
	header := titleStyle.Render(m.account.Username) + "  "
	return header + lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) viewStats() string {
	box := func(label string, n int) string {
		return statStyle.Render(fmt.Sprintf("%d\n%s", n, mutedStyle.Render(label)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		box("readings", m.stats.ReadingsCount),
		box("favorites", m.stats.FavoritesCount),
		box("journal", m.stats.JournalCount),
	)
}

func (m Model) viewReadings() string {
	if len(m.readings) == 0 {
		return mutedStyle.Render("No readings yet. Draw one with 'tarot draw'.")
	}
	lines := make([]string, 0, len(m.readings))
	for i, r := range m.readings {
		lines = append(lines, m.line(i, readingLine(r, m)))
	}
	return strings.Join(lines, "\n")
}

func readingLine(r models.Reading, m Model) string {
	names := make([]string, 0, len(r.Cards))
	for _, c := range r.Cards {
		name := c.Name
		if c.IsReversed {
			name += " (R)"
		}
		names = append(names, name)
	}
	fav := " "
	if r.IsFavorite {
		fav = "★"
	}
	return fmt.Sprintf("%s %s  %-7s %s", fav, utils.DisplayTimestamp(r.CreatedAt, m.loc), r.SpreadType, strings.Join(names, ", "))
}

func (m Model) viewJournal() string {
	if len(m.entries) == 0 {
		return mutedStyle.Render("The journal is empty. Write in it with 'tarot journal add'.")
	}
	lines := make([]string, 0, len(m.entries))
	for i, e := range m.entries {
		lines = append(lines, m.line(i, fmt.Sprintf("%s  %-7s %s", utils.DisplayTimestamp(e.Timestamp, m.loc), e.Level, e.Title)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) line(i int, text string) string {
	if i == m.cursor {
		return selectedStyle.Render("> " + text)
	}
	return "  " + text
}
