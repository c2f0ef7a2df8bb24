package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/tarot/internal/models"
	"github.com/julianstephens/tarot/internal/utils"
)

var (
	HeadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	FailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	favoriteMark = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Render("★")
)

// Success formats a confirmation line.
func Success(format string, args ...interface{}) string {
	return SuccessStyle.Render("✓ " + fmt.Sprintf(format, args...))
}

// CardLabel names a card with its orientation.
func CardLabel(c models.Card) string {
	if c.IsReversed {
		return c.Name + " (reversed)"
	}
	return c.Name
}

// ReadingRow renders one line of the reading history.
func ReadingRow(r models.Reading, loc *time.Location) string {
	names := make([]string, 0, len(r.Cards))
	for _, c := range r.Cards {
		names = append(names, CardLabel(c))
	}
	mark := " "
	if r.IsFavorite {
		mark = favoriteMark
	}
	return fmt.Sprintf("%s %s  %s  %-7s %s",
		mark,
		MutedStyle.Render(r.ID),
		utils.DisplayTimestamp(r.CreatedAt, loc),
		r.SpreadType,
		strings.Join(names, ", "),
	)
}

// ReadingDetail renders a full reading: cards, interpretation and notes.
func ReadingDetail(r models.Reading, loc *time.Location) string {
	var b strings.Builder

	title := "Reading"
	if r.Type == models.ReadingTypeDaily {
		title = "Daily fortune"
	}
	if r.IsFavorite {
		title += " " + favoriteMark
	}
	fmt.Fprintf(&b, "%s  %s\n", HeadingStyle.Render(title), MutedStyle.Render(utils.DisplayTimestamp(r.CreatedAt, loc)))
	fmt.Fprintf(&b, "%s\n\n", MutedStyle.Render(r.ID))

	cards := make([]string, 0, len(r.Cards))
	for _, c := range r.Cards {
		label := CardLabel(c)
		if c.Position != "" {
			label = MutedStyle.Render(c.Position) + "\n" + label
		}
		cards = append(cards, cardStyle.Render(label))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	b.WriteString("\n\n")

	interp := r.Interpretation
	b.WriteString(interp.General)
	b.WriteString("\n")
	for _, ci := range interp.Cards {
		fmt.Fprintf(&b, "  %s: %s\n", HeadingStyle.Render(ci.Position), ci.Meaning)
	}
	if interp.Love != "" {
		fmt.Fprintf(&b, "\n  Love:   %s\n  Career: %s\n  Health: %s\n", interp.Love, interp.Career, interp.Health)
	}
	if interp.LuckyColor != "" {
		fmt.Fprintf(&b, "  Lucky color: %s  Lucky number: %d\n", interp.LuckyColor, interp.LuckyNumber)
	}
	if notes := r.NotesText(); notes != "" {
		fmt.Fprintf(&b, "\n%s\n%s\n", HeadingStyle.Render("Notes"), notes)
	}
	return b.String()
}

// JournalRow renders one line of the journal listing.
func JournalRow(e models.JournalEntry, loc *time.Location) string {
	return fmt.Sprintf("%s  %s  %s  %s",
		MutedStyle.Render(e.ID),
		utils.DisplayTimestamp(e.Timestamp, loc),
		LevelLabel(e.Level),
		e.Title,
	)
}

// JournalDetail renders a full journal entry.
func JournalDetail(e models.JournalEntry, loc *time.Location) string {
	return fmt.Sprintf("%s  %s  %s\n%s\n\n%s\n",
		HeadingStyle.Render(e.Title),
		LevelLabel(e.Level),
		MutedStyle.Render(utils.DisplayTimestamp(e.Timestamp, loc)),
		MutedStyle.Render(e.ID),
		e.Content,
	)
}

// LevelLabel colors a journal level.
func LevelLabel(l models.JournalLevel) string {
	label := fmt.Sprintf("%-7s", l)
	switch l {
	case models.JournalLevelWarning:
		return WarningStyle.Render(label)
	case models.JournalLevelError:
		return FailStyle.Render(label)
	}
	return SuccessStyle.Render(label)
}

// StatisticsBlock renders the statistics panel.
func StatisticsBlock(s models.Statistics) string {
	return fmt.Sprintf("%s\n  Readings:  %d\n  Favorites: %d\n  Journal:   %d\n",
		HeadingStyle.Render("Statistics"), s.ReadingsCount, s.FavoritesCount, s.JournalCount)
}
