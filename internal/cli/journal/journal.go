package journal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/tarot/internal/cli"
	tarotjournal "github.com/julianstephens/tarot/internal/journal"
	"github.com/julianstephens/tarot/internal/models"
	"github.com/julianstephens/tarot/internal/validation"
)

var ErrAmbiguousID = errors.New("journal entry id prefix is ambiguous")

type AddCmd struct {
	Title   string `arg:"" help:"Entry title."`
	Content string `arg:"" optional:"" help:"Entry text. Read from stdin when omitted."`
	Level   string `short:"l" default:"INFO" enum:"INFO,WARNING,ERROR" help:"Entry level (INFO, WARNING, ERROR)."`
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	content := c.Content
	if content == "" {
		var err error
		if content, err = cli.ReadText(ctx.Stdin()); err != nil {
			return err
		}
	}

	entry, err := ctx.App.AddJournalEntry(ctx.Context(), validation.JournalDraft{
		Title:   c.Title,
		Content: content,
		Level:   models.JournalLevel(c.Level),
	})
	if err != nil {
		return err
	}
	ctx.Println(cli.Success("Added journal entry %s", entry.ID))
	return nil
}

type ListCmd struct {
	Level string `short:"l" help:"Only show entries with this level (INFO, WARNING, ERROR)."`
	Limit int    `short:"n" help:"Show at most this many entries (0 for all)."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	if c.Level != "" && !models.JournalLevel(c.Level).Valid() {
		return fmt.Errorf("%w: %q", tarotjournal.ErrInvalidLevel, c.Level)
	}
	entries, err := ctx.App.JournalEntries(ctx.Context())
	if err != nil {
		return err
	}

	shown := 0
	for _, e := range entries {
		if c.Level != "" && string(e.Level) != c.Level {
			continue
		}
		if c.Limit > 0 && shown == c.Limit {
			break
		}
		ctx.Println(cli.JournalRow(e, ctx.Settings.Location()))
		shown++
	}
	if shown == 0 {
		ctx.Println(cli.MutedStyle.Render("The journal is empty."))
	}
	return nil
}

type ShowCmd struct {
	ID string `arg:"" help:"Entry id or a unique prefix of it."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	entry, err := resolve(ctx, c.ID)
	if err != nil {
		return err
	}
	ctx.Println(cli.JournalDetail(entry, ctx.Settings.Location()))
	return nil
}

type DeleteCmd struct {
	ID  string `arg:"" help:"Entry id or a unique prefix of it."`
	Yes bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	entry, err := resolve(ctx, c.ID)
	if err != nil {
		return err
	}
	if err := cli.Confirmed(c.Yes, "Delete this journal entry?", cli.JournalRow(entry, ctx.Settings.Location())); err != nil {
		return err
	}
	if err := ctx.App.Journal.Delete(ctx.Context(), entry.ID); err != nil {
		return err
	}
	ctx.Println(cli.Success("Deleted %s", entry.ID))
	return nil
}

// resolve finds an entry visible under the journal scope by id or unique
// id prefix.
func resolve(ctx *cli.Context, id string) (models.JournalEntry, error) {
	entries, err := ctx.App.JournalEntries(ctx.Context())
	if err != nil {
		return models.JournalEntry{}, err
	}

	var matches []models.JournalEntry
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
		if id != "" && strings.HasPrefix(e.ID, id) {
			matches = append(matches, e)
		}
	}
	switch len(matches) {
	case 0:
		return models.JournalEntry{}, tarotjournal.ErrNotFound
	case 1:
		return matches[0], nil
	}
	return models.JournalEntry{}, fmt.Errorf("%w: %q matches %d entries", ErrAmbiguousID, id, len(matches))
}
