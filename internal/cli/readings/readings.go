package readings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/tarot/internal/cli"
	"github.com/julianstephens/tarot/internal/models"
	tarotreadings "github.com/julianstephens/tarot/internal/readings"
)

// ErrAmbiguousID is returned when a prefix matches more than one reading.
var ErrAmbiguousID = errors.New("reading id prefix is ambiguous")

type ListCmd struct {
	Type      string `enum:"all,daily,reading" default:"all" help:"Only show readings of this type (all, daily, reading)."`
	Favorites bool   `help:"Only show favorites."`
	Limit     int    `short:"n" help:"Show at most this many readings (0 for all)."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	account, err := ctx.App.Users.Require(ctx.Context())
	if err != nil {
		return err
	}

	var list []models.Reading
	if c.Favorites {
		list, err = ctx.App.Readings.Favorites(ctx.Context(), account.ID)
	} else {
		list, err = ctx.App.Readings.List(ctx.Context(), account.ID)
	}
	if err != nil {
		return err
	}

	shown := 0
	for _, r := range list {
		if c.Type != "all" && string(r.Type) != c.Type {
			continue
		}
		if c.Limit > 0 && shown == c.Limit {
			break
		}
		ctx.Println(cli.ReadingRow(r, ctx.Settings.Location()))
		shown++
	}
	if shown == 0 {
		ctx.Println(cli.MutedStyle.Render("No readings found."))
	}
	return nil
}

type FavoritesCmd struct{}

func (c *FavoritesCmd) Run(ctx *cli.Context) error {
	return (&ListCmd{Type: "all", Favorites: true}).Run(ctx)
}

type ShowCmd struct {
	ID string `arg:"" help:"Reading id or a unique prefix of it."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	reading, err := resolve(ctx, c.ID)
	if err != nil {
		return err
	}
	ctx.Println(cli.ReadingDetail(reading, ctx.Settings.Location()))
	return nil
}

type FavoriteCmd struct {
	ID string `arg:"" help:"Reading id or a unique prefix of it."`
}

func (c *FavoriteCmd) Run(ctx *cli.Context) error {
	return setFavorite(ctx, c.ID, true)
}

type UnfavoriteCmd struct {
	ID string `arg:"" help:"Reading id or a unique prefix of it."`
}

func (c *UnfavoriteCmd) Run(ctx *cli.Context) error {
	return setFavorite(ctx, c.ID, false)
}

func setFavorite(ctx *cli.Context, id string, value bool) error {
	reading, err := resolve(ctx, id)
	if err != nil {
		return err
	}
	updated, err := ctx.App.Readings.ToggleFavorite(ctx.Context(), reading.ID, reading.UserID, value)
	if err != nil {
		return err
	}
	if updated.IsFavorite {
		ctx.Println(cli.Success("Added %s to favorites", updated.ID))
	} else {
		ctx.Println(cli.Success("Removed %s from favorites", updated.ID))
	}
	return nil
}

type NoteCmd struct {
	ID   string `arg:"" help:"Reading id or a unique prefix of it."`
	Text string `arg:"" optional:"" help:"Note text. Read from stdin when omitted."`
}

func (c *NoteCmd) Run(ctx *cli.Context) error {
	reading, err := resolve(ctx, c.ID)
	if err != nil {
		return err
	}
	text := c.Text
	if text == "" {
		if text, err = cli.ReadText(ctx.Stdin()); err != nil {
			return err
		}
	}
	if _, err := setNote(ctx, reading.ID, reading.UserID, text); err != nil {
		return err
	}
	ctx.Println(cli.Success("Saved note on %s", reading.ID))
	return nil
}

func setNote(ctx *cli.Context, readingID, userID, text string) (models.Reading, error) {
	return ctx.App.Readings.Update(ctx.Context(), readingID, userID, tarotreadings.Patch{Notes: &text})
}

type DeleteCmd struct {
	ID  string `arg:"" help:"Reading id or a unique prefix of it."`
	Yes bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	reading, err := resolve(ctx, c.ID)
	if err != nil {
		return err
	}
	if err := cli.Confirmed(c.Yes, "Delete this reading?", cli.ReadingRow(reading, ctx.Settings.Location())); err != nil {
		return err
	}
	if err := ctx.App.Readings.Delete(ctx.Context(), reading.ID, reading.UserID); err != nil {
		return err
	}
	ctx.Println(cli.Success("Deleted %s", reading.ID))
	return nil
}

type ClearCmd struct {
	Type string `arg:"" enum:"daily,reading" help:"Which readings to delete (daily, reading)."`
	Yes  bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *ClearCmd) Run(ctx *cli.Context) error {
	account, err := ctx.App.Users.Require(ctx.Context())
	if err != nil {
		return err
	}
	if err := cli.Confirmed(c.Yes, fmt.Sprintf("Delete all your %s readings?", c.Type), "This cannot be undone."); err != nil {
		return err
	}
	n, err := ctx.App.Readings.Clear(ctx.Context(), account.ID, models.ReadingType(c.Type))
	if err != nil {
		return err
	}
	ctx.Println(cli.Success("Deleted %d readings", n))
	return nil
}

// resolve finds the signed-in user's reading by id or unique id prefix.
func resolve(ctx *cli.Context, id string) (models.Reading, error) {
	account, err := ctx.App.Users.Require(ctx.Context())
	if err != nil {
		return models.Reading{}, err
	}
	reading, err := ctx.App.Readings.Get(ctx.Context(), id, account.ID)
	if err == nil || !errors.Is(err, tarotreadings.ErrNotFound) {
		return reading, err
	}

	list, err := ctx.App.Readings.List(ctx.Context(), account.ID)
	if err != nil {
		return models.Reading{}, err
	}
	var matches []models.Reading
	for _, r := range list {
		if id != "" && strings.HasPrefix(r.ID, id) {
			matches = append(matches, r)
		}
	}
	switch len(matches) {
	case 0:
		return models.Reading{}, tarotreadings.ErrNotFound
	case 1:
		return matches[0], nil
	}
	return models.Reading{}, fmt.Errorf("%w: %q matches %d readings", ErrAmbiguousID, id, len(matches))
}
