package readings

import (
	"github.com/julianstephens/tarot/internal/cli"
)

type DrawCmd struct {
	Spread string `arg:"" default:"three" enum:"single,three,celtic" help:"Spread to draw (single, three, celtic)."`
	Note   string `help:"Attach a note to the reading."`
}

func (c *DrawCmd) Run(ctx *cli.Context) error {
	reading, err := ctx.App.DrawSpread(ctx.Context(), c.Spread)
	if err != nil {
		return err
	}
	if c.Note != "" {
		if reading, err = setNote(ctx, reading.ID, reading.UserID, c.Note); err != nil {
			return err
		}
	}
	ctx.Println(cli.ReadingDetail(reading, ctx.Settings.Location()))
	return nil
}

type DailyCmd struct{}

func (c *DailyCmd) Run(ctx *cli.Context) error {
	reading, fresh, err := ctx.App.DailyFortune(ctx.Context())
	if err != nil {
		return err
	}
	if !fresh {
		ctx.Println(cli.MutedStyle.Render("You already drew today's fortune."))
	}
	ctx.Println(cli.ReadingDetail(reading, ctx.Settings.Location()))
	return nil
}
