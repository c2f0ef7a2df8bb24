// Package dashboard holds the commands that show the live statistics view.
package dashboard

import (
	"github.com/julianstephens/tarot/internal/cli"
	"github.com/julianstephens/tarot/internal/constants"
	"github.com/julianstephens/tarot/internal/tui"
)

// runTUI is swapped out in tests.
var runTUI = tui.Run

type StatsCmd struct {
	Watch bool `short:"w" help:"Keep the statistics on screen and refresh them as the profile changes."`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	if c.Watch {
		return start(ctx, tui.StateStats)
	}
	s, err := ctx.App.Statistics(ctx.Context())
	if err != nil {
		return err
	}
	ctx.Print(cli.StatisticsBlock(s))
	return nil
}

type TuiCmd struct {
	Tab string `default:"stats" enum:"stats,readings,journal" help:"Tab to open on (stats, readings, journal)."`
}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	state := tui.StateStats
	switch c.Tab {
	case "readings":
		state = tui.StateReadings
	case "journal":
		state = tui.StateJournal
	}
	ctx.PerformAutomaticBackup()
	return start(ctx, state)
}

func start(ctx *cli.Context, state tui.State) error {
	account, err := ctx.App.Users.Require(ctx.Context())
	if err != nil {
		return err
	}

	// Postgres has no file to watch; changes from other processes show up
	// on the next refresh.
	var path string
	if ctx.Settings.StorageBackend() != constants.BackendPostgres {
		path = ctx.Store.Path()
	}
	return runTUI(ctx.Context(), ctx.App, account, ctx.Settings.Location(), path, state)
}
