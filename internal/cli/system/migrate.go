package system

import (
	"fmt"

	"github.com/julianstephens/tarot/internal/cli"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		ctx.Println("JSON profiles have no schema. Nothing to migrate.")
		return nil
	}

	runner, err := m.Migrations()
	if err != nil {
		return err
	}

	count, err := runner.ApplyMigrations(ctx.Context(), func(msg string) {
		ctx.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		ctx.Println("No migrations to apply. Profile is up to date.")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
