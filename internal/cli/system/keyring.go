package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/tarot/internal/cli"
	"github.com/julianstephens/tarot/internal/keyring"
	"github.com/julianstephens/tarot/internal/storage/postgres"
)

// KeyringSetCmd stores database connection credentials in the OS keyring
type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in keyring"`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if !postgres.IsConnString(cmd.ConnectionString) {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}

	if _, err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		// The keyring is encrypted, so a password is acceptable here.
		ctx.Println(cli.WarningStyle.Render("⚠ Connection string contains embedded credentials."))
		ctx.Println("  It will be stored as-is in the encrypted OS keyring.")
	}

	entry := keyring.ForProfile(ctx.Settings.ProfileName)
	if err := entry.SetConnectionString(cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}

	ctx.Println(cli.Success("Connection string stored in OS keyring"))
	ctx.Println("  Run tarot with --backend postgres to use it.")
	return nil
}

// KeyringStatusCmd shows the stored connection string with the password masked
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}

	connStr, err := keyring.ForProfile(ctx.Settings.ProfileName).ConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			ctx.Println("No connection string stored. Use 'tarot keyring set' to store one.")
			return nil
		}
		return fmt.Errorf("failed to retrieve connection string from keyring: %w", err)
	}

	ctx.Println("Connection string stored in keyring:")
	ctx.Println(postgres.MaskPassword(connStr))
	return nil
}

// KeyringDeleteCmd removes database connection credentials from the OS keyring
type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.ForProfile(ctx.Settings.ProfileName).Delete(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}
	ctx.Println(cli.Success("Connection string removed from OS keyring"))
	return nil
}
