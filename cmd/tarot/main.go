package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/tarot/internal/cli"
	"github.com/julianstephens/tarot/internal/cli/account"
	"github.com/julianstephens/tarot/internal/cli/backups"
	"github.com/julianstephens/tarot/internal/cli/dashboard"
	"github.com/julianstephens/tarot/internal/cli/journal"
	"github.com/julianstephens/tarot/internal/cli/readings"
	"github.com/julianstephens/tarot/internal/cli/system"
	"github.com/julianstephens/tarot/internal/config"
	"github.com/julianstephens/tarot/internal/constants"
	"github.com/julianstephens/tarot/internal/errors"
	"github.com/julianstephens/tarot/internal/logger"
	"github.com/julianstephens/tarot/internal/notifier"
)

var CLI struct {
	Version      kong.VersionFlag
	Profile      string `help:"Profile file (.db for SQLite, .json for JSON) or PostgreSQL connection string without credentials." env:"${env_profile}" default:"${profile}"`
	Backend      string `help:"Storage backend (sqlite, json, postgres). Guessed from --profile when empty." env:"${env_backend}"`
	ProfileName  string `help:"Named profile, used to pick the keyring entry for PostgreSQL." env:"${env_profile_name}"`
	JournalScope string `help:"Whether journal entries are shared (global) or kept per user (user)." env:"${env_journal_scope}"`
	Timezone     string `help:"IANA timezone used to display timestamps." env:"${env_timezone}"`
	Verbose      bool   `name:"debug" help:"Log debug output to stderr." env:"${env_debug}"`

	Init    system.InitCmd     `cmd:"" help:"Initialize the profile store."`
	Migrate system.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Debug   system.DebugCmd    `cmd:"" help:"Inspect the raw key-value store."`
	Tui     dashboard.TuiCmd   `cmd:"" help:"Launch the interactive dashboard." default:"withargs"`
	Stats   dashboard.StatsCmd `cmd:"" help:"Show reading and journal statistics."`

	Signup  account.SignUpCmd  `cmd:"" help:"Register a new user and sign in."`
	Signin  account.SignInCmd  `cmd:"" help:"Sign in."`
	Signout account.SignOutCmd `cmd:"" help:"Sign out."`
	Whoami  account.WhoAmICmd  `cmd:"" help:"Show the signed-in user."`

	Draw      readings.DrawCmd      `cmd:"" help:"Draw a spread and save the reading."`
	Daily     readings.DailyCmd     `cmd:"" help:"Draw today's fortune card."`
	Favorites readings.FavoritesCmd `cmd:"" help:"List favorite readings."`
	Readings  struct {
		List       readings.ListCmd       `cmd:"" help:"List readings." default:"withargs"`
		Show       readings.ShowCmd       `cmd:"" help:"Show a reading."`
		Favorite   readings.FavoriteCmd   `cmd:"" help:"Mark a reading as favorite."`
		Unfavorite readings.UnfavoriteCmd `cmd:"" help:"Unmark a favorite reading."`
		Note       readings.NoteCmd       `cmd:"" help:"Set the note on a reading."`
		Delete     readings.DeleteCmd     `cmd:"" help:"Delete a reading."`
		Clear      readings.ClearCmd      `cmd:"" help:"Delete all readings of one type."`
	} `cmd:"" help:"Manage saved readings."`
	Journal struct {
		Add    journal.AddCmd    `cmd:"" help:"Write a journal entry."`
		List   journal.ListCmd   `cmd:"" help:"List journal entries." default:"withargs"`
		Show   journal.ShowCmd   `cmd:"" help:"Show a journal entry."`
		Delete journal.DeleteCmd `cmd:"" help:"Delete a journal entry."`
	} `cmd:"" help:"Manage the journal."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage profile backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the PostgreSQL connection string in the OS keyring."`
		Status system.KeyringStatusCmd `cmd:"" help:"Show the stored connection string."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
	} `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
}

func main() {
	os.Exit(run())
}

// vars carries the values interpolated into the CLI struct tags.
func vars() kong.Vars {
	return kong.Vars{
		"version":           constants.Version,
		"profile":           constants.DefaultProfilePath,
		"env_profile":       constants.EnvProfile,
		"env_backend":       constants.EnvBackend,
		"env_profile_name":  constants.EnvProfileName,
		"env_journal_scope": constants.EnvJournalScope,
		"env_timezone":      constants.EnvTimezone,
		"env_debug":         constants.EnvDebug,
		"env_password":      constants.EnvPassword,
	}
}

func run() int {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Tarot readings, daily fortunes and a journal, kept in a local profile."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		vars(),
	)

	settings, err := config.Settings{
		Profile:      CLI.Profile,
		Backend:      CLI.Backend,
		ProfileName:  CLI.ProfileName,
		JournalScope: CLI.JournalScope,
		Timezone:     CLI.Timezone,
		Debug:        CLI.Verbose,
	}.Resolve()
	if err != nil {
		return fail(err)
	}

	profileDir, err := settings.ProfileDir()
	if err != nil {
		return fail(err)
	}
	if err := logger.Init(logger.Config{Debug: settings.Debug, ProfileDir: profileDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}
	logger.Debug("Starting", "version", constants.Version, "profile", settings.Describe())

	release, err := notifier.Announce(profileDir)
	if err != nil {
		logger.Warn("Failed to announce process", "error", err)
	}
	defer release()

	store, err := settings.OpenStore()
	if err != nil {
		return fail(err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close profile", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx := &cli.Context{
		Ctx:      ctx,
		Settings: settings,
		Store:    store,
	}

	// Init loads the store itself.
	if !strings.HasPrefix(kctx.Command(), "init") {
		if err := store.Load(ctx); err != nil {
			return fail(err)
		}
		appCtx.Open()
	}

	if err := kctx.Run(appCtx); err != nil {
		if stderrors.Is(err, cli.ErrCancelled) {
			fmt.Fprintln(os.Stderr, "Cancelled.")
			return 0
		}
		return fail(err)
	}
	return 0
}

func fail(err error) int {
	logger.Error("Command execution failed", "error", err)
	fmt.Fprintln(os.Stderr, errors.Format(err))
	return 1
}
