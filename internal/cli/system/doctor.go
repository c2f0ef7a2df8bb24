package system

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/tarot/internal/cli"
	"github.com/julianstephens/tarot/internal/migration"
	"github.com/julianstephens/tarot/internal/notifier"
)

type DoctorCmd struct{}

// migrator is implemented by the SQL-backed stores.
type migrator interface {
	Migrations() (*migration.Runner, error)
}

type check struct {
	name string
	run  func(*cli.Context) error
	// warn reports a failure as a warning that does not fail the command.
	warn bool
	// needsStore skips the check when the profile could not be loaded.
	needsStore bool
}

var checks = []check{
	{name: "Schema version", run: checkSchemaVersion, needsStore: true},
	{name: "Migrations complete", run: checkMigrationsComplete, needsStore: true},
	{name: "Backups present", run: checkBackupsPresent, warn: true, needsStore: true},
	{name: "Data validation", run: checkValidation, needsStore: true},
	{name: "Other tarot processes", run: checkPeers, warn: true},
	{name: "Clock/timezone", run: checkClockTimezone},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	reachable := true
	if err := checkStoreReachable(ctx); err != nil {
		report(ctx, "Profile reachable", err, false)
		hasError = true
		reachable = false
	} else {
		report(ctx, "Profile reachable", nil, false)
	}

	for _, c := range checks {
		if c.needsStore && !reachable {
			ctx.Printf("%s\n", cli.MutedStyle.Render(fmt.Sprintf("⊘ %s: SKIPPED (profile not reachable)", c.name)))
			continue
		}
		err := c.run(ctx)
		report(ctx, c.name, err, c.warn)
		if err != nil && !c.warn {
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

func report(ctx *cli.Context, name string, err error, warn bool) {
	switch {
	case err == nil:
		ctx.Printf("%s\n", cli.SuccessStyle.Render(fmt.Sprintf("✓ %s: OK", name)))
	case warn:
		ctx.Printf("%s\n", cli.WarningStyle.Render(fmt.Sprintf("⚠ %s: WARNING", name)))
		ctx.Printf("   %v\n", err)
	default:
		ctx.Printf("%s\n", cli.FailStyle.Render(fmt.Sprintf("❌ %s: FAIL", name)))
		ctx.Printf("   Error: %v\n", err)
	}
}

func checkStoreReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(ctx.Context()); err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if _, err := ctx.Store.Keys(ctx.Context()); err != nil {
		return fmt.Errorf("failed to query profile: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		// JSON profiles have no schema
		return nil
	}
	runner, err := m.Migrations()
	if err != nil {
		return err
	}
	return runner.ValidateVersion(ctx.Context())
}

func checkMigrationsComplete(ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return nil
	}
	runner, err := m.Migrations()
	if err != nil {
		return err
	}
	pending, err := runner.PendingCount(ctx.Context())
	if err != nil {
		return fmt.Errorf("failed to count pending migrations: %w", err)
	}
	if pending > 0 {
		return fmt.Errorf("migrations incomplete: %d pending, run 'tarot migrate'", pending)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr, err := ctx.BackupManager()
	if err != nil {
		return err
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'tarot backup create'")
	}
	return nil
}

func checkValidation(ctx *cli.Context) error {
	if ctx.App == nil {
		ctx.Open()
	}
	result, err := ctx.App.Audit(ctx.Context())
	if err != nil {
		return err
	}
	if result.HasConflicts() {
		return fmt.Errorf("%s", strings.TrimRight(result.FormatReport(), "\n"))
	}
	return nil
}

func checkPeers(ctx *cli.Context) error {
	dir, err := ctx.Settings.ProfileDir()
	if err != nil {
		return err
	}
	peers, err := notifier.Peers(dir)
	if err != nil {
		return fmt.Errorf("failed to list running processes: %w", err)
	}
	if len(peers) == 0 {
		return nil
	}
	pids := make([]string, 0, len(peers))
	for _, p := range peers {
		pids = append(pids, fmt.Sprintf("%d", p.PID))
	}
	return fmt.Errorf("%d other tarot process(es) use this profile (pid %s); concurrent writes are not merged, the last one wins",
		len(peers), strings.Join(pids, ", "))
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if _, err := time.LoadLocation(ctx.Settings.Location().String()); err != nil {
		return fmt.Errorf("timezone %q cannot be loaded: %w", ctx.Settings.Location(), err)
	}
	return nil
}
