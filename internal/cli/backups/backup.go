package backups

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/tarot/internal/backup"
	"github.com/julianstephens/tarot/internal/cli"
	"github.com/julianstephens/tarot/internal/constants"
	"github.com/julianstephens/tarot/internal/notifier"
)

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := ctx.BackupManager()
	if err != nil {
		return err
	}
	backupPath, err := mgr.CreateBackup(ctx.Context())
	if err != nil {
		if errors.Is(err, backup.ErrNoProfile) {
			ctx.Println(cli.MutedStyle.Render("The profile is empty. Nothing to back up."))
			return nil
		}
		return fmt.Errorf("backup failed: %w", err)
	}

	ctx.Println(cli.Success("Backup created: %s", filepath.Base(backupPath)))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := ctx.BackupManager()
	if err != nil {
		return err
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		ctx.Println("No backups found.")
		ctx.Printf("Backups are stored in: %s\n", mgr.GetBackupDir())
		return nil
	}

	ctx.Printf("Available backups (%d total, keeping most recent %d):\n\n", len(backups), constants.MaxBackups)
	for _, b := range backups {
		sizeKB := float64(b.Size) / 1024.0
		timestamp := b.Timestamp.In(ctx.Settings.Location()).Format("2006-01-02 15:04:05")
		ctx.Printf("  %s  %s  (%.1f KB)\n", timestamp, filepath.Base(b.Path), sizeKB)
	}
	ctx.Printf("\nBackup directory: %s\n", mgr.GetBackupDir())
	return nil
}

type BackupRestoreCmd struct {
	BackupFile string `arg:"" help:"Path or filename of the backup to restore."`
	Yes        bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := ctx.BackupManager()
	if err != nil {
		return err
	}
	backupPath, err := locate(c.BackupFile, mgr.GetBackupDir())
	if err != nil {
		return err
	}

	description := "A backup of the current profile is made first."
	if dir, err := ctx.Settings.ProfileDir(); err == nil {
		if peers, err := notifier.Peers(dir); err == nil && len(peers) > 0 {
			description += fmt.Sprintf(" %d other tarot process(es) are using this profile and may overwrite the restored data.", len(peers))
		}
	}
	if err := cli.Confirmed(c.Yes, "Replace the profile with "+filepath.Base(backupPath)+"?", description); err != nil {
		return err
	}

	preRestore, err := mgr.RestoreBackup(ctx.Context(), backupPath)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	ctx.Println(cli.Success("Profile restored from %s", filepath.Base(backupPath)))
	if preRestore != "" {
		ctx.Printf("Previous contents saved to %s\n", preRestore)
	}
	return nil
}

// locate resolves name as an absolute path, a path relative to the working
// directory, or a file in the backup directory, in that order.
func locate(name, backupDir string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("backup file not found: %s", name)
		}
		return name, nil
	}
	if _, err := os.Stat(name); err == nil {
		abs, err := filepath.Abs(name)
		if err != nil {
			return "", fmt.Errorf("failed to resolve backup path: %w", err)
		}
		return abs, nil
	}
	candidate := filepath.Join(backupDir, name)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	return "", fmt.Errorf("backup file not found: tried current directory and %s", backupDir)
}
