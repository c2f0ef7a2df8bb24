// Package backup snapshots a profile into standalone SQLite files and
// restores them. Snapshots go through the storage.Provider interface, so
// every backend is backed up the same way and a snapshot can be restored
// into a profile that uses a different backend.
package backup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/tarot/internal/constants"
	"github.com/julianstephens/tarot/internal/logger"
	"github.com/julianstephens/tarot/internal/migration"
	"github.com/julianstephens/tarot/internal/storage"
	"github.com/julianstephens/tarot/migrations"
)

const timestampLayout = "20060102-150405"

var (
	ErrNoProfile     = errors.New("profile has no data to back up")
	ErrInvalidBackup = errors.New("backup file is corrupted or invalid")
)

// BackupInfo contains information about a backup file
type BackupInfo struct {
	Path      string
	Timestamp time.Time
	Seq       int
	Size      int64
}

// Manager handles backup operations
type Manager struct {
	store     storage.Provider
	backupDir string
	now       func() time.Time
}

// NewManager creates a manager that keeps backups of store in backupDir.
func NewManager(store storage.Provider, backupDir string) *Manager {
	return &Manager{
		store:     store,
		backupDir: backupDir,
		now:       time.Now,
	}
}

// DefaultDir is the backup directory for a profile stored in profileDir.
func DefaultDir(profileDir string) string {
	return filepath.Join(profileDir, constants.BackupDirName)
}

// GetBackupDir returns the backup directory path
func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

// CreateBackup writes a snapshot of every key in the profile and rotates
// old backups.
func (m *Manager) CreateBackup(ctx context.Context) (string, error) {
	return m.createBackup(ctx, false)
}

// skipRotation keeps the pre-restore snapshot from pushing out the backup
// being restored.
func (m *Manager) createBackup(ctx context.Context, skipRotation bool) (string, error) {
	values, err := m.readProfile(ctx)
	if err != nil {
		return "", err
	}
	if len(values) == 0 {
		return "", ErrNoProfile
	}

	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	backupPath, err := m.nextPath()
	if err != nil {
		return "", err
	}
	if err := writeSnapshot(ctx, backupPath, values); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	if !skipRotation {
		if err := m.rotateBackups(); err != nil {
			logger.Warn("Failed to rotate old backups", "error", err)
		}
	}
	logger.Info("Backup created", "path", backupPath, "keys", len(values))
	return backupPath, nil
}

// nextPath picks an unused file name for the current second.
func (m *Manager) nextPath() (string, error) {
	stamp := m.now().Format(timestampLayout)
	for seq := 0; seq <= 100; seq++ {
		name := constants.BackupFilePrefix + stamp + constants.BackupFileSuffix
		if seq > 0 {
			name = fmt.Sprintf("%s%s-%d%s", constants.BackupFilePrefix, stamp, seq, constants.BackupFileSuffix)
		}
		path := filepath.Join(m.backupDir, name)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return path, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique backup filename")
}

func (m *Manager) readProfile(ctx context.Context) (map[string][]byte, error) {
	keys, err := m.store.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profile keys: %w", err)
	}
	values := make(map[string][]byte, len(keys))
	for _, key := range keys {
		value, ok, err := m.store.GetRaw(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		if ok {
			values[key] = value
		}
	}
	return values, nil
}

// writeSnapshot creates a SQLite file with the profile schema and the
// given values. The file only appears at path once it is complete.
func writeSnapshot(ctx context.Context, path string, values map[string][]byte) error {
	tmpPath := path + ".tmp"
	defer os.Remove(tmpPath)

	db, err := sql.Open("sqlite", tmpPath)
	if err != nil {
		return err
	}
	defer db.Close()

	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return err
	}
	if _, err := migration.NewRunner(db, sub, migration.DriverSQLite).ApplyMigrations(ctx, nil); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stamp := time.Now().UTC().Format(constants.TimestampFormat)
	for key, value := range values {
		if _, err := tx.ExecContext(ctx, "INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)", key, string(value), stamp); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	if err := db.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// ReadBackup returns the key-value pairs stored in a backup file.
func ReadBackup(ctx context.Context, path string) (map[string][]byte, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("backup file does not exist: %s", path)
	}

	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, "SELECT key, value FROM kv")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	defer rows.Close()

	values := make(map[string][]byte)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
		}
		values[key] = []byte(value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	return values, nil
}

// ListBackups returns a list of all available backups, sorted newest first
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []BackupInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		timestamp, seq, ok := parseBackupName(entry.Name())
		if !ok {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Path:      filepath.Join(m.backupDir, entry.Name()),
			Timestamp: timestamp,
			Seq:       seq,
			Size:      info.Size(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Timestamp.After(backups[j].Timestamp)
		}
		return backups[i].Seq > backups[j].Seq
	})
	return backups, nil
}

// parseBackupName accepts tarot-YYYYMMDD-HHMMSS.db and
// tarot-YYYYMMDD-HHMMSS-N.db.
func parseBackupName(name string) (time.Time, int, bool) {
	if !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, constants.BackupFileSuffix) {
		return time.Time{}, 0, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), constants.BackupFileSuffix)

	seq := 0
	parts := strings.Split(stamp, "-")
	switch len(parts) {
	case 2:
	case 3:
		n, err := strconv.Atoi(parts[2])
		if err != nil || n < 1 {
			return time.Time{}, 0, false
		}
		seq = n
		stamp = parts[0] + "-" + parts[1]
	default:
		return time.Time{}, 0, false
	}

	timestamp, err := time.ParseInLocation(timestampLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, 0, false
	}
	return timestamp, seq, true
}

// rotateBackups removes old backups beyond the retention limit
func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}
	for i := constants.MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// RestoreBackup replaces the profile's contents with the backup's. The
// current contents are backed up first, if there are any. Keys missing
// from the backup are removed. A backup holding a value over the quota is
// rejected before anything changes. It returns the path of the pre-restore
// backup, or "" when the profile was empty.
func (m *Manager) RestoreBackup(ctx context.Context, backupPath string) (string, error) {
	values, err := ReadBackup(ctx, backupPath)
	if err != nil {
		return "", err
	}
	for key, value := range values {
		if err := storage.CheckQuota(key, value); err != nil {
			return "", err
		}
	}

	preRestore, err := m.createBackup(ctx, true)
	if err != nil && !errors.Is(err, ErrNoProfile) {
		return "", fmt.Errorf("failed to backup current profile before restore: %w", err)
	}

	current, err := m.store.Keys(ctx)
	if err != nil {
		return preRestore, fmt.Errorf("failed to list profile keys: %w", err)
	}
	for _, key := range current {
		if _, ok := values[key]; ok {
			continue
		}
		if err := m.store.Remove(ctx, key); err != nil {
			return preRestore, fmt.Errorf("failed to remove %s: %w", key, err)
		}
	}
	for key, value := range values {
		if err := m.store.SetRaw(ctx, key, value); err != nil {
			return preRestore, fmt.Errorf("failed to restore %s: %w", key, err)
		}
	}

	logger.Info("Backup restored", "path", backupPath, "keys", len(values))
	return preRestore, nil
}
