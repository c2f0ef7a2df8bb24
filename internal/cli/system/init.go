package system

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/tarot/internal/cli"
	"github.com/julianstephens/tarot/internal/config"
	"github.com/julianstephens/tarot/internal/constants"
	"github.com/julianstephens/tarot/internal/storage"
)

type InitCmd struct {
	Force  bool   `help:"Delete the existing profile file before initialization."`
	Source string `help:"Profile path or PostgreSQL connection string to copy data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(ctx.Context()); err != nil {
		return err
	}
	ctx.Println(cli.Success("Initialized tarot profile at: %s", ctx.Settings.Describe()))

	if c.Source != "" {
		ctx.Printf("Copying data from: %s\n", c.Source)
		n, err := copyProfile(ctx.Context(), c.Source, ctx.Store)
		if err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
		ctx.Println(cli.Success("Copied %d keys", n))
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	if ctx.Settings.StorageBackend() == constants.BackendPostgres {
		return fmt.Errorf("--force is not supported for PostgreSQL profiles")
	}

	path := ctx.Settings.ProfilePath
	if c.Source != "" {
		absPath, err := filepath.Abs(path)
		if err == nil {
			path = absPath
		}
		absSource, err := filepath.Abs(c.Source)
		if err == nil && absSource == path {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", path)
		}
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to access existing profile: %w", err)
	}

	// Close first so SQLite releases the file.
	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing profile: %w", err)
	}
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete existing profile: %w", err)
		}
	}
	ctx.Printf("Deleted existing profile at: %s\n", path)
	return nil
}

// copyProfile copies every key of the profile at source into dst.
func copyProfile(ctx context.Context, source string, dst storage.Provider) (int, error) {
	settings, err := config.Settings{Profile: source}.Resolve()
	if err != nil {
		return 0, err
	}
	src, err := settings.OpenStore()
	if err != nil {
		return 0, err
	}
	if err := src.Load(ctx); err != nil {
		return 0, fmt.Errorf("failed to load source profile: %w", err)
	}
	defer src.Close()

	keys, err := src.Keys(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list source keys: %w", err)
	}
	for _, key := range keys {
		value, ok, err := src.GetRaw(ctx, key)
		if err != nil {
			return 0, fmt.Errorf("failed to read %s: %w", key, err)
		}
		if !ok {
			continue
		}
		if err := dst.SetRaw(ctx, key, value); err != nil {
			return 0, &storage.PersistenceError{Key: key, Err: err}
		}
	}
	return len(keys), nil
}
