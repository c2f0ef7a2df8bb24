package system

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/tarot/internal/cli"
	"github.com/julianstephens/tarot/internal/config"
	"github.com/julianstephens/tarot/internal/constants"
	"github.com/julianstephens/tarot/internal/storage"
)

func setupTestInitDB(t *testing.T) (*cli.Context, string, *bytes.Buffer) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "profile.db")

	settings, err := config.Settings{Profile: dbPath, Timezone: "UTC"}.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	store, err := settings.OpenStore()
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	out := &bytes.Buffer{}
	return &cli.Context{Settings: settings, Store: store, Out: out}, dbPath, out
}

func TestInitCmd_Success(t *testing.T) {
	ctx, dbPath, out := setupTestInitDB(t)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init command failed: %v", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("profile was not created at %s", dbPath)
	}
	if !strings.Contains(out.String(), dbPath) {
		t.Errorf("output should name the profile, got %q", out.String())
	}
}

func TestInitCmd_Idempotent(t *testing.T) {
	ctx, _, _ := setupTestInitDB(t)

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("second init failed (should be idempotent): %v", err)
	}
}

func TestInitCmd_ForceDeletesExisting(t *testing.T) {
	ctx, _, _ := setupTestInitDB(t)
	bg := context.Background()

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("initial init failed: %v", err)
	}
	if err := ctx.Store.SetRaw(bg, constants.KeyReadings, []byte(`[]`)); err != nil {
		t.Fatalf("SetRaw failed: %v", err)
	}

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("force init failed: %v", err)
	}

	keys, err := ctx.Store.Keys(bg)
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("expected an empty profile after --force, got keys %v", keys)
	}
}

func TestInitCmd_CopiesSource(t *testing.T) {
	bg := context.Background()

	source, _, _ := setupTestInitDB(t)
	if err := (&InitCmd{}).Run(source); err != nil {
		t.Fatalf("source init failed: %v", err)
	}
	if err := source.Store.SetRaw(bg, constants.KeyJournal, []byte(`[]`)); err != nil {
		t.Fatalf("SetRaw failed: %v", err)
	}
	if err := source.Store.SetRaw(bg, constants.KeyUsers, []byte(`[]`)); err != nil {
		t.Fatalf("SetRaw failed: %v", err)
	}

	ctx, _, out := setupTestInitDB(t)
	if err := (&InitCmd{Source: source.Settings.ProfilePath}).Run(ctx); err != nil {
		t.Fatalf("init with source failed: %v", err)
	}
	if !strings.Contains(out.String(), "Copied 2 keys") {
		t.Errorf("output = %q", out.String())
	}

	value, ok, err := ctx.Store.GetRaw(bg, constants.KeyJournal)
	if err != nil || !ok {
		t.Fatalf("GetRaw = %q, %v, %v", value, ok, err)
	}
	if string(value) != `[]` {
		t.Errorf("copied value = %q", value)
	}
}

func TestInitCmd_ForceRejectsSameSource(t *testing.T) {
	ctx, dbPath, _ := setupTestInitDB(t)
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	err := (&InitCmd{Force: true, Source: dbPath}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "same") {
		t.Errorf("expected same-source error, got %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("profile should survive the rejected init: %v", err)
	}
}

func TestCopyProfile_MissingSource(t *testing.T) {
	ctx, _, _ := setupTestInitDB(t)
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	_, err := copyProfile(context.Background(), filepath.Join(t.TempDir(), "missing.db"), ctx.Store)
	if err == nil {
		t.Fatal("expected an error for a missing source profile")
	}
	if !strings.Contains(err.Error(), storage.ErrNotInitialized.Error()) {
		t.Errorf("error = %v", err)
	}
}
