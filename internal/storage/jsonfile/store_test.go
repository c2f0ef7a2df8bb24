package jsonfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/julianstephens/tarot/internal/storage"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "profile.json"))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return store
}

func TestLoadUninitialized(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.json"))
	if err := store.Load(context.Background()); !errors.Is(err, storage.ErrNotInitialized) {
		t.Errorf("Load() error = %v, want ErrNotInitialized", err)
	}
}

func TestSetGetRemove(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	if err := store.SetRaw(ctx, "journal_entries", []byte(`[]`)); err != nil {
		t.Fatalf("SetRaw() error = %v", err)
	}
	got, ok, err := store.GetRaw(ctx, "journal_entries")
	if err != nil || !ok || string(got) != "[]" {
		t.Fatalf("GetRaw() = %q, %v, %v", got, ok, err)
	}

	if err := store.Remove(ctx, "journal_entries"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, ok, _ := store.GetRaw(ctx, "journal_entries"); ok {
		t.Error("key present after Remove")
	}
}

func TestSecondInstanceSeesWrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "profile.json")

	a := NewStore(path)
	if err := a.Init(ctx); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	b := NewStore(path)
	if err := b.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := a.SetRaw(ctx, "tarot_readings", []byte(`[{"id":"r1"}]`)); err != nil {
		t.Fatalf("SetRaw() error = %v", err)
	}
	got, ok, err := b.GetRaw(ctx, "tarot_readings")
	if err != nil || !ok || string(got) != `[{"id":"r1"}]` {
		t.Errorf("other instance GetRaw() = %q, %v, %v", got, ok, err)
	}
}

func TestCorruptFileIsEmpty(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	if err := os.WriteFile(store.Path(), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	items, err := storage.GetList[map[string]any](ctx, store, "tarot_readings")
	if err != nil {
		t.Fatalf("GetList() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("GetList() = %v, want empty", items)
	}
	if _, err := os.Stat(store.Path() + ".corrupt"); err != nil {
		t.Errorf("corrupt profile was not kept: %v", err)
	}

	// The next write replaces the corrupt file with a valid one.
	if err := storage.Put(ctx, store, "tarot_readings", []map[string]string{{"id": "r1"}}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	items, err = storage.GetList[map[string]any](ctx, store, "tarot_readings")
	if err != nil || len(items) != 1 {
		t.Errorf("GetList() after repair = %v, %v", items, err)
	}
}

func TestFilePermissions(t *testing.T) {
	store := setupTestStore(t)
	if err := store.SetRaw(context.Background(), "k", []byte(`1`)); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("profile permissions = %o, want 600", perm)
	}
}
