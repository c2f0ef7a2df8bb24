package system

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/tarot/internal/constants"
)

func TestDebugPathCmd(t *testing.T) {
	ctx, dbPath, out := setupTestInitDB(t)

	if err := (&DebugPathCmd{}).Run(ctx); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	var got map[string]string
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	dir, _ := ctx.Settings.ProfileDir()
	want := map[string]string{"backend": "sqlite", "profile": dbPath, "dir": dir}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("path output mismatch (-want +got):\n%s", diff)
	}
}

func TestDebugKeysAndDump(t *testing.T) {
	ctx, out := setupTestDoctorDB(t)
	bg := context.Background()

	if err := ctx.Store.SetRaw(bg, constants.KeyCurrentUser, []byte(`{"id":"u1","username":"alice"}`)); err != nil {
		t.Fatalf("SetRaw failed: %v", err)
	}

	if err := (&DebugKeysCmd{}).Run(ctx); err != nil {
		t.Fatalf("keys failed: %v", err)
	}
	if strings.TrimSpace(out.String()) != constants.KeyCurrentUser {
		t.Errorf("keys output = %q", out.String())
	}

	out.Reset()
	if err := (&DebugDumpCmd{Key: constants.KeyCurrentUser}).Run(ctx); err != nil {
		t.Fatalf("dump failed: %v", err)
	}
	if !strings.Contains(out.String(), "\n  \"username\": \"alice\"") {
		t.Errorf("dump should be indented, got:\n%s", out.String())
	}

	if err := (&DebugDumpCmd{Key: "missing"}).Run(ctx); err == nil {
		t.Error("dumping an unset key should fail")
	}
}

func TestMigrateCmd_UpToDate(t *testing.T) {
	ctx, out := setupTestDoctorDB(t)

	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !strings.Contains(out.String(), "up to date") {
		t.Errorf("output = %q", out.String())
	}
}
