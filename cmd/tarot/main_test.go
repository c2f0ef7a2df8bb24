package main

import (
	"os"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/tarot/internal/constants"
)

func TestGlobalFlagsReadEnvironment(t *testing.T) {
	t.Setenv(constants.EnvProfile, "/tmp/tarot-env.json")
	t.Setenv(constants.EnvBackend, "json")
	t.Setenv(constants.EnvProfileName, "work")
	t.Setenv(constants.EnvJournalScope, "user")
	t.Setenv(constants.EnvTimezone, "Europe/Paris")
	t.Setenv(constants.EnvDebug, "true")
	t.Setenv(constants.EnvPassword, "secret")

	parsed := CLI
	parser, err := kong.New(&parsed, vars(), kong.Exit(func(int) { t.Fatal("parser exited") }))
	if err != nil {
		t.Fatalf("kong.New() failed: %v", err)
	}
	if _, err := parser.Parse([]string{"signin", "alice"}); err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	if parsed.Profile != "/tmp/tarot-env.json" {
		t.Errorf("Profile = %q", parsed.Profile)
	}
	if parsed.Backend != "json" {
		t.Errorf("Backend = %q", parsed.Backend)
	}
	if parsed.ProfileName != "work" {
		t.Errorf("ProfileName = %q", parsed.ProfileName)
	}
	if parsed.JournalScope != "user" {
		t.Errorf("JournalScope = %q", parsed.JournalScope)
	}
	if parsed.Timezone != "Europe/Paris" {
		t.Errorf("Timezone = %q", parsed.Timezone)
	}
	if !parsed.Verbose {
		t.Error("Verbose should be set from the environment")
	}
	if parsed.Signin.Password != "secret" {
		t.Errorf("Signin.Password = %q", parsed.Signin.Password)
	}
}

func TestProfileDefault(t *testing.T) {
	t.Setenv(constants.EnvProfile, "")
	os.Unsetenv(constants.EnvProfile)
	parsed := CLI
	parser, err := kong.New(&parsed, vars(), kong.Exit(func(int) { t.Fatal("parser exited") }))
	if err != nil {
		t.Fatalf("kong.New() failed: %v", err)
	}
	if _, err := parser.Parse([]string{"whoami"}); err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if parsed.Profile != constants.DefaultProfilePath {
		t.Errorf("Profile = %q, want %q", parsed.Profile, constants.DefaultProfilePath)
	}
}
