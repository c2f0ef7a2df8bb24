package errors

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/julianstephens/tarot/internal/journal"
	"github.com/julianstephens/tarot/internal/readings"
	"github.com/julianstephens/tarot/internal/storage"
	"github.com/julianstephens/tarot/internal/users"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      errors.New("something went wrong"),
			expected: "Error: something went wrong",
		},
		{
			name:     "wrapped error",
			err:      errors.New("failed to connect: connection refused"),
			expected: "Error: failed to connect: connection refused",
		},
		{
			name:     "duplicate username gets a hint",
			err:      fmt.Errorf("sign up alice: %w", users.ErrDuplicateUsername),
			expected: "Error: sign up alice: username already exists (that username is taken, pick another one)",
		},
		{
			name:     "persistence error wrapping quota",
			err:      &storage.PersistenceError{Key: "tarot_readings", Err: storage.ErrQuotaExceeded},
			expected: "Error: failed to persist tarot_readings: storage quota exceeded (the profile store is full, delete some readings or journal entries)",
		},
		{
			name:     "no session",
			err:      fmt.Errorf("draw: %w", users.ErrNotSignedIn),
			expected: "Error: draw: not signed in (sign in first with 'tarot signin')",
		},
		{
			name:     "missing reading",
			err:      readings.ErrNotFound,
			expected: "Error: reading not found (no such reading in your history)",
		},
		{
			name:     "missing journal entry",
			err:      journal.ErrNotFound,
			expected: "Error: journal entry not found (no such journal entry)",
		},
		{
			name:     "offline passes through unwrapped",
			err:      storage.ErrOffline,
			expected: "Error: offline (you are offline, check the network connection and retry)",
		},
		{
			name:     "uninitialized profile",
			err:      fmt.Errorf("load profile: %w", storage.ErrNotInitialized),
			expected: "Error: load profile: storage not initialized (profile not initialized, run 'tarot init' first)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.err)
			if result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestHint(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"unknown", errors.New("disk on fire"), ""},
		{"bad credentials", users.ErrInvalidCredentials, "invalid username or password"},
		{"duplicate user", users.ErrDuplicateUsername, "that username is taken, pick another one"},
		{"not signed in", users.ErrNotSignedIn, "sign in first with 'tarot signin'"},
		{"reading", fmt.Errorf("favorite r-9: %w", readings.ErrNotFound), "no such reading in your history"},
		{"journal", fmt.Errorf("show: %w", journal.ErrNotFound), "no such journal entry"},
		{"offline", storage.ErrOffline, "you are offline, check the network connection and retry"},
		{"quota inside persistence error", &storage.PersistenceError{Key: "journal_entries", Err: storage.ErrQuotaExceeded}, "the profile store is full, delete some readings or journal entries"},
		{"not initialized", storage.ErrNotInitialized, "profile not initialized, run 'tarot init' first"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Hint(tt.err); got != tt.want {
				t.Errorf("Hint(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		args     []interface{}
		expected string
	}{
		{
			name:     "simple message",
			format:   "something went wrong",
			args:     nil,
			expected: "Error: something went wrong",
		},
		{
			name:     "formatted message with string",
			format:   "failed to load %s",
			args:     []interface{}{"profile"},
			expected: "Error: failed to load profile",
		},
		{
			name:     "formatted message with multiple args",
			format:   "connection to %s:%d failed",
			args:     []interface{}{"localhost", 5432},
			expected: "Error: connection to localhost:5432 failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Formatf(tt.format, tt.args...)
			if result != tt.expected {
				t.Errorf("Formatf(%q, %v) = %q, want %q", tt.format, tt.args, result, tt.expected)
			}
		})
	}
}

// TestFatal tests the Fatal function using exec helper process
func TestFatal(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL") == "1" {
		// This is the subprocess - call Fatal
		Fatal(errors.New("test error"))
		return
	}

	// Run the test in a subprocess
	cmd := exec.Command(os.Args[0], "-test.run=TestFatal")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if e, ok := err.(*exec.ExitError); ok && !e.Success() {
		// Check that exit code is 1
		if e.ExitCode() != 1 {
			t.Errorf("Fatal() exit code = %d, want 1", e.ExitCode())
		}
		// Check that stderr contains the error message
		stderrStr := stderr.String()
		if !strings.Contains(stderrStr, "Error: test error") {
			t.Errorf("Fatal() stderr = %q, want to contain %q", stderrStr, "Error: test error")
		}
	} else {
		t.Errorf("Fatal() did not exit with error: %v", err)
	}
}

// TestFatal_NilError tests that Fatal does nothing when passed a nil error
func TestFatal_NilError(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL_NIL") == "1" {
		// This is the subprocess - call Fatal with nil
		Fatal(nil)
		// If we get here, the function returned normally (which is correct)
		os.Exit(0)
	}

	// Run the test in a subprocess
	cmd := exec.Command(os.Args[0], "-test.run=TestFatal_NilError")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL_NIL=1")

	err := cmd.Run()
	if err != nil {
		t.Errorf("Fatal(nil) should not exit, but got error: %v", err)
	}
}

// TestFatalf tests the Fatalf function using exec helper process
func TestFatalf(t *testing.T) {
	if os.Getenv("GO_TEST_FATALF") == "1" {
		// This is the subprocess - call Fatalf
		Fatalf("connection to %s:%d failed", "localhost", 5432)
		return
	}

	// Run the test in a subprocess
	cmd := exec.Command(os.Args[0], "-test.run=TestFatalf")
	cmd.Env = append(os.Environ(), "GO_TEST_FATALF=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if e, ok := err.(*exec.ExitError); ok && !e.Success() {
		// Check that exit code is 1
		if e.ExitCode() != 1 {
			t.Errorf("Fatalf() exit code = %d, want 1", e.ExitCode())
		}
		// Check that stderr contains the formatted error message
		stderrStr := stderr.String()
		if !strings.Contains(stderrStr, "Error: connection to localhost:5432 failed") {
			t.Errorf("Fatalf() stderr = %q, want to contain %q", stderrStr, "Error: connection to localhost:5432 failed")
		}
	} else {
		t.Errorf("Fatalf() did not exit with error: %v", err)
	}
}
