package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/tarot/internal/journal"
	"github.com/julianstephens/tarot/internal/logger"
	"github.com/julianstephens/tarot/internal/readings"
	"github.com/julianstephens/tarot/internal/storage"
	"github.com/julianstephens/tarot/internal/users"
)

// hints maps domain errors to the message shown to the person at the terminal.
// Order matters: the first match wins.
var hints = []struct {
	target error
	hint   string
}{
	{users.ErrDuplicateUsername, "that username is taken, pick another one"},
	{users.ErrInvalidCredentials, "invalid username or password"},
	{users.ErrNotSignedIn, "sign in first with 'tarot signin'"},
	{readings.ErrNotFound, "no such reading in your history"},
	{journal.ErrNotFound, "no such journal entry"},
	{storage.ErrOffline, "you are offline, check the network connection and retry"},
	{storage.ErrQuotaExceeded, "the profile store is full, delete some readings or journal entries"},
	{storage.ErrNotInitialized, "profile not initialized, run 'tarot init' first"},
}

// Hint returns a short user-facing explanation for known domain errors,
// or the empty string.
func Hint(err error) string {
	for _, h := range hints {
		if stderrors.Is(err, h.target) {
			return h.hint
		}
	}
	return ""
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	if hint := Hint(err); hint != "" {
		return fmt.Sprintf("Error: %v (%s)", err, hint)
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
