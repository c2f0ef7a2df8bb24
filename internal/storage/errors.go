package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized is returned by Load when the profile does not exist yet.
	ErrNotInitialized = errors.New("storage not initialized")
	// ErrNotLoaded is returned when a store is used before Init or Load.
	ErrNotLoaded = errors.New("storage not loaded")
	// ErrOffline is returned before any remote operation is attempted when
	// the remote backend cannot be reached. It is distinct from
	// PersistenceError: nothing was tried.
	ErrOffline = errors.New("offline")
	// ErrQuotaExceeded is wrapped by PersistenceError when a value is larger
	// than the configured per-key quota.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// PersistenceError reports a failed write. Callers must assume nothing was
// saved when they receive one.
type PersistenceError struct {
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist %s: %v", e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistence reports whether err is or wraps a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
