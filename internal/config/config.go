// Package config resolves the command-line settings into a concrete
// profile location, storage backend and journal scope.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/tarot/internal/constants"
	"github.com/julianstephens/tarot/internal/keyring"
	"github.com/julianstephens/tarot/internal/logger"
	"github.com/julianstephens/tarot/internal/storage"
	"github.com/julianstephens/tarot/internal/storage/jsonfile"
	"github.com/julianstephens/tarot/internal/storage/postgres"
	"github.com/julianstephens/tarot/internal/storage/sqlite"
	"github.com/julianstephens/tarot/internal/utils"
)

var (
	ErrUnknownBackend      = errors.New("unknown storage backend")
	ErrUnknownJournalScope = errors.New("unknown journal scope")
	ErrInvalidTimezone     = errors.New("invalid timezone")
	ErrNoConnectionString  = errors.New("no PostgreSQL connection string configured")
)

var (
	// lookupEnv and keyringLookup are swapped out in tests.
	lookupEnv     = os.LookupEnv
	keyringLookup = func(e keyring.Entry) (string, error) { return e.ConnectionString() }
	userConfigDir = os.UserConfigDir
)

// Settings is what the command line and environment asked for. Call Resolve
// before using it.
type Settings struct {
	// Profile is a file path or a PostgreSQL connection string.
	Profile      string
	Backend      string
	ProfileName  string
	JournalScope string
	Timezone     string
	Debug        bool

	// Filled by Resolve.
	ProfilePath string
	ConnString  string
	backend     constants.Backend
	scope       constants.JournalScope
	location    *time.Location
}

// Resolve fills in defaults, picks the backend and, for PostgreSQL, finds
// the connection string. The lookup order for the connection string is the
// --profile value, then TAROT_DB_CONNECTION, then the OS keyring.
func (s Settings) Resolve() (Settings, error) {
	scope, err := parseScope(s.JournalScope)
	if err != nil {
		return s, err
	}
	s.scope = scope

	if !utils.ValidateTimezone(s.Timezone) {
		return s, fmt.Errorf("%w: %q", ErrInvalidTimezone, s.Timezone)
	}
	loc, err := utils.LoadLocation(s.Timezone)
	if err != nil {
		return s, fmt.Errorf("%w: %v", ErrInvalidTimezone, err)
	}
	s.location = loc

	profile := strings.TrimSpace(s.Profile)
	if profile == "" {
		profile = constants.DefaultProfilePath
	}

	backend, err := pickBackend(s.Backend, profile)
	if err != nil {
		return s, err
	}
	s.backend = backend

	if backend == constants.BackendPostgres {
		connStr, err := s.lookupConnString(profile)
		if err != nil {
			return s, err
		}
		s.ConnString = connStr
		s.ProfilePath = ""
		return s, nil
	}

	path, err := utils.ExpandPath(profile)
	if err != nil {
		return s, err
	}
	s.ProfilePath = path
	return s, nil
}

func parseScope(raw string) (constants.JournalScope, error) {
	switch constants.JournalScope(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return constants.DefaultJournalScope, nil
	case constants.JournalScopeGlobal:
		return constants.JournalScopeGlobal, nil
	case constants.JournalScopeUser:
		return constants.JournalScopeUser, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownJournalScope, raw)
}

func pickBackend(raw, profile string) (constants.Backend, error) {
	switch constants.Backend(strings.ToLower(strings.TrimSpace(raw))) {
	case constants.BackendSQLite:
		return constants.BackendSQLite, nil
	case constants.BackendJSON:
		return constants.BackendJSON, nil
	case constants.BackendPostgres:
		return constants.BackendPostgres, nil
	case "":
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, raw)
	}

	if postgres.IsConnString(profile) {
		return constants.BackendPostgres, nil
	}
	if strings.EqualFold(filepath.Ext(profile), ".json") {
		return constants.BackendJSON, nil
	}
	return constants.DefaultBackend, nil
}

func (s Settings) lookupConnString(profile string) (string, error) {
	if postgres.IsConnString(profile) {
		// A password on the command line ends up in shell history.
		if _, err := postgres.ValidateConnString(profile); err != nil {
			return "", err
		}
		return profile, nil
	}

	if connStr, ok := lookupEnv(constants.EnvDBConnection); ok && strings.TrimSpace(connStr) != "" {
		return connStr, nil
	}

	connStr, err := keyringLookup(keyring.ForProfile(s.ProfileName))
	if err == nil {
		return connStr, nil
	}
	if !errors.Is(err, keyring.ErrNotFound) {
		logger.Warn("Keyring lookup failed", "error", err)
	}
	return "", ErrNoConnectionString
}

// StorageBackend returns the resolved backend.
func (s Settings) StorageBackend() constants.Backend {
	return s.backend
}

// Scope returns the resolved journal scope.
func (s Settings) Scope() constants.JournalScope {
	if s.scope == "" {
		return constants.DefaultJournalScope
	}
	return s.scope
}

// Location returns the timezone used to print timestamps.
func (s Settings) Location() *time.Location {
	if s.location == nil {
		return time.Local
	}
	return s.location
}

// ProfileDir is where logs, backups and the peer registry live. For file
// backends it is the directory holding the profile; for PostgreSQL it is
// the per-user config directory.
func (s Settings) ProfileDir() (string, error) {
	if s.backend != constants.BackendPostgres {
		return filepath.Dir(s.ProfilePath), nil
	}
	dir, err := userConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	if s.ProfileName != "" {
		return filepath.Join(dir, constants.AppName, s.ProfileName), nil
	}
	return filepath.Join(dir, constants.AppName), nil
}

// Describe names the profile for output. Connection strings are masked.
func (s Settings) Describe() string {
	if s.backend == constants.BackendPostgres {
		return postgres.MaskPassword(s.ConnString)
	}
	return s.ProfilePath
}

// OpenStore builds the storage provider for the resolved backend. The
// store is neither initialized nor loaded.
func (s Settings) OpenStore() (storage.Provider, error) {
	switch s.backend {
	case constants.BackendSQLite:
		return sqlite.NewStore(s.ProfilePath), nil
	case constants.BackendJSON:
		return jsonfile.NewStore(s.ProfilePath), nil
	case constants.BackendPostgres:
		if s.ConnString == "" {
			return nil, ErrNoConnectionString
		}
		return postgres.New(s.ConnString), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, s.backend)
}
