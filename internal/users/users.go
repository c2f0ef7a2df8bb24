// Package users is the directory of local accounts and the owner of the
// signed-in session. Nothing else reads or writes the session key.
package users

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/julianstephens/tarot/internal/constants"
	"github.com/julianstephens/tarot/internal/identity"
	"github.com/julianstephens/tarot/internal/logger"
	"github.com/julianstephens/tarot/internal/models"
	"github.com/julianstephens/tarot/internal/notifier"
	"github.com/julianstephens/tarot/internal/storage"
)

var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotSignedIn        = errors.New("not signed in")
)

type Directory struct {
	mu       sync.Mutex
	store    storage.Provider
	ids      identity.Generator
	notifier *notifier.Notifier
	hashCost int
}

type Option func(*Directory)

// WithIDGenerator replaces the account id generator.
func WithIDGenerator(g identity.Generator) Option {
	return func(d *Directory) { d.ids = g }
}

// WithNotifier replaces the notifier that receives SessionChanged.
func WithNotifier(n *notifier.Notifier) Option {
	return func(d *Directory) { d.notifier = n }
}

// WithHashCost sets the bcrypt cost for new passwords.
func WithHashCost(cost int) Option {
	return func(d *Directory) { d.hashCost = cost }
}

func New(store storage.Provider, opts ...Option) *Directory {
	d := &Directory{
		store:    store,
		ids:      identity.Default,
		notifier: notifier.Default,
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SignUp registers username and signs the new account in. Usernames are
// compared exactly, so "Alice" and "alice" are different accounts.
func (d *Directory) SignUp(ctx context.Context, username, password string) (models.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	accounts, err := storage.GetList[models.StoredAccount](ctx, d.store, constants.KeyUsers)
	if err != nil {
		return models.Account{}, err
	}
	for _, a := range accounts {
		if a.Username == username {
			return models.Account{}, ErrDuplicateUsername
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.hashCost)
	if err != nil {
		return models.Account{}, fmt.Errorf("failed to hash password: %w", err)
	}

	account := models.StoredAccount{
		ID:       d.ids.NewID(),
		Username: username,
		Password: string(hash),
	}
	accounts = append(accounts, account)
	if err := storage.Put(ctx, d.store, constants.KeyUsers, accounts); err != nil {
		return models.Account{}, err
	}

	if err := d.startSession(ctx, account); err != nil {
		return models.Account{}, err
	}
	logger.Info("Account created", "username", username)
	return account.Public(), nil
}

// SignIn establishes a session for the account matching both username and
// password. Unknown users and wrong passwords fail identically.
func (d *Directory) SignIn(ctx context.Context, username, password string) (models.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	accounts, err := storage.GetList[models.StoredAccount](ctx, d.store, constants.KeyUsers)
	if err != nil {
		return models.Account{}, err
	}

	var match *models.StoredAccount
	for i := range accounts {
		if accounts[i].Username == username && passwordMatches(accounts[i].Password, password) {
			match = &accounts[i]
			break
		}
	}
	if match == nil {
		logger.Debug("Sign in rejected", "username", username)
		return models.Account{}, ErrInvalidCredentials
	}

	if err := d.startSession(ctx, *match); err != nil {
		return models.Account{}, err
	}
	return match.Public(), nil
}

// SignOut clears the session. Signing out twice is not an error.
func (d *Directory) SignOut(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := storage.Delete(ctx, d.store, constants.KeyCurrentUser); err != nil {
		return err
	}
	d.notifier.Publish(notifier.SessionChanged)
	return nil
}

// CurrentSession returns the signed-in account, or nil when nobody is
// signed in or the stored session is unreadable.
func (d *Directory) CurrentSession(ctx context.Context) (*models.Account, error) {
	session, err := storage.GetValue[models.Session](ctx, d.store, constants.KeyCurrentUser)
	if err != nil {
		return nil, err
	}
	if session == nil || session.ID == "" {
		return nil, nil
	}
	account := session.Account()
	return &account, nil
}

// Require is CurrentSession for flows that need a signed-in user.
func (d *Directory) Require(ctx context.Context) (models.Account, error) {
	account, err := d.CurrentSession(ctx)
	if err != nil {
		return models.Account{}, err
	}
	if account == nil {
		return models.Account{}, ErrNotSignedIn
	}
	return *account, nil
}

// Count returns the number of registered accounts.
func (d *Directory) Count(ctx context.Context) (int, error) {
	accounts, err := storage.GetList[models.StoredAccount](ctx, d.store, constants.KeyUsers)
	if err != nil {
		return 0, err
	}
	return len(accounts), nil
}

func (d *Directory) startSession(ctx context.Context, account models.StoredAccount) error {
	session := models.Session{ID: account.ID, Username: account.Username}
	if err := storage.Put(ctx, d.store, constants.KeyCurrentUser, session); err != nil {
		return err
	}
	d.notifier.Publish(notifier.SessionChanged)
	return nil
}

// passwordMatches compares against a bcrypt hash, or in constant time
// against a clear-text password left by older clients.
func passwordMatches(stored, given string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

func isBcryptHash(s string) bool {
	if len(s) != 60 {
		return false
	}
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
