// Package journal stores free-text journal entries under a single key.
// Every change is announced on the notifier as JournalUpdated.
package journal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/tarot/internal/constants"
	"github.com/julianstephens/tarot/internal/identity"
	"github.com/julianstephens/tarot/internal/logger"
	"github.com/julianstephens/tarot/internal/models"
	"github.com/julianstephens/tarot/internal/notifier"
	"github.com/julianstephens/tarot/internal/storage"
	"github.com/julianstephens/tarot/internal/utils"
)

var (
	ErrNotFound     = errors.New("journal entry not found")
	ErrInvalidLevel = errors.New("invalid journal level")
)

type Repository struct {
	mu       sync.Mutex
	store    storage.Provider
	ids      identity.Generator
	now      func() time.Time
	notifier *notifier.Notifier
}

type Option func(*Repository)

func WithIDGenerator(g identity.Generator) Option {
	return func(r *Repository) { r.ids = g }
}

func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

func WithNotifier(n *notifier.Notifier) Option {
	return func(r *Repository) { r.notifier = n }
}

func New(store storage.Provider, opts ...Option) *Repository {
	r := &Repository{
		store:    store,
		ids:      identity.Default,
		now:      time.Now,
		notifier: notifier.Default,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create appends an entry. Title and content are stored as given: callers
// run validation.ValidateJournalDraft first. Only the level is checked
// here, since anything else could not be read back as a JournalEntry.
func (r *Repository) Create(ctx context.Context, title, content string, level models.JournalLevel) (models.JournalEntry, error) {
	return r.create(ctx, models.JournalEntry{Title: title, Content: content, Level: level})
}

// CreateFor is Create for a per-user journal: the entry is stamped with
// userID.
func (r *Repository) CreateFor(ctx context.Context, userID, title, content string, level models.JournalLevel) (models.JournalEntry, error) {
	return r.create(ctx, models.JournalEntry{Title: title, Content: content, Level: level, UserID: userID})
}

func (r *Repository) create(ctx context.Context, entry models.JournalEntry) (models.JournalEntry, error) {
	if !entry.Level.Valid() {
		return models.JournalEntry{}, fmt.Errorf("%w: %q", ErrInvalidLevel, entry.Level)
	}

	r.mu.Lock()
	entries, err := r.load(ctx)
	if err != nil {
		r.mu.Unlock()
		return models.JournalEntry{}, err
	}

	entry.ID = r.ids.NewID()
	entry.Timestamp = utils.FormatTimestamp(r.now())
	entries = append(entries, entry)
	err = storage.Put(ctx, r.store, constants.KeyJournal, entries)
	r.mu.Unlock()
	if err != nil {
		return models.JournalEntry{}, err
	}

	logger.Debug("Journal entry created", "id", entry.ID, "level", entry.Level)
	r.notifier.Publish(notifier.JournalUpdated)
	return entry, nil
}

// List returns every entry in stored order.
func (r *Repository) List(ctx context.Context) ([]models.JournalEntry, error) {
	return r.load(ctx)
}

// ListFor returns the entries stamped with userID, in stored order.
func (r *Repository) ListFor(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	entries, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	owned := make([]models.JournalEntry, 0, len(entries))
	for _, e := range entries {
		if e.UserID == userID {
			owned = append(owned, e)
		}
	}
	return owned, nil
}

func (r *Repository) Get(ctx context.Context, id string) (models.JournalEntry, error) {
	entries, err := r.load(ctx)
	if err != nil {
		return models.JournalEntry{}, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return models.JournalEntry{}, ErrNotFound
}

// Delete removes the entry with id if there is one. The collection is
// rewritten and JournalUpdated published either way.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	entries, err := r.load(ctx)
	if err != nil {
		r.mu.Unlock()
		return err
	}

	kept := make([]models.JournalEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	err = storage.Put(ctx, r.store, constants.KeyJournal, kept)
	r.mu.Unlock()
	if err != nil {
		return err
	}

	r.notifier.Publish(notifier.JournalUpdated)
	return nil
}

func (r *Repository) load(ctx context.Context) ([]models.JournalEntry, error) {
	return storage.GetList[models.JournalEntry](ctx, r.store, constants.KeyJournal)
}
