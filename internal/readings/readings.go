// Package readings stores tarot readings under a single key shared by all
// users. Every query and mutation is filtered on the owner's id.
package readings

import (
	"context"
	"errors"
	"sort"
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
	ErrMissingUser           = errors.New("user id is required")
	ErrMissingCards          = errors.New("a reading needs at least one card")
	ErrMissingInterpretation = errors.New("a reading needs a general interpretation")
	ErrNotFound              = errors.New("reading not found")
)

// Patch lists the fields Update may change. Nil fields are left alone.
// The owner, the cards and the creation time are fixed once saved.
type Patch struct {
	Type           *models.ReadingType
	SpreadType     *string
	Interpretation *models.Interpretation
	Notes          *string
	IsFavorite     *bool
}

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

// WithClock replaces time.Now for created_at stamps.
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

// Save validates and appends a new reading. On any error the stored
// collection is left untouched.
func (r *Repository) Save(ctx context.Context, userID string, readingType models.ReadingType, spreadType string, cards []models.Card, interp models.Interpretation, notes *string) (models.Reading, error) {
	switch {
	case userID == "":
		return models.Reading{}, ErrMissingUser
	case len(cards) == 0:
		return models.Reading{}, ErrMissingCards
	case interp.General == "":
		return models.Reading{}, ErrMissingInterpretation
	}

	var changed bool
	defer r.notifyIf(&changed)
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.load(ctx)
	if err != nil {
		return models.Reading{}, err
	}

	reading := models.Reading{
		ID:             r.ids.NewID(),
		UserID:         userID,
		Type:           readingType,
		SpreadType:     spreadType,
		Cards:          append([]models.Card(nil), cards...),
		Interpretation: interp,
		Notes:          notes,
		IsFavorite:     false,
		CreatedAt:      utils.FormatTimestamp(r.now()),
	}
	all = append(all, reading)
	if err := r.persist(ctx, all, &changed); err != nil {
		return models.Reading{}, err
	}

	logger.Debug("Reading saved", "id", reading.ID, "type", reading.Type, "spread", reading.SpreadType)
	return reading, nil
}

// List returns userID's readings, most recent first. Readings created at
// the same instant keep their insertion order.
func (r *Repository) List(ctx context.Context, userID string) ([]models.Reading, error) {
	all, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	owned := make([]models.Reading, 0, len(all))
	for _, reading := range all {
		if reading.UserID == userID {
			owned = append(owned, reading)
		}
	}
	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].CreatedTime().After(owned[j].CreatedTime())
	})
	return owned, nil
}

// Get returns one of userID's readings.
func (r *Repository) Get(ctx context.Context, readingID, userID string) (models.Reading, error) {
	all, err := r.load(ctx)
	if err != nil {
		return models.Reading{}, err
	}
	for _, reading := range all {
		if reading.ID == readingID && reading.UserID == userID {
			return reading, nil
		}
	}
	return models.Reading{}, ErrNotFound
}

// Favorites returns userID's favorite readings, most recent first.
func (r *Repository) Favorites(ctx context.Context, userID string) ([]models.Reading, error) {
	owned, err := r.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	favorites := make([]models.Reading, 0, len(owned))
	for _, reading := range owned {
		if reading.IsFavorite {
			favorites = append(favorites, reading)
		}
	}
	return favorites, nil
}

// DailyFor returns userID's daily fortune created on day, or nil.
func (r *Repository) DailyFor(ctx context.Context, userID string, day time.Time) (*models.Reading, error) {
	owned, err := r.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, reading := range owned {
		if reading.Type == models.ReadingTypeDaily && reading.SpreadType == string(models.ReadingTypeDaily) && reading.CreatedOn(day) {
			return &reading, nil
		}
	}
	return nil, nil
}

// Update merges patch into the reading matching both ids.
func (r *Repository) Update(ctx context.Context, readingID, userID string, patch Patch) (models.Reading, error) {
	var changed bool
	defer r.notifyIf(&changed)
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.load(ctx)
	if err != nil {
		return models.Reading{}, err
	}

	idx := -1
	for i := range all {
		if all[i].ID == readingID && all[i].UserID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Reading{}, ErrNotFound
	}

	updated := all[idx]
	if patch.Type != nil {
		updated.Type = *patch.Type
	}
	if patch.SpreadType != nil {
		updated.SpreadType = *patch.SpreadType
	}
	if patch.Interpretation != nil {
		updated.Interpretation = *patch.Interpretation
	}
	if patch.Notes != nil {
		notes := *patch.Notes
		updated.Notes = &notes
	}
	if patch.IsFavorite != nil {
		updated.IsFavorite = *patch.IsFavorite
	}
	all[idx] = updated

	if err := r.persist(ctx, all, &changed); err != nil {
		return models.Reading{}, err
	}
	return updated, nil
}

// ToggleFavorite sets the favorite flag to value.
func (r *Repository) ToggleFavorite(ctx context.Context, readingID, userID string, value bool) (models.Reading, error) {
	return r.Update(ctx, readingID, userID, Patch{IsFavorite: &value})
}

// Delete removes the reading matching both ids. A missing reading is not
// an error and nothing is written.
func (r *Repository) Delete(ctx context.Context, readingID, userID string) error {
	var changed bool
	defer r.notifyIf(&changed)
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.load(ctx)
	if err != nil {
		return err
	}

	kept := all[:0]
	for _, reading := range all {
		if reading.ID == readingID && reading.UserID == userID {
			continue
		}
		kept = append(kept, reading)
	}
	if len(kept) == len(all) {
		return nil
	}
	return r.persist(ctx, kept, &changed)
}

// Clear deletes all of userID's readings of the given type and returns how
// many were removed.
func (r *Repository) Clear(ctx context.Context, userID string, readingType models.ReadingType) (int, error) {
	var changed bool
	defer r.notifyIf(&changed)
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.load(ctx)
	if err != nil {
		return 0, err
	}

	kept := make([]models.Reading, 0, len(all))
	for _, reading := range all {
		if reading.UserID == userID && reading.Type == readingType {
			continue
		}
		kept = append(kept, reading)
	}
	removed := len(all) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := r.persist(ctx, kept, &changed); err != nil {
		return 0, err
	}
	return removed, nil
}

func (r *Repository) load(ctx context.Context) ([]models.Reading, error) {
	return storage.GetList[models.Reading](ctx, r.store, constants.KeyReadings)
}

func (r *Repository) persist(ctx context.Context, all []models.Reading, changed *bool) error {
	if err := storage.Put(ctx, r.store, constants.KeyReadings, all); err != nil {
		return err
	}
	*changed = true
	return nil
}

// notifyIf publishes ReadingsUpdated when a write went through. Mutators
// defer it before taking the lock so subscribers run after it is released.
func (r *Repository) notifyIf(changed *bool) {
	if *changed {
		r.notifier.Publish(notifier.ReadingsUpdated)
	}
}
