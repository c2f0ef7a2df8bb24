// Package app wires the repositories to one profile store and implements
// the user-facing flows on top of them: drawing a spread, the daily
// fortune and writing a journal entry.
package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/julianstephens/tarot/internal/constants"
	"github.com/julianstephens/tarot/internal/deck"
	"github.com/julianstephens/tarot/internal/journal"
	"github.com/julianstephens/tarot/internal/logger"
	"github.com/julianstephens/tarot/internal/models"
	"github.com/julianstephens/tarot/internal/notifier"
	"github.com/julianstephens/tarot/internal/readings"
	"github.com/julianstephens/tarot/internal/stats"
	"github.com/julianstephens/tarot/internal/storage"
	"github.com/julianstephens/tarot/internal/users"
	"github.com/julianstephens/tarot/internal/validation"
)

var ErrUnknownSpread = errors.New("unknown spread")

type App struct {
	Store    storage.Provider
	Notifier *notifier.Notifier
	Users    *users.Directory
	Readings *readings.Repository
	Journal  *journal.Repository
	Stats    *stats.Aggregator

	deck      *deck.Deck
	validator *validation.Validator
	scope     constants.JournalScope
	now       func() time.Time
}

type Option func(*config)

type config struct {
	notifier  *notifier.Notifier
	scope     constants.JournalScope
	deck      *deck.Deck
	now       func() time.Time
	usersOpts []users.Option
	readOpts  []readings.Option
	jrnlOpts  []journal.Option
}

// WithNotifier routes every repository's change events through n.
func WithNotifier(n *notifier.Notifier) Option {
	return func(c *config) { c.notifier = n }
}

func WithJournalScope(scope constants.JournalScope) Option {
	return func(c *config) { c.scope = scope }
}

// WithDeck replaces the randomly seeded deck.
func WithDeck(d *deck.Deck) Option {
	return func(c *config) { c.deck = d }
}

// WithClock sets the clock used for record timestamps and for "today".
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
		c.readOpts = append(c.readOpts, readings.WithClock(now))
		c.jrnlOpts = append(c.jrnlOpts, journal.WithClock(now))
	}
}

// WithUserOptions passes extra options to the user directory.
func WithUserOptions(opts ...users.Option) Option {
	return func(c *config) { c.usersOpts = append(c.usersOpts, opts...) }
}

// WithReadingOptions passes extra options to the reading repository.
func WithReadingOptions(opts ...readings.Option) Option {
	return func(c *config) { c.readOpts = append(c.readOpts, opts...) }
}

// WithJournalOptions passes extra options to the journal repository.
func WithJournalOptions(opts ...journal.Option) Option {
	return func(c *config) { c.jrnlOpts = append(c.jrnlOpts, opts...) }
}

// New builds the repositories over store. The store must already be
// initialized or loaded.
func New(store storage.Provider, opts ...Option) *App {
	cfg := &config{
		notifier: notifier.Default,
		scope:    constants.DefaultJournalScope,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.deck == nil {
		cfg.deck = deck.New(nil)
	}

	usersRepo := users.New(store, append([]users.Option{users.WithNotifier(cfg.notifier)}, cfg.usersOpts...)...)
	readingsRepo := readings.New(store, append([]readings.Option{readings.WithNotifier(cfg.notifier)}, cfg.readOpts...)...)
	journalRepo := journal.New(store, append([]journal.Option{journal.WithNotifier(cfg.notifier)}, cfg.jrnlOpts...)...)
	agg := stats.New(readingsRepo, journalRepo, cfg.scope)

	return &App{
		Store:     store,
		Notifier:  cfg.notifier,
		Users:     usersRepo,
		Readings:  readingsRepo,
		Journal:   journalRepo,
		Stats:     agg,
		deck:      cfg.deck,
		validator: validation.New(),
		scope:     agg.Scope(),
		now:       cfg.now,
	}
}

// JournalScope reports how journal entries are attributed and counted.
func (a *App) JournalScope() constants.JournalScope {
	return a.scope
}

// DrawSpread deals the named spread for the signed-in user and saves it
// to their history.
func (a *App) DrawSpread(ctx context.Context, spreadID string) (models.Reading, error) {
	account, err := a.Users.Require(ctx)
	if err != nil {
		return models.Reading{}, err
	}
	spread, ok := deck.SpreadByID(spreadID)
	if !ok || spread.ID == deck.SpreadDaily {
		return models.Reading{}, fmt.Errorf("%w: %q", ErrUnknownSpread, spreadID)
	}

	cards := a.deck.Draw(spread)
	reading, err := a.Readings.Save(ctx, account.ID, models.ReadingTypeReading, spread.ID, cards, deck.Interpret(cards), nil)
	if err != nil {
		return models.Reading{}, err
	}
	logger.Info("Spread drawn", "spread", spread.ID, "reading", reading.ID)
	return reading, nil
}

// DailyFortune returns today's fortune for the signed-in user, drawing and
// saving one if none exists for the current UTC day. fresh reports whether
// a new fortune was drawn.
func (a *App) DailyFortune(ctx context.Context) (reading models.Reading, fresh bool, err error) {
	account, err := a.Users.Require(ctx)
	if err != nil {
		return models.Reading{}, false, err
	}

	existing, err := a.Readings.DailyFor(ctx, account.ID, a.now())
	if err != nil {
		return models.Reading{}, false, err
	}
	if existing != nil {
		return *existing, false, nil
	}

	fortune := a.deck.DrawFortune()
	reading, err = a.Readings.Save(ctx, account.ID, models.ReadingTypeDaily, deck.SpreadDaily,
		[]models.Card{fortune.Card}, fortune.Interpretation, nil)
	if err != nil {
		return models.Reading{}, false, err
	}
	logger.Info("Daily fortune drawn", "card", fortune.Card.Name, "reading", reading.ID)
	return reading, true, nil
}

// AddJournalEntry validates a draft and appends it to the journal. Under
// the per-user scope the entry is attributed to the signed-in user; under
// the global scope no session is needed.
func (a *App) AddJournalEntry(ctx context.Context, draft validation.JournalDraft) (models.JournalEntry, error) {
	result := a.validator.ValidateJournalDraft(draft)
	if err := result.Err(); err != nil {
		return models.JournalEntry{}, err
	}
	d := draft.Trimmed()

	if a.scope == constants.JournalScopeUser {
		account, err := a.Users.Require(ctx)
		if err != nil {
			return models.JournalEntry{}, err
		}
		return a.Journal.CreateFor(ctx, account.ID, d.Title, d.Content, d.Level)
	}
	return a.Journal.Create(ctx, d.Title, d.Content, d.Level)
}

// JournalEntries lists the entries visible to the signed-in user under the
// configured scope, newest first.
func (a *App) JournalEntries(ctx context.Context) ([]models.JournalEntry, error) {
	if a.scope != constants.JournalScopeUser {
		return a.JournalEntriesFor(ctx, "")
	}
	account, err := a.Users.Require(ctx)
	if err != nil {
		return nil, err
	}
	return a.JournalEntriesFor(ctx, account.ID)
}

// JournalEntriesFor lists the entries visible to userID under the
// configured scope, newest first.
func (a *App) JournalEntriesFor(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	var err error
	if a.scope == constants.JournalScopeUser {
		entries, err = a.Journal.ListFor(ctx, userID)
	} else {
		entries, err = a.Journal.List(ctx)
	}
	if err != nil {
		return nil, err
	}
	newestFirst(entries)
	return entries, nil
}

func newestFirst(entries []models.JournalEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time().After(entries[j].Time())
	})
}

// Statistics computes the signed-in user's statistics.
func (a *App) Statistics(ctx context.Context) (models.Statistics, error) {
	account, err := a.Users.Require(ctx)
	if err != nil {
		return models.Statistics{}, err
	}
	return a.Stats.Compute(ctx, account.ID), nil
}

// Audit checks every stored record for problems without changing anything.
func (a *App) Audit(ctx context.Context) (validation.ValidationResult, error) {
	accounts, err := storage.GetList[models.StoredAccount](ctx, a.Store, constants.KeyUsers)
	if err != nil {
		return validation.ValidationResult{}, err
	}
	all, err := storage.GetList[models.Reading](ctx, a.Store, constants.KeyReadings)
	if err != nil {
		return validation.ValidationResult{}, err
	}
	entries, err := a.Journal.List(ctx)
	if err != nil {
		return validation.ValidationResult{}, err
	}
	return a.validator.ValidateProfile(accounts, all, entries), nil
}
