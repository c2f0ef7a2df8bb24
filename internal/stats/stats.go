// Package stats derives the profile statistics shown to a signed-in user.
// Statistics are never stored and computing them never fails.
package stats

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/tarot/internal/constants"
	"github.com/julianstephens/tarot/internal/logger"
	"github.com/julianstephens/tarot/internal/models"
	"github.com/julianstephens/tarot/internal/notifier"
)

type ReadingLister interface {
	List(ctx context.Context, userID string) ([]models.Reading, error)
}

type JournalLister interface {
	List(ctx context.Context) ([]models.JournalEntry, error)
	ListFor(ctx context.Context, userID string) ([]models.JournalEntry, error)
}

type Aggregator struct {
	readings ReadingLister
	journal  JournalLister
	scope    constants.JournalScope

	mu   sync.Mutex
	last map[string]models.Statistics
}

// New returns an aggregator counting journal entries according to scope.
// An unknown scope is treated as constants.DefaultJournalScope.
func New(readings ReadingLister, journal JournalLister, scope constants.JournalScope) *Aggregator {
	if scope != constants.JournalScopeUser && scope != constants.JournalScopeGlobal {
		scope = constants.DefaultJournalScope
	}
	return &Aggregator{
		readings: readings,
		journal:  journal,
		scope:    scope,
		last:     make(map[string]models.Statistics),
	}
}

// Scope reports how journal entries are counted.
func (a *Aggregator) Scope() constants.JournalScope {
	return a.scope
}

// Compute counts userID's readings and favorites and the journal entries
// visible under the configured scope. The two collections are read
// concurrently. A source that fails contributes the value from the last
// successful computation for userID, or zero.
func (a *Aggregator) Compute(ctx context.Context, userID string) models.Statistics {
	var (
		readingsCount, favoritesCount, journalCount int
		readingsErr, journalErr                     error
	)

	var g errgroup.Group
	g.Go(func() error {
		list, err := a.readings.List(ctx, userID)
		if err != nil {
			readingsErr = err
			return err
		}
		readingsCount = len(list)
		for _, r := range list {
			if r.IsFavorite {
				favoritesCount++
			}
		}
		return nil
	})
	g.Go(func() error {
		entries, err := a.journalEntries(ctx, userID)
		if err != nil {
			journalErr = err
			return err
		}
		journalCount = len(entries)
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Warn("Statistics degraded", "user", userID, "error", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	prev := a.last[userID]
	result := models.Statistics{
		ReadingsCount:  readingsCount,
		FavoritesCount: favoritesCount,
		JournalCount:   journalCount,
	}
	if readingsErr != nil {
		result.ReadingsCount = prev.ReadingsCount
		result.FavoritesCount = prev.FavoritesCount
	}
	if journalErr != nil {
		result.JournalCount = prev.JournalCount
	}
	a.last[userID] = result
	return result
}

func (a *Aggregator) journalEntries(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	if a.scope == constants.JournalScopeUser {
		return a.journal.ListFor(ctx, userID)
	}
	return a.journal.List(ctx)
}

// Watch recomputes userID's statistics whenever n reports a change that
// can affect them and passes the result to fn. It returns a function that
// stops watching.
func (a *Aggregator) Watch(ctx context.Context, n *notifier.Notifier, userID string, fn func(models.Statistics)) func() {
	refresh := func() {
		fn(a.Compute(ctx, userID))
	}

	topics := []notifier.Topic{
		notifier.JournalUpdated,
		notifier.ReadingsUpdated,
		notifier.StorageChanged,
	}
	unsubscribes := make([]func(), 0, len(topics))
	for _, topic := range topics {
		unsubscribes = append(unsubscribes, n.Subscribe(topic, refresh))
	}

	return func() {
		for _, unsubscribe := range unsubscribes {
			unsubscribe()
		}
	}
}
