package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/julianstephens/tarot/internal/constants"
	"github.com/julianstephens/tarot/internal/journal"
	"github.com/julianstephens/tarot/internal/models"
	"github.com/julianstephens/tarot/internal/notifier"
	"github.com/julianstephens/tarot/internal/readings"
	"github.com/julianstephens/tarot/internal/storage/memory"
)

type fakeReadings struct {
	list []models.Reading
	err  error
}

func (f *fakeReadings) List(ctx context.Context, userID string) ([]models.Reading, error) {
	if f.err != nil {
		return nil, f.err
	}
	var owned []models.Reading
	for _, r := range f.list {
		if r.UserID == userID {
			owned = append(owned, r)
		}
	}
	return owned, nil
}

type fakeJournal struct {
	entries []models.JournalEntry
	err     error
}

func (f *fakeJournal) List(ctx context.Context) ([]models.JournalEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

func (f *fakeJournal) ListFor(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	var owned []models.JournalEntry
	for _, e := range f.entries {
		if e.UserID == userID {
			owned = append(owned, e)
		}
	}
	return owned, nil
}

func sampleData() (*fakeReadings, *fakeJournal) {
	r := &fakeReadings{list: []models.Reading{
		{ID: "r1", UserID: "u1", IsFavorite: true},
		{ID: "r2", UserID: "u1"},
		{ID: "r3", UserID: "u1", IsFavorite: true},
		{ID: "r4", UserID: "u2", IsFavorite: true},
	}}
	j := &fakeJournal{entries: []models.JournalEntry{
		{ID: "j1", UserID: "u1"},
		{ID: "j2", UserID: "u2"},
		{ID: "j3"},
	}}
	return r, j
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name   string
		scope  constants.JournalScope
		userID string
		want   models.Statistics
	}{
		{"global scope", constants.JournalScopeGlobal, "u1", models.Statistics{ReadingsCount: 3, FavoritesCount: 2, JournalCount: 3}},
		{"user scope", constants.JournalScopeUser, "u1", models.Statistics{ReadingsCount: 3, FavoritesCount: 2, JournalCount: 1}},
		{"other user global", constants.JournalScopeGlobal, "u2", models.Statistics{ReadingsCount: 1, FavoritesCount: 1, JournalCount: 3}},
		{"unknown scope falls back to global", "team", "u2", models.Statistics{ReadingsCount: 1, FavoritesCount: 1, JournalCount: 3}},
		{"user without data", constants.JournalScopeUser, "u3", models.Statistics{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, j := sampleData()
			a := New(r, j, tt.scope)
			if got := a.Compute(context.Background(), tt.userID); got != tt.want {
				t.Errorf("Compute() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeDegradesToZero(t *testing.T) {
	r := &fakeReadings{err: errors.New("boom")}
	j := &fakeJournal{err: errors.New("boom")}
	a := New(r, j, constants.JournalScopeGlobal)

	if got := a.Compute(context.Background(), "u1"); got != (models.Statistics{}) {
		t.Errorf("Compute() = %+v, want zero", got)
	}
}

func TestComputeKeepsLastValueOnError(t *testing.T) {
	ctx := context.Background()
	r, j := sampleData()
	a := New(r, j, constants.JournalScopeGlobal)

	first := a.Compute(ctx, "u1")

	r.err = errors.New("read failed")
	j.entries = append(j.entries, models.JournalEntry{ID: "j4"})

	got := a.Compute(ctx, "u1")
	want := models.Statistics{
		ReadingsCount:  first.ReadingsCount,
		FavoritesCount: first.FavoritesCount,
		JournalCount:   4,
	}
	if got != want {
		t.Errorf("Compute() = %+v, want %+v", got, want)
	}

	j.err = errors.New("read failed")
	if got := a.Compute(ctx, "u1"); got != want {
		t.Errorf("Compute() with both sources failing = %+v, want %+v", got, want)
	}

	// Cached values are per user.
	if got := a.Compute(ctx, "u2"); got != (models.Statistics{}) {
		t.Errorf("Compute(u2) = %+v, want zero", got)
	}
}

func TestWatch(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	n := notifier.New()
	readingRepo := readings.New(store, readings.WithNotifier(n))
	journalRepo := journal.New(store, journal.WithNotifier(n))
	a := New(readingRepo, journalRepo, constants.JournalScopeGlobal)

	var latest models.Statistics
	updates := 0
	stop := a.Watch(ctx, n, "u1", func(s models.Statistics) {
		latest = s
		updates++
	})

	if _, err := journalRepo.Create(ctx, "t", "c", models.JournalLevelInfo); err != nil {
		t.Fatal(err)
	}
	if latest.JournalCount != 1 {
		t.Errorf("JournalCount after create = %d, want 1", latest.JournalCount)
	}

	reading, err := readingRepo.Save(ctx, "u1", models.ReadingTypeReading, "single",
		[]models.Card{{Name: "The Sun"}}, models.Interpretation{General: "bright"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := readingRepo.ToggleFavorite(ctx, reading.ID, "u1", true); err != nil {
		t.Fatal(err)
	}
	want := models.Statistics{ReadingsCount: 1, FavoritesCount: 1, JournalCount: 1}
	if latest != want {
		t.Errorf("latest = %+v, want %+v", latest, want)
	}

	n.Publish(notifier.StorageChanged)
	if updates != 4 {
		t.Errorf("updates = %d, want 4", updates)
	}

	stop()
	if _, err := journalRepo.Create(ctx, "t", "c", models.JournalLevelInfo); err != nil {
		t.Fatal(err)
	}
	if updates != 4 {
		t.Errorf("update delivered after stop")
	}
}
