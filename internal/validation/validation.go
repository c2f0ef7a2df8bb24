// Package validation checks user input before it reaches a repository and
// audits stored profile data for records that break the data model.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/julianstephens/tarot/internal/constants"
	"github.com/julianstephens/tarot/internal/deck"
	"github.com/julianstephens/tarot/internal/models"
	"github.com/julianstephens/tarot/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictEmptyTitle            ConflictType = "empty_title"
	ConflictEmptyContent          ConflictType = "empty_content"
	ConflictTitleTooLong          ConflictType = "title_too_long"
	ConflictInvalidLevel          ConflictType = "invalid_level"
	ConflictDuplicateID           ConflictType = "duplicate_id"
	ConflictDuplicateUsername     ConflictType = "duplicate_username"
	ConflictMissingCards          ConflictType = "missing_cards"
	ConflictMissingInterpretation ConflictType = "missing_interpretation"
	ConflictUnknownCard           ConflictType = "unknown_card"
	ConflictOrphanReading         ConflictType = "orphan_reading"
	ConflictInvalidTimestamp      ConflictType = "invalid_timestamp"
)

// Conflict represents a single problem found in input or stored data
type Conflict struct {
	Type        ConflictType
	Description string
	IDs         []string // IDs of the records involved, if any
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// ErrInvalidInput is wrapped by ValidationResult.Err.
var ErrInvalidInput = errors.New("invalid input")

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// Has reports whether a conflict of type ct was found.
func (vr *ValidationResult) Has(ct ConflictType) bool {
	for _, c := range vr.Conflicts {
		if c.Type == ct {
			return true
		}
	}
	return false
}

// Err returns nil when there are no conflicts, or an error wrapping
// ErrInvalidInput that lists every conflict.
func (vr *ValidationResult) Err() error {
	if !vr.HasConflicts() {
		return nil
	}
	descriptions := make([]string, 0, len(vr.Conflicts))
	for _, c := range vr.Conflicts {
		descriptions = append(descriptions, c.Description)
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(descriptions, "; "))
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	report := fmt.Sprintf("Found %d conflict(s):\n", len(vr.Conflicts))
	for _, conflict := range vr.Conflicts {
		report += fmt.Sprintf("- %s\n", conflict.Description)
	}
	return report
}

func (vr *ValidationResult) add(ct ConflictType, description string, ids ...string) {
	vr.Conflicts = append(vr.Conflicts, Conflict{Type: ct, Description: description, IDs: ids})
}

// Validator validates journal drafts and stored profile data
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// JournalDraft is what a user typed into the journal form.
type JournalDraft struct {
	Title   string
	Content string
	Level   models.JournalLevel
}

// Trimmed returns the draft with surrounding whitespace removed.
func (d JournalDraft) Trimmed() JournalDraft {
	return JournalDraft{
		Title:   strings.TrimSpace(d.Title),
		Content: strings.TrimSpace(d.Content),
		Level:   d.Level,
	}
}

// ValidateJournalDraft applies the journal form rules: title and content
// must be non-empty after trimming, the title is at most
// constants.MaxJournalTitleLen characters and the level must be known.
// The journal repository does not repeat these checks.
func (v *Validator) ValidateJournalDraft(draft JournalDraft) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	d := draft.Trimmed()

	if d.Title == "" {
		result.add(ConflictEmptyTitle, "Title must not be empty")
	} else if n := utf8.RuneCountInString(d.Title); n > constants.MaxJournalTitleLen {
		result.add(ConflictTitleTooLong, fmt.Sprintf("Title is %d characters long, the limit is %d", n, constants.MaxJournalTitleLen))
	}
	if d.Content == "" {
		result.add(ConflictEmptyContent, "Content must not be empty")
	}
	if !d.Level.Valid() {
		result.add(ConflictInvalidLevel, fmt.Sprintf("Level %q must be one of INFO, WARNING or ERROR", d.Level))
	}
	return result
}

// ValidateProfile audits stored records. It never modifies anything;
// doctor reports what it finds.
func (v *Validator) ValidateProfile(accounts []models.StoredAccount, readings []models.Reading, entries []models.JournalEntry) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	userIDs := make(map[string]bool, len(accounts))
	usernames := make(map[string][]string)
	for _, a := range accounts {
		if userIDs[a.ID] {
			result.add(ConflictDuplicateID, fmt.Sprintf("Account id %s is used more than once", a.ID), a.ID)
		}
		userIDs[a.ID] = true
		usernames[a.Username] = append(usernames[a.Username], a.ID)
	}
	for name, ids := range usernames {
		if len(ids) > 1 {
			result.add(ConflictDuplicateUsername, fmt.Sprintf("Duplicate username: %q (IDs: %v)", name, ids), ids...)
		}
	}

	readingIDs := make(map[string]bool, len(readings))
	for _, r := range readings {
		if readingIDs[r.ID] {
			result.add(ConflictDuplicateID, fmt.Sprintf("Reading id %s is used more than once", r.ID), r.ID)
		}
		readingIDs[r.ID] = true

		if !userIDs[r.UserID] {
			result.add(ConflictOrphanReading, fmt.Sprintf("Reading %s belongs to unknown user %q", r.ID, r.UserID), r.ID)
		}
		if len(r.Cards) == 0 {
			result.add(ConflictMissingCards, fmt.Sprintf("Reading %s has no cards", r.ID), r.ID)
		}
		for _, c := range r.Cards {
			if !deck.Known(c.Name) {
				result.add(ConflictUnknownCard, fmt.Sprintf("Reading %s has unknown card %q", r.ID, c.Name), r.ID)
			}
		}
		if r.Interpretation.General == "" {
			result.add(ConflictMissingInterpretation, fmt.Sprintf("Reading %s has no general interpretation", r.ID), r.ID)
		}
		if !isValidTimestamp(r.CreatedAt) {
			result.add(ConflictInvalidTimestamp, fmt.Sprintf("Reading %s has invalid created_at: %q", r.ID, r.CreatedAt), r.ID)
		}
	}

	entryIDs := make(map[string]bool, len(entries))
	for _, e := range entries {
		if entryIDs[e.ID] {
			result.add(ConflictDuplicateID, fmt.Sprintf("Journal entry id %s is used more than once", e.ID), e.ID)
		}
		entryIDs[e.ID] = true

		if !e.Level.Valid() {
			result.add(ConflictInvalidLevel, fmt.Sprintf("Journal entry %s has invalid level %q", e.ID, e.Level), e.ID)
		}
		if !isValidTimestamp(e.Timestamp) {
			result.add(ConflictInvalidTimestamp, fmt.Sprintf("Journal entry %s has invalid timestamp: %q", e.ID, e.Timestamp), e.ID)
		}
	}

	return result
}

func isValidTimestamp(s string) bool {
	_, err := utils.ParseTimestamp(s)
	return err == nil
}
