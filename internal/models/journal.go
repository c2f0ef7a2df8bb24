package models

import "time"

type JournalLevel string

const (
	JournalLevelInfo    JournalLevel = "INFO"
	JournalLevelWarning JournalLevel = "WARNING"
	JournalLevelError   JournalLevel = "ERROR"
)

// Valid reports whether l is one of the three journal levels.
func (l JournalLevel) Valid() bool {
	switch l {
	case JournalLevelInfo, JournalLevelWarning, JournalLevelError:
		return true
	}
	return false
}

// JournalEntry is a free-text note. UserID is only set when the journal is
// scoped per user.
type JournalEntry struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Content   string       `json:"content"`
	Level     JournalLevel `json:"level"`
	Timestamp string       `json:"timestamp"` // ISO-8601 timestamp
	UserID    string       `json:"user_id,omitempty"`
}

func (e JournalEntry) Time() time.Time {
	t, err := time.Parse(time.RFC3339Nano, e.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Statistics is derived on demand and never stored.
type Statistics struct {
	ReadingsCount  int `json:"readingsCount"`
	FavoritesCount int `json:"favoritesCount"`
	JournalCount   int `json:"journalCount"`
}
