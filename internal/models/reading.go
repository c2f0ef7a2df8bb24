package models

import (
	"time"

	"github.com/julianstephens/tarot/internal/utils"
)

type ReadingType string

const (
	ReadingTypeDaily   ReadingType = "daily"
	ReadingTypeReading ReadingType = "reading"
)

// Valid reports whether t is one of the known reading types.
func (t ReadingType) Valid() bool {
	return t == ReadingTypeDaily || t == ReadingTypeReading
}

// Card is a drawn card. IsReversed is fixed at draw time.
type Card struct {
	Name       string `json:"name"`
	IsReversed bool   `json:"isReversed"`
	Position   string `json:"position,omitempty"`
	Meaning    string `json:"meaning,omitempty"`
}

type CardInterpretation struct {
	Position string `json:"position"`
	Meaning  string `json:"meaning"`
}

// Interpretation is the text attached to a reading. The fortune fields are
// only filled for daily readings.
type Interpretation struct {
	General     string               `json:"general"`
	Cards       []CardInterpretation `json:"cards,omitempty"`
	Love        string               `json:"love,omitempty"`
	Career      string               `json:"career,omitempty"`
	Health      string               `json:"health,omitempty"`
	LuckyColor  string               `json:"luckyColor,omitempty"`
	LuckyNumber int                  `json:"luckyNumber,omitempty"`
}

type Reading struct {
	ID             string         `json:"id"`
	UserID         string         `json:"user_id"`
	Type           ReadingType    `json:"type"`
	SpreadType     string         `json:"spread_type"`
	Cards          []Card         `json:"cards"`
	Interpretation Interpretation `json:"interpretation"`
	Notes          *string        `json:"notes,omitempty"`
	IsFavorite     bool           `json:"is_favorite"`
	CreatedAt      string         `json:"created_at"` // ISO-8601 timestamp
}

// CreatedTime parses CreatedAt. Unparseable values sort as the zero time.
func (r Reading) CreatedTime() time.Time {
	t, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// CreatedOn reports whether the reading was created on the given UTC day.
func (r Reading) CreatedOn(day time.Time) bool {
	created := r.CreatedTime()
	if created.IsZero() {
		return false
	}
	return utils.UTCDay(created) == utils.UTCDay(day)
}

// NotesText returns the notes or the empty string.
func (r Reading) NotesText() string {
	if r.Notes == nil {
		return ""
	}
	return *r.Notes
}
