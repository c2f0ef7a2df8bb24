// Package deck holds the static card tables, spread layouts and fortune
// templates, and draws cards from them.
package deck

import (
	"fmt"
	"math/rand/v2"

	"github.com/julianstephens/tarot/internal/models"
)

// ReversedThreshold is the draw above which a card comes up reversed,
// giving each card a 30% chance of reversal.
const ReversedThreshold = 0.7

// MajorArcana lists the cards in deck order.
var MajorArcana = []string{
	"The Fool", "The Magician", "The High Priestess", "The Empress",
	"The Emperor", "The Hierophant", "The Lovers", "The Chariot",
	"Strength", "The Hermit", "Wheel of Fortune", "Justice",
	"The Hanged Man", "Death", "Temperance", "The Devil",
	"The Tower", "The Star", "The Moon", "The Sun",
	"Judgement", "The World",
}

var known = func() map[string]bool {
	m := make(map[string]bool, len(MajorArcana))
	for _, name := range MajorArcana {
		m[name] = true
	}
	return m
}()

// Known reports whether name is a card in the deck.
func Known(name string) bool {
	return known[name]
}

// Position is a slot in a spread.
type Position struct {
	Name        string
	Description string
}

type Spread struct {
	ID          string
	Name        string
	Description string
	Positions   []Position
}

func (s Spread) Count() int {
	return len(s.Positions)
}

const (
	SpreadSingle = "single"
	SpreadThree  = "three"
	SpreadCeltic = "celtic"
	// SpreadDaily is the spread type recorded for daily fortunes.
	SpreadDaily = "daily"
)

var Spreads = []Spread{
	{
		ID:          SpreadSingle,
		Name:        "Single card",
		Description: "Simple, direct guidance",
		Positions:   []Position{{Name: "Guidance"}},
	},
	{
		ID:          SpreadThree,
		Name:        "Three cards",
		Description: "Past, present and future",
		Positions: []Position{
			{Name: "Past"},
			{Name: "Present"},
			{Name: "Future"},
		},
	},
	{
		ID:          SpreadCeltic,
		Name:        "Celtic cross",
		Description: "A deep, complete reading",
		Positions: []Position{
			{Name: "Present situation", Description: "The core question or state right now"},
			{Name: "Challenge", Description: "The main difficulty or obstacle"},
			{Name: "Potential", Description: "Possible directions and hidden opportunities"},
			{Name: "Foundation", Description: "How past experience shapes the present"},
			{Name: "Conscious mind", Description: "Inner thoughts and expectations"},
			{Name: "Near future", Description: "Changes that are about to happen"},
			{Name: "Self", Description: "Your own attitude and behaviour"},
			{Name: "Environment", Description: "Outside factors and the influence of others"},
			{Name: "Hopes and fears", Description: "What you hope for and what you worry about"},
			{Name: "Outcome", Description: "The likely result and advice"},
		},
	},
}

// SpreadByID looks up a spread.
func SpreadByID(id string) (Spread, bool) {
	for _, s := range Spreads {
		if s.ID == id {
			return s, true
		}
	}
	return Spread{}, false
}

// GeneralReading is the overall interpretation attached to drawn spreads.
const GeneralReading = "The cards point to a time for reflection and personal growth. Watch for signs around you and trust your intuition."

// Deck draws cards using its own random source.
type Deck struct {
	rng *rand.Rand
}

// New returns a deck using r, or a randomly seeded source when r is nil.
func New(r *rand.Rand) *Deck {
	if r == nil {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Deck{rng: r}
}

// Draw deals the spread's cards without repetition. Each card gets the
// position name and a meaning for its orientation.
func (d *Deck) Draw(spread Spread) []models.Card {
	names := append([]string(nil), MajorArcana...)
	d.rng.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })

	count := spread.Count()
	if count > len(names) {
		count = len(names)
	}
	cards := make([]models.Card, 0, count)
	for i := 0; i < count; i++ {
		card := models.Card{
			Name:       names[i],
			IsReversed: d.reversed(),
			Position:   spread.Positions[i].Name,
		}
		card.Meaning = Meaning(card)
		cards = append(cards, card)
	}
	return cards
}

// Interpret builds the interpretation for cards drawn for a spread.
func Interpret(cards []models.Card) models.Interpretation {
	interp := models.Interpretation{
		General: GeneralReading,
		Cards:   make([]models.CardInterpretation, 0, len(cards)),
	}
	for _, card := range cards {
		interp.Cards = append(interp.Cards, models.CardInterpretation{
			Position: card.Position,
			Meaning:  Meaning(card),
		})
	}
	return interp
}

// Meaning describes a card in its drawn orientation.
func Meaning(card models.Card) string {
	if card.IsReversed {
		return fmt.Sprintf("%s reversed - watch for inner blocks and challenges. Reflect deeply and look for a way through.", card.Name)
	}
	return fmt.Sprintf("%s upright - a positive direction and real opportunities. Keep your current attitude and course.", card.Name)
}

func (d *Deck) reversed() bool {
	return d.rng.Float64() > ReversedThreshold
}
