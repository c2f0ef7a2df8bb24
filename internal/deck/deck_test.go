package deck

import (
	"math/rand/v2"
	"testing"
)

func seededDeck(seed uint64) *Deck {
	return New(rand.New(rand.NewPCG(seed, seed)))
}

func TestMajorArcana(t *testing.T) {
	if len(MajorArcana) != 22 {
		t.Fatalf("MajorArcana has %d cards, want 22", len(MajorArcana))
	}
	for _, name := range MajorArcana {
		if !Known(name) {
			t.Errorf("Known(%q) = false", name)
		}
	}
	if Known("The Intern") {
		t.Error("Known() accepted an unknown card")
	}
}

func TestSpreadByID(t *testing.T) {
	tests := []struct {
		id    string
		count int
		ok    bool
	}{
		{SpreadSingle, 1, true},
		{SpreadThree, 3, true},
		{SpreadCeltic, 10, true},
		{"pentagram", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			s, ok := SpreadByID(tt.id)
			if ok != tt.ok {
				t.Fatalf("SpreadByID(%q) ok = %v, want %v", tt.id, ok, tt.ok)
			}
			if s.Count() != tt.count {
				t.Errorf("Count() = %d, want %d", s.Count(), tt.count)
			}
		})
	}
}

func TestDraw(t *testing.T) {
	d := seededDeck(1)
	spread, _ := SpreadByID(SpreadCeltic)

	cards := d.Draw(spread)
	if len(cards) != 10 {
		t.Fatalf("Draw() returned %d cards, want 10", len(cards))
	}

	seen := make(map[string]bool)
	for i, card := range cards {
		if !Known(card.Name) {
			t.Errorf("card %d %q is not in the deck", i, card.Name)
		}
		if seen[card.Name] {
			t.Errorf("card %q drawn twice", card.Name)
		}
		seen[card.Name] = true
		if card.Position != spread.Positions[i].Name {
			t.Errorf("card %d position = %q, want %q", i, card.Position, spread.Positions[i].Name)
		}
		if card.Meaning == "" {
			t.Errorf("card %d has no meaning", i)
		}
	}
}

func TestDrawIsDeterministicForSeed(t *testing.T) {
	spread, _ := SpreadByID(SpreadThree)
	a := seededDeck(42).Draw(spread)
	b := seededDeck(42).Draw(spread)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("draws differ at %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestReversalRate(t *testing.T) {
	d := seededDeck(7)
	spread, _ := SpreadByID(SpreadSingle)

	reversed := 0
	const n = 10000
	for i := 0; i < n; i++ {
		if d.Draw(spread)[0].IsReversed {
			reversed++
		}
	}
	rate := float64(reversed) / n
	if rate < 0.25 || rate > 0.35 {
		t.Errorf("reversal rate = %.3f, want about 0.30", rate)
	}
}

func TestInterpret(t *testing.T) {
	spread, _ := SpreadByID(SpreadThree)
	cards := seededDeck(3).Draw(spread)

	interp := Interpret(cards)
	if interp.General == "" {
		t.Error("Interpret() has no general text")
	}
	if len(interp.Cards) != len(cards) {
		t.Fatalf("Interpret() has %d card entries, want %d", len(interp.Cards), len(cards))
	}
	for i, c := range interp.Cards {
		if c.Position != cards[i].Position {
			t.Errorf("entry %d position = %q, want %q", i, c.Position, cards[i].Position)
		}
	}
}

func TestDrawFortune(t *testing.T) {
	d := seededDeck(11)
	for i := 0; i < 50; i++ {
		f := d.DrawFortune()
		if !Known(f.Card.Name) {
			t.Fatalf("fortune card %q is not in the deck", f.Card.Name)
		}
		in := f.Interpretation
		if in.General == "" || in.Love == "" || in.Career == "" || in.Health == "" {
			t.Fatalf("fortune is missing text: %+v", in)
		}
		if in.LuckyNumber < 1 || in.LuckyNumber > 9 {
			t.Errorf("LuckyNumber = %d, want 1..9", in.LuckyNumber)
		}
		if in.LuckyColor == "" {
			t.Error("LuckyColor is empty")
		}
	}
}
