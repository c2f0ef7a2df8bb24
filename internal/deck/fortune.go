package deck

import (
	"github.com/julianstephens/tarot/internal/models"
)

// FortuneCards are the cards a daily fortune is drawn from.
var FortuneCards = MajorArcana[:8]

var LuckyColors = []string{"purple", "blue", "green", "gold", "white", "red"}

type fortuneText struct {
	General string
	Love    string
	Career  string
	Health  string
}

type fortuneTemplate struct {
	Upright  fortuneText
	Reversed fortuneText
}

// Cards without their own template use The Fool's.
var fortuneTemplates = map[string]fortuneTemplate{
	"The Fool": {
		Upright: fortuneText{
			General: "Today is full of new chances. Stay open and a little adventurous.",
			Love:    "You may meet someone who makes your heart skip.",
			Career:  "A good day to try a new direction at work.",
			Health:  "An optimistic outlook does your health good.",
		},
		Reversed: fortuneText{
			General: "Act carefully today and avoid needless risks.",
			Love:    "Matters of the heart call for clearer thinking.",
			Career:  "Work needs more planning than usual.",
			Health:  "Take care not to overwork yourself.",
		},
	},
	"The Magician": {
		Upright: fortuneText{
			General: "You have every tool you need. Put your skills to work.",
			Love:    "Say what you feel; your words land well today.",
			Career:  "A strong day to start a project or pitch an idea.",
			Health:  "Energy is high, so use it for something active.",
		},
		Reversed: fortuneText{
			General: "Scattered focus wastes your talents. Pick one thing.",
			Love:    "Be wary of charm that is not backed by action.",
			Career:  "Double-check plans before you commit to them.",
			Health:  "Restlessness can wear you down, so slow your pace.",
		},
	},
	"The High Priestess": {
		Upright: fortuneText{
			General: "Listen to your intuition and let quiet moments guide you.",
			Love:    "Unspoken feelings are worth paying attention to.",
			Career:  "Gather information before making a move.",
			Health:  "Rest and reflection restore your balance.",
		},
		Reversed: fortuneText{
			General: "You may be ignoring what you already know.",
			Love:    "Secrets can create distance, so choose honesty.",
			Career:  "Hidden details matter. Read the fine print.",
			Health:  "Pay attention to signals your body is sending.",
		},
	},
	"The Lovers": {
		Upright: fortuneText{
			General: "Harmony comes from choices that match your values.",
			Love:    "Connection deepens when you are open with each other.",
			Career:  "Partnerships and teamwork go well today.",
			Health:  "Balance work and rest to feel your best.",
		},
		Reversed: fortuneText{
			General: "An inner conflict needs a clear decision.",
			Love:    "Misunderstandings fade with patient conversation.",
			Career:  "Avoid commitments that do not fit your goals.",
			Health:  "Stress from relationships may affect your sleep.",
		},
	},
}

// Fortune is a drawn daily fortune.
type Fortune struct {
	Card           models.Card
	Interpretation models.Interpretation
}

// DrawFortune picks a daily fortune card and fills the fortune fields.
func (d *Deck) DrawFortune() Fortune {
	card := models.Card{
		Name:       FortuneCards[d.rng.IntN(len(FortuneCards))],
		IsReversed: d.reversed(),
	}

	tmpl, ok := fortuneTemplates[card.Name]
	if !ok {
		tmpl = fortuneTemplates["The Fool"]
	}
	text := tmpl.Upright
	if card.IsReversed {
		text = tmpl.Reversed
	}

	return Fortune{
		Card: card,
		Interpretation: models.Interpretation{
			General:     text.General,
			Love:        text.Love,
			Career:      text.Career,
			Health:      text.Health,
			LuckyColor:  LuckyColors[d.rng.IntN(len(LuckyColors))],
			LuckyNumber: d.rng.IntN(9) + 1,
		},
	}
}
