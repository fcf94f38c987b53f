package domain

import "fmt"

// Arcana classifies a card as major or minor.
type Arcana string

const (
	Major Arcana = "major"
	Minor Arcana = "minor"
)

// Suit is one of the four minor arcana suits.
type Suit string

const (
	Wands     Suit = "wands"
	Cups      Suit = "cups"
	Swords    Suit = "swords"
	Pentacles Suit = "pentacles"
)

// Suits lists the known suits in a fixed order.
var Suits = []Suit{Cups, Wands, Pentacles, Swords}

func (s Suit) Valid() bool {
	switch s {
	case Wands, Cups, Swords, Pentacles:
		return true
	}
	return false
}

// Orientation represents the orientation of a drawn tarot card.
type Orientation string

const (
	Upright  Orientation = "upright"
	Reversed Orientation = "reversed"
)

func OrientationOf(reversed bool) Orientation {
	if reversed {
		return Reversed
	}
	return Upright
}

// Card is a read-only catalog entry.
type Card struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Arcana          Arcana   `json:"arcana"`
	Suit            Suit     `json:"suit,omitempty"`
	MeaningUpright  string   `json:"meaningUpright"`
	MeaningReversed string   `json:"meaningReversed"`
	Keywords        []string `json:"keywords"`
	Element         string   `json:"element,omitempty"`
	ZodiacSign      string   `json:"zodiacSign,omitempty"`
	ExtendedMeaning string   `json:"extendedMeaning,omitempty"`
}

// Meaning returns the meaning that applies to the given orientation.
func (c Card) Meaning(reversed bool) string {
	if reversed {
		return c.MeaningReversed
	}
	return c.MeaningUpright
}

// Validate checks the structural invariants of a catalog entry.
func (c Card) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidCard)
	}
	switch c.Arcana {
	case Major:
		return nil
	case Minor:
		if c.Suit == "" {
			return fmt.Errorf("card %s: %w", c.ID, ErrMissingSuit)
		}
		if !c.Suit.Valid() {
			return fmt.Errorf("%w: card %s has unknown suit %q", ErrInvalidCard, c.ID, c.Suit)
		}
		return nil
	default:
		return fmt.Errorf("%w: card %s has unknown arcana %q", ErrInvalidCard, c.ID, c.Arcana)
	}
}

// DrawnCard is a card that has been drawn as part of a spread.
type DrawnCard struct {
	Card
	Position int  `json:"position"`
	Reversed bool `json:"isReversed"`
}

// Orientation reports the orientation of the drawn card.
func (d DrawnCard) Orientation() Orientation {
	return OrientationOf(d.Reversed)
}
