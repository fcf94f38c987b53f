package http

import (
	"time"

	"github.com/kjfsoul/mystic-arcana-v3/internal/app"
	"github.com/kjfsoul/mystic-arcana-v3/internal/domain"
	"github.com/kjfsoul/mystic-arcana-v3/internal/ports"
)

// DailyRequest is the body of POST /.netlify/functions/daily-tarot.
type DailyRequest struct {
	UserID string `json:"user_id"`
	Date   string `json:"date"`
	Deck   string `json:"deck"`
}

// DailyResponse is the JSON shape returned for the daily card.
type DailyResponse struct {
	Card       CardDTO `json:"card"`
	IsReversed bool    `json:"isReversed"`
	Timestamp  string  `json:"timestamp"`
	Date       string  `json:"date"`
	Deck       string  `json:"deck"`
	Source     string  `json:"source"`
}

type CardDTO struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Arcana          domain.Arcana `json:"arcana"`
	Suit            domain.Suit   `json:"suit,omitempty"`
	MeaningUpright  string        `json:"meaningUpright"`
	MeaningReversed string        `json:"meaningReversed"`
	Keywords        []string      `json:"keywords"`
	Element         string        `json:"element,omitempty"`
	ZodiacSign      string        `json:"zodiacSign,omitempty"`
	ImagePath       string        `json:"imagePath"`
	ExtendedMeaning string        `json:"extendedMeaning,omitempty"`
}

type SpreadResponse struct {
	ReadingType domain.ReadingType `json:"readingType"`
	Deck        string             `json:"deck"`
	Cards       []SpreadCardDTO    `json:"cards"`
	Source      string             `json:"source"`
	Timestamp   string             `json:"timestamp"`
}

type SpreadCardDTO struct {
	CardDTO
	Position    int                `json:"position"`
	IsReversed  bool               `json:"isReversed"`
	Orientation domain.Orientation `json:"orientation"`
	Meaning     string             `json:"meaning"`
}

type DecksResponse struct {
	Default string              `json:"default"`
	Decks   []domain.DeckConfig `json:"decks"`
}

type ReadingsResponse struct {
	Readings []ports.Reading `json:"readings"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toCardDTO(c domain.Card, imagePath, extended string) CardDTO {
	keywords := c.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return CardDTO{
		ID:              c.ID,
		Name:            c.Name,
		Arcana:          c.Arcana,
		Suit:            c.Suit,
		MeaningUpright:  c.MeaningUpright,
		MeaningReversed: c.MeaningReversed,
		Keywords:        keywords,
		Element:         c.Element,
		ZodiacSign:      c.ZodiacSign,
		ImagePath:       imagePath,
		ExtendedMeaning: extended,
	}
}

func toDailyResponse(r app.DailyReading) DailyResponse {
	return DailyResponse{
		Card:       toCardDTO(r.Card, r.ImagePath, r.ExtendedMeaning),
		IsReversed: r.Reversed,
		Timestamp:  r.Timestamp.UTC().Format(time.RFC3339),
		Date:       r.Date.String(),
		Deck:       r.DeckID,
		Source:     r.Source,
	}
}

func toSpreadResponse(r app.SpreadReading) SpreadResponse {
	cards := make([]SpreadCardDTO, len(r.Cards))
	for i, c := range r.Cards {
		cards[i] = SpreadCardDTO{
			CardDTO:     toCardDTO(c.Card, c.ImagePath, ""),
			Position:    c.Position,
			IsReversed:  c.Reversed,
			Orientation: c.Orientation(),
			Meaning:     c.ActiveMeaning,
		}
	}
	return SpreadResponse{
		ReadingType: r.ReadingType,
		Deck:        r.DeckID,
		Cards:       cards,
		Source:      r.Source,
		Timestamp:   r.Timestamp.UTC().Format(time.RFC3339),
	}
}
