package domain_test

import "github.com/kjfsoul/mystic-arcana-v3/internal/domain"

// fixtureCatalog is the seven-card catalog the regression fixtures are pinned to.
func fixtureCatalog() []domain.Card {
	return []domain.Card{
		{ID: "fool", Name: "The Fool", Arcana: domain.Major},
		{ID: "magician", Name: "The Magician", Arcana: domain.Major},
		{ID: "high-priestess", Name: "High Priestess", Arcana: domain.Major},
		{ID: "ace-of-cups", Name: "Ace of Cups", Arcana: domain.Minor, Suit: domain.Cups},
		{ID: "ace-of-wands", Name: "Ace of Wands", Arcana: domain.Minor, Suit: domain.Wands},
		{ID: "ace-of-swords", Name: "Ace of Swords", Arcana: domain.Minor, Suit: domain.Swords},
		{ID: "ace-of-pentacles", Name: "Ace of Pentacles", Arcana: domain.Minor, Suit: domain.Pentacles},
	}
}

func riderWaite() domain.DeckConfig {
	return domain.DeckConfig{
		ID:                  "rider-waite",
		Name:                "Rider-Waite-Smith",
		CardBackImagePath:   "/images/tarot/decks/rider-waite/card-back.png",
		ImageFormat:         "png",
		MajorArcanaPath:     "/images/tarot/decks/rider-waite/major",
		MinorArcanaPath:     "/images/tarot/decks/rider-waite/minor",
		EnabledReadingTypes: []domain.ReadingType{domain.ReadingDaily, domain.ReadingThreeCard},
	}
}

func mustDate(s string) domain.Date {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
