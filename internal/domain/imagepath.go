package domain

import (
	"path"
	"regexp"
	"strings"
)

const (
	imagePathPrefix     = "/images/tarot/decks/"
	defaultCardBackPath = "/images/tarot/decks/rider-waite/card-back.png"
)

var (
	majorImagePattern = regexp.MustCompile(`^/images/tarot/decks/[A-Za-z0-9_-]+/major/[A-Za-z0-9_-]+\.(png|jpg|webp)$`)
	minorImagePattern = regexp.MustCompile(`^/images/tarot/decks/[A-Za-z0-9_-]+/minor/(cups|wands|pentacles|swords)/[A-Za-z0-9_-]+\.(png|jpg|webp)$`)
	imageNamePattern  = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// IsAllowedImagePath reports whether p matches the card image allow-list.
func IsAllowedImagePath(p string) bool {
	return majorImagePattern.MatchString(p) || minorImagePattern.MatchString(p)
}

// ResolveImagePath derives the image path of a card within a deck. Cards carry
// no image of their own, so the deck alone decides folders and format. It never
// fails loudly: a minor card without a suit, or a path that cannot be brought
// onto the allow-list, resolves to "".
func ResolveImagePath(card Card, deck DeckConfig) string {
	var p string
	switch {
	case card.Arcana == Major:
		p = deck.MajorArcanaPath + "/" + card.ID + "." + deck.ImageFormat
	case card.Arcana == Minor && card.Suit != "":
		p = deck.MinorArcanaPath + "/" + string(card.Suit) + "/" + card.ID + "." + deck.ImageFormat
	default:
		return ""
	}

	if IsAllowedImagePath(p) {
		return p
	}
	return SanitizeImagePath(p, deck)
}

// SanitizeImagePath returns p when it is allowed, otherwise attempts to
// rebuild a path inside deck from the filename's arcana or suit keyword.
func SanitizeImagePath(p string, deck DeckConfig) string {
	if IsAllowedImagePath(p) {
		return p
	}

	filename := path.Base(strings.ReplaceAll(p, `\`, "/"))
	if filename == "." || filename == "/" {
		return ""
	}
	name := strings.TrimSuffix(filename, path.Ext(filename))
	format := deck.ImageFormat
	if format == "" {
		format = "png"
	}

	var candidate string
	switch {
	case strings.Contains(filename, "major"):
		name = strings.ReplaceAll(name, "major-", "")
		candidate = deck.MajorArcanaPath + "/" + name + "." + format
	default:
		for _, suit := range Suits {
			if strings.Contains(filename, string(suit)) {
				name = strings.ReplaceAll(name, string(suit)+"-", "")
				candidate = deck.MinorArcanaPath + "/" + string(suit) + "/" + name + "." + format
				break
			}
		}
	}

	if candidate == "" || !imageNamePattern.MatchString(name) || !IsAllowedImagePath(candidate) {
		return ""
	}
	return candidate
}

// CardBackPath returns the image used for the back of every card in the deck.
func CardBackPath(deck DeckConfig) string {
	if strings.HasPrefix(deck.CardBackImagePath, imagePathPrefix) {
		return deck.CardBackImagePath
	}
	return defaultCardBackPath
}
