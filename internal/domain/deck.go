package domain

// ReadingType identifies a kind of reading a deck can be used for.
type ReadingType string

const (
	ReadingDaily     ReadingType = "daily"
	ReadingThreeCard ReadingType = "3-card"
	ReadingLove      ReadingType = "love"
	ReadingCareer    ReadingType = "career"
	ReadingZodiac    ReadingType = "zodiac"
)

// defaultCounts is the number of cards each reading type draws by default.
var defaultCounts = map[ReadingType]int{
	ReadingDaily:     1,
	ReadingThreeCard: 3,
	ReadingLove:      5,
	ReadingCareer:    5,
	ReadingZodiac:    10,
}

// ParseReadingType validates a raw reading type.
func ParseReadingType(raw string) (ReadingType, error) {
	rt := ReadingType(raw)
	if _, ok := defaultCounts[rt]; !ok {
		return "", ErrUnknownReadingType
	}
	return rt, nil
}

// DefaultCount returns the default number of cards for the reading type.
func (rt ReadingType) DefaultCount() int {
	return defaultCounts[rt]
}

// DeckConfig maps the fixed card catalog onto a set of images.
type DeckConfig struct {
	ID                  string        `json:"id" yaml:"id"`
	Name                string        `json:"name" yaml:"name"`
	Description         string        `json:"description,omitempty" yaml:"description"`
	Author              string        `json:"author,omitempty" yaml:"author"`
	Year                int           `json:"year,omitempty" yaml:"year"`
	CardBackImagePath   string        `json:"cardBackImagePath" yaml:"cardBackImagePath"`
	ImageFormat         string        `json:"imageFormat" yaml:"imageFormat"`
	MajorArcanaPath     string        `json:"majorArcanaPath" yaml:"majorArcanaPath"`
	MinorArcanaPath     string        `json:"minorArcanaPath" yaml:"minorArcanaPath"`
	EnabledReadingTypes []ReadingType `json:"enabledReadingTypes" yaml:"enabledReadingTypes"`
}

// Enables reports whether the deck may be used for the reading type.
func (d DeckConfig) Enables(rt ReadingType) bool {
	for _, enabled := range d.EnabledReadingTypes {
		if enabled == rt {
			return true
		}
	}
	return false
}
