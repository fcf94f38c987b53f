package domain

import "unicode/utf16"

// reversalThreshold out of 100 gives the 22% reversal rate.
const reversalThreshold = 22

// DailyCard is the outcome of the deterministic daily selection.
type DailyCard struct {
	Card     Card
	Index    int
	Reversed bool
	Seed     string
}

// Seed builds the selection seed: "YYYY-MM-DD" or "YYYY-MM-DD-<userID>".
func Seed(date Date, userID string) string {
	if userID == "" {
		return date.String()
	}
	return date.String() + "-" + userID
}

// Hash32 folds the seed's UTF-16 code units with h = h*31 + unit.
//
// The accumulator is an int32 and Go defines signed overflow as two's
// complement wraparound, so every step truncates to 32 bits exactly like
// the browser and serverless implementations of the same hash. Do not widen
// the accumulator: the pinned fixtures in daily_test.go depend on it.
func Hash32(seed string) int32 {
	var h int32
	for _, u := range utf16.Encode([]rune(seed)) {
		h = h*31 + int32(u)
	}
	return h
}

// SelectDailyCard deterministically picks a card and orientation for the
// given date and optional user. Identical inputs always give identical output.
func SelectDailyCard(cards []Card, date Date, userID string) (DailyCard, error) {
	if len(cards) == 0 {
		return DailyCard{}, ErrEmptyCatalog
	}

	seed := Seed(date, userID)
	h := int64(Hash32(seed))

	index := int(abs64(h) % int64(len(cards)))
	// h+1 is not truncated back to 32 bits.
	reversed := abs64(h+1)%100 < reversalThreshold

	return DailyCard{
		Card:     cards[index],
		Index:    index,
		Reversed: reversed,
		Seed:     seed,
	}, nil
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
