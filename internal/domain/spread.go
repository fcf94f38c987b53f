package domain

// RNG abstracts random number generation for deterministic testing.
type RNG interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

// MaxDrawCount caps the size of a spread.
const MaxDrawCount = 10

// DrawCards shuffles a copy of cards and returns the first count of them.
// A count larger than the catalog yields the whole catalog shuffled.
// Positions are 1-based. When allowReversed is set each card is reversed
// with the same 22% chance the daily card uses; otherwise all are upright.
// Unlike SelectDailyCard the result is only as reproducible as rng.
func DrawCards(cards []Card, count int, allowReversed bool, rng RNG) ([]DrawnCard, error) {
	if len(cards) == 0 {
		return nil, ErrEmptyCatalog
	}
	if count < 1 || count > MaxDrawCount {
		return nil, ErrInvalidCount
	}
	count = min(count, len(cards))

	// Fisher-Yates over indices so the caller's slice is never reordered.
	indices := make([]int, len(cards))
	for i := range indices {
		indices[i] = i
	}
	for i := len(indices) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		indices[i], indices[j] = indices[j], indices[i]
	}

	drawn := make([]DrawnCard, count)
	for i := range count {
		reversed := false
		if allowReversed {
			reversed = rng.Intn(100) < reversalThreshold
		}
		drawn[i] = DrawnCard{
			Card:     cards[indices[i]],
			Position: i + 1,
			Reversed: reversed,
		}
	}
	return drawn, nil
}
