package domain_test

import (
	"errors"
	"testing"

	"github.com/kjfsoul/mystic-arcana-v3/internal/domain"
)

// sequenceRNG returns values from a pre-set sequence.
type sequenceRNG struct {
	values []int
	idx    int
}

func (r *sequenceRNG) Intn(n int) int {
	v := r.values[r.idx%len(r.values)] % n
	r.idx++
	return v
}

// identityShuffle produces the RNG values that keep the catalog order.
// Fisher-Yates swaps i with j=Intn(i+1); choosing j=i is a no-op.
func identityShuffle(n int) []int {
	values := make([]int, 0, n-1)
	for i := n - 1; i > 0; i-- {
		values = append(values, i)
	}
	return values
}

func TestDrawCards_UniqueCards(t *testing.T) {
	cards := fixtureCatalog()
	rng := &sequenceRNG{values: []int{3, 1, 4, 1, 5, 9, 2, 6}}

	drawn, err := domain.DrawCards(cards, 5, true, rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(drawn) != 5 {
		t.Fatalf("expected 5 cards, got %d", len(drawn))
	}

	seen := make(map[string]bool)
	for _, c := range drawn {
		if seen[c.ID] {
			t.Errorf("duplicate card ID: %s", c.ID)
		}
		seen[c.ID] = true
	}
}

func TestDrawCards_PositionsAndOrder(t *testing.T) {
	cards := fixtureCatalog()
	values := append(identityShuffle(len(cards)), 99, 99, 99)
	rng := &sequenceRNG{values: values}

	drawn, err := domain.DrawCards(cards, 3, true, rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, c := range drawn {
		if c.Position != i+1 {
			t.Errorf("card %d: expected position %d, got %d", i, i+1, c.Position)
		}
		if c.ID != cards[i].ID {
			t.Errorf("card %d: expected %s, got %s", i, cards[i].ID, c.ID)
		}
	}
}

func TestDrawCards_ReversalThreshold(t *testing.T) {
	cards := fixtureCatalog()
	// 21 is the last reversing roll, 22 the first upright one.
	values := append(identityShuffle(len(cards)), 0, 21, 22, 99)
	rng := &sequenceRNG{values: values}

	drawn, err := domain.DrawCards(cards, 4, true, rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []domain.Orientation{domain.Reversed, domain.Reversed, domain.Upright, domain.Upright}
	for i, c := range drawn {
		if c.Orientation() != expected[i] {
			t.Errorf("card %d: expected %s, got %s", i, expected[i], c.Orientation())
		}
	}
}

func TestDrawCards_NoReversalWhenDisallowed(t *testing.T) {
	cards := fixtureCatalog()
	rng := &sequenceRNG{values: []int{0}}

	drawn, err := domain.DrawCards(cards, 7, false, rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range drawn {
		if c.Reversed {
			t.Errorf("card %s reversed although reversal is disabled", c.ID)
		}
	}
}

func TestDrawCards_DoesNotReorderInput(t *testing.T) {
	cards := fixtureCatalog()
	rng := &sequenceRNG{values: []int{0}}

	if _, err := domain.DrawCards(cards, 3, false, rng); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, c := range fixtureCatalog() {
		if cards[i].ID != c.ID {
			t.Fatalf("input catalog was modified at %d: %s", i, cards[i].ID)
		}
	}
}

func TestDrawCards_InvalidCount(t *testing.T) {
	rng := &sequenceRNG{values: []int{0}}

	for _, n := range []int{0, -1, 11} {
		_, err := domain.DrawCards(fixtureCatalog(), n, true, rng)
		if !errors.Is(err, domain.ErrInvalidCount) {
			t.Errorf("n=%d: expected ErrInvalidCount, got %v", n, err)
		}
	}
}

func TestDrawCards_CapsAtCatalogSize(t *testing.T) {
	cards := fixtureCatalog()[:2]
	rng := &sequenceRNG{values: []int{0}}

	drawn, err := domain.DrawCards(cards, 5, true, rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(drawn) != len(cards) {
		t.Fatalf("expected %d cards, got %d", len(cards), len(drawn))
	}
	if drawn[0].ID == drawn[1].ID {
		t.Errorf("duplicate card ID: %s", drawn[0].ID)
	}
	if drawn[1].Position != 2 {
		t.Errorf("expected last position 2, got %d", drawn[1].Position)
	}
}

func TestDrawCards_EmptyCatalog(t *testing.T) {
	rng := &sequenceRNG{values: []int{0}}

	_, err := domain.DrawCards(nil, 1, true, rng)
	if !errors.Is(err, domain.ErrEmptyCatalog) {
		t.Errorf("expected ErrEmptyCatalog, got %v", err)
	}
}
