// internal/game/deck.go
package game

import (
	"math/rand"

	"github.com/agoniagame/agonia/internal/models"
)

// Deck is the face-down draw pool, treated as a stack (draw from the end).
// All randomness flows through the injected *rand.Rand so tests can seed a
// deterministic source and assert exact deal outcomes.
type Deck struct {
	cards []*models.Card
	rng   *rand.Rand
}

// NewDeck returns an empty deck bound to the given randomness source.
func NewDeck(rng *rand.Rand) *Deck {
	return &Deck{rng: rng}
}

// Build fills the deck with deckCount concatenated 52-card sets and shuffles.
func (d *Deck) Build(deckCount int) {
	d.cards = make([]*models.Card, 0, deckCount*52)
	for i := 0; i < deckCount; i++ {
		for _, suit := range models.Suits {
			for _, rank := range models.Ranks {
				d.cards = append(d.cards, models.NewCard(rank, suit))
			}
		}
	}
	d.shuffle()
}

func (d *Deck) shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes and returns the top card. Callers must reshuffle from the
// discard pile before retrying on ErrEmptyDeck.
func (d *Deck) Draw() (*models.Card, error) {
	if len(d.cards) == 0 {
		return nil, ErrEmptyDeck
	}
	c := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return c, nil
}

// Push returns a card to the top of the deck. Used when the opening discard
// must be redrawn.
func (d *Deck) Push(c *models.Card) {
	d.cards = append(d.cards, c)
}

// Size returns the number of cards remaining.
func (d *Deck) Size() int {
	return len(d.cards)
}

// ReshuffleFromDiscard sets the discard pile's top card aside, shuffles the
// remainder into the deck, and returns the new discard pile holding only the
// set-aside card. With one card or fewer it is a no-op and the caller must
// treat a still-empty deck as "no cards available" for that draw.
func (d *Deck) ReshuffleFromDiscard(discard []*models.Card) []*models.Card {
	if len(discard) <= 1 {
		return discard
	}
	top := discard[len(discard)-1]
	d.cards = append(d.cards, discard[:len(discard)-1]...)
	d.shuffle()
	return []*models.Card{top}
}
