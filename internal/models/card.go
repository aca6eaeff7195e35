// internal/models/card.go
package models

import "github.com/google/uuid"

// Suit constants use single-letter encoding: Hearts, Diamonds, Clubs, Spades.
const (
	SuitHearts   = "H"
	SuitDiamonds = "D"
	SuitClubs    = "C"
	SuitSpades   = "S"
)

// Card colors derived from suit.
const (
	ColorRed   = "red"
	ColorBlack = "black"
)

// Suits lists the four suits in a stable order, used when building decks.
var Suits = []string{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades}

// Ranks lists the thirteen ranks in a stable order, used when building decks.
var Ranks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// Card is an immutable playing card. ID gives each physical card a stable
// identity even though two decks may contain the same rank/suit pair.
type Card struct {
	ID   uuid.UUID `json:"id"`
	Rank string    `json:"rank"`
	Suit string    `json:"suit"`
}

// NewCard mints a card with a fresh identity.
func NewCard(rank, suit string) *Card {
	id, _ := uuid.NewRandom()
	return &Card{ID: id, Rank: rank, Suit: suit}
}

// Color returns "red" for hearts/diamonds and "black" for clubs/spades.
func (c *Card) Color() string {
	if c.Suit == SuitHearts || c.Suit == SuitDiamonds {
		return ColorRed
	}
	return ColorBlack
}

// ValidSuit reports whether s names one of the four suits.
func ValidSuit(s string) bool {
	for _, suit := range Suits {
		if s == suit {
			return true
		}
	}
	return false
}

func (c *Card) String() string {
	return c.Rank + c.Suit
}
