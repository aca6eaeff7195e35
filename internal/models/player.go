// internal/models/player.go
package models

import (
	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// Player is one connected participant at the table. The ID is the stable
// session identity assigned by the transport on first connect; it survives
// reconnects but not an explicit removal from the match.
type Player struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Hand []*Card   `json:"hand"`

	// Score is the cumulative penalty total across rounds. Burns counts how
	// many times the player was capped under the burn ruleset.
	Score int `json:"score"`
	Burns int `json:"burns"`

	// HasDrawn gates the once-per-turn voluntary draw. Reset whenever the
	// turn cursor actually moves.
	HasDrawn bool `json:"-"`

	// Seated is false for players who joined mid-round; they spectate until
	// the next round is dealt.
	Seated bool `json:"-"`

	Connected bool            `json:"connected"`
	Conn      *websocket.Conn `json:"-"`
}

// HandSize is a convenience for snapshot building.
func (p *Player) HandSize() int {
	return len(p.Hand)
}
