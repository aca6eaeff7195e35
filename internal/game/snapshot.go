// internal/game/snapshot.go
package game

import (
	"github.com/agoniagame/agonia/internal/models"
	"github.com/google/uuid"
)

// RosterEntry is the public view of one player: no hand contents, only the
// count. Other players' hands are never revealed.
type RosterEntry struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	HandCount int       `json:"handCount"`
	Score     int       `json:"score"`
	Burns     int       `json:"burns,omitempty"`
	Connected bool      `json:"connected"`
	Seated    bool      `json:"seated"`
}

// Snapshot is the per-recipient table view pushed on every state change.
type Snapshot struct {
	Phase           Phase         `json:"phase"`
	Round           int           `json:"round"`
	Players         []RosterEntry `json:"players"`
	TopCard         *models.Card  `json:"topCard,omitempty"`
	PendingDraw     int           `json:"pendingDraw"`
	Obligation      string        `json:"obligation,omitempty"`
	ActiveSuit      string        `json:"activeSuit,omitempty"`
	Direction       int           `json:"direction"`
	DeckSize        int           `json:"deckSize"`
	CurrentPlayerID uuid.UUID     `json:"currentPlayerId"`

	// Recipient-private fields.
	MyHand   []*models.Card `json:"myHand"`
	IsMyTurn bool           `json:"isMyTurn"`
	HasDrawn bool           `json:"hasDrawn"`
}

// snapshotFor builds the view of the table for one recipient. Assumes the
// lock is held.
func (m *Match) snapshotFor(playerID uuid.UUID) Snapshot {
	snap := Snapshot{
		Phase:           m.Phase,
		Round:           m.Round,
		TopCard:         m.topCard(),
		PendingDraw:     m.PendingDraw,
		Obligation:      m.Obligation,
		ActiveSuit:      m.ActiveSuit,
		Direction:       m.Direction,
		DeckSize:        m.deck.Size(),
		CurrentPlayerID: m.currentPlayerID(),
	}
	for _, p := range m.Players {
		snap.Players = append(snap.Players, RosterEntry{
			ID:        p.ID,
			Name:      p.Name,
			HandCount: p.HandSize(),
			Score:     p.Score,
			Burns:     p.Burns,
			Connected: p.Connected,
			Seated:    p.Seated,
		})
		if p.ID == playerID {
			snap.MyHand = p.Hand
			snap.IsMyTurn = m.currentPlayerID() == playerID && m.Phase == PhaseInRound
			snap.HasDrawn = p.HasDrawn
		}
	}
	return snap
}
