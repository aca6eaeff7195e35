// internal/game/rules.go
package game

import (
	"github.com/agoniagame/agonia/internal/models"
	"github.com/google/uuid"
)

// Effect describes everything a validated play does to the match state. The
// rule engine produces it; the state machine consumes it. Rule evaluation
// never mutates anything itself.
type Effect struct {
	Player    uuid.UUID // uuid.Nil when the opening card's effect is applied
	HandIndex int
	Card      *models.Card

	// DeclaredSuit is the active suit after the play: the Ace's declaration,
	// or empty for any non-wild card (which clears the declaration).
	DeclaredSuit string

	AddPenalty       int    // cards added to the pending draw stack
	ObligationRank   string // rank responsible for AddPenalty
	ClearsObligation bool   // cancelling rank (red Jack) zeroes the stack

	Reverse   bool // direction flips before the cursor moves
	SkipSteps int  // extra seats stepped over beyond the normal advance
	Replay    bool // turn does not advance; same player continues

	// PunishPreviousDraw forces the previous seat to draw immediately
	// (rank "2" in the punish_previous variant). No obligation is set.
	PunishPreviousDraw int
}

// Advances reports whether applying the effect moves the turn cursor.
func (e *Effect) Advances() bool {
	return !e.Replay
}

// EvaluatePlay decides whether the identified player may legally play the
// card at cardIndex, and if so what effect it triggers. Pure: the match is
// only read. The caller holds the match lock.
//
// Legality is checked in priority order: turn ownership, hand bounds, then —
// with an obligation outstanding — rank equality with the obligation and
// nothing else; otherwise rank match, effective-suit match, the Ace wild
// rules, or the always-playable cancelling red Jack.
func EvaluatePlay(m *Match, playerID uuid.UUID, cardIndex int, declaredSuit string) (*Effect, error) {
	if m.Phase != PhaseInRound {
		return nil, ErrInvalidMove
	}
	if m.currentPlayerID() != playerID {
		return nil, ErrNotYourTurn
	}
	p := m.playerByID(playerID)
	if p == nil {
		return nil, ErrNotYourTurn
	}
	if cardIndex < 0 || cardIndex >= len(p.Hand) {
		return nil, ErrInvalidMove
	}
	card := p.Hand[cardIndex]
	if declaredSuit != "" && !models.ValidSuit(declaredSuit) {
		return nil, ErrInvalidMove
	}

	top := m.topCard()
	if top == nil {
		return nil, ErrInvalidMove
	}

	if m.PendingDraw > 0 {
		// An outstanding obligation restricts legal plays to its rank. No
		// suit fallback, no wild override.
		if card.Rank != m.Obligation {
			return nil, ErrInvalidMove
		}
	} else if !playableWithoutObligation(card, top, m.ActiveSuit) {
		return nil, ErrInvalidMove
	}

	eff := m.effectForCard(card, playerID)
	eff.HandIndex = cardIndex
	eff.DeclaredSuit = declaredSuitAfterPlay(card, top, declaredSuit, m.ActiveSuit)
	return eff, nil
}

// playableWithoutObligation applies the normal-flow matching rules.
func playableWithoutObligation(card, top *models.Card, activeSuit string) bool {
	if card.Rank == "A" && top.Rank == "A" {
		// Ace-on-Ace chains only within the top Ace's suit. This precedes the
		// generic rank match, which would otherwise admit any Ace here.
		return card.Suit == top.Suit
	}
	if card.Rank == top.Rank {
		return true
	}
	effectiveSuit := top.Suit
	if activeSuit != "" {
		effectiveSuit = activeSuit
	}
	if card.Suit == effectiveSuit {
		return true
	}
	if card.Rank == "A" {
		return true
	}
	// The cancelling red Jack plays on anything.
	if card.Rank == "J" && card.Color() == models.ColorRed {
		return true
	}
	return false
}

// declaredSuitAfterPlay resolves the active suit declaration resulting from
// a play: an Ace declares (defaulting to its own suit), a same-suit
// Ace-on-Ace chain keeps any declaration already in force, and every other
// card clears it.
func declaredSuitAfterPlay(card, top *models.Card, declared, active string) string {
	if card.Rank != "A" {
		return ""
	}
	if top.Rank == "A" && active != "" {
		return active
	}
	if declared != "" {
		return declared
	}
	return card.Suit
}

// effectForCard maps a rank (and color, for Jacks) to its effect under the
// active ruleset. Also used for the opening card with player == uuid.Nil.
func (m *Match) effectForCard(card *models.Card, player uuid.UUID) *Effect {
	rs := m.Rules
	eff := &Effect{Player: player, Card: card}
	twoPlayers := len(m.Order) == 2

	switch card.Rank {
	case "8":
		eff.Replay = true
	case "7":
		eff.AddPenalty = rs.SevenPenalty
		eff.ObligationRank = "7"
	case "2":
		switch rs.TwoEffect {
		case TwoStack:
			eff.AddPenalty = rs.TwoPenalty
			eff.ObligationRank = "2"
		case TwoPunishPrevious:
			eff.PunishPreviousDraw = 1
		}
	case "J":
		if card.Color() == models.ColorBlack {
			eff.AddPenalty = rs.JackPenalty
			eff.ObligationRank = "J"
		} else {
			eff.ClearsObligation = true
		}
	case "3":
		if twoPlayers {
			eff.Replay = true
		} else {
			eff.Reverse = true
		}
	case "9":
		if twoPlayers {
			eff.Replay = true
		} else if rs.NineEffect == NineReverse {
			eff.Reverse = true
		} else {
			eff.SkipSteps = 1
		}
	}
	return eff
}
