// internal/game/errors.go
package game

import "errors"

// Intent rejection taxonomy. None of these are fatal: every rejection leaves
// the match state untouched and control returns to the next intent.
var (
	// ErrNotYourTurn marks a stale or out-of-order intent. The adapter drops
	// it silently rather than surfacing it to the wrong client.
	ErrNotYourTurn = errors.New("not your turn")

	// ErrInvalidMove covers illegal plays and malformed intents (bad hand
	// indices, unknown cards). Surfaced to the actor only.
	ErrInvalidMove = errors.New("invalid move")

	ErrEmptyDeck          = errors.New("no cards left to draw")
	ErrAlreadyDrawn       = errors.New("already drew a card this turn")
	ErrMustDrawBeforePass = errors.New("draw a card before passing")

	ErrInsufficientPlayers = errors.New("not enough players")
	ErrMatchInProgress     = errors.New("match already in progress")
	ErrMatchAbandoned      = errors.New("match abandoned")
)
