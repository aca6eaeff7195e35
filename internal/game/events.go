// internal/game/events.go
package game

import (
	"github.com/agoniagame/agonia/internal/models"
	"github.com/google/uuid"
)

// MatchEventType enumerates every outbound message the match can emit.
type MatchEventType string

const (
	EventPlayerCountUpdate MatchEventType = "player_count_update" // broadcast on join/leave
	EventDealCard          MatchEventType = "deal_card"           // private, one per dealt card
	EventGameReady         MatchEventType = "game_ready"          // round dealt, opening card set
	EventUpdateUI          MatchEventType = "update_ui"           // per-recipient snapshot
	EventUpdateScoreboard  MatchEventType = "update_scoreboard"   // round history after scoring
	EventNotification      MatchEventType = "notification"        // ephemeral text
	EventInvalidMove       MatchEventType = "invalid_move"        // rejected actor only
	EventGameOver          MatchEventType = "game_over"           // terminal, with standings
	EventGameEndedForced   MatchEventType = "game_ended_forced"   // abandoned below minimum players
)

// EventUser identifies a player inside an event payload.
type EventUser struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name,omitempty"`
}

// MatchEvent is the single broadcast envelope. Optional fields are set per
// event type; everything marshals straight to the client as JSON.
type MatchEvent struct {
	Type MatchEventType `json:"type"`

	User      *EventUser             `json:"user,omitempty"`
	Card      *models.Card           `json:"card,omitempty"`
	Message   string                 `json:"message,omitempty"`
	Count     int                    `json:"count,omitempty"`
	Snapshot  *Snapshot              `json:"snapshot,omitempty"`
	History   []RoundResult          `json:"history,omitempty"`
	Standings []Standing             `json:"standings,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}
