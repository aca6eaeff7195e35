// internal/handlers/match_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/agoniagame/agonia/internal/auth"
	"github.com/agoniagame/agonia/internal/game"
)

// IntentMessage is every inbound client message. The sender's identity is
// never part of the payload; it comes from the session bound to the
// delivering connection.
type IntentMessage struct {
	Type string `json:"type"`

	// Name accompanies a join intent; blank gets a default.
	Name string `json:"name,omitempty"`

	// CardIndex and DeclaredSuit accompany play_card. DeclaredSuit is only
	// meaningful when the played card is an Ace.
	CardIndex    int    `json:"cardIndex"`
	DeclaredSuit string `json:"declaredSuit,omitempty"`
}

// MatchWSHandler upgrades the connection, binds it to a session identity,
// seats the player at the global table, and runs the intent read loop until
// the connection drops.
func MatchWSHandler(logger *logrus.Logger, srv *MatchServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Session cookie must be set before the upgrade writes the response.
		playerID, err := auth.EnsureSession(w, r)
		if err != nil {
			logger.Warnf("session setup failed: %v", err)
			http.Error(w, "session setup failed", http.StatusInternalServerError)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"agonia"},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "internal error")

		if c.Subprotocol() != "agonia" {
			c.Close(websocket.StatusPolicyViolation, "client must use the 'agonia' subprotocol")
			return
		}
		logger.Infof("player %s connected from %s", playerID, r.RemoteAddr)

		m := srv.Match
		m.Mu.Lock()
		p := m.Join(playerID, "")
		p.Conn = c
		m.SendSnapshot(playerID)
		m.Mu.Unlock()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		readIntents(ctx, c, srv, playerID, logger)

		logger.Infof("player %s read loop exited", playerID)
		m.Mu.Lock()
		m.HandleDisconnect(playerID)
		m.Mu.Unlock()
	}
}

// readIntents decodes client messages and applies them to the match one at a
// time under its lock, so intents run to completion even when many
// connections deliver concurrently.
func readIntents(ctx context.Context, c *websocket.Conn, srv *MatchServer, playerID uuid.UUID, logger *logrus.Logger) {
	m := srv.Match
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Infof("websocket closed normally for player %s", playerID)
			} else if !strings.Contains(err.Error(), "context canceled") {
				logger.Warnf("websocket read error for player %s: %v", playerID, err)
			}
			return
		}
		if msgType != websocket.MessageText {
			continue
		}

		var msg IntentMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("invalid JSON from player %s: %v", playerID, err)
			sendWsError(c, "invalid JSON")
			continue
		}
		logger.Debugf("intent %q from player %s", msg.Type, playerID)

		if msg.Type == "ping" {
			sendWsMessage(c, map[string]string{"type": "pong"})
			continue
		}

		m.Mu.Lock()
		var intentErr error
		switch msg.Type {
		case "join":
			m.Join(playerID, msg.Name)
		case "start":
			intentErr = m.RequestStart(playerID)
		case "play_card":
			intentErr = m.PlayCard(playerID, msg.CardIndex, msg.DeclaredSuit)
		case "draw_card":
			intentErr = m.DrawCard(playerID)
		case "pass_turn":
			intentErr = m.PassTurn(playerID)
		default:
			intentErr = game.ErrInvalidMove
		}
		if intentErr != nil {
			srv.rejectIntent(playerID, intentErr)
		}
		m.Mu.Unlock()

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// rejectIntent surfaces a rejection to the acting player only. Out-of-order
// intents are dropped silently so turn information never leaks to the wrong
// client. Called with the match lock held.
func (s *MatchServer) rejectIntent(playerID uuid.UUID, err error) {
	switch {
	case errors.Is(err, game.ErrNotYourTurn):
		// Stale intent; no response at all.
	case errors.Is(err, game.ErrInvalidMove):
		s.broadcastToPlayer(playerID, game.MatchEvent{Type: game.EventInvalidMove})
	default:
		s.broadcastToPlayer(playerID, game.MatchEvent{
			Type:    game.EventNotification,
			Message: err.Error(),
		})
	}
}

func sendWsMessage(c *websocket.Conn, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = c.Write(ctx, websocket.MessageText, data)
}

func sendWsError(c *websocket.Conn, msg string) {
	sendWsMessage(c, map[string]interface{}{"type": "error", "message": msg})
}
