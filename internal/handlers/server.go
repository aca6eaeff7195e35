// internal/handlers/server.go
package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/agoniagame/agonia/internal/game"
	"github.com/agoniagame/agonia/internal/journal"
)

// MatchServer owns the single shared table and the fan-out to its clients.
// The server is authoritative: clients only ever send intents and render
// whatever snapshot comes back.
type MatchServer struct {
	Match   *game.Match
	Logger  *log.Logger
	Journal *journal.Journal
}

// NewMatchServer builds the global match and wires its broadcast and journal
// hooks.
func NewMatchServer(rs game.Ruleset, seed int64, logger *log.Logger, jrnl *journal.Journal) *MatchServer {
	srv := &MatchServer{
		Match:   game.NewMatch(rs, seed),
		Logger:  logger,
		Journal: jrnl,
	}
	srv.Match.BroadcastFn = srv.broadcastAll
	srv.Match.BroadcastToPlayerFn = srv.broadcastToPlayer
	srv.Match.LogActionFn = srv.recordAction
	return srv
}

// broadcastAll fans an event out to every connected player. Called with the
// match lock held, so the roster is read inline and the writes happen on a
// separate goroutine with per-write timeouts.
func (s *MatchServer) broadcastAll(ev game.MatchEvent) {
	conns := make([]*websocket.Conn, 0, len(s.Match.Players))
	for _, p := range s.Match.Players {
		if p.Connected && p.Conn != nil {
			conns = append(conns, p.Conn)
		}
	}
	data, err := json.Marshal(ev)
	if err != nil {
		s.Logger.Errorf("failed to marshal broadcast event %s: %v", ev.Type, err)
		return
	}
	go func() {
		for _, c := range conns {
			writeWithTimeout(c, data, s.Logger)
		}
	}()
}

// broadcastToPlayer sends an event to a single player. Same locking contract
// as broadcastAll.
func (s *MatchServer) broadcastToPlayer(playerID uuid.UUID, ev game.MatchEvent) {
	var conn *websocket.Conn
	for _, p := range s.Match.Players {
		if p.ID == playerID {
			if p.Connected && p.Conn != nil {
				conn = p.Conn
			}
			break
		}
	}
	if conn == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		s.Logger.Errorf("failed to marshal private event %s for %s: %v", ev.Type, playerID, err)
		return
	}
	go writeWithTimeout(conn, data, s.Logger)
}

// recordAction forwards an applied action to the journal off the intent
// path. Journal failures are logged and never block play.
func (s *MatchServer) recordAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	if s.Journal == nil {
		return
	}
	matchID := s.Match.ID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.Journal.Record(ctx, matchID, actorID, actionType, payload); err != nil {
			s.Logger.Warnf("journal record failed: %v", err)
		}
	}()
}

func writeWithTimeout(c *websocket.Conn, data []byte, logger *log.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Write(ctx, websocket.MessageText, data); err != nil {
		logger.Warnf("websocket write failed: %v", err)
	}
}
