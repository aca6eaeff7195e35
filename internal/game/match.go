// internal/game/match.go
package game

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/agoniagame/agonia/internal/models"
	"github.com/google/uuid"
)

// Phase is the match lifecycle state.
type Phase string

const (
	PhaseIdle      Phase = "idle"       // no round running, accepting joins
	PhaseDealing   Phase = "dealing"    // cards being distributed; intents rejected
	PhaseInRound   Phase = "in_round"   // turns proceeding
	PhaseRoundEnd  Phase = "round_end"  // scores applied, next round scheduled
	PhaseMatchOver Phase = "match_over" // threshold crossed; restart returns to Idle
)

// MinPlayers is the seated count required to start or continue a round.
const MinPlayers = 2

// Match holds the entire state of the single shared table. Every mutation
// happens under Mu: the websocket adapter locks per decoded intent and timer
// callbacks re-acquire the lock, so intents run to completion one at a time
// no matter how many connections deliver them.
type Match struct {
	ID    uuid.UUID
	Rules Ruleset

	Mu sync.Mutex

	Phase   Phase
	Players []*models.Player // join order; may include unseated spectators

	// Seating for the round in progress. Order is fixed at round start and
	// only ever shrinks on disconnect. Order[TurnIndex] is the player
	// authorized to act; the cursor is always normalized non-negative.
	Order     []uuid.UUID
	TurnIndex int
	Direction int // +1 or -1

	deck    *Deck
	Discard []*models.Card

	// Penalty obligation. Nonzero PendingDraw implies Obligation is set.
	PendingDraw int
	Obligation  string

	// ActiveSuit is the wild-declared suit overriding the top card's own
	// suit for matching, empty when none is in force.
	ActiveSuit string

	Round     int
	History   []RoundResult
	startSeat int // rotates each round, reset on a new match

	rng *rand.Rand

	// Deferred phase transitions. roundEpoch guards against stale timer
	// fires after an abandon or manual restart.
	dealTimer    *time.Timer
	dealStep     int
	restartTimer *time.Timer
	roundEpoch   int

	joinCounter int
	actionIndex int

	// BroadcastFn sends an event to every connected player. If nil, no
	// broadcast is done.
	BroadcastFn func(ev MatchEvent)

	// BroadcastToPlayerFn sends an event to a single player.
	BroadcastToPlayerFn func(playerID uuid.UUID, ev MatchEvent)

	// LogActionFn, when set, receives every applied action for the journal.
	LogActionFn func(actorID uuid.UUID, actionType string, payload map[string]interface{})
}

// NewMatch builds an empty table under the given ruleset. The seed feeds the
// match's randomness source; tests pass a fixed value for exact deals.
func NewMatch(rs Ruleset, seed int64) *Match {
	id, _ := uuid.NewRandom()
	rng := rand.New(rand.NewSource(seed))
	return &Match{
		ID:        id,
		Rules:     rs,
		Phase:     PhaseIdle,
		Direction: 1,
		rng:       rng,
		deck:      NewDeck(rng),
	}
}

// ----- roster -----

// Join registers a player, or re-binds a returning session to its seat. New
// players arriving mid-round spectate until the next deal. Assumes the lock
// is held by the caller.
func (m *Match) Join(playerID uuid.UUID, name string) *models.Player {
	if p := m.playerByID(playerID); p != nil {
		p.Connected = true
		if name != "" {
			p.Name = name
		}
		log.Printf("match %s: player %s rejoined", m.ID, playerID)
		m.logAction(playerID, "player_rejoin", nil)
		m.firePlayerCount()
		return p
	}
	m.joinCounter++
	if name == "" {
		name = fmt.Sprintf("Player %d", m.joinCounter)
	}
	p := &models.Player{
		ID:        playerID,
		Name:      name,
		Hand:      []*models.Card{},
		Seated:    m.Phase == PhaseIdle,
		Connected: true,
	}
	m.Players = append(m.Players, p)
	log.Printf("match %s: player %s (%q) joined, %d at table", m.ID, playerID, name, len(m.Players))
	m.logAction(playerID, "player_join", map[string]interface{}{"name": name})
	m.firePlayerCount()
	if m.Phase != PhaseIdle {
		m.fireEventToPlayer(playerID, MatchEvent{
			Type:    EventNotification,
			Message: "A round is in progress. You will be dealt in next round.",
		})
		m.sendSnapshot(playerID)
	}
	return p
}

// HandleDisconnect removes a player from the live roster immediately. If the
// round in progress drops below the minimum seated count it is abandoned —
// an explicit transition back to Idle, never a stale order referencing a
// departed seat. Assumes the lock is held.
func (m *Match) HandleDisconnect(playerID uuid.UUID) {
	idx := -1
	for i, p := range m.Players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}
	log.Printf("match %s: player %s disconnected", m.ID, playerID)
	m.logAction(playerID, "player_disconnect", nil)
	m.Players = append(m.Players[:idx], m.Players[idx+1:]...)
	m.removeFromOrder(playerID)
	m.firePlayerCount()

	switch m.Phase {
	case PhaseDealing, PhaseInRound:
		if len(m.Order) < MinPlayers {
			m.abandon()
			return
		}
		m.broadcastSnapshots()
	case PhaseRoundEnd:
		if m.seatedCount() < MinPlayers {
			// Skip the scheduled auto-start; the table cannot continue.
			m.abandon()
		}
	}
}

// removeFromOrder shrinks the seating order and keeps the turn cursor on the
// player who should act next. Assumes the lock is held.
func (m *Match) removeFromOrder(playerID uuid.UUID) {
	pos := -1
	for i, id := range m.Order {
		if id == playerID {
			pos = i
			break
		}
	}
	if pos == -1 {
		return
	}
	wasCurrent := pos == m.TurnIndex
	m.Order = append(m.Order[:pos], m.Order[pos+1:]...)
	if len(m.Order) == 0 {
		m.TurnIndex = 0
		return
	}
	if pos < m.TurnIndex {
		m.TurnIndex--
	}
	if wasCurrent && m.Direction < 0 {
		// For +1 the slot now holds the natural successor already.
		m.TurnIndex--
	}
	m.TurnIndex = ((m.TurnIndex % len(m.Order)) + len(m.Order)) % len(m.Order)
	if wasCurrent {
		m.clearDrawFlags()
	}
}

// ----- round lifecycle -----

// RequestStart begins a round. Valid from Idle and RoundEnd with at least
// two seated players; from MatchOver it first resets to a fresh match.
// Assumes the lock is held.
func (m *Match) RequestStart(playerID uuid.UUID) error {
	switch m.Phase {
	case PhaseIdle, PhaseRoundEnd:
	case PhaseMatchOver:
		m.resetMatch()
	default:
		return ErrMatchInProgress
	}
	if m.connectedCount() < MinPlayers {
		return ErrInsufficientPlayers
	}
	m.logAction(playerID, "round_start_request", nil)
	m.startRound()
	return nil
}

// resetMatch clears cumulative state for an explicit new match.
// Assumes the lock is held.
func (m *Match) resetMatch() {
	for _, p := range m.Players {
		p.Score = 0
		p.Burns = 0
	}
	m.History = nil
	m.Round = 0
	m.startSeat = 0
	m.Phase = PhaseIdle
}

// startRound transitions to Dealing: fresh deck, fixed seating (rotated one
// seat per round), then card-per-tick distribution. Assumes the lock is held.
func (m *Match) startRound() {
	m.cancelTimers()
	m.roundEpoch++
	m.Round++
	m.Phase = PhaseDealing
	m.Direction = 1
	m.PendingDraw = 0
	m.Obligation = ""
	m.ActiveSuit = ""
	m.Discard = nil
	m.dealStep = 0

	m.deck.Build(m.Rules.DeckCount)

	// Everyone connected is seated for the new round; spectators deal in.
	m.Order = m.Order[:0]
	for _, p := range m.Players {
		p.Seated = true
		p.Hand = p.Hand[:0]
		p.HasDrawn = false
		m.Order = append(m.Order, p.ID)
	}
	// Rotate the opening seat so a different player leads each round.
	if n := len(m.Order); n > 0 {
		rot := m.startSeat % n
		m.Order = append(m.Order[rot:], m.Order[:rot]...)
		m.startSeat++
	}
	m.TurnIndex = 0

	log.Printf("match %s: round %d dealing to %d players", m.ID, m.Round, len(m.Order))
	m.logAction(uuid.Nil, "round_start", map[string]interface{}{"round": m.Round, "players": len(m.Order)})
	m.scheduleDealTick()
}

// scheduleDealTick arms the timer for the next one-card-per-player step.
// Assumes the lock is held.
func (m *Match) scheduleDealTick() {
	epoch := m.roundEpoch
	delay := time.Duration(m.Rules.DealTickMs) * time.Millisecond
	m.dealTimer = time.AfterFunc(delay, func() {
		m.Mu.Lock()
		defer m.Mu.Unlock()
		if m.roundEpoch != epoch || m.Phase != PhaseDealing {
			return
		}
		m.dealTick()
	})
}

// dealTick hands one card to each seated player, then either re-arms the
// timer or flips the opening card. Assumes the lock is held.
func (m *Match) dealTick() {
	for _, id := range m.Order {
		p := m.playerByID(id)
		if p == nil {
			continue
		}
		card, err := m.deck.Draw()
		if err != nil {
			log.Printf("match %s: deck exhausted mid-deal", m.ID)
			continue
		}
		p.Hand = append(p.Hand, card)
		m.fireEventToPlayer(id, MatchEvent{Type: EventDealCard, Card: card})
	}
	m.dealStep++
	if m.dealStep < m.Rules.HandSize {
		m.scheduleDealTick()
		return
	}
	m.finishDealing()
}

// finishDealing reveals the opening discard. An opener that would itself
// incur the top penalty obligation (the black Jack) is shuffled back in and
// redrawn. The opener's own effect then flows through the same application
// path as a normal play, attributed to no actor. Assumes the lock is held.
func (m *Match) finishDealing() {
	for {
		card, err := m.deck.Draw()
		if err != nil {
			// Cannot happen with sane configs; abandon rather than wedge.
			log.Printf("match %s: no opener available, abandoning", m.ID)
			m.abandon()
			return
		}
		if card.Rank == "J" && card.Color() == models.ColorBlack {
			m.deck.Push(card)
			m.deck.shuffle()
			continue
		}
		m.Discard = append(m.Discard, card)
		break
	}

	m.Phase = PhaseInRound
	opener := m.topCard()
	log.Printf("match %s: round %d open with %s", m.ID, m.Round, opener)
	m.logAction(uuid.Nil, "round_open", map[string]interface{}{"card": opener.String()})

	eff := m.effectForCard(opener, uuid.Nil)
	m.applyOpeningEffect(eff)

	m.fireEvent(MatchEvent{Type: EventGameReady, Card: opener})
	m.broadcastSnapshots()
}

// applyOpeningEffect applies the opener's effect with no acting player: the
// first seat keeps the turn unless the opener skips or replays over it.
// Assumes the lock is held.
func (m *Match) applyOpeningEffect(eff *Effect) {
	if eff.AddPenalty > 0 {
		m.PendingDraw += eff.AddPenalty
		m.Obligation = eff.ObligationRank
	}
	if eff.Reverse {
		m.Direction = -m.Direction
	}
	if eff.SkipSteps > 0 && !eff.Replay {
		m.advanceTurn(eff.SkipSteps)
	}
	// An opening Ace carries no declaration; its own suit is already the
	// effective suit.
}

// ----- intents -----

// PlayCard validates and applies a play intent. Assumes the lock is held.
func (m *Match) PlayCard(playerID uuid.UUID, cardIndex int, declaredSuit string) error {
	eff, err := EvaluatePlay(m, playerID, cardIndex, declaredSuit)
	if err != nil {
		return err
	}
	m.apply(eff)
	return nil
}

// apply consumes a validated effect: moves the card to the discard, updates
// penalty and suit state, resolves immediate draws, checks round end, then
// advances or holds the turn per the effect's policy. Assumes the lock is
// held.
func (m *Match) apply(eff *Effect) {
	p := m.playerByID(eff.Player)
	if p == nil {
		return
	}
	card := eff.Card
	p.Hand = append(p.Hand[:eff.HandIndex], p.Hand[eff.HandIndex+1:]...)
	m.Discard = append(m.Discard, card)
	m.ActiveSuit = eff.DeclaredSuit

	if eff.ClearsObligation {
		if m.PendingDraw > 0 {
			m.fireEvent(MatchEvent{
				Type:    EventNotification,
				Message: fmt.Sprintf("%s cancelled the penalty stack", p.Name),
			})
		}
		m.PendingDraw = 0
		m.Obligation = ""
	}
	if eff.AddPenalty > 0 {
		m.PendingDraw += eff.AddPenalty
		m.Obligation = eff.ObligationRank
	}
	if eff.PunishPreviousDraw > 0 {
		if prev := m.playerAtOffset(-1); prev != nil && prev.ID != p.ID {
			n := m.drawToHand(prev, eff.PunishPreviousDraw)
			m.fireEventToPlayer(prev.ID, MatchEvent{
				Type:    EventNotification,
				Message: fmt.Sprintf("You drew %d card(s)", n),
				Count:   n,
			})
		}
	}

	m.logAction(p.ID, "play_card", map[string]interface{}{
		"card": card.String(), "round": m.Round, "pendingDraw": m.PendingDraw,
	})

	if len(p.Hand) == 0 {
		m.endRound(p, eff)
		return
	}

	if eff.Reverse {
		m.Direction = -m.Direction
	}
	if eff.Replay {
		m.fireEventToPlayer(p.ID, MatchEvent{Type: EventNotification, Message: "Play again!"})
	} else {
		m.advanceTurn(1 + eff.SkipSteps)
	}
	m.broadcastSnapshots()
}

// DrawCard resolves a draw intent. With an obligation pending the player
// draws the whole stack and keeps the turn; otherwise a voluntary draw is
// allowed once per held turn. Assumes the lock is held.
func (m *Match) DrawCard(playerID uuid.UUID) error {
	if m.Phase != PhaseInRound {
		return ErrInvalidMove
	}
	if m.currentPlayerID() != playerID {
		return ErrNotYourTurn
	}
	p := m.playerByID(playerID)
	if p == nil {
		return ErrNotYourTurn
	}

	if m.PendingDraw > 0 {
		count := m.drawToHand(p, m.PendingDraw)
		m.PendingDraw = 0
		m.Obligation = ""
		p.HasDrawn = true
		m.logAction(playerID, "draw_penalty", map[string]interface{}{"count": count})
		m.fireEventToPlayer(playerID, MatchEvent{
			Type:    EventNotification,
			Message: fmt.Sprintf("You drew %d card(s)!", count),
			Count:   count,
		})
		// The turn holds: the player may now attempt a play or pass.
		m.broadcastSnapshots()
		return nil
	}

	if p.HasDrawn {
		return ErrAlreadyDrawn
	}
	count := m.drawToHand(p, 1)
	p.HasDrawn = true
	if count == 0 {
		// Deck and discard are both dry; the draw yields nothing but the
		// player is unblocked for passing.
		m.broadcastSnapshots()
		return ErrEmptyDeck
	}
	m.logAction(playerID, "draw_card", nil)
	m.fireEventToPlayer(playerID, MatchEvent{
		Type:    EventNotification,
		Message: "You drew 1 card",
		Count:   count,
	})
	if m.Rules.DrawEndsTurn {
		m.advanceTurn(1)
	}
	m.broadcastSnapshots()
	return nil
}

// PassTurn resolves a pass intent. Assumes the lock is held.
func (m *Match) PassTurn(playerID uuid.UUID) error {
	if m.Phase != PhaseInRound {
		return ErrInvalidMove
	}
	if m.currentPlayerID() != playerID {
		return ErrNotYourTurn
	}
	if m.PendingDraw > 0 {
		return ErrInvalidMove
	}
	p := m.playerByID(playerID)
	if p == nil {
		return ErrNotYourTurn
	}
	if m.Rules.MustDrawBeforePass && !p.HasDrawn {
		return ErrMustDrawBeforePass
	}
	m.logAction(playerID, "pass_turn", nil)
	m.advanceTurn(1)
	m.broadcastSnapshots()
	return nil
}

// ----- round end / match end -----

// endRound fires the instant a hand empties. The closer takes no score;
// everyone else is charged their remaining hand value. A close whose effect
// would have targeted the next seat lands as an immediate punitive draw on
// that seat before scores are tallied. Assumes the lock is held.
func (m *Match) endRound(closer *models.Player, closingEff *Effect) {
	m.Phase = PhaseRoundEnd
	closingCard := closingEff.Card
	log.Printf("match %s: round %d closed by %s with %s", m.ID, m.Round, closer.ID, closingCard)

	if closingEff.AddPenalty > 0 {
		if target := m.playerAtOffset(1); target != nil && target.ID != closer.ID {
			n := m.drawToHand(target, closingEff.AddPenalty)
			m.fireEvent(MatchEvent{
				Type:    EventNotification,
				Message: fmt.Sprintf("%s closed with a penalty card: %s draws %d", closer.Name, target.Name, n),
			})
		}
	}

	result := RoundResult{Round: m.Round}
	bonus := 0
	if m.Rules.ClosingAceBonus && closingCard.Rank == "A" {
		bonus = ClosingAceBonusValue
	}
	for _, id := range m.Order {
		p := m.playerByID(id)
		if p == nil {
			continue
		}
		if p.ID == closer.ID {
			result.Entries = append(result.Entries, RoundEntry{PlayerID: p.ID, Name: p.Name, Winner: true})
			continue
		}
		score := HandValue(p.Hand, m.Rules) + bonus
		p.Score += score
		result.Entries = append(result.Entries, RoundEntry{PlayerID: p.ID, Name: p.Name, Score: score})
	}
	m.History = append(m.History, result)
	m.logAction(closer.ID, "round_end", map[string]interface{}{"round": m.Round})

	m.PendingDraw = 0
	m.Obligation = ""
	m.ActiveSuit = ""

	m.fireEvent(MatchEvent{Type: EventUpdateScoreboard, History: m.History})
	m.broadcastSnapshots()

	if m.checkMatchOver() {
		return
	}
	m.scheduleNextRound()
}

// checkMatchOver applies the threshold policy: hard stop, or the burn
// variant that caps over-threshold players to the lowest safe total and
// plays on. Exactly one of the two is active. Assumes the lock is held.
func (m *Match) checkMatchOver() bool {
	limit := m.Rules.ScoreLimit
	over := false
	for _, p := range m.seatedPlayers() {
		if p.Score >= limit {
			over = true
			break
		}
	}
	if !over {
		return false
	}

	if m.Rules.BurnEnabled {
		// Burned players drop to the worst total that is still under the
		// limit, tying them with the lowest-ranked safe player.
		capTo := -1
		for _, p := range m.seatedPlayers() {
			if p.Score < limit && p.Score > capTo {
				capTo = p.Score
			}
		}
		if capTo >= 0 {
			for _, p := range m.seatedPlayers() {
				if p.Score >= limit {
					log.Printf("match %s: burning %s from %d to %d", m.ID, p.ID, p.Score, capTo)
					p.Score = capTo
					p.Burns++
					m.fireEvent(MatchEvent{
						Type:    EventNotification,
						Message: fmt.Sprintf("%s burned! Score capped at %d", p.Name, capTo),
					})
				}
			}
			m.logAction(uuid.Nil, "burn_applied", nil)
			return false
		}
		// No safe total left to cap down to; the match has to end.
	}

	m.Phase = PhaseMatchOver
	standings := ComputeStandings(m.seatedPlayers())
	log.Printf("match %s: over after round %d", m.ID, m.Round)
	m.logAction(uuid.Nil, "match_over", map[string]interface{}{"rounds": m.Round})
	m.fireEvent(MatchEvent{Type: EventGameOver, Standings: standings, History: m.History})
	return true
}

// scheduleNextRound arms the intermission timer so players can read the
// scoreboard before the next deal. Abandonment cancels it via the epoch
// guard. Assumes the lock is held.
func (m *Match) scheduleNextRound() {
	epoch := m.roundEpoch
	delay := time.Duration(m.Rules.RestartDelaySec) * time.Second
	m.restartTimer = time.AfterFunc(delay, func() {
		m.Mu.Lock()
		defer m.Mu.Unlock()
		if m.roundEpoch != epoch || m.Phase != PhaseRoundEnd {
			return
		}
		if m.connectedCount() < MinPlayers {
			m.abandon()
			return
		}
		m.startRound()
	})
}

// abandon force-ends the match when it cannot continue. Remaining players
// are told, every pending transition is cancelled, and the table returns to
// Idle as a fresh match. Assumes the lock is held.
func (m *Match) abandon() {
	log.Printf("match %s: abandoned in phase %s", m.ID, m.Phase)
	m.cancelTimers()
	m.roundEpoch++
	m.logAction(uuid.Nil, "match_abandoned", nil)
	m.fireEvent(MatchEvent{Type: EventGameEndedForced, Message: ErrMatchAbandoned.Error()})

	for _, p := range m.Players {
		p.Hand = p.Hand[:0]
		p.HasDrawn = false
		p.Seated = true
	}
	m.Order = m.Order[:0]
	m.Discard = nil
	m.PendingDraw = 0
	m.Obligation = ""
	m.ActiveSuit = ""
	m.resetMatch()
	m.broadcastSnapshots()
}

// cancelTimers stops every pending deferred transition. Assumes the lock is
// held.
func (m *Match) cancelTimers() {
	if m.dealTimer != nil {
		m.dealTimer.Stop()
		m.dealTimer = nil
	}
	if m.restartTimer != nil {
		m.restartTimer.Stop()
		m.restartTimer = nil
	}
}

// ----- turn cursor -----

// advanceTurn moves the cursor steps seats in the current direction, modulo
// the (possibly shrunken) order length, normalized non-negative. Every
// player's once-per-turn draw flag resets whenever the cursor moves.
// Assumes the lock is held.
func (m *Match) advanceTurn(steps int) {
	n := len(m.Order)
	if n == 0 || steps == 0 {
		return
	}
	m.TurnIndex = ((m.TurnIndex+m.Direction*steps)%n + n) % n
	m.clearDrawFlags()
}

func (m *Match) clearDrawFlags() {
	for _, p := range m.Players {
		p.HasDrawn = false
	}
}

// ----- draws and lookups -----

// drawToHand moves up to n cards from the deck into the player's hand,
// reshuffling the discard pile (minus its top card) when the deck runs dry.
// Returns how many cards were actually drawn; fewer than n means no cards
// were available anywhere. Assumes the lock is held.
func (m *Match) drawToHand(p *models.Player, n int) int {
	drawn := 0
	for i := 0; i < n; i++ {
		card, err := m.deck.Draw()
		if err != nil {
			m.Discard = m.deck.ReshuffleFromDiscard(m.Discard)
			if m.deck.Size() > 0 {
				m.fireEvent(MatchEvent{Type: EventNotification, Message: "Deck reshuffled from discard pile"})
				m.logAction(uuid.Nil, "deck_reshuffle", map[string]interface{}{"size": m.deck.Size()})
			}
			card, err = m.deck.Draw()
			if err != nil {
				break
			}
		}
		p.Hand = append(p.Hand, card)
		m.fireEventToPlayer(p.ID, MatchEvent{Type: EventDealCard, Card: card})
		drawn++
	}
	return drawn
}

func (m *Match) currentPlayerID() uuid.UUID {
	if len(m.Order) == 0 || m.TurnIndex < 0 || m.TurnIndex >= len(m.Order) {
		return uuid.Nil
	}
	return m.Order[m.TurnIndex]
}

// playerAtOffset returns the player offset seats from the cursor in the
// current direction (+1 is the next to act, -1 the previous). Assumes the
// lock is held.
func (m *Match) playerAtOffset(offset int) *models.Player {
	n := len(m.Order)
	if n == 0 {
		return nil
	}
	idx := ((m.TurnIndex+m.Direction*offset)%n + n) % n
	return m.playerByID(m.Order[idx])
}

func (m *Match) playerByID(id uuid.UUID) *models.Player {
	for _, p := range m.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (m *Match) topCard() *models.Card {
	if len(m.Discard) == 0 {
		return nil
	}
	return m.Discard[len(m.Discard)-1]
}

func (m *Match) seatedPlayers() []*models.Player {
	out := make([]*models.Player, 0, len(m.Order))
	for _, id := range m.Order {
		if p := m.playerByID(id); p != nil {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return m.Players
	}
	return out
}

func (m *Match) seatedCount() int {
	count := 0
	for _, p := range m.Players {
		if p.Seated {
			count++
		}
	}
	return count
}

func (m *Match) connectedCount() int {
	count := 0
	for _, p := range m.Players {
		if p.Connected {
			count++
		}
	}
	return count
}

// ----- broadcast plumbing -----

func (m *Match) fireEvent(ev MatchEvent) {
	if m.BroadcastFn != nil {
		m.BroadcastFn(ev)
	}
}

func (m *Match) fireEventToPlayer(playerID uuid.UUID, ev MatchEvent) {
	if m.BroadcastToPlayerFn == nil {
		return
	}
	if p := m.playerByID(playerID); p != nil && p.Connected {
		m.BroadcastToPlayerFn(playerID, ev)
	}
}

func (m *Match) firePlayerCount() {
	m.fireEvent(MatchEvent{Type: EventPlayerCountUpdate, Count: len(m.Players)})
}

// broadcastSnapshots sends each connected player their own view of the
// table. Assumes the lock is held.
func (m *Match) broadcastSnapshots() {
	for _, p := range m.Players {
		if p.Connected {
			m.sendSnapshot(p.ID)
		}
	}
}

func (m *Match) sendSnapshot(playerID uuid.UUID) {
	snap := m.snapshotFor(playerID)
	m.fireEventToPlayer(playerID, MatchEvent{Type: EventUpdateUI, Snapshot: &snap})
}

// SendSnapshot pushes a fresh view to one player, e.g. right after a
// connection is (re)established. Assumes the lock is held.
func (m *Match) SendSnapshot(playerID uuid.UUID) {
	m.sendSnapshot(playerID)
}

func (m *Match) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	m.actionIndex++
	if m.LogActionFn != nil {
		m.LogActionFn(actorID, actionType, payload)
	}
}
