// internal/game/match_test.go
package game

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/agoniagame/agonia/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBroadcaster collects events instead of sending them over WS.
type mockBroadcaster struct {
	mu           sync.Mutex
	allEvents    []MatchEvent
	playerEvents map[uuid.UUID][]MatchEvent
}

func newMockBroadcaster() *mockBroadcaster {
	return &mockBroadcaster{playerEvents: make(map[uuid.UUID][]MatchEvent)}
}

func (mb *mockBroadcaster) broadcastFn(ev MatchEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = append(mb.allEvents, ev)
}

func (mb *mockBroadcaster) broadcastToPlayerFn(playerID uuid.UUID, ev MatchEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.playerEvents[playerID] = append(mb.playerEvents[playerID], ev)
}

func (mb *mockBroadcaster) lastEventOfType(evType MatchEventType) *MatchEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	for i := len(mb.allEvents) - 1; i >= 0; i-- {
		if mb.allEvents[i].Type == evType {
			return &mb.allEvents[i]
		}
	}
	return nil
}

func (mb *mockBroadcaster) lastPlayerEventOfType(playerID uuid.UUID, evType MatchEventType) *MatchEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	events := mb.playerEvents[playerID]
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == evType {
			return &events[i]
		}
	}
	return nil
}

func card(rank, suit string) *models.Card {
	return models.NewCard(rank, suit)
}

// fixtureMatch builds an in-round match with the given hands dealt, a full
// deck behind it and no discard yet; tests seed the discard top themselves.
func fixtureMatch(rs Ruleset, hands ...[]*models.Card) (*Match, []*models.Player, *mockBroadcaster) {
	m := NewMatch(rs, 99)
	mb := newMockBroadcaster()
	m.BroadcastFn = mb.broadcastFn
	m.BroadcastToPlayerFn = mb.broadcastToPlayerFn
	for i, hand := range hands {
		id := uuid.New()
		p := &models.Player{
			ID:        id,
			Name:      fmt.Sprintf("Player %d", i+1),
			Hand:      hand,
			Connected: true,
			Seated:    true,
		}
		m.Players = append(m.Players, p)
		m.Order = append(m.Order, id)
	}
	m.deck.Build(rs.DeckCount)
	m.Phase = PhaseInRound
	m.Round = 1
	m.joinCounter = len(hands)
	return m, m.Players, mb
}

// totalCards counts every card in the deck, the discard and all hands.
func totalCards(m *Match) int {
	total := m.deck.Size() + len(m.Discard)
	for _, p := range m.Players {
		total += len(p.Hand)
	}
	return total
}

func phaseIs(m *Match, want Phase) func() bool {
	return func() bool {
		m.Mu.Lock()
		defer m.Mu.Unlock()
		return m.Phase == want
	}
}

func TestPlayCardMovesToDiscard(t *testing.T) {
	m, players, _ := fixtureMatch(DefaultRuleset(),
		[]*models.Card{card("5", "H"), card("K", "S")},
		[]*models.Card{card("4", "D"), card("4", "C")},
	)
	m.Discard = []*models.Card{card("5", "S")}
	before := totalCards(m)

	played := players[0].Hand[0] // 5H matches rank of 5S
	require.NoError(t, m.PlayCard(players[0].ID, 0, ""))

	assert.Equal(t, played.ID, m.topCard().ID)
	assert.Len(t, players[0].Hand, 1)
	assert.Equal(t, before, totalCards(m))
	assert.Equal(t, players[1].ID, m.currentPlayerID())
}

func TestRejectedPlayLeavesStateUnchanged(t *testing.T) {
	m, players, _ := fixtureMatch(DefaultRuleset(),
		[]*models.Card{card("4", "H"), card("K", "S")},
		[]*models.Card{card("4", "D"), card("4", "C")},
	)
	m.Discard = []*models.Card{card("9", "C")}
	m.PendingDraw = 0
	m.ActiveSuit = "D"

	handBefore := len(players[0].Hand)
	discardBefore := len(m.Discard)
	turnBefore := m.TurnIndex
	suitBefore := m.ActiveSuit

	// 4H matches neither rank 9 nor the declared suit D.
	err := m.PlayCard(players[0].ID, 0, "")
	require.ErrorIs(t, err, ErrInvalidMove)

	assert.Equal(t, handBefore, len(players[0].Hand))
	assert.Equal(t, discardBefore, len(m.Discard))
	assert.Equal(t, turnBefore, m.TurnIndex)
	assert.Equal(t, suitBefore, m.ActiveSuit)
	assert.Equal(t, 0, m.PendingDraw)
}

func TestAdvanceTurnNegativeWraps(t *testing.T) {
	m, _, _ := fixtureMatch(DefaultRuleset(),
		[]*models.Card{card("5", "H")}, []*models.Card{card("5", "D")},
		[]*models.Card{card("5", "C")}, []*models.Card{card("5", "S")},
	)
	m.Direction = -1
	m.TurnIndex = 0
	m.advanceTurn(1)
	assert.Equal(t, 3, m.TurnIndex)
}

func TestEightReplaysSamePlayer(t *testing.T) {
	m, players, mb := fixtureMatch(DefaultRuleset(),
		[]*models.Card{card("8", "H"), card("2", "S")},
		[]*models.Card{card("4", "D")},
	)
	m.Discard = []*models.Card{card("8", "C")}

	require.NoError(t, m.PlayCard(players[0].ID, 0, ""))
	assert.Equal(t, players[0].ID, m.currentPlayerID())
	ev := mb.lastPlayerEventOfType(players[0].ID, EventNotification)
	require.NotNil(t, ev)
	assert.Contains(t, ev.Message, "again")
}

func TestNineSkipsOneSeat(t *testing.T) {
	m, players, _ := fixtureMatch(DefaultRuleset(),
		[]*models.Card{card("9", "H"), card("2", "S")},
		[]*models.Card{card("4", "D")},
		[]*models.Card{card("4", "C")},
	)
	m.Discard = []*models.Card{card("9", "C")}

	require.NoError(t, m.PlayCard(players[0].ID, 0, ""))
	assert.Equal(t, players[2].ID, m.currentPlayerID())
}

func TestNineReplaysWithTwoPlayers(t *testing.T) {
	m, players, _ := fixtureMatch(DefaultRuleset(),
		[]*models.Card{card("9", "H"), card("2", "S")},
		[]*models.Card{card("4", "D")},
	)
	m.Discard = []*models.Card{card("9", "C")}

	require.NoError(t, m.PlayCard(players[0].ID, 0, ""))
	// Two players: a nine acts as a replay, not a two-step skip.
	assert.Equal(t, players[0].ID, m.currentPlayerID())
}

func TestThreeReversesDirection(t *testing.T) {
	m, players, _ := fixtureMatch(DefaultRuleset(),
		[]*models.Card{card("3", "H"), card("2", "S")},
		[]*models.Card{card("4", "D")},
		[]*models.Card{card("4", "C")},
	)
	m.Discard = []*models.Card{card("3", "C")}

	require.NoError(t, m.PlayCard(players[0].ID, 0, ""))
	assert.Equal(t, -1, m.Direction)
	assert.Equal(t, players[2].ID, m.currentPlayerID())
}

func TestSevenStacksPenalty(t *testing.T) {
	m, players, _ := fixtureMatch(DefaultRuleset(),
		[]*models.Card{card("7", "H"), card("2", "S")},
		[]*models.Card{card("7", "D"), card("4", "D")},
		[]*models.Card{card("4", "C")},
	)
	m.Discard = []*models.Card{card("7", "C")}

	require.NoError(t, m.PlayCard(players[0].ID, 0, ""))
	assert.Equal(t, 2, m.PendingDraw)
	assert.Equal(t, "7", m.Obligation)

	// Next player counters with their own seven: the stack grows.
	require.NoError(t, m.PlayCard(players[1].ID, 0, ""))
	assert.Equal(t, 4, m.PendingDraw)
	assert.Equal(t, "7", m.Obligation)
}

func TestBlackJackAddsTenRedJackClears(t *testing.T) {
	m, players, _ := fixtureMatch(DefaultRuleset(),
		[]*models.Card{card("J", "S"), card("2", "S")},
		[]*models.Card{card("J", "H"), card("4", "D")},
		[]*models.Card{card("4", "C")},
	)
	m.Discard = []*models.Card{card("J", "D")}

	require.NoError(t, m.PlayCard(players[0].ID, 0, ""))
	assert.Equal(t, 10, m.PendingDraw)
	assert.Equal(t, "J", m.Obligation)

	// The red Jack counters the obligation and zeroes the stack.
	require.NoError(t, m.PlayCard(players[1].ID, 0, ""))
	assert.Equal(t, 0, m.PendingDraw)
	assert.Empty(t, m.Obligation)
}

func TestPenaltyDrawClearsObligationAndHoldsTurn(t *testing.T) {
	m, players, mb := fixtureMatch(DefaultRuleset(),
		[]*models.Card{card("4", "H"), card("2", "S")},
		[]*models.Card{card("4", "D")},
	)
	m.Discard = []*models.Card{card("7", "C")}
	m.PendingDraw = 4
	m.Obligation = "7"

	before := len(players[0].Hand)
	require.NoError(t, m.DrawCard(players[0].ID))

	assert.Equal(t, before+4, len(players[0].Hand))
	assert.Equal(t, 0, m.PendingDraw)
	assert.Empty(t, m.Obligation)
	// The turn holds: the player may still play or pass.
	assert.Equal(t, players[0].ID, m.currentPlayerID())

	ev := mb.lastPlayerEventOfType(players[0].ID, EventNotification)
	require.NotNil(t, ev)
	assert.Equal(t, 4, ev.Count)
}

func TestVoluntaryDrawOncePerTurn(t *testing.T) {
	m, players, _ := fixtureMatch(DefaultRuleset(),
		[]*models.Card{card("4", "H")},
		[]*models.Card{card("4", "D")},
	)
	m.Discard = []*models.Card{card("9", "C")}

	require.NoError(t, m.DrawCard(players[0].ID))
	err := m.DrawCard(players[0].ID)
	assert.ErrorIs(t, err, ErrAlreadyDrawn)

	// Passing moves the cursor and resets the gate for the next hold.
	require.NoError(t, m.PassTurn(players[0].ID))
	require.NoError(t, m.PassTurn(players[1].ID))
	require.NoError(t, m.DrawCard(players[0].ID))
}

func TestDrawEndsTurnVariant(t *testing.T) {
	rs := DefaultRuleset()
	rs.DrawEndsTurn = true
	m, players, _ := fixtureMatch(rs,
		[]*models.Card{card("4", "H")},
		[]*models.Card{card("4", "D")},
	)
	m.Discard = []*models.Card{card("9", "C")}

	require.NoError(t, m.DrawCard(players[0].ID))
	assert.Equal(t, players[1].ID, m.currentPlayerID())
}

func TestMustDrawBeforePassVariant(t *testing.T) {
	rs := DefaultRuleset()
	rs.MustDrawBeforePass = true
	m, players, _ := fixtureMatch(rs,
		[]*models.Card{card("4", "H")},
		[]*models.Card{card("4", "D")},
	)
	m.Discard = []*models.Card{card("9", "C")}

	err := m.PassTurn(players[0].ID)
	assert.ErrorIs(t, err, ErrMustDrawBeforePass)

	require.NoError(t, m.DrawCard(players[0].ID))
	require.NoError(t, m.PassTurn(players[0].ID))
	assert.Equal(t, players[1].ID, m.currentPlayerID())
}

func TestPassRequiresNoObligation(t *testing.T) {
	m, players, _ := fixtureMatch(DefaultRuleset(),
		[]*models.Card{card("4", "H")},
		[]*models.Card{card("4", "D")},
	)
	m.Discard = []*models.Card{card("7", "C")}
	m.PendingDraw = 2
	m.Obligation = "7"

	err := m.PassTurn(players[0].ID)
	assert.ErrorIs(t, err, ErrInvalidMove)
}

func TestAceDeclaresAndNonWildClears(t *testing.T) {
	m, players, _ := fixtureMatch(DefaultRuleset(),
		[]*models.Card{card("A", "S"), card("2", "S")},
		[]*models.Card{card("6", "H"), card("4", "D")},
	)
	m.Discard = []*models.Card{card("9", "C")}

	require.NoError(t, m.PlayCard(players[0].ID, 0, "H"))
	assert.Equal(t, "H", m.ActiveSuit)

	// 6H matches the declared suit; playing it clears the declaration.
	require.NoError(t, m.PlayCard(players[1].ID, 0, ""))
	assert.Empty(t, m.ActiveSuit)
}

func TestAceOnAceKeepsDeclaration(t *testing.T) {
	m, players, _ := fixtureMatch(DefaultRuleset(),
		[]*models.Card{card("A", "S"), card("A", "H")},
		[]*models.Card{card("4", "D")},
	)
	m.Discard = []*models.Card{card("A", "S")}
	m.ActiveSuit = "D"

	// Off-suit Ace on an Ace is rejected.
	err := m.PlayCard(players[0].ID, 1, "")
	require.ErrorIs(t, err, ErrInvalidMove)

	// Same-suit Ace chains and the standing declaration survives.
	require.NoError(t, m.PlayCard(players[0].ID, 0, ""))
	assert.Equal(t, "D", m.ActiveSuit)
}

func TestRoundEndScoring(t *testing.T) {
	m, players, mb := fixtureMatch(DefaultRuleset(),
		[]*models.Card{card("5", "H")},
		[]*models.Card{card("K", "S"), card("9", "D")},
		[]*models.Card{card("A", "C"), card("4", "H")},
	)
	m.Discard = []*models.Card{card("5", "S")}

	require.NoError(t, m.PlayCard(players[0].ID, 0, ""))

	assert.Equal(t, PhaseRoundEnd, m.Phase)
	assert.Equal(t, 0, players[0].Score)
	assert.Equal(t, 19, players[1].Score)
	assert.Equal(t, 11+4, players[2].Score)

	require.Len(t, m.History, 1)
	result := m.History[0]
	require.Len(t, result.Entries, 3)
	assert.True(t, result.Entries[0].Winner)
	assert.Zero(t, result.Entries[0].Score, "closer's entry is the winner marker, never a number")
	assert.Equal(t, 19, result.Entries[1].Score)

	ev := mb.lastEventOfType(EventUpdateScoreboard)
	require.NotNil(t, ev)
	assert.Len(t, ev.History, 1)

	m.Mu.Lock()
	m.cancelTimers()
	m.Mu.Unlock()
}

func TestClosingAceBonus(t *testing.T) {
	rs := DefaultRuleset()
	rs.ClosingAceBonus = true
	m, players, _ := fixtureMatch(rs,
		[]*models.Card{card("A", "H")},
		[]*models.Card{card("6", "D")},
	)
	m.Discard = []*models.Card{card("5", "H")}

	require.NoError(t, m.PlayCard(players[0].ID, 0, ""))
	assert.Equal(t, 6+ClosingAceBonusValue, players[1].Score)
	m.Mu.Lock()
	m.cancelTimers()
	m.Mu.Unlock()
}

func TestClosingBlackJackPunishesNextSeat(t *testing.T) {
	m, players, _ := fixtureMatch(DefaultRuleset(),
		[]*models.Card{card("J", "S")},
		[]*models.Card{card("6", "D")},
		[]*models.Card{card("2", "C")},
	)
	m.Discard = []*models.Card{card("J", "D")}

	require.NoError(t, m.PlayCard(players[0].ID, 0, ""))

	assert.Equal(t, PhaseRoundEnd, m.Phase)
	// The next seat took the punitive ten-card draw before scoring.
	assert.Len(t, players[1].Hand, 11)
	assert.Greater(t, players[1].Score, 6)
	assert.Equal(t, 2, players[2].Score)
	m.Mu.Lock()
	m.cancelTimers()
	m.Mu.Unlock()
}

func TestHardStopMatchOver(t *testing.T) {
	m, players, mb := fixtureMatch(DefaultRuleset(),
		[]*models.Card{card("5", "H")},
		[]*models.Card{card("5", "D")},
		[]*models.Card{card("5", "C")},
	)
	players[0].Score = 480
	players[1].Score = 510
	players[2].Score = 300

	require.True(t, m.checkMatchOver())
	assert.Equal(t, PhaseMatchOver, m.Phase)

	ev := mb.lastEventOfType(EventGameOver)
	require.NotNil(t, ev)
	require.Len(t, ev.Standings, 3)
	assert.Equal(t, 300, ev.Standings[0].Score)
	assert.Equal(t, 480, ev.Standings[1].Score)
	assert.Equal(t, 510, ev.Standings[2].Score)
}

func TestBurnCapsInsteadOfEnding(t *testing.T) {
	rs := DefaultRuleset()
	rs.BurnEnabled = true
	m, players, _ := fixtureMatch(rs,
		[]*models.Card{card("5", "H")},
		[]*models.Card{card("5", "D")},
		[]*models.Card{card("5", "C")},
	)
	m.Phase = PhaseRoundEnd
	players[0].Score = 480
	players[1].Score = 510
	players[2].Score = 300

	require.False(t, m.checkMatchOver())

	// Capped to the worst still-safe total, credited a burn mark.
	assert.Equal(t, 480, players[1].Score)
	assert.Equal(t, 1, players[1].Burns)
	assert.NotEqual(t, PhaseMatchOver, m.Phase)
	for _, p := range players {
		assert.Less(t, p.Score, rs.ScoreLimit)
	}
}

func TestBurnFallsBackToHardStopWhenNobodySafe(t *testing.T) {
	rs := DefaultRuleset()
	rs.BurnEnabled = true
	m, players, _ := fixtureMatch(rs,
		[]*models.Card{card("5", "H")},
		[]*models.Card{card("5", "D")},
	)
	players[0].Score = 520
	players[1].Score = 505

	require.True(t, m.checkMatchOver())
	assert.Equal(t, PhaseMatchOver, m.Phase)
}

func TestCardConservationThroughReshuffle(t *testing.T) {
	m, players, _ := fixtureMatch(DefaultRuleset(),
		[]*models.Card{card("4", "H")},
		[]*models.Card{card("4", "D")},
	)
	// Exhausted deck, six cards discarded: drawing must reshuffle all but
	// the top card and leave the pile with exactly one.
	m.deck.cards = nil
	m.Discard = []*models.Card{
		card("4", "S"), card("9", "C"), card("K", "S"),
		card("2", "D"), card("7", "H"), card("Q", "S"),
	}
	top := m.topCard()
	before := totalCards(m)

	drawn := m.drawToHand(players[0], 3)
	assert.Equal(t, 3, drawn)
	assert.Equal(t, before, totalCards(m))
	require.Len(t, m.Discard, 1)
	assert.Equal(t, top.ID, m.Discard[0].ID)
	assert.Equal(t, 2, m.deck.Size())
}

func TestDrawWhenNoCardsAnywhere(t *testing.T) {
	m, players, _ := fixtureMatch(DefaultRuleset(),
		[]*models.Card{card("4", "H")},
		[]*models.Card{card("4", "D")},
	)
	m.deck.cards = nil
	m.Discard = []*models.Card{card("Q", "S")}

	err := m.DrawCard(players[0].ID)
	assert.ErrorIs(t, err, ErrEmptyDeck)
	// The player is unblocked for passing even though nothing was drawn.
	require.NoError(t, m.PassTurn(players[0].ID))
}

func TestDisconnectBelowMinimumAbandons(t *testing.T) {
	m, players, mb := fixtureMatch(DefaultRuleset(),
		[]*models.Card{card("4", "H")},
		[]*models.Card{card("4", "D")},
	)
	m.Discard = []*models.Card{card("9", "C")}

	m.HandleDisconnect(players[1].ID)

	assert.Equal(t, PhaseIdle, m.Phase)
	assert.NotNil(t, mb.lastEventOfType(EventGameEndedForced))
	assert.Empty(t, m.Order)
}

func TestDisconnectKeepsCursorOnActor(t *testing.T) {
	m, players, _ := fixtureMatch(DefaultRuleset(),
		[]*models.Card{card("4", "H")},
		[]*models.Card{card("4", "D")},
		[]*models.Card{card("4", "C")},
	)
	m.Discard = []*models.Card{card("9", "C")}
	m.TurnIndex = 2 // player 3 to act

	// A seat before the cursor leaves; the same player must still hold the turn.
	m.HandleDisconnect(players[0].ID)
	assert.Equal(t, players[2].ID, m.currentPlayerID())
	assert.Len(t, m.Order, 2)
}

func TestDisconnectOfActorPassesToNextSeat(t *testing.T) {
	m, players, _ := fixtureMatch(DefaultRuleset(),
		[]*models.Card{card("4", "H")},
		[]*models.Card{card("4", "D")},
		[]*models.Card{card("4", "C")},
	)
	m.Discard = []*models.Card{card("9", "C")}
	m.TurnIndex = 1

	m.HandleDisconnect(players[1].ID)
	assert.Equal(t, players[2].ID, m.currentPlayerID())
}

func TestJoinMidRoundSpectates(t *testing.T) {
	m, _, mb := fixtureMatch(DefaultRuleset(),
		[]*models.Card{card("4", "H")},
		[]*models.Card{card("4", "D")},
	)
	m.Discard = []*models.Card{card("9", "C")}

	late := uuid.New()
	p := m.Join(late, "latecomer")
	assert.False(t, p.Seated)
	assert.Len(t, m.Order, 2, "seating order is fixed for the round")
	assert.NotNil(t, mb.lastEventOfType(EventPlayerCountUpdate))
	assert.NotNil(t, mb.lastPlayerEventOfType(late, EventUpdateUI))
}

func TestOpeningEffectsApplyWithoutActor(t *testing.T) {
	m, players, _ := fixtureMatch(DefaultRuleset(),
		[]*models.Card{card("4", "H")},
		[]*models.Card{card("4", "D")},
		[]*models.Card{card("4", "C")},
	)

	// Opening nine skips the first seat.
	m.applyOpeningEffect(m.effectForCard(card("9", "H"), uuid.Nil))
	assert.Equal(t, players[1].ID, m.currentPlayerID())

	// Opening three reverses before anyone acts.
	m.TurnIndex = 0
	m.Direction = 1
	m.applyOpeningEffect(m.effectForCard(card("3", "H"), uuid.Nil))
	assert.Equal(t, -1, m.Direction)
	assert.Equal(t, players[0].ID, m.currentPlayerID())

	// Opening seven starts the round with an obligation outstanding.
	m.Direction = 1
	m.applyOpeningEffect(m.effectForCard(card("7", "H"), uuid.Nil))
	assert.Equal(t, 2, m.PendingDraw)
	assert.Equal(t, "7", m.Obligation)
}

func TestPunishPreviousTwoVariant(t *testing.T) {
	rs := DefaultRuleset()
	rs.TwoEffect = TwoPunishPrevious
	m, players, _ := fixtureMatch(rs,
		[]*models.Card{card("2", "C"), card("4", "H")},
		[]*models.Card{card("4", "D")},
		[]*models.Card{card("4", "C")},
	)
	m.Discard = []*models.Card{card("2", "S")}

	before := len(players[2].Hand)
	require.NoError(t, m.PlayCard(players[0].ID, 0, ""))

	// Previous seat (direction +1, so the seat behind the actor) drew one.
	assert.Equal(t, before+1, len(players[2].Hand))
	assert.Equal(t, 0, m.PendingDraw)
	assert.Equal(t, players[1].ID, m.currentPlayerID())
}

func TestRequestStartRequiresPlayers(t *testing.T) {
	m := NewMatch(DefaultRuleset(), 1)
	m.Join(uuid.New(), "solo")
	err := m.RequestStart(uuid.Nil)
	assert.ErrorIs(t, err, ErrInsufficientPlayers)
	assert.Equal(t, PhaseIdle, m.Phase)
}

func TestRequestStartRejectedMidRound(t *testing.T) {
	m, players, _ := fixtureMatch(DefaultRuleset(),
		[]*models.Card{card("4", "H")},
		[]*models.Card{card("4", "D")},
	)
	err := m.RequestStart(players[0].ID)
	assert.ErrorIs(t, err, ErrMatchInProgress)
}

func TestDealingLifecycle(t *testing.T) {
	rs := DefaultRuleset()
	rs.DealTickMs = 1
	rs.RestartDelaySec = 60
	m := NewMatch(rs, 42)
	mb := newMockBroadcaster()
	m.BroadcastFn = mb.broadcastFn
	m.BroadcastToPlayerFn = mb.broadcastToPlayerFn

	m.Mu.Lock()
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, id := range ids {
		m.Join(id, "")
	}
	require.NoError(t, m.RequestStart(ids[0]))
	assert.Equal(t, PhaseDealing, m.Phase)

	// No intent is accepted while the deal is in flight.
	err := m.PlayCard(ids[0], 0, "")
	assert.ErrorIs(t, err, ErrInvalidMove)
	err = m.DrawCard(ids[0])
	assert.ErrorIs(t, err, ErrInvalidMove)
	m.Mu.Unlock()

	require.Eventually(t, phaseIs(m, PhaseInRound), 2*time.Second, 5*time.Millisecond)

	m.Mu.Lock()
	defer m.Mu.Unlock()
	for _, p := range m.Players {
		assert.Len(t, p.Hand, rs.HandSize)
	}
	require.Len(t, m.Discard, 1)
	opener := m.topCard()
	if opener.Rank == "J" {
		assert.Equal(t, models.ColorRed, opener.Color(), "opener must never be the top-penalty card")
	}
	assert.Equal(t, rs.DeckCount*52, totalCards(m))
	assert.NotNil(t, mb.lastEventOfType(EventGameReady))
	m.cancelTimers()
}

func TestRoundAutoRestartRotatesStartingSeat(t *testing.T) {
	rs := DefaultRuleset()
	rs.DealTickMs = 1
	rs.RestartDelaySec = 0
	m, players, _ := fixtureMatch(rs,
		[]*models.Card{card("5", "H")},
		[]*models.Card{card("5", "D"), card("6", "D")},
	)
	m.Discard = []*models.Card{card("5", "S")}
	m.startSeat = 1 // as if the first round's deal already consumed seat zero
	firstLeader := m.Order[0]

	m.Mu.Lock()
	require.NoError(t, m.PlayCard(players[0].ID, 0, ""))
	assert.Equal(t, PhaseRoundEnd, m.Phase)
	m.Mu.Unlock()

	require.Eventually(t, func() bool {
		m.Mu.Lock()
		defer m.Mu.Unlock()
		return m.Phase == PhaseInRound && m.Round == 2
	}, 3*time.Second, 5*time.Millisecond)

	m.Mu.Lock()
	defer m.Mu.Unlock()
	assert.NotEqual(t, firstLeader, m.Order[0], "starting seat rotates each round")
	for _, p := range m.Players {
		assert.Len(t, p.Hand, rs.HandSize)
	}
	m.cancelTimers()
}

func TestAbandonSkipsScheduledRestart(t *testing.T) {
	rs := DefaultRuleset()
	rs.RestartDelaySec = 1
	m, players, _ := fixtureMatch(rs,
		[]*models.Card{card("5", "H")},
		[]*models.Card{card("5", "D"), card("6", "D")},
	)
	m.Discard = []*models.Card{card("5", "S")}

	m.Mu.Lock()
	require.NoError(t, m.PlayCard(players[0].ID, 0, ""))
	require.Equal(t, PhaseRoundEnd, m.Phase)
	m.HandleDisconnect(players[1].ID)
	assert.Equal(t, PhaseIdle, m.Phase)
	m.Mu.Unlock()

	// The deferred start must never fire once the table is abandoned.
	assert.Never(t, func() bool {
		m.Mu.Lock()
		defer m.Mu.Unlock()
		return m.Phase == PhaseDealing || m.Phase == PhaseInRound
	}, 1300*time.Millisecond, 100*time.Millisecond)
}

func TestRestartFromMatchOverResets(t *testing.T) {
	rs := DefaultRuleset()
	rs.DealTickMs = 1
	m, players, _ := fixtureMatch(rs,
		[]*models.Card{card("5", "H")},
		[]*models.Card{card("5", "D")},
	)
	m.Phase = PhaseMatchOver
	players[0].Score = 520
	players[1].Score = 300
	m.History = []RoundResult{{Round: 1}}
	m.Round = 7

	m.Mu.Lock()
	require.NoError(t, m.RequestStart(players[0].ID))
	m.Mu.Unlock()

	require.Eventually(t, phaseIs(m, PhaseInRound), 2*time.Second, 5*time.Millisecond)

	m.Mu.Lock()
	defer m.Mu.Unlock()
	assert.Equal(t, 1, m.Round)
	assert.Empty(t, m.History)
	for _, p := range m.Players {
		assert.Zero(t, p.Score)
	}
	m.cancelTimers()
}
