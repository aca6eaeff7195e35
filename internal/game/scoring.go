// internal/game/scoring.go
package game

import (
	"sort"

	"github.com/agoniagame/agonia/internal/models"
	"github.com/google/uuid"
)

// CardValue returns a single card's penalty value under the active scoring
// table: numerals count face value, court cards ten, Aces per the ruleset.
func CardValue(c *models.Card, rs Ruleset) int {
	switch c.Rank {
	case "A":
		return rs.AceValue
	case "J", "Q", "K":
		return 10
	case "10":
		return 10
	case "2":
		return 2
	case "3":
		return 3
	case "4":
		return 4
	case "5":
		return 5
	case "6":
		return 6
	case "7":
		return 7
	case "8":
		return 8
	case "9":
		return 9
	default:
		return 0
	}
}

// HandValue sums the penalty value of every card left in a hand.
func HandValue(hand []*models.Card, rs Ruleset) int {
	total := 0
	for _, c := range hand {
		total += CardValue(c, rs)
	}
	return total
}

// RoundEntry is one player's line in a finished round: either the winner
// marker or a numeric penalty. The closer's entry is always the sentinel
// marker, never a number.
type RoundEntry struct {
	PlayerID uuid.UUID `json:"playerId"`
	Name     string    `json:"name"`
	Winner   bool      `json:"winner"`
	Score    int       `json:"score"`
}

// RoundResult records one finished round; the history of these is retained
// for the life of the match and reset on a new match.
type RoundResult struct {
	Round   int          `json:"round"`
	Entries []RoundEntry `json:"entries"`
}

// Standing is one player's line in the final standings. Lower cumulative
// score is better: this is a penalty-accumulation game.
type Standing struct {
	PlayerID uuid.UUID `json:"playerId"`
	Name     string    `json:"name"`
	Score    int       `json:"score"`
	Burns    int       `json:"burns"`
}

// ComputeStandings orders players ascending by cumulative score.
func ComputeStandings(players []*models.Player) []Standing {
	standings := make([]Standing, 0, len(players))
	for _, p := range players {
		standings = append(standings, Standing{
			PlayerID: p.ID,
			Name:     p.Name,
			Score:    p.Score,
			Burns:    p.Burns,
		})
	}
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Score < standings[j].Score
	})
	return standings
}
