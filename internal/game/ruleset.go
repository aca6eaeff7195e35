// internal/game/ruleset.go
package game

import "fmt"

// TwoEffect variants: what playing a rank "2" does.
const (
	TwoNone           = "none"            // no effect
	TwoStack          = "stack"           // adds to the penalty stack, obligation "2"
	TwoPunishPrevious = "punish_previous" // previous seat immediately draws one card
)

// NineEffect variants: what playing a rank "9" does with 3+ players.
// With exactly two players a nine always acts as a replay, like an eight.
const (
	NineSkip    = "skip"
	NineReverse = "reverse"
)

// ClosingAceBonus is the fixed amount added to every non-winner's round score
// when the closer ends the round with an Ace and the ruleset enables it.
const ClosingAceBonusValue = 50

// Ruleset captures every house-variant axis of the game in one configuration
// struct consumed by the rule engine, the scoring code and the match state
// machine. A single engine serves all observed table variants through this.
type Ruleset struct {
	Name string `json:"name"`

	DeckCount int `json:"deckCount"` // 52-card sets combined into the draw pool (1 or 2)
	HandSize  int `json:"handSize"`  // cards dealt to each player at round start

	AceValue        int  `json:"aceValue"`        // hand-scoring value of an Ace (11 or 50)
	ClosingAceBonus bool `json:"closingAceBonus"` // +50 to non-winners when the closing card is an Ace

	SevenPenalty int `json:"sevenPenalty"` // penalty cards added per seven
	JackPenalty  int `json:"jackPenalty"`  // penalty cards added per black Jack
	TwoPenalty   int `json:"twoPenalty"`   // penalty cards added per two (stack variant)

	TwoEffect  string `json:"twoEffect"`  // one of: none, stack, punish_previous
	NineEffect string `json:"nineEffect"` // one of: skip, reverse

	DrawEndsTurn       bool `json:"drawEndsTurn"`       // voluntary draw immediately ends the turn
	MustDrawBeforePass bool `json:"mustDrawBeforePass"` // passing requires a prior voluntary draw

	ScoreLimit  int  `json:"scoreLimit"`  // cumulative penalty threshold (500)
	BurnEnabled bool `json:"burnEnabled"` // cap over-threshold players instead of ending the match

	RestartDelaySec int `json:"restartDelaySec"` // intermission before the next round auto-starts
	DealTickMs      int `json:"dealTickMs"`      // cadence of the card-per-player dealing steps
}

// DefaultRuleset is the classic table: two decks, eleven cards, Ace worth
// eleven, hard stop at 500.
func DefaultRuleset() Ruleset {
	return Ruleset{
		Name:            "classic",
		DeckCount:       2,
		HandSize:        11,
		AceValue:        11,
		ClosingAceBonus: false,
		SevenPenalty:    2,
		JackPenalty:     10,
		TwoPenalty:      1,
		TwoEffect:       TwoNone,
		NineEffect:      NineSkip,
		ScoreLimit:      500,
		RestartDelaySec: 3,
		DealTickMs:      200,
	}
}

// PresetRuleset returns a named house variant, or the classic default when
// the name is unknown or empty.
func PresetRuleset(name string) Ruleset {
	switch name {
	case "thessaloniki":
		// Northern variant: expensive Aces, stacking twos, drawing ends the
		// turn and you must draw before passing.
		rs := DefaultRuleset()
		rs.Name = "thessaloniki"
		rs.AceValue = 50
		rs.ClosingAceBonus = true
		rs.TwoEffect = TwoStack
		rs.DrawEndsTurn = true
		rs.MustDrawBeforePass = true
		return rs
	case "burn":
		rs := DefaultRuleset()
		rs.Name = "burn"
		rs.BurnEnabled = true
		return rs
	default:
		return DefaultRuleset()
	}
}

// Update merges a loosely-typed rules map (as decoded from client JSON) into
// the ruleset. Missing keys keep their current values.
func (rs *Ruleset) Update(newRules map[string]interface{}) error {
	assignBool := func(field *bool, key string) error {
		if val, exists := newRules[key]; exists && val != nil {
			b, ok := val.(bool)
			if !ok {
				return fmt.Errorf("invalid type for %s", key)
			}
			*field = b
		}
		return nil
	}

	assignInt := func(field *int, key string, minVal int) error {
		if val, exists := newRules[key]; exists && val != nil {
			// JSON numbers decode as float64.
			switch v := val.(type) {
			case float64:
				*field = int(v)
			case int:
				*field = v
			default:
				return fmt.Errorf("invalid type for %s", key)
			}
			if *field < minVal {
				return fmt.Errorf("%s must be at least %d", key, minVal)
			}
		}
		return nil
	}

	assignEnum := func(field *string, key string, allowed ...string) error {
		if val, exists := newRules[key]; exists && val != nil {
			s, ok := val.(string)
			if !ok {
				return fmt.Errorf("invalid type for %s", key)
			}
			for _, a := range allowed {
				if s == a {
					*field = s
					return nil
				}
			}
			return fmt.Errorf("invalid value %q for %s", s, key)
		}
		return nil
	}

	if err := assignInt(&rs.DeckCount, "deckCount", 1); err != nil {
		return err
	}
	if rs.DeckCount > 2 {
		return fmt.Errorf("deckCount must be 1 or 2")
	}
	if err := assignInt(&rs.HandSize, "handSize", 1); err != nil {
		return err
	}
	if err := assignInt(&rs.AceValue, "aceValue", 1); err != nil {
		return err
	}
	if err := assignBool(&rs.ClosingAceBonus, "closingAceBonus"); err != nil {
		return err
	}
	if err := assignInt(&rs.SevenPenalty, "sevenPenalty", 0); err != nil {
		return err
	}
	if err := assignInt(&rs.JackPenalty, "jackPenalty", 0); err != nil {
		return err
	}
	if err := assignInt(&rs.TwoPenalty, "twoPenalty", 0); err != nil {
		return err
	}
	if err := assignEnum(&rs.TwoEffect, "twoEffect", TwoNone, TwoStack, TwoPunishPrevious); err != nil {
		return err
	}
	if err := assignEnum(&rs.NineEffect, "nineEffect", NineSkip, NineReverse); err != nil {
		return err
	}
	if err := assignBool(&rs.DrawEndsTurn, "drawEndsTurn"); err != nil {
		return err
	}
	if err := assignBool(&rs.MustDrawBeforePass, "mustDrawBeforePass"); err != nil {
		return err
	}
	if err := assignInt(&rs.ScoreLimit, "scoreLimit", 1); err != nil {
		return err
	}
	if err := assignBool(&rs.BurnEnabled, "burnEnabled"); err != nil {
		return err
	}
	if err := assignInt(&rs.RestartDelaySec, "restartDelaySec", 0); err != nil {
		return err
	}
	if err := assignInt(&rs.DealTickMs, "dealTickMs", 0); err != nil {
		return err
	}
	return nil
}
