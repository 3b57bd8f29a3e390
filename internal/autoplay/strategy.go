package autoplay

import (
	"github.com/lox/blackjackd/internal/deck"
	"github.com/lox/blackjackd/internal/game"
)

// Action is a single auto-play decision.
type Action string

const (
	ActionHit       Action = "hit"
	ActionStand     Action = "stand"
	ActionDouble    Action = "double_down"
	ActionSplit     Action = "split"
	ActionSurrender Action = "surrender"
)

// strategyThresholds maps each strategy to its stand thresholds against a
// weak (2-6) and strong (7-A) dealer upcard.
var strategyThresholds = map[Strategy]struct{ weak, strong int }{
	StrategyBasic:        {weak: 12, strong: 17},
	StrategyConservative: {weak: 12, strong: 15},
	StrategyAggressive:   {weak: 14, strong: 18},
}

// dealerIsWeak buckets the upcard: 2 through 6 is the weak bucket, 7
// through ace the strong one.
func dealerIsWeak(upcard deck.Card) bool {
	v := upcard.BlackjackValue()
	return v >= 2 && v <= 6
}

// hardTotal sums the hand with every ace counted as 1.
func hardTotal(cards []deck.Card) int {
	total := 0
	for _, c := range cards {
		if c.IsAce() {
			total++
		} else {
			total += c.BlackjackValue()
		}
	}
	return total
}

// isSoft reports whether the hand's best value counts an ace as 11.
func isSoft(hand *game.Hand) bool {
	return hand.Value() != hardTotal(hand.Cards)
}

// hitOrStand applies the strategy threshold table. Soft totals of 17 or
// less always hit, a free card cannot bust them.
func hitOrStand(strategy Strategy, hand *game.Hand, upcard deck.Card) Action {
	if isSoft(hand) && hand.Value() <= 17 {
		return ActionHit
	}

	thresholds, ok := strategyThresholds[strategy]
	if !ok {
		thresholds = strategyThresholds[StrategyBasic]
	}

	stand := thresholds.strong
	if dealerIsWeak(upcard) {
		stand = thresholds.weak
	}
	if hand.Value() >= stand {
		return ActionStand
	}
	return ActionHit
}

// recommendDouble is the basic-strategy doubling chart: hard 9-11 against
// a weak dealer, or soft 13-18 against dealer 4-6.
func recommendDouble(hand *game.Hand, upcard deck.Card) bool {
	value := hand.Value()
	up := upcard.BlackjackValue()

	if !isSoft(hand) && value >= 9 && value <= 11 {
		return up >= 2 && up <= 6
	}
	if isSoft(hand) && value >= 13 && value <= 18 {
		return up >= 4 && up <= 6
	}
	return false
}

// recommendSplit is the basic-strategy splitting chart: aces and eights
// always, low pairs against a weak dealer, fours only against 5-6.
func recommendSplit(hand *game.Hand, upcard deck.Card) bool {
	if len(hand.Cards) != 2 || hand.Cards[0].Rank != hand.Cards[1].Rank {
		return false
	}
	up := upcard.BlackjackValue()

	switch hand.Cards[0].Rank {
	case deck.Ace, deck.Eight:
		return true
	case deck.Two, deck.Three, deck.Six, deck.Seven, deck.Nine:
		return up >= 2 && up <= 6
	case deck.Four:
		return up == 5 || up == 6
	default:
		return false
	}
}

// recommendSurrender is the basic-strategy surrender chart: hard 15-16
// against a ten-value upcard, hard 16 against a nine.
func recommendSurrender(hand *game.Hand, upcard deck.Card) bool {
	if isSoft(hand) {
		return false
	}
	value := hand.Value()
	up := upcard.BlackjackValue()

	if up == 10 && (value == 15 || value == 16) {
		return true
	}
	return up == 9 && value == 16
}
