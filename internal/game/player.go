package game

import (
	"errors"
	"fmt"
)

// MaxHands caps the number of hands a player can hold after splits.
const MaxHands = 4

var (
	ErrBetNotPositive   = errors.New("bet must be greater than 0")
	ErrInsufficientChips = errors.New("insufficient funds")
	ErrNoSuchHand       = errors.New("no hand at index")
	ErrHandNotSplittable = errors.New("hand cannot be split")
)

// Player tracks the chip balance, the ordered hands for the current round
// and cumulative result counters across rounds.
type Player struct {
	Chips       int
	Hands       []*Hand
	CurrentHand int

	TotalWins       int
	TotalLosses     int
	TotalPushes     int
	TotalBlackjacks int
}

// NewPlayer creates a player with a starting chip balance and one empty hand.
func NewPlayer(chips int) *Player {
	p := &Player{Chips: chips}
	p.ResetHands()
	return p
}

// ResetHands discards all hands and starts over with a single empty hand.
// Chips and counters carry forward.
func (p *Player) ResetHands() {
	p.Hands = []*Hand{NewHand()}
	p.CurrentHand = 0
}

// ActiveHand returns the hand currently being played, or nil when every
// hand has been resolved.
func (p *Player) ActiveHand() *Hand {
	if p.CurrentHand >= 0 && p.CurrentHand < len(p.Hands) {
		return p.Hands[p.CurrentHand]
	}
	return nil
}

// AllHandsPlayed reports whether the hand index has walked past the last hand.
func (p *Player) AllHandsPlayed() bool {
	return p.CurrentHand >= len(p.Hands)
}

// PlaceBet stakes amount on the active hand, debiting chips immediately.
// This is the single point where chips leave the account for a wager.
func (p *Player) PlaceBet(amount int) error {
	if amount <= 0 {
		return ErrBetNotPositive
	}
	if p.Chips < amount {
		return ErrInsufficientChips
	}
	hand := p.ActiveHand()
	if hand == nil {
		return ErrNoSuchHand
	}
	hand.Bet = amount
	p.Chips -= amount
	return nil
}

// SplitHand splits the hand at index into two, funding the new hand's
// matching bet from chips. The new hand is inserted immediately after the
// source so play visits split hands consecutively. Splitting aces flags
// both sides, which bars them from hit/double/surrender/re-split.
func (p *Player) SplitHand(index int) error {
	if index < 0 || index >= len(p.Hands) {
		return ErrNoSuchHand
	}
	hand := p.Hands[index]
	if !hand.CanSplit() {
		return ErrHandNotSplittable
	}
	if p.Chips < hand.Bet {
		return ErrInsufficientChips
	}
	if len(p.Hands) >= MaxHands {
		return fmt.Errorf("cannot split beyond %d hands", MaxHands)
	}

	second := hand.Cards[len(hand.Cards)-1]
	hand.Cards = hand.Cards[:len(hand.Cards)-1]

	newHand := NewHand()
	newHand.AddCard(second)
	newHand.Bet = hand.Bet
	newHand.Split = true
	hand.Split = true

	// Split requires equal ranks, so an ace on either side means both
	// sides came from a pair of aces.
	if hand.Cards[0].IsAce() || second.IsAce() {
		hand.FromSplitAces = true
		newHand.FromSplitAces = true
	}

	p.Chips -= hand.Bet
	p.Hands = append(p.Hands[:index+1], append([]*Hand{newHand}, p.Hands[index+1:]...)...)
	return nil
}

// Win credits the payout for a winning hand: bet x2.5 for a natural
// blackjack (stake plus the 3:2 bonus), bet x2 otherwise (stake plus even
// money). Returns the amount credited.
func (p *Player) Win(index int, blackjack bool) int {
	if index < 0 || index >= len(p.Hands) {
		return 0
	}
	hand := p.Hands[index]

	var payout int
	if blackjack && hand.IsBlackjack() {
		payout = hand.Bet * 5 / 2
		p.TotalBlackjacks++
	} else {
		payout = hand.Bet * 2
	}
	p.Chips += payout
	p.TotalWins++
	return payout
}

// Lose records a loss. The bet was debited at placement, so only the
// counter moves.
func (p *Player) Lose(index int) {
	p.TotalLosses++
}

// Push returns the stake for a tied hand and reports the amount credited.
func (p *Player) Push(index int) int {
	if index < 0 || index >= len(p.Hands) {
		return 0
	}
	hand := p.Hands[index]
	p.Chips += hand.Bet
	p.TotalPushes++
	return hand.Bet
}
