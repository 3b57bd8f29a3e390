package game

import "github.com/lox/blackjackd/internal/deck"

// Hand is a single player hand with its bet and action flags. A player
// holds one hand normally and up to four after splits.
//
// The bet is debited from the player's chips when it is placed; settlement
// only ever credits winnings back.
type Hand struct {
	Cards         []deck.Card `json:"cards"`
	Bet           int         `json:"bet"`
	DoubledDown   bool        `json:"doubled_down"`
	Split         bool        `json:"split"`
	FromSplitAces bool        `json:"from_split_aces"`
	Surrendered   bool        `json:"surrendered"`
	CharlieWin    bool        `json:"charlie_win"`
}

// NewHand creates an empty hand.
func NewHand() *Hand {
	return &Hand{Cards: make([]deck.Card, 0, 5)}
}

// AddCard appends a card to the hand.
func (h *Hand) AddCard(card deck.Card) {
	h.Cards = append(h.Cards, card)
}

// AddCards appends multiple cards to the hand.
func (h *Hand) AddCards(cards []deck.Card) {
	h.Cards = append(h.Cards, cards...)
}

// Value returns the best blackjack total for the hand.
func (h *Hand) Value() int {
	return deck.HandValue(h.Cards)
}

// IsBlackjack returns true for a two-card 21.
func (h *Hand) IsBlackjack() bool {
	return deck.IsBlackjack(h.Cards)
}

// IsBust returns true when the hand value exceeds 21.
func (h *Hand) IsBust() bool {
	return deck.IsBust(h.Cards)
}

// CanDoubleDown reports whether doubling is legal: exactly two cards, not
// already doubled, and not a split-aces hand.
func (h *Hand) CanDoubleDown() bool {
	return len(h.Cards) == 2 && !h.DoubledDown && !h.FromSplitAces
}

// CanSplit reports whether the hand may be split: a pair that has not
// already been split. The four-hand cap is enforced by the round.
func (h *Hand) CanSplit() bool {
	return deck.IsPair(h.Cards) && !h.Split
}

// CanSurrender reports whether surrender is legal: exactly two cards, not
// doubled, not surrendered, and not a split-aces hand.
func (h *Hand) CanSurrender() bool {
	return len(h.Cards) == 2 && !h.DoubledDown && !h.Surrendered && !h.FromSplitAces
}

// DoubleDown doubles the recorded bet and marks the hand. The caller is
// responsible for charging the incremental half of the new bet.
func (h *Hand) DoubleDown() {
	h.Bet *= 2
	h.DoubledDown = true
}

// Resolved reports whether the hand needs no dealer comparison: it busted,
// surrendered, or already won by five-card Charlie.
func (h *Hand) Resolved() bool {
	return h.Surrendered || h.CharlieWin || h.IsBust()
}
