package game

import "github.com/lox/blackjackd/internal/deck"

// Dealer owns the house hand. The first card dealt is the hole card and
// stays hidden until RevealHoleCard.
type Dealer struct {
	Cards      []deck.Card `json:"cards"`
	HoleHidden bool        `json:"hole_hidden"`
}

// NewDealer creates a dealer with an empty hand and the hole card hidden.
func NewDealer() *Dealer {
	return &Dealer{Cards: make([]deck.Card, 0, 5), HoleHidden: true}
}

// AddCard appends a card to the dealer's hand.
func (d *Dealer) AddCard(card deck.Card) {
	d.Cards = append(d.Cards, card)
}

// AddCards appends multiple cards to the dealer's hand.
func (d *Dealer) AddCards(cards []deck.Card) {
	d.Cards = append(d.Cards, cards...)
}

// Clear empties the hand and re-hides the hole card.
func (d *Dealer) Clear() {
	d.Cards = d.Cards[:0]
	d.HoleHidden = true
}

// RevealHoleCard makes the hole card visible. One-way and idempotent.
func (d *Dealer) RevealHoleCard() {
	d.HoleHidden = false
}

// Value returns the full hand value, hole card included.
func (d *Dealer) Value() int {
	return deck.HandValue(d.Cards)
}

// VisibleValue returns the value of the cards the player can see. While
// the hole card is hidden that excludes the first card; ok is false when
// nothing is visible yet.
func (d *Dealer) VisibleValue() (int, bool) {
	if len(d.Cards) == 0 {
		return 0, false
	}
	if d.HoleHidden {
		if len(d.Cards) < 2 {
			return 0, false
		}
		return deck.HandValue(d.Cards[1:]), true
	}
	return d.Value(), true
}

// VisibleCards returns the cards the player can see.
func (d *Dealer) VisibleCards() []deck.Card {
	if d.HoleHidden && len(d.Cards) > 1 {
		out := make([]deck.Card, len(d.Cards)-1)
		copy(out, d.Cards[1:])
		return out
	}
	out := make([]deck.Card, len(d.Cards))
	copy(out, d.Cards)
	return out
}

// Upcard returns the dealer's visible second card. ok is false before the
// deal completes.
func (d *Dealer) Upcard() (deck.Card, bool) {
	if len(d.Cards) < 2 {
		return deck.Card{}, false
	}
	return d.Cards[1], true
}

// IsBlackjack returns true for a natural two-card 21.
func (d *Dealer) IsBlackjack() bool {
	return deck.IsBlackjack(d.Cards)
}

// IsBust returns true when the dealer's total exceeds 21.
func (d *Dealer) IsBust() bool {
	return deck.IsBust(d.Cards)
}

// ShouldHit applies the house drawing policy: hit below 17, and on 17
// only when the table hits soft 17 and the hand is soft.
func (d *Dealer) ShouldHit(hitsSoft17 bool) bool {
	value := d.Value()
	if value < 17 {
		return true
	}
	if value == 17 && hitsSoft17 {
		return deck.IsSoft17(d.Cards)
	}
	return false
}

// PlayOut reveals the hole card and draws until the policy says stand.
// An exhausted shoe stops the draw early; that is a surfaced edge case,
// not an error.
func (d *Dealer) PlayOut(shoe *deck.Shoe, hitsSoft17 bool) {
	d.RevealHoleCard()
	for d.ShouldHit(hitsSoft17) {
		card, ok := shoe.Draw()
		if !ok {
			break
		}
		d.AddCard(card)
	}
}
