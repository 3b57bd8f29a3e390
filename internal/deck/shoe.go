package deck

import rand "math/rand/v2"

// CardsPerDeck is the size of a single standard deck.
const CardsPerDeck = 52

// MaxDecks caps the shoe at eight standard decks.
const MaxDecks = 8

// Shoe is a shuffled draw pile built from one or more standard 52-card
// decks. Cards leave the shoe through Draw and only return on Reset.
type Shoe struct {
	cards    []Card
	numDecks int
	rng      *rand.Rand
}

// NewShoe creates a shuffled shoe of numDecks decks (clamped to 1..8).
func NewShoe(numDecks int, rng *rand.Rand) *Shoe {
	if numDecks < 1 {
		numDecks = 1
	}
	if numDecks > MaxDecks {
		numDecks = MaxDecks
	}

	s := &Shoe{
		cards:    make([]Card, 0, numDecks*CardsPerDeck),
		numDecks: numDecks,
		rng:      rng,
	}
	s.build()
	s.Shuffle()
	return s
}

func (s *Shoe) build() {
	s.cards = s.cards[:0]
	for d := 0; d < s.numDecks; d++ {
		for suit := Hearts; suit <= Spades; suit++ {
			for rank := Two; rank <= Ace; rank++ {
				s.cards = append(s.cards, NewCard(suit, rank))
			}
		}
	}
}

// Shuffle randomizes the order of the remaining cards.
func (s *Shoe) Shuffle() {
	s.rng.Shuffle(len(s.cards), func(i, j int) {
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	})
}

// Draw removes and returns the top card. The second return is false when
// the shoe is empty; callers treat that as a recoverable condition.
func (s *Shoe) Draw() (Card, bool) {
	if len(s.cards) == 0 {
		return Card{}, false
	}
	card := s.cards[len(s.cards)-1]
	s.cards = s.cards[:len(s.cards)-1]
	return card, true
}

// DrawN draws up to n cards, stopping early if the shoe runs out.
func (s *Shoe) DrawN(n int) []Card {
	if n > len(s.cards) {
		n = len(s.cards)
	}
	cards := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		card, ok := s.Draw()
		if !ok {
			break
		}
		cards = append(cards, card)
	}
	return cards
}

// RemoveRank extracts the first card of the given rank from anywhere in
// the shoe. Returns false if no such card remains.
func (s *Shoe) RemoveRank(rank Rank) (Card, bool) {
	for i, c := range s.cards {
		if c.Rank == rank {
			s.cards = append(s.cards[:i], s.cards[i+1:]...)
			return c, true
		}
	}
	return Card{}, false
}

// Return puts a card back into the shoe. Used to undo a partial forced
// extraction when the second rank is unavailable.
func (s *Shoe) Return(card Card) {
	s.cards = append(s.cards, card)
}

// Reset rebuilds the full shoe and shuffles it.
func (s *Shoe) Reset() {
	s.build()
	s.Shuffle()
}

// Remaining returns the number of cards left in the shoe.
func (s *Shoe) Remaining() int {
	return len(s.cards)
}

// Size returns the full shoe size (numDecks x 52).
func (s *Shoe) Size() int {
	return s.numDecks * CardsPerDeck
}

// NumDecks returns the number of decks the shoe was built from.
func (s *Shoe) NumDecks() int {
	return s.numDecks
}

// IsEmpty returns true if no cards remain.
func (s *Shoe) IsEmpty() bool {
	return len(s.cards) == 0
}

// Cards returns a copy of the remaining cards in draw order (top last).
// Used to snapshot the shoe for session persistence.
func (s *Shoe) Cards() []Card {
	out := make([]Card, len(s.cards))
	copy(out, s.cards)
	return out
}

// SetCards replaces the remaining cards, restoring a snapshot.
func (s *Shoe) SetCards(cards []Card) {
	s.cards = make([]Card, len(cards))
	copy(s.cards, cards)
}
