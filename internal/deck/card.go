package deck

import "fmt"

// Suit represents a card suit
type Suit int

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

// String returns the lowercase suit name used in API payloads
func (s Suit) String() string {
	switch s {
	case Hearts:
		return "hearts"
	case Diamonds:
		return "diamonds"
	case Clubs:
		return "clubs"
	case Spades:
		return "spades"
	default:
		return "?"
	}
}

// Symbol returns the Unicode symbol for the suit
func (s Suit) Symbol() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// MarshalText implements encoding.TextMarshaler
func (s Suit) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Suit) UnmarshalText(text []byte) error {
	switch string(text) {
	case "hearts":
		*s = Hearts
	case "diamonds":
		*s = Diamonds
	case "clubs":
		*s = Clubs
	case "spades":
		*s = Spades
	default:
		return fmt.Errorf("invalid suit: %q", text)
	}
	return nil
}

// Rank represents a card rank
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the string representation of a rank
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Ten:
		return fmt.Sprintf("%d", int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	default:
		return "?"
	}
}

// ParseRank parses a rank string ("A", "2".."10", "J", "Q", "K")
func ParseRank(s string) (Rank, bool) {
	for r := Two; r <= Ace; r++ {
		if r.String() == s {
			return r, true
		}
	}
	return 0, false
}

// MarshalText implements encoding.TextMarshaler
func (r Rank) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *Rank) UnmarshalText(text []byte) error {
	parsed, ok := ParseRank(string(text))
	if !ok {
		return fmt.Errorf("invalid rank: %q", text)
	}
	*r = parsed
	return nil
}

// Card represents a playing card
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// NewCard creates a new card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// String returns the display representation of a card (e.g., "A♠")
func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit.Symbol())
}

// BlackjackValue returns the card's base blackjack value.
// Face cards count 10 and Aces count 11; ace flexing happens in HandValue.
func (c Card) BlackjackValue() int {
	switch {
	case c.Rank == Ace:
		return 11
	case c.Rank >= Ten:
		return 10
	default:
		return int(c.Rank)
	}
}

// IsAce returns true if the card is an Ace
func (c Card) IsAce() bool {
	return c.Rank == Ace
}

// IsTenValue returns true if the card counts 10 (T, J, Q, K)
func (c Card) IsTenValue() bool {
	return c.Rank >= Ten && c.Rank <= King
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}
