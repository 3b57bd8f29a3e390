package deck

import (
	"fmt"
	"strings"
)

// ParseCards parses a compact card string like "AhKs6d" into cards.
// Ranks use single characters (A23456789TJQK), suits are h/d/c/s.
// Case insensitive.
func ParseCards(s string) ([]Card, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("invalid card string length: %q", s)
	}

	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		rank, ok := parseRankChar(s[i])
		if !ok {
			return nil, fmt.Errorf("invalid rank %q in %q", string(s[i]), s)
		}
		suit, ok := parseSuitChar(s[i+1])
		if !ok {
			return nil, fmt.Errorf("invalid suit %q in %q", string(s[i+1]), s)
		}
		cards = append(cards, NewCard(suit, rank))
	}
	return cards, nil
}

// MustParseCards parses a card string and panics on error. Test helper.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

func parseRankChar(c byte) (Rank, bool) {
	switch strings.ToUpper(string(c)) {
	case "2", "3", "4", "5", "6", "7", "8", "9":
		return Rank(c - '0'), true
	case "T":
		return Ten, true
	case "J":
		return Jack, true
	case "Q":
		return Queen, true
	case "K":
		return King, true
	case "A":
		return Ace, true
	default:
		return 0, false
	}
}

func parseSuitChar(c byte) (Suit, bool) {
	switch strings.ToLower(string(c)) {
	case "h":
		return Hearts, true
	case "d":
		return Diamonds, true
	case "c":
		return Clubs, true
	case "s":
		return Spades, true
	default:
		return 0, false
	}
}
