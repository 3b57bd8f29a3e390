package deck

// HandValue returns the best blackjack total for the given cards.
// Aces start at 11 and are downgraded to 1 one at a time while the total
// busts. The result is the highest total <= 21 reachable by any ace
// assignment, or the minimal over-21 total once every ace counts 1.
func HandValue(cards []Card) int {
	total := 0
	aces := 0

	for _, c := range cards {
		if c.IsAce() {
			aces++
		}
		total += c.BlackjackValue()
	}

	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}

	return total
}

// IsBlackjack returns true for a natural: exactly two cards totalling 21.
func IsBlackjack(cards []Card) bool {
	return len(cards) == 2 && HandValue(cards) == 21
}

// IsSoft17 returns true when the hand is 17 with an ace still counted as 11.
func IsSoft17(cards []Card) bool {
	if HandValue(cards) != 17 {
		return false
	}

	// Soft means no ace was downgraded: the all-aces-high total is still 17.
	hard := 0
	hasAce := false
	for _, c := range cards {
		if c.IsAce() {
			hasAce = true
		}
		hard += c.BlackjackValue()
	}
	return hasAce && hard == 17
}

// IsBust returns true when the best total exceeds 21.
func IsBust(cards []Card) bool {
	return HandValue(cards) > 21
}

// IsPair returns true for exactly two cards of equal rank.
func IsPair(cards []Card) bool {
	return len(cards) == 2 && cards[0].Rank == cards[1].Rank
}
