package deck

import "testing"

func TestHandValue(t *testing.T) {
	tests := []struct {
		name  string
		cards string
		value int
	}{
		{"simple", "5h6d", 11},
		{"face cards", "KhQd", 20},
		{"single ace high", "Ah7d", 18},
		{"ace flexes down", "Ah7d9c", 17},
		{"two aces", "AhAd", 12},
		{"two aces with nine", "AhAd9c", 21},
		{"all four aces", "AhAdAcAs", 14},
		{"blackjack", "AhKs", 21},
		{"bust keeps minimal total", "KhQd5c9s", 34},
		{"aces all downgraded still bust", "AhAdKdQc", 22},
		{"empty hand", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HandValue(MustParseCards(tt.cards)); got != tt.value {
				t.Errorf("HandValue(%q) = %d, want %d", tt.cards, got, tt.value)
			}
		})
	}
}

// HandValue must equal the best total over every ace assignment.
func TestHandValueMatchesExhaustiveAssignment(t *testing.T) {
	hands := []string{
		"Ah", "AhAd", "AhAdAc", "AhAdAcAs",
		"Ah9d", "AhAd9c", "Ah5d5c", "AhTdTc",
		"AhKd", "AhKdAc", "9h9d9c", "AhAd8c8s",
	}

	for _, s := range hands {
		cards := MustParseCards(s)
		want := bestAssignment(cards)
		if got := HandValue(cards); got != want {
			t.Errorf("HandValue(%q) = %d, want %d", s, got, want)
		}
	}
}

// bestAssignment brute-forces every ace-as-1/11 combination.
func bestAssignment(cards []Card) int {
	var aces int
	base := 0
	for _, c := range cards {
		if c.IsAce() {
			aces++
			base += 1
		} else {
			base += c.BlackjackValue()
		}
	}

	best := -1
	minBust := -1
	for high := 0; high <= aces; high++ {
		total := base + high*10
		if total <= 21 {
			if total > best {
				best = total
			}
		} else if minBust == -1 || total < minBust {
			minBust = total
		}
	}
	if best >= 0 {
		return best
	}
	return minBust
}

func TestIsBlackjack(t *testing.T) {
	tests := []struct {
		cards string
		want  bool
	}{
		{"AhKs", true},
		{"AhTd", true},
		{"KhQd", false},       // 20
		{"Ah5d5c", false}, // 21 but three cards
		{"7h7d", false},   // pair, only 14
	}
	for _, tt := range tests {
		if got := IsBlackjack(MustParseCards(tt.cards)); got != tt.want {
			t.Errorf("IsBlackjack(%q) = %v, want %v", tt.cards, got, tt.want)
		}
	}
}

func TestIsSoft17(t *testing.T) {
	tests := []struct {
		cards string
		want  bool
	}{
		{"Ah6d", true},
		{"Ah2d4c", true},
		{"AhAd5c", true},
		{"Th7d", false},     // hard 17
		{"Ah6dTc", false},   // ace downgraded, hard 17
		{"Ah7d", false},     // soft 18
	}
	for _, tt := range tests {
		if got := IsSoft17(MustParseCards(tt.cards)); got != tt.want {
			t.Errorf("IsSoft17(%q) = %v, want %v", tt.cards, got, tt.want)
		}
	}
}

func TestIsBust(t *testing.T) {
	if IsBust(MustParseCards("KhQd")) {
		t.Error("20 is not bust")
	}
	if IsBust(MustParseCards("AhKdQc")) {
		t.Error("soft hand flexes under 21")
	}
	if !IsBust(MustParseCards("KhQd5c")) {
		t.Error("25 is bust")
	}
}

func TestIsPair(t *testing.T) {
	if !IsPair(MustParseCards("8h8d")) {
		t.Error("equal ranks are a pair")
	}
	if IsPair(MustParseCards("KhQd")) {
		t.Error("K and Q are not a pair")
	}
	if IsPair(MustParseCards("ThTd8c")) {
		t.Error("three cards are never a pair")
	}
}
