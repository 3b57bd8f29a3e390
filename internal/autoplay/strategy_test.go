package autoplay

import (
	"testing"

	"github.com/lox/blackjackd/internal/deck"
	"github.com/lox/blackjackd/internal/game"
)

func hand(compact string) *game.Hand {
	h := game.NewHand()
	h.AddCards(deck.MustParseCards(compact))
	return h
}

func card(compact string) deck.Card {
	return deck.MustParseCards(compact)[0]
}

func TestIsSoft(t *testing.T) {
	tests := []struct {
		cards string
		want  bool
	}{
		{"Ah6c", true},
		{"Ah7c2d", true},
		{"Ah6cTd", false}, // ace forced down to 1
		{"5h6c", false},
		{"AhAd", true},
	}

	for _, tt := range tests {
		if got := isSoft(hand(tt.cards)); got != tt.want {
			t.Errorf("isSoft(%s) = %v, want %v", tt.cards, got, tt.want)
		}
	}
}

func TestHitOrStand(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		cards    string
		upcard   string
		want     Action
	}{
		{"basic stands on 12 vs weak", StrategyBasic, "Th2c", "6h", ActionStand},
		{"basic hits 16 vs strong", StrategyBasic, "Th6c", "Kd", ActionHit},
		{"basic stands on 17 vs strong", StrategyBasic, "Th7c", "Kd", ActionStand},
		{"basic hits 11 vs weak", StrategyBasic, "5h6c", "4d", ActionHit},
		{"soft 17 always hits", StrategyBasic, "Ah6c", "6h", ActionHit},
		{"soft 18 stands vs weak", StrategyBasic, "Ah7c", "6h", ActionStand},
		{"conservative stands on 15 vs strong", StrategyConservative, "Th5c", "Kd", ActionStand},
		{"conservative hits 14 vs strong", StrategyConservative, "Th4c", "Kd", ActionHit},
		{"aggressive hits 13 vs weak", StrategyAggressive, "Th3c", "6h", ActionHit},
		{"aggressive stands on 14 vs weak", StrategyAggressive, "Th4c", "6h", ActionStand},
		{"aggressive hits 17 vs strong", StrategyAggressive, "Th7c", "9d", ActionHit},
		{"aggressive stands on 18 vs strong", StrategyAggressive, "Th8c", "9d", ActionStand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hitOrStand(tt.strategy, hand(tt.cards), card(tt.upcard)); got != tt.want {
				t.Errorf("hitOrStand = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecommendDouble(t *testing.T) {
	tests := []struct {
		name   string
		cards  string
		upcard string
		want   bool
	}{
		{"hard 10 vs 5", "6h4c", "5d", true},
		{"hard 11 vs 2", "6h5c", "2d", true},
		{"hard 9 vs 6", "5h4c", "6d", true},
		{"hard 10 vs 7", "6h4c", "7d", false},
		{"hard 8 vs 5", "5h3c", "5d", false},
		{"hard 12 vs 5", "Th2c", "5d", false},
		{"soft 15 vs 5", "Ah4c", "5d", true},
		{"soft 18 vs 4", "Ah7c", "4d", true},
		{"soft 15 vs 3", "Ah4c", "3d", false},
		{"soft 19 vs 5", "Ah8c", "5d", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := recommendDouble(hand(tt.cards), card(tt.upcard)); got != tt.want {
				t.Errorf("recommendDouble = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecommendSplit(t *testing.T) {
	tests := []struct {
		name   string
		cards  string
		upcard string
		want   bool
	}{
		{"aces always", "AhAd", "Kd", true},
		{"eights always", "8h8d", "Ad", true},
		{"nines vs 5", "9h9d", "5d", true},
		{"nines vs 9", "9h9d", "9d", false},
		{"twos vs 4", "2h2d", "4d", true},
		{"twos vs 8", "2h2d", "8d", false},
		{"fours vs 5", "4h4d", "5d", true},
		{"fours vs 4", "4h4d", "4d", false},
		{"tens never", "ThTd", "6d", false},
		{"fives never", "5h5d", "6d", false},
		{"non-pair", "Th9c", "6d", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := recommendSplit(hand(tt.cards), card(tt.upcard)); got != tt.want {
				t.Errorf("recommendSplit = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecommendSurrender(t *testing.T) {
	tests := []struct {
		name   string
		cards  string
		upcard string
		want   bool
	}{
		{"16 vs ten", "Th6c", "Kd", true},
		{"15 vs ten", "Th5c", "Qd", true},
		{"16 vs 9", "Th6c", "9d", true},
		{"15 vs 9", "Th5c", "9d", false},
		{"16 vs ace", "Th6c", "Ad", false},
		{"14 vs ten", "Th4c", "Kd", false},
		{"soft 16 vs ten", "Ah5c", "Kd", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := recommendSurrender(hand(tt.cards), card(tt.upcard)); got != tt.want {
				t.Errorf("recommendSurrender = %v, want %v", got, tt.want)
			}
		})
	}
}
