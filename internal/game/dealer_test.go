package game

import (
	"testing"

	"github.com/lox/blackjackd/internal/deck"
	"github.com/lox/blackjackd/internal/randutil"
)

func TestDealerShouldHit(t *testing.T) {
	tests := []struct {
		name       string
		cards      string
		hitsSoft17 bool
		want       bool
	}{
		{"sixteen hits", "Th6c", false, true},
		{"hard seventeen stands", "Th7c", false, false},
		{"hard seventeen stands even when hitting soft", "Th7c", true, false},
		{"soft seventeen stands by default", "Ah6c", false, false},
		{"soft seventeen hits when configured", "Ah6c", true, true},
		{"eighteen stands", "Th8c", true, false},
		{"ace plus six plus ten is hard seventeen", "Ah6cTd", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDealer()
			d.AddCards(deck.MustParseCards(tt.cards))
			if got := d.ShouldHit(tt.hitsSoft17); got != tt.want {
				t.Errorf("ShouldHit(%v) = %v, want %v", tt.hitsSoft17, got, tt.want)
			}
		})
	}
}

func TestDealerPlayOutStopsAtSeventeen(t *testing.T) {
	shoe := deck.NewShoe(1, randutil.New(7))
	shoe.SetCards(deck.MustParseCards("2c5d"))

	d := NewDealer()
	d.AddCards(deck.MustParseCards("Th2h"))
	d.PlayOut(shoe, false)

	// 12, then +5 is 17, the trailing 2c must stay in the shoe.
	if d.Value() != 17 {
		t.Errorf("dealer value = %d, want 17", d.Value())
	}
	if d.HoleHidden {
		t.Error("hole card should be revealed after play out")
	}
	if shoe.Remaining() != 1 {
		t.Errorf("shoe remaining = %d, want 1", shoe.Remaining())
	}
}

func TestDealerPlayOutHitsSoftSeventeen(t *testing.T) {
	shoe := deck.NewShoe(1, randutil.New(7))
	shoe.SetCards(deck.MustParseCards("3c"))

	d := NewDealer()
	d.AddCards(deck.MustParseCards("Ah6h"))
	d.PlayOut(shoe, true)

	if d.Value() != 20 {
		t.Errorf("dealer value = %d, want 20", d.Value())
	}
}

func TestDealerPlayOutStopsOnEmptyShoe(t *testing.T) {
	shoe := deck.NewShoe(1, randutil.New(7))
	shoe.SetCards(nil)

	d := NewDealer()
	d.AddCards(deck.MustParseCards("Th2h"))
	d.PlayOut(shoe, false)

	if d.Value() != 12 {
		t.Errorf("dealer value = %d, want 12", d.Value())
	}
}

func TestDealerVisibleValueHidesHoleCard(t *testing.T) {
	d := NewDealer()

	if _, ok := d.VisibleValue(); ok {
		t.Error("empty hand should report no visible value")
	}

	d.AddCards(deck.MustParseCards("Kh7c"))

	value, ok := d.VisibleValue()
	if !ok || value != 7 {
		t.Errorf("visible value = %d, %v, want 7, true", value, ok)
	}
	if cards := d.VisibleCards(); len(cards) != 1 || cards[0].Rank != deck.Seven {
		t.Errorf("visible cards = %v, want just the seven", cards)
	}

	up, ok := d.Upcard()
	if !ok || up.Rank != deck.Seven {
		t.Errorf("upcard = %v, %v, want seven", up, ok)
	}

	d.RevealHoleCard()
	value, ok = d.VisibleValue()
	if !ok || value != 17 {
		t.Errorf("revealed value = %d, %v, want 17, true", value, ok)
	}
	if len(d.VisibleCards()) != 2 {
		t.Error("all cards should be visible after reveal")
	}
}

func TestDealerClearHidesHoleCardAgain(t *testing.T) {
	d := NewDealer()
	d.AddCards(deck.MustParseCards("Kh7c"))
	d.RevealHoleCard()

	d.Clear()
	if len(d.Cards) != 0 {
		t.Error("clear should empty the hand")
	}
	if !d.HoleHidden {
		t.Error("clear should re-hide the hole card")
	}
}
