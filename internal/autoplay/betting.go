package autoplay

import "github.com/lox/blackjackd/internal/game"

// betSizer computes the stake for each round. Progressive sizing doubles
// after a loss and resets on any other outcome; only the bet actually
// placed is clamped, and only to the table max.
type betSizer struct {
	strategy BetStrategy
	base     int
	percent  int
	current  int
}

func newBetSizer(cfg Config) *betSizer {
	return &betSizer{
		strategy: cfg.BetStrategy,
		base:     cfg.DefaultBet,
		percent:  cfg.BetPercent,
		current:  cfg.DefaultBet,
	}
}

// Next returns the bet for the upcoming round given the current bankroll
// and table rules.
func (b *betSizer) Next(chips int, table game.Config) int {
	switch b.strategy {
	case BetProgressive:
		bet := b.current
		if bet > table.MaxBet {
			bet = table.MaxBet
		}
		return bet

	case BetPercentage:
		bet := chips * b.percent / 100
		if bet > table.MaxBet {
			bet = table.MaxBet
		}
		if bet < table.MinBet {
			bet = table.MinBet
		}
		return bet

	default:
		return b.base
	}
}

// Observe feeds a round outcome back into the sizer.
func (b *betSizer) Observe(result game.Result) {
	if b.strategy != BetProgressive {
		return
	}
	if result == game.ResultLoss {
		b.current *= 2
	} else {
		b.current = b.base
	}
}
