package autoplay

import (
	"fmt"
	"math"
	"sort"

	"github.com/lox/blackjackd/internal/game"
)

// RoundResult is the outcome of a single auto-played round.
type RoundResult struct {
	Net    int         // chip delta for the round, bets included
	Bet    int         // initial stake
	Result game.Result // overall round label
}

// SessionStats accumulates per-round results across an auto-play session.
type SessionStats struct {
	Rounds  int
	SumNet  float64
	SumNet2 float64
	Values  []float64

	Wins       int
	Losses     int
	Pushes     int
	Blackjacks int
	EvenMoney  int

	TotalWagered int
	NetChips     int
}

// Add incorporates one round result.
func (s *SessionStats) Add(result RoundResult) {
	net := float64(result.Net)
	s.Rounds++
	s.SumNet += net
	s.SumNet2 += net * net
	s.Values = append(s.Values, net)

	s.TotalWagered += result.Bet
	s.NetChips += result.Net

	switch result.Result {
	case game.ResultWin:
		s.Wins++
	case game.ResultLoss:
		s.Losses++
	case game.ResultPush:
		s.Pushes++
	case game.ResultBlackjack:
		s.Wins++
		s.Blackjacks++
	case game.ResultEvenMoney:
		s.Wins++
		s.EvenMoney++
	}
}

// Mean returns the average net chips per round.
func (s *SessionStats) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumNet / float64(s.Rounds)
}

// Variance returns the sample variance of per-round net chips.
func (s *SessionStats) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumNet2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation of per-round net chips.
func (s *SessionStats) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// Median returns the median per-round net.
func (s *SessionStats) Median() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// WinRate returns the fraction of rounds won, blackjacks included.
func (s *SessionStats) WinRate() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Rounds)
}

// Validate cross-checks the accumulators against the stored values.
func (s *SessionStats) Validate() error {
	if len(s.Values) != s.Rounds {
		return fmt.Errorf("stored %d values for %d rounds", len(s.Values), s.Rounds)
	}
	sum := 0.0
	for _, v := range s.Values {
		sum += v
	}
	if math.Abs(sum-s.SumNet) > 1e-9 {
		return fmt.Errorf("sum of values %.2f does not match accumulator %.2f", sum, s.SumNet)
	}
	if counted := s.Wins + s.Losses + s.Pushes; counted > s.Rounds {
		return fmt.Errorf("outcome counts %d exceed rounds %d", counted, s.Rounds)
	}
	return nil
}
