package autoplay

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjackd/internal/game"
)

// Status is the terminal state of an auto-play session.
type Status string

const (
	StatusFinished             Status = "finished"
	StatusInsufficientBankroll Status = "insufficient_bankroll"
	StatusStopped              Status = "stopped"
	StatusError                Status = "error"
)

// Sink receives the ordered, human-readable lines of an auto-play
// session. Sink failures never abort gameplay.
type Sink interface {
	Append(at time.Time, line string) error
}

// sinkSubscriber bridges round events onto the sink, writing a header
// line at each round boundary.
type sinkSubscriber struct {
	sink Sink
}

func (s *sinkSubscriber) OnEvent(event game.RoundEvent) {
	if s.sink == nil {
		return
	}
	if e, ok := event.(game.RoundStartEvent); ok {
		_ = s.sink.Append(event.Timestamp(), fmt.Sprintf("=== round %s ===", e.RoundID))
	}
	_ = s.sink.Append(event.Timestamp(), game.FormatEvent(event))
}

// Driver plays rounds back to back under a fixed configuration until the
// hand counter runs out, the bankroll cannot cover the next bet, play is
// stopped, or an action unexpectedly fails.
//
// The driver mutates the Round it was given; when the Round is shared
// with other callers, set Locker so each round executes under their lock.
type Driver struct {
	cfg    Config
	round  *game.Round
	sink   Sink
	logger *log.Logger

	// Locker, when set, is held for the duration of each round.
	Locker sync.Locker

	stopped        atomic.Bool
	handsRemaining atomic.Int64
}

// New creates a driver for the given round. sink may be nil.
func New(round *game.Round, cfg Config, sink Sink, logger *log.Logger) *Driver {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = log.New(io.Discard)
	}
	d := &Driver{cfg: cfg, round: round, sink: sink, logger: logger}
	d.handsRemaining.Store(int64(cfg.Hands))
	return d
}

// Config returns the session configuration after defaulting.
func (d *Driver) Config() Config { return d.cfg }

// HandsRemaining reports how many rounds are still to be played.
func (d *Driver) HandsRemaining() int { return int(d.handsRemaining.Load()) }

// Stop requests a halt; the driver finishes the in-flight round first.
func (d *Driver) Stop() { d.stopped.Store(true) }

// Run executes the session and returns the accumulated statistics and
// the terminal status. Only StatusError carries a non-nil error.
func (d *Driver) Run(ctx context.Context) (*SessionStats, Status, error) {
	if err := d.cfg.Validate(); err != nil {
		return nil, StatusError, err
	}

	stats := &SessionStats{}
	sizer := newBetSizer(d.cfg)

	sub := &sinkSubscriber{sink: d.sink}
	d.round.Bus().Subscribe(sub)
	defer d.round.Bus().Unsubscribe(sub)

	for d.handsRemaining.Load() > 0 {
		if ctx.Err() != nil || d.stopped.Load() {
			return stats, StatusStopped, nil
		}

		status, err := d.playRound(sizer, stats)
		if err != nil {
			return stats, StatusError, err
		}
		if status != "" {
			return stats, status, nil
		}
		d.handsRemaining.Add(-1)
	}

	d.logger.Info("Auto-play finished",
		"rounds", stats.Rounds,
		"net", stats.NetChips,
		"win_rate", fmt.Sprintf("%.1f%%", stats.WinRate()*100))
	return stats, StatusFinished, nil
}

// playRound executes one complete round. A non-empty status halts the
// session without error.
func (d *Driver) playRound(sizer *betSizer, stats *SessionStats) (Status, error) {
	if d.Locker != nil {
		d.Locker.Lock()
		defer d.Locker.Unlock()
	}

	r := d.round
	if r.State() != game.StateBetting {
		r.NewGame()
	}

	startChips := r.Player().Chips
	bet := sizer.Next(startChips, r.TableConfig())
	if bet <= 0 || startChips < bet {
		d.logger.Debug("Bankroll exhausted", "chips", startChips, "bet", bet)
		return StatusInsufficientBankroll, nil
	}

	if res := r.PlaceBet(bet); !res.Success {
		return "", fmt.Errorf("place bet: %s", res.Message)
	}
	if res := r.Deal(); !res.Success {
		return "", fmt.Errorf("deal: %s", res.Message)
	}

	if r.EvenMoneyPending() || r.InsurancePending() {
		if err := d.resolveOffer(); err != nil {
			return "", err
		}
	}

	for i := 0; r.State() == game.StatePlayerTurn; i++ {
		if i > 64 {
			return "", fmt.Errorf("auto-play did not converge after %d actions", i)
		}
		action := d.decide()
		if res := d.apply(action); !res.Success {
			return "", fmt.Errorf("%s: %s", action, res.Message)
		}
	}

	net := r.Player().Chips - startChips
	stats.Add(RoundResult{Net: net, Bet: bet, Result: r.Result()})
	sizer.Observe(r.Result())
	d.logger.Debug("Auto-play round complete", "result", r.Result(), "net", net, "chips", r.Player().Chips)
	return "", nil
}

// resolveOffer answers a pending insurance or even-money offer per the
// configured policy. An underfunded insurance buy degrades to a decline.
func (d *Driver) resolveOffer() error {
	r := d.round

	decision := "decline"
	if d.cfg.Insurance == PolicyAlways {
		if r.EvenMoneyPending() {
			decision = "even_money"
		} else {
			decision = "buy"
		}
	}

	res := r.InsuranceDecision(decision)
	if !res.Success && decision == "buy" {
		res = r.InsuranceDecision("decline")
	}
	if !res.Success {
		return fmt.Errorf("insurance: %s", res.Message)
	}
	return nil
}

// decide picks the next action for the active hand, evaluated in fixed
// priority order: surrender, split, split-aces stand, double, then the
// hit/stand table.
func (d *Driver) decide() Action {
	r := d.round
	hand := r.Player().ActiveHand()
	if hand == nil {
		return ActionStand
	}
	up, ok := r.Dealer().Upcard()
	if !ok {
		return ActionStand
	}
	chips := r.Player().Chips

	if hand.CanSurrender() && prefAllows(d.cfg.Surrender, recommendSurrender(hand, up)) {
		return ActionSurrender
	}
	if hand.CanSplit() && len(r.Player().Hands) < game.MaxHands && chips >= hand.Bet &&
		prefAllows(d.cfg.Split, recommendSplit(hand, up)) {
		return ActionSplit
	}
	if hand.FromSplitAces {
		return ActionStand
	}
	if hand.CanDoubleDown() && chips >= hand.Bet && prefAllows(d.cfg.DoubleDown, recommendDouble(hand, up)) {
		return ActionDouble
	}
	return hitOrStand(d.cfg.Strategy, hand, up)
}

func (d *Driver) apply(action Action) game.ActionResult {
	switch action {
	case ActionHit:
		return d.round.Hit()
	case ActionStand:
		return d.round.Stand()
	case ActionDouble:
		return d.round.DoubleDown()
	case ActionSplit:
		return d.round.Split()
	case ActionSurrender:
		return d.round.Surrender()
	default:
		return game.ActionResult{Success: false, Message: fmt.Sprintf("unknown action %q", action)}
	}
}

func prefAllows(pref ActionPref, recommended bool) bool {
	switch pref {
	case PrefAlways:
		return true
	case PrefRecommended:
		return recommended
	default:
		return false
	}
}
