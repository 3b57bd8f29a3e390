package game

import (
	"io"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjackd/internal/deck"
)

// PlayerSnapshot captures the player's persistent state.
type PlayerSnapshot struct {
	Chips           int     `json:"chips"`
	Hands           []*Hand `json:"hands"`
	CurrentHand     int     `json:"current_hand"`
	TotalWins       int     `json:"total_wins"`
	TotalLosses     int     `json:"total_losses"`
	TotalPushes     int     `json:"total_pushes"`
	TotalBlackjacks int     `json:"total_blackjacks"`
}

// Snapshot is the complete serializable state of a Round, sufficient to
// restore it byte for byte, shoe order included.
type Snapshot struct {
	ID       string `json:"id"`
	RoundSeq int    `json:"round_seq"`
	Config   Config `json:"config"`

	ShoeCards []deck.Card    `json:"shoe_cards"`
	Dealer    Dealer         `json:"dealer"`
	Player    PlayerSnapshot `json:"player"`

	State  State  `json:"state"`
	Result Result `json:"result"`

	InsurancePending  bool        `json:"insurance_pending,omitempty"`
	EvenMoneyPending  bool        `json:"even_money_pending,omitempty"`
	InsuranceBet      int         `json:"insurance_bet,omitempty"`
	InsuranceResolved bool        `json:"insurance_resolved,omitempty"`
	Peeked            bool        `json:"peeked,omitempty"`
	ForcedDealerRanks []deck.Rank `json:"forced_dealer_ranks,omitempty"`

	Audit []RoundRecord `json:"audit,omitempty"`
}

// Snapshot captures the round's full state for persistence.
func (r *Round) Snapshot() Snapshot {
	hands := make([]*Hand, len(r.player.Hands))
	for i, h := range r.player.Hands {
		copied := *h
		copied.Cards = append([]deck.Card(nil), h.Cards...)
		hands[i] = &copied
	}

	dealer := *r.dealer
	dealer.Cards = append([]deck.Card(nil), r.dealer.Cards...)

	return Snapshot{
		ID:       r.ID,
		RoundSeq: r.roundSeq,
		Config:   r.cfg,

		ShoeCards: r.shoe.Cards(),
		Dealer:    dealer,
		Player: PlayerSnapshot{
			Chips:           r.player.Chips,
			Hands:           hands,
			CurrentHand:     r.player.CurrentHand,
			TotalWins:       r.player.TotalWins,
			TotalLosses:     r.player.TotalLosses,
			TotalPushes:     r.player.TotalPushes,
			TotalBlackjacks: r.player.TotalBlackjacks,
		},

		State:  r.state,
		Result: r.result,

		InsurancePending:  r.insurancePending,
		EvenMoneyPending:  r.evenMoneyPending,
		InsuranceBet:      r.insuranceBet,
		InsuranceResolved: r.insuranceResolved,
		Peeked:            r.peeked,
		ForcedDealerRanks: append([]deck.Rank(nil), r.forcedDealerRanks...),

		Audit: r.audit.Records(),
	}
}

// RestoreRound rebuilds a Round from a snapshot. The rng only drives
// future reshuffles; the snapshot's shoe order is restored as-is.
func RestoreRound(snap Snapshot, rng *rand.Rand, logger *log.Logger) *Round {
	cfg := snap.Config
	cfg.applyDefaults()
	if logger == nil {
		logger = log.New(io.Discard)
	}

	shoe := deck.NewShoe(cfg.NumDecks, rng)
	shoe.SetCards(snap.ShoeCards)

	dealer := NewDealer()
	dealer.Cards = append(dealer.Cards, snap.Dealer.Cards...)
	dealer.HoleHidden = snap.Dealer.HoleHidden

	player := NewPlayer(snap.Player.Chips)
	player.CurrentHand = snap.Player.CurrentHand
	player.TotalWins = snap.Player.TotalWins
	player.TotalLosses = snap.Player.TotalLosses
	player.TotalPushes = snap.Player.TotalPushes
	player.TotalBlackjacks = snap.Player.TotalBlackjacks
	if len(snap.Player.Hands) > 0 {
		player.Hands = make([]*Hand, len(snap.Player.Hands))
		for i, h := range snap.Player.Hands {
			copied := *h
			copied.Cards = append([]deck.Card(nil), h.Cards...)
			player.Hands[i] = &copied
		}
	}

	r := &Round{
		ID:     snap.ID,
		cfg:    cfg,
		shoe:   shoe,
		dealer: dealer,
		player: player,
		state:  snap.State,
		result: snap.Result,

		roundSeq:          snap.RoundSeq,
		insurancePending:  snap.InsurancePending,
		evenMoneyPending:  snap.EvenMoneyPending,
		insuranceBet:      snap.InsuranceBet,
		insuranceResolved: snap.InsuranceResolved,
		peeked:            snap.Peeked,
		forcedDealerRanks: append([]deck.Rank(nil), snap.ForcedDealerRanks...),

		bus:    NewEventBus(),
		audit:  NewAuditLog(),
		logger: logger,
	}
	if r.roundSeq == 0 {
		r.roundSeq = 1
	}
	r.audit.SetRecords(snap.Audit)
	r.bus.Subscribe(r.audit)
	return r
}
