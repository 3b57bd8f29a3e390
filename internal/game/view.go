package game

import "github.com/lox/blackjackd/internal/deck"

// HandView is the API projection of a single hand, including the legal
// follow-up actions so clients never have to re-derive the rules.
type HandView struct {
	Cards         []deck.Card `json:"cards"`
	Value         int         `json:"value"`
	Bet           int         `json:"bet"`
	IsBlackjack   bool        `json:"is_blackjack"`
	IsBust        bool        `json:"is_bust"`
	DoubledDown   bool        `json:"doubled_down"`
	Split         bool        `json:"split"`
	FromSplitAces bool        `json:"from_split_aces"`
	Surrendered   bool        `json:"surrendered"`
	CharlieWin    bool        `json:"charlie_win"`
	CanDoubleDown bool        `json:"can_double_down"`
	CanSplit      bool        `json:"can_split"`
	CanSurrender  bool        `json:"can_surrender"`
}

// DealerView is the API projection of the dealer's hand. While the hole
// card is hidden, Cards and Value cover only the visible cards.
type DealerView struct {
	Cards      []deck.Card `json:"cards"`
	Value      int         `json:"value"`
	HoleHidden bool        `json:"hole_hidden"`
}

// TableView echoes the table rules back to clients.
type TableView struct {
	MinBet    int  `json:"min_bet"`
	MaxBet    int  `json:"max_bet"`
	NumDecks  int  `json:"num_decks"`
	HitSoft17 bool `json:"hit_soft_17"`
}

// StatsView carries the cumulative per-session counters.
type StatsView struct {
	Wins       int `json:"wins"`
	Losses     int `json:"losses"`
	Pushes     int `json:"pushes"`
	Blackjacks int `json:"blackjacks"`
}

// View is the full client-facing state of a round. It is a projection:
// the hole card never appears here until the round reveals it.
type View struct {
	GameID  string `json:"game_id"`
	RoundID string `json:"round_id"`
	State   State  `json:"state"`
	Result  Result `json:"result,omitempty"`

	Chips       int        `json:"chips"`
	CurrentHand int        `json:"current_hand"`
	Hands       []HandView `json:"hands"`
	Dealer      DealerView `json:"dealer"`

	InsurancePending bool `json:"insurance_pending"`
	EvenMoneyPending bool `json:"even_money_pending"`
	InsuranceAmount  int  `json:"insurance_amount,omitempty"`

	ShoeRemaining int       `json:"shoe_remaining"`
	Table         TableView `json:"table"`
	Stats         StatsView `json:"stats"`
}

// View builds the client-facing projection of the round.
func (r *Round) View() View {
	hands := make([]HandView, len(r.player.Hands))
	for i, h := range r.player.Hands {
		hands[i] = HandView{
			Cards:         append([]deck.Card(nil), h.Cards...),
			Value:         h.Value(),
			Bet:           h.Bet,
			IsBlackjack:   h.IsBlackjack(),
			IsBust:        h.IsBust(),
			DoubledDown:   h.DoubledDown,
			Split:         h.Split,
			FromSplitAces: h.FromSplitAces,
			Surrendered:   h.Surrendered,
			CharlieWin:    h.CharlieWin,
			CanDoubleDown: h.CanDoubleDown(),
			CanSplit:      h.CanSplit() && len(r.player.Hands) < MaxHands,
			CanSurrender:  h.CanSurrender(),
		}
	}

	dealerValue, _ := r.dealer.VisibleValue()
	return View{
		GameID:  r.ID,
		RoundID: r.RoundID(),
		State:   r.state,
		Result:  r.result,

		Chips:       r.player.Chips,
		CurrentHand: r.player.CurrentHand,
		Hands:       hands,
		Dealer: DealerView{
			Cards:      r.dealer.VisibleCards(),
			Value:      dealerValue,
			HoleHidden: r.dealer.HoleHidden,
		},

		InsurancePending: r.insurancePending,
		EvenMoneyPending: r.evenMoneyPending,
		InsuranceAmount:  r.insuranceBet,

		ShoeRemaining: r.shoe.Remaining(),
		Table: TableView{
			MinBet:    r.cfg.MinBet,
			MaxBet:    r.cfg.MaxBet,
			NumDecks:  r.cfg.NumDecks,
			HitSoft17: r.cfg.HitSoft17,
		},
		Stats: StatsView{
			Wins:       r.player.TotalWins,
			Losses:     r.player.TotalLosses,
			Pushes:     r.player.TotalPushes,
			Blackjacks: r.player.TotalBlackjacks,
		},
	}
}
