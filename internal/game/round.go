package game

import (
	"fmt"
	"io"
	rand "math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/lox/blackjackd/internal/deck"
)

// Config carries the table rules for a round.
type Config struct {
	StartingChips int  `json:"starting_chips"`
	NumDecks      int  `json:"num_decks"`
	MinBet        int  `json:"min_bet"`
	MaxBet        int  `json:"max_bet"`
	HitSoft17     bool `json:"hit_soft_17"`
}

// applyDefaults fills zero values with table defaults.
func (c *Config) applyDefaults() {
	if c.StartingChips == 0 {
		c.StartingChips = 1000
	}
	if c.NumDecks == 0 {
		c.NumDecks = 1
	}
	if c.MinBet == 0 {
		c.MinBet = 1
	}
	if c.MaxBet == 0 {
		c.MaxBet = 1000
	}
}

// Round is the blackjack state machine for one game session. It owns the
// shoe, the dealer and the player exclusively, and is reused across many
// rounds via NewGame; chips and shoe position carry forward.
//
// A Round is not safe for concurrent use; the session layer serializes
// access per game id.
type Round struct {
	ID  string
	cfg Config

	shoe   *deck.Shoe
	dealer *Dealer
	player *Player

	state  State
	result Result

	roundSeq          int
	insurancePending  bool
	evenMoneyPending  bool
	insuranceBet      int
	insuranceResolved bool
	peeked            bool
	forcedDealerRanks []deck.Rank

	bus    EventBus
	audit  *AuditLog
	logger *log.Logger
}

// NewRound creates a round with a freshly shuffled shoe and a player at
// the configured starting chips, ready for the first bet.
func NewRound(cfg Config, rng *rand.Rand, logger *log.Logger) *Round {
	cfg.applyDefaults()
	if logger == nil {
		logger = log.New(io.Discard)
	}

	r := &Round{
		ID:     uuid.NewString(),
		cfg:    cfg,
		shoe:   deck.NewShoe(cfg.NumDecks, rng),
		dealer: NewDealer(),
		player: NewPlayer(cfg.StartingChips),
		state:  StateBetting,
		bus:    NewEventBus(),
		audit:  NewAuditLog(),
		logger: logger,
	}
	r.bus.Subscribe(r.audit)
	r.roundSeq = 1
	r.bus.Publish(RoundStartEvent{
		RoundID:   r.RoundID(),
		Chips:     r.player.Chips,
		ShoeLeft:  r.shoe.Remaining(),
		timestamp: time.Now(),
	})
	return r
}

// RoundID identifies the current round within the session.
func (r *Round) RoundID() string {
	return fmt.Sprintf("%s/%d", r.ID, r.roundSeq)
}

// Bus exposes the event bus for additional observers.
func (r *Round) Bus() EventBus { return r.bus }

// Audit returns the bounded ring of finalized round records.
func (r *Round) Audit() *AuditLog { return r.audit }

// Player returns the player account.
func (r *Round) Player() *Player { return r.player }

// Dealer returns the dealer agent.
func (r *Round) Dealer() *Dealer { return r.dealer }

// Shoe returns the draw pile.
func (r *Round) Shoe() *deck.Shoe { return r.shoe }

// State returns the current phase.
func (r *Round) State() State { return r.state }

// Result returns the round's overall outcome label, empty until settled.
func (r *Round) Result() Result { return r.result }

// TableConfig returns the table rules.
func (r *Round) TableConfig() Config { return r.cfg }

// InsurancePending reports whether an insurance offer blocks play.
func (r *Round) InsurancePending() bool { return r.insurancePending }

// EvenMoneyPending reports whether an even-money offer blocks play.
func (r *Round) EvenMoneyPending() bool { return r.evenMoneyPending }

// InsuranceAmount returns the offered insurance stake (half the bet,
// floor-rounded), zero when no offer is open.
func (r *Round) InsuranceAmount() int { return r.insuranceBet }

// SetForcedDealerHand configures the deterministic dealer hand used by
// tests: the next deal pulls these two ranks from the shoe, first as the
// hole card. Falls back silently to random dealing if either rank is
// unavailable.
func (r *Round) SetForcedDealerHand(hole, up deck.Rank) {
	r.forcedDealerRanks = []deck.Rank{hole, up}
}

// ClearForcedDealerHand removes the forced dealer hand.
func (r *Round) ClearForcedDealerHand() {
	r.forcedDealerRanks = nil
}

// NewGame resets the dealer and player hands for the next round, keeping
// chips and shoe position. The shoe is rebuilt and reshuffled when fewer
// than half its cards remain.
func (r *Round) NewGame() {
	if r.state != StateBetting {
		r.roundSeq++
	}
	r.dealer.Clear()
	r.player.ResetHands()
	r.state = StateBetting
	r.result = ResultNone
	r.insurancePending = false
	r.evenMoneyPending = false
	r.insuranceBet = 0
	r.insuranceResolved = false
	r.peeked = false

	if r.shoe.Remaining() < r.shoe.Size()/2 {
		r.shoe.Reset()
		r.logger.Debug("Shoe reshuffled", "remaining", r.shoe.Remaining())
		r.bus.Publish(ShoeShuffledEvent{Remaining: r.shoe.Remaining(), timestamp: time.Now()})
	}

	r.bus.Publish(RoundStartEvent{
		RoundID:   r.RoundID(),
		Chips:     r.player.Chips,
		ShoeLeft:  r.shoe.Remaining(),
		timestamp: time.Now(),
	})
}

// PlaceBet stakes a bet on the active hand during the betting phase.
func (r *Round) PlaceBet(amount int) ActionResult {
	if r.state != StateBetting {
		return failure("not in betting phase")
	}
	if amount <= 0 {
		return failure("bet must be greater than 0")
	}
	if amount < r.cfg.MinBet || amount > r.cfg.MaxBet {
		return failure(fmt.Sprintf("bet must be between %d and %d", r.cfg.MinBet, r.cfg.MaxBet))
	}
	if err := r.player.PlaceBet(amount); err != nil {
		return failure("insufficient funds")
	}

	r.logger.Debug("Bet placed", "amount", amount, "chips", r.player.Chips)
	r.bus.Publish(BetPlacedEvent{Amount: amount, ChipsLeft: r.player.Chips, timestamp: time.Now()})
	return success(fmt.Sprintf("bet of $%d placed", amount))
}

// Deal draws the initial two cards for player and dealer and runs the
// blackjack/insurance/peek branching.
func (r *Round) Deal() ActionResult {
	if r.state != StateBetting {
		return failure("not in betting phase")
	}
	hand := r.player.ActiveHand()
	if hand == nil || hand.Bet == 0 {
		return failure("must place a bet first")
	}

	r.state = StateDealing

	dealerCards := r.forcedDealerCards()
	hand.AddCards(r.shoe.DrawN(2))
	if dealerCards == nil {
		dealerCards = r.shoe.DrawN(2)
	}
	r.dealer.AddCards(dealerCards)

	up, haveUp := r.dealer.Upcard()
	if haveUp {
		r.bus.Publish(CardsDealtEvent{
			PlayerCards: append([]deck.Card(nil), hand.Cards...),
			DealerUp:    up,
			timestamp:   time.Now(),
		})
		r.logger.Debug("Cards dealt", "player", hand.Cards, "upcard", up)
	}

	playerBlackjack := hand.IsBlackjack()

	switch {
	case playerBlackjack && haveUp && up.IsAce():
		// Offer must resolve before any hole-card reveal.
		r.evenMoneyPending = true
		r.state = StatePlayerTurn
		return success("blackjack! even money offered")

	case playerBlackjack:
		r.dealer.RevealHoleCard()
		if r.dealer.IsBlackjack() {
			r.player.Push(0)
			r.setLabel(ResultPush)
		} else {
			r.player.Win(0, true)
			r.result = ResultBlackjack
		}
		r.endRound()
		return ActionResult{Success: true, Message: "blackjack!", GameOver: true}

	case haveUp && up.IsAce():
		r.insurancePending = true
		r.insuranceBet = hand.Bet / 2
		r.state = StatePlayerTurn
		return success("insurance offered")

	case haveUp && up.IsTenValue():
		// Dealer peeks at the hole card without revealing it.
		r.peeked = true
		if r.dealer.IsBlackjack() {
			r.dealer.RevealHoleCard()
			r.settleDealerBlackjack()
			return ActionResult{Success: true, Message: "dealer has blackjack", GameOver: true}
		}
		r.state = StatePlayerTurn
		return success("cards dealt")

	default:
		r.state = StatePlayerTurn
		return success("cards dealt")
	}
}

// forcedDealerCards extracts the configured test-only dealer hand from
// the shoe, or nil when unset or unavailable.
func (r *Round) forcedDealerCards() []deck.Card {
	if len(r.forcedDealerRanks) != 2 {
		return nil
	}
	hole, ok := r.shoe.RemoveRank(r.forcedDealerRanks[0])
	if !ok {
		return nil
	}
	up, ok := r.shoe.RemoveRank(r.forcedDealerRanks[1])
	if !ok {
		r.shoe.Return(hole)
		return nil
	}
	return []deck.Card{hole, up}
}

// Hit draws one card to the active hand.
func (r *Round) Hit() ActionResult {
	if res := r.checkTurn(); res != nil {
		return *res
	}
	hand := r.player.ActiveHand()
	if hand == nil {
		return failure("no active hand")
	}
	if hand.FromSplitAces {
		return failure("cannot hit split aces")
	}
	if r.shoe.IsEmpty() {
		return failure("no more cards in shoe")
	}

	card, _ := r.shoe.Draw()
	hand.AddCard(card)
	index := r.player.CurrentHand

	if hand.IsBust() {
		r.publishAction("hit", index, &card, hand)
		return r.advanceOrFinish("bust!", ActionResult{Bust: true})
	}

	if len(hand.Cards) >= 5 {
		// Five-card Charlie: immediate win for this hand, paid even money.
		hand.CharlieWin = true
		r.player.Win(index, false)
		r.publishAction("hit", index, &card, hand)
		return r.advanceOrFinish("five-card charlie!", ActionResult{Charlie: true})
	}

	r.publishAction("hit", index, &card, hand)
	return success("card dealt")
}

// Stand ends play on the active hand.
func (r *Round) Stand() ActionResult {
	if res := r.checkTurn(); res != nil {
		return *res
	}
	hand := r.player.ActiveHand()
	if hand == nil {
		return failure("no active hand")
	}

	r.publishAction("stand", r.player.CurrentHand, nil, hand)
	return r.advanceOrFinish("standing", ActionResult{})
}

// DoubleDown doubles the bet, charges the incremental half and draws
// exactly one card.
func (r *Round) DoubleDown() ActionResult {
	if res := r.checkTurn(); res != nil {
		return *res
	}
	hand := r.player.ActiveHand()
	if hand == nil {
		return failure("no active hand")
	}
	if !hand.CanDoubleDown() {
		return failure("cannot double down")
	}
	if r.player.Chips < hand.Bet {
		return failure("insufficient funds")
	}
	if r.shoe.IsEmpty() {
		return failure("no more cards in shoe")
	}

	// The original bet was charged in full at placement, so doubling the
	// recorded bet only needs the incremental half charged here.
	hand.DoubleDown()
	r.player.Chips -= hand.Bet / 2

	card, _ := r.shoe.Draw()
	hand.AddCard(card)
	index := r.player.CurrentHand
	r.publishAction("double down", index, &card, hand)

	if hand.IsBust() {
		return r.advanceOrFinish("doubled down - bust!", ActionResult{Bust: true})
	}
	return r.advanceOrFinish("doubled down", ActionResult{})
}

// Split divides a pair into two hands and deals one card to each.
func (r *Round) Split() ActionResult {
	if res := r.checkTurn(); res != nil {
		return *res
	}
	hand := r.player.ActiveHand()
	if hand == nil {
		return failure("no active hand")
	}
	if !hand.CanSplit() {
		return failure("cannot split this hand")
	}
	if len(r.player.Hands) >= MaxHands {
		return failure(fmt.Sprintf("cannot split beyond %d hands", MaxHands))
	}
	if r.player.Chips < hand.Bet {
		return failure("insufficient funds")
	}

	if err := r.player.SplitHand(r.player.CurrentHand); err != nil {
		return failure("failed to split hand")
	}

	// Each single-card hand gets exactly one card; split aces are only
	// restricted at the action step, not at the dealing step.
	for _, h := range r.player.Hands {
		if len(h.Cards) == 1 {
			if card, ok := r.shoe.Draw(); ok {
				h.AddCard(card)
			}
		}
	}

	r.publishAction("split", r.player.CurrentHand, nil, hand)
	r.logger.Debug("Hand split", "hands", len(r.player.Hands), "chips", r.player.Chips)
	return success("hand split")
}

// Surrender forfeits half the bet and retires the active hand.
func (r *Round) Surrender() ActionResult {
	if res := r.checkTurn(); res != nil {
		return *res
	}
	hand := r.player.ActiveHand()
	if hand == nil {
		return failure("no active hand")
	}
	if !hand.CanSurrender() {
		return failure("cannot surrender this hand")
	}

	refund := hand.Bet / 2
	r.player.Chips += refund
	hand.Surrendered = true
	r.player.TotalLosses++

	r.publishAction("surrender", r.player.CurrentHand, nil, hand)
	return r.advanceOrFinish(fmt.Sprintf("surrendered, $%d returned", refund), ActionResult{})
}

// InsuranceDecision resolves a pending insurance or even-money offer.
// Valid decisions: "buy", "decline", "even_money".
func (r *Round) InsuranceDecision(decision string) ActionResult {
	if r.state != StatePlayerTurn {
		return failure("not player turn")
	}

	switch {
	case r.evenMoneyPending:
		return r.resolveEvenMoney(decision)
	case r.insurancePending:
		return r.resolveInsurance(decision)
	default:
		return failure("no insurance offer pending")
	}
}

func (r *Round) resolveEvenMoney(decision string) ActionResult {
	hand := r.player.ActiveHand()
	if hand == nil {
		return failure("no active hand")
	}

	switch decision {
	case "even_money", "accept":
		r.evenMoneyPending = false
		paid := r.player.Win(0, false)
		r.result = ResultEvenMoney
		r.dealer.RevealHoleCard()
		r.bus.Publish(InsuranceEvent{Decision: "even money accepted", Amount: hand.Bet, Paid: paid, timestamp: time.Now()})
		r.endRound()
		return ActionResult{Success: true, Message: "even money paid", GameOver: true}

	case "decline":
		r.evenMoneyPending = false
		r.bus.Publish(InsuranceEvent{Decision: "even money declined", Amount: hand.Bet, timestamp: time.Now()})
		r.dealer.RevealHoleCard()
		if r.dealer.IsBlackjack() {
			r.player.Push(0)
			r.setLabel(ResultPush)
		} else {
			r.player.Win(0, true)
			r.result = ResultBlackjack
		}
		r.endRound()
		return ActionResult{Success: true, Message: "even money declined", GameOver: true}

	default:
		return failure("invalid even money decision")
	}
}

func (r *Round) resolveInsurance(decision string) ActionResult {
	switch decision {
	case "buy":
		amount := r.insuranceBet
		if r.player.Chips < amount {
			return failure("insufficient funds for insurance")
		}
		r.player.Chips -= amount
		r.insurancePending = false
		r.peeked = true

		if r.dealer.IsBlackjack() {
			// 2:1 payout; the stake was charged, so 3x comes back.
			paid := amount * 3
			r.player.Chips += paid
			r.insuranceResolved = true
			r.bus.Publish(InsuranceEvent{Decision: "bought", Amount: amount, Paid: paid, timestamp: time.Now()})
			r.dealer.RevealHoleCard()
			r.settleDealerBlackjack()
			return ActionResult{Success: true, Message: "dealer has blackjack, insurance paid", GameOver: true}
		}

		r.insuranceResolved = true
		r.bus.Publish(InsuranceEvent{Decision: "bought", Amount: amount, timestamp: time.Now()})
		return success("no dealer blackjack, play on")

	case "decline":
		amount := r.insuranceBet
		r.insurancePending = false
		r.insuranceBet = 0
		r.insuranceResolved = true
		r.peeked = true
		r.bus.Publish(InsuranceEvent{Decision: "declined", Amount: amount, timestamp: time.Now()})

		if r.dealer.IsBlackjack() {
			r.dealer.RevealHoleCard()
			r.settleDealerBlackjack()
			return ActionResult{Success: true, Message: "dealer has blackjack", GameOver: true}
		}
		return success("insurance declined, play on")

	default:
		return failure("invalid insurance decision")
	}
}

// checkTurn validates that a play action is legal right now. Returns a
// failure result, or nil when the action may proceed.
func (r *Round) checkTurn() *ActionResult {
	if r.state != StatePlayerTurn {
		res := failure("not player turn")
		return &res
	}
	if r.evenMoneyPending || r.insurancePending {
		res := failure("resolve the insurance offer first")
		return &res
	}
	return nil
}

// advanceOrFinish moves to the next hand or completes the round, merging
// the supplied flags into the result.
func (r *Round) advanceOrFinish(message string, flags ActionResult) ActionResult {
	r.player.CurrentHand++
	if !r.player.AllHandsPlayed() {
		return ActionResult{Success: true, Message: message + ", next hand", Bust: flags.Bust, Charlie: flags.Charlie}
	}

	r.finishRound()
	return ActionResult{Success: true, Message: message, Bust: flags.Bust, Charlie: flags.Charlie, GameOver: true}
}

// finishRound plays the dealer if any hand still needs a comparison, then
// settles. Hands that all busted, surrendered or won by Charlie skip the
// dealer draw entirely.
func (r *Round) finishRound() {
	needsDealer := false
	for _, h := range r.player.Hands {
		if !h.Resolved() {
			needsDealer = true
			break
		}
	}

	if needsDealer {
		r.state = StateDealerTurn
		r.dealer.PlayOut(r.shoe, r.cfg.HitSoft17)
		r.logger.Debug("Dealer played out", "value", r.dealer.Value(), "bust", r.dealer.IsBust())
	} else {
		r.dealer.RevealHoleCard()
	}

	r.determineResults()
}

// determineResults settles every hand exactly once and fixes the round's
// overall result label.
func (r *Round) determineResults() {
	dealerValue := r.dealer.Value()
	dealerBust := r.dealer.IsBust()

	for i, hand := range r.player.Hands {
		switch {
		case hand.Surrendered:
			// Refunded at surrender time; only the label remains.
			if r.result == ResultNone {
				r.result = ResultLoss
			}

		case hand.CharlieWin:
			// Paid at hit time.
			r.setLabel(ResultWin)

		case hand.IsBust():
			r.player.Lose(i)
			r.setLabel(ResultLoss)

		case dealerBust:
			r.player.Win(i, false)
			r.setLabel(ResultWin)

		default:
			playerValue := hand.Value()
			switch {
			case playerValue > dealerValue:
				if hand.IsBlackjack() && !hand.Split {
					r.player.Win(i, true)
					r.result = ResultBlackjack
				} else {
					r.player.Win(i, false)
					r.setLabel(ResultWin)
				}
			case playerValue < dealerValue:
				r.player.Lose(i)
				r.setLabel(ResultLoss)
			default:
				r.player.Push(i)
				r.setLabel(ResultPush)
			}
		}
	}

	if r.insuranceBet > 0 && !r.insuranceResolved {
		if r.dealer.IsBlackjack() {
			r.player.Chips += r.insuranceBet * 3
		}
		r.insuranceResolved = true
	}

	if r.result == ResultNone {
		r.result = ResultLoss
	}
	r.endRound()
}

// settleDealerBlackjack resolves every hand against a revealed dealer
// natural: player naturals push, everything else loses.
func (r *Round) settleDealerBlackjack() {
	for i, hand := range r.player.Hands {
		if hand.IsBlackjack() && !hand.Split {
			r.player.Push(i)
			r.setLabel(ResultPush)
		} else {
			r.player.Lose(i)
			r.setLabel(ResultLoss)
		}
	}
	if r.result == ResultNone {
		r.result = ResultLoss
	}
	r.endRound()
}

// setLabel applies the result precedence: blackjack is never downgraded,
// the first win/loss sticks, push only labels an otherwise quiet round.
func (r *Round) setLabel(label Result) {
	switch label {
	case ResultBlackjack:
		r.result = ResultBlackjack
	case ResultWin, ResultLoss:
		if r.result == ResultNone || r.result == ResultPush {
			r.result = label
		}
	case ResultPush:
		if r.result == ResultNone {
			r.result = ResultPush
		}
	}
}

func (r *Round) endRound() {
	r.state = StateGameOver
	r.logger.Debug("Round over", "result", r.result, "chips", r.player.Chips)
	r.bus.Publish(RoundEndEvent{
		RoundID:     r.RoundID(),
		Result:      r.result,
		Chips:       r.player.Chips,
		DealerValue: r.dealer.Value(),
		timestamp:   time.Now(),
	})
}

func (r *Round) publishAction(action string, index int, card *deck.Card, hand *Hand) {
	r.bus.Publish(PlayerActionEvent{
		Action:    action,
		HandIndex: index,
		Card:      card,
		HandValue: hand.Value(),
		Bust:      hand.IsBust(),
		Charlie:   hand.CharlieWin,
		timestamp: time.Now(),
	})
}
