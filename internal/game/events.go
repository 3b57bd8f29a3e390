package game

import (
	"time"

	"github.com/lox/blackjackd/internal/deck"
)

// EventType identifies a round event.
type EventType string

const (
	EventTypeRoundStart     EventType = "round_start"
	EventTypeBetPlaced      EventType = "bet_placed"
	EventTypeCardsDealt     EventType = "cards_dealt"
	EventTypePlayerAction   EventType = "player_action"
	EventTypeInsurance      EventType = "insurance"
	EventTypeShoeShuffled   EventType = "shoe_shuffled"
	EventTypeRoundEnd       EventType = "round_end"
)

// String returns the string representation of the event type.
func (et EventType) String() string {
	return string(et)
}

// RoundEvent is any event emitted while a round plays out. The state
// machine publishes these; observers (audit ring, log sinks, websocket
// streams) turn them into records, keeping narration out of the rules.
type RoundEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

// RoundStartEvent is published when a new round begins.
type RoundStartEvent struct {
	RoundID   string
	Chips     int
	ShoeLeft  int
	timestamp time.Time
}

func (e RoundStartEvent) EventType() EventType { return EventTypeRoundStart }
func (e RoundStartEvent) Timestamp() time.Time { return e.timestamp }

// BetPlacedEvent is published when the player stakes a bet.
type BetPlacedEvent struct {
	Amount    int
	ChipsLeft int
	timestamp time.Time
}

func (e BetPlacedEvent) EventType() EventType { return EventTypeBetPlaced }
func (e BetPlacedEvent) Timestamp() time.Time { return e.timestamp }

// CardsDealtEvent is published after the initial deal.
type CardsDealtEvent struct {
	PlayerCards []deck.Card
	DealerUp    deck.Card
	timestamp   time.Time
}

func (e CardsDealtEvent) EventType() EventType { return EventTypeCardsDealt }
func (e CardsDealtEvent) Timestamp() time.Time { return e.timestamp }

// PlayerActionEvent is published for each hit/stand/double/split/surrender.
type PlayerActionEvent struct {
	Action    string
	HandIndex int
	Card      *deck.Card
	HandValue int
	Bust      bool
	Charlie   bool
	timestamp time.Time
}

func (e PlayerActionEvent) EventType() EventType { return EventTypePlayerAction }
func (e PlayerActionEvent) Timestamp() time.Time { return e.timestamp }

// InsuranceEvent is published when an insurance or even-money offer resolves.
type InsuranceEvent struct {
	Decision string
	Amount   int
	Paid     int
	timestamp time.Time
}

func (e InsuranceEvent) EventType() EventType { return EventTypeInsurance }
func (e InsuranceEvent) Timestamp() time.Time { return e.timestamp }

// ShoeShuffledEvent is published when the shoe is rebuilt and reshuffled.
type ShoeShuffledEvent struct {
	Remaining int
	timestamp time.Time
}

func (e ShoeShuffledEvent) EventType() EventType { return EventTypeShoeShuffled }
func (e ShoeShuffledEvent) Timestamp() time.Time { return e.timestamp }

// RoundEndEvent is published when the round reaches GAME_OVER.
type RoundEndEvent struct {
	RoundID     string
	Result      Result
	Chips       int
	DealerValue int
	timestamp   time.Time
}

func (e RoundEndEvent) EventType() EventType { return EventTypeRoundEnd }
func (e RoundEndEvent) Timestamp() time.Time { return e.timestamp }

// EventSubscriber receives round events.
type EventSubscriber interface {
	OnEvent(event RoundEvent)
}

// EventBus manages event publishing and subscription.
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event RoundEvent)
}

// SimpleEventBus is a basic synchronous in-memory event bus.
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus.
func NewEventBus() EventBus {
	return &SimpleEventBus{subscribers: make([]EventSubscriber, 0)}
}

// Subscribe adds a subscriber to receive events.
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber.
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers.
func (bus *SimpleEventBus) Publish(event RoundEvent) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}
