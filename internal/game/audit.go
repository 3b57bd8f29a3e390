package game

import (
	"fmt"
	"time"
)

// AuditRingSize bounds how many finalized round records are retained.
const AuditRingSize = 50

// AuditEntry is a single timestamped line in a round's audit record.
type AuditEntry struct {
	At      time.Time `json:"at"`
	Message string    `json:"message"`
}

// RoundRecord is the finalized audit trail for one round.
type RoundRecord struct {
	RoundID string       `json:"round_id"`
	Result  Result       `json:"result"`
	EndedAt time.Time    `json:"ended_at"`
	Entries []AuditEntry `json:"entries"`
}

// AuditLog subscribes to round events and keeps a bounded ring of the
// most recent finalized rounds. It lives outside the decision logic so
// rule correctness is testable independent of narration.
type AuditLog struct {
	records []RoundRecord
	current *RoundRecord
}

// NewAuditLog creates an empty audit log.
func NewAuditLog() *AuditLog {
	return &AuditLog{records: make([]RoundRecord, 0, AuditRingSize)}
}

// Records returns the retained round records, oldest first.
func (a *AuditLog) Records() []RoundRecord {
	out := make([]RoundRecord, len(a.records))
	copy(out, a.records)
	return out
}

// SetRecords replaces the retained records, restoring a snapshot.
func (a *AuditLog) SetRecords(records []RoundRecord) {
	a.records = make([]RoundRecord, len(records))
	copy(a.records, records)
	a.trim()
}

// FormatEvent renders a round event as a human-readable line. Shared by
// the audit ring and the auto-play log sink.
func FormatEvent(event RoundEvent) string {
	switch e := event.(type) {
	case RoundStartEvent:
		return fmt.Sprintf("round started, chips %d, shoe %d", e.Chips, e.ShoeLeft)
	case BetPlacedEvent:
		return fmt.Sprintf("bet $%d placed, chips %d", e.Amount, e.ChipsLeft)
	case CardsDealtEvent:
		return fmt.Sprintf("dealt %v, dealer shows %s", e.PlayerCards, e.DealerUp)
	case PlayerActionEvent:
		msg := fmt.Sprintf("hand %d: %s (value %d)", e.HandIndex+1, e.Action, e.HandValue)
		if e.Card != nil {
			msg = fmt.Sprintf("hand %d: %s %s (value %d)", e.HandIndex+1, e.Action, e.Card, e.HandValue)
		}
		if e.Bust {
			msg += ", bust"
		}
		if e.Charlie {
			msg += ", five-card charlie"
		}
		return msg
	case InsuranceEvent:
		if e.Paid > 0 {
			return fmt.Sprintf("insurance %s for $%d, paid $%d", e.Decision, e.Amount, e.Paid)
		}
		return fmt.Sprintf("insurance %s for $%d", e.Decision, e.Amount)
	case ShoeShuffledEvent:
		return fmt.Sprintf("shoe reshuffled, %d cards", e.Remaining)
	case RoundEndEvent:
		return fmt.Sprintf("round over: %s, chips %d", e.Result, e.Chips)
	}
	return string(event.EventType())
}

// OnEvent implements EventSubscriber.
func (a *AuditLog) OnEvent(event RoundEvent) {
	if e, ok := event.(RoundStartEvent); ok {
		a.current = &RoundRecord{RoundID: e.RoundID}
	}
	a.append(event, FormatEvent(event))
	if e, ok := event.(RoundEndEvent); ok {
		a.finalize(e)
	}
}

func (a *AuditLog) append(event RoundEvent, message string) {
	if a.current == nil {
		a.current = &RoundRecord{}
	}
	a.current.Entries = append(a.current.Entries, AuditEntry{At: event.Timestamp(), Message: message})
}

func (a *AuditLog) finalize(e RoundEndEvent) {
	if a.current == nil {
		return
	}
	a.current.RoundID = e.RoundID
	a.current.Result = e.Result
	a.current.EndedAt = e.Timestamp()
	a.records = append(a.records, *a.current)
	a.current = nil
	a.trim()
}

func (a *AuditLog) trim() {
	if len(a.records) > AuditRingSize {
		a.records = a.records[len(a.records)-AuditRingSize:]
	}
}
