package server

import (
	"sync"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/blackjackd/internal/autoplay"
	"github.com/lox/blackjackd/internal/game"
)

// SessionState is the persisted projection of a game session: the full
// round snapshot plus the auto-play configuration and its progress.
type SessionState struct {
	Game                   game.Snapshot    `json:"game"`
	AutoPlay               *autoplay.Config `json:"auto_play,omitempty"`
	AutoPlayHandsRemaining int              `json:"auto_play_hands_remaining,omitempty"`
	AutoPlayStatus         autoplay.Status  `json:"auto_play_status,omitempty"`
	SavedAt                time.Time        `json:"saved_at"`
}

// SessionStore persists session state by game id with a time-to-live.
// Store failures never fail gameplay; callers log and move on.
type SessionStore interface {
	Load(gameID string) (SessionState, bool)
	Save(gameID string, state SessionState, ttl time.Duration)
	Delete(gameID string)
}

type storeEntry struct {
	state     SessionState
	expiresAt time.Time
}

// MemoryStore is an in-process SessionStore with clock-driven expiry.
type MemoryStore struct {
	clock quartz.Clock

	mu      sync.RWMutex
	entries map[string]storeEntry
}

// NewMemoryStore creates a store using the given clock for TTL checks.
func NewMemoryStore(clock quartz.Clock) *MemoryStore {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &MemoryStore{
		clock:   clock,
		entries: make(map[string]storeEntry),
	}
}

// Load returns the stored state for a game, treating expired entries as
// absent.
func (s *MemoryStore) Load(gameID string) (SessionState, bool) {
	s.mu.RLock()
	entry, ok := s.entries[gameID]
	s.mu.RUnlock()

	if !ok {
		return SessionState{}, false
	}
	if s.clock.Now().After(entry.expiresAt) {
		s.Delete(gameID)
		return SessionState{}, false
	}
	return entry.state, true
}

// Save stores the state, resetting its expiry.
func (s *MemoryStore) Save(gameID string, state SessionState, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[gameID] = storeEntry{
		state:     state,
		expiresAt: s.clock.Now().Add(ttl),
	}
}

// Delete removes a game's state.
func (s *MemoryStore) Delete(gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, gameID)
}

// Sweep drops every expired entry and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
