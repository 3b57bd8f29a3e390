package server

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/blackjackd/internal/autoplay"
	"github.com/lox/blackjackd/internal/game"
	"github.com/lox/blackjackd/internal/randutil"
)

// Session is one live game with its auto-play state. The round is
// single-writer; mu serializes every access, including the auto-play
// driver which takes it per round.
type Session struct {
	mu    sync.Mutex
	round *game.Round
	auto  *autoSession

	// recorder streams round events into the round log, attached once
	// per live session.
	recorder game.EventSubscriber

	lastActive time.Time
}

func (s *Session) autoRunning() bool {
	return s.auto != nil && s.auto.running
}

type autoSession struct {
	cfg     autoplay.Config
	driver  *autoplay.Driver
	cancel  func()
	running bool
	status  autoplay.Status
	stats   *autoplay.SessionStats
}

// Round returns the session's round. Callers must hold the session lock.
func (s *Session) Round() *game.Round { return s.round }

// SessionManager owns the live sessions and their persistence. Sessions
// are restored transparently from the store after an eviction or
// restart, as long as their TTL has not lapsed.
type SessionManager struct {
	cfg         game.Config
	ttl         time.Duration
	store       SessionStore
	clock       quartz.Clock
	seed        int64
	logger      zerolog.Logger
	roundLogger *log.Logger

	mu   sync.Mutex
	live map[string]*Session
}

// NewSessionManager constructs a manager. seed 0 derives per-session
// seeds from the clock.
func NewSessionManager(cfg game.Config, ttl time.Duration, store SessionStore, clock quartz.Clock, seed int64, logger zerolog.Logger, roundLogger *log.Logger) *SessionManager {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &SessionManager{
		cfg:         cfg,
		ttl:         ttl,
		store:       store,
		clock:       clock,
		seed:        seed,
		logger:      logger.With().Str("component", "sessions").Logger(),
		roundLogger: roundLogger,
	}
}

func (m *SessionManager) nextSeed() int64 {
	if m.seed != 0 {
		return m.seed
	}
	return m.clock.Now().UnixNano()
}

// Create starts a fresh session and registers it.
func (m *SessionManager) Create() *Session {
	round := game.NewRound(m.cfg, randutil.New(m.nextSeed()), m.roundLogger)
	s := &Session{round: round, lastActive: m.clock.Now()}

	m.mu.Lock()
	if m.live == nil {
		m.live = make(map[string]*Session)
	}
	m.live[round.ID] = s
	m.mu.Unlock()

	m.logger.Info().Str("game_id", round.ID).Msg("session created")

	s.mu.Lock()
	m.Persist(s)
	s.mu.Unlock()
	return s
}

// Get returns the live session for a game id, restoring it from the
// store when evicted.
func (m *SessionManager) Get(gameID string) (*Session, bool) {
	m.mu.Lock()
	s, ok := m.live[gameID]
	m.mu.Unlock()
	if ok {
		return s, true
	}

	state, ok := m.store.Load(gameID)
	if !ok {
		return nil, false
	}

	round := game.RestoreRound(state.Game, randutil.New(m.nextSeed()), m.roundLogger)
	s = &Session{round: round, lastActive: m.clock.Now()}
	if state.AutoPlay != nil {
		cfg := *state.AutoPlay
		cfg.Hands = state.AutoPlayHandsRemaining
		s.auto = &autoSession{cfg: cfg, status: state.AutoPlayStatus}
	}

	m.mu.Lock()
	if m.live == nil {
		m.live = make(map[string]*Session)
	}
	if existing, raced := m.live[gameID]; raced {
		s = existing
	} else {
		m.live[gameID] = s
	}
	m.mu.Unlock()

	m.logger.Info().Str("game_id", gameID).Msg("session restored from store")
	return s, true
}

// Persist saves the session to the store. Callers must hold the session
// lock.
func (m *SessionManager) Persist(s *Session) {
	s.lastActive = m.clock.Now()

	state := SessionState{
		Game:    s.round.Snapshot(),
		SavedAt: s.lastActive,
	}
	if s.auto != nil {
		cfg := s.auto.cfg
		state.AutoPlay = &cfg
		state.AutoPlayStatus = s.auto.status
		if s.auto.driver != nil {
			state.AutoPlayHandsRemaining = s.auto.driver.HandsRemaining()
		} else {
			state.AutoPlayHandsRemaining = cfg.Hands
		}
	}

	m.store.Save(s.round.ID, state, m.ttl)
}

// Delete removes a session from the live set and the store.
func (m *SessionManager) Delete(gameID string) {
	m.mu.Lock()
	delete(m.live, gameID)
	m.mu.Unlock()
	m.store.Delete(gameID)
}

// SweepExpired evicts live sessions idle past the TTL and expired store
// entries. Returns the number of live sessions evicted.
func (m *SessionManager) SweepExpired() int {
	now := m.clock.Now()

	m.mu.Lock()
	var expired []string
	for id, s := range m.live {
		if now.Sub(s.lastActive) > m.ttl {
			expired = append(expired, id)
			delete(m.live, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		m.store.Delete(id)
		m.logger.Info().Str("game_id", id).Msg("session expired")
	}
	if sweeper, ok := m.store.(*MemoryStore); ok {
		sweeper.Sweep()
	}
	return len(expired)
}

// LiveIDs returns the ids of every session currently in memory.
func (m *SessionManager) LiveIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.live))
	for id := range m.live {
		ids = append(ids, id)
	}
	return ids
}

// LiveCount returns the number of sessions currently in memory.
func (m *SessionManager) LiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}
