package server

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjackd/internal/autoplay"
	"github.com/lox/blackjackd/internal/game"
)

func TestMemoryStoreSaveLoadDelete(t *testing.T) {
	store := NewMemoryStore(nil)

	_, ok := store.Load("missing")
	assert.False(t, ok)

	store.Save("g1", SessionState{SavedAt: time.Now()}, time.Minute)
	_, ok = store.Load("g1")
	assert.True(t, ok)
	assert.Equal(t, 1, store.Len())

	store.Delete("g1")
	_, ok = store.Load("g1")
	assert.False(t, ok)
}

func TestMemoryStoreExpiry(t *testing.T) {
	clock := quartz.NewMock(t)
	store := NewMemoryStore(clock)

	store.Save("g1", SessionState{}, 30*time.Minute)
	clock.Advance(29 * time.Minute)
	_, ok := store.Load("g1")
	assert.True(t, ok)

	clock.Advance(2 * time.Minute)
	_, ok = store.Load("g1")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStoreSweep(t *testing.T) {
	clock := quartz.NewMock(t)
	store := NewMemoryStore(clock)

	store.Save("short", SessionState{}, time.Minute)
	store.Save("long", SessionState{}, time.Hour)

	clock.Advance(5 * time.Minute)
	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Len())

	_, ok := store.Load("long")
	assert.True(t, ok)
}

func newTestSessionManager(t *testing.T, clock quartz.Clock) *SessionManager {
	t.Helper()
	store := NewMemoryStore(clock)
	return NewSessionManager(game.Config{}, 30*time.Minute, store, clock, 1, zerolog.Nop(), log.New(io.Discard))
}

func TestSessionManagerCreateAndGet(t *testing.T) {
	m := newTestSessionManager(t, nil)

	sess := m.Create()
	require.NotNil(t, sess)
	assert.Equal(t, 1, m.LiveCount())

	got, ok := m.Get(sess.Round().ID)
	require.True(t, ok)
	assert.Same(t, sess, got)
}

func TestSessionManagerPersistsOnCreate(t *testing.T) {
	m := newTestSessionManager(t, nil)

	sess := m.Create()
	state, ok := m.store.Load(sess.Round().ID)
	require.True(t, ok)
	assert.Equal(t, sess.Round().ID, state.Game.ID)
	assert.Equal(t, 1000, state.Game.Player.Chips)
}

func TestSessionManagerRestoresEvictedSession(t *testing.T) {
	m := newTestSessionManager(t, nil)

	sess := m.Create()
	gameID := sess.Round().ID

	sess.mu.Lock()
	require.True(t, sess.round.PlaceBet(50).Success)
	m.Persist(sess)
	sess.mu.Unlock()

	// Simulate an eviction; the store copy survives.
	m.mu.Lock()
	delete(m.live, gameID)
	m.mu.Unlock()

	restored, ok := m.Get(gameID)
	require.True(t, ok)
	assert.NotSame(t, sess, restored)
	assert.Equal(t, gameID, restored.Round().ID)
	assert.Equal(t, 950, restored.Round().Player().Chips)
	assert.Equal(t, game.StateDealing, restored.Round().State())
}

func TestSessionManagerRestoresAutoPlayState(t *testing.T) {
	m := newTestSessionManager(t, nil)

	sess := m.Create()
	gameID := sess.Round().ID

	cfg := autoplay.Config{Hands: 100, DefaultBet: 10}
	cfg.ApplyDefaults()
	state, ok := m.store.Load(gameID)
	require.True(t, ok)
	state.AutoPlay = &cfg
	state.AutoPlayHandsRemaining = 37
	state.AutoPlayStatus = autoplay.StatusStopped
	m.store.Save(gameID, state, time.Hour)

	m.mu.Lock()
	delete(m.live, gameID)
	m.mu.Unlock()

	restored, ok := m.Get(gameID)
	require.True(t, ok)
	require.NotNil(t, restored.auto)
	assert.Equal(t, 37, restored.auto.cfg.Hands)
	assert.Equal(t, autoplay.StatusStopped, restored.auto.status)
	assert.False(t, restored.autoRunning())
}

func TestSessionManagerSweepExpired(t *testing.T) {
	clock := quartz.NewMock(t)
	m := newTestSessionManager(t, clock)

	sess := m.Create()
	gameID := sess.Round().ID

	clock.Advance(10 * time.Minute)
	assert.Equal(t, 0, m.SweepExpired())
	assert.Equal(t, 1, m.LiveCount())

	clock.Advance(25 * time.Minute)
	assert.Equal(t, 1, m.SweepExpired())
	assert.Equal(t, 0, m.LiveCount())

	_, ok := m.Get(gameID)
	assert.False(t, ok)
}

func TestSessionManagerDelete(t *testing.T) {
	m := newTestSessionManager(t, nil)

	sess := m.Create()
	gameID := sess.Round().ID

	m.Delete(gameID)
	assert.Equal(t, 0, m.LiveCount())
	_, ok := m.Get(gameID)
	assert.False(t, ok)
}
