package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lox/blackjackd/internal/autoplay"
	"github.com/lox/blackjackd/internal/game"
	"github.com/lox/blackjackd/internal/handlog"
)

// Server is the blackjack HTTP API. It owns the session manager, the
// per-game round logs and the websocket state streams.
type Server struct {
	cfg      *Config
	logger   zerolog.Logger
	sessions *SessionManager
	rounds   *handlog.Manager
	clock    quartz.Clock

	upgrader   websocket.Upgrader
	httpServer *http.Server

	hubMu sync.Mutex
	hubs  map[string]map[*websocket.Conn]struct{}

	stopSweep chan struct{}
	sweepOnce sync.Once
	autoWG    sync.WaitGroup
}

// NewServer wires a server from configuration. roundLogger feeds the
// game state machines; clock nil means wall-clock time.
func NewServer(cfg *Config, logger zerolog.Logger, roundLogger *log.Logger, clock quartz.Clock) *Server {
	if clock == nil {
		clock = quartz.NewReal()
	}

	store := NewMemoryStore(clock)
	sessions := NewSessionManager(cfg.GameConfig(), cfg.SessionTTL(), store, clock, cfg.Server.Seed, logger, roundLogger)
	rounds := handlog.NewManager(logger, handlog.ManagerConfig{
		BaseDir: cfg.Server.RoundLogDir,
		Clock:   clock,
	})

	s := &Server{
		cfg:      cfg,
		logger:   logger.With().Str("component", "server").Logger(),
		sessions: sessions,
		rounds:   rounds,
		clock:    clock,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		hubs:      make(map[string]map[*websocket.Conn]struct{}),
		stopSweep: make(chan struct{}),
	}
	s.httpServer = &http.Server{
		Addr:    cfg.ListenAddr(),
		Handler: s.routes(),
	}
	return s
}

// Handler returns the root HTTP handler. Exposed for tests driving the
// API through httptest.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/new_game", s.handleNewGame)
	mux.HandleFunc("POST /api/bet", s.handleBet)
	mux.HandleFunc("POST /api/deal", s.handleDeal)
	mux.HandleFunc("POST /api/hit", s.handleHit)
	mux.HandleFunc("POST /api/stand", s.handleStand)
	mux.HandleFunc("POST /api/double_down", s.handleDoubleDown)
	mux.HandleFunc("POST /api/split", s.handleSplit)
	mux.HandleFunc("POST /api/surrender", s.handleSurrender)
	mux.HandleFunc("POST /api/insurance", s.handleInsurance)
	mux.HandleFunc("GET /api/game_state", s.handleGameState)
	mux.HandleFunc("POST /api/force_dealer_hand", s.handleForceDealerHand)
	mux.HandleFunc("POST /api/auto_play/start", s.handleAutoPlayStart)
	mux.HandleFunc("POST /api/auto_play/stop", s.handleAutoPlayStop)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /health", s.handleHealth)

	return mux
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	go s.sweepLoop()

	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("starting server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	return nil
}

// Shutdown drains in-flight requests, stops every auto-play session and
// flushes the round logs.
func (s *Server) Shutdown(ctx context.Context) error {
	s.sweepOnce.Do(func() { close(s.stopSweep) })

	err := s.httpServer.Shutdown(ctx)

	s.stopAutoPlaySessions()
	s.autoWG.Wait()

	s.hubMu.Lock()
	for _, conns := range s.hubs {
		for conn := range conns {
			_ = conn.Close()
		}
	}
	s.hubs = make(map[string]map[*websocket.Conn]struct{})
	s.hubMu.Unlock()

	s.rounds.Shutdown()
	return err
}

func (s *Server) stopAutoPlaySessions() {
	for _, id := range s.sessions.LiveIDs() {
		sess, ok := s.sessions.Get(id)
		if !ok {
			continue
		}
		sess.mu.Lock()
		if sess.auto != nil && sess.auto.driver != nil {
			sess.auto.driver.Stop()
		}
		sess.mu.Unlock()
	}
}

// sweepLoop evicts idle sessions on a fixed cadence.
func (s *Server) sweepLoop() {
	interval := s.cfg.SessionTTL() / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := s.clock.NewTicker(interval, "server", "sweep")
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if evicted := s.sessions.SweepExpired(); evicted > 0 {
				s.logger.Info().Int("evicted", evicted).Msg("swept idle sessions")
			}
		case <-s.stopSweep:
			return
		}
	}
}

// roundRecorder copies round events into a game's round log. Log
// failures never affect gameplay.
type roundRecorder struct {
	monitor *handlog.Monitor
}

func (r *roundRecorder) OnEvent(event game.RoundEvent) {
	if e, ok := event.(game.RoundStartEvent); ok {
		_ = r.monitor.Append(event.Timestamp(), fmt.Sprintf("=== round %s ===", e.RoundID))
	}
	_ = r.monitor.Append(event.Timestamp(), game.FormatEvent(event))
}

// attachRecorder subscribes the round log recorder once per live
// session. Callers must hold the session lock.
func (s *Server) attachRecorder(sess *Session) {
	if sess.recorder != nil {
		return
	}
	monitor, err := s.rounds.Monitor(sess.round.ID)
	if err != nil {
		s.logger.Warn().Err(err).Str("game_id", sess.round.ID).Msg("round log unavailable")
		return
	}
	recorder := &roundRecorder{monitor: monitor}
	sess.round.Bus().Subscribe(recorder)
	sess.recorder = recorder
}

// session resolves a game id to a live session with its recorder
// attached.
func (s *Server) session(gameID string) (*Session, bool) {
	sess, ok := s.sessions.Get(gameID)
	if !ok {
		return nil, false
	}
	sess.mu.Lock()
	s.attachRecorder(sess)
	sess.mu.Unlock()
	return sess, true
}

// runAutoPlay executes an auto-play session in the background, persisting
// and broadcasting the final state when it ends.
func (s *Server) runAutoPlay(ctx context.Context, sess *Session, driver *autoplay.Driver) {
	defer s.autoWG.Done()

	gameID := sess.round.ID
	stats, status, err := driver.Run(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str("game_id", gameID).Msg("auto-play aborted")
	}

	sess.mu.Lock()
	sess.auto.running = false
	sess.auto.status = status
	sess.auto.stats = stats
	s.sessions.Persist(sess)
	view := sess.round.View()
	sess.mu.Unlock()

	s.logger.Info().
		Str("game_id", gameID).
		Str("status", string(status)).
		Int("rounds", statsRounds(stats)).
		Msg("auto-play ended")
	s.broadcast(gameID, view)
}

func statsRounds(stats *autoplay.SessionStats) int {
	if stats == nil {
		return 0
	}
	return stats.Rounds
}
