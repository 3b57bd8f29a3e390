package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/lox/blackjackd/internal/autoplay"
	"github.com/lox/blackjackd/internal/deck"
	"github.com/lox/blackjackd/internal/game"
)

// apiResponse is the envelope every endpoint answers with. Rule
// rejections stay HTTP 200 with success false; non-2xx codes are
// reserved for transport problems such as unknown games or bad JSON.
type apiResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Bust     bool   `json:"bust,omitempty"`
	GameOver bool   `json:"game_over,omitempty"`
	Charlie  bool   `json:"charlie,omitempty"`

	GameState *game.View    `json:"game_state,omitempty"`
	AutoPlay  *autoPlayView `json:"auto_play,omitempty"`
}

// autoPlayView reports the auto-play state of a session.
type autoPlayView struct {
	Running        bool            `json:"running"`
	Status         autoplay.Status `json:"status,omitempty"`
	HandsRemaining int             `json:"hands_remaining"`
	Config         autoplay.Config `json:"config"`
	Stats          *statsView      `json:"stats,omitempty"`
}

// statsView is the JSON shape of an auto-play session summary.
type statsView struct {
	Rounds       int     `json:"rounds"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	Pushes       int     `json:"pushes"`
	Blackjacks   int     `json:"blackjacks"`
	EvenMoney    int     `json:"even_money"`
	TotalWagered int     `json:"total_wagered"`
	NetChips     int     `json:"net_chips"`
	WinRate      float64 `json:"win_rate"`
	MeanNet      float64 `json:"mean_net"`
	StdDevNet    float64 `json:"std_dev_net"`
}

func newStatsView(stats *autoplay.SessionStats) *statsView {
	if stats == nil {
		return nil
	}
	return &statsView{
		Rounds:       stats.Rounds,
		Wins:         stats.Wins,
		Losses:       stats.Losses,
		Pushes:       stats.Pushes,
		Blackjacks:   stats.Blackjacks,
		EvenMoney:    stats.EvenMoney,
		TotalWagered: stats.TotalWagered,
		NetChips:     stats.NetChips,
		WinRate:      stats.WinRate(),
		MeanNet:      stats.Mean(),
		StdDevNet:    stats.StdDev(),
	}
}

// autoView builds the auto-play projection. Callers must hold the
// session lock.
func autoView(sess *Session) *autoPlayView {
	if sess.auto == nil {
		return nil
	}
	remaining := sess.auto.cfg.Hands
	if sess.auto.driver != nil {
		remaining = sess.auto.driver.HandsRemaining()
	}
	return &autoPlayView{
		Running:        sess.auto.running,
		Status:         sess.auto.status,
		HandsRemaining: remaining,
		Config:         sess.auto.cfg,
		Stats:          newStatsView(sess.auto.stats),
	}
}

type newGameRequest struct {
	GameID string `json:"game_id,omitempty"`
}

type betRequest struct {
	GameID string `json:"game_id"`
	Amount int    `json:"amount"`
}

type actionRequest struct {
	GameID string `json:"game_id"`
}

type insuranceRequest struct {
	GameID   string `json:"game_id"`
	Decision string `json:"decision"`
}

type forceDealerRequest struct {
	GameID   string `json:"game_id"`
	HoleCard string `json:"hole_card,omitempty"`
	UpCard   string `json:"up_card,omitempty"`
}

type autoPlayStartRequest struct {
	GameID string `json:"game_id"`
	autoplay.Config
}

func decode[T any](r *http.Request) (T, error) {
	var req T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(&req)
	return req, err
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, apiResponse{Success: false, Message: message})
}

// lookup resolves a game id, writing the 4xx response on failure.
func (s *Server) lookup(w http.ResponseWriter, gameID string) (*Session, bool) {
	if gameID == "" {
		s.writeError(w, http.StatusBadRequest, "game_id is required")
		return nil, false
	}
	sess, ok := s.session(gameID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown or expired game")
		return nil, false
	}
	return sess, true
}

// runAction executes one player action under the session lock, persists
// the result and streams the new state to websocket watchers.
func (s *Server) runAction(w http.ResponseWriter, gameID string, fn func(*game.Round) game.ActionResult) {
	sess, ok := s.lookup(w, gameID)
	if !ok {
		return
	}

	sess.mu.Lock()
	if sess.autoRunning() {
		sess.mu.Unlock()
		s.writeError(w, http.StatusConflict, "auto-play in progress")
		return
	}
	res := fn(sess.round)
	view := sess.round.View()
	auto := autoView(sess)
	s.sessions.Persist(sess)
	sess.mu.Unlock()

	s.broadcast(gameID, view)
	s.writeJSON(w, http.StatusOK, apiResponse{
		Success:   res.Success,
		Message:   res.Message,
		Bust:      res.Bust,
		GameOver:  res.GameOver,
		Charlie:   res.Charlie,
		GameState: &view,
		AutoPlay:  auto,
	})
}

// handleNewGame creates a session, or resets an existing one to the
// betting state when a game_id is supplied.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	req, err := decode[newGameRequest](r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.GameID == "" {
		sess := s.sessions.Create()
		sess.mu.Lock()
		s.attachRecorder(sess)
		view := sess.round.View()
		sess.mu.Unlock()

		s.writeJSON(w, http.StatusOK, apiResponse{
			Success:   true,
			Message:   "game created",
			GameState: &view,
		})
		return
	}

	s.runAction(w, req.GameID, func(round *game.Round) game.ActionResult {
		round.NewGame()
		return game.ActionResult{Success: true, Message: "new round started"}
	})
}

func (s *Server) handleBet(w http.ResponseWriter, r *http.Request) {
	req, err := decode[betRequest](r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.runAction(w, req.GameID, func(round *game.Round) game.ActionResult {
		return round.PlaceBet(req.Amount)
	})
}

func (s *Server) handleDeal(w http.ResponseWriter, r *http.Request) {
	req, err := decode[actionRequest](r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.runAction(w, req.GameID, (*game.Round).Deal)
}

func (s *Server) handleHit(w http.ResponseWriter, r *http.Request) {
	req, err := decode[actionRequest](r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.runAction(w, req.GameID, (*game.Round).Hit)
}

func (s *Server) handleStand(w http.ResponseWriter, r *http.Request) {
	req, err := decode[actionRequest](r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.runAction(w, req.GameID, (*game.Round).Stand)
}

func (s *Server) handleDoubleDown(w http.ResponseWriter, r *http.Request) {
	req, err := decode[actionRequest](r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.runAction(w, req.GameID, (*game.Round).DoubleDown)
}

func (s *Server) handleSplit(w http.ResponseWriter, r *http.Request) {
	req, err := decode[actionRequest](r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.runAction(w, req.GameID, (*game.Round).Split)
}

func (s *Server) handleSurrender(w http.ResponseWriter, r *http.Request) {
	req, err := decode[actionRequest](r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.runAction(w, req.GameID, (*game.Round).Surrender)
}

func (s *Server) handleInsurance(w http.ResponseWriter, r *http.Request) {
	req, err := decode[insuranceRequest](r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.runAction(w, req.GameID, func(round *game.Round) game.ActionResult {
		return round.InsuranceDecision(req.Decision)
	})
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r.URL.Query().Get("game_id"))
	if !ok {
		return
	}

	sess.mu.Lock()
	view := sess.round.View()
	auto := autoView(sess)
	sess.mu.Unlock()

	s.writeJSON(w, http.StatusOK, apiResponse{
		Success:   true,
		Message:   "ok",
		GameState: &view,
		AutoPlay:  auto,
	})
}

// handleForceDealerHand pins the next deal's dealer cards. An empty
// card pair clears the override.
func (s *Server) handleForceDealerHand(w http.ResponseWriter, r *http.Request) {
	req, err := decode[forceDealerRequest](r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.HoleCard == "" && req.UpCard == "" {
		s.runAction(w, req.GameID, func(round *game.Round) game.ActionResult {
			round.ClearForcedDealerHand()
			return game.ActionResult{Success: true, Message: "forced dealer hand cleared"}
		})
		return
	}

	hole, ok := deck.ParseRank(req.HoleCard)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "invalid hole_card rank")
		return
	}
	up, ok := deck.ParseRank(req.UpCard)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "invalid up_card rank")
		return
	}

	s.runAction(w, req.GameID, func(round *game.Round) game.ActionResult {
		round.SetForcedDealerHand(hole, up)
		return game.ActionResult{Success: true, Message: "forced dealer hand set"}
	})
}

func (s *Server) handleAutoPlayStart(w http.ResponseWriter, r *http.Request) {
	req, err := decode[autoPlayStartRequest](r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess, ok := s.lookup(w, req.GameID)
	if !ok {
		return
	}

	cfg := req.Config
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess.mu.Lock()
	if sess.autoRunning() {
		sess.mu.Unlock()
		s.writeError(w, http.StatusConflict, "auto-play already running")
		return
	}

	driver := autoplay.New(sess.round, cfg, nil, nil)
	driver.Locker = &sess.mu
	ctx, cancel := context.WithCancel(context.Background())
	sess.auto = &autoSession{
		cfg:     driver.Config(),
		driver:  driver,
		cancel:  cancel,
		running: true,
	}
	auto := autoView(sess)
	s.sessions.Persist(sess)
	sess.mu.Unlock()

	s.autoWG.Add(1)
	go s.runAutoPlay(ctx, sess, driver)

	s.logger.Info().Str("game_id", req.GameID).Int("hands", cfg.Hands).Msg("auto-play started")
	s.writeJSON(w, http.StatusOK, apiResponse{
		Success:  true,
		Message:  "auto-play started",
		AutoPlay: auto,
	})
}

func (s *Server) handleAutoPlayStop(w http.ResponseWriter, r *http.Request) {
	req, err := decode[actionRequest](r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess, ok := s.lookup(w, req.GameID)
	if !ok {
		return
	}

	sess.mu.Lock()
	running := sess.autoRunning()
	if running {
		sess.auto.driver.Stop()
		sess.auto.cancel()
	}
	auto := autoView(sess)
	sess.mu.Unlock()

	if !running {
		s.writeJSON(w, http.StatusOK, apiResponse{
			Success:  false,
			Message:  "auto-play not running",
			AutoPlay: auto,
		})
		return
	}

	s.logger.Info().Str("game_id", req.GameID).Msg("auto-play stop requested")
	s.writeJSON(w, http.StatusOK, apiResponse{
		Success:  true,
		Message:  "auto-play stopping after the current round",
		AutoPlay: auto,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"live_sessions": s.sessions.LiveCount(),
	})
}
