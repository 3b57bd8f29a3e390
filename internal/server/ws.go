package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/lox/blackjackd/internal/game"
)

// handleWebSocket upgrades the connection and streams state updates for
// one game until the client disconnects.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game_id")
	sess, ok := s.lookup(w, gameID)
	if !ok {
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to upgrade connection")
		return
	}

	sess.mu.Lock()
	view := sess.round.View()
	sess.mu.Unlock()

	s.hubMu.Lock()
	if s.hubs[gameID] == nil {
		s.hubs[gameID] = make(map[*websocket.Conn]struct{})
	}
	s.hubs[gameID][conn] = struct{}{}
	err = s.writeView(conn, view)
	s.hubMu.Unlock()

	if err != nil {
		s.dropConn(gameID, conn)
		return
	}

	s.logger.Debug().Str("game_id", gameID).Msg("state stream connected")
	go s.readLoop(gameID, conn)
}

// readLoop drains incoming frames so pings and close messages are
// processed, dropping the connection on the first read error.
func (s *Server) readLoop(gameID string, conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.dropConn(gameID, conn)
			s.logger.Debug().Str("game_id", gameID).Msg("state stream disconnected")
			return
		}
	}
}

func (s *Server) dropConn(gameID string, conn *websocket.Conn) {
	s.hubMu.Lock()
	if conns, ok := s.hubs[gameID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(s.hubs, gameID)
		}
	}
	s.hubMu.Unlock()
	_ = conn.Close()
}

// broadcast pushes a state snapshot to every watcher of a game. Writes
// are serialized by the hub lock; failed connections are dropped.
func (s *Server) broadcast(gameID string, view game.View) {
	data, err := json.Marshal(view)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode state update")
		return
	}

	s.hubMu.Lock()
	var failed []*websocket.Conn
	for conn := range s.hubs[gameID] {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			failed = append(failed, conn)
		}
	}
	for _, conn := range failed {
		delete(s.hubs[gameID], conn)
		_ = conn.Close()
	}
	if len(s.hubs[gameID]) == 0 {
		delete(s.hubs, gameID)
	}
	s.hubMu.Unlock()
}

// writeView sends one state frame. Callers hold the hub lock.
func (s *Server) writeView(conn *websocket.Conn, view game.View) error {
	data, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
