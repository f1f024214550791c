// Package websocket fans game events out to any number of read-only viewer
// connections. Spectators render from the broadcast payloads only; nothing
// they send is interpreted.
package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/tgonzalez89/tictactoe/internal/entity"
	"github.com/tgonzalez89/tictactoe/internal/eventbus"
)

// StateMessage mirrors state:updated for viewers.
type StateMessage struct {
	Type   string        `json:"type"`
	GameID string        `json:"game_id,omitempty"`
	Board  entity.Board  `json:"board"`
	Turn   entity.Mark   `json:"turn,omitempty"`
	Result entity.Result `json:"result"`
}

// InvalidMessage mirrors move:invalid for viewers.
type InvalidMessage struct {
	Type   string      `json:"type"`
	Player entity.Mark `json:"player"`
	Reason string      `json:"reason"`
}

type Server struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	viewers map[*websocket.Conn]struct{}
	last    *StateMessage
}

func New(logger *slog.Logger, bus *eventbus.Bus) *Server {
	that := &Server{
		logger: logger.With("component", "spectator"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		viewers: make(map[*websocket.Conn]struct{}),
	}

	bus.Subscribe(eventbus.TagStateUpdated, that.onStateUpdated)
	bus.Subscribe(eventbus.TagInvalidMove, that.onInvalidMove)

	return that
}

// Start serves the viewer endpoint until the context is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start spectator server: %w", err)
	}

	return nil
}

func (that *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/watch", that.handleWatch)

	return router
}

// handleWatch upgrades the connection, replays the latest known state so late
// joiners are not blank, then keeps the connection registered until it drops.
func (that *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		that.logger.Error("failed to upgrade viewer connection", "error", err)
		return
	}
	defer conn.Close()

	that.register(conn)
	defer that.deregister(conn)

	that.logger.Info("viewer connected", "remote", conn.RemoteAddr().String())

	for {
		if _, _, err = conn.ReadMessage(); err != nil {
			that.logger.Info("viewer disconnected", "remote", conn.RemoteAddr().String())
			return
		}
	}
}

func (that *Server) register(conn *websocket.Conn) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.viewers[conn] = struct{}{}

	if that.last != nil {
		if err := conn.WriteJSON(that.last); err != nil {
			that.logger.Error("failed to replay state to viewer", "error", err)
		}
	}
}

// ViewerCount reports how many viewers are currently connected.
func (that *Server) ViewerCount() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.viewers)
}

func (that *Server) deregister(conn *websocket.Conn) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.viewers, conn)
}

func (that *Server) onStateUpdated(event eventbus.Event) {
	state, ok := event.(eventbus.StateUpdated)
	if !ok {
		return
	}

	msg := &StateMessage{
		Type:   "state",
		GameID: state.GameID,
		Board:  state.Board,
		Turn:   state.Turn,
		Result: state.Result,
	}

	that.mu.Lock()
	that.last = msg
	that.broadcastLocked(msg)
	that.mu.Unlock()
}

func (that *Server) onInvalidMove(event eventbus.Event) {
	rejected, ok := event.(eventbus.InvalidMove)
	if !ok {
		return
	}

	msg := &InvalidMessage{
		Type:   "invalid",
		Player: rejected.Player,
		Reason: rejected.Reason,
	}

	that.mu.Lock()
	that.broadcastLocked(msg)
	that.mu.Unlock()
}

// broadcastLocked writes to every viewer; callers hold the mutex, which also
// serializes writes to each connection. A failed viewer is dropped.
func (that *Server) broadcastLocked(payload any) {
	for conn := range that.viewers {
		if err := conn.WriteJSON(payload); err != nil {
			that.logger.Info("dropping viewer", "remote", conn.RemoteAddr().String(), "error", err)
			_ = conn.Close()
			delete(that.viewers, conn)
		}
	}
}
