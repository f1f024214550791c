package websocket

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgonzalez89/tictactoe/internal/entity"
	"github.com/tgonzalez89/tictactoe/internal/eventbus"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dialViewer(t *testing.T, httpURL string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(httpURL, "http") + "/watch"

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		defer resp.Body.Close()
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	return conn
}

// awaitViewers blocks until the server has registered the expected number of
// connections; a dial returning does not yet mean the server side is wired up.
func awaitViewers(t *testing.T, server *Server, count int) {
	t.Helper()

	require.Eventually(t, func() bool {
		return server.ViewerCount() == count
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServer_Broadcast(t *testing.T) {
	t.Run("State updates reach a connected viewer", func(t *testing.T) {
		// Given: a viewer connected to the spectator endpoint
		bus := eventbus.New(newTestLogger())
		server := New(newTestLogger(), bus)

		httpServer := httptest.NewServer(server.Handler())
		defer httpServer.Close()

		conn := dialViewer(t, httpServer.URL)
		awaitViewers(t, server, 1)

		// When: a state update is published on the bus
		bus.Publish(eventbus.StateUpdated{
			GameID: "game-1",
			Board:  entity.Board{{entity.PlayerX}},
			Turn:   entity.PlayerO,
			Result: entity.Result{Status: entity.StatusOngoing},
		})

		// Then: the viewer receives the state message
		var msg StateMessage
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, "state", msg.Type)
		assert.Equal(t, "game-1", msg.GameID)
		assert.Equal(t, entity.PlayerX, msg.Board[0][0])
		assert.Equal(t, entity.PlayerO, msg.Turn)
	})

	t.Run("A late joiner is replayed the latest state", func(t *testing.T) {
		// Given: a state published before any viewer connected
		bus := eventbus.New(newTestLogger())
		server := New(newTestLogger(), bus)

		httpServer := httptest.NewServer(server.Handler())
		defer httpServer.Close()

		bus.Publish(eventbus.StateUpdated{
			GameID: "game-2",
			Board:  entity.Board{{entity.PlayerX, entity.PlayerO}},
			Turn:   entity.PlayerX,
			Result: entity.Result{Status: entity.StatusOngoing},
		})

		// When: a viewer connects afterwards
		conn := dialViewer(t, httpServer.URL)

		// Then: it immediately receives the latest state
		var msg StateMessage
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, "game-2", msg.GameID)
		assert.Equal(t, entity.PlayerO, msg.Board[0][1])
	})

	t.Run("Move rejections are broadcast too", func(t *testing.T) {
		// Given: a connected viewer
		bus := eventbus.New(newTestLogger())
		server := New(newTestLogger(), bus)

		httpServer := httptest.NewServer(server.Handler())
		defer httpServer.Close()

		conn := dialViewer(t, httpServer.URL)
		awaitViewers(t, server, 1)

		// When: a rejection is published
		bus.Publish(eventbus.InvalidMove{Player: entity.PlayerO, Reason: "it's not your turn"})

		// Then: the viewer receives the invalid message
		var msg InvalidMessage
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, "invalid", msg.Type)
		assert.Equal(t, entity.PlayerO, msg.Player)
		assert.Equal(t, "it's not your turn", msg.Reason)
	})
}
