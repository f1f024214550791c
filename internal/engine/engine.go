// Package engine owns the authoritative game instance and turns move requests
// into validated state transitions. Exactly one engine is authoritative per
// session; in network play only the host runs one.
package engine

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/tgonzalez89/tictactoe/internal/entity"
	"github.com/tgonzalez89/tictactoe/internal/eventbus"
	"github.com/tgonzalez89/tictactoe/internal/tictactoe"
)

// Engine holds the only mutable board reference in the system. The session
// mutex covers the whole read-validate-write-publish sequence: concurrent
// move requests serialize, the loser is rejected by the now-current state,
// and state:updated events go out in exactly the order moves were accepted.
type Engine struct {
	logger *slog.Logger
	bus    *eventbus.Bus
	id     string

	mu   sync.Mutex
	game *tictactoe.Game
}

func New(logger *slog.Logger, bus *eventbus.Bus) *Engine {
	that := &Engine{
		logger: logger.With("component", "engine"),
		bus:    bus,
		id:     uuid.NewString(),
		game:   tictactoe.NewGame(),
	}

	bus.Subscribe(eventbus.TagMoveRequested, that.onMoveRequested)

	return that
}

func (that *Engine) ID() string {
	return that.id
}

// Start publishes the initial state of the empty board and opens the first
// turn. Not safe to call concurrently with itself.
func (that *Engine) Start() {
	that.mu.Lock()
	defer that.mu.Unlock()

	snapshot := that.game.Snapshot()

	that.logger.Info("game session started", "game_id", that.id, "first_turn", snapshot.Turn)

	that.publishState(snapshot)
	that.bus.Publish(eventbus.StartTurn{Player: snapshot.Turn})
}

// onMoveRequested is the engine's single subscribed handler. A rejected move
// becomes a move:invalid event, never a fault escaping bus dispatch. Once the
// result is final the state is absorbing: any late request is answered with
// the game-finished rejection instead of being silently dropped.
func (that *Engine) onMoveRequested(event eventbus.Event) {
	request, ok := event.(eventbus.MoveRequested)
	if !ok {
		that.logger.Error("unexpected event payload", "tag", event.Tag())
		return
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	move := entity.Move{Player: request.Player, Row: request.Row, Col: request.Col}

	snapshot, err := that.game.ApplyMove(move)
	if err != nil {
		that.logger.Info("move rejected",
			"game_id", that.id, "player", request.Player, "row", request.Row, "col", request.Col, "reason", err)
		that.bus.Publish(eventbus.InvalidMove{Player: request.Player, Reason: err.Error()})
		return
	}

	that.publishState(snapshot)

	if snapshot.Result.IsFinished() {
		that.logger.Info("game session finished", "game_id", that.id, "winner", snapshot.Result.Winner)
		return
	}

	that.bus.Publish(eventbus.StartTurn{Player: snapshot.Turn})
}

func (that *Engine) publishState(snapshot tictactoe.Snapshot) {
	that.bus.Publish(eventbus.StateUpdated{
		GameID: that.id,
		Board:  snapshot.Board,
		Turn:   snapshot.Turn,
		Result: snapshot.Result,
	})
}
