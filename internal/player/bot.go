package player

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/tgonzalez89/tictactoe/internal/entity"
	"github.com/tgonzalez89/tictactoe/internal/eventbus"
)

var ErrNoAvailableMoves = errors.New("no available moves")

// Bot is an automated participant. Its bus handlers only record state and
// signal the worker; the move itself is picked and published from the Run
// goroutine.
type Bot struct {
	logger *slog.Logger
	bus    *eventbus.Bus
	mark   entity.Mark
	rng    *rand.Rand

	turns chan struct{}

	mu    sync.Mutex
	board entity.Board
}

// NewBot registers a bot for the given mark. The rand source is injected so
// tests can seed it.
func NewBot(logger *slog.Logger, bus *eventbus.Bus, mark entity.Mark, rng *rand.Rand) *Bot {
	that := &Bot{
		logger: logger.With("component", "bot", "mark", mark),
		bus:    bus,
		mark:   mark,
		rng:    rng,
		turns:  make(chan struct{}, 1),
	}

	bus.Subscribe(eventbus.TagStateUpdated, that.onStateUpdated)
	bus.Subscribe(eventbus.TagStartTurn, that.onStartTurn)

	return that
}

func (that *Bot) Mark() entity.Mark {
	return that.mark
}

// Run picks and publishes a move for every turn signal until the context is
// canceled.
func (that *Bot) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-that.turns:
			move, err := that.pickMove()
			if err != nil {
				return err
			}

			that.logger.Debug("bot makes a move", "row", move.Row, "col", move.Col)
			that.bus.Publish(eventbus.MoveRequested{Player: that.mark, Row: move.Row, Col: move.Col})
		}
	}
}

func (that *Bot) onStateUpdated(event eventbus.Event) {
	state, ok := event.(eventbus.StateUpdated)
	if !ok {
		return
	}

	that.mu.Lock()
	that.board = state.Board
	that.mu.Unlock()
}

func (that *Bot) onStartTurn(event eventbus.Event) {
	turn, ok := event.(eventbus.StartTurn)
	if !ok || turn.Player != that.mark {
		return
	}

	select {
	case that.turns <- struct{}{}:
	default:
	}
}

// pickMove chooses a random empty cell from the last seen board.
func (that *Bot) pickMove() (entity.Move, error) {
	that.mu.Lock()
	board := that.board
	that.mu.Unlock()

	available := make([]entity.Move, 0, entity.BoardSize*entity.BoardSize)
	for row := range board {
		for col, cell := range board[row] {
			if cell == entity.EmptyCell {
				available = append(available, entity.Move{Player: that.mark, Row: row, Col: col})
			}
		}
	}

	if len(available) == 0 {
		return entity.Move{}, ErrNoAvailableMoves
	}

	return available[that.rng.Intn(len(available))], nil
}
