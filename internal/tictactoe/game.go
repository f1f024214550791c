// Package tictactoe is the pure rules engine. It has no bus dependency and no
// internal locking: a Game is a deterministic function of (board, turn, move),
// which is what keeps it trivially testable. Callers serialize access.
package tictactoe

import (
	"fmt"

	"github.com/tgonzalez89/tictactoe/internal/apperror"
	"github.com/tgonzalez89/tictactoe/internal/entity"
)

// Snapshot is an immutable view of the game handed out to the rest of the
// system. The board is a value type, so the copy is deep.
type Snapshot struct {
	Board  entity.Board
	Turn   entity.Mark
	Result entity.Result
}

type Game struct {
	board  entity.Board
	turn   entity.Mark
	result entity.Result
}

func NewGame() *Game {
	return &Game{
		turn:   entity.PlayerX,
		result: entity.Result{Status: entity.StatusOngoing},
	}
}

func (that *Game) Snapshot() Snapshot {
	return Snapshot{
		Board:  that.board,
		Turn:   that.turn,
		Result: that.result,
	}
}

// ApplyMove validates and applies one move. On failure the game is left
// untouched and a typed error is returned; invalid moves are expected input,
// not faults.
func (that *Game) ApplyMove(move entity.Move) (Snapshot, error) {
	if that.result.IsFinished() {
		return Snapshot{}, apperror.ErrGameFinished
	}

	if !move.InBounds() {
		return Snapshot{}, fmt.Errorf("%w: row %d, col %d", apperror.ErrInvalidCell, move.Row, move.Col)
	}

	if move.Player != that.turn {
		return Snapshot{}, apperror.ErrNotYourTurn
	}

	if that.board[move.Row][move.Col] != entity.EmptyCell {
		return Snapshot{}, apperror.ErrCellOccupied
	}

	that.board[move.Row][move.Col] = move.Player
	that.result = entity.DetermineResult(that.board)

	if that.result.IsFinished() {
		that.turn = entity.EmptyCell
	} else {
		that.turn = move.Player.Other()
	}

	return that.Snapshot(), nil
}
