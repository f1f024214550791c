package tictactoe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgonzalez89/tictactoe/internal/apperror"
	"github.com/tgonzalez89/tictactoe/internal/entity"
)

func mustApply(t *testing.T, game *Game, player entity.Mark, row, col int) Snapshot {
	t.Helper()

	snapshot, err := game.ApplyMove(entity.Move{Player: player, Row: row, Col: col})
	require.NoError(t, err)

	return snapshot
}

func TestGame_ApplyMove(t *testing.T) {
	t.Run("Successful move writes the mark and toggles the turn", func(t *testing.T) {
		// Given: a new game, X to move
		game := NewGame()

		// When: X plays the center
		snapshot := mustApply(t, game, entity.PlayerX, 1, 1)

		// Then: the mark is placed, the turn passes to O and the game continues
		assert.Equal(t, entity.PlayerX, snapshot.Board[1][1])
		assert.Equal(t, entity.PlayerO, snapshot.Turn)
		assert.False(t, snapshot.Result.IsFinished())
	})

	t.Run("Move by the non-current player fails and leaves state unchanged", func(t *testing.T) {
		// Given: a new game, X to move
		game := NewGame()
		before := game.Snapshot()

		// When: O tries to move first
		_, err := game.ApplyMove(entity.Move{Player: entity.PlayerO, Row: 0, Col: 0})

		// Then: the move is rejected as out of turn and nothing changed
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Equal(t, before, game.Snapshot())
	})

	t.Run("Move to an occupied cell fails and leaves state unchanged", func(t *testing.T) {
		// Given: a game where X already holds the corner
		game := NewGame()
		mustApply(t, game, entity.PlayerX, 0, 0)
		before := game.Snapshot()

		// When: O targets the same cell
		_, err := game.ApplyMove(entity.Move{Player: entity.PlayerO, Row: 0, Col: 0})

		// Then: the move is rejected and nothing changed
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Equal(t, before, game.Snapshot())
	})

	t.Run("Move outside the board fails", func(t *testing.T) {
		// Given: a new game
		game := NewGame()

		// When: X targets a cell off the grid
		_, err := game.ApplyMove(entity.Move{Player: entity.PlayerX, Row: 3, Col: 0})

		// Then: the move is rejected with the coordinate error
		assert.ErrorIs(t, err, apperror.ErrInvalidCell)
	})

	t.Run("Completing the top row wins the game for X", func(t *testing.T) {
		// Given: the sequence (X,0,0) (O,1,1) (X,0,1) (O,2,2)
		game := NewGame()
		mustApply(t, game, entity.PlayerX, 0, 0)
		mustApply(t, game, entity.PlayerO, 1, 1)
		mustApply(t, game, entity.PlayerX, 0, 1)
		mustApply(t, game, entity.PlayerO, 2, 2)

		// When: X completes the top row
		snapshot := mustApply(t, game, entity.PlayerX, 0, 2)

		// Then: the game is finished with X as the winner
		assert.True(t, snapshot.Result.IsFinished())
		assert.Equal(t, entity.PlayerX, snapshot.Result.Winner)
		assert.Equal(t, entity.EmptyCell, snapshot.Turn)
	})

	t.Run("Terminal state is absorbing", func(t *testing.T) {
		// Given: a game X already won
		game := NewGame()
		mustApply(t, game, entity.PlayerX, 0, 0)
		mustApply(t, game, entity.PlayerO, 1, 1)
		mustApply(t, game, entity.PlayerX, 0, 1)
		mustApply(t, game, entity.PlayerO, 2, 2)
		mustApply(t, game, entity.PlayerX, 0, 2)
		before := game.Snapshot()

		// When: a sixth move is attempted
		_, err := game.ApplyMove(entity.Move{Player: entity.PlayerO, Row: 2, Col: 0})

		// Then: it fails because the game is over, with the board unchanged
		require.ErrorIs(t, err, apperror.ErrGameFinished)
		assert.Equal(t, before, game.Snapshot())
	})

	t.Run("Filling the board with no line ends in a draw", func(t *testing.T) {
		// Given: eight alternating moves building toward X,O,X / X,O,O / O,X,X
		game := NewGame()
		mustApply(t, game, entity.PlayerX, 0, 0)
		mustApply(t, game, entity.PlayerO, 0, 1)
		mustApply(t, game, entity.PlayerX, 0, 2)
		mustApply(t, game, entity.PlayerO, 1, 1)
		mustApply(t, game, entity.PlayerX, 1, 0)
		mustApply(t, game, entity.PlayerO, 1, 2)
		mustApply(t, game, entity.PlayerX, 2, 1)
		mustApply(t, game, entity.PlayerO, 2, 0)

		// When: X fills the ninth cell
		snapshot := mustApply(t, game, entity.PlayerX, 2, 2)

		// Then: the game is a draw
		assert.True(t, snapshot.Result.IsFinished())
		assert.True(t, snapshot.Result.IsDraw())
		assert.Equal(t, entity.PlayerTie, snapshot.Result.Winner)
	})

	t.Run("Column and diagonal wins are detected", func(t *testing.T) {
		// Given: O building the middle column while X wanders
		game := NewGame()
		mustApply(t, game, entity.PlayerX, 0, 0)
		mustApply(t, game, entity.PlayerO, 0, 1)
		mustApply(t, game, entity.PlayerX, 1, 0)
		mustApply(t, game, entity.PlayerO, 1, 1)
		mustApply(t, game, entity.PlayerX, 2, 2)

		// When: O completes the column
		snapshot := mustApply(t, game, entity.PlayerO, 2, 1)

		// Then: O wins
		assert.Equal(t, entity.PlayerO, snapshot.Result.Winner)
	})
}

func TestGame_Snapshot(t *testing.T) {
	t.Run("Snapshot is a copy, not a live view", func(t *testing.T) {
		// Given: a snapshot taken before a move
		game := NewGame()
		snapshot := game.Snapshot()

		// When: the game advances
		mustApply(t, game, entity.PlayerX, 0, 0)

		// Then: the earlier snapshot still shows the empty board
		assert.Equal(t, entity.EmptyCell, snapshot.Board[0][0])
		assert.Equal(t, entity.PlayerX, snapshot.Turn)
	})
}
