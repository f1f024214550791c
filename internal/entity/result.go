package entity

const (
	StatusOngoing  = "ongoing"
	StatusFinished = "finished"
)

// Result is the game outcome derived from the board after each move.
// Winner is PlayerX or PlayerO on a win, PlayerTie on a draw, and EmptyCell
// while the game is still ongoing.
type Result struct {
	Status string `json:"status"`
	Winner Mark   `json:"winner,omitempty"`
}

func (that Result) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that Result) IsDraw() bool {
	return that.Winner == PlayerTie
}

// DetermineResult recomputes the outcome from scratch: a completed line wins,
// a full board with no line is a draw, anything else is still ongoing.
func DetermineResult(board Board) Result {
	if winner := board.Winner(); winner != EmptyCell {
		return Result{Status: StatusFinished, Winner: winner}
	}

	if board.IsFull() {
		return Result{Status: StatusFinished, Winner: PlayerTie}
	}

	return Result{Status: StatusOngoing}
}
