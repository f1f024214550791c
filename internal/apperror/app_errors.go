package apperror

import "errors"

var (
	ErrGameFinished    = errors.New("game is already finished")
	ErrNotYourTurn     = errors.New("it's not your turn")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrInvalidCell     = errors.New("invalid cell coordinates")
	ErrChannelClosed   = errors.New("channel is closed")
	ErrRoleNotAssigned = errors.New("role was not assigned")
)
