package eventbus

import "github.com/tgonzalez89/tictactoe/internal/entity"

// Tag identifies an event variant; handlers register against a tag.
type Tag string

const (
	TagMoveRequested Tag = "move:requested"
	TagStateUpdated  Tag = "state:updated"
	TagStartTurn     Tag = "turn:start"
	TagEnableInput   Tag = "input:enable"
	TagInvalidMove   Tag = "move:invalid"
)

// Event is an immutable value object. Every variant carries only value types,
// so a subscriber can never mutate state seen by another subscriber.
type Event interface {
	Tag() Tag
}

// MoveRequested is published by a participant that wants to place a mark.
type MoveRequested struct {
	Player entity.Mark
	Row    int
	Col    int
}

func (MoveRequested) Tag() Tag { return TagMoveRequested }

// StateUpdated carries a full snapshot of the game after an accepted move
// (or the empty board when the session starts).
type StateUpdated struct {
	GameID string
	Board  entity.Board
	Turn   entity.Mark
	Result entity.Result
}

func (StateUpdated) Tag() Tag { return TagStateUpdated }

// StartTurn tells the named player it may produce a move request.
type StartTurn struct {
	Player entity.Mark
}

func (StartTurn) Tag() Tag { return TagStartTurn }

// EnableInput is a hint to interactive surfaces to prompt for the named player.
type EnableInput struct {
	Player entity.Mark
}

func (EnableInput) Tag() Tag { return TagEnableInput }

// InvalidMove reports a rejected move request back to its producer.
type InvalidMove struct {
	Player entity.Mark
	Reason string
}

func (InvalidMove) Tag() Tag { return TagInvalidMove }
