package player

import (
	"github.com/tgonzalez89/tictactoe/internal/entity"
	"github.com/tgonzalez89/tictactoe/internal/eventbus"
)

// Local represents a human at this machine. It owns no input loop of its own;
// it tells interactive surfaces when to prompt by publishing input:enable,
// and re-prompts after one of its moves is rejected so the human can retry.
type Local struct {
	bus  *eventbus.Bus
	mark entity.Mark
}

func NewLocal(bus *eventbus.Bus, mark entity.Mark) *Local {
	that := &Local{
		bus:  bus,
		mark: mark,
	}

	bus.Subscribe(eventbus.TagStartTurn, that.onStartTurn)
	bus.Subscribe(eventbus.TagInvalidMove, that.onInvalidMove)

	return that
}

func (that *Local) Mark() entity.Mark {
	return that.mark
}

func (that *Local) onStartTurn(event eventbus.Event) {
	turn, ok := event.(eventbus.StartTurn)
	if !ok || turn.Player != that.mark {
		return
	}

	that.bus.Publish(eventbus.EnableInput{Player: that.mark})
}

func (that *Local) onInvalidMove(event eventbus.Event) {
	rejected, ok := event.(eventbus.InvalidMove)
	if !ok || rejected.Player != that.mark {
		return
	}

	that.bus.Publish(eventbus.EnableInput{Player: that.mark})
}
