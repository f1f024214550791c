package player

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tgonzalez89/tictactoe/internal/apperror"
	"github.com/tgonzalez89/tictactoe/internal/entity"
	"github.com/tgonzalez89/tictactoe/internal/eventbus"
	"github.com/tgonzalez89/tictactoe/internal/transport/tcp"
)

// HostRelay is the remote player's proxy on the authoritative side. It assigns
// the remote peer its mark, mirrors state:updated, the peer's turn:start and
// the peer's move:invalid onto the wire, and turns valid inbound move records
// into local move:requested events.
type HostRelay struct {
	logger  *slog.Logger
	bus     *eventbus.Bus
	mark    entity.Mark
	channel *tcp.Channel
}

// NewHostRelay performs the role handshake (role:assign, awaiting role:ack)
// before subscribing, so the peer never misses an event it was owed.
func NewHostRelay(ctx context.Context, logger *slog.Logger, bus *eventbus.Bus, mark entity.Mark, channel *tcp.Channel) (*HostRelay, error) {
	that := &HostRelay{
		logger:  logger.With("component", "host-relay", "mark", mark),
		bus:     bus,
		mark:    mark,
		channel: channel,
	}

	if err := that.assignRole(ctx); err != nil {
		return nil, err
	}

	bus.Subscribe(eventbus.TagStateUpdated, that.onStateUpdated)
	bus.Subscribe(eventbus.TagStartTurn, that.onStartTurn)
	bus.Subscribe(eventbus.TagInvalidMove, that.onInvalidMove)

	that.logger.Info("remote player connected")

	return that, nil
}

func (that *HostRelay) Mark() entity.Mark {
	return that.mark
}

func (that *HostRelay) assignRole(ctx context.Context) error {
	msg, err := tcp.NewMessage(tcp.TypeAssignRole, tcp.RolePayload{Role: that.mark})
	if err != nil {
		return err
	}

	if err = that.channel.Send(msg); err != nil {
		return fmt.Errorf("failed to send role assignment: %w", err)
	}

	reply, err := that.channel.Recv(ctx)
	if err != nil {
		return fmt.Errorf("failed to receive role ack: %w", err)
	}

	if reply.Type != tcp.TypeRoleAck {
		return fmt.Errorf("%w: unexpected reply %q", apperror.ErrRoleNotAssigned, reply.Type)
	}

	return nil
}

// Run consumes inbound records until the channel closes or the context is
// done. A record that fails validation is logged and dropped; it never takes
// the loop down.
func (that *HostRelay) Run(ctx context.Context) error {
	for {
		msg, err := that.channel.Recv(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, apperror.ErrChannelClosed) {
				that.logger.Info("remote player disconnected")
				return err
			}
			return fmt.Errorf("failed to receive record: %w", err)
		}

		switch msg.Type {
		case tcp.TypeMove:
			that.handleMove(msg)
		default:
			that.logger.Debug("ignoring record", "type", msg.Type)
		}
	}
}

func (that *HostRelay) handleMove(msg tcp.Message) {
	var payload tcp.MovePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		that.logger.Warn("discarding invalid move record", "error", err)
		return
	}

	if payload.Player != that.mark {
		that.logger.Warn("discarding move record for foreign mark", "player", payload.Player)
		return
	}

	that.bus.Publish(eventbus.MoveRequested{Player: payload.Player, Row: payload.Row, Col: payload.Col})
}

func (that *HostRelay) onStateUpdated(event eventbus.Event) {
	state, ok := event.(eventbus.StateUpdated)
	if !ok {
		return
	}

	that.send(tcp.TypeState, tcp.StatePayload{
		GameID: state.GameID,
		Board:  state.Board,
		Turn:   state.Turn,
		Result: state.Result,
	})
}

func (that *HostRelay) onStartTurn(event eventbus.Event) {
	turn, ok := event.(eventbus.StartTurn)
	if !ok || turn.Player != that.mark {
		return
	}

	that.send(tcp.TypeStartTurn, tcp.TurnPayload{Player: turn.Player})
}

func (that *HostRelay) onInvalidMove(event eventbus.Event) {
	rejected, ok := event.(eventbus.InvalidMove)
	if !ok || rejected.Player != that.mark {
		return
	}

	that.send(tcp.TypeInvalid, tcp.InvalidPayload{Player: rejected.Player, Reason: rejected.Reason})
}

func (that *HostRelay) send(msgType string, payload any) {
	msg, err := tcp.NewMessage(msgType, payload)
	if err != nil {
		that.logger.Error("failed to build record", "type", msgType, "error", err)
		return
	}

	if err = that.channel.Send(msg); err != nil {
		that.logger.Error("failed to send record", "type", msgType, "error", err)
	}
}
