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

// ClientRelay is the non-authoritative side of a network game. No engine runs
// here: local move requests for the assigned mark go out on the wire, and
// inbound state records are republished on the local bus so displays and the
// local participant behave exactly as in a local game.
type ClientRelay struct {
	logger  *slog.Logger
	bus     *eventbus.Bus
	mark    entity.Mark
	channel *tcp.Channel
}

// NewClientRelay blocks until the host assigns a role, acks it, then wires up
// the outbound side.
func NewClientRelay(ctx context.Context, logger *slog.Logger, bus *eventbus.Bus, channel *tcp.Channel) (*ClientRelay, error) {
	that := &ClientRelay{
		bus:     bus,
		channel: channel,
	}

	if err := that.awaitRole(ctx); err != nil {
		return nil, err
	}

	that.logger = logger.With("component", "client-relay", "mark", that.mark)

	bus.Subscribe(eventbus.TagMoveRequested, that.onMoveRequested)

	that.logger.Info("joined game", "mark", that.mark)

	return that, nil
}

func (that *ClientRelay) Mark() entity.Mark {
	return that.mark
}

func (that *ClientRelay) awaitRole(ctx context.Context) error {
	msg, err := that.channel.Recv(ctx)
	if err != nil {
		return fmt.Errorf("failed to receive role assignment: %w", err)
	}

	if msg.Type != tcp.TypeAssignRole {
		return fmt.Errorf("%w: unexpected record %q", apperror.ErrRoleNotAssigned, msg.Type)
	}

	var payload tcp.RolePayload
	if err = json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrRoleNotAssigned, err)
	}

	if !payload.Role.IsPlayer() {
		return fmt.Errorf("%w: unknown role %q", apperror.ErrRoleNotAssigned, payload.Role)
	}

	that.mark = payload.Role

	ack, err := tcp.NewMessage(tcp.TypeRoleAck, struct{}{})
	if err != nil {
		return err
	}

	if err = that.channel.Send(ack); err != nil {
		return fmt.Errorf("failed to ack role assignment: %w", err)
	}

	return nil
}

// Run republishes inbound state, turn and rejection records on the local bus
// until the channel closes or the context is done. Malformed records are
// dropped and unknown types ignored, per the wire contract.
func (that *ClientRelay) Run(ctx context.Context) error {
	for {
		msg, err := that.channel.Recv(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, apperror.ErrChannelClosed) {
				that.logger.Info("host disconnected")
				return err
			}
			return fmt.Errorf("failed to receive record: %w", err)
		}

		switch msg.Type {
		case tcp.TypeState:
			that.handleState(msg)
		case tcp.TypeStartTurn:
			that.handleStartTurn(msg)
		case tcp.TypeInvalid:
			that.handleInvalid(msg)
		default:
			that.logger.Debug("ignoring record", "type", msg.Type)
		}
	}
}

func (that *ClientRelay) handleState(msg tcp.Message) {
	var payload tcp.StatePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		that.logger.Warn("discarding invalid state record", "error", err)
		return
	}

	that.bus.Publish(eventbus.StateUpdated{
		GameID: payload.GameID,
		Board:  payload.Board,
		Turn:   payload.Turn,
		Result: payload.Result,
	})
}

func (that *ClientRelay) handleStartTurn(msg tcp.Message) {
	var payload tcp.TurnPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		that.logger.Warn("discarding invalid turn record", "error", err)
		return
	}

	if !payload.Player.IsPlayer() {
		that.logger.Warn("discarding turn record with unknown player", "player", payload.Player)
		return
	}

	that.bus.Publish(eventbus.StartTurn{Player: payload.Player})
}

func (that *ClientRelay) handleInvalid(msg tcp.Message) {
	var payload tcp.InvalidPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		that.logger.Warn("discarding invalid rejection record", "error", err)
		return
	}

	that.bus.Publish(eventbus.InvalidMove{Player: payload.Player, Reason: payload.Reason})
}

func (that *ClientRelay) onMoveRequested(event eventbus.Event) {
	request, ok := event.(eventbus.MoveRequested)
	if !ok || request.Player != that.mark {
		return
	}

	msg, err := tcp.NewMessage(tcp.TypeMove, tcp.MovePayload{
		Player: request.Player,
		Row:    request.Row,
		Col:    request.Col,
	})
	if err != nil {
		that.logger.Error("failed to build move record", "error", err)
		return
	}

	if err = that.channel.Send(msg); err != nil {
		that.logger.Error("failed to send move record", "error", err)
	}
}
