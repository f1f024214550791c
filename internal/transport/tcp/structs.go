package tcp

import (
	"encoding/json"
	"fmt"

	"github.com/tgonzalez89/tictactoe/internal/entity"
)

const (
	TypeAssignRole = "role:assign"
	TypeRoleAck    = "role:ack"
	TypeMove       = "game:move"
	TypeState      = "game:state"
	TypeStartTurn  = "game:turn"
	TypeInvalid    = "game:invalid"
)

// Message is one wire record: a type discriminator plus a type-specific
// payload. Records the peer does not understand are ignored, not fatal.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type MovePayload struct {
	Player entity.Mark `json:"player"`
	Row    int         `json:"row"`
	Col    int         `json:"col"`
}

type RolePayload struct {
	Role entity.Mark `json:"role"`
}

type StatePayload struct {
	GameID string        `json:"game_id,omitempty"`
	Board  entity.Board  `json:"board"`
	Turn   entity.Mark   `json:"turn,omitempty"`
	Result entity.Result `json:"result"`
}

type TurnPayload struct {
	Player entity.Mark `json:"player"`
}

type InvalidPayload struct {
	Player entity.Mark `json:"player"`
	Reason string      `json:"reason"`
}

// NewMessage wraps a typed payload into a wire message.
func NewMessage(msgType string, payload any) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal %s payload: %w", msgType, err)
	}

	return Message{Type: msgType, Payload: raw}, nil
}
