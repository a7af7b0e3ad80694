package netcode

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vovakirdan/tui-blocks/internal/blocks"
	"github.com/vovakirdan/tui-blocks/internal/core"
)

// MessageType tags the wire message variants.
type MessageType string

const (
	// MessageTypeInput carries one player's input for one frame.
	MessageTypeInput MessageType = "input"
	// MessageTypeState carries an authoritative state broadcast.
	MessageTypeState MessageType = "state"
)

// Message is the closed set of wire messages this core exchanges. Every
// switch over the concrete types must be exhaustive; Decode rejects tags
// it does not know instead of ignoring them.
type Message interface {
	messageType() MessageType
}

// InputMessage delivers a definitive input for a player at a frame,
// possibly out of order and possibly late.
type InputMessage struct {
	PlayerID core.PlayerID `json:"playerId"`
	Frame    int64         `json:"frame"`
	Inputs   core.Input    `json:"inputs"`
}

func (InputMessage) messageType() MessageType { return MessageTypeInput }

// StateMessage is a periodic authoritative snapshot broadcast used by the
// server consumer for reconciliation.
type StateMessage struct {
	Frame  int64                            `json:"frame"`
	States map[core.PlayerID]blocks.Snapshot `json:"states"`
}

func (StateMessage) messageType() MessageType { return MessageTypeState }

// envelope is the tagged-union JSON framing. The wire encoding carries
// these fields losslessly; transports are free to wrap it further.
type envelope struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"timestamp"`
	PlayerID  core.PlayerID   `json:"playerId,omitempty"`
	Data      json.RawMessage `json:"data"`
}

// Encode serializes a message into the JSON envelope.
func Encode(msg Message, from core.PlayerID) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("netcode: failed to marshal %s message: %w", msg.messageType(), err)
	}
	env := envelope{
		Type:      msg.messageType(),
		Timestamp: time.Now().UnixMilli(),
		PlayerID:  from,
		Data:      data,
	}
	out, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("netcode: failed to marshal envelope: %w", err)
	}
	return out, nil
}

// Decode parses an envelope and its payload. Unknown message types are an
// error, not a silent skip.
func Decode(raw []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("netcode: malformed envelope: %w", err)
	}

	switch env.Type {
	case MessageTypeInput:
		var msg InputMessage
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			return nil, fmt.Errorf("netcode: malformed input message: %w", err)
		}
		return msg, nil
	case MessageTypeState:
		var msg StateMessage
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			return nil, fmt.Errorf("netcode: malformed state message: %w", err)
		}
		return msg, nil
	default:
		return nil, fmt.Errorf("netcode: unknown message type %q", env.Type)
	}
}
