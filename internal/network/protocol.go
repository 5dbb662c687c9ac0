package network

import (
	"encoding/json"
)

// Message is the envelope for every frame in both directions.
// Type names the command or notification, Payload carries its body verbatim.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MaxMessageSize bounds a single inbound frame.
const MaxMessageSize = 64 * 1024

// NewMessage encodes payload into an envelope of the given type.
func NewMessage(msgType string, payload any) (Message, error) {
	if payload == nil {
		return Message{Type: msgType}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: msgType, Payload: data}, nil
}
