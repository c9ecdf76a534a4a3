package transport

import (
	"encoding/json"
	"fmt"

	"github.com/desertthunder/plx/internal/bridge"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/google/uuid"
)

// Envelope is the wire form of one message.
//
// Nonce identifies a single transmission in logs. It plays no part in correlating responses.
type Envelope struct {
	ID      bridge.MessageID `json:"id"`
	Nonce   string           `json:"nonce"`
	Payload json.RawMessage  `json:"payload,omitempty"`
}

// NewEnvelope wraps payload for id. A nil payload is omitted.
func NewEnvelope(id bridge.MessageID, payload any) (Envelope, error) {
	env := Envelope{ID: id, Nonce: uuid.NewString()}
	if payload == nil {
		return env, nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to encode payload of %s: %w", id, err)
	}
	env.Payload = data
	return env, nil
}

// Encode marshals id and payload into wire bytes.
func Encode(id bridge.MessageID, payload any) ([]byte, error) {
	env, err := NewEnvelope(id, payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

// Decode parses wire bytes into an [Envelope].
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: malformed envelope: %v", shared.ErrInvalidInput, err)
	}
	if env.ID == "" {
		return Envelope{}, fmt.Errorf("%w: envelope without id", shared.ErrInvalidInput)
	}
	return env, nil
}
