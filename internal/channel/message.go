package channel

import (
	"encoding/json"
	"time"
)

// Envelope is the framing for every message on the live channel. Payload is
// kept raw; shape validation is the listener's concern.
type Envelope struct {
	Event     string          `json:"event"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	AckID     string          `json:"ack_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEnvelope creates an envelope for the given event and payload.
func NewEnvelope(event string, payload any) (*Envelope, error) {
	var raw json.RawMessage
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = payloadBytes
	}

	return &Envelope{
		Event:     event,
		Payload:   raw,
		Timestamp: time.Now(),
	}, nil
}

// ToJSON converts the envelope to JSON bytes.
func (e *Envelope) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON creates an envelope from JSON bytes.
func FromJSON(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// Validate validates the envelope framing.
func (e *Envelope) Validate() error {
	if e.Event == "" {
		return ErrInvalidEnvelope
	}
	return nil
}
