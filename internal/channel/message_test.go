package channel

import (
	"errors"
	"testing"
)

func TestEnvelopeValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     Envelope
		wantErr bool
	}{
		{"event with payload", Envelope{Event: EventNotify, Payload: []byte(`{}`)}, false},
		{"event without payload", Envelope{Event: EventRegister}, false},
		{"missing event", Envelope{Payload: []byte(`{}`)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.env.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidEnvelope) {
				t.Errorf("Validate() error = %v, want ErrInvalidEnvelope", err)
			}
		})
	}
}

func TestNewEnvelopeRejectsUnmarshalablePayload(t *testing.T) {
	if _, err := NewEnvelope(EventNotify, make(chan int)); err == nil {
		t.Error("NewEnvelope accepted an unmarshalable payload")
	}
}

func TestFromJSONMalformed(t *testing.T) {
	if _, err := FromJSON([]byte("not json")); err == nil {
		t.Error("FromJSON accepted malformed input")
	}
}
