package channel

import "errors"

var (
	// ErrInvalidEnvelope indicates a frame without an event name.
	ErrInvalidEnvelope = errors.New("channel: invalid envelope")

	// ErrNotConnected indicates an emit on a channel that is not connected.
	ErrNotConnected = errors.New("channel: not connected")

	// ErrBufferFull indicates the outbound buffer rejected a message.
	ErrBufferFull = errors.New("channel: send buffer full")
)
