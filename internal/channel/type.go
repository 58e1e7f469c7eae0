package channel

import "encoding/json"

// Status represents the channel connection state.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
)

// Outbound wire events
const (
	EventRegister         = "register"
	EventPresenceOnline   = "presence:online"
	EventNotificationJoin = "notification:join"
	EventMessageSend      = "message:send"
	EventMessageMark      = "message:mark"
	EventTyping           = "typing"
	EventNotify           = "notify"
)

// Inbound wire events
const (
	EventAck             = "ack"
	EventNotificationNew = "notification:new"
	// EventNotificationOld is the legacy name some backend versions still
	// emit for the same event. Both are accepted.
	EventNotificationOld = "notification"
	EventMessageNew      = "message:new"
	EventMessageUpdate   = "message:update"
)

// RegisterPayload identifies the user to the server after connecting.
type RegisterPayload struct {
	UserID string `json:"user_id"`
}

// PresencePayload marks the user online with their role.
type PresencePayload struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// RoomJoinPayload joins the user's personal notification room.
type RoomJoinPayload struct {
	UserID string `json:"user_id"`
}

// MarkPayload updates a message's delivery status.
type MarkPayload struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}

// TypingPayload signals a typing indicator to a recipient.
type TypingPayload struct {
	To             string `json:"to"`
	ConversationID string `json:"conversation_id"`
	IsTyping       bool   `json:"is_typing"`
}

// SendResult is delivered to the caller's callback when a message send is
// acknowledged or fails.
type SendResult struct {
	OK      bool            `json:"ok"`
	Error   string          `json:"error,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SendCallback receives the acknowledgement for a Send call. Invoked at most
// once.
type SendCallback func(SendResult)
