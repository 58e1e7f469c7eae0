// Package channel maintains exactly one live connection to the messaging
// endpoint, correlated to the current session credential. Inbound events are
// republished on the event bus so unrelated consumers can react without the
// channel knowing about them.
package channel

import (
	"context"
	"sync"
	"time"

	"onestop-realtime/internal/events"
	"onestop-realtime/internal/session"
	"onestop-realtime/pkg/log"
)

// SocketOptions holds the transport tuning shared by every connection the
// manager creates.
type SocketOptions struct {
	URL               string
	ConnectTimeout    time.Duration
	ReconnectDelay    time.Duration
	ReconnectDelayMax time.Duration
	ReconnectAttempts int
	PingInterval      time.Duration
	PongWait          time.Duration
	WriteWait         time.Duration
	MaxMessageSize    int64
}

// ManagerConfig holds the manager dependencies.
type ManagerConfig struct {
	Session session.Store
	Bus     *events.Bus
	Logger  log.Logger
	Socket  SocketOptions
}

// Manager binds the session credential to the live channel lifecycle. It is
// read-only towards the session store: it reacts to credential changes and
// never mutates them.
type Manager struct {
	cfg ManagerConfig

	mu         sync.Mutex
	credential string
	conn       *Connection

	unsubscribe func()
}

// NewManager creates a Manager and subscribes it to credential changes.
func NewManager(cfg ManagerConfig) *Manager {
	m := &Manager{cfg: cfg}
	m.unsubscribe = cfg.Session.Subscribe(m.HandleCredentialChange)
	return m
}

// HandleCredentialChange is the state transition for a credential change:
// tear down any existing connection first, then construct a fresh one if the
// new credential is non-empty. The old transport's close is initiated before
// the new connection starts connecting, so nothing leaks across identities.
func (m *Manager) HandleCredentialChange(credential string) {
	m.mu.Lock()
	if credential == m.credential {
		m.mu.Unlock()
		return
	}
	old := m.conn
	m.credential = credential
	m.conn = nil

	var next *Connection
	if credential != "" {
		identity := m.cfg.Session.Identity()
		next = newConnection(ConnConfig{
			URL:               m.cfg.Socket.URL,
			Token:             credential,
			UserID:            identity.ID,
			Role:              identity.Role,
			ConnectTimeout:    m.cfg.Socket.ConnectTimeout,
			ReconnectDelay:    m.cfg.Socket.ReconnectDelay,
			ReconnectDelayMax: m.cfg.Socket.ReconnectDelayMax,
			ReconnectAttempts: m.cfg.Socket.ReconnectAttempts,
			PingInterval:      m.cfg.Socket.PingInterval,
			PongWait:          m.cfg.Socket.PongWait,
			WriteWait:         m.cfg.Socket.WriteWait,
			MaxMessageSize:    m.cfg.Socket.MaxMessageSize,
		}, m.cfg.Logger, m.rebroadcast, m.publishStatus)
		m.conn = next
	}
	m.mu.Unlock()

	if old != nil {
		old.Close()
	}
	if next != nil {
		next.start()
	}
}

// Close tears down the current connection and stops observing credential
// changes. Same sequence as a credential clear.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}

	m.mu.Lock()
	old := m.conn
	m.conn = nil
	m.credential = ""
	m.mu.Unlock()

	if old != nil {
		old.Close()
	}
}

// Status returns the current channel status. Non-blocking.
func (m *Manager) Status() Status {
	if conn := m.current(); conn != nil {
		return conn.Status()
	}
	return StatusDisconnected
}

// IsConnected reports whether the channel is connected. Non-blocking.
func (m *Manager) IsConnected() bool {
	return m.Status() == StatusConnected
}

// Reconnects returns how many times the current connection re-established
// itself after a drop.
func (m *Manager) Reconnects() int {
	conn := m.current()
	if conn == nil {
		return 0
	}
	if connects := conn.Connects(); connects > 0 {
		return connects - 1
	}
	return 0
}

// Send emits a message expecting a server acknowledgement. When the channel
// is not connected, nothing is dispatched and the callback receives a
// failure result instead.
func (m *Manager) Send(payload any, callback SendCallback) {
	ctx := context.Background()
	conn := m.current()
	if conn == nil || conn.Status() != StatusConnected {
		m.cfg.Logger.Error(ctx, "Cannot send message: channel not connected")
		if callback != nil {
			callback(SendResult{OK: false, Error: ErrNotConnected.Error()})
		}
		return
	}
	if err := conn.EmitWithAck(EventMessageSend, payload, callback); err != nil {
		m.cfg.Logger.Errorf(ctx, "Failed to send message: %v", err)
		if callback != nil {
			callback(SendResult{OK: false, Error: err.Error()})
		}
	}
}

// Mark sends a fire-and-forget message status update (delivered, read).
func (m *Manager) Mark(messageID, status string) {
	m.emit(EventMessageMark, MarkPayload{MessageID: messageID, Status: status})
}

// Typing sends a fire-and-forget typing indicator.
func (m *Manager) Typing(to, conversationID string, isTyping bool) {
	m.emit(EventTyping, TypingPayload{To: to, ConversationID: conversationID, IsTyping: isTyping})
}

// Notify emits a manual notification.
func (m *Manager) Notify(payload any) {
	m.emit(EventNotify, payload)
}

func (m *Manager) emit(event string, payload any) {
	ctx := context.Background()
	conn := m.current()
	if conn == nil || conn.Status() != StatusConnected {
		m.cfg.Logger.Errorf(ctx, "Cannot emit %s: channel not connected", event)
		return
	}
	if err := conn.Emit(event, payload); err != nil {
		m.cfg.Logger.Errorf(ctx, "Failed to emit %s: %v", event, err)
	}
}

func (m *Manager) current() *Connection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn
}

// rebroadcast republishes a recognized inbound event on the bus. Payloads
// are forwarded as raw JSON; listeners decode the shape they expect.
func (m *Manager) rebroadcast(env *Envelope) {
	kind, ok := rebroadcastKind(env.Event)
	if !ok {
		m.cfg.Logger.Debugf(context.Background(), "Ignoring unrecognized inbound event %q", env.Event)
		return
	}
	m.cfg.Bus.Publish(kind, env.Payload)
}

func (m *Manager) publishStatus(status Status) {
	m.cfg.Bus.Publish(events.KindChannelStatus, status)
}

func rebroadcastKind(event string) (string, bool) {
	switch event {
	case EventNotificationNew, EventNotificationOld:
		return events.KindNotification, true
	case EventMessageNew:
		return events.KindMessage, true
	case EventMessageUpdate:
		return events.KindMessageUpdate, true
	case EventTyping:
		return events.KindTyping, true
	}
	return "", false
}
