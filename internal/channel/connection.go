package channel

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"onestop-realtime/pkg/log"
)

// ConnConfig holds the per-connection configuration. A Connection is bound
// to a single credential for its whole life; a credential change always
// produces a fresh Connection.
type ConnConfig struct {
	URL   string
	Token string

	// Identity registered with the server on every connect
	UserID string
	Role   string

	ConnectTimeout    time.Duration
	ReconnectDelay    time.Duration
	ReconnectDelayMax time.Duration
	// ReconnectAttempts caps reconnect attempts; 0 means unbounded.
	ReconnectAttempts int

	PingInterval   time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64
}

// Connection owns one live websocket and its reconnect loop.
type Connection struct {
	cfg    ConnConfig
	logger log.Logger

	// Invoked for recognized inbound events and status transitions. Set
	// once at construction, never while running.
	onEvent  func(*Envelope)
	onStatus func(Status)

	mu        sync.Mutex
	status    Status
	transport *websocket.Conn
	closed    bool
	connects  int
	pending   map[string]SendCallback

	send chan []byte
	done chan struct{}
}

func newConnection(cfg ConnConfig, logger log.Logger, onEvent func(*Envelope), onStatus func(Status)) *Connection {
	return &Connection{
		cfg:      cfg,
		logger:   logger,
		onEvent:  onEvent,
		onStatus: onStatus,
		status:   StatusDisconnected,
		pending:  make(map[string]SendCallback),
		send:     make(chan []byte, 256),
		done:     make(chan struct{}),
	}
}

// start launches the connect/reconnect loop.
func (c *Connection) start() {
	go c.run()
}

func (c *Connection) run() {
	ctx := context.Background()
	delay := c.cfg.ReconnectDelay
	attempts := 0

	for {
		if c.isClosed() {
			return
		}
		c.setStatus(StatusConnecting)

		transport, err := c.dial()
		if err != nil {
			c.setStatus(StatusError)
			attempts++
			if c.cfg.ReconnectAttempts > 0 && attempts >= c.cfg.ReconnectAttempts {
				// Terminal: only a fresh credential change retries from here.
				c.logger.Errorf(ctx, "Channel connect failed permanently after %d attempts: %v", attempts, err)
				return
			}
			c.logger.Warnf(ctx, "Channel connect failed (attempt %d), retrying in %s: %v", attempts, delay, err)
			select {
			case <-c.done:
				return
			case <-time.After(delay):
			}
			delay *= 2
			if delay > c.cfg.ReconnectDelayMax {
				delay = c.cfg.ReconnectDelayMax
			}
			continue
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			transport.Close()
			return
		}
		c.transport = transport
		c.connects++
		c.mu.Unlock()

		attempts = 0
		delay = c.cfg.ReconnectDelay

		c.setStatus(StatusConnected)
		c.logger.Infof(ctx, "Channel connected for user %s", c.cfg.UserID)

		stop := make(chan struct{})
		go c.writePump(transport, stop)

		// Server-side room membership does not survive a transport drop,
		// so registration repeats on every connect.
		c.sendRegistration(ctx)

		c.readPump(ctx, transport)
		close(stop)

		c.mu.Lock()
		c.transport = nil
		c.mu.Unlock()

		c.failPending("connection lost")

		if c.isClosed() {
			c.setStatus(StatusDisconnected)
			return
		}
		c.logger.Warn(ctx, "Channel dropped by server, reconnecting...")
	}
}

func (c *Connection) dial() (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: c.cfg.ConnectTimeout,
	}
	endpoint := c.cfg.URL + "?token=" + url.QueryEscape(c.cfg.Token)
	transport, _, err := dialer.Dial(endpoint, nil)
	return transport, err
}

// readPump pumps inbound frames until the transport drops. At most one
// reader runs per transport.
func (c *Connection) readPump(ctx context.Context, transport *websocket.Conn) {
	transport.SetReadLimit(c.cfg.MaxMessageSize)
	transport.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	transport.SetPongHandler(func(string) error {
		transport.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		return nil
	})

	for {
		_, message, err := transport.ReadMessage()
		if err != nil {
			if !c.isClosed() && websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Errorf(ctx, "Channel read error: %v", err)
			}
			return
		}
		c.dispatch(ctx, message)
	}
}

// writePump drains the outbound buffer and keeps the transport alive with
// pings. At most one writer runs per transport.
func (c *Connection) writePump(transport *websocket.Conn, stop chan struct{}) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		transport.Close()
	}()

	for {
		select {
		case message := <-c.send:
			transport.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := transport.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			transport.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := transport.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-stop:
			return

		case <-c.done:
			transport.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Connection) dispatch(ctx context.Context, message []byte) {
	env, err := FromJSON(message)
	if err != nil {
		c.logger.Warnf(ctx, "Dropping unparseable frame: %v", err)
		return
	}
	if err := env.Validate(); err != nil {
		c.logger.Warn(ctx, "Dropping frame without event name")
		return
	}

	if env.Event == EventAck {
		c.resolveAck(env)
		return
	}
	if c.onEvent != nil {
		c.onEvent(env)
	}
}

func (c *Connection) sendRegistration(ctx context.Context) {
	registrations := []struct {
		event   string
		payload any
	}{
		{EventRegister, RegisterPayload{UserID: c.cfg.UserID}},
		{EventPresenceOnline, PresencePayload{UserID: c.cfg.UserID, Role: c.cfg.Role}},
		{EventNotificationJoin, RoomJoinPayload{UserID: c.cfg.UserID}},
	}
	for _, r := range registrations {
		if err := c.Emit(r.event, r.payload); err != nil {
			c.logger.Errorf(ctx, "Failed to send %s: %v", r.event, err)
		}
	}
}

// Emit queues a fire-and-forget message. Requires connected status.
func (c *Connection) Emit(event string, payload any) error {
	env, err := NewEnvelope(event, payload)
	if err != nil {
		return err
	}
	return c.enqueue(env)
}

// EmitWithAck queues a message expecting a server acknowledgement. The
// callback fires at most once, with the ack payload or a failure result.
func (c *Connection) EmitWithAck(event string, payload any, callback SendCallback) error {
	env, err := NewEnvelope(event, payload)
	if err != nil {
		return err
	}
	env.AckID = uuid.New().String()

	c.mu.Lock()
	c.pending[env.AckID] = callback
	c.mu.Unlock()

	if err := c.enqueue(env); err != nil {
		c.takePending(env.AckID)
		return err
	}
	return nil
}

func (c *Connection) enqueue(env *Envelope) error {
	data, err := env.ToJSON()
	if err != nil {
		return err
	}
	if c.Status() != StatusConnected {
		return ErrNotConnected
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrBufferFull
	}
}

func (c *Connection) resolveAck(env *Envelope) {
	callback := c.takePending(env.AckID)
	if callback == nil {
		return
	}
	callback(SendResult{OK: true, Payload: env.Payload})
}

func (c *Connection) takePending(ackID string) SendCallback {
	c.mu.Lock()
	defer c.mu.Unlock()
	callback := c.pending[ackID]
	delete(c.pending, ackID)
	return callback
}

// failPending fails every outstanding ack callback. Each callback still
// fires at most once: takers delete entries under the same lock.
func (c *Connection) failPending(reason string) {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[string]SendCallback)
	c.mu.Unlock()

	for _, callback := range pending {
		if callback != nil {
			callback(SendResult{OK: false, Error: reason})
		}
	}
}

// Status returns the current connection status.
func (c *Connection) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Connects returns how many times this connection reached connected status.
func (c *Connection) Connects() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connects
}

func (c *Connection) setStatus(status Status) {
	c.mu.Lock()
	if c.status == status {
		c.mu.Unlock()
		return
	}
	c.status = status
	c.mu.Unlock()

	if c.onStatus != nil {
		c.onStatus(status)
	}
}

func (c *Connection) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close tears the connection down: the reconnect loop stops, the transport
// closes, and outstanding acks fail. Idempotent.
func (c *Connection) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	transport := c.transport
	c.transport = nil
	c.mu.Unlock()

	close(c.done)
	if transport != nil {
		transport.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(c.cfg.WriteWait))
		transport.Close()
	}
	c.failPending("connection closed")
	c.setStatus(StatusDisconnected)
}
