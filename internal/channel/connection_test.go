package channel

import (
	"errors"
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}

func testConnConfig(url string) ConnConfig {
	return ConnConfig{
		URL:               url,
		Token:             "tok-123",
		UserID:            "u1",
		Role:              "student",
		ConnectTimeout:    2 * time.Second,
		ReconnectDelay:    20 * time.Millisecond,
		ReconnectDelayMax: 100 * time.Millisecond,
		PingInterval:      10 * time.Second,
		PongWait:          20 * time.Second,
		WriteWait:         2 * time.Second,
		MaxMessageSize:    65536,
	}
}

func TestEmitBeforeConnectedReturnsError(t *testing.T) {
	c := newConnection(testConnConfig("ws://127.0.0.1:1"), &mockLogger{}, nil, nil)

	if err := c.Emit(EventNotify, map[string]string{"title": "x"}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Emit error = %v, want ErrNotConnected", err)
	}
}

func TestEmitWithAckFailureDoesNotLeakPending(t *testing.T) {
	c := newConnection(testConnConfig("ws://127.0.0.1:1"), &mockLogger{}, nil, nil)

	called := 0
	err := c.EmitWithAck(EventMessageSend, "hello", func(SendResult) { called++ })
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("EmitWithAck error = %v, want ErrNotConnected", err)
	}
	if called != 0 {
		t.Errorf("callback fired %d times on enqueue failure, want 0 (caller handles it)", called)
	}
	if len(c.pending) != 0 {
		t.Errorf("pending acks = %d, want 0", len(c.pending))
	}
}

func TestPendingAckFailsOnClose(t *testing.T) {
	srv := newChannelServer(t)
	srv.ackAll = false

	c := newConnection(testConnConfig(srv.url()), &mockLogger{}, nil, nil)
	c.start()
	waitFor(t, 2*time.Second, func() bool { return c.Status() == StatusConnected })

	results := make(chan SendResult, 1)
	if err := c.EmitWithAck(EventMessageSend, "hello", func(result SendResult) {
		results <- result
	}); err != nil {
		t.Fatalf("EmitWithAck failed: %v", err)
	}

	c.Close()

	select {
	case result := <-results:
		if result.OK {
			t.Error("callback OK = true, want failure after close")
		}
		if result.Error == "" {
			t.Error("failure result carries no error indicator")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pending ack callback never failed")
	}

	// At most once: no second result may arrive.
	select {
	case <-results:
		t.Fatal("callback fired twice")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	srv := newChannelServer(t)

	c := newConnection(testConnConfig(srv.url()), &mockLogger{}, nil, nil)
	c.start()
	waitFor(t, 2*time.Second, func() bool { return c.Status() == StatusConnected })

	c.Close()
	c.Close()

	if c.Status() != StatusDisconnected {
		t.Errorf("Status() = %s, want disconnected", c.Status())
	}
}

func TestDialFailureExhaustionIsTerminal(t *testing.T) {
	cfg := testConnConfig("ws://127.0.0.1:1")
	cfg.ReconnectAttempts = 2

	c := newConnection(cfg, &mockLogger{}, nil, nil)
	c.start()

	waitFor(t, 2*time.Second, func() bool { return c.Status() == StatusError })
	// Give the loop a moment to prove it stopped retrying.
	time.Sleep(150 * time.Millisecond)
	if c.Status() != StatusError {
		t.Errorf("Status() = %s, want error to be terminal", c.Status())
	}
	c.Close()
}

func TestCloseDuringBackoffStopsLoop(t *testing.T) {
	cfg := testConnConfig("ws://127.0.0.1:1")
	cfg.ReconnectDelay = 5 * time.Second
	cfg.ReconnectDelayMax = 5 * time.Second

	c := newConnection(cfg, &mockLogger{}, nil, nil)
	c.start()
	waitFor(t, 2*time.Second, func() bool { return c.Status() == StatusError })

	done := make(chan struct{})
	go func() {
		c.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close blocked while loop was in backoff")
	}
	if c.Status() != StatusDisconnected {
		t.Errorf("Status() = %s, want disconnected after close", c.Status())
	}
}
