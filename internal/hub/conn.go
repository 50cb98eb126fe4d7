package hub

import (
	"context"
	"errors"
	"time"

	"github.com/coder/websocket"
)

// Transport is the slice of the websocket connection the hub needs. The ws
// package adapts *websocket.Conn to it; tests substitute fakes.
type Transport interface {
	WriteText(ctx context.Context, data []byte) error
	Ping(ctx context.Context) error
	Close(code websocket.StatusCode, reason string) error
}

var errOutboxFull = errors.New("connection outbox full")
var errConnClosed = errors.New("connection closed")

// Conn is one live client channel. The hub loop is the only goroutine that
// touches the state fields; the writer goroutine only drains the outbox.
type Conn struct {
	ID        string
	transport Transport

	// Owned by the hub loop.
	Authenticated bool
	MatchID       string
	Alive         bool
	LastSeen      time.Time

	outbox chan []byte
	done   chan struct{}
	closed bool
}

func NewConn(id string, tr Transport) *Conn {
	return &Conn{
		ID:        id,
		transport: tr,
		outbox:    make(chan []byte, 16),
		done:      make(chan struct{}),
	}
}

// Open reports whether the connection can still accept broadcasts.
func (c *Conn) Open() bool {
	return !c.closed
}

// Send queues data for the writer goroutine. Fire and forget: a full outbox
// is an error for this one send, not a reason to drop the connection — the
// liveness sweep deals with receivers that stay stuck.
func (c *Conn) Send(data []byte) error {
	if c.closed {
		return errConnClosed
	}
	select {
	case c.outbox <- data:
		return nil
	default:
		return errOutboxFull
	}
}

// run drains the outbox onto the transport until the connection is closed.
func (c *Conn) run(ctx context.Context) {
	for {
		select {
		case <-c.done:
			return
		case <-ctx.Done():
			return
		case data := <-c.outbox:
			wctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			_ = c.transport.WriteText(wctx, data)
			cancel()
		}
	}
}

// close tears down the transport once. Hub loop only.
func (c *Conn) close(code websocket.StatusCode, reason string) {
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	_ = c.transport.Close(code, reason)
}
