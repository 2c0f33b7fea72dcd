package notify

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// socket is the minimal transport a connection writes to. *websocket.Conn
// satisfies it; tests plug in a recording fake.
type socket interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

const outboxSize = 64

// Conn is one live staff session. A single writer goroutine drains the
// outbox, which gives per-connection FIFO delivery without holding the
// registry lock during socket writes.
type Conn struct {
	staffID string
	sock    socket

	outbox chan []byte
	done   chan struct{}
	once   sync.Once
}

func newConn(staffID string, sock socket) *Conn {
	c := &Conn{
		staffID: staffID,
		sock:    sock,
		outbox:  make(chan []byte, outboxSize),
		done:    make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

func (c *Conn) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case b := <-c.outbox:
			if err := c.sock.WriteMessage(websocket.TextMessage, b); err != nil {
				slog.Warn("push delivery failed", "staff_id", c.staffID, "err", err)
				c.Close()
				return
			}
		}
	}
}

// push enqueues a payload, dropping it when the connection is closed or the
// outbox is full. Best-effort: the caller never blocks and never sees an
// error.
func (c *Conn) push(b []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.outbox <- b:
		return true
	case <-c.done:
		return false
	default:
		slog.Warn("push outbox full, dropping event", "staff_id", c.staffID)
		return false
	}
}

// Close stops the writer and closes the underlying socket. Safe to call more
// than once; pending outbox items are dropped.
func (c *Conn) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.sock.Close()
	})
}

func (c *Conn) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
