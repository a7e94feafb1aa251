// Package ws is the websocket transport of the relay: it upgrades
// incoming connections, owns their lifecycle, and adapts them to the
// hub's connection contract.
package ws

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Conn wraps a websocket connection as a registry handle. Writes are
// serialized with a mutex because gorilla permits only one concurrent
// writer, and several workers may target the same socket.
type Conn struct {
	id     uuid.UUID
	key    domain.AddressKey
	socket *websocket.Conn
	mu     sync.Mutex
	closed atomic.Bool
}

func newConn(key domain.AddressKey, socket *websocket.Conn) *Conn {
	return &Conn{id: uuid.New(), key: key, socket: socket}
}

func (c *Conn) ID() uuid.UUID {
	return c.id
}

func (c *Conn) Key() domain.AddressKey {
	return c.key
}

// Send writes payload as one text frame. Sending on a closed
// connection returns ErrConnClosed instead of racing the transport.
func (c *Conn) Send(ctx context.Context, payload []byte) error {
	if c.closed.Load() {
		return errors.ErrConnClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.socket.WriteMessage(websocket.TextMessage, payload)
}

func (c *Conn) IsOpen() bool {
	return !c.closed.Load()
}

// Close is idempotent; only the first call touches the socket.
func (c *Conn) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.socket.Close()
}
