// Package observability exposes internal counters for the failure
// paths the relay protocol keeps invisible to clients. Dropped events
// and failed sends produce no user-facing signal, so the counters are
// the only place those outcomes surface.
package observability

import "sync/atomic"

// Counters aggregates hub metrics. All fields are updated atomically
// and safe for concurrent use.
type Counters struct {
	SendFailures      uint64
	FramesRejected    uint64
	EventsDropped     uint64
	SessionsRejected  uint64
	MessagesRelayed   uint64
	ConnectionsOpened uint64
	ConnectionsClosed uint64
}

func NewCounters() *Counters {
	return &Counters{}
}

func (c *Counters) IncrSendFailures() {
	atomic.AddUint64(&c.SendFailures, 1)
}

func (c *Counters) IncrFramesRejected() {
	atomic.AddUint64(&c.FramesRejected, 1)
}

func (c *Counters) IncrEventsDropped() {
	atomic.AddUint64(&c.EventsDropped, 1)
}

func (c *Counters) IncrSessionsRejected() {
	atomic.AddUint64(&c.SessionsRejected, 1)
}

func (c *Counters) IncrMessagesRelayed() {
	atomic.AddUint64(&c.MessagesRelayed, 1)
}

func (c *Counters) IncrConnectionsOpened() {
	atomic.AddUint64(&c.ConnectionsOpened, 1)
}

func (c *Counters) IncrConnectionsClosed() {
	atomic.AddUint64(&c.ConnectionsClosed, 1)
}

// Snapshot returns the current counter values, keyed for the debug
// endpoint and test assertions.
func (c *Counters) Snapshot() map[string]uint64 {
	return map[string]uint64{
		"send_failures":      atomic.LoadUint64(&c.SendFailures),
		"frames_rejected":    atomic.LoadUint64(&c.FramesRejected),
		"events_dropped":     atomic.LoadUint64(&c.EventsDropped),
		"sessions_rejected":  atomic.LoadUint64(&c.SessionsRejected),
		"messages_relayed":   atomic.LoadUint64(&c.MessagesRelayed),
		"connections_opened": atomic.LoadUint64(&c.ConnectionsOpened),
		"connections_closed": atomic.LoadUint64(&c.ConnectionsClosed),
	}
}
