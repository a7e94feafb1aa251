package runtime

import (
	"chat-relay/contract"
	"chat-relay/observability"
	"context"
	"encoding/json"
	"log/slog"
)

// Delivery serializes payloads and pushes them to connections,
// best effort. A stale registry entry (disconnected but not yet
// deregistered) must never prevent delivery to live peers, so send
// failures are logged at debug level and swallowed per recipient.
type Delivery struct {
	log      *slog.Logger
	counters *observability.Counters
}

func NewDelivery(log *slog.Logger, counters *observability.Counters) *Delivery {
	return &Delivery{log: log, counters: counters}
}

// SendOne serializes payload and attempts a single send. It never
// returns an error to the caller.
func (d *Delivery) SendOne(ctx context.Context, conn contract.Conn, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		d.counters.IncrSendFailures()
		d.log.Debug("could not serialize payload", "error", err)
		return
	}
	d.send(ctx, conn, data)
}

// SendMany serializes payload once and delivers it to each connection
// independently. One recipient failing never aborts the batch.
func (d *Delivery) SendMany(ctx context.Context, conns []contract.Conn, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		d.counters.IncrSendFailures()
		d.log.Debug("could not serialize payload", "error", err)
		return
	}
	for _, conn := range conns {
		d.send(ctx, conn, data)
	}
}

func (d *Delivery) send(ctx context.Context, conn contract.Conn, data []byte) {
	if conn == nil {
		return
	}
	if err := conn.Send(ctx, data); err != nil {
		d.counters.IncrSendFailures()
		d.log.Debug("could not send", "conn", conn.ID(), "error", err)
	}
}
