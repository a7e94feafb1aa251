package workers

import (
	"chat-relay/contract"
	"chat-relay/domain/event"
	"chat-relay/runtime"
	"context"
	"log/slog"
	"sort"

	"github.com/samber/lo"
)

// UsersChangedWorker broadcasts the full roster of live connections,
// sorted by username, to every registered connection.
type UsersChangedWorker struct {
	log      *slog.Logger
	queue    <-chan event.UsersChanged
	registry contract.IRegistry
	delivery *runtime.Delivery
}

func NewUsersChangedWorker(
	log *slog.Logger,
	queue <-chan event.UsersChanged,
	registry contract.IRegistry,
	delivery *runtime.Delivery,
) *UsersChangedWorker {
	return &UsersChangedWorker{log: log, queue: queue, registry: registry, delivery: delivery}
}

func (w *UsersChangedWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case <-w.queue:
			w.Handle(ctx)
		}
	}
}

func (w *UsersChangedWorker) Handle(ctx context.Context) {
	entries := w.registry.Snapshot()

	roster := lo.Map(entries, func(e contract.RegistryEntry, _ int) event.RosterEntry {
		return event.RosterEntry{
			Username: string(e.Key.Owner),
			UUID:     e.Conn.ID().String(),
		}
	})
	sort.Slice(roster, func(i, j int) bool {
		return roster[i].Username < roster[j].Username
	})

	packet := event.RosterPacket{Type: string(event.KindUsersChanged), Value: roster}
	w.delivery.SendMany(ctx, lo.Map(entries, func(e contract.RegistryEntry, _ int) contract.Conn {
		return e.Conn
	}), packet)
}
