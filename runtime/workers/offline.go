package workers

import (
	"chat-relay/contract"
	"chat-relay/domain/event"
	"chat-relay/runtime"
	"context"
	"log/slog"
)

// GoneOfflineWorker broadcasts an empty packet to every registered
// connection whenever someone disconnects. The payload carries no
// detail on purpose: it is a coarse "something changed, re-sync"
// signal, not a targeted notification.
type GoneOfflineWorker struct {
	log      *slog.Logger
	queue    <-chan event.GoneOffline
	registry contract.IRegistry
	delivery *runtime.Delivery
}

func NewGoneOfflineWorker(
	log *slog.Logger,
	queue <-chan event.GoneOffline,
	registry contract.IRegistry,
	delivery *runtime.Delivery,
) *GoneOfflineWorker {
	return &GoneOfflineWorker{log: log, queue: queue, registry: registry, delivery: delivery}
}

func (w *GoneOfflineWorker) Run(ctx context.Context) error {
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

func (w *GoneOfflineWorker) Handle(ctx context.Context) {
	w.delivery.SendMany(ctx, w.registry.All(), event.OfflinePacket{})
}
