package workers

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/observability"
	"chat-relay/runtime"
	"context"
	"log/slog"

	"github.com/samber/lo"
)

// GoneOnlineWorker distributes a user's online status to everyone
// currently chatting with them. It is a process-lifetime daemon; it
// pulls from its queue, computes a target set from the registry, and
// fans the presence packet out.
type GoneOnlineWorker struct {
	log      *slog.Logger
	queue    <-chan event.GoneOnline
	registry contract.IRegistry
	identity contract.IIdentityGateway
	delivery *runtime.Delivery
	counters *observability.Counters
}

func NewGoneOnlineWorker(
	log *slog.Logger,
	queue <-chan event.GoneOnline,
	registry contract.IRegistry,
	identity contract.IIdentityGateway,
	delivery *runtime.Delivery,
	counters *observability.Counters,
) *GoneOnlineWorker {
	return &GoneOnlineWorker{
		log:      log,
		queue:    queue,
		registry: registry,
		identity: identity,
		delivery: delivery,
		counters: counters,
	}
}

func (w *GoneOnlineWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case evt := <-w.queue:
			w.Handle(ctx, evt)
		}
	}
}

// Handle resolves the newly-online owner and notifies two audiences in
// one merged fanout: every peer already chatting with the owner hears
// the owner's username, and the actively-targeted counterpart (if its
// socket is live) additionally hears which of those peers are online.
// All recipients receive the same merged usernames list.
func (w *GoneOnlineWorker) Handle(ctx context.Context, evt event.GoneOnline) {
	if evt.SessionKey == "" {
		w.counters.IncrEventsDropped()
		return
	}
	owner, ok := w.identity.ResolveSession(ctx, evt.SessionKey)
	if !ok {
		w.counters.IncrEventsDropped()
		w.log.Debug("gone-online with unresolvable session")
		return
	}
	w.log.Debug("User gone online", "username", owner)

	peers := w.registry.ByCounterpart(owner)
	sockets := lo.Map(peers, func(e contract.RegistryEntry, _ int) contract.Conn {
		return e.Conn
	})
	usernames := []string{string(owner)}

	if evt.Username != "" {
		key := domain.AddressKey{Owner: owner, Counterpart: domain.Identity(evt.Username)}
		if conn, found := w.registry.Lookup(key); found {
			sockets = append(sockets, conn)
			usernames = append(usernames, lo.Map(peers, func(e contract.RegistryEntry, _ int) string {
				return string(e.Key.Owner)
			})...)
		}
		// A missing (owner, counterpart) socket just skips the
		// counterpart-targeted part; it is not an error.
	}

	w.delivery.SendMany(ctx, sockets, event.PresencePacket{
		Type:      string(event.KindGoneOnline),
		Usernames: usernames,
	})
}
