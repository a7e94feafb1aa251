package workers

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/observability"
	"chat-relay/runtime"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
)

// NewMessageWorker persists each inbound chat message and relays the
// enriched packet to both directions of the pair. Every failure path
// drops the event without user-visible feedback; the protocol has no
// error acknowledgment channel, so the drop counters are the only
// trace.
type NewMessageWorker struct {
	log      *slog.Logger
	queue    <-chan event.NewMessage
	registry contract.IRegistry
	identity contract.IIdentityGateway
	store    contract.IStoreGateway
	delivery *runtime.Delivery
	counters *observability.Counters
	validate *validator.Validate
}

func NewNewMessageWorker(
	log *slog.Logger,
	queue <-chan event.NewMessage,
	registry contract.IRegistry,
	identity contract.IIdentityGateway,
	store contract.IStoreGateway,
	delivery *runtime.Delivery,
	counters *observability.Counters,
) *NewMessageWorker {
	return &NewMessageWorker{
		log:      log,
		queue:    queue,
		registry: registry,
		identity: identity,
		store:    store,
		delivery: delivery,
		counters: counters,
		validate: validator.New(),
	}
}

func (w *NewMessageWorker) Run(ctx context.Context) error {
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

func (w *NewMessageWorker) Handle(ctx context.Context, evt event.NewMessage) {
	if err := w.validate.Struct(evt); err != nil {
		w.counters.IncrEventsDropped()
		return
	}
	owner, ok := w.identity.ResolveSession(ctx, evt.SessionKey)
	if !ok {
		w.counters.IncrEventsDropped()
		w.log.Debug("new-message with unresolvable session")
		return
	}
	counterpart, err := w.identity.LookupUserByUsername(ctx, evt.Username)
	if err != nil {
		w.counters.IncrEventsDropped()
		w.log.Debug("new-message for unknown user", "username", evt.Username)
		return
	}

	dialogs, err := w.store.FindDialog(ctx, owner, counterpart)
	if err != nil {
		w.counters.IncrEventsDropped()
		w.log.Warn("dialog lookup failed", "error", err)
		return
	}
	if len(dialogs) == 0 {
		// No dialog auto-creation on this path: senders without an
		// established dialog are silently ignored.
		w.counters.IncrEventsDropped()
		w.log.Debug("no dialog found", "owner", owner, "counterpart", counterpart)
		return
	}

	msg, err := w.store.AppendMessage(ctx, dialogs[0], owner, evt.Message)
	if err != nil {
		// The event is lost; persistence failure is not masked as
		// success, but the sender gets no feedback either.
		w.counters.IncrEventsDropped()
		w.log.Warn("could not persist message", "error", err)
		return
	}
	w.counters.IncrMessagesRelayed()

	packet := event.MessagePacket{
		Type:       string(event.KindNewMessage),
		SenderName: string(msg.Sender),
		Username:   evt.Username,
		Message:    evt.Message,
		Created:    FormatCreated(msg.CreatedAt),
	}

	// Both directions of the pair, each independently present or
	// absent. Zero live targets still counts as a relayed message.
	var targets []contract.Conn
	if conn, found := w.registry.Lookup(domain.AddressKey{Owner: owner, Counterpart: counterpart}); found {
		targets = append(targets, conn)
	}
	if conn, found := w.registry.Lookup(domain.AddressKey{Owner: counterpart, Counterpart: owner}); found {
		targets = append(targets, conn)
	}
	w.delivery.SendMany(ctx, targets, packet)
}

// FormatCreated renders a message timestamp the way the chat clients
// display it, e.g. "Jan. 2, 2026, 3:04 p.m.".
func FormatCreated(t time.Time) string {
	suffix := "a.m."
	if t.Hour() >= 12 {
		suffix = "p.m."
	}
	return fmt.Sprintf("%s %s", t.Format("Jan. 2, 2006, 3:04"), suffix)
}
