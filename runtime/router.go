package runtime

import (
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/observability"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// frame is the inbound wire shape. Kind is the explicit discriminator;
// frames predating it are recognized by which fields they populate.
type frame struct {
	Kind       string `json:"kind"`
	SessionKey string `json:"session_key"`
	Username   string `json:"username"`
	Message    string `json:"message"`
}

// Router decodes raw frames into typed events and pushes each onto
// the queue owned by the matching stream worker. No business logic
// lives here; routing is a pure kind-to-queue mapping.
type Router struct {
	log      *slog.Logger
	queues   *Queues
	counters *observability.Counters
}

func NewRouter(log *slog.Logger, queues *Queues, counters *observability.Counters) *Router {
	return &Router{log: log, queues: queues, counters: counters}
}

// Route parses raw and dispatches the event to exactly one queue.
// Unparseable frames and unrecognized kinds return an error wrapping
// ErrMalformedFrame; the caller logs and discards, and the connection
// stays open.
func (r *Router) Route(ctx context.Context, raw []byte) error {
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		r.counters.IncrFramesRejected()
		return fmt.Errorf("%w: %v", errors.ErrMalformedFrame, err)
	}

	switch kind := f.kind(); kind {
	case event.KindGoneOnline:
		return push(ctx, r.queues.GoneOnline, event.GoneOnline{SessionKey: f.SessionKey, Username: f.Username})
	case event.KindGoneOffline:
		return push(ctx, r.queues.GoneOffline, event.GoneOffline{})
	case event.KindNewMessage:
		return push(ctx, r.queues.NewMessage, event.NewMessage{SessionKey: f.SessionKey, Username: f.Username, Message: f.Message})
	case event.KindUsersChanged:
		return push(ctx, r.queues.UsersChanged, event.UsersChanged{})
	default:
		r.counters.IncrFramesRejected()
		return fmt.Errorf("%w: unrecognized kind %q", errors.ErrMalformedFrame, kind)
	}
}

// kind resolves the event kind. Legacy clients omit the discriminator
// and are identified by shape: a populated message field means
// new-message, a session key alone means gone-online. The two
// parameterless kinds cannot be told apart without a tag and require
// one.
func (f frame) kind() event.Kind {
	if f.Kind != "" {
		return event.Kind(f.Kind)
	}
	if f.Message != "" {
		return event.KindNewMessage
	}
	if f.SessionKey != "" {
		return event.KindGoneOnline
	}
	return ""
}

func push[T any](ctx context.Context, queue chan<- T, evt T) error {
	select {
	case queue <- evt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
