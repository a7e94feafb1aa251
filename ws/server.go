package ws

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/observability"
	"chat-relay/runtime"
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// Server owns the connection lifecycle: it resolves the session from
// the path, registers the connection under its (owner, counterpart)
// key, pumps inbound frames into the router, and deregisters in a
// guaranteed cleanup that also announces the disconnect.
type Server struct {
	log      *slog.Logger
	registry contract.IRegistry
	identity contract.IIdentityGateway
	router   *runtime.Router
	queues   *runtime.Queues
	counters *observability.Counters
	upgrader websocket.Upgrader
}

func NewServer(
	log *slog.Logger,
	registry contract.IRegistry,
	identity contract.IIdentityGateway,
	router *runtime.Router,
	queues *runtime.Queues,
	counters *observability.Counters,
) *Server {
	return &Server{
		log:      log,
		registry: registry,
		identity: identity,
		router:   router,
		queues:   queues,
		counters: counters,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// HandleSocket serves GET /ws/{session_key}/{username}. An
// unresolvable session is a normal rejection path: log, count, 401,
// no upgrade.
func (s *Server) HandleSocket(w http.ResponseWriter, r *http.Request) {
	sessionKey := chi.URLParam(r, "session_key")
	counterpart := chi.URLParam(r, "username")

	owner, ok := s.identity.ResolveSession(r.Context(), sessionKey)
	if !ok {
		s.counters.IncrSessionsRejected()
		s.log.Info("Got invalid session_key attempt to connect")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	socket, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Info("websocket upgrade failed", "error", err)
		return
	}

	key := domain.AddressKey{Owner: owner, Counterpart: domain.Identity(counterpart)}
	conn := newConn(key, socket)

	// Re-registering the same key displaces the previous connection;
	// closing the orphan keeps it from lingering half-open.
	if prev := s.registry.Register(key, conn); prev != nil {
		s.log.Debug("replacing live connection", "key", key)
		_ = prev.Close()
	}
	s.counters.IncrConnectionsOpened()
	s.log.Debug("connection registered", "owner", owner, "counterpart", counterpart)

	s.announceOnline(sessionKey, counterpart)

	// Guaranteed cleanup on every exit path: deregister, close, and
	// announce the disconnect so counterparts are not left with a
	// stale presence view.
	defer func() {
		// Only deregister our own connection: if a reconnect displaced
		// this one, the key now belongs to the replacement.
		if cur, found := s.registry.Lookup(key); found && cur.ID() == conn.ID() {
			s.registry.Deregister(key)
		}
		_ = conn.Close()
		s.counters.IncrConnectionsClosed()
		s.announceOffline()
		s.log.Debug("connection deregistered", "owner", owner, "counterpart", counterpart)
	}()

	s.pump(r.Context(), conn)
}

// pump reads frames until the connection closes or errors. A frame the
// router rejects is logged and discarded; the connection stays open
// for the next one.
func (s *Server) pump(ctx context.Context, conn *Conn) {
	for conn.IsOpen() {
		_, data, err := conn.socket.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("read loop ended", "error", err)
			}
			return
		}
		if len(data) == 0 {
			continue
		}
		if err := s.router.Route(ctx, data); err != nil {
			s.log.Error("could not route msg", "error", err)
		}
	}
}

// announceOnline queues presence events on behalf of the connecting
// owner so presence does not depend on client cooperation.
func (s *Server) announceOnline(sessionKey, counterpart string) {
	enqueue(s, s.queues.GoneOnline, event.GoneOnline{SessionKey: sessionKey, Username: counterpart})
	enqueue(s, s.queues.UsersChanged, event.UsersChanged{})
}

// announceOffline runs inside the guaranteed cleanup, so it must not
// block: a full queue during shutdown drops the announcement and
// counts it.
func (s *Server) announceOffline() {
	enqueue(s, s.queues.GoneOffline, event.GoneOffline{})
	enqueue(s, s.queues.UsersChanged, event.UsersChanged{})
}

func enqueue[T any](s *Server, queue chan<- T, evt T) {
	select {
	case queue <- evt:
	default:
		s.counters.IncrEventsDropped()
		s.log.Debug("presence announcement dropped, queue full")
	}
}
