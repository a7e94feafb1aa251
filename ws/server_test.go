package ws

import (
	"bytes"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/mocks"
	"chat-relay/observability"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/services"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type socketFixture struct {
	server   *Server
	registry *runtime.Registry
	queues   *runtime.Queues
	counters *observability.Counters
	identity *mocks.MockIIdentityGateway
	ts       *httptest.Server
}

func newSocketFixture(t *testing.T) *socketFixture {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := runtime.NewRegistry()
	queues := runtime.NewQueues(8)
	counters := observability.NewCounters()
	identity := mocks.NewMockIIdentityGateway(ctrl)
	router := runtime.NewRouter(log, queues, counters)

	server := NewServer(log, registry, identity, router, queues, counters)

	r := chi.NewRouter()
	r.Get("/ws/{session_key}/{username}", server.HandleSocket)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	return &socketFixture{
		server:   server,
		registry: registry,
		queues:   queues,
		counters: counters,
		identity: identity,
		ts:       ts,
	}
}

func (f *socketFixture) wsURL(sessionKey, username string) string {
	return "ws" + strings.TrimPrefix(f.ts.URL, "http") + "/ws/" + sessionKey + "/" + username
}

func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		panic("unreachable")
	}
}

func TestHandleSocket_Rejects_Invalid_Session(t *testing.T) {
	req := require.New(t)
	f := newSocketFixture(t)

	f.identity.EXPECT().ResolveSession(gomock.Any(), "forged").Return(domain.Identity(""), false)

	_, resp, err := websocket.DefaultDialer.Dial(f.wsURL("forged", "bob"), nil)
	req.Error(err)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
	req.Equal(uint64(1), f.counters.Snapshot()["sessions_rejected"])
}

func TestHandleSocket_Lifecycle(t *testing.T) {
	req := require.New(t)
	f := newSocketFixture(t)

	f.identity.EXPECT().ResolveSession(gomock.Any(), "alice_session").
		Return(domain.Identity("alice"), true).AnyTimes()

	// When alice opens a socket toward bob
	client, _, err := websocket.DefaultDialer.Dial(f.wsURL("alice_session", "bob"), nil)
	req.NoError(err)

	// Then the connection is registered under (alice, bob)
	key := domain.AddressKey{Owner: "alice", Counterpart: "bob"}
	req.Eventually(func() bool {
		_, found := f.registry.Lookup(key)
		return found
	}, time.Second, 10*time.Millisecond)

	// And presence was announced without client cooperation
	online := waitFor(t, f.queues.GoneOnline)
	req.Equal(event.GoneOnline{SessionKey: "alice_session", Username: "bob"}, online)
	waitFor(t, f.queues.UsersChanged)

	// When the client sends a chat frame
	err = client.WriteJSON(map[string]string{
		"kind":        "new-message",
		"session_key": "alice_session",
		"username":    "bob",
		"message":     "hi",
	})
	req.NoError(err)

	// Then it lands on the new-message queue
	msg := waitFor(t, f.queues.NewMessage)
	req.Equal(event.NewMessage{SessionKey: "alice_session", Username: "bob", Message: "hi"}, msg)

	// When the client disconnects
	req.NoError(client.Close())

	// Then the cleanup deregisters and announces the disconnect
	req.Eventually(func() bool {
		_, found := f.registry.Lookup(key)
		return !found
	}, time.Second, 10*time.Millisecond)
	waitFor(t, f.queues.GoneOffline)
	waitFor(t, f.queues.UsersChanged)

	snapshot := f.counters.Snapshot()
	req.Equal(uint64(1), snapshot["connections_opened"])
	req.Equal(uint64(1), snapshot["connections_closed"])
}

func TestHandleSocket_Malformed_Frame_Keeps_Connection(t *testing.T) {
	req := require.New(t)
	f := newSocketFixture(t)

	f.identity.EXPECT().ResolveSession(gomock.Any(), "alice_session").
		Return(domain.Identity("alice"), true).AnyTimes()

	client, _, err := websocket.DefaultDialer.Dial(f.wsURL("alice_session", "bob"), nil)
	req.NoError(err)
	defer client.Close()
	waitFor(t, f.queues.GoneOnline)

	// A garbage frame is discarded, the next valid one still routes
	req.NoError(client.WriteMessage(websocket.TextMessage, []byte("not json")))
	req.NoError(client.WriteJSON(map[string]string{
		"kind":        "gone-online",
		"session_key": "alice_session",
	}))

	evt := waitFor(t, f.queues.GoneOnline)
	req.Equal("alice_session", evt.SessionKey)
	req.Eventually(func() bool {
		return f.counters.Snapshot()["frames_rejected"] == 1
	}, time.Second, 10*time.Millisecond)
}

func TestHandleSocket_Reconnect_Displaces_Previous(t *testing.T) {
	req := require.New(t)
	f := newSocketFixture(t)

	f.identity.EXPECT().ResolveSession(gomock.Any(), "alice_session").
		Return(domain.Identity("alice"), true).AnyTimes()

	first, _, err := websocket.DefaultDialer.Dial(f.wsURL("alice_session", "bob"), nil)
	req.NoError(err)
	defer first.Close()
	waitFor(t, f.queues.GoneOnline)

	// A second connection under the same key displaces the first
	second, _, err := websocket.DefaultDialer.Dial(f.wsURL("alice_session", "bob"), nil)
	req.NoError(err)
	defer second.Close()
	waitFor(t, f.queues.GoneOnline)

	// The displaced socket gets closed by the server
	first.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err = first.ReadMessage()
	req.Error(err)

	req.Eventually(func() bool {
		return f.counters.Snapshot()["connections_opened"] == 2
	}, time.Second, 10*time.Millisecond)
}

func TestRoutes_Account_Endpoints(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	users := mocks.NewMockIUserRepository(ctrl)
	accounts := services.NewIdentityService(log, users, time.Hour)

	registry := runtime.NewRegistry()
	queues := runtime.NewQueues(8)
	counters := observability.NewCounters()
	identity := mocks.NewMockIIdentityGateway(ctrl)
	server := NewServer(log, registry, identity, runtime.NewRouter(log, queues, counters), queues, counters)

	ts := httptest.NewServer(server.Routes(accounts))
	defer ts.Close()

	post := func(path, username, password string) *http.Response {
		body, err := json.Marshal(map[string]string{"username": username, "password": password})
		req.NoError(err)
		resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(body))
		req.NoError(err)
		return resp
	}

	// Registration succeeds and returns a session key
	users.EXPECT().CreateUser("alice", gomock.Any()).Return(nil)
	resp := post("/register", "alice", "Str0ng!Passw0rd")
	req.Equal(http.StatusCreated, resp.StatusCode)
	var token tokenResponse
	req.NoError(json.NewDecoder(resp.Body).Decode(&token))
	req.NotEmpty(token.SessionKey)
	resp.Body.Close()

	// A taken username conflicts
	users.EXPECT().CreateUser("alice", gomock.Any()).Return(errors.ErrUserAlreadyExists)
	resp = post("/register", "alice", "Str0ng!Passw0rd")
	req.Equal(http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// A weak password is a bad request, never stored
	resp = post("/register", "alice", "weakpassword")
	req.Equal(http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Bad credentials on login
	users.EXPECT().GetUser("alice").Return(repositories.UserRecord{}, errors.ErrUnknownUser)
	resp = post("/login", "alice", "Str0ng!Passw0rd")
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// The stats endpoint exposes the counter snapshot
	statsResp, err := http.Get(ts.URL + "/stats")
	req.NoError(err)
	req.Equal(http.StatusOK, statsResp.StatusCode)
	var stats map[string]uint64
	req.NoError(json.NewDecoder(statsResp.Body).Decode(&stats))
	req.Contains(stats, "connections_opened")
	statsResp.Body.Close()
}
