package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"

	"chat-relay/observability"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	"chat-relay/ws"
)

// BaseRelaySuite boots a complete in-process relay: in-memory store,
// identity service, the four stream workers under supervision, and the
// HTTP/websocket surface on an ephemeral port.
type BaseRelaySuite struct {
	suite.Suite
	Config   Config
	Dialogs  repositories.IDialogRepository
	Counters *observability.Counters

	db      *badger.DB
	ts      *httptest.Server
	cancel  context.CancelFunc
	supDone chan struct{}
}

func (s *BaseRelaySuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	s.db, err = badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	s.Require().NoError(err)

	s.Counters = observability.NewCounters()
	registry := runtime.NewRegistry()
	queues := runtime.NewQueues(s.Config.QueueSize)
	delivery := runtime.NewDelivery(log, s.Counters)
	router := runtime.NewRouter(log, queues, s.Counters)

	identity := services.NewIdentityService(log, repositories.NewUserRepository(s.db), s.Config.SessionDuration)
	dialogs := repositories.NewDialogRepository(s.db, log)
	s.Dialogs = dialogs

	sup := workers.NewSupervisor(log, 100*time.Millisecond)
	sup.Add(
		workers.NewGoneOnlineWorker(log, queues.GoneOnline, registry, identity, delivery, s.Counters),
		workers.NewGoneOfflineWorker(log, queues.GoneOffline, registry, delivery),
		workers.NewNewMessageWorker(log, queues.NewMessage, registry, identity, dialogs, delivery, s.Counters),
		workers.NewUsersChangedWorker(log, queues.UsersChanged, registry, delivery),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.supDone = make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(s.supDone)
	}()

	server := ws.NewServer(log, registry, identity, router, queues, s.Counters)
	s.ts = httptest.NewServer(server.Routes(identity))
}

func (s *BaseRelaySuite) TearDownSuite() {
	if s.ts != nil {
		s.ts.Close()
	}
	if s.cancel != nil {
		s.cancel()
		select {
		case <-s.supDone:
		case <-time.After(2 * time.Second):
			s.Fail("supervisor did not drain on shutdown")
		}
	}
	if s.db != nil {
		s.Require().NoError(s.db.Close())
	}
}

// Step prints a colorized header so interleaved websocket logs stay
// readable.
func (s *BaseRelaySuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// RegisterUser creates an account over HTTP and returns its session key.
func (s *BaseRelaySuite) RegisterUser(username, password string) string {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	s.Require().NoError(err)

	resp, err := http.Post(s.ts.URL+"/register", "application/json", bytes.NewReader(body))
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var token struct {
		SessionKey string `json:"session_key"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&token))
	s.Require().NotEmpty(token.SessionKey)
	return token.SessionKey
}

// DialSocket opens a websocket toward the given counterpart and
// schedules its cleanup.
func (s *BaseRelaySuite) DialSocket(sessionKey, counterpart string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.ts.URL, "http") + "/ws/" + sessionKey + "/" + counterpart
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { conn.Close() })
	return conn
}

// AwaitPacket reads frames off the socket until one carries the wanted
// type, discarding interleaved presence traffic along the way.
func (s *BaseRelaySuite) AwaitPacket(conn *websocket.Conn, packetType string) map[string]any {
	deadline := time.Now().Add(s.Config.ReadTimeout)
	s.Require().NoError(conn.SetReadDeadline(deadline))

	for time.Now().Before(deadline) {
		var packet map[string]any
		if err := conn.ReadJSON(&packet); err != nil {
			s.Require().FailNowf("socket read failed", "waiting for %q: %v", packetType, err)
		}
		if s.Config.DebugJSON {
			dump, _ := json.Marshal(packet)
			s.T().Logf("RECV %s", dump)
		}
		if packet["type"] == packetType {
			return packet
		}
	}
	s.Require().FailNowf("timed out", "no %q packet arrived", packetType)
	return nil
}

// StatsValue polls the debug endpoint for a single counter.
func (s *BaseRelaySuite) StatsValue(name string) uint64 {
	resp, err := http.Get(s.ts.URL + "/stats")
	s.Require().NoError(err)
	defer resp.Body.Close()

	var stats map[string]uint64
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&stats))
	return stats[name]
}
