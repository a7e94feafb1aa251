package workers

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/mocks"
	"chat-relay/observability"
	"chat-relay/runtime"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func key(owner, counterpart string) domain.AddressKey {
	return domain.AddressKey{Owner: domain.Identity(owner), Counterpart: domain.Identity(counterpart)}
}

func TestNewMessageWorker_Relays_To_Both_Directions(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := runtime.NewRegistry()
	identity := mocks.NewMockIIdentityGateway(ctrl)
	store := mocks.NewMockIStoreGateway(ctrl)
	counters := observability.NewCounters()
	delivery := runtime.NewDelivery(log, counters)

	// Given both directions of the pair are connected
	aliceConn := mocks.NewMockConn(ctrl)
	bobConn := mocks.NewMockConn(ctrl)
	registry.Register(key("alice", "bob"), aliceConn)
	registry.Register(key("bob", "alice"), bobConn)

	// And a dialog exists between them
	dialog := domain.Dialog{ID: uuid.New(), A: "alice", B: "bob"}
	created := time.Date(2026, time.August, 30, 15, 4, 0, 0, time.UTC)
	identity.EXPECT().ResolveSession(gomock.Any(), "alice_session").Return(domain.Identity("alice"), true)
	identity.EXPECT().LookupUserByUsername(gomock.Any(), "bob").Return(domain.Identity("bob"), nil)
	store.EXPECT().FindDialog(gomock.Any(), domain.Identity("alice"), domain.Identity("bob")).
		Return([]domain.Dialog{dialog}, nil)
	store.EXPECT().AppendMessage(gomock.Any(), dialog, domain.Identity("alice"), "hi").
		Return(domain.Message{ID: uuid.New(), DialogID: dialog.ID, Sender: "alice", Text: "hi", CreatedAt: created}, nil)

	var alicePayload, bobPayload []byte
	aliceConn.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, data []byte) error {
			alicePayload = data
			return nil
		})
	bobConn.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, data []byte) error {
			bobPayload = data
			return nil
		})

	// When alice sends "hi" to bob
	worker := NewNewMessageWorker(log, nil, registry, identity, store, delivery, counters)
	worker.Handle(context.Background(), event.NewMessage{SessionKey: "alice_session", Username: "bob", Message: "hi"})

	// Then both sockets received the enriched packet
	for _, payload := range [][]byte{alicePayload, bobPayload} {
		var packet event.MessagePacket
		req.NoError(json.Unmarshal(payload, &packet))
		req.Equal("new-message", packet.Type)
		req.Equal("alice", packet.SenderName)
		req.Equal("hi", packet.Message)
		req.Equal("Aug. 30, 2026, 3:04 p.m.", packet.Created)
	}
	req.Equal(uint64(1), counters.Snapshot()["messages_relayed"])
}

func TestNewMessageWorker_No_Dialog_Drops_Silently(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := runtime.NewRegistry()
	identity := mocks.NewMockIIdentityGateway(ctrl)
	store := mocks.NewMockIStoreGateway(ctrl)
	counters := observability.NewCounters()
	delivery := runtime.NewDelivery(log, counters)

	// Given both sockets are live but no dialog exists
	aliceConn := mocks.NewMockConn(ctrl)
	bobConn := mocks.NewMockConn(ctrl)
	registry.Register(key("alice", "bob"), aliceConn)
	registry.Register(key("bob", "alice"), bobConn)

	identity.EXPECT().ResolveSession(gomock.Any(), "alice_session").Return(domain.Identity("alice"), true)
	identity.EXPECT().LookupUserByUsername(gomock.Any(), "bob").Return(domain.Identity("bob"), nil)
	store.EXPECT().FindDialog(gomock.Any(), domain.Identity("alice"), domain.Identity("bob")).
		Return(nil, nil)
	// No AppendMessage and no Send expectations: persisting or
	// delivering anything fails the test.

	worker := NewNewMessageWorker(log, nil, registry, identity, store, delivery, counters)
	worker.Handle(context.Background(), event.NewMessage{SessionKey: "alice_session", Username: "bob", Message: "hi"})

	req.Equal(uint64(1), counters.Snapshot()["events_dropped"])
	req.Zero(counters.Snapshot()["messages_relayed"])
}

func TestNewMessageWorker_Missing_Fields_Drop(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	counters := observability.NewCounters()
	worker := NewNewMessageWorker(log, nil, runtime.NewRegistry(),
		mocks.NewMockIIdentityGateway(ctrl), mocks.NewMockIStoreGateway(ctrl),
		runtime.NewDelivery(log, counters), counters)

	worker.Handle(context.Background(), event.NewMessage{SessionKey: "s", Username: "bob"})
	worker.Handle(context.Background(), event.NewMessage{SessionKey: "s", Message: "hi"})
	worker.Handle(context.Background(), event.NewMessage{Username: "bob", Message: "hi"})

	req.Equal(uint64(3), counters.Snapshot()["events_dropped"])
}

func TestNewMessageWorker_Unknown_User_Drops(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	identity := mocks.NewMockIIdentityGateway(ctrl)
	counters := observability.NewCounters()

	identity.EXPECT().ResolveSession(gomock.Any(), "alice_session").Return(domain.Identity("alice"), true)
	identity.EXPECT().LookupUserByUsername(gomock.Any(), "ghost").Return(domain.Identity(""), errors.ErrUnknownUser)

	worker := NewNewMessageWorker(log, nil, runtime.NewRegistry(), identity,
		mocks.NewMockIStoreGateway(ctrl), runtime.NewDelivery(log, counters), counters)
	worker.Handle(context.Background(), event.NewMessage{SessionKey: "alice_session", Username: "ghost", Message: "hi"})

	req.Equal(uint64(1), counters.Snapshot()["events_dropped"])
}

func TestFormatCreated_Morning_And_Afternoon(t *testing.T) {
	req := require.New(t)
	req.Equal("Jan. 2, 2026, 9:05 a.m.",
		FormatCreated(time.Date(2026, time.January, 2, 9, 5, 0, 0, time.UTC)))
	req.Equal("Dec. 24, 2026, 11:59 p.m.",
		FormatCreated(time.Date(2026, time.December, 24, 23, 59, 0, 0, time.UTC)))
}
