package workers

import (
	"chat-relay/domain/event"
	"chat-relay/mocks"
	"chat-relay/observability"
	"chat-relay/runtime"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestUsersChangedWorker_Broadcasts_Sorted_Roster(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := runtime.NewRegistry()
	counters := observability.NewCounters()
	delivery := runtime.NewDelivery(log, counters)

	// Given three connections registered out of alphabetical order
	ids := map[string]uuid.UUID{
		"zed":  uuid.New(),
		"amy":  uuid.New(),
		"mike": uuid.New(),
	}
	payloads := make([][]byte, 0, 3)
	for _, owner := range []string{"zed", "amy", "mike"} {
		conn := mocks.NewMockConn(ctrl)
		conn.EXPECT().ID().Return(ids[owner]).AnyTimes()
		conn.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, data []byte) error {
				payloads = append(payloads, data)
				return nil
			})
		registry.Register(key(owner, "peer"), conn)
	}

	// When the roster is rebroadcast
	worker := NewUsersChangedWorker(log, nil, registry, delivery)
	worker.Handle(context.Background())

	// Then every connection got the same alphabetically sorted roster
	req.Len(payloads, 3)
	for _, payload := range payloads {
		var packet event.RosterPacket
		req.NoError(json.Unmarshal(payload, &packet))
		req.Equal("users-changed", packet.Type)

		usernames := lo.Map(packet.Value, func(e event.RosterEntry, _ int) string {
			return e.Username
		})
		req.Equal([]string{"amy", "mike", "zed"}, usernames)
		for _, entry := range packet.Value {
			req.Equal(ids[entry.Username].String(), entry.UUID)
		}
	}
}

func TestUsersChangedWorker_Empty_Registry_Sends_Nothing(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	counters := observability.NewCounters()

	worker := NewUsersChangedWorker(log, nil, runtime.NewRegistry(), runtime.NewDelivery(log, counters))
	worker.Handle(context.Background())
}
