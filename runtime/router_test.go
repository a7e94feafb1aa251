package runtime

import (
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/observability"
	"context"
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newTestRouter() (*Router, *Queues, *observability.Counters) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	queues := NewQueues(4)
	counters := observability.NewCounters()
	return NewRouter(log, queues, counters), queues, counters
}

func TestRouter_Routes_Tagged_NewMessage(t *testing.T) {
	req := require.New(t)
	router, queues, _ := newTestRouter()

	raw := []byte(`{"kind":"new-message","session_key":"s1","username":"bob","message":"hi"}`)
	req.NoError(router.Route(context.Background(), raw))

	evt := <-queues.NewMessage
	req.Equal(event.NewMessage{SessionKey: "s1", Username: "bob", Message: "hi"}, evt)
}

func TestRouter_Routes_Tagged_GoneOnline(t *testing.T) {
	req := require.New(t)
	router, queues, _ := newTestRouter()

	raw := []byte(`{"kind":"gone-online","session_key":"s1","username":"alice"}`)
	req.NoError(router.Route(context.Background(), raw))

	evt := <-queues.GoneOnline
	req.Equal(event.GoneOnline{SessionKey: "s1", Username: "alice"}, evt)
}

func TestRouter_Routes_Parameterless_Kinds(t *testing.T) {
	req := require.New(t)
	router, queues, _ := newTestRouter()

	req.NoError(router.Route(context.Background(), []byte(`{"kind":"gone-offline"}`)))
	req.NoError(router.Route(context.Background(), []byte(`{"kind":"users-changed"}`)))

	<-queues.GoneOffline
	<-queues.UsersChanged
}

func TestRouter_Legacy_Frames_Identified_By_Shape(t *testing.T) {
	req := require.New(t)
	router, queues, _ := newTestRouter()

	// A populated message field means new-message even without a tag
	req.NoError(router.Route(context.Background(), []byte(`{"session_key":"s1","username":"bob","message":"hi"}`)))
	req.Equal("hi", (<-queues.NewMessage).Message)

	// A bare session key means gone-online
	req.NoError(router.Route(context.Background(), []byte(`{"session_key":"s1","username":"bob"}`)))
	req.Equal("s1", (<-queues.GoneOnline).SessionKey)
}

func TestRouter_Rejects_Malformed_Frames(t *testing.T) {
	req := require.New(t)
	router, _, counters := newTestRouter()

	err := router.Route(context.Background(), []byte(`not json at all`))
	req.ErrorIs(err, errors.ErrMalformedFrame)

	err = router.Route(context.Background(), []byte(`{"kind":"teleport"}`))
	req.ErrorIs(err, errors.ErrMalformedFrame)

	err = router.Route(context.Background(), []byte(`{}`))
	req.ErrorIs(err, errors.ErrMalformedFrame)

	req.Equal(uint64(3), counters.Snapshot()["frames_rejected"])
}
