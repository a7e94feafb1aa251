// Package event defines the closed set of inbound events decoded by
// the router and the outbound packets produced by the stream workers.
package event

// Kind discriminates inbound frames on the wire.
type Kind string

const (
	KindGoneOnline   Kind = "gone-online"
	KindGoneOffline  Kind = "gone-offline"
	KindNewMessage   Kind = "new-message"
	KindUsersChanged Kind = "users-changed"
)

// GoneOnline announces that the user behind SessionKey is reachable.
// Username optionally names the counterpart the user is actively
// chatting with; when set, that counterpart's socket also receives the
// list of peers already online.
type GoneOnline struct {
	SessionKey string
	Username   string
}

// GoneOffline triggers a coarse re-sync broadcast. The payload carries
// nothing; every registered connection receives an empty packet.
type GoneOffline struct{}

// NewMessage carries a chat message to persist and relay. All three
// fields are required; events missing any of them are dropped.
type NewMessage struct {
	SessionKey string `validate:"required"`
	Username   string `validate:"required"`
	Message    string `validate:"required"`
}

// UsersChanged triggers a roster broadcast to every registered
// connection.
type UsersChanged struct{}
