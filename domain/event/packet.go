package event

// PresencePacket tells its recipients that the listed users are
// online. The usernames list is shared by every recipient of one
// fanout; it is not customized per socket.
type PresencePacket struct {
	Type      string   `json:"type"`
	Usernames []string `json:"usernames"`
}

// MessagePacket is the enriched relay of a persisted chat message.
type MessagePacket struct {
	Type       string `json:"type"`
	SenderName string `json:"sender_name"`
	Username   string `json:"username"`
	Message    string `json:"message"`
	Created    string `json:"created"`
}

// RosterEntry is one live connection in a users-changed broadcast.
type RosterEntry struct {
	Username string `json:"username"`
	UUID     string `json:"uuid"`
}

// RosterPacket lists every live connection, sorted by username.
type RosterPacket struct {
	Type  string        `json:"type"`
	Value []RosterEntry `json:"value"`
}

// OfflinePacket is the empty re-sync signal broadcast when a user
// goes offline. It serializes to an empty JSON object.
type OfflinePacket struct{}
