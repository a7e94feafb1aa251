package domain

import (
	"time"

	"github.com/google/uuid"
)

// Dialog is a persisted conversation record between two users.
// The pair is unordered: FindDialog(a, b) and FindDialog(b, a)
// resolve to the same record.
type Dialog struct {
	ID        uuid.UUID
	A         Identity
	B         Identity
	CreatedAt time.Time
}

// Message represents an immutable chat event appended to a dialog.
type Message struct {
	ID        uuid.UUID
	DialogID  uuid.UUID
	Sender    Identity
	Text      string
	CreatedAt time.Time
}
