// Package projection rebuilds ordered dialog timelines from stored
// message records. Handles ordering and deduplication; it never talks
// to the store itself, callers feed it whatever they scanned.
package projection

import (
	"sort"

	"github.com/google/uuid"

	"chat-relay/domain"
)

// Timeline accumulates the messages of one dialog.
type Timeline struct {
	DialogID uuid.UUID
	messages []domain.Message
	seen     map[uuid.UUID]struct{}
}

func NewTimeline(dialogID uuid.UUID) *Timeline {
	return &Timeline{
		DialogID: dialogID,
		seen:     make(map[uuid.UUID]struct{}),
	}
}

// Consume adds a message to the timeline. Messages from other dialogs
// and duplicates are ignored.
func (t *Timeline) Consume(msg domain.Message) {
	if msg.DialogID != t.DialogID {
		return
	}
	if _, dup := t.seen[msg.ID]; dup {
		return
	}
	t.seen[msg.ID] = struct{}{}
	t.messages = append(t.messages, msg)
}

// Messages returns the consumed messages in chronological order.
func (t *Timeline) Messages() []domain.Message {
	out := make([]domain.Message, len(t.messages))
	copy(out, t.messages)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
