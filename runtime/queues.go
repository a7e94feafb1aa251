package runtime

import "chat-relay/domain/event"

// Queues holds one FIFO channel per event kind, each consumed by a
// single stream worker. Buffering decouples the per-connection read
// pumps from the workers; ordering within one queue is preserved,
// ordering across queues is not guaranteed.
type Queues struct {
	GoneOnline   chan event.GoneOnline
	GoneOffline  chan event.GoneOffline
	NewMessage   chan event.NewMessage
	UsersChanged chan event.UsersChanged
}

func NewQueues(size int) *Queues {
	return &Queues{
		GoneOnline:   make(chan event.GoneOnline, size),
		GoneOffline:  make(chan event.GoneOffline, size),
		NewMessage:   make(chan event.NewMessage, size),
		UsersChanged: make(chan event.UsersChanged, size),
	}
}
