//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"context"
	"reflect"

	"github.com/google/uuid"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding the need for manual naming in the Worker
// interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Conn is a live transport endpoint. Send must be safe for concurrent
// use; a closed connection returns an error instead of panicking.
type Conn interface {
	ID() uuid.UUID
	Key() domain.AddressKey
	Send(ctx context.Context, payload []byte) error
	IsOpen() bool
	Close() error
}

// RegistryEntry pairs an address key with its live connection.
type RegistryEntry struct {
	Key  domain.AddressKey
	Conn Conn
}

// IRegistry is the single source of truth for which address keys are
// reachable. Only the connection lifecycle writes it; stream workers
// read it.
type IRegistry interface {
	// Register inserts conn under key and returns the handle it
	// displaced, or nil. The caller decides what to do with the orphan.
	Register(key domain.AddressKey, conn Conn) Conn
	// Deregister removes the entry for key. Removing an absent key is
	// a no-op.
	Deregister(key domain.AddressKey)
	Lookup(key domain.AddressKey) (Conn, bool)
	// ByCounterpart returns every entry whose counterpart side equals
	// identity, i.e. every socket belonging to someone chatting with
	// that user.
	ByCounterpart(identity domain.Identity) []RegistryEntry
	All() []Conn
	Snapshot() []RegistryEntry
}

// IIdentityGateway resolves credentials and usernames to identities.
type IIdentityGateway interface {
	// ResolveSession maps a session credential to the identity it was
	// issued for. The boolean is false for expired, forged, or
	// otherwise unresolvable credentials.
	ResolveSession(ctx context.Context, credential string) (domain.Identity, bool)
	// LookupUserByUsername returns ErrUnknownUser when no such user
	// exists.
	LookupUserByUsername(ctx context.Context, username string) (domain.Identity, error)
}

// IStoreGateway persists dialogs and messages.
type IStoreGateway interface {
	// FindDialog returns the dialogs between a and b, in either pair
	// order. Zero results is not an error.
	FindDialog(ctx context.Context, a, b domain.Identity) ([]domain.Dialog, error)
	AppendMessage(ctx context.Context, dialog domain.Dialog, sender domain.Identity, text string) (domain.Message, error)
}
