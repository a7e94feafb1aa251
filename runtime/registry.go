package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"sync"
)

// Registry maps directed (owner, counterpart) address keys to live
// connections. It is the only shared mutable structure in the hub:
// the websocket lifecycle inserts and deletes, the stream workers
// look up and enumerate. A single mutex domain is enough at the
// expected scale (live connection count).
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.AddressKey]contract.Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[domain.AddressKey]contract.Conn)}
}

// Register inserts conn under key and returns the previously mapped
// connection, if any. A replaced handle becomes unreachable through
// the registry; returning it lets the caller close it instead of
// leaking a half-open socket.
func (r *Registry) Register(key domain.AddressKey, conn contract.Conn) contract.Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.conns[key]
	r.conns[key] = conn
	return prev
}

// Deregister removes the entry for key. Deregistering an absent key
// is a no-op, which keeps the guaranteed-cleanup path idempotent.
func (r *Registry) Deregister(key domain.AddressKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, key)
}

func (r *Registry) Lookup(key domain.AddressKey) (contract.Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[key]
	return conn, ok
}

// ByCounterpart returns every entry whose key names identity as the
// counterpart: the sockets of everyone currently chatting with that
// user. Used by the presence logic to decide who must hear about a
// status change.
func (r *Registry) ByCounterpart(identity domain.Identity) []contract.RegistryEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []contract.RegistryEntry
	for key, conn := range r.conns {
		if key.Counterpart == identity {
			entries = append(entries, contract.RegistryEntry{Key: key, Conn: conn})
		}
	}
	return entries
}

func (r *Registry) All() []contract.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]contract.Conn, 0, len(r.conns))
	for _, conn := range r.conns {
		conns = append(conns, conn)
	}
	return conns
}

// Snapshot returns a point-in-time copy of every entry. Workers
// iterate the copy so a concurrent register/deregister never tears
// an enumeration mid-flight.
func (r *Registry) Snapshot() []contract.RegistryEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]contract.RegistryEntry, 0, len(r.conns))
	for key, conn := range r.conns {
		entries = append(entries, contract.RegistryEntry{Key: key, Conn: conn})
	}
	return entries
}
