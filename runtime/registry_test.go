package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chat-relay/mocks"
)

func key(owner, counterpart string) domain.AddressKey {
	return domain.AddressKey{Owner: domain.Identity(owner), Counterpart: domain.Identity(counterpart)}
}

func TestRegistry_Register_Then_Lookup(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	registry := NewRegistry()
	conn := mocks.NewMockConn(ctrl)

	// Given an empty registry
	_, found := registry.Lookup(key("alice", "bob"))
	req.False(found)

	// When a connection registers
	prev := registry.Register(key("alice", "bob"), conn)

	// Then nothing was displaced and the lookup resolves
	req.Nil(prev)
	got, found := registry.Lookup(key("alice", "bob"))
	req.True(found)
	req.Equal(conn, got)
}

func TestRegistry_Register_Replaces_And_Returns_Orphan(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	registry := NewRegistry()
	first := mocks.NewMockConn(ctrl)
	second := mocks.NewMockConn(ctrl)

	// Given a registered connection
	registry.Register(key("alice", "bob"), first)

	// When the same key registers again
	prev := registry.Register(key("alice", "bob"), second)

	// Then the displaced handle is returned and the new one is visible
	req.Equal(first, prev)
	got, found := registry.Lookup(key("alice", "bob"))
	req.True(found)
	req.Equal(second, got)
}

func TestRegistry_Deregister_Then_Lookup_Misses(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	registry := NewRegistry()
	conn := mocks.NewMockConn(ctrl)

	registry.Register(key("alice", "bob"), conn)
	registry.Deregister(key("alice", "bob"))

	_, found := registry.Lookup(key("alice", "bob"))
	req.False(found)
	req.Empty(registry.All())
}

func TestRegistry_Deregister_Absent_Key_Is_Noop(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	registry := NewRegistry()
	conn := mocks.NewMockConn(ctrl)
	registry.Register(key("alice", "bob"), conn)

	// When deregistering a key that was never registered, twice
	registry.Deregister(key("zed", "bob"))
	registry.Deregister(key("zed", "bob"))

	// Then nothing changed
	req.Len(registry.All(), 1)
}

func TestRegistry_ByCounterpart_Matches_Second_Element_Only(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	registry := NewRegistry()

	aliceToBob := mocks.NewMockConn(ctrl)
	mikeToBob := mocks.NewMockConn(ctrl)
	bobToAlice := mocks.NewMockConn(ctrl)

	// Given three connections, two of which point at bob
	registry.Register(key("alice", "bob"), aliceToBob)
	registry.Register(key("mike", "bob"), mikeToBob)
	registry.Register(key("bob", "alice"), bobToAlice)

	// When enumerating bob's peers
	entries := registry.ByCounterpart("bob")

	// Then exactly the (x, bob) keys come back, insertion order aside
	req.Len(entries, 2)
	owners := []string{string(entries[0].Key.Owner), string(entries[1].Key.Owner)}
	req.ElementsMatch([]string{"alice", "mike"}, owners)
	for _, e := range entries {
		req.Equal(domain.Identity("bob"), e.Key.Counterpart)
	}
}

func TestRegistry_Snapshot_Is_A_Copy(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	registry := NewRegistry()
	conn := mocks.NewMockConn(ctrl)
	registry.Register(key("alice", "bob"), conn)

	snapshot := registry.Snapshot()
	registry.Deregister(key("alice", "bob"))

	// The snapshot taken before the deregistration is unaffected
	req.Len(snapshot, 1)
	req.Equal(contract.RegistryEntry{Key: key("alice", "bob"), Conn: conn}, snapshot[0])
	req.Empty(registry.Snapshot())
}
