// Package domain contains core concepts of the relay hub.
// This file defines identities and the addressing scheme for live
// connections. No runtime, transport, or storage logic should be
// added here.
package domain

// Identity is an opaque username, unique per user. Identities are
// minted by the identity gateway; the hub only reads them.
type Identity string

// AddressKey is the directed (owner, counterpart) pair a live
// connection is registered under. The two ends of one logical dialog
// channel carry swapped keys and are distinct registry entries.
type AddressKey struct {
	Owner       Identity
	Counterpart Identity
}

// Reversed returns the key addressing the other end of the channel.
func (k AddressKey) Reversed() AddressKey {
	return AddressKey{Owner: k.Counterpart, Counterpart: k.Owner}
}
