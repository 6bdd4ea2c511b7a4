package custodytest

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/crypto"
)

// NewKey returns a random private key.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivateKey()
}

// NewAddress returns the address of a random key.
func NewAddress() custody.Address {
	return NewKey().Address()
}
