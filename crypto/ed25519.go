package crypto

import (
	"crypto/rand"
	"io"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"golang.org/x/crypto/ed25519"
)

const (
	SignatureLength = ed25519.SignatureSize
	PublicKeySize   = ed25519.PublicKeySize
)

// PrivateKey is an ed25519 key able to sign transactions.
type PrivateKey struct {
	key ed25519.PrivateKey
}

// GenPrivateKey returns a random new private key.
func GenPrivateKey() *PrivateKey {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	return &PrivateKey{key: priv}
}

// PrivateKeyFromSeed deterministically derives a key from a 32 byte
// seed. Useful for tests and fixtures.
func PrivateKeyFromSeed(seed []byte) (*PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Wrapf(errors.ErrInput, "seed must be %d bytes", ed25519.SeedSize)
	}
	return &PrivateKey{key: ed25519.NewKeyFromSeed(seed)}, nil
}

// GenPrivateKeyFrom reads the seed from r.
func GenPrivateKeyFrom(r io.Reader) (*PrivateKey, error) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := io.ReadFull(r, seed); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return PrivateKeyFromSeed(seed)
}

// Sign returns a signature of message.
func (p *PrivateKey) Sign(message []byte) []byte {
	return ed25519.Sign(p.key, message)
}

// PublicKey returns the corresponding PublicKey
func (p *PrivateKey) PublicKey() PublicKey {
	return PublicKey(p.key.Public().(ed25519.PublicKey))
}

// Address returns the account address controlled by this key.
func (p *PrivateKey) Address() custody.Address {
	return p.PublicKey().Address()
}

// Solana returns the key in the solana-go representation.
func (p *PrivateKey) Solana() solana.PrivateKey {
	return solana.PrivateKey(p.key)
}

// PublicKey is an ed25519 public key. Its bytes are the account address.
type PublicKey []byte

// Verify verifies the signature was created with this message and public key
func (pk PublicKey) Verify(message, sig []byte) bool {
	if len(pk) != ed25519.PublicKeySize || len(sig) != SignatureLength {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pk), message, sig)
}

// Address returns the account address of this key.
func (pk PublicKey) Address() custody.Address {
	return custody.Address(pk).Clone()
}
