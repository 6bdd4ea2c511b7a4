package custody

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/custody/crypto/bech32"
	"github.com/iov-one/custody/errors"
)

const (
	// AddressLength is the length of all addresses. Both key based and
	// program derived addresses are 32 bytes.
	AddressLength = 32

	// Bech32Prefix is the human readable part of bech32 addresses.
	Bech32Prefix = "custody"
)

// Address identifies an account. It is either an ed25519 public key or
// a program derived address that has no private key.
type Address []byte

// AddressFromPublicKey converts a solana public key into an Address.
func AddressFromPublicKey(pk solana.PublicKey) Address {
	return Address(pk.Bytes())
}

// PublicKey returns the address as a solana public key. It must be
// called on a valid address only.
func (a Address) PublicKey() solana.PublicKey {
	return solana.PublicKeyFromBytes(a)
}

// Equals checks if two addresses are the same
func (a Address) Equals(b Address) bool {
	return bytes.Equal(a, b)
}

// Clone returns a copy that does not share memory with a.
func (a Address) Clone() Address {
	if a == nil {
		return nil
	}
	c := make(Address, len(a))
	copy(c, a)
	return c
}

// String returns the base58 representation.
func (a Address) String() string {
	if len(a) == 0 {
		return "(nil)"
	}
	if len(a) != AddressLength {
		return "hex:" + strings.ToUpper(hex.EncodeToString(a))
	}
	return a.PublicKey().String()
}

// Bech32 returns the bech32 representation prefixed with "bech32:".
func (a Address) Bech32() (string, error) {
	raw, err := bech32.Encode(Bech32Prefix, a)
	if err != nil {
		return "", err
	}
	return "bech32:" + raw, nil
}

// Validate returns an error if the address is not the right length.
func (a Address) Validate() error {
	if len(a) != AddressLength {
		return errors.Wrapf(errors.ErrInput, "address: invalid length %d", len(a))
	}
	return nil
}

// MarshalJSON encodes the address as a base58 string.
func (a Address) MarshalJSON() ([]byte, error) {
	if len(a) == 0 {
		return json.Marshal("")
	}
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts every format understood by ParseAddress.
func (a *Address) UnmarshalJSON(raw []byte) error {
	var enc string
	if err := json.Unmarshal(raw, &enc); err != nil {
		return errors.Wrap(errors.ErrInput, "cannot decode json")
	}
	if enc == "" {
		*a = nil
		return nil
	}
	addr, err := ParseAddress(enc)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// ParseAddress decodes an address. Base58 is the default format, a
// "hex:" or "bech32:" prefix selects the other ones.
func ParseAddress(enc string) (Address, error) {
	chunks := strings.SplitN(enc, ":", 2)
	format := "base58"
	if len(chunks) == 2 {
		format, enc = chunks[0], chunks[1]
	}

	var addr Address
	switch format {
	case "base58":
		pk, err := solana.PublicKeyFromBase58(enc)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "base58: %s", err)
		}
		addr = AddressFromPublicKey(pk)
	case "hex":
		val, err := hex.DecodeString(enc)
		if err != nil {
			return nil, errors.Wrap(errors.ErrInput, "cannot decode hex")
		}
		addr = Address(val)
	case "bech32":
		payload, err := bech32.Decode(Bech32Prefix, enc)
		if err != nil {
			return nil, err
		}
		addr = Address(payload)
	default:
		return nil, errors.Wrapf(errors.ErrType, "unknown address format %q", format)
	}
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	return addr, nil
}

// MustParseAddress is like ParseAddress but panics on error. Use it for
// constants only.
func MustParseAddress(enc string) Address {
	addr, err := ParseAddress(enc)
	if err != nil {
		panic(err)
	}
	return addr
}
