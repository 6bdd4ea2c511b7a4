package sigs

import (
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

// maxSequence is the greatest sequence a javascript client can encode.
const maxSequence = (1 << 53) - 1

// UserData is the replay protection state of one signer.
type UserData struct {
	Pubkey   crypto.PublicKey `json:"pubkey"`
	Sequence int64            `json:"sequence"`
}

var _ orm.Model = (*UserData)(nil)

func (u *UserData) Validate() error {
	if u.Sequence < 0 {
		return errors.Field("Sequence", ErrInvalidSequence, "negative")
	}
	if len(u.Pubkey) != crypto.PublicKeySize {
		return errors.Field("Pubkey", errors.ErrInput, "invalid length %d", len(u.Pubkey))
	}
	return nil
}

func (u *UserData) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(u)
}

func (u *UserData) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, u)
}

// CheckAndIncrementSequence increments the sequence if it equals
// expected.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidSequence, "mismatch expected %d, got %d", u.Sequence, expected)
	}
	next := u.Sequence + 1
	if next > maxSequence {
		return errors.Wrap(errors.ErrOverflow, "sequence out of range")
	}
	u.Sequence = next
	return nil
}

// NewBucket returns the bucket holding UserData keyed by address.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket("sigs")
}
