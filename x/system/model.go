package system

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

// AccountSize is the length of a serialized Account.
const AccountSize = 8 + 8 + 32

// Account holds the lamports of an address.
type Account struct {
	Lamports uint64
	// Space is the number of data bytes allocated for the account.
	Space uint64
	// Owner is the program allowed to use the account data.
	Owner custody.Address
}

type accountLayout struct {
	Lamports uint64
	Space    uint64
	Owner    solana.PublicKey
}

var _ orm.Model = (*Account)(nil)

// Validate checks that the account can be stored.
func (a *Account) Validate() error {
	if err := a.Owner.Validate(); err != nil {
		return errors.Field("Owner", err, "")
	}
	return nil
}

// Marshal encodes the account in its fixed layout.
func (a *Account) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	l := accountLayout{Lamports: a.Lamports, Space: a.Space, Owner: a.Owner.PublicKey()}
	if err := bin.NewBorshEncoder(&buf).Encode(l); err != nil {
		return nil, errors.Wrap(errors.ErrModel, err.Error())
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes the fixed layout.
func (a *Account) Unmarshal(raw []byte) error {
	if len(raw) != AccountSize {
		return errors.Wrapf(errors.ErrModel, "account: want %d bytes, got %d", AccountSize, len(raw))
	}
	var l accountLayout
	if err := bin.NewBorshDecoder(raw).Decode(&l); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	*a = Account{Lamports: l.Lamports, Space: l.Space, Owner: custody.AddressFromPublicKey(l.Owner)}
	return nil
}

// NewBucket returns the bucket holding accounts keyed by address.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket("accounts")
}
