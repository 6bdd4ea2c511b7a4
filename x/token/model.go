package token

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

const (
	// MintSize is the length of a serialized Mint.
	MintSize = 82
	// AccountSize is the length of a serialized token Account.
	AccountSize = 165
)

// AccountState is the lifecycle state of a token account.
type AccountState uint8

const (
	StateUninitialized AccountState = iota
	StateInitialized
	StateFrozen
)

var someFlag = [4]byte{1, 0, 0, 0}

// Mint describes a token type.
type Mint struct {
	// MintAuthority may issue new tokens. Nil when the supply is fixed.
	MintAuthority custody.Address
	Supply        uint64
	Decimals      uint8
	// FreezeAuthority may freeze token accounts. Optional.
	FreezeAuthority custody.Address
}

type mintLayout struct {
	MintAuthorityOption   [4]byte
	MintAuthority         solana.PublicKey
	Supply                uint64
	Decimals              uint8
	IsInitialized         uint8
	FreezeAuthorityOption [4]byte
	FreezeAuthority       solana.PublicKey
}

var _ orm.Model = (*Mint)(nil)

func (m *Mint) Validate() error {
	if m.MintAuthority != nil {
		if err := m.MintAuthority.Validate(); err != nil {
			return errors.Field("MintAuthority", err, "")
		}
	}
	if m.FreezeAuthority != nil {
		if err := m.FreezeAuthority.Validate(); err != nil {
			return errors.Field("FreezeAuthority", err, "")
		}
	}
	return nil
}

// Marshal encodes the mint in the 82 byte SPL layout.
func (m *Mint) Marshal() ([]byte, error) {
	l := mintLayout{
		Supply:        m.Supply,
		Decimals:      m.Decimals,
		IsInitialized: 1,
	}
	l.MintAuthorityOption, l.MintAuthority = option(m.MintAuthority)
	l.FreezeAuthorityOption, l.FreezeAuthority = option(m.FreezeAuthority)
	return encode(&l)
}

// Unmarshal decodes the 82 byte SPL layout.
func (m *Mint) Unmarshal(raw []byte) error {
	if len(raw) != MintSize {
		return errors.Wrapf(errors.ErrModel, "mint: want %d bytes, got %d", MintSize, len(raw))
	}
	var l mintLayout
	if err := bin.NewBinDecoder(raw).Decode(&l); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	if l.IsInitialized != 1 {
		return errors.Wrap(errors.ErrState, "mint not initialized")
	}
	*m = Mint{
		MintAuthority:   fromOption(l.MintAuthorityOption, l.MintAuthority),
		Supply:          l.Supply,
		Decimals:        l.Decimals,
		FreezeAuthority: fromOption(l.FreezeAuthorityOption, l.FreezeAuthority),
	}
	return nil
}

// Account is a token balance of one mint held by an owner.
type Account struct {
	Mint   custody.Address
	Owner  custody.Address
	Amount uint64
	State  AccountState
	// CloseAuthority may close the account instead of the owner.
	CloseAuthority custody.Address
}

type accountLayout struct {
	Mint                 solana.PublicKey
	Owner                solana.PublicKey
	Amount               uint64
	DelegateOption       [4]byte
	Delegate             solana.PublicKey
	State                uint8
	IsNativeOption       [4]byte
	IsNative             uint64
	DelegatedAmount      uint64
	CloseAuthorityOption [4]byte
	CloseAuthority       solana.PublicKey
}

var _ orm.Model = (*Account)(nil)

func (a *Account) Validate() error {
	if err := a.Mint.Validate(); err != nil {
		return errors.Field("Mint", err, "")
	}
	if err := a.Owner.Validate(); err != nil {
		return errors.Field("Owner", err, "")
	}
	if a.State != StateInitialized && a.State != StateFrozen {
		return errors.Field("State", errors.ErrState, "invalid state %d", a.State)
	}
	if a.CloseAuthority != nil {
		if err := a.CloseAuthority.Validate(); err != nil {
			return errors.Field("CloseAuthority", err, "")
		}
	}
	return nil
}

// Marshal encodes the account in the 165 byte SPL layout.
func (a *Account) Marshal() ([]byte, error) {
	l := accountLayout{
		Mint:   a.Mint.PublicKey(),
		Owner:  a.Owner.PublicKey(),
		Amount: a.Amount,
		State:  uint8(a.State),
	}
	l.CloseAuthorityOption, l.CloseAuthority = option(a.CloseAuthority)
	return encode(&l)
}

// Unmarshal decodes the 165 byte SPL layout.
func (a *Account) Unmarshal(raw []byte) error {
	if len(raw) != AccountSize {
		return errors.Wrapf(errors.ErrModel, "token account: want %d bytes, got %d", AccountSize, len(raw))
	}
	var l accountLayout
	if err := bin.NewBinDecoder(raw).Decode(&l); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	*a = Account{
		Mint:           custody.AddressFromPublicKey(l.Mint),
		Owner:          custody.AddressFromPublicKey(l.Owner),
		Amount:         l.Amount,
		State:          AccountState(l.State),
		CloseAuthority: fromOption(l.CloseAuthorityOption, l.CloseAuthority),
	}
	return nil
}

// closers returns the addresses allowed to close the account.
func (a *Account) closers() []custody.Address {
	if a.CloseAuthority != nil {
		return []custody.Address{a.CloseAuthority}
	}
	return []custody.Address{a.Owner}
}

func encode(layout interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := bin.NewBinEncoder(&buf).Encode(layout); err != nil {
		return nil, errors.Wrap(errors.ErrModel, err.Error())
	}
	return buf.Bytes(), nil
}

func option(a custody.Address) ([4]byte, solana.PublicKey) {
	if a == nil {
		return [4]byte{}, solana.PublicKey{}
	}
	return someFlag, a.PublicKey()
}

func fromOption(flag [4]byte, pk solana.PublicKey) custody.Address {
	if flag != someFlag {
		return nil
	}
	return custody.AddressFromPublicKey(pk)
}

// NewMintBucket returns the bucket holding mints keyed by address.
func NewMintBucket() orm.ModelBucket {
	return orm.NewModelBucket("mints")
}

// NewAccountBucket returns the bucket holding token accounts keyed by
// address.
func NewAccountBucket() orm.ModelBucket {
	return orm.NewModelBucket("tokens")
}
