package escrow

import (
	"bytes"
	"crypto/sha256"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

// RecordSize is the length of a serialized Escrow, the discriminator
// included.
const RecordSize = 8 + 8 + 32 + 32 + 8 + 1

var discriminator = func() [8]byte {
	sum := sha256.Sum256([]byte("account:Escrow"))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}()

// Escrow is the record of one active escrow. It is stored under its own
// derived address and never modified.
type Escrow struct {
	// Amount requested at deposit. Settlement pays the live vault
	// balance instead.
	Amount uint64
	Mint   custody.Address
	Maker  custody.Address
	Seed   uint64
	Bump   uint8
}

type escrowLayout struct {
	Discriminator [8]byte
	Amount        uint64
	Mint          solana.PublicKey
	Maker         solana.PublicKey
	Seed          uint64
	Bump          uint8
}

var _ orm.Model = (*Escrow)(nil)

func (e *Escrow) Validate() error {
	if err := e.Mint.Validate(); err != nil {
		return errors.Field("Mint", err, "")
	}
	if err := e.Maker.Validate(); err != nil {
		return errors.Field("Maker", err, "")
	}
	if e.Amount == 0 {
		return errors.Field("Amount", errors.ErrAmount, "must be positive")
	}
	return nil
}

func (e *Escrow) Marshal() ([]byte, error) {
	l := escrowLayout{
		Discriminator: discriminator,
		Amount:        e.Amount,
		Mint:          e.Mint.PublicKey(),
		Maker:         e.Maker.PublicKey(),
		Seed:          e.Seed,
		Bump:          e.Bump,
	}
	var buf bytes.Buffer
	if err := bin.NewBorshEncoder(&buf).Encode(&l); err != nil {
		return nil, errors.Wrap(errors.ErrModel, err.Error())
	}
	return buf.Bytes(), nil
}

func (e *Escrow) Unmarshal(raw []byte) error {
	if len(raw) != RecordSize {
		return errors.Wrapf(errors.ErrModel, "escrow: want %d bytes, got %d", RecordSize, len(raw))
	}
	if !bytes.Equal(raw[:8], discriminator[:]) {
		return errors.Wrap(errors.ErrModel, "escrow: discriminator mismatch")
	}
	var l escrowLayout
	if err := bin.NewBorshDecoder(raw).Decode(&l); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	*e = Escrow{
		Amount: l.Amount,
		Mint:   custody.AddressFromPublicKey(l.Mint),
		Maker:  custody.AddressFromPublicKey(l.Maker),
		Seed:   l.Seed,
		Bump:   l.Bump,
	}
	return nil
}

// NewBucket returns the bucket holding escrow records keyed by their
// derived address.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket("escrow")
}
