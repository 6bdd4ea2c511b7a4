package escrow

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/codec"
	"github.com/iov-one/custody/errors"
)

const (
	pathDepositMsg = "escrow/deposit"
	pathSettleMsg  = "escrow/settle"
	pathRefundMsg  = "escrow/refund"
)

// DepositMsg creates an escrow and moves Amount tokens from the maker
// into its vault. Maker must sign.
type DepositMsg struct {
	Maker    custody.Address `protobuf:"bytes,1,opt,name=maker,proto3" json:"maker"`
	Mint     custody.Address `protobuf:"bytes,2,opt,name=mint,proto3" json:"mint"`
	Seed     uint64          `protobuf:"varint,3,opt,name=seed,proto3" json:"seed"`
	Amount   uint64          `protobuf:"varint,4,opt,name=amount,proto3" json:"amount"`
	Decimals uint8           `protobuf:"varint,5,opt,name=decimals,proto3" json:"decimals"`
	// Escrow, Vault and MakerTokens are derived from the fields above.
	Escrow      custody.Address `protobuf:"bytes,6,opt,name=escrow,proto3" json:"escrow"`
	Vault       custody.Address `protobuf:"bytes,7,opt,name=vault,proto3" json:"vault"`
	MakerTokens custody.Address `protobuf:"bytes,8,opt,name=maker_tokens,proto3" json:"maker_tokens"`
}

var _ custody.Msg = (*DepositMsg)(nil)
var _ proto.Message = (*DepositMsg)(nil)
var _ custody.AccountLister = (*DepositMsg)(nil)

func (DepositMsg) Path() string {
	return pathDepositMsg
}

func (m *DepositMsg) Validate() error {
	if m.Amount == 0 {
		return errors.Field("Amount", errors.ErrAmount, "must be positive")
	}
	return validateAddresses([]field{
		{"Maker", m.Maker},
		{"Mint", m.Mint},
		{"Escrow", m.Escrow},
		{"Vault", m.Vault},
		{"MakerTokens", m.MakerTokens},
	})
}

func (m *DepositMsg) Accounts() []custody.AccountMeta {
	return []custody.AccountMeta{
		custody.Writable(m.Maker),
		custody.ReadOnly(m.Mint),
		custody.Writable(m.Escrow),
		custody.Writable(m.Vault),
		custody.Writable(m.MakerTokens),
	}
}

func (m *DepositMsg) Reset()         { *m = DepositMsg{} }
func (m *DepositMsg) String() string { return proto.CompactTextString(m) }
func (*DepositMsg) ProtoMessage()    {}

func (m *DepositMsg) Marshal() ([]byte, error) {
	var w codec.Writer
	w.Bytes(1, m.Maker)
	w.Bytes(2, m.Mint)
	w.Uint64(3, m.Seed)
	w.Uint64(4, m.Amount)
	w.Uint64(5, uint64(m.Decimals))
	w.Bytes(6, m.Escrow)
	w.Bytes(7, m.Vault)
	w.Bytes(8, m.MakerTokens)
	return w.Result()
}

func (m *DepositMsg) Unmarshal(raw []byte) error {
	m.Reset()
	return codec.Unmarshal(raw, codec.Fields{
		1: codec.BytesTo((*[]byte)(&m.Maker)),
		2: codec.BytesTo((*[]byte)(&m.Mint)),
		3: codec.Uint64To(&m.Seed),
		4: codec.Uint64To(&m.Amount),
		5: codec.Uint8To(&m.Decimals),
		6: codec.BytesTo((*[]byte)(&m.Escrow)),
		7: codec.BytesTo((*[]byte)(&m.Vault)),
		8: codec.BytesTo((*[]byte)(&m.MakerTokens)),
	})
}

// SettleMsg pays the vault balance to the taker and closes the escrow.
// Taker must sign.
type SettleMsg struct {
	Taker       custody.Address `protobuf:"bytes,1,opt,name=taker,proto3" json:"taker"`
	Maker       custody.Address `protobuf:"bytes,2,opt,name=maker,proto3" json:"maker"`
	Mint        custody.Address `protobuf:"bytes,3,opt,name=mint,proto3" json:"mint"`
	Seed        uint64          `protobuf:"varint,4,opt,name=seed,proto3" json:"seed"`
	Escrow      custody.Address `protobuf:"bytes,5,opt,name=escrow,proto3" json:"escrow"`
	Vault       custody.Address `protobuf:"bytes,6,opt,name=vault,proto3" json:"vault"`
	TakerTokens custody.Address `protobuf:"bytes,7,opt,name=taker_tokens,proto3" json:"taker_tokens"`
}

var _ custody.Msg = (*SettleMsg)(nil)
var _ proto.Message = (*SettleMsg)(nil)
var _ custody.AccountLister = (*SettleMsg)(nil)

func (SettleMsg) Path() string {
	return pathSettleMsg
}

func (m *SettleMsg) Validate() error {
	return validateAddresses([]field{
		{"Taker", m.Taker},
		{"Maker", m.Maker},
		{"Mint", m.Mint},
		{"Escrow", m.Escrow},
		{"Vault", m.Vault},
		{"TakerTokens", m.TakerTokens},
	})
}

func (m *SettleMsg) Accounts() []custody.AccountMeta {
	return []custody.AccountMeta{
		custody.Writable(m.Taker),
		custody.Writable(m.Maker),
		custody.ReadOnly(m.Mint),
		custody.Writable(m.Escrow),
		custody.Writable(m.Vault),
		custody.Writable(m.TakerTokens),
	}
}

func (m *SettleMsg) Reset()         { *m = SettleMsg{} }
func (m *SettleMsg) String() string { return proto.CompactTextString(m) }
func (*SettleMsg) ProtoMessage()    {}

func (m *SettleMsg) Marshal() ([]byte, error) {
	var w codec.Writer
	w.Bytes(1, m.Taker)
	w.Bytes(2, m.Maker)
	w.Bytes(3, m.Mint)
	w.Uint64(4, m.Seed)
	w.Bytes(5, m.Escrow)
	w.Bytes(6, m.Vault)
	w.Bytes(7, m.TakerTokens)
	return w.Result()
}

func (m *SettleMsg) Unmarshal(raw []byte) error {
	m.Reset()
	return codec.Unmarshal(raw, codec.Fields{
		1: codec.BytesTo((*[]byte)(&m.Taker)),
		2: codec.BytesTo((*[]byte)(&m.Maker)),
		3: codec.BytesTo((*[]byte)(&m.Mint)),
		4: codec.Uint64To(&m.Seed),
		5: codec.BytesTo((*[]byte)(&m.Escrow)),
		6: codec.BytesTo((*[]byte)(&m.Vault)),
		7: codec.BytesTo((*[]byte)(&m.TakerTokens)),
	})
}

// RefundMsg returns the vault balance to the maker and closes the
// escrow. Maker must sign.
type RefundMsg struct {
	Maker       custody.Address `protobuf:"bytes,1,opt,name=maker,proto3" json:"maker"`
	Mint        custody.Address `protobuf:"bytes,2,opt,name=mint,proto3" json:"mint"`
	Seed        uint64          `protobuf:"varint,3,opt,name=seed,proto3" json:"seed"`
	Escrow      custody.Address `protobuf:"bytes,4,opt,name=escrow,proto3" json:"escrow"`
	Vault       custody.Address `protobuf:"bytes,5,opt,name=vault,proto3" json:"vault"`
	MakerTokens custody.Address `protobuf:"bytes,6,opt,name=maker_tokens,proto3" json:"maker_tokens"`
}

var _ custody.Msg = (*RefundMsg)(nil)
var _ proto.Message = (*RefundMsg)(nil)
var _ custody.AccountLister = (*RefundMsg)(nil)

func (RefundMsg) Path() string {
	return pathRefundMsg
}

func (m *RefundMsg) Validate() error {
	return validateAddresses([]field{
		{"Maker", m.Maker},
		{"Mint", m.Mint},
		{"Escrow", m.Escrow},
		{"Vault", m.Vault},
		{"MakerTokens", m.MakerTokens},
	})
}

func (m *RefundMsg) Accounts() []custody.AccountMeta {
	return []custody.AccountMeta{
		custody.Writable(m.Maker),
		custody.ReadOnly(m.Mint),
		custody.Writable(m.Escrow),
		custody.Writable(m.Vault),
		custody.Writable(m.MakerTokens),
	}
}

func (m *RefundMsg) Reset()         { *m = RefundMsg{} }
func (m *RefundMsg) String() string { return proto.CompactTextString(m) }
func (*RefundMsg) ProtoMessage()    {}

func (m *RefundMsg) Marshal() ([]byte, error) {
	var w codec.Writer
	w.Bytes(1, m.Maker)
	w.Bytes(2, m.Mint)
	w.Uint64(3, m.Seed)
	w.Bytes(4, m.Escrow)
	w.Bytes(5, m.Vault)
	w.Bytes(6, m.MakerTokens)
	return w.Result()
}

func (m *RefundMsg) Unmarshal(raw []byte) error {
	m.Reset()
	return codec.Unmarshal(raw, codec.Fields{
		1: codec.BytesTo((*[]byte)(&m.Maker)),
		2: codec.BytesTo((*[]byte)(&m.Mint)),
		3: codec.Uint64To(&m.Seed),
		4: codec.BytesTo((*[]byte)(&m.Escrow)),
		5: codec.BytesTo((*[]byte)(&m.Vault)),
		6: codec.BytesTo((*[]byte)(&m.MakerTokens)),
	})
}

type field struct {
	name string
	addr custody.Address
}

func validateAddresses(fields []field) error {
	for _, f := range fields {
		if err := f.addr.Validate(); err != nil {
			return errors.Field(f.name, err, "")
		}
	}
	return nil
}
