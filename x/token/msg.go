package token

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/codec"
	"github.com/iov-one/custody/errors"
)

const (
	pathTransferMsg         = "token/transfer"
	pathCreateAssociatedMsg = "token/create_associated"
)

// TransferMsg moves tokens between two accounts of the same mint.
type TransferMsg struct {
	Source      custody.Address `protobuf:"bytes,1,opt,name=source,proto3" json:"source"`
	Mint        custody.Address `protobuf:"bytes,2,opt,name=mint,proto3" json:"mint"`
	Destination custody.Address `protobuf:"bytes,3,opt,name=destination,proto3" json:"destination"`
	// Owner of the source account. Must sign.
	Owner    custody.Address `protobuf:"bytes,4,opt,name=owner,proto3" json:"owner"`
	Amount   uint64          `protobuf:"varint,5,opt,name=amount,proto3" json:"amount"`
	Decimals uint8           `protobuf:"varint,6,opt,name=decimals,proto3" json:"decimals"`
}

var _ custody.Msg = (*TransferMsg)(nil)
var _ proto.Message = (*TransferMsg)(nil)
var _ custody.AccountLister = (*TransferMsg)(nil)

func (TransferMsg) Path() string {
	return pathTransferMsg
}

func (m *TransferMsg) Validate() error {
	if err := m.Source.Validate(); err != nil {
		return errors.Field("Source", err, "")
	}
	if err := m.Mint.Validate(); err != nil {
		return errors.Field("Mint", err, "")
	}
	if err := m.Destination.Validate(); err != nil {
		return errors.Field("Destination", err, "")
	}
	if err := m.Owner.Validate(); err != nil {
		return errors.Field("Owner", err, "")
	}
	if m.Amount == 0 {
		return errors.Field("Amount", errors.ErrAmount, "must be positive")
	}
	return nil
}

func (m *TransferMsg) Accounts() []custody.AccountMeta {
	return []custody.AccountMeta{
		custody.Writable(m.Source),
		custody.ReadOnly(m.Mint),
		custody.Writable(m.Destination),
		custody.ReadOnly(m.Owner),
	}
}

func (m *TransferMsg) Reset()         { *m = TransferMsg{} }
func (m *TransferMsg) String() string { return proto.CompactTextString(m) }
func (*TransferMsg) ProtoMessage()    {}

func (m *TransferMsg) Marshal() ([]byte, error) {
	var w codec.Writer
	w.Bytes(1, m.Source)
	w.Bytes(2, m.Mint)
	w.Bytes(3, m.Destination)
	w.Bytes(4, m.Owner)
	w.Uint64(5, m.Amount)
	w.Uint64(6, uint64(m.Decimals))
	return w.Result()
}

func (m *TransferMsg) Unmarshal(raw []byte) error {
	m.Reset()
	return codec.Unmarshal(raw, codec.Fields{
		1: codec.BytesTo((*[]byte)(&m.Source)),
		2: codec.BytesTo((*[]byte)(&m.Mint)),
		3: codec.BytesTo((*[]byte)(&m.Destination)),
		4: codec.BytesTo((*[]byte)(&m.Owner)),
		5: codec.Uint64To(&m.Amount),
		6: codec.Uint8To(&m.Decimals),
	})
}

// CreateAssociatedMsg creates the associated token account of Owner for
// Mint, paid by Payer.
type CreateAssociatedMsg struct {
	Payer custody.Address `protobuf:"bytes,1,opt,name=payer,proto3" json:"payer"`
	Owner custody.Address `protobuf:"bytes,2,opt,name=owner,proto3" json:"owner"`
	Mint  custody.Address `protobuf:"bytes,3,opt,name=mint,proto3" json:"mint"`
	// Account is the derived associated account address.
	Account custody.Address `protobuf:"bytes,4,opt,name=account,proto3" json:"account"`
}

var _ custody.Msg = (*CreateAssociatedMsg)(nil)
var _ proto.Message = (*CreateAssociatedMsg)(nil)
var _ custody.AccountLister = (*CreateAssociatedMsg)(nil)

func (CreateAssociatedMsg) Path() string {
	return pathCreateAssociatedMsg
}

func (m *CreateAssociatedMsg) Validate() error {
	if err := m.Payer.Validate(); err != nil {
		return errors.Field("Payer", err, "")
	}
	if err := m.Owner.Validate(); err != nil {
		return errors.Field("Owner", err, "")
	}
	if err := m.Mint.Validate(); err != nil {
		return errors.Field("Mint", err, "")
	}
	if err := m.Account.Validate(); err != nil {
		return errors.Field("Account", err, "")
	}
	return nil
}

func (m *CreateAssociatedMsg) Accounts() []custody.AccountMeta {
	return []custody.AccountMeta{
		custody.Writable(m.Payer),
		custody.ReadOnly(m.Owner),
		custody.ReadOnly(m.Mint),
		custody.Writable(m.Account),
	}
}

func (m *CreateAssociatedMsg) Reset()         { *m = CreateAssociatedMsg{} }
func (m *CreateAssociatedMsg) String() string { return proto.CompactTextString(m) }
func (*CreateAssociatedMsg) ProtoMessage()    {}

func (m *CreateAssociatedMsg) Marshal() ([]byte, error) {
	var w codec.Writer
	w.Bytes(1, m.Payer)
	w.Bytes(2, m.Owner)
	w.Bytes(3, m.Mint)
	w.Bytes(4, m.Account)
	return w.Result()
}

func (m *CreateAssociatedMsg) Unmarshal(raw []byte) error {
	m.Reset()
	return codec.Unmarshal(raw, codec.Fields{
		1: codec.BytesTo((*[]byte)(&m.Payer)),
		2: codec.BytesTo((*[]byte)(&m.Owner)),
		3: codec.BytesTo((*[]byte)(&m.Mint)),
		4: codec.BytesTo((*[]byte)(&m.Account)),
	})
}
