package system

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/codec"
	"github.com/iov-one/custody/errors"
)

const pathTransferMsg = "system/transfer"

// TransferMsg moves lamports from one account to another.
type TransferMsg struct {
	// From must sign.
	From     custody.Address `protobuf:"bytes,1,opt,name=from,proto3" json:"from"`
	To       custody.Address `protobuf:"bytes,2,opt,name=to,proto3" json:"to"`
	Lamports uint64          `protobuf:"varint,3,opt,name=lamports,proto3" json:"lamports"`
}

var _ custody.Msg = (*TransferMsg)(nil)
var _ proto.Message = (*TransferMsg)(nil)
var _ custody.AccountLister = (*TransferMsg)(nil)

func (TransferMsg) Path() string {
	return pathTransferMsg
}

func (m *TransferMsg) Validate() error {
	if err := m.From.Validate(); err != nil {
		return errors.Field("From", err, "")
	}
	if err := m.To.Validate(); err != nil {
		return errors.Field("To", err, "")
	}
	if m.From.Equals(m.To) {
		return errors.Field("To", errors.ErrInput, "cannot transfer to self")
	}
	if m.Lamports == 0 {
		return errors.Field("Lamports", errors.ErrAmount, "must be positive")
	}
	return nil
}

func (m *TransferMsg) Accounts() []custody.AccountMeta {
	return []custody.AccountMeta{
		custody.Writable(m.From),
		custody.Writable(m.To),
	}
}

func (m *TransferMsg) Reset()         { *m = TransferMsg{} }
func (m *TransferMsg) String() string { return proto.CompactTextString(m) }
func (*TransferMsg) ProtoMessage()    {}

func (m *TransferMsg) Marshal() ([]byte, error) {
	var w codec.Writer
	w.Bytes(1, m.From)
	w.Bytes(2, m.To)
	w.Uint64(3, m.Lamports)
	return w.Result()
}

func (m *TransferMsg) Unmarshal(raw []byte) error {
	m.Reset()
	return codec.Unmarshal(raw, codec.Fields{
		1: codec.BytesTo((*[]byte)(&m.From)),
		2: codec.BytesTo((*[]byte)(&m.To)),
		3: codec.Uint64To(&m.Lamports),
	})
}
