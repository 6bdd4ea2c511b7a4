package std

import (
	"fmt"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/app"
	"github.com/iov-one/custody/codec"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/escrow"
	"github.com/iov-one/custody/x/sigs"
	"github.com/iov-one/custody/x/system"
	"github.com/iov-one/custody/x/token"
)

// Tx fields. The message is stored under the field of its type, like
// a protobuf oneof.
const (
	fieldSignatures = 1

	fieldSystemTransferMsg   = 50
	fieldTransferMsg         = 51
	fieldCreateAssociatedMsg = 52
	fieldDepositMsg          = 60
	fieldSettleMsg           = 61
	fieldRefundMsg           = 62
)

// msgTypes lists every message this application routes. Each must be
// registered here to be carried by a Tx.
var msgTypes = map[int]func() custody.Msg{
	fieldSystemTransferMsg:   func() custody.Msg { return &system.TransferMsg{} },
	fieldTransferMsg:         func() custody.Msg { return &token.TransferMsg{} },
	fieldCreateAssociatedMsg: func() custody.Msg { return &token.CreateAssociatedMsg{} },
	fieldDepositMsg:          func() custody.Msg { return &escrow.DepositMsg{} },
	fieldSettleMsg:           func() custody.Msg { return &escrow.SettleMsg{} },
	fieldRefundMsg:           func() custody.Msg { return &escrow.RefundMsg{} },
}

// msgField returns the Tx field number of msg.
func msgField(msg custody.Msg) (int, error) {
	for field, fn := range msgTypes {
		if fn().Path() == msg.Path() {
			return field, nil
		}
	}
	return 0, errors.Wrapf(errors.ErrMsg, "not registered: %s", msg.Path())
}

// Tx carries one message and the signatures authorizing it.
type Tx struct {
	Msg        custody.Msg          `json:"msg"`
	Signatures []*sigs.StdSignature `protobuf:"bytes,1,rep,name=signatures" json:"signatures"`
}

// make sure tx fulfills all interfaces
var _ custody.Tx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)
var _ proto.Message = (*Tx)(nil)

// NewTx returns an unsigned transaction.
func NewTx(msg custody.Msg) *Tx {
	return &Tx{Msg: msg}
}

// TxDecoder creates a Tx and unmarshals bytes into it
func TxDecoder(bz []byte) (custody.Tx, error) {
	tx := new(Tx)
	if err := proto.Unmarshal(bz, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (tx *Tx) Reset() { *tx = Tx{} }

func (tx *Tx) String() string {
	path := custody.GetPath(tx)
	return fmt.Sprintf("Tx{%s, %d signatures}", path, len(tx.Signatures))
}

func (*Tx) ProtoMessage() {}

// GetMsg returns the message of the transaction.
func (tx *Tx) GetMsg() (custody.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "no message")
	}
	return tx.Msg, nil
}

// GetSignBytes returns the bytes to sign: the serialized message. The
// chain id and sequence are added by sigs.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "no message")
	}
	return tx.Msg.Marshal()
}

// GetSignatures returns all signatures of the transaction.
func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// Marshal serializes the transaction as a protobuf message.
func (tx *Tx) Marshal() ([]byte, error) {
	var w codec.Writer
	for _, sig := range tx.Signatures {
		w.Message(fieldSignatures, sig)
	}
	if tx.Msg != nil {
		field, err := msgField(tx.Msg)
		if err != nil {
			return nil, err
		}
		w.Message(field, tx.Msg)
	}
	bz, err := w.Result()
	if err != nil {
		return nil, errors.Wrap(errors.ErrType, err.Error())
	}
	return bz, nil
}

// Unmarshal parses a protobuf serialized transaction. More than one
// message is rejected.
func (tx *Tx) Unmarshal(bz []byte) error {
	tx.Reset()
	fields := codec.Fields{
		fieldSignatures: codec.MessageTo(func() codec.Unmarshaler {
			sig := &sigs.StdSignature{}
			tx.Signatures = append(tx.Signatures, sig)
			return sig
		}),
	}
	for field, fn := range msgTypes {
		fn := fn
		fields[field] = func(f codec.Field) error {
			if tx.Msg != nil {
				return errors.Wrap(errors.ErrMsg, "more than one message")
			}
			msg := fn()
			decode := codec.MessageTo(func() codec.Unmarshaler { return msg })
			if err := decode(f); err != nil {
				return err
			}
			tx.Msg = msg
			return nil
		}
	}
	if err := codec.Unmarshal(bz, fields); err != nil {
		if errors.ErrMsg.Is(err) {
			return err
		}
		return errors.Wrap(errors.ErrType, err.Error())
	}
	return nil
}

// TxAccounts declares every account a transaction touches: the accounts
// of its message and the signers, whose sequence is incremented. It is
// the app.LockFunc of this application.
func TxAccounts(tx custody.Tx) ([]custody.AccountMeta, bool) {
	declared, ok := app.MsgAccounts(tx)
	if !ok {
		return nil, false
	}
	accounts := make([]custody.AccountMeta, len(declared), len(declared)+1)
	copy(accounts, declared)
	if stx, ok := tx.(sigs.SignedTx); ok {
		for _, sig := range stx.GetSignatures() {
			if sig == nil {
				continue
			}
			accounts = append(accounts, custody.Writable(sig.Pubkey.Address()))
		}
	}
	return accounts, true
}
