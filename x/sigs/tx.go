package sigs

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/custody/codec"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/errors"
)

// SignedTx represents a transaction that contains signatures,
// which can be verified by the Decorator
type SignedTx interface {
	// GetSignBytes returns the canonical byte representation of the Msg.
	GetSignBytes() ([]byte, error)

	// GetSignatures returns the signatures of the signers of the Msg.
	GetSignatures() []*StdSignature
}

// StdSignature is one signature of a transaction.
type StdSignature struct {
	Pubkey    crypto.PublicKey `protobuf:"bytes,1,opt,name=pubkey,proto3" json:"pubkey"`
	Signature []byte           `protobuf:"bytes,2,opt,name=signature,proto3" json:"signature"`
	Sequence  int64            `protobuf:"varint,3,opt,name=sequence,proto3" json:"sequence"`
}

var _ proto.Message = (*StdSignature)(nil)

func (s *StdSignature) Reset()         { *s = StdSignature{} }
func (s *StdSignature) String() string { return proto.CompactTextString(s) }
func (*StdSignature) ProtoMessage()    {}

// Marshal encodes the signature as a protobuf message.
func (s *StdSignature) Marshal() ([]byte, error) {
	var w codec.Writer
	w.Bytes(1, s.Pubkey)
	w.Bytes(2, s.Signature)
	w.Int64(3, s.Sequence)
	return w.Result()
}

// Unmarshal decodes a protobuf encoded signature.
func (s *StdSignature) Unmarshal(raw []byte) error {
	s.Reset()
	return codec.Unmarshal(raw, codec.Fields{
		1: codec.BytesTo((*[]byte)(&s.Pubkey)),
		2: codec.BytesTo(&s.Signature),
		3: codec.Int64To(&s.Sequence),
	})
}

// Validate ensures the StdSignature meets basic standards
func (s *StdSignature) Validate() error {
	if s.Sequence < 0 {
		return errors.Wrap(ErrInvalidSequence, "negative")
	}
	if len(s.Pubkey) != crypto.PublicKeySize {
		return errors.Wrap(errors.ErrUnauthorized, "missing public key")
	}
	if len(s.Signature) != crypto.SignatureLength {
		return errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return nil
}
