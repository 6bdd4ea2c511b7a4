package sigs

import (
	"encoding/binary"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/errors"
)

// VerifyTxSignatures checks all the signatures on the tx.
//
// returns list of signer addresses (possibly empty),
// or error if any signature is invalid
func VerifyTxSignatures(db custody.KVStore, tx SignedTx, chainID string) ([]custody.Address, error) {
	bz, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	sigs := tx.GetSignatures()

	signers := make([]custody.Address, 0, len(sigs))
	for i, sig := range sigs {
		signer, err := VerifySignature(db, sig, bz, chainID)
		if err != nil {
			return nil, errors.Wrapf(err, "signature %d", i)
		}
		signers = append(signers, signer)
	}
	return signers, nil
}

// VerifySignature checks one signature against signBytes and increments
// the sequence of the signer.
func VerifySignature(db custody.KVStore, sig *StdSignature, signBytes []byte, chainID string) (custody.Address, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}

	bucket := NewBucket()
	addr := sig.Pubkey.Address()
	user := UserData{Pubkey: sig.Pubkey}
	if err := bucket.One(db, addr, &user); err != nil && !errors.ErrNotFound.Is(err) {
		return nil, err
	}

	toSign, err := BuildSignBytes(signBytes, chainID, sig.Sequence)
	if err != nil {
		return nil, err
	}
	if !user.Pubkey.Verify(toSign, sig.Signature) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "invalid signature")
	}
	if err := user.CheckAndIncrementSequence(sig.Sequence); err != nil {
		return nil, err
	}
	if err := bucket.Put(db, addr, &user); err != nil {
		return nil, err
	}
	return addr, nil
}

// BuildSignBytes combines the chain id and the sequence with the
// serialized message:
//
//	chainID | 0x00 | sequence (8 bytes big endian) | signBytes
func BuildSignBytes(signBytes []byte, chainID string, seq int64) ([]byte, error) {
	if seq < 0 {
		return nil, errors.Wrap(ErrInvalidSequence, "negative")
	}
	if !custody.IsValidChainID(chainID) {
		return nil, errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	output := make([]byte, 0, len(chainID)+1+8+len(signBytes))
	output = append(output, chainID...)
	output = append(output, 0)
	var nonce [8]byte
	binary.BigEndian.PutUint64(nonce[:], uint64(seq))
	output = append(output, nonce[:]...)
	return append(output, signBytes...), nil
}

// SignTx creates a signature of the given tx.
func SignTx(key *crypto.PrivateKey, tx SignedTx, chainID string, seq int64) (*StdSignature, error) {
	signBytes, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	toSign, err := BuildSignBytes(signBytes, chainID, seq)
	if err != nil {
		return nil, err
	}
	return &StdSignature{
		Pubkey:    key.PublicKey(),
		Signature: key.Sign(toSign),
		Sequence:  seq,
	}, nil
}

// NextSequence returns the sequence the next signature of addr must
// carry.
func NextSequence(db custody.ReadOnlyKVStore, addr custody.Address) (int64, error) {
	var user UserData
	switch err := NewBucket().One(db, addr, &user); {
	case errors.ErrNotFound.Is(err):
		return 0, nil
	case err != nil:
		return 0, err
	}
	return user.Sequence, nil
}
