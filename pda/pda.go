/*
Package pda derives program addresses and signs on their behalf.

A program derived address is computed from a list of seeds and a program
id and is guaranteed to have no private key. The program that owns the
address authorizes operations for it by reproducing the exact seeds and
bump used to derive it. Signer models that authorization as a value
bound to a single address.
*/
package pda

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

const (
	// MaxSeeds is the maximum number of seeds, the bump included.
	MaxSeeds = 16
	// MaxSeedLength is the maximum length of a single seed.
	MaxSeedLength = 32
)

// ErrSeeds is returned when the seeds do not derive the expected
// address.
var ErrSeeds = errors.Register(100, "derivation mismatch")

// Find returns the canonical address and bump of the seeds. The bump is
// the first value, counting down from 255, that yields an address off
// the ed25519 curve.
func Find(programID custody.Address, seeds ...[]byte) (custody.Address, uint8, error) {
	if err := validateSeeds(programID, seeds, MaxSeeds-1); err != nil {
		return nil, 0, err
	}
	pk, bump, err := solana.FindProgramAddress(seeds, programID.PublicKey())
	if err != nil {
		return nil, 0, errors.Wrapf(ErrSeeds, "find: %s", err)
	}
	return custody.AddressFromPublicKey(pk), bump, nil
}

// Create computes the address of the seeds, the bump included. It fails
// if the result lies on the curve.
func Create(programID custody.Address, seeds ...[]byte) (custody.Address, error) {
	if err := validateSeeds(programID, seeds, MaxSeeds); err != nil {
		return nil, err
	}
	pk, err := solana.CreateProgramAddress(seeds, programID.PublicKey())
	if err != nil {
		return nil, errors.Wrapf(ErrSeeds, "create: %s", err)
	}
	return custody.AddressFromPublicKey(pk), nil
}

// Verify checks that seeds and bump derive address.
func Verify(programID, address custody.Address, seeds [][]byte, bump uint8) error {
	got, err := Create(programID, withBump(seeds, bump)...)
	if err != nil {
		return err
	}
	if !got.Equals(address) {
		return errors.Wrapf(ErrSeeds, "want %s, derived %s", address, got)
	}
	return nil
}

// Uint64Seed encodes v as an 8 byte little endian seed.
func Uint64Seed(v uint64) []byte {
	raw := make([]byte, 8)
	binary.LittleEndian.PutUint64(raw, v)
	return raw
}

func withBump(seeds [][]byte, bump uint8) [][]byte {
	res := make([][]byte, 0, len(seeds)+1)
	res = append(res, seeds...)
	return append(res, []byte{bump})
}

func validateSeeds(programID custody.Address, seeds [][]byte, max int) error {
	if err := programID.Validate(); err != nil {
		return errors.Wrap(err, "program id")
	}
	if len(seeds) > max {
		return errors.Wrapf(errors.ErrInput, "too many seeds: %d", len(seeds))
	}
	for i, s := range seeds {
		if len(s) > MaxSeedLength {
			return errors.Wrapf(errors.ErrInput, "seed %d is %d bytes long", i, len(s))
		}
	}
	return nil
}
