package pda

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Signer authorizes operations on behalf of a single program derived
// address. It can only be created from seeds that derive that address.
// The seeds are not exposed.
type Signer struct {
	programID custody.Address
	address   custody.Address
	seeds     [][]byte
}

// NewSigner verifies that seeds and bump derive address under programID
// and returns a signer bound to it.
func NewSigner(programID, address custody.Address, seeds [][]byte, bump uint8) (*Signer, error) {
	if err := Verify(programID, address, seeds, bump); err != nil {
		return nil, err
	}
	own := make([][]byte, len(seeds)+1)
	for i, s := range seeds {
		own[i] = append([]byte(nil), s...)
	}
	own[len(seeds)] = []byte{bump}
	return &Signer{
		programID: programID.Clone(),
		address:   address.Clone(),
		seeds:     own,
	}, nil
}

// Address returns the address this signer authorizes.
func (s *Signer) Address() custody.Address {
	return s.address.Clone()
}

// Bump returns the bump seed completing the derivation.
func (s *Signer) Bump() uint8 {
	return s.seeds[len(s.seeds)-1][0]
}

// Authorizes returns true only for the address the signer was created
// for. The address is derived again from the stored seeds, so a Signer
// value not created by NewSigner authorizes nothing.
func (s *Signer) Authorizes(_ custody.Context, addr custody.Address) bool {
	if s == nil || !s.address.Equals(addr) {
		return false
	}
	return s.verify() == nil
}

func (s *Signer) verify() error {
	if s == nil || len(s.seeds) == 0 {
		return errors.Wrap(ErrSeeds, "empty signer")
	}
	got, err := Create(s.programID, s.seeds...)
	if err != nil {
		return err
	}
	if !got.Equals(s.address) {
		return errors.Wrap(ErrSeeds, "signer seeds")
	}
	return nil
}
