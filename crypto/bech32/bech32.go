// Package bech32 encodes addresses under a fixed human readable part.
package bech32

import (
	"github.com/btcsuite/btcutil/bech32"
	"github.com/iov-one/custody/errors"
)

// Encode returns payload in bech32 under hrp.
func Encode(hrp string, payload []byte) (string, error) {
	groups, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInput, "bech32: %s", err)
	}
	raw, err := bech32.Encode(hrp, groups)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInput, "bech32: %s", err)
	}
	return raw, nil
}

// Decode returns the payload of raw. A valid string under any other
// human readable part than hrp is rejected.
func Decode(hrp, raw string) ([]byte, error) {
	got, groups, err := bech32.Decode(raw)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "bech32: %s", err)
	}
	if got != hrp {
		return nil, errors.Wrapf(errors.ErrInput, "bech32: prefix %q, want %q", got, hrp)
	}
	payload, err := bech32.ConvertBits(groups, 5, 8, false)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "bech32: %s", err)
	}
	return payload, nil
}
