package token

import "github.com/iov-one/custody/errors"

var (
	// ErrDecimals is returned by a checked transfer when the declared
	// decimals differ from the mint.
	ErrDecimals = errors.Register(300, "mint decimals mismatch")

	// ErrFrozen is returned for operations on a frozen token account.
	ErrFrozen = errors.Register(301, "account frozen")
)
