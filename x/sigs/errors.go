package sigs

import "github.com/iov-one/custody/errors"

var (
	ErrInvalidSequence = errors.Register(120, "invalid sequence number")
)
