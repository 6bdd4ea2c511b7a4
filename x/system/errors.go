package system

import "github.com/iov-one/custody/errors"

// ErrAccountInUse is returned when creating an account at an address
// that already holds one.
var ErrAccountInUse = errors.Register(200, "account already in use")
