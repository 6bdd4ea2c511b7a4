package x

import (
	"github.com/iov-one/custody"
)

// Authority decides whether an operation on behalf of an address is
// authorized. Transaction signatures and program derived signers both
// implement it.
type Authority interface {
	Authorizes(ctx custody.Context, addr custody.Address) bool
}

// SignedBy returns an Authority accepting every address that signed
// the transaction.
func SignedBy(auth Authenticator) Authority {
	return signedBy{auth: auth}
}

type signedBy struct {
	auth Authenticator
}

func (s signedBy) Authorizes(ctx custody.Context, addr custody.Address) bool {
	return s.auth.HasAddress(ctx, addr)
}

// AnyAuthority accepts an address if at least one of the authorities
// does.
func AnyAuthority(as ...Authority) Authority {
	return anyAuthority(as)
}

type anyAuthority []Authority

func (a anyAuthority) Authorizes(ctx custody.Context, addr custody.Address) bool {
	for _, auth := range a {
		if auth != nil && auth.Authorizes(ctx, addr) {
			return true
		}
	}
	return false
}
