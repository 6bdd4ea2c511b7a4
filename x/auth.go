package x

import (
	"github.com/iov-one/custody"
)

// Authenticator extracts authentication info from the context. It is
// passed into the constructor of handlers, so that another
// authentication system can be plugged in.
type Authenticator interface {
	// GetSigners returns every address that signed the transaction.
	GetSigners(custody.Context) []custody.Address
	// HasAddress checks if the address signed the transaction.
	HasAddress(custody.Context, custody.Address) bool
}

// MultiAuth chains together many Authenticators into one
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth groups together a series of Authenticator
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls}
}

// GetSigners combines the signers of all Authenticators. Duplicates are
// removed, the order of first appearance is kept.
func (m MultiAuth) GetSigners(ctx custody.Context) []custody.Address {
	var res []custody.Address
	seen := make(map[string]struct{})
	for _, impl := range m.impls {
		for _, a := range impl.GetSigners(ctx) {
			if _, ok := seen[string(a)]; ok {
				continue
			}
			seen[string(a)] = struct{}{}
			res = append(res, a)
		}
	}
	return res
}

// HasAddress returns true iff any Authenticator supports this address
func (m MultiAuth) HasAddress(ctx custody.Context, addr custody.Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// MainSigner returns the first signer if any, otherwise nil
func MainSigner(ctx custody.Context, auth Authenticator) custody.Address {
	signers := auth.GetSigners(ctx)
	if len(signers) == 0 {
		return nil
	}
	return signers[0]
}

// HasAllAddresses returns true if all elements in required are
// also in context.
func HasAllAddresses(ctx custody.Context, auth Authenticator, required []custody.Address) bool {
	for _, r := range required {
		if !auth.HasAddress(ctx, r) {
			return false
		}
	}
	return true
}
