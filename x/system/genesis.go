package system

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/gconf"
)

const optKey = "system"

// GenesisAccount is a wallet funded at genesis.
type GenesisAccount struct {
	Address  custody.Address `json:"address"`
	Lamports uint64          `json:"lamports"`
}

// Initializer loads the rent configuration and the funded wallets from
// the genesis file.
type Initializer struct{}

var _ custody.Initializer = Initializer{}

// FromGenesis expects
//
//	"conf": {"system": {"lamports_per_byte_year": 3480, "exemption_threshold": 2}},
//	"system": {"accounts": [{"address": "...", "lamports": 1000000000}]}
func (Initializer) FromGenesis(opts custody.Options, db custody.KVStore) error {
	var conf Configuration
	if err := gconf.InitConfig(db, opts, "system", &conf); err != nil {
		return errors.Wrap(err, "init config")
	}

	var state struct {
		Accounts []GenesisAccount `json:"accounts"`
	}
	if err := opts.ReadOptions(optKey, &state); err != nil {
		return errors.Wrapf(errors.ErrInput, "system genesis: %s", err)
	}
	ctrl := NewController()
	for i, a := range state.Accounts {
		if err := a.Address.Validate(); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
		if err := ctrl.Allocate(db, a.Address, a.Lamports, 0, ProgramID); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
	}
	return nil
}

// RegisterQuery registers the accounts bucket as "/accounts".
func RegisterQuery(qr custody.QueryRouter) {
	NewBucket().Register("accounts", qr)
}
