package token

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/gconf"
	"github.com/iov-one/custody/x/system"
)

const optKey = "token"

// GenesisMint declares a mint created at genesis.
type GenesisMint struct {
	Address         custody.Address `json:"address"`
	Decimals        uint8           `json:"decimals"`
	MintAuthority   custody.Address `json:"mint_authority"`
	FreezeAuthority custody.Address `json:"freeze_authority"`
}

// GenesisAccount issues tokens into the associated account of an owner.
type GenesisAccount struct {
	Owner  custody.Address `json:"owner"`
	Mint   custody.Address `json:"mint"`
	Amount uint64          `json:"amount"`
}

// Initializer loads the program ids, the mints and the initial token
// balances. It must run after the system initializer.
type Initializer struct{}

var _ custody.Initializer = Initializer{}

// FromGenesis expects
//
//	"conf": {"token": {"token_program": "...", "associated_program": "..."}},
//	"token": {
//	  "mints": [{"address": "...", "decimals": 6}],
//	  "accounts": [{"owner": "...", "mint": "...", "amount": 1000}]
//	}
func (Initializer) FromGenesis(opts custody.Options, db custody.KVStore) error {
	var conf Configuration
	if err := gconf.InitConfig(db, opts, "token", &conf); err != nil {
		return errors.Wrap(err, "init config")
	}

	var state struct {
		Mints    []GenesisMint    `json:"mints"`
		Accounts []GenesisAccount `json:"accounts"`
	}
	if err := opts.ReadOptions(optKey, &state); err != nil {
		return errors.Wrapf(errors.ErrInput, "token genesis: %s", err)
	}

	ctrl := NewController(system.NewController())
	for i, m := range state.Mints {
		if err := m.Address.Validate(); err != nil {
			return errors.Wrapf(err, "mint %d", i)
		}
		mint := Mint{
			Decimals:        m.Decimals,
			MintAuthority:   m.MintAuthority,
			FreezeAuthority: m.FreezeAuthority,
		}
		if err := ctrl.CreateMint(db, m.Address, &mint); err != nil {
			return errors.Wrapf(err, "mint %d", i)
		}
	}
	for i, a := range state.Accounts {
		if _, err := ctrl.MintTo(db, a.Owner, a.Mint, a.Amount); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
	}
	return nil
}
