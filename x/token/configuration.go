package token

import (
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/gconf"
)

// Configuration holds the program ids of the ledger, stored as
// conf.token.
type Configuration struct {
	// TokenProgram owns every mint and token account.
	TokenProgram custody.Address `json:"token_program"`
	// AssociatedProgram derives associated token account addresses.
	AssociatedProgram custody.Address `json:"associated_program"`
}

// DefaultConfiguration returns the program ids used on solana clusters.
func DefaultConfiguration() Configuration {
	return Configuration{
		TokenProgram:      custody.AddressFromPublicKey(solana.TokenProgramID),
		AssociatedProgram: custody.AddressFromPublicKey(solana.SPLAssociatedTokenAccountProgramID),
	}
}

func (c *Configuration) Validate() error {
	if err := c.TokenProgram.Validate(); err != nil {
		return errors.Wrap(err, "token program")
	}
	if err := c.AssociatedProgram.Validate(); err != nil {
		return errors.Wrap(err, "associated program")
	}
	if c.TokenProgram.Equals(c.AssociatedProgram) {
		return errors.Wrap(errors.ErrInput, "programs must differ")
	}
	return nil
}

func loadConf(db gconf.ReadStore) (Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, "token", &conf); err != nil {
		return conf, errors.Wrap(err, "load configuration")
	}
	return conf, nil
}
