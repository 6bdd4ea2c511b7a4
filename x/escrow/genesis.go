package escrow

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/gconf"
)

// Initializer stores the escrow program id. Escrows cannot be created
// at genesis, they always start with a deposit.
type Initializer struct{}

var _ custody.Initializer = Initializer{}

// FromGenesis expects
//
//	"conf": {"escrow": {"program_id": "..."}}
func (Initializer) FromGenesis(opts custody.Options, db custody.KVStore) error {
	var conf Configuration
	if err := gconf.InitConfig(db, opts, "escrow", &conf); err != nil {
		return errors.Wrap(err, "init config")
	}
	return nil
}
