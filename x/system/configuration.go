package system

import (
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/gconf"
)

const (
	// AccountStorageOverhead is the number of bytes every account costs
	// on top of its data.
	AccountStorageOverhead = 128

	DefaultLamportsPerByteYear = 3480
	DefaultExemptionThreshold  = 2
)

// Configuration holds the rent parameters, stored as conf.system.
type Configuration struct {
	LamportsPerByteYear uint64 `json:"lamports_per_byte_year"`
	ExemptionThreshold  uint64 `json:"exemption_threshold"`
}

// DefaultConfiguration returns the parameters of a solana cluster.
func DefaultConfiguration() Configuration {
	return Configuration{
		LamportsPerByteYear: DefaultLamportsPerByteYear,
		ExemptionThreshold:  DefaultExemptionThreshold,
	}
}

func (c *Configuration) Validate() error {
	if c.LamportsPerByteYear == 0 {
		return errors.Wrap(errors.ErrAmount, "lamports per byte year")
	}
	if c.ExemptionThreshold == 0 {
		return errors.Wrap(errors.ErrAmount, "exemption threshold")
	}
	return nil
}

// MinimumBalance returns the lamports an account of the given data size
// must hold to be rent exempt.
func (c Configuration) MinimumBalance(space uint64) uint64 {
	return (space + AccountStorageOverhead) * c.LamportsPerByteYear * c.ExemptionThreshold
}

func loadConf(db gconf.ReadStore) (Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, "system", &conf); err != nil {
		return conf, errors.Wrap(err, "load configuration")
	}
	return conf, nil
}
