package escrow

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/gconf"
)

// DefaultProgramID is the escrow program id used when none is
// configured.
var DefaultProgramID = custody.MustParseAddress("GarK4y9Qe5Sjrk3u26zDT1Y2M3nPcbUMA7gT6L98JtEn")

// Configuration is stored as conf.escrow.
type Configuration struct {
	// ProgramID owns escrow records and derives their addresses.
	ProgramID custody.Address `json:"program_id"`
}

func (c *Configuration) Validate() error {
	if err := c.ProgramID.Validate(); err != nil {
		return errors.Field("ProgramID", err, "")
	}
	return nil
}

func loadConf(db gconf.ReadStore) (Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, "escrow", &conf); err != nil {
		return conf, errors.Wrap(err, "load configuration")
	}
	return conf, nil
}
