package server

import (
	"encoding/json"
	"flag"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/iov-one/custody/errors"
	"github.com/tendermint/tendermint/libs/log"
)

const flagGenesis = "genesis"

// GenOptions can parse command-line and flag to
// generate default app_state for the genesis file.
// This is application-specific
type GenOptions func(args []string) (json.RawMessage, error)

// InitCmd writes the default config.toml into home, unless one exists,
// and adds the app_state produced by gen to the tendermint genesis
// file. The genesis file must already exist, create it with
// `tendermint init`.
func InitCmd(gen GenOptions, logger log.Logger, home string, args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	genesis := fs.String(flagGenesis, filepath.Join(os.ExpandEnv("$HOME"), ".tendermint", "config", "genesis.json"),
		"tendermint genesis file to update")
	if err := fs.Parse(args); err != nil {
		return err
	}

	confPath := filepath.Join(home, ConfigFile)
	if fileExists(confPath) {
		logger.Info("Found config file", "path", confPath)
	} else {
		if err := WriteConfig(confPath, DefaultConfig()); err != nil {
			return err
		}
		logger.Info("Generated config file", "path", confPath)
	}

	options, err := gen(fs.Args())
	if err != nil {
		return err
	}
	if err := addGenesisOptions(*genesis, options); err != nil {
		return err
	}
	logger.Info("Updated genesis file", "path", *genesis)
	return nil
}

func fileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return !os.IsNotExist(err)
}

// GenesisDoc involves some tendermint-specific structures we don't
// want to parse, so we just grab it into a raw object format,
// so we can add one line.
type GenesisDoc map[string]json.RawMessage

func addGenesisOptions(filename string, options json.RawMessage) error {
	bz, err := ioutil.ReadFile(filename)
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}

	var doc GenesisDoc
	if err := json.Unmarshal(bz, &doc); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot parse %s: %s", filename, err)
	}

	doc["app_state"] = options
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrType, err.Error())
	}
	return ioutil.WriteFile(filename, out, 0600)
}
