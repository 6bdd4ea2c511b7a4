package server

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/iov-one/custody/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// ConfigFile is the name of the node configuration inside the home
// directory.
const ConfigFile = "config.toml"

// Config is the node configuration. Command line flags take precedence
// over the file.
type Config struct {
	// Bind is the address the ABCI server listens on.
	Bind string `toml:"bind"`
	// LogLevel is one of debug, info, error or none.
	LogLevel string `toml:"log_level"`
	// Debug returns full error details in ABCI responses.
	Debug bool `toml:"debug"`
	// MetricsAddr exposes prometheus metrics over HTTP when set.
	MetricsAddr string `toml:"metrics_addr"`
	// DBDir holds the application database. Relative to home.
	DBDir string `toml:"db_dir"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Bind:     "tcp://localhost:26658",
		LogLevel: "info",
		DBDir:    "data",
	}
}

// Validate checks the values that cannot be used as given.
func (c Config) Validate() error {
	if c.Bind == "" {
		return errors.Field("Bind", errors.ErrEmpty, "required")
	}
	if _, err := log.AllowLevel(c.LogLevel); err != nil {
		return errors.Field("LogLevel", errors.ErrInput, err.Error())
	}
	if c.DBDir == "" {
		return errors.Field("DBDir", errors.ErrEmpty, "required")
	}
	return nil
}

// DBPath returns the database location for the given home directory.
func (c Config) DBPath(home string) string {
	if filepath.IsAbs(c.DBDir) {
		return c.DBDir
	}
	return filepath.Join(home, c.DBDir)
}

// LoadConfig reads the configuration file. A missing file yields the
// defaults. Unknown keys are rejected, they are most likely typos.
func LoadConfig(path string) (Config, error) {
	conf := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return conf, nil
	}
	md, err := toml.DecodeFile(path, &conf)
	if err != nil {
		return conf, errors.Wrapf(errors.ErrInput, "cannot decode %s: %s", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return conf, errors.Wrapf(errors.ErrInput, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := conf.Validate(); err != nil {
		return conf, errors.Wrap(err, path)
	}
	return conf, nil
}

// WriteConfig stores conf at path, creating the directory if needed.
func WriteConfig(path string, conf Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(conf); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}

// FilterLogger restricts logger to the configured level.
func FilterLogger(logger log.Logger, level string) (log.Logger, error) {
	if level == "" {
		return logger, nil
	}
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return log.NewFilter(logger, opt), nil
}
