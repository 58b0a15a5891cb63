package server

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/iov-one/jobchain/errors"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	configFile = "jobchaind.toml"

	// DBBackendLevelDB persists the state under the home directory.
	DBBackendLevelDB = "goleveldb"
	// DBBackendMemory keeps the state in memory. Use it for tests only.
	DBBackendMemory = "memdb"
)

// Config is the daemon configuration. It is read from
// <home>/config/jobchaind.toml and every value can be overridden with a
// command line flag.
type Config struct {
	ABCIAddress string `toml:"abci_address"`
	// OpsAddress is where /metrics, /healthz and /status are served.
	// Empty disables the operations server.
	OpsAddress string `toml:"ops_address"`
	LogLevel   string `toml:"log_level"`
	DBBackend  string `toml:"db_backend"`
	Debug      bool   `toml:"debug"`
}

// DefaultConfig returns the configuration used for values missing from the
// configuration file.
func DefaultConfig() Config {
	return Config{
		ABCIAddress: "tcp://localhost:26658",
		OpsAddress:  "localhost:26660",
		LogLevel:    "info",
		DBBackend:   DBBackendLevelDB,
	}
}

// ConfigPath returns the location of the configuration file.
func ConfigPath(home string) string {
	return filepath.Join(home, "config", configFile)
}

// LoadConfig reads the configuration file on top of the defaults. A missing
// file is not an error.
func LoadConfig(path string) (Config, error) {
	conf := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return conf, nil
	}
	meta, err := toml.DecodeFile(path, &conf)
	if err != nil {
		return conf, errors.Wrapf(errors.ErrInput, "decode %s: %s", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return conf, errors.Wrapf(errors.ErrInput, "%s: unknown key %q", path, undecoded[0].String())
	}
	return conf, conf.Validate()
}

// WriteConfig stores the configuration, creating the directory if needed.
func WriteConfig(path string, conf Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create config directory")
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrap(err, "open config file")
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(conf); err != nil {
		return errors.Wrap(err, "encode config")
	}
	return nil
}

func (c Config) Validate() error {
	var errs error
	if c.ABCIAddress == "" {
		errs = errors.AppendField(errs, "abci_address", errors.ErrEmpty)
	}
	if _, err := log.AllowLevel(c.LogLevel); err != nil {
		errs = errors.AppendField(errs, "log_level", errors.Wrap(errors.ErrInput, err.Error()))
	}
	switch c.DBBackend {
	case DBBackendLevelDB, DBBackendMemory:
	default:
		errs = errors.AppendField(errs, "db_backend", errors.Wrapf(errors.ErrInput, "unknown backend %q", c.DBBackend))
	}
	return errs
}

// FilterLogger limits the logger output to given level and above.
func FilterLogger(logger log.Logger, level string) (log.Logger, error) {
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return log.NewFilter(logger, opt), nil
}
