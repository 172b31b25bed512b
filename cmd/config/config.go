package config

import (
	"errors"
	"fmt"
	"path/filepath"

	tmos "github.com/tendermint/tendermint/libs/os"
	dbm "github.com/tendermint/tm-db"
)

const (
	DefaultLogLevel  = "info"
	DefaultDBBackend = string(dbm.GoLevelDBBackend)
	DefaultDBDir     = "data"
	DefaultConfigDir = "config"
)

// Config is filled by viper from $HOME/config/config.toml, CURVE_* env vars and flags.
type Config struct {
	RootDir string `mapstructure:"home"`

	LogLevel string `mapstructure:"log_level"`

	DBBackend string `mapstructure:"db_backend"`
	DBPath    string `mapstructure:"db_dir"`

	// TablesPath overrides the embedded discrete pricing tables.
	TablesPath string `mapstructure:"tables"`
	// Workers is the number of goroutines used to generate or verify tables.
	Workers int `mapstructure:"workers"`

	JSONOutput bool `mapstructure:"json"`
	// FixedInput parses amount flags as 7-digit fixed-point numbers.
	FixedInput bool `mapstructure:"fixed"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel:  DefaultLogLevel,
		DBBackend: DefaultDBBackend,
		DBPath:    DefaultDBDir,
		Workers:   4,
	}
}

func (c *Config) SetRoot(root string) *Config {
	c.RootDir = root
	return c
}

func (c *Config) DBDir() string {
	return rootify(c.DBPath, c.RootDir)
}

func (c *Config) ConfigDir() string {
	return filepath.Join(c.RootDir, DefaultConfigDir)
}

// TablesFile returns the absolute path of the table override, or "" when the embedded tables are used.
func (c *Config) TablesFile() string {
	if c.TablesPath == "" {
		return ""
	}
	return rootify(c.TablesPath, c.RootDir)
}

func (c *Config) ValidateBasic() error {
	if c.Workers <= 0 {
		return errors.New("workers can't be zero or negative")
	}
	switch dbm.BackendType(c.DBBackend) {
	case dbm.GoLevelDBBackend, dbm.MemDBBackend:
	default:
		return fmt.Errorf("unsupported db_backend %q", c.DBBackend)
	}
	return nil
}

// EnsureRoot creates the home, config and data directories.
func EnsureRoot(c *Config) error {
	for _, dir := range []string{c.RootDir, c.ConfigDir(), c.DBDir()} {
		if err := tmos.EnsureDir(dir, 0o700); err != nil {
			return err
		}
	}
	return nil
}

func rootify(path, root string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
