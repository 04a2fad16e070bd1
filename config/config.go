// Package config loads prompt-keeper settings from defaults, an optional
// YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/spf13/viper"
)

// Config is the resolved configuration.
type Config struct {
	Host          string        `mapstructure:"host"`
	Port          string        `mapstructure:"port"`
	DataDir       string        `mapstructure:"data_dir"`
	Backend       string        `mapstructure:"backend"`
	SQLiteDriver  string        `mapstructure:"sqlite_driver"`
	RemoteURL     string        `mapstructure:"remote_url"`
	LogMode       string        `mapstructure:"log_mode"`
	AutosaveDelay time.Duration `mapstructure:"autosave_delay"`
	Watch         bool          `mapstructure:"watch"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Host:          "127.0.0.1",
		Port:          "3001",
		DataDir:       "./data",
		Backend:       "file",
		SQLiteDriver:  "sqlite",
		RemoteURL:     "http://127.0.0.1:3001",
		LogMode:       "dev",
		AutosaveDelay: 800 * time.Millisecond,
		Watch:         true,
	}
}

// Load reads configuration. cfgFile may be empty, in which case config.yaml
// is looked up in the working directory and $HOME/.prompt-keeper; a missing
// file is not an error. Environment variables use the PROMPTKEEPER_ prefix,
// and PORT / DATA_DIR are honoured as well.
func Load(cfgFile string) (Config, error) {
	v := viper.New()

	d := DefaultConfig()
	v.SetDefault("host", d.Host)
	v.SetDefault("port", d.Port)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("backend", d.Backend)
	v.SetDefault("sqlite_driver", d.SQLiteDriver)
	v.SetDefault("remote_url", d.RemoteURL)
	v.SetDefault("log_mode", d.LogMode)
	v.SetDefault("autosave_delay", d.AutosaveDelay)
	v.SetDefault("watch", d.Watch)

	v.SetEnvPrefix("PROMPTKEEPER")
	v.AutomaticEnv()
	_ = v.BindEnv("port", "PROMPTKEEPER_PORT", "PORT")
	_ = v.BindEnv("data_dir", "PROMPTKEEPER_DATA_DIR", "DATA_DIR")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.prompt-keeper")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown backends and drivers.
func (c Config) Validate() error {
	switch c.Backend {
	case "file", "sqlite", "remote":
	default:
		return fmt.Errorf("unknown backend %q (want file, sqlite or remote)", c.Backend)
	}
	switch c.SQLiteDriver {
	case "sqlite", "sqlite3":
	default:
		return fmt.Errorf("unknown sqlite_driver %q (want sqlite or sqlite3)", c.SQLiteDriver)
	}
	if c.Backend == "remote" && c.RemoteURL == "" {
		return errors.New("remote_url is required for the remote backend")
	}
	if c.AutosaveDelay < 0 {
		return errors.New("autosave_delay must not be negative")
	}
	return nil
}

// Addr is the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}
