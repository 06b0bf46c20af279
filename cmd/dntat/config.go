package main

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/eth2030/dntat/log"
)

// envPrefix is prepended to every environment override, e.g. DNTAT_SIGNERS.
const envPrefix = "DNTAT"

// Config holds the resolved settings for all subcommands. Values come from
// defaults, an optional config file, DNTAT_* environment variables and
// flags, in increasing order of precedence.
type Config struct {
	Signers   int    `mapstructure:"signers"`
	Rounds    int    `mapstructure:"rounds"`
	Workers   int    `mapstructure:"workers"`
	Parallel  int    `mapstructure:"parallel"`
	Sweep     []int  `mapstructure:"sweep"`
	Proof     bool   `mapstructure:"proof"`
	Backend   string `mapstructure:"backend"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	Chart     string `mapstructure:"chart"`
	Metrics   string `mapstructure:"metrics"`
}

// DefaultConfig returns the settings used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Signers:   4,
		Rounds:    32,
		Workers:   0,
		Parallel:  runtime.GOMAXPROCS(0),
		Proof:     false,
		Backend:   "gnark",
		LogLevel:  "info",
		LogFormat: log.FormatAuto,
	}
}

// Validate checks configuration values for correctness.
func (c *Config) Validate() error {
	if c.Signers < 1 {
		return fmt.Errorf("config: signers must be at least 1, got %d", c.Signers)
	}
	if c.Rounds < 1 {
		return fmt.Errorf("config: rounds must be at least 1, got %d", c.Rounds)
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: invalid workers: %d", c.Workers)
	}
	if c.Parallel < 1 {
		return fmt.Errorf("config: parallel must be at least 1, got %d", c.Parallel)
	}
	for _, n := range c.Sweep {
		if n < 1 {
			return fmt.Errorf("config: invalid sweep entry %d", n)
		}
	}
	if _, ok := pairingBackends[c.Backend]; !ok {
		return fmt.Errorf("config: unknown pairing backend %q (available: %s)", c.Backend, strings.Join(backendNames(), ", "))
	}
	if !log.ValidLevel(c.LogLevel) {
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case log.FormatAuto, log.FormatText, log.FormatJSON:
	default:
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}
	return nil
}

// SignerCounts returns the signer counts to benchmark: the sweep if set,
// otherwise the single configured count.
func (c *Config) SignerCounts() []int {
	if len(c.Sweep) > 0 {
		return c.Sweep
	}
	return []int{c.Signers}
}

// newViper returns a viper instance seeded with the defaults and wired to
// the environment.
func newViper() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()
	v.SetDefault("signers", d.Signers)
	v.SetDefault("rounds", d.Rounds)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("parallel", d.Parallel)
	v.SetDefault("sweep", []int{})
	v.SetDefault("proof", d.Proof)
	v.SetDefault("backend", d.Backend)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("chart", d.Chart)
	v.SetDefault("metrics", d.Metrics)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// bindFlags binds every flag in fs whose name maps to a config key. Flag
// names use dashes; keys use underscores.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if key == "config" {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}

// LoadConfig resolves the configuration. path may be empty, in which case
// only defaults, environment and flags apply.
func LoadConfig(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
