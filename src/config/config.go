// Package config provides configuration management for the reaper.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"ci-reaper/src/provider"
)

const (
	DefaultInterval     = 60 * time.Second
	DefaultCycleTimeout = 30 * time.Second
)

// Duration is a time.Duration that reads and writes as a string ("30s", "2m").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config holds the reaper configuration. It is built once at startup and shared
// read-only with every concurrent check.
type Config struct {
	TravisToken     string `toml:"travis_token"`
	AppVeyorToken   string `toml:"appveyor_token"`
	Branch          string `toml:"branch"`
	AppVeyorAccount string `toml:"appveyor_account"`
	// Repositories are "owner/name" identifiers.
	Repositories []string `toml:"repositories"`

	Interval     Duration `toml:"interval"`
	CycleTimeout Duration `toml:"cycle_timeout"`
	// Concurrency caps simultaneous checks per cycle; 0 means unbounded.
	Concurrency int  `toml:"concurrency"`
	DryRun      bool `toml:"dry_run"`
	Verbose     bool `toml:"verbose"`

	TravisBaseURL   string `toml:"travis_base_url"`
	AppVeyorBaseURL string `toml:"appveyor_base_url"`

	// RedpandaBrokers enables publishing cycle events to Redpanda/Kafka.
	RedpandaBrokers []string `toml:"redpanda_brokers"`
	// PostgresDSN enables the cycle history table.
	PostgresDSN string `toml:"postgres_dsn"`
}

// Default returns a configuration with defaults applied and nothing else set.
func Default() *Config {
	return &Config{
		Interval:     Duration{DefaultInterval},
		CycleTimeout: Duration{DefaultCycleTimeout},
	}
}

// Load builds a configuration from defaults, the TOML file at path (skipped
// when path is empty) and environment variables, in increasing precedence:
//   - TRAVIS_TOKEN      overrides travis_token
//   - APPVEYOR_TOKEN    overrides appveyor_token
//   - APPVEYOR_ACCOUNT  overrides appveyor_account
//   - REAPER_BRANCH     overrides branch
//   - REDPANDA_BROKERS  overrides redpanda_brokers (comma separated)
//   - POSTGRES_DSN      overrides postgres_dsn
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRAVIS_TOKEN"); v != "" {
		cfg.TravisToken = v
	}
	if v := os.Getenv("APPVEYOR_TOKEN"); v != "" {
		cfg.AppVeyorToken = v
	}
	if v := os.Getenv("APPVEYOR_ACCOUNT"); v != "" {
		cfg.AppVeyorAccount = v
	}
	if v := os.Getenv("REAPER_BRANCH"); v != "" {
		cfg.Branch = v
	}
	if v := os.Getenv("REDPANDA_BROKERS"); v != "" {
		cfg.RedpandaBrokers = SplitList(v)
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
}

// SplitList splits a comma-separated list, dropping empty entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports every missing or malformed setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.TravisToken == "" {
		errs = append(errs, errors.New("travis token is required (--travis or TRAVIS_TOKEN)"))
	}
	if c.AppVeyorToken == "" {
		errs = append(errs, errors.New("appveyor token is required (--appveyor or APPVEYOR_TOKEN)"))
	}
	if c.Branch == "" {
		errs = append(errs, errors.New("branch is required (--branch or REAPER_BRANCH)"))
	}
	if len(c.Repositories) == 0 {
		errs = append(errs, errors.New("at least one owner/name repository is required"))
	}
	if _, err := provider.ParseRepositories(c.Repositories); err != nil {
		errs = append(errs, err)
	}
	if c.Interval.Duration <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive, got %s", c.Interval.Duration))
	}
	if c.CycleTimeout.Duration <= 0 {
		errs = append(errs, fmt.Errorf("cycle timeout must be positive, got %s", c.CycleTimeout.Duration))
	}
	if c.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency))
	}
	return errors.Join(errs...)
}

// Repos parses the configured repository identifiers.
func (c *Config) Repos() ([]provider.Repository, error) {
	return provider.ParseRepositories(c.Repositories)
}
