// Package config resolves client settings from defaults, TOML files, a .env
// file, the environment and command-line flags, in that order.
package config

import (
	"fmt"
	"time"
)

const (
	DefaultAPIURL    = "http://localhost:3000"
	DefaultStateDir  = "~/.tada"
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
	DefaultTheme     = "classic"

	userConfigName    = "config.toml"
	projectConfigName = ".tada.toml"
	dotEnvName        = ".env"
)

// Config holds all client settings.
type Config struct {
	APIURL    string   `toml:"api_url"`
	StateDir  string   `toml:"state_dir"`
	LogLevel  string   `toml:"log_level"`
	LogFormat string   `toml:"log_format"`
	Theme     string   `toml:"theme"`
	Timeout   Duration `toml:"timeout"`

	// Token overrides the stored session token. Only ever set from TADA_TOKEN.
	Token string `toml:"-"`

	// Files lists the config files that were applied, lowest priority first.
	Files []string `toml:"-"`
}

// Duration is a time.Duration written as a Go duration string ("30s").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("duration %q: %w", string(b), err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	if d.Duration == 0 {
		return []byte(""), nil
	}
	return []byte(d.Duration.String()), nil
}

func setDefaults(cfg *Config) {
	cfg.APIURL = DefaultAPIURL
	cfg.StateDir = DefaultStateDir
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.Theme = DefaultTheme
}
