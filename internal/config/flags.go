package config

import (
	"flag"
	"time"
)

// parseFlags registers the global flags on fs, parses args and applies only
// the flags that were set explicitly. Remaining args stay in fs.Args().
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	apiURL := fs.String("api", "", "backend base URL (default "+DefaultAPIURL+")")
	stateDir := fs.String("state-dir", "", "directory holding the session cookie (default "+DefaultStateDir+")")
	logLevel := fs.String("log-level", "", "debug|info|warn|error")
	logFormat := fs.String("log-format", "", "text|json|logfmt")
	theme := fs.String("theme", "", "classic|neon|mono")
	timeout := fs.Duration("timeout", 0, "per-request timeout, 0 waits forever")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "api":
			cfg.APIURL = *apiURL
		case "state-dir":
			cfg.StateDir = *stateDir
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-format":
			cfg.LogFormat = *logFormat
		case "theme":
			cfg.Theme = *theme
		case "timeout":
			cfg.Timeout = Duration{Duration: *timeout}
		}
	})
	return nil
}

// RequestTimeout returns the configured per-request timeout (0 = none).
func (c *Config) RequestTimeout() time.Duration {
	return c.Timeout.Duration
}
