package cli

import "github.com/caarlos0/env/v11"

// Config holds environment-derived defaults. Flags, when set, win over
// the environment.
type Config struct {
	// Journal is the default journal database path.
	Journal string `env:"GLEAN_JOURNAL" envDefault:"glean.db"`

	// Rules is the default trait table path. Empty means the built-in
	// table.
	Rules string `env:"GLEAN_RULES"`

	// LogLevel sets the base log level (debug|info|warn|error).
	LogLevel string `env:"GLEAN_LOG_LEVEL" envDefault:"info"`
}

// LoadConfig reads configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
