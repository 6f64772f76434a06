package formstate

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/goliatone/go-formstate/pkg/session"
)

// Config carries the settings that can be supplied through the environment.
type Config struct {
	KeyPrefix       string `env:"FORMSTATE_KEY_PREFIX"       envDefault:"serialized_field_data"`
	Sanitize        bool   `env:"FORMSTATE_SANITIZE"         envDefault:"false"`
	EmptyValue      string `env:"FORMSTATE_EMPTY_VALUE"`
	ActivityEnabled bool   `env:"FORMSTATE_ACTIVITY_ENABLED" envDefault:"true"`
	ActivityChannel string `env:"FORMSTATE_ACTIVITY_CHANNEL" envDefault:"formstate"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		KeyPrefix:       session.DefaultKeyPrefix,
		ActivityEnabled: true,
		ActivityChannel: "formstate",
	}
}

// ConfigFromEnv reads Config from FORMSTATE_* environment variables.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("formstate: parse env: %w", err)
	}
	return cfg, nil
}
