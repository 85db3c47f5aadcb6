// Package config loads command configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every env tag, so a field tagged
// `env:"LOCALE"` reads CHARSHEET_LOCALE.
const EnvPrefix = "CHARSHEET_"

// ParseEnv loads configuration from prefixed environment variables.
func ParseEnv(target any) error {
	return parse(target, env.Options{Prefix: EnvPrefix})
}

// ParseEnvFrom loads configuration from the given variables instead of the
// process environment. Keys carry the full prefixed name.
func ParseEnvFrom(target any, environ map[string]string) error {
	return parse(target, env.Options{Prefix: EnvPrefix, Environment: environ})
}

func parse(target any, opts env.Options) error {
	if err := env.ParseWithOptions(target, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
