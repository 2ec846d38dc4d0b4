// Package config loads command configuration from TALLY_* environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables into target.
// Struct fields declare their variable with `env:"TALLY_..."` tags and
// their fallback with `envDefault`.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
