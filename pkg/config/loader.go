// Package config loads service configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses the process environment into cfg, a pointer to a struct using
// `env` and `envDefault` tags:
//
//	type Config struct {
//	    Port     int    `env:"SEARCH_HTTP_PORT" envDefault:"8080"`
//	    LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
//	}
func Load(cfg any) error {
	return LoadFrom(cfg, nil)
}

// LoadFrom parses environment into cfg. A nil map reads the process
// environment.
func LoadFrom(cfg any, environment map[string]string) error {
	var opts env.Options
	if environment != nil {
		opts.Environment = environment
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
