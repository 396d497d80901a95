// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duet Contributors

// Package config loads and validates the duet configuration from YAML and
// environment variables.
package config

import (
	"errors"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	duerr "github.com/duet-chat/duet/pkg/errors"
)

// Config is the top-level duet configuration.
type Config struct {
	Server    ServerConfig              `mapstructure:"server"`
	Providers map[string]ProviderConfig `mapstructure:"providers"`
	Storage   StorageConfig             `mapstructure:"storage"`
}

// ServerConfig controls how the proxy listens for connections.
type ServerConfig struct {
	Listen      string   `mapstructure:"listen"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	// CooldownMS is the minimum interval between accepted chat requests,
	// in milliseconds.
	CooldownMS int `mapstructure:"cooldown_ms"`
}

// ProviderConfig holds credentials and endpoint for a model provider. An
// APIKey may be a keyring:// reference resolved at startup.
type ProviderConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Endpoint string `mapstructure:"endpoint"`
}

// StorageConfig selects the session storage backend.
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix DUET_).
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.listen", "127.0.0.1:8787")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.cooldown_ms", 2000)
	v.SetDefault("storage.backend", "file")

	// Environment
	v.SetEnvPrefix("DUET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// File
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, duerr.Errorf(duerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, duerr.Errorf(duerr.CodeConfigValidateInvalidValue, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, duerr.Errorf(duerr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Validate checks the configuration for logical errors. It returns a slice
// of all validation errors found, collecting all issues rather than stopping
// at the first one. Provider key presence is not checked here; keys may be
// keyring references resolved later, so RequireProviderKeys runs after
// secret resolution.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateServer()...)
	errs = append(errs, c.validateStorage()...)

	return errs
}

// RequireProviderKeys verifies that each named provider has a non-empty API
// key after secret resolution. The proxy refuses to start without all of
// them.
func (c *Config) RequireProviderKeys(names ...string) []error {
	var errs []error

	for _, name := range names {
		p, ok := c.Providers[name]
		if !ok || p.APIKey == "" {
			errs = append(errs, duerr.Errorf(duerr.CodeConfigValidateInvalidValue,
				"config: providers.%s.api_key must be set", name))
		}
	}

	return errs
}

func (c *Config) validateServer() []error {
	var errs []error

	if c.Server.Listen == "" {
		errs = append(errs, duerr.Errorf(duerr.CodeConfigValidateInvalidValue, "config: server.listen must not be empty"))
	} else {
		_, portStr, err := net.SplitHostPort(c.Server.Listen)
		if err != nil {
			errs = append(errs, duerr.Errorf(duerr.CodeConfigValidateInvalidValue,
				"config: server.listen must be a valid host:port address, got %q: %w",
				c.Server.Listen, err,
			))
		} else {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				errs = append(errs, duerr.Errorf(duerr.CodeConfigValidateInvalidValue,
					"config: server.listen port must be a number, got %q",
					portStr,
				))
			} else if port < 0 || port > 65535 {
				errs = append(errs, duerr.Errorf(duerr.CodeConfigValidateInvalidValue,
					"config: server.listen port must be between 0 and 65535, got %d",
					port,
				))
			}
		}
	}

	if c.Server.CooldownMS < 0 {
		errs = append(errs, duerr.Errorf(duerr.CodeConfigValidateInvalidValue,
			"config: server.cooldown_ms must not be negative, got %d",
			c.Server.CooldownMS,
		))
	}

	return errs
}

func (c *Config) validateStorage() []error {
	var errs []error

	validBackends := map[string]bool{"file": true, "sqlite": true}
	if !validBackends[c.Storage.Backend] {
		errs = append(errs, duerr.Errorf(duerr.CodeConfigValidateInvalidValue,
			"config: storage.backend must be one of [file, sqlite], got %q",
			c.Storage.Backend,
		))
	}

	return errs
}
