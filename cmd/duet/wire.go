// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duet Contributors

package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/duet-chat/duet/internal/config"
	"github.com/duet-chat/duet/internal/provider"
	"github.com/duet-chat/duet/internal/provider/gemini"
	"github.com/duet-chat/duet/internal/provider/groq"
	"github.com/duet-chat/duet/internal/secrets"
	"github.com/duet-chat/duet/internal/server"
	"github.com/duet-chat/duet/internal/store"
	_ "github.com/duet-chat/duet/internal/store/sqlite" // registers the sqlite backend
	duerr "github.com/duet-chat/duet/pkg/errors"
)

// defaultConfigPath is a package-level variable so tests can redirect config
// discovery away from the real home directory.
var defaultConfigPath = config.DefaultConfigPath

// loadConfig loads configuration honoring the --config flag and the default
// config location.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(configPath(cmd))
}

// storagePath returns the configured storage location, or the default path
// for the backend under ~/.local/share/duet.
func storagePath(cfg *config.Config) (string, error) {
	if cfg.Storage.Path != "" {
		return cfg.Storage.Path, nil
	}

	file := "sessions.json"
	if cfg.Storage.Backend == "sqlite" {
		file = "duet.db"
	}
	return config.DefaultStatePath(file)
}

// openStore builds the session store on the configured persistence backend.
// The returned Saver must be closed by the caller.
func openStore(cfg *config.Config) (*store.Store, store.Saver, error) {
	path, err := storagePath(cfg)
	if err != nil {
		return nil, nil, err
	}

	saver, err := store.NewSaver(cfg.Storage.Backend, path)
	if err != nil {
		return nil, nil, err
	}

	return store.New(store.Config{Saver: saver}), saver, nil
}

// buildRegistry resolves provider secrets and constructs the provider
// registry: Groq primary, Gemini secondary. Both API keys are required.
func buildRegistry(cfg *config.Config, secretStore secrets.Store) (*provider.Registry, error) {
	if err := secrets.ResolveProviderKeys(cfg.Providers, secretStore); err != nil {
		return nil, err
	}

	if errs := cfg.RequireProviderKeys("groq", "gemini"); len(errs) > 0 {
		return nil, duerr.Wrapf(errors.Join(errs...), duerr.CodeConfigValidateInvalidValue, "provider credentials missing")
	}

	primary, err := groq.New(groq.Config{
		APIKey:  cfg.Providers["groq"].APIKey,
		BaseURL: cfg.Providers["groq"].Endpoint,
	})
	if err != nil {
		return nil, err
	}

	secondary, err := gemini.New(gemini.Config{
		APIKey:  cfg.Providers["gemini"].APIKey,
		BaseURL: cfg.Providers["gemini"].Endpoint,
	})
	if err != nil {
		return nil, err
	}

	reg := provider.NewRegistry(primary)
	if err := reg.Register(secondary); err != nil {
		return nil, err
	}
	return reg, nil
}

// buildServer assembles the HTTP proxy from configuration.
func buildServer(cfg *config.Config, reg *provider.Registry) (*server.Server, error) {
	return server.New(server.Config{
		ListenAddr:     cfg.Server.Listen,
		CORSOrigins:    cfg.Server.CORSOrigins,
		CooldownWindow: time.Duration(cfg.Server.CooldownMS) * time.Millisecond,
	}, reg)
}
