// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duet Contributors

package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duet-chat/duet/internal/config"
	"github.com/duet-chat/duet/internal/secrets"
	duerr "github.com/duet-chat/duet/pkg/errors"
)

func TestStoragePath_Explicit(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Backend: "file", Path: "/tmp/custom.json"}}

	path, err := storagePath(cfg)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.json", path)
}

func TestStoragePath_Defaults(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Backend: "file"}}
	path, err := storagePath(cfg)
	require.NoError(t, err)
	assert.Equal(t, "sessions.json", filepath.Base(path))

	cfg.Storage.Backend = "sqlite"
	path, err = storagePath(cfg)
	require.NoError(t, err)
	assert.Equal(t, "duet.db", filepath.Base(path))
}

func TestOpenStore_FileBackend(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{Storage: config.StorageConfig{
		Backend: "file",
		Path:    filepath.Join(dir, "sessions.json"),
	}}

	st, saver, err := openStore(cfg)
	require.NoError(t, err)
	defer func() { _ = saver.Close() }()

	// A fresh store always has its initial session.
	require.Len(t, st.Sessions(), 1)
	assert.Equal(t, "default", st.Sessions()[0].Name)
}

func TestOpenStore_UnknownBackend(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Backend: "redis", Path: "/tmp/x"}}

	_, _, err := openStore(cfg)
	require.Error(t, err)
	assert.True(t, duerr.HasCode(err, duerr.CodeStoreBackendInvalid))
}

func TestBuildRegistry_MissingKeys(t *testing.T) {
	cfg := &config.Config{
		Providers: map[string]config.ProviderConfig{
			"groq": {APIKey: "gsk-test"},
		},
	}

	_, err := buildRegistry(cfg, secrets.NewKeyringStore())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini")
}

func TestBuildRegistry_BothProviders(t *testing.T) {
	cfg := &config.Config{
		Providers: map[string]config.ProviderConfig{
			"groq":   {APIKey: "gsk-test"},
			"gemini": {APIKey: "AIza-test"},
		},
	}

	reg, err := buildRegistry(cfg, secrets.NewKeyringStore())
	require.NoError(t, err)

	assert.Equal(t, "groq", reg.Resolve("").Name())
	assert.Equal(t, "gemini", reg.Resolve("gemini").Name())
	// Unknown selectors fall through to the primary.
	assert.Equal(t, "groq", reg.Resolve("gpt-7").Name())
}

func TestBuildRegistry_ResolvesKeyringKeys(t *testing.T) {
	ks := secrets.NewKeyringStore()
	require.NoError(t, ks.Store("duet", "groq-api-key", "gsk-from-keyring"))

	cfg := &config.Config{
		Providers: map[string]config.ProviderConfig{
			"groq":   {APIKey: "keyring://duet/groq-api-key"},
			"gemini": {APIKey: "AIza-test"},
		},
	}

	_, err := buildRegistry(cfg, ks)
	require.NoError(t, err)
	assert.Equal(t, "gsk-from-keyring", cfg.Providers["groq"].APIKey)
}
