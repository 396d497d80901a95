// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duet Contributors

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs the root command with the given args and returns its
// combined output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	root := NewRootCmd()
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err := root.Execute()
	return buf.String(), err
}

// writeTestConfig writes a minimal config with storage in a temp dir and
// returns its path.
func writeTestConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "duet.yaml")
	content := fmt.Sprintf(`
storage:
  backend: "file"
  path: %q
`, filepath.Join(dir, "sessions.json"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))
	return cfgPath
}

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	root := NewRootCmd()

	expected := []string{"init", "start", "chat", "session", "secret", "version"}
	for _, name := range expected {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		assert.True(t, found, "missing subcommand %q", name)
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "duet dev")
}

func TestRootCmd_UnknownCommand(t *testing.T) {
	_, err := executeCommand(t, "no-such-command")
	require.Error(t, err)
}

func TestFirstRunBootstrapsDefaultConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	// No --config and nothing at the default location: the first command
	// that loads config writes the commented default there.
	out, err := executeCommand(t, "session", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "default")

	cfgPath := filepath.Join(home, ".config", "duet", "duet.yaml")
	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "cooldown_ms")
}

func TestInitCmd_WritesConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "duet.yaml")

	out, err := executeCommand(t, "init", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, cfgPath)

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "cooldown_ms")
}

func TestInitCmd_RefusesOverwrite(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "duet.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("server: {}\n"), 0o600))

	out, err := executeCommand(t, "init", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "server: {}\n", string(data))
}

func TestInitCmd_ForceOverwrites(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "duet.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("server: {}\n"), 0o600))

	_, err := executeCommand(t, "init", "--config", cfgPath, "--force")
	require.NoError(t, err)

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "cooldown_ms")
}
