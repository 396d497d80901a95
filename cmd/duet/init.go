// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duet Contributors

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/duet-chat/duet/internal/config"
	duerr "github.com/duet-chat/duet/pkg/errors"
)

var successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Long:  "Create a commented duet.yaml at the default location (or --config path) if one does not already exist.",
		RunE:  runInit,
	}

	cmd.Flags().Bool("force", false, "overwrite an existing config file")

	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		var err error
		path, err = defaultConfigPath()
		if err != nil {
			return err
		}
	}

	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Config already exists at %s (use --force to overwrite)\n", path)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return duerr.Wrapf(err, duerr.CodeConfigLoadReadFailure, "creating config directory")
	}
	if err := os.WriteFile(path, config.DefaultConfigYAML, 0o600); err != nil {
		return duerr.Wrapf(err, duerr.CodeConfigLoadReadFailure, "writing config")
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, successStyle.Render("Created "+path))
	_, _ = fmt.Fprintln(out, "Set provider API keys with: duet secret set groq-api-key <key>")
	return nil
}
