// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duet Contributors

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/duet-chat/duet/internal/store"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage conversation sessions",
		Long:  "List, create, switch, rename, and delete the locally stored conversation sessions.",
	}

	cmd.AddCommand(
		newSessionListCmd(),
		newSessionNewCmd(),
		newSessionUseCmd(),
		newSessionRenameCmd(),
		newSessionDeleteCmd(),
		newSessionClearCmd(),
	)

	return cmd
}

// withStore opens the session store, runs fn, and closes the saver.
func withStore(cmd *cobra.Command, fn func(st *store.Store) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	st, saver, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = saver.Close() }()

	return fn(st)
}

func newSessionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(st *store.Store) error {
				out := cmd.OutOrStdout()
				current := st.CurrentSessionID()

				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				_, _ = fmt.Fprintln(tw, " \tID\tNAME\tMESSAGES\tUPDATED")
				for _, s := range st.Sessions() {
					marker := " "
					if s.ID == current {
						marker = "*"
					}
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
						marker, s.ID, s.Name, len(s.Messages), s.LastUpdatedAt.Format("2006-01-02 15:04"))
				}
				return tw.Flush()
			})
		},
	}
}

func newSessionNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Create a session and make it current",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(st *store.Store) error {
				id := st.CreateSession()
				sess, err := st.CurrentSession()
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created session %q (%s)\n", sess.Name, id)
				return nil
			})
		},
	}
}

func newSessionUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <id>",
		Short: "Switch the active session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(st *store.Store) error {
				st.LoadSession(args[0])
				if st.CurrentSessionID() != args[0] {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No session with id %s\n", args[0])
					return nil
				}
				sess, err := st.CurrentSession()
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Switched to %q\n", sess.Name)
				return nil
			})
		},
	}
}

func newSessionRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(st *store.Store) error {
				st.RenameSession(args[0], args[1])
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Renamed session %s to %q\n", args[0], args[1])
				return nil
			})
		},
	}
}

func newSessionDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a session, or all sessions with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			return withStore(cmd, func(st *store.Store) error {
				out := cmd.OutOrStdout()
				if all {
					st.DeleteAllSessions()
					_, _ = fmt.Fprintln(out, "Deleted all sessions")
					return nil
				}
				if len(args) == 0 {
					return fmt.Errorf("session id required (or --all)")
				}
				st.DeleteSession(args[0])
				_, _ = fmt.Fprintf(out, "Deleted session %s\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().Bool("all", false, "delete every session")
	return cmd
}

func newSessionClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the working message cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(st *store.Store) error {
				st.ClearMessages()
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cleared messages")
				return nil
			})
		},
	}
}
