// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duet Contributors

package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/duet-chat/duet/internal/store"
)

var (
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	modelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Chat through the proxy",
		Long:  "Send a message in the active session. Starts an interactive session if no message is provided.",
		RunE:  runChat,
	}

	cmd.Flags().StringP("model", "m", "", "provider selector (groq or gemini; defaults to groq)")
	cmd.Flags().String("address", "127.0.0.1:8787", "proxy address")

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	st, saver, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = saver.Close() }()

	model, _ := cmd.Flags().GetString("model")
	addr, _ := cmd.Flags().GetString("address")
	client := newProxyClient(addr)

	if len(args) > 0 {
		return sendTurn(cmd.OutOrStdout(), st, client, strings.Join(args, " "), model)
	}

	return runInteractive(cmd, st, client, model)
}

// sendTurn records the user message, posts the full conversation to the
// proxy, and records the reply. Proxy failures are recorded in the session
// as an assistant-role notice so the transcript keeps its shape.
func sendTurn(out io.Writer, st *store.Store, client *proxyClient, content, model string) error {
	st.AddMessage(store.Message{Role: store.RoleUser, Content: content})

	turns := make([]chatTurn, 0, len(st.Messages()))
	for _, m := range st.Messages() {
		turns = append(turns, chatTurn{Role: m.Role, Content: m.Content})
	}

	st.SetLoading(true)
	reply, err := client.sendChat(turns, model)
	st.SetLoading(false)

	if err != nil {
		notice := "Sorry, something went wrong: " + err.Error()
		st.SetError(err.Error())
		st.AddMessage(store.Message{Role: store.RoleAssistant, Content: notice})
		fmt.Fprintln(out, errorStyle.Render(notice))
		return nil
	}

	st.AddMessage(store.Message{Role: store.RoleAssistant, Content: reply.Content, Model: reply.Model})
	fmt.Fprintf(out, "%s %s\n%s\n", assistantStyle.Render("assistant"), modelStyle.Render("("+reply.Model+")"), reply.Content)
	return nil
}

// runInteractive reads lines from stdin until EOF or /quit, sending each as
// a turn in the active session.
func runInteractive(cmd *cobra.Command, st *store.Store, client *proxyClient, model string) error {
	out := cmd.OutOrStdout()

	name := "?"
	if sess, err := st.CurrentSession(); err == nil {
		name = sess.Name
	}
	fmt.Fprintf(out, "Chatting in %q. Type /quit to exit.\n", name)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, userStyle.Render("you")+" ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit", line == "/exit":
			return nil
		}

		if err := sendTurn(out, st, client, line, model); err != nil {
			return err
		}
	}
	return scanner.Err()
}
