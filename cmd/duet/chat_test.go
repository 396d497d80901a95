// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duet Contributors

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duet-chat/duet/internal/store"
)

// newFakeProxy starts an httptest proxy answering /api/chat with handler and
// returns its host:port address.
func newFakeProxy(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return strings.TrimPrefix(srv.URL, "http://")
}

// readSnapshot loads the persisted session state written by a chat command.
func readSnapshot(t *testing.T, path string) *store.Snapshot {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var snap store.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	return &snap
}

func TestChatCmd_OneShot(t *testing.T) {
	addr := newFakeProxy(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []chatTurn `json:"messages"`
			Model    string     `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "hello", req.Messages[0].Content)
		assert.Equal(t, store.RoleUser, req.Messages[0].Role)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatReply{Content: "hi there", Model: "gemini-2.5-flash"})
	})

	cfgPath := writeTestConfig(t)
	out, err := executeCommand(t, "chat", "--config", cfgPath, "--address", addr, "--model", "gemini", "hello")
	require.NoError(t, err)
	assert.Contains(t, out, "hi there")
	assert.Contains(t, out, "gemini-2.5-flash")

	// Both turns are persisted in the active session.
	snap := readSnapshot(t, filepath.Join(filepath.Dir(cfgPath), "sessions.json"))
	require.Len(t, snap.Sessions, 1)
	require.Len(t, snap.Sessions[0].Messages, 2)
	assert.Equal(t, store.RoleUser, snap.Sessions[0].Messages[0].Role)
	assert.Equal(t, "hi there", snap.Sessions[0].Messages[1].Content)
	assert.Equal(t, "gemini-2.5-flash", snap.Sessions[0].Messages[1].Model)
}

func TestChatCmd_ProxyErrorBecomesNotice(t *testing.T) {
	addr := newFakeProxy(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Groq API error: upstream unavailable"}`))
	})

	cfgPath := writeTestConfig(t)
	out, err := executeCommand(t, "chat", "--config", cfgPath, "--address", addr, "hello")
	require.NoError(t, err)
	assert.Contains(t, out, "Groq API error")

	// The failure lands in the transcript as an assistant-role notice.
	snap := readSnapshot(t, filepath.Join(filepath.Dir(cfgPath), "sessions.json"))
	require.Len(t, snap.Sessions, 1)
	require.Len(t, snap.Sessions[0].Messages, 2)
	assert.Equal(t, store.RoleAssistant, snap.Sessions[0].Messages[1].Role)
	assert.Contains(t, snap.Sessions[0].Messages[1].Content, "Groq API error")
}

func TestChatCmd_CooldownError(t *testing.T) {
	addr := newFakeProxy(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"Please wait a moment before sending another message"}`))
	})

	cfgPath := writeTestConfig(t)
	out, err := executeCommand(t, "chat", "--config", cfgPath, "--address", addr, "hello")
	require.NoError(t, err)
	assert.Contains(t, out, "Please wait a moment")
}

func TestChatCmd_SendsFullHistory(t *testing.T) {
	var got [][]chatTurn
	addr := newFakeProxy(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []chatTurn `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		got = append(got, req.Messages)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatReply{Content: "ok", Model: "llama-3.3-70b-versatile"})
	})

	cfgPath := writeTestConfig(t)
	_, err := executeCommand(t, "chat", "--config", cfgPath, "--address", addr, "first")
	require.NoError(t, err)
	_, err = executeCommand(t, "chat", "--config", cfgPath, "--address", addr, "second")
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Len(t, got[0], 1)
	// Second call carries user, assistant, user.
	require.Len(t, got[1], 3)
	assert.Equal(t, store.RoleAssistant, got[1][1].Role)
	assert.Equal(t, "second", got[1][2].Content)
}
