// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duet Contributors

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/duet-chat/duet/internal/store"
	duerr "github.com/duet-chat/duet/pkg/errors"
)

// defaultHTTPClient is the package-level HTTP client used by proxy commands.
// Overridden in tests via httptest.
var defaultHTTPClient = &http.Client{
	Timeout: 60 * time.Second,
}

// proxyClient provides HTTP access to a running duet proxy.
type proxyClient struct {
	baseURL string
	http    *http.Client
}

// newProxyClient creates a client targeting the given host:port address.
func newProxyClient(addr string) *proxyClient {
	return &proxyClient{
		baseURL: "http://" + addr,
		http:    defaultHTTPClient,
	}
}

type chatTurn struct {
	Role    store.Role `json:"role"`
	Content string     `json:"content"`
}

type chatReply struct {
	Content string `json:"content"`
	Model   string `json:"model"`
}

// sendChat posts a conversation to the proxy and returns the normalized
// reply. Proxy rejections (cooldown, validation, provider failure) come back
// as errors carrying the proxy's error message.
func (c *proxyClient) sendChat(turns []chatTurn, model string) (*chatReply, error) {
	payload, err := json.Marshal(struct {
		Messages []chatTurn `json:"messages"`
		Model    string     `json:"model,omitempty"`
	}{Messages: turns, Model: model})
	if err != nil {
		return nil, duerr.Wrapf(err, duerr.CodeCLIRequestFailure, "encoding chat request")
	}

	resp, err := c.http.Post(c.baseURL+"/api/chat", "application/json", bytes.NewReader(payload))
	if err != nil {
		if isDialError(err) {
			return nil, duerr.New(duerr.CodeCLIServerNotRunning, "proxy is not running (connection refused)")
		}
		return nil, duerr.Wrapf(err, duerr.CodeCLIRequestFailure, "sending chat request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
			return nil, duerr.Errorf(duerr.CodeCLIRequestFailure, "proxy returned status %d: %s", resp.StatusCode, string(raw))
		}
		return nil, duerr.Errorf(duerr.CodeCLIRequestFailure, "%s", body.Error)
	}

	var reply chatReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, duerr.Wrapf(err, duerr.CodeCLIResponseInvalid, "invalid response")
	}
	return &reply, nil
}

// isDialError returns true if err is a net dial error (connection refused,
// etc.).
func isDialError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}
	return false
}
