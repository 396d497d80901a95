// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duet Contributors

package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/duet-chat/duet/internal/provider"
	duerr "github.com/duet-chat/duet/pkg/errors"
)

// ChatRequest is the body of the chat proxy endpoint.
type ChatRequest struct {
	Messages []provider.Turn `json:"messages"`
	// Model selects the provider; anything that is not a registered
	// provider name falls through to the primary.
	Model string `json:"model,omitempty"`
}

// ChatResponse is the normalized reply.
type ChatResponse struct {
	Content string `json:"content"`
	Model   string `json:"model"`
}

// ErrorResponse carries an error message for non-2xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// registerChatRoute wires POST /api/chat as a raw chi route. The wire
// contract fixes the exact {content, model} and {error} body shapes, so the
// handler writes JSON itself instead of going through huma; the operation
// is still registered in the OpenAPI document for documentation.
func (s *Server) registerChatRoute() {
	s.router.Post("/api/chat", s.handleChat)

	s.api.OpenAPI().AddOperation(&huma.Operation{
		OperationID: "chat",
		Method:      http.MethodPost,
		Path:        "/api/chat",
		Summary:     "Forward a conversation to a model provider",
		Tags:        []string{"chat"},
		RequestBody: &huma.RequestBody{
			Required: true,
			Content: map[string]*huma.MediaType{
				"application/json": {
					Schema: &huma.Schema{
						Type:     "object",
						Required: []string{"messages"},
						Properties: map[string]*huma.Schema{
							"messages": {
								Type:        "array",
								Description: "Ordered conversation turns",
								Items: &huma.Schema{
									Type:     "object",
									Required: []string{"role", "content"},
									Properties: map[string]*huma.Schema{
										"role":    {Type: "string", Enum: []any{"user", "assistant", "system"}},
										"content": {Type: "string"},
									},
								},
							},
							"model": {
								Type:        "string",
								Description: "Provider selector; defaults to the primary provider",
							},
						},
					},
				},
			},
		},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Generated reply",
				Content: map[string]*huma.MediaType{
					"application/json": {
						Schema: &huma.Schema{
							Type: "object",
							Properties: map[string]*huma.Schema{
								"content": {Type: "string"},
								"model":   {Type: "string"},
							},
						},
					},
				},
			},
			"400": {Description: "Malformed or empty message list"},
			"429": {Description: "Cooldown window active"},
			"500": {Description: "Provider failure"},
		},
	})
}

// handleChat validates the request, applies the global cooldown, dispatches
// to the selected provider, and normalizes the reply. Statuses come from
// the error code's reason via duerr.HTTPStatus.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	// The cooldown gates before the body is even parsed, and re-arms on
	// every accepted request whatever the downstream outcome.
	if !s.cooldown.Allow() {
		slog.Warn("chat request rejected by cooldown", "remote", r.RemoteAddr)
		err := duerr.New(duerr.CodeServerCooldownActive, cooldownMessage)
		writeJSON(w, duerr.HTTPStatus(err), ErrorResponse{Error: cooldownMessage})
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		err = duerr.Wrapf(err, duerr.CodeServerRequestInvalid, "decoding chat request")
		writeJSON(w, duerr.HTTPStatus(err), ErrorResponse{Error: "Invalid messages format"})
		return
	}

	if err := provider.ValidateTurns(req.Messages); err != nil {
		writeJSON(w, duerr.HTTPStatus(err), ErrorResponse{Error: "Invalid messages format"})
		return
	}

	p := s.registry.Resolve(req.Model)
	result, err := p.Generate(r.Context(), req.Messages)
	if err != nil {
		slog.Error("provider call failed", "provider", p.Name(), "error", err)
		writeJSON(w, duerr.HTTPStatus(err), ErrorResponse{Error: err.Error()})
		return
	}

	slog.Debug("chat request served", "provider", p.Name(), "model", result.Model, "turns", len(req.Messages))
	writeJSON(w, http.StatusOK, ChatResponse{Content: result.Content, Model: result.Model})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
