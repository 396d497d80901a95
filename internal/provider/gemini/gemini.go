// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duet Contributors

// Package gemini implements the secondary provider using the Google
// Gemini API.
package gemini

import (
	"context"
	"net/http"

	"google.golang.org/genai"

	"github.com/duet-chat/duet/internal/provider"
	"github.com/duet-chat/duet/internal/store"
	duerr "github.com/duet-chat/duet/pkg/errors"
)

// ModelID is the fixed chat model.
const ModelID = "gemini-2.5-flash"

// Fixed generation parameters.
const (
	temperature     = 0.9
	topK            = 40
	topP            = 0.8
	maxOutputTokens = 2048
)

// Config holds Gemini provider configuration.
type Config struct {
	APIKey     string
	BaseURL    string       // optional, useful for testing against a mock server
	HTTPClient *http.Client // optional override
}

// Provider implements provider.Provider using the Google Gemini API.
type Provider struct {
	client *genai.Client
	config Config
}

// Compile-time interface check.
var _ provider.Provider = (*Provider)(nil)

// New creates a Gemini provider. Returns an error if the API key is missing.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, duerr.New(duerr.CodeProviderRequestInvalid, "gemini: missing api key", duerr.FieldProvider("gemini"))
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}

	client, err := genai.NewClient(context.Background(), clientCfg)
	if err != nil {
		return nil, duerr.Wrapf(err, duerr.CodeProviderUpstreamFailure, "gemini: creating client")
	}

	return &Provider{client: client, config: cfg}, nil
}

func (p *Provider) Name() string  { return "gemini" }
func (p *Provider) Model() string { return ModelID }

// Generate sends the conversation as ordered contents: the turns before
// the last are prior history, the final turn is the new message. Uses the
// fixed generation parameters.
func (p *Provider) Generate(ctx context.Context, turns []provider.Turn) (*provider.Result, error) {
	if len(turns) == 0 {
		return nil, duerr.New(duerr.CodeProviderRequestInvalid, "gemini: empty turn sequence", duerr.FieldProvider("gemini"))
	}

	contents := convertTurns(turns)
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](temperature),
		TopK:            genai.Ptr[float32](topK),
		TopP:            genai.Ptr[float32](topP),
		MaxOutputTokens: maxOutputTokens,
	}

	result, err := p.client.Models.GenerateContent(ctx, ModelID, contents, config)
	if err != nil {
		return nil, duerr.Wrapf(err, duerr.CodeProviderUpstreamFailure, "Gemini API error")
	}

	text := result.Text()
	if text == "" {
		return nil, duerr.New(duerr.CodeProviderResponseInvalid, "empty response from Gemini", duerr.FieldProvider("gemini"))
	}

	return &provider.Result{
		Content: text,
		Model:   ModelID,
	}, nil
}

// convertTurns transforms turns into genai.Content values. The Gemini API
// knows only user and model roles; every non-user turn maps to model.
func convertTurns(turns []provider.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, turn := range turns {
		role := "model"
		if turn.Role == store.RoleUser {
			role = "user"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: turn.Content}},
		})
	}
	return contents
}
