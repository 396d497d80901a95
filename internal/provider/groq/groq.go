// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duet Contributors

// Package groq implements the primary provider against Groq's
// OpenAI-compatible chat completions endpoint.
package groq

import (
	"context"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/duet-chat/duet/internal/provider"
	"github.com/duet-chat/duet/internal/store"
	duerr "github.com/duet-chat/duet/pkg/errors"
)

const (
	// DefaultBaseURL is Groq's OpenAI-compatible API root.
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	// ModelID is the fixed chat model.
	ModelID = "llama-3.3-70b-versatile"

	temperature = 0.7
)

// Config holds Groq provider configuration.
type Config struct {
	APIKey  string
	BaseURL string // optional, useful for testing against a mock server
}

// Provider implements provider.Provider using the Groq API.
type Provider struct {
	client openaisdk.Client
	config Config
}

// Compile-time interface check.
var _ provider.Provider = (*Provider)(nil)

// New creates a Groq provider. Returns an error if the API key is missing.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, duerr.New(duerr.CodeProviderRequestInvalid, "groq: missing api key", duerr.FieldProvider("groq"))
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	// No retries: upstream failures surface to the caller immediately.
	client := openaisdk.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(0),
	)
	return &Provider{client: client, config: cfg}, nil
}

func (p *Provider) Name() string  { return "groq" }
func (p *Provider) Model() string { return ModelID }

// Generate forwards the whole turn sequence as-is, non-streaming, with the
// fixed temperature.
func (p *Provider) Generate(ctx context.Context, turns []Turn) (*provider.Result, error) {
	msgs, err := convertTurns(turns)
	if err != nil {
		return nil, err
	}

	completion, err := p.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model:       shared.ChatModel(ModelID),
		Messages:    msgs,
		Temperature: param.NewOpt(temperature),
	})
	if err != nil {
		return nil, duerr.Wrapf(err, duerr.CodeProviderUpstreamFailure, "Groq API error")
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return nil, duerr.New(duerr.CodeProviderResponseInvalid, "invalid response from Groq API", duerr.FieldProvider("groq"))
	}

	return &provider.Result{
		Content: completion.Choices[0].Message.Content,
		Model:   ModelID,
	}, nil
}

// Turn aliases provider.Turn for terse signatures within the package.
type Turn = provider.Turn

// convertTurns transforms turns into OpenAI SDK message param unions.
func convertTurns(turns []Turn) ([]openaisdk.ChatCompletionMessageParamUnion, error) {
	result := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case store.RoleUser:
			result = append(result, openaisdk.UserMessage(turn.Content))
		case store.RoleAssistant:
			result = append(result, openaisdk.AssistantMessage(turn.Content))
		case store.RoleSystem:
			result = append(result, openaisdk.SystemMessage(turn.Content))
		default:
			return nil, duerr.Errorf(duerr.CodeProviderRequestInvalid, "groq: unsupported message role %q", turn.Role)
		}
	}
	return result, nil
}
