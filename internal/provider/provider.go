// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duet Contributors

// Package provider defines the capability interface both hosted
// text-generation services are driven through, so dispatch is a selector
// over implementations rather than per-provider branches.
package provider

import (
	"context"

	"github.com/duet-chat/duet/internal/store"
	duerr "github.com/duet-chat/duet/pkg/errors"
)

// Turn is one conversation turn sent to a provider.
type Turn struct {
	Role    store.Role `json:"role"`
	Content string     `json:"content"`
}

// Result is a provider's normalized reply: the generated text and the
// identifier of the model that actually produced it.
type Result struct {
	Content string `json:"content"`
	Model   string `json:"model"`
}

// Provider is a hosted text-generation service invoked synchronously per
// call. Generation parameters are fixed per implementation.
type Provider interface {
	// Name is the selector the proxy dispatches on.
	Name() string
	// Model identifies the model the provider answers with.
	Model() string
	// Generate sends the conversation and returns the reply text.
	Generate(ctx context.Context, turns []Turn) (*Result, error)
}

// ValidateTurns checks that the turn sequence is non-empty and every role
// is one of user/assistant/system.
func ValidateTurns(turns []Turn) error {
	if len(turns) == 0 {
		return duerr.New(duerr.CodeProviderRequestInvalid, "messages must be a non-empty array")
	}
	for i, turn := range turns {
		if !store.ValidRole(turn.Role) {
			return duerr.Errorf(duerr.CodeProviderRequestInvalid, "messages[%d]: unsupported role %q", i, turn.Role)
		}
	}
	return nil
}
