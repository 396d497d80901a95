// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duet Contributors

package provider

import (
	"sync"

	duerr "github.com/duet-chat/duet/pkg/errors"
)

// Registry maps selector names to providers. Resolution falls through to
// the default provider for any selector that is not a registered name, so
// callers always get the primary unless they name the secondary.
type Registry struct {
	mu          sync.RWMutex
	providers   map[string]Provider
	defaultName string
}

// NewRegistry creates a Registry whose fall-through target is def. def is
// also registered under its own name.
func NewRegistry(def Provider) *Registry {
	r := &Registry{
		providers:   make(map[string]Provider),
		defaultName: def.Name(),
	}
	r.providers[def.Name()] = def
	return r
}

// Register adds a provider under its own name.
func (r *Registry) Register(p Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[p.Name()]; exists {
		return duerr.Errorf(duerr.CodeProviderRequestInvalid, "provider %q already registered", p.Name())
	}
	r.providers[p.Name()] = p
	return nil
}

// Resolve returns the provider registered under selector, or the default
// provider when the selector is empty or unknown.
func (r *Registry) Resolve(selector string) Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.providers[selector]; ok {
		return p
	}
	return r.providers[r.defaultName]
}
