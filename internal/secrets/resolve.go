// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duet Contributors

package secrets

import (
	"strings"

	"github.com/duet-chat/duet/internal/config"
	duerr "github.com/duet-chat/duet/pkg/errors"
)

const keyringScheme = "keyring://"

// IsKeyringURI reports whether value uses the keyring:// URI scheme.
func IsKeyringURI(value string) bool {
	return strings.HasPrefix(value, keyringScheme)
}

// ParseKeyringURI extracts service and key from a keyring://service/key URI.
// Returns an error if the URI is malformed.
func ParseKeyringURI(uri string) (service, key string, err error) {
	if !IsKeyringURI(uri) {
		return "", "", duerr.Errorf(duerr.CodeSecretInvalidInput, "not a keyring URI: %q", uri)
	}

	path := strings.TrimPrefix(uri, keyringScheme)
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", duerr.Errorf(duerr.CodeSecretInvalidInput,
			"invalid keyring URI %q: expected keyring://service/key", uri)
	}

	return parts[0], parts[1], nil
}

// ResolveKeyringURI resolves a single keyring:// URI to its secret value.
// Returns the original value unchanged if it is not a keyring URI.
func ResolveKeyringURI(store Store, value string) (string, error) {
	if !IsKeyringURI(value) {
		return value, nil
	}

	service, key, err := ParseKeyringURI(value)
	if err != nil {
		return "", err
	}

	secret, err := store.Retrieve(service, key)
	if err != nil {
		return "", duerr.Wrapf(err, duerr.CodeSecretResolveFailure,
			"resolving keyring URI %q", value)
	}

	return secret, nil
}

// ResolveProviderKeys replaces every keyring:// API key in the provider map
// with the secret it references. A reference that cannot be resolved fails
// the whole resolution; the proxy should not start with a dangling key.
func ResolveProviderKeys(providers map[string]config.ProviderConfig, store Store) error {
	for name, p := range providers {
		if !IsKeyringURI(p.APIKey) {
			continue
		}

		resolved, err := ResolveKeyringURI(store, p.APIKey)
		if err != nil {
			return duerr.Wrapf(err, duerr.CodeSecretResolveFailure,
				"resolving api key for provider %s", name)
		}

		p.APIKey = resolved
		providers[name] = p
	}

	return nil
}
