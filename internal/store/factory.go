// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duet Contributors

package store

import (
	"sync"

	duerr "github.com/duet-chat/duet/pkg/errors"
)

// SaverFactory creates a Saver given the slot path for a named backend.
type SaverFactory func(path string) (Saver, error)

var (
	saverFactories = map[string]SaverFactory{}
	factoriesMu    sync.RWMutex
)

// RegisterBackend registers a factory for a named persistence backend.
// Backend packages call this from init(). Goroutine-safe.
func RegisterBackend(name string, factory SaverFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	saverFactories[name] = factory
}

func init() {
	RegisterBackend("file", func(path string) (Saver, error) {
		return NewFileSaver(path), nil
	})
}

// NewSaver creates a Saver for the given backend name, defaulting to "file".
func NewSaver(backend, path string) (Saver, error) {
	if backend == "" {
		backend = "file"
	}

	factoriesMu.RLock()
	factory, ok := saverFactories[backend]
	factoriesMu.RUnlock()
	if !ok {
		return nil, duerr.Errorf(duerr.CodeStoreBackendInvalid, "unsupported storage backend: %q", backend)
	}
	return factory(path)
}
