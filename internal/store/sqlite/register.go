// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duet Contributors

package sqlite

import "github.com/duet-chat/duet/internal/store"

func init() {
	store.RegisterBackend("sqlite", func(path string) (store.Saver, error) {
		return New(path)
	})
}
