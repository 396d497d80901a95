// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duet Contributors

package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	duerr "github.com/duet-chat/duet/pkg/errors"
)

// Compile-time interface check.
var _ Saver = (*FileSaver)(nil)

// FileSaver persists snapshots as a single JSON document in a named file.
type FileSaver struct {
	path string
}

// NewFileSaver returns a FileSaver writing to path. The parent directory is
// created on the first Save.
func NewFileSaver(path string) *FileSaver {
	return &FileSaver{path: path}
}

// Save writes the snapshot atomically: a temp file in the same directory is
// renamed over the slot so a crash never leaves a half-written document.
func (f *FileSaver) Save(snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return duerr.Wrapf(err, duerr.CodeStorePersistFailure, "encoding snapshot")
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return duerr.Wrapf(err, duerr.CodeStorePersistFailure, "creating state directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".duet-state-*")
	if err != nil {
		return duerr.Wrapf(err, duerr.CodeStorePersistFailure, "creating temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return duerr.Wrapf(err, duerr.CodeStorePersistFailure, "writing snapshot")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return duerr.Wrapf(err, duerr.CodeStorePersistFailure, "closing temp file")
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return duerr.Wrapf(err, duerr.CodeStorePersistFailure, "replacing %s", f.path)
	}
	return nil
}

// Load reads the slot. A missing file is not an error: it returns (nil, nil)
// so the store starts fresh.
func (f *FileSaver) Load() (*Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, duerr.Wrapf(err, duerr.CodeStorePersistFailure, "reading %s", f.path)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, duerr.Wrapf(err, duerr.CodeStoreSnapshotInvalid, "parsing %s", f.path)
	}
	return &snap, nil
}

func (f *FileSaver) Close() error { return nil }
