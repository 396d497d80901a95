// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duet Contributors

// Package sqlite persists store snapshots in a SQLite database. The slot is
// a single row keyed by name, holding the serialized snapshot and its
// schema version.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/duet-chat/duet/internal/store"
	duerr "github.com/duet-chat/duet/pkg/errors"
)

// slotName is the fixed key the chat state is stored under, matching the
// slot name the browser build used for local storage.
const slotName = "chat-storage"

// Compile-time interface check.
var _ store.Saver = (*Saver)(nil)

// Saver implements store.Saver backed by SQLite.
type Saver struct {
	db *sql.DB
}

// New opens (or creates) a SQLite database at dbPath and initialises the
// slots table.
func New(dbPath string) (*Saver, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, duerr.Wrapf(err, duerr.CodeStorePersistFailure, "opening sqlite db")
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, duerr.Wrapf(err, duerr.CodeStorePersistFailure, "pinging sqlite db")
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, duerr.Wrapf(err, duerr.CodeStorePersistFailure, "migrating sqlite db")
	}

	return &Saver{db: db}, nil
}

func migrate(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS slots (
	name       TEXT PRIMARY KEY,
	version    INTEGER NOT NULL,
	state      TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`
	_, err := db.Exec(ddl)
	return err
}

func (s *Saver) Save(snap *store.Snapshot) error {
	state, err := json.Marshal(snap)
	if err != nil {
		return duerr.Wrapf(err, duerr.CodeStorePersistFailure, "encoding snapshot")
	}

	const upsert = `
INSERT INTO slots (name, version, state, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET version = excluded.version, state = excluded.state, updated_at = excluded.updated_at
`
	if _, err := s.db.Exec(upsert, slotName, snap.Version, string(state), time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return duerr.Wrapf(err, duerr.CodeStorePersistFailure, "writing slot %q", slotName)
	}
	return nil
}

func (s *Saver) Load() (*store.Snapshot, error) {
	var state string
	err := s.db.QueryRow(`SELECT state FROM slots WHERE name = ?`, slotName).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, duerr.Wrapf(err, duerr.CodeStorePersistFailure, "reading slot %q", slotName)
	}

	var snap store.Snapshot
	if err := json.Unmarshal([]byte(state), &snap); err != nil {
		return nil, duerr.Wrapf(err, duerr.CodeStoreSnapshotInvalid, "parsing slot %q", slotName)
	}
	return &snap, nil
}

func (s *Saver) Close() error {
	return s.db.Close()
}
