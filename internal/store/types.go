// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duet Contributors

package store

import "time"

// Role identifies the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ValidRole reports whether r is one of the three conversation roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message is a single conversation turn. Messages are immutable once
// created; the store assigns ID and Timestamp on append.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	// Model labels which provider produced an assistant message. Empty for
	// user and system messages.
	Model string `json:"model,omitempty"`
}

// Session is a named conversation thread. Messages is append-only in
// normal operation; insertion order is conversation order.
type Session struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Messages      []Message `json:"messages"`
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// SnapshotVersion tags the persisted slot schema.
const SnapshotVersion = 1

// Snapshot is the serialized form of the store written to the persistence
// slot after every mutation.
type Snapshot struct {
	Version          int        `json:"version"`
	CurrentSessionID string     `json:"currentSessionId,omitempty"`
	Sessions         []*Session `json:"sessions"`
}

// Saver persists store snapshots. Save is best-effort: the store logs and
// continues when it fails.
type Saver interface {
	Save(snap *Snapshot) error
	Load() (*Snapshot, error)
	Close() error
}
