// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duet Contributors

// Package store holds the chat session state: the list of named sessions,
// the active session, and the working copy of the active session's
// messages. All mutations keep the working copy and the owning session's
// message list in step, and the session list is never left empty once the
// store is initialized.
package store

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	duerr "github.com/duet-chat/duet/pkg/errors"
)

const (
	firstSessionName       = "default"
	replacementSessionName = "New Chat"
)

// Config configures a Store. All fields are optional.
type Config struct {
	// Saver persists the store after each successful mutation. Nil disables
	// persistence.
	Saver Saver
	// Now supplies timestamps. Defaults to time.Now.
	Now func() time.Time
	// NewID supplies message and session ids. Defaults to uuid.NewString.
	NewID func() string
}

// Store owns the session list and the working message cache. Mutations are
// serialized by a mutex so no caller observes the cache and the owning
// session out of step.
type Store struct {
	mu        sync.Mutex
	sessions  []*Session // display order: newest-created first
	currentID string
	messages  []Message // working copy of the active session's messages
	loading   bool
	errMsg    string

	saver Saver
	now   func() time.Time
	newID func() string
}

// New creates a Store, restoring state from cfg.Saver when a snapshot
// exists. A store never starts without at least one session: if the slot is
// empty or unreadable a fresh session is created and made current.
func New(cfg Config) *Store {
	s := &Store{
		saver: cfg.Saver,
		now:   cfg.Now,
		newID: cfg.NewID,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}

	if s.saver != nil {
		snap, err := s.saver.Load()
		switch {
		case err != nil:
			slog.Warn("failed to load persisted sessions, starting fresh", "error", err)
		case snap != nil:
			s.sessions = snap.Sessions
			if sess := findSession(s.sessions, snap.CurrentSessionID); sess != nil {
				s.currentID = sess.ID
				s.messages = slices.Clone(sess.Messages)
			}
		}
	}

	if len(s.sessions) == 0 {
		s.mu.Lock()
		s.createSessionLocked(firstSessionName)
		s.persistLocked()
		s.mu.Unlock()
	}

	return s
}

// AddMessage appends a message to the working cache and, when a session is
// current, to that session's message list, bumping its LastUpdatedAt to the
// same instant. The store assigns ID and Timestamp; caller-provided values
// for those fields are ignored. Any pending error is cleared.
//
// When no session is current the message still lands in the working cache
// and belongs to no session. Callers that care should load or create a
// session first.
func (s *Store) AddMessage(draft Message) Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	msg := Message{
		ID:        s.newID(),
		Role:      draft.Role,
		Content:   draft.Content,
		Model:     draft.Model,
		Timestamp: now,
	}

	s.messages = append(s.messages, msg)
	if sess := findSession(s.sessions, s.currentID); sess != nil {
		sess.Messages = append(sess.Messages, msg)
		sess.LastUpdatedAt = now
	}
	s.errMsg = ""

	s.persistLocked()
	return msg
}

// SetLoading sets the loading flag. No effect on sessions.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// CreateSession makes a new empty session, inserts it at the front of the
// display order, and makes it current. The very first session is named
// "default"; later ones carry a date-qualified label. Returns the new id.
func (s *Store) CreateSession() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := firstSessionName
	if len(s.sessions) > 0 {
		name = "Chat " + s.now().Format("1/2/2006")
	}
	id := s.createSessionLocked(name)
	s.persistLocked()
	return id
}

// LoadSession makes the session with the given id current and resets the
// working cache to its messages. An unknown id is a no-op. The empty id is
// an explicit clear: current becomes none and the cache empties.
func (s *Store) LoadSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		s.currentID = ""
		s.messages = nil
		s.persistLocked()
		return
	}

	sess := findSession(s.sessions, id)
	if sess == nil {
		return
	}
	s.currentID = sess.ID
	s.messages = slices.Clone(sess.Messages)
	s.persistLocked()
}

// DeleteSession removes the session with the given id. If the removed
// session was current and others remain, the front-of-list session becomes
// current; if none remain, a fresh session is created and made current. An
// unknown id is a no-op.
func (s *Store) DeleteSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.sessions, func(sess *Session) bool { return sess.ID == id })
	if idx == -1 {
		return
	}

	wasCurrent := s.currentID == id
	s.sessions = slices.Delete(s.sessions, idx, idx+1)

	switch {
	case len(s.sessions) == 0:
		s.createSessionLocked(replacementSessionName)
	case wasCurrent:
		front := s.sessions[0]
		s.currentID = front.ID
		s.messages = slices.Clone(front.Messages)
	}

	s.persistLocked()
}

// DeleteAllSessions replaces the whole session list with one fresh empty
// session, which becomes current.
func (s *Store) DeleteAllSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = nil
	s.createSessionLocked(replacementSessionName)
	s.persistLocked()
}

// RenameSession updates the display name of the matching session. Unknown
// ids are a no-op.
func (s *Store) RenameSession(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := findSession(s.sessions, id)
	if sess == nil {
		return
	}
	sess.Name = name
	s.persistLocked()
}

// CurrentSession returns a copy of the session the currentID points at.
func (s *Store) CurrentSession() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := findSession(s.sessions, s.currentID)
	if sess == nil {
		return nil, duerr.New(duerr.CodeStoreSessionNotFound, "no current session", duerr.FieldSession(s.currentID))
	}
	return cloneSession(sess), nil
}

// SetError records an error message for display. The empty string clears it.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = msg
}

// ClearMessages empties the working cache. Session message lists are
// untouched.
func (s *Store) ClearMessages() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}

// Sessions returns copies of the sessions in display order (newest-created
// first). Mutating a returned session never reaches the store; all writes go
// through the mutation methods so the working-cache invariant and
// persistence cannot be bypassed.
func (s *Store) Sessions() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, cloneSession(sess))
	}
	return out
}

// Messages returns a copy of the working cache.
func (s *Store) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.messages)
}

// CurrentSessionID returns the active session id, or "" when none is set.
func (s *Store) CurrentSessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

// Loading returns the loading flag.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the recorded error message, or "" when none is set.
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// createSessionLocked inserts a fresh session at the front, makes it
// current, and empties the working cache. Caller holds the lock.
func (s *Store) createSessionLocked(name string) string {
	now := s.now()
	sess := &Session{
		ID:            s.newID(),
		Name:          name,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
	s.sessions = append([]*Session{sess}, s.sessions...)
	s.currentID = sess.ID
	s.messages = nil
	return sess.ID
}

// persistLocked writes the snapshot through the saver. Persistence is
// best-effort: failures are logged, never surfaced to the mutation caller.
func (s *Store) persistLocked() {
	if s.saver == nil {
		return
	}

	snap := &Snapshot{
		Version:          SnapshotVersion,
		CurrentSessionID: s.currentID,
		Sessions:         s.sessions,
	}
	if err := s.saver.Save(snap); err != nil {
		slog.Warn("failed to persist sessions", "error", err)
	}
}

func cloneSession(sess *Session) *Session {
	c := *sess
	c.Messages = slices.Clone(sess.Messages)
	return &c
}

func findSession(sessions []*Session, id string) *Session {
	if id == "" {
		return nil
	}
	for _, sess := range sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}
