// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duet Contributors

package sqlite_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duet-chat/duet/internal/store"
	"github.com/duet-chat/duet/internal/store/sqlite"
)

func newTestSaver(t *testing.T) *sqlite.Saver {
	t.Helper()
	saver, err := sqlite.New(filepath.Join(t.TempDir(), "duet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = saver.Close() })
	return saver
}

func TestSaver_LoadEmptySlot(t *testing.T) {
	saver := newTestSaver(t)

	snap, err := saver.Load()
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSaver_SaveLoadRoundTrip(t *testing.T) {
	saver := newTestSaver(t)

	now := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	snap := &store.Snapshot{
		Version:          store.SnapshotVersion,
		CurrentSessionID: "sess-1",
		Sessions: []*store.Session{
			{
				ID:            "sess-1",
				Name:          "work",
				CreatedAt:     now,
				LastUpdatedAt: now,
				Messages: []store.Message{
					{ID: "m1", Role: store.RoleUser, Content: "hello", Timestamp: now},
				},
			},
		},
	}
	require.NoError(t, saver.Save(snap))

	loaded, err := saver.Load()
	require.NoError(t, err)
	assert.Equal(t, snap, loaded)
}

func TestSaver_SaveIsUpsert(t *testing.T) {
	saver := newTestSaver(t)

	first := &store.Snapshot{Version: store.SnapshotVersion, CurrentSessionID: "a"}
	second := &store.Snapshot{Version: store.SnapshotVersion, CurrentSessionID: "b"}

	require.NoError(t, saver.Save(first))
	require.NoError(t, saver.Save(second))

	loaded, err := saver.Load()
	require.NoError(t, err)
	assert.Equal(t, "b", loaded.CurrentSessionID)
}

func TestSaver_ReopenKeepsState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "duet.db")

	saver, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, saver.Save(&store.Snapshot{Version: store.SnapshotVersion, CurrentSessionID: "kept"}))
	require.NoError(t, saver.Close())

	reopened, err := sqlite.New(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "kept", loaded.CurrentSessionID)
}

func TestRegisteredWithStoreFactory(t *testing.T) {
	saver, err := store.NewSaver("sqlite", filepath.Join(t.TempDir(), "duet.db"))
	require.NoError(t, err)
	defer saver.Close()
	assert.IsType(t, &sqlite.Saver{}, saver)
}
