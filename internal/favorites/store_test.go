package favorites

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(context.Background(), NewMemoryStorage())
	require.NoError(t, err)
	return s
}

func TestAdd_ReturnsOrderedSnapshot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, 30)
	require.NoError(t, err)
	_, err = s.Add(ctx, 10)
	require.NoError(t, err)
	snap, err := s.Add(ctx, 20)
	require.NoError(t, err)

	require.Len(t, snap, 3)
	assert.Equal(t, int64(10), snap[0].PropertyID)
	assert.Equal(t, int64(20), snap[1].PropertyID)
	assert.Equal(t, int64(30), snap[2].PropertyID)
}

func TestAdd_ExistingIsNoOp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, 7)
	require.NoError(t, err)
	_, err = s.UpdateNote(ctx, 7, "needs roof inspection")
	require.NoError(t, err)

	// Re-adding must not clear the note.
	snap, err := s.Add(ctx, 7)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, "needs roof inspection", snap[0].Note)
}

func TestUpdateNote(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, 5)
	require.NoError(t, err)

	snap, err := s.UpdateNote(ctx, 5, "flood zone, check insurance")
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, "flood zone, check insurance", snap[0].Note)
}

func TestUpdateNote_MissingIsNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.UpdateNote(context.Background(), 99, "note")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemove(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, 1)
	require.NoError(t, err)
	_, err = s.Add(ctx, 2)
	require.NoError(t, err)

	snap, err := s.Remove(ctx, 1)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, int64(2), snap[0].PropertyID)

	_, err = s.Remove(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSnapshotIsImmutable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, 1)
	require.NoError(t, err)

	snap := s.List()
	snap[0].Note = "mutated"

	fresh := s.List()
	assert.Empty(t, fresh[0].Note)
}

func TestNew_PrimesFromStorage(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	require.NoError(t, storage.Put(ctx, Favorite{PropertyID: 11, Note: "seen before"}))

	s, err := New(ctx, storage)
	require.NoError(t, err)

	snap := s.List()
	require.Len(t, snap, 1)
	assert.Equal(t, int64(11), snap[0].PropertyID)
	assert.Equal(t, "seen before", snap[0].Note)
}

// failingStorage rejects writes, to verify mutations do not change the
// in-memory view when persistence fails.
type failingStorage struct{ *MemoryStorage }

func (f *failingStorage) Put(context.Context, Favorite) error {
	return errors.New("disk full")
}

func TestAdd_StorageFailureLeavesStoreUnchanged(t *testing.T) {
	storage := &failingStorage{MemoryStorage: NewMemoryStorage()}
	s, err := New(context.Background(), storage)
	require.NoError(t, err)

	_, err = s.Add(context.Background(), 1)
	require.Error(t, err)
	assert.Empty(t, s.List())
}
