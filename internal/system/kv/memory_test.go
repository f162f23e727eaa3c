package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetSet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "consent:u1:v1", []byte(`{"a":1}`)))
	value, err := store.Get(ctx, "consent:u1:v1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), value)

	// Last write wins at a given key.
	require.NoError(t, store.Set(ctx, "consent:u1:v1", []byte(`{"a":2}`)))
	value, err = store.Get(ctx, "consent:u1:v1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":2}`), value)
}

func TestMemoryStoreListByPrefix(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "consent:u1:v1", []byte("one")))
	require.NoError(t, store.Set(ctx, "consent:u1:v2", []byte("two")))
	require.NoError(t, store.Set(ctx, "consent:u2:v1", []byte("other")))

	values, err := store.List(ctx, "consent:u1:")
	require.NoError(t, err)
	assert.Len(t, values, 2)

	keys, err := store.Keys(ctx, "consent:u1:")
	require.NoError(t, err)
	assert.Equal(t, []string{"consent:u1:v1", "consent:u1:v2"}, keys)

	values, err = store.List(ctx, "dsr:")
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestMemoryStoreDeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "consent:u1:v1", []byte("one")))
	require.NoError(t, store.Set(ctx, "consent:u1:v2", []byte("two")))
	require.NoError(t, store.Set(ctx, "consent:u2:v1", []byte("other")))

	removed, err := store.DeleteByPrefix(ctx, "consent:u1:")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	_, err = store.Get(ctx, "consent:u1:v1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Unrelated keys survive.
	_, err = store.Get(ctx, "consent:u2:v1")
	assert.NoError(t, err)
}

func TestMemoryStoreListOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Push(ctx, "audit_logs", []byte("first")))
	require.NoError(t, store.Push(ctx, "audit_logs", []byte("second")))
	require.NoError(t, store.Push(ctx, "audit_logs", []byte("third")))

	// Head-first: newest entry comes back first.
	values, err := store.Range(ctx, "audit_logs", 0, -1)
	require.NoError(t, err)
	require.Len(t, values, 3)
	assert.Equal(t, []byte("third"), values[0])
	assert.Equal(t, []byte("first"), values[2])

	// Bounded range.
	values, err = store.Range(ctx, "audit_logs", 0, 1)
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, []byte("third"), values[0])
	assert.Equal(t, []byte("second"), values[1])
}

func TestMemoryStoreTrim(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for _, v := range []string{"a", "b", "c", "d"} {
		require.NoError(t, store.Push(ctx, "audit_logs", []byte(v)))
	}

	require.NoError(t, store.Trim(ctx, "audit_logs", 2))
	values, err := store.Range(ctx, "audit_logs", 0, -1)
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, []byte("d"), values[0])
	assert.Equal(t, []byte("c"), values[1])

	require.NoError(t, store.Trim(ctx, "audit_logs", 0))
	values, err = store.Range(ctx, "audit_logs", 0, -1)
	require.NoError(t, err)
	assert.Empty(t, values)
}
