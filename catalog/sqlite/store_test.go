package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartwardrobe/simdex/catalog"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "wardrobe.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func ptr(v int64) *int64 { return &v }

func TestPutGetItem(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	item := &Item{
		OwnerID:      ptr(7),
		Name:         "Blue Jacket",
		Category:     "outerwear",
		Color:        "blue",
		Season:       "winter",
		OccasionTags: []string{"casual", "work"},
		Vector:       []float32{0.1, 0.2, 0.3},
	}
	require.NoError(t, s.PutItem(ctx, item))
	require.NotZero(t, item.ID, "assigned id written back")

	got, err := s.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.Name, got.Name)
	assert.Equal(t, item.OccasionTags, got.OccasionTags)
	assert.Equal(t, item.Vector, got.Vector)
	require.NotNil(t, got.OwnerID)
	assert.Equal(t, int64(7), *got.OwnerID)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetItemNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetItem(context.Background(), 42)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestDeleteItem(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	item := &Item{Name: "Shirt", Vector: []float32{1}}
	require.NoError(t, s.PutItem(ctx, item))

	require.NoError(t, s.DeleteItem(ctx, item.ID))
	_, err := s.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	assert.ErrorIs(t, s.DeleteItem(ctx, item.ID), catalog.ErrNotFound)
}

func TestListEmbeddings(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// Explicit ids inserted out of order; no-vector row must be skipped.
	require.NoError(t, s.PutItem(ctx, &Item{ID: 3, Vector: []float32{3}}))
	require.NoError(t, s.PutItem(ctx, &Item{ID: 1, Vector: []float32{1}, OwnerID: ptr(5)}))
	require.NoError(t, s.PutItem(ctx, &Item{ID: 2}))
	require.NoError(t, s.PutItem(ctx, &Item{ID: 4, Vector: []float32{4}}))

	t.Run("AscendingAndFiltered", func(t *testing.T) {
		records, err := s.ListEmbeddings(ctx, 0)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, int64(1), records[0].ItemID)
		assert.Equal(t, int64(3), records[1].ItemID)
		assert.Equal(t, int64(4), records[2].ItemID)
		require.NotNil(t, records[0].OwnerID)
		assert.Equal(t, int64(5), *records[0].OwnerID)
		assert.Nil(t, records[1].OwnerID)
	})

	t.Run("Exclude", func(t *testing.T) {
		records, err := s.ListEmbeddings(ctx, 3)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, int64(1), records[0].ItemID)
		assert.Equal(t, int64(4), records[1].ItemID)
	})

	t.Run("Count", func(t *testing.T) {
		count, err := s.CountEmbeddings(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})
}

func TestVectorCodec(t *testing.T) {
	v := []float32{0, -1.5, 3.25}
	decoded, err := decodeVector(encodeVector(v))
	require.NoError(t, err)
	assert.Equal(t, v, decoded)

	assert.Nil(t, encodeVector(nil))

	_, err = decodeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}
