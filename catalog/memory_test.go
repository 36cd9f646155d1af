package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryListEmbeddings(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Put(Record{ItemID: 3, Vector: []float32{3}})
	m.Put(Record{ItemID: 1, Vector: []float32{1}})
	m.Put(Record{ItemID: 2, Vector: []float32{2}})
	m.Put(Record{ItemID: 4}) // no embedding

	t.Run("AscendingOrder", func(t *testing.T) {
		records, err := m.ListEmbeddings(ctx, 0)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, int64(1), records[0].ItemID)
		assert.Equal(t, int64(2), records[1].ItemID)
		assert.Equal(t, int64(3), records[2].ItemID)
	})

	t.Run("Exclude", func(t *testing.T) {
		records, err := m.ListEmbeddings(ctx, 2)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, int64(1), records[0].ItemID)
		assert.Equal(t, int64(3), records[1].ItemID)
	})

	t.Run("Count", func(t *testing.T) {
		count, err := m.CountEmbeddings(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count, "records without embeddings do not count")
	})
}

func TestMemoryGetDelete(t *testing.T) {
	m := NewMemory()
	m.Put(Record{ItemID: 1, Vector: []float32{1, 2}})

	rec, err := m.Get(1)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, rec.Vector)

	m.Delete(1)
	_, err = m.Get(1)
	assert.ErrorIs(t, err, ErrNotFound)
}
