package blobstore

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundtrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Open(ctx, "index.bin")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Put(ctx, "index.bin", []byte("snapshot")))
	assert.Equal(t, 1, m.Len())

	rc, err := m.Open(ctx, "index.bin")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte("snapshot"), data)
}

func TestMemoryPutIsolation(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	buf := []byte("aaaa")
	require.NoError(t, m.Put(ctx, "b", buf))
	buf[0] = 'z'

	rc, err := m.Open(ctx, "b")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, []byte("aaaa"), data, "store must copy on Put")
}

func TestMemoryFaultInjection(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	boom := errors.New("disk full")
	m.SetPutError(boom)
	assert.ErrorIs(t, m.Put(ctx, "x", []byte("1")), boom)
	assert.Equal(t, 0, m.Len())

	m.SetPutError(nil)
	assert.NoError(t, m.Put(ctx, "x", []byte("1")))
}
