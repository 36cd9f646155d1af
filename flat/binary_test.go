package flat

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryRoundtrip(t *testing.T) {
	x := newTestIndex(t, 3)
	_, err := x.Append([]float32{1, 0, 0})
	require.NoError(t, err)
	_, err = x.Append([]float32{0, 3, 4})
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := x.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Equal(t, headerSize+2*3*4, buf.Len())

	loaded, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Dimension())
	assert.Equal(t, 2, loaded.Size())

	want, _ := x.VectorAt(1)
	got, ok := loaded.VectorAt(1)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestBinaryRoundtripEmpty(t *testing.T) {
	x := newTestIndex(t, 8)

	var buf bytes.Buffer
	_, err := x.WriteTo(&buf)
	require.NoError(t, err)

	loaded, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Size())
	assert.Equal(t, 8, loaded.Dimension())
}

func TestReadRejectsMalformedStreams(t *testing.T) {
	t.Run("BadMagic", func(t *testing.T) {
		data := make([]byte, headerSize)
		copy(data, "NOPE")
		_, err := Read(bytes.NewReader(data))
		assert.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("BadVersion", func(t *testing.T) {
		x := newTestIndex(t, 2)
		var buf bytes.Buffer
		_, err := x.WriteTo(&buf)
		require.NoError(t, err)

		data := buf.Bytes()
		data[4] = 0xFF
		_, err = Read(bytes.NewReader(data))
		assert.ErrorIs(t, err, ErrInvalidVersion)
	})

	t.Run("TruncatedHeader", func(t *testing.T) {
		_, err := Read(bytes.NewReader(fileMagic[:]))
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("TruncatedVectors", func(t *testing.T) {
		x := newTestIndex(t, 4)
		_, err := x.Append([]float32{1, 0, 0, 0})
		require.NoError(t, err)

		var buf bytes.Buffer
		_, err = x.WriteTo(&buf)
		require.NoError(t, err)

		_, err = Read(bytes.NewReader(buf.Bytes()[:buf.Len()-2]))
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})
}
