package simdex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartwardrobe/simdex/flat"
)

func buildVectors(t *testing.T, dim int, rows [][]float32) *flat.Index {
	t.Helper()
	idx, err := flat.New(func(o *flat.Options) { o.Dimension = dim })
	require.NoError(t, err)
	for _, row := range rows {
		_, err := idx.Append(row)
		require.NoError(t, err)
	}
	return idx
}

func TestSnapshotEncodeDecode(t *testing.T) {
	rows := [][]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0.5, 0.5, 0.5, 0.5},
	}

	for _, compression := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(compression.String(), func(t *testing.T) {
			vectors := buildVectors(t, 4, rows)

			data, err := encodeSnapshot(vectors, compression)
			require.NoError(t, err)
			assert.Equal(t, snapshotMagic[:], data[0:4])

			decoded, err := decodeSnapshot(data)
			require.NoError(t, err)
			require.Equal(t, vectors.Size(), decoded.Size())
			require.Equal(t, vectors.Dimension(), decoded.Dimension())

			for i := 0; i < vectors.Size(); i++ {
				want, ok := vectors.VectorAt(uint32(i))
				require.True(t, ok)
				got, ok := decoded.VectorAt(uint32(i))
				require.True(t, ok)
				assert.Equal(t, want, got)
			}
		})
	}
}

func TestSnapshotEncodeDecodeEmpty(t *testing.T) {
	vectors := buildVectors(t, 4, nil)

	data, err := encodeSnapshot(vectors, CompressionZstd)
	require.NoError(t, err)

	decoded, err := decodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, 0, decoded.Size())
	assert.Equal(t, 4, decoded.Dimension())
}

func TestSnapshotDecodeErrors(t *testing.T) {
	vectors := buildVectors(t, 4, [][]float32{{1, 0, 0, 0}})
	data, err := encodeSnapshot(vectors, CompressionNone)
	require.NoError(t, err)

	t.Run("truncated header", func(t *testing.T) {
		_, err := decodeSnapshot(data[:4])
		assert.ErrorIs(t, err, errSnapshotMagic)
	})

	t.Run("bad magic", func(t *testing.T) {
		corrupt := append([]byte(nil), data...)
		corrupt[0] = 'X'
		_, err := decodeSnapshot(corrupt)
		assert.ErrorIs(t, err, errSnapshotMagic)
	})

	t.Run("bad version", func(t *testing.T) {
		corrupt := append([]byte(nil), data...)
		corrupt[4] = 0xFF
		corrupt[5] = 0xFF
		_, err := decodeSnapshot(corrupt)
		assert.ErrorIs(t, err, errSnapshotVersion)
	})

	t.Run("unknown compression", func(t *testing.T) {
		corrupt := append([]byte(nil), data...)
		corrupt[6] = 0xEE
		_, err := decodeSnapshot(corrupt)
		assert.Error(t, err)
	})
}
