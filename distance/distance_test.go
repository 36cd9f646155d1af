package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDot(t *testing.T) {
	t.Run("Orthogonal", func(t *testing.T) {
		assert.Equal(t, float32(0), Dot([]float32{1, 0}, []float32{0, 1}))
	})

	t.Run("Parallel", func(t *testing.T) {
		assert.Equal(t, float32(1), Dot([]float32{1, 0}, []float32{1, 0}))
	})

	t.Run("General", func(t *testing.T) {
		assert.InDelta(t, 11.0, Dot([]float32{1, 2}, []float32{3, 4}), 1e-6)
	})
}

func TestNormalizeL2InPlace(t *testing.T) {
	t.Run("UnitNorm", func(t *testing.T) {
		v := []float32{3, 4}
		require.True(t, NormalizeL2InPlace(v))
		assert.InDelta(t, 0.6, v[0], 1e-6)
		assert.InDelta(t, 0.8, v[1], 1e-6)
		assert.InDelta(t, 1.0, math.Sqrt(float64(Dot(v, v))), 1e-6)
	})

	t.Run("ZeroVector", func(t *testing.T) {
		assert.False(t, NormalizeL2InPlace([]float32{0, 0, 0}))
	})

	t.Run("Empty", func(t *testing.T) {
		assert.False(t, NormalizeL2InPlace(nil))
	})
}

func TestNormalizeL2Copy(t *testing.T) {
	src := []float32{0, 2, 0}
	dst, ok := NormalizeL2Copy(src)
	require.True(t, ok)
	assert.Equal(t, []float32{0, 2, 0}, src, "source must not be modified")
	assert.Equal(t, []float32{0, 1, 0}, dst)

	_, ok = NormalizeL2Copy([]float32{0, 0})
	assert.False(t, ok)
}
