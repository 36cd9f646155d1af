package ownership

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v int64) *int64 { return &v }

func TestSetGet(t *testing.T) {
	m := New()
	m.Set(10, 0, ptr(1))
	m.Set(20, 1, nil)

	owner, ok := m.Get(10)
	assert.True(t, ok)
	assert.Equal(t, int64(1), owner)

	_, ok = m.Get(20)
	assert.False(t, ok, "public item has no recorded owner")

	_, ok = m.Get(99)
	assert.False(t, ok)

	assert.Equal(t, 2, m.Len())
}

func TestRemove(t *testing.T) {
	m := New()
	m.Set(10, 0, ptr(1))
	m.Set(20, 1, nil)

	m.Remove(10)
	_, ok := m.Get(10)
	assert.False(t, ok)
	assert.Equal(t, 1, m.Len())
	assert.False(t, m.Visible(1).Contains(0))

	m.Remove(20)
	assert.Equal(t, 0, m.Len())
	assert.True(t, m.Visible(1).IsEmpty())

	// Removing an unknown item is a no-op.
	m.Remove(99)
	assert.Equal(t, 0, m.Len())
}

func TestVisible(t *testing.T) {
	m := New()
	m.Set(10, 0, ptr(1)) // owner 1
	m.Set(20, 1, ptr(2)) // owner 2
	m.Set(30, 2, nil)    // public

	v1 := m.Visible(1)
	assert.True(t, v1.Contains(0), "own item visible")
	assert.False(t, v1.Contains(1), "other owner's item hidden")
	assert.True(t, v1.Contains(2), "public item visible")

	v3 := m.Visible(3)
	assert.False(t, v3.Contains(0))
	assert.False(t, v3.Contains(1))
	assert.True(t, v3.Contains(2), "unknown owner still sees public items")
}

func TestVisibleIsACopy(t *testing.T) {
	m := New()
	m.Set(10, 0, nil)

	v := m.Visible(1)
	m.Set(20, 1, ptr(1))

	assert.False(t, v.Contains(1), "snapshot must not see later mutations")
}
