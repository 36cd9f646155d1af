// Package flat provides an exact brute-force index over unit-normalized
// vectors. Vectors are stored as a single contiguous float32 array and every
// query is compared against every stored vector, so results are exact.
//
// Corpora here are per-owner wardrobes, not web-scale collections; exactness
// over a small array beats the complexity of approximate structures.
package flat

import (
	"container/heap"
	"errors"
	"fmt"

	"github.com/smartwardrobe/simdex/distance"
)

var (
	// ErrEmptyVector is returned when a zero-length vector is appended or queried.
	ErrEmptyVector = errors.New("flat: empty vector")

	// ErrZeroVector is returned when a vector cannot be L2-normalized.
	ErrZeroVector = errors.New("flat: cannot normalize zero vector")

	// ErrInvalidLimit is returned when a non-positive candidate limit is requested.
	ErrInvalidLimit = errors.New("flat: limit must be positive")
)

// ErrDimensionMismatch is a named error type for vector/index dimension mismatch.
type ErrDimensionMismatch struct {
	Expected int // Expected dimensions
	Actual   int // Actual dimensions
}

// Error returns the error message for dimension mismatch.
func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Candidate is a raw search hit: the ordinal of a stored vector and its
// cosine similarity to the query.
type Candidate struct {
	Ordinal uint32
	Score   float32
}

// Options contains configuration options for the flat index.
type Options struct {
	// Dimension is the fixed vector dimensionality for this index.
	// It must be > 0 and is enforced for all appends and searches.
	Dimension int
}

// Index is a flat array of unit-normalized vectors with brute-force search.
//
// Index performs no internal locking. The owning index manager serializes
// writers and guards readers with its own reader/writer lock.
type Index struct {
	dimension int
	data      []float32 // len(data) == Size() * dimension
}

// New creates a new empty flat index.
func New(optFns ...func(o *Options)) (*Index, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Dimension <= 0 {
		return nil, fmt.Errorf("flat: invalid dimension: %d", opts.Dimension)
	}

	return &Index{dimension: opts.Dimension}, nil
}

// Dimension returns the fixed vector dimensionality.
func (x *Index) Dimension() int {
	return x.dimension
}

// Size returns the number of stored vectors.
func (x *Index) Size() int {
	return len(x.data) / x.dimension
}

// Append normalizes a copy of v and appends it, returning its ordinal.
func (x *Index) Append(v []float32) (uint32, error) {
	if len(v) == 0 {
		return 0, ErrEmptyVector
	}
	if len(v) != x.dimension {
		return 0, &ErrDimensionMismatch{Expected: x.dimension, Actual: len(v)}
	}

	vec, ok := distance.NormalizeL2Copy(v)
	if !ok {
		return 0, ErrZeroVector
	}

	ordinal := uint32(x.Size())
	x.data = append(x.data, vec...)
	return ordinal, nil
}

// VectorAt returns the stored vector at the given ordinal.
// The returned slice aliases internal memory and must be treated as read-only.
func (x *Index) VectorAt(ordinal uint32) ([]float32, bool) {
	if int(ordinal) >= x.Size() {
		return nil, false
	}
	off := int(ordinal) * x.dimension
	return x.data[off : off+x.dimension], true
}

// Search returns up to n candidates ordered by descending cosine similarity
// to q, ties broken by ascending ordinal. The query is normalized before
// comparison. When filter is non-nil, only ordinals it accepts are considered.
func (x *Index) Search(q []float32, n int, filter func(ordinal uint32) bool) ([]Candidate, error) {
	if n <= 0 {
		return nil, ErrInvalidLimit
	}
	if len(q) == 0 {
		return nil, ErrEmptyVector
	}
	if len(q) != x.dimension {
		return nil, &ErrDimensionMismatch{Expected: x.dimension, Actual: len(q)}
	}

	size := x.Size()
	if size == 0 {
		return nil, nil
	}

	query, ok := distance.NormalizeL2Copy(q)
	if !ok {
		return nil, ErrZeroVector
	}

	if n > size {
		n = size
	}

	// Bounded min-heap: the root is the worst candidate kept so far.
	top := make(candidateHeap, 0, n)
	for ord := 0; ord < size; ord++ {
		ordinal := uint32(ord)
		if filter != nil && !filter(ordinal) {
			continue
		}

		off := ord * x.dimension
		c := Candidate{Ordinal: ordinal, Score: distance.Dot(query, x.data[off:off+x.dimension])}

		if top.Len() < n {
			heap.Push(&top, c)
			continue
		}
		if worse(top[0], c) {
			top[0] = c
			heap.Fix(&top, 0)
		}
	}

	results := make([]Candidate, top.Len())
	for i := top.Len() - 1; i >= 0; i-- {
		results[i] = heap.Pop(&top).(Candidate)
	}
	return results, nil
}

// worse reports whether a ranks strictly below b: lower score, or equal score
// with the higher ordinal. This makes result order fully deterministic.
func worse(a, b Candidate) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Ordinal > b.Ordinal
}

type candidateHeap []Candidate

func (h candidateHeap) Len() int           { return len(h) }
func (h candidateHeap) Less(i, j int) bool { return worse(h[i], h[j]) }
func (h candidateHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(v any) {
	*h = append(*h, v.(Candidate))
}

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}
