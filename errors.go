package simdex

import (
	"errors"
	"fmt"

	"github.com/smartwardrobe/simdex/flat"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrPersistence wraps snapshot write failures. When Add or Remove
	// returns it, the in-memory mutation has already been applied and the
	// persisted snapshot is stale until the next successful mutation; the
	// startup reconciliation check heals the gap after a restart.
	ErrPersistence = errors.New("snapshot persistence failed")
)

// ErrDimensionMismatch indicates a vector/query dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrDuplicateItem indicates an Add for an item id already present in the
// index. Repeated inserts would silently create duplicate entries, so they
// are rejected instead.
type ErrDuplicateItem struct {
	ItemID int64
}

func (e *ErrDuplicateItem) Error() string {
	return fmt.Sprintf("item %d already indexed", e.ItemID)
}

// translateError normalizes errors from inner packages into the package's
// public taxonomy.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var dm *flat.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}
	if errors.Is(err, flat.ErrInvalidLimit) {
		return fmt.Errorf("%w: %w", ErrInvalidK, err)
	}

	return err
}
