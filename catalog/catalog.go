// Package catalog defines the authoritative source of truth the index is
// derived from: the store of items, their embeddings, and their owners.
//
// The vector index is a cache over a Catalog. It must always be fully
// reconstructible from ListEmbeddings alone, in ascending item-id order,
// which is the canonical ordinal assignment.
package catalog

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested item does not exist.
var ErrNotFound = errors.New("catalog: item not found")

// Record is the authoritative tuple for one embedding-bearing item.
type Record struct {
	// ItemID is the externally visible item identifier.
	ItemID int64

	// Vector is the item's embedding. Need not be normalized; the index
	// normalizes on insert.
	Vector []float32

	// OwnerID is the owning user, or nil for unowned / legacy public items.
	OwnerID *int64
}

// Catalog is the read interface the index consumes.
type Catalog interface {
	// ListEmbeddings returns every embedding-bearing record except excludeID,
	// ordered ascending by item id. An excludeID of 0 excludes nothing.
	ListEmbeddings(ctx context.Context, excludeID int64) ([]Record, error)

	// CountEmbeddings returns the number of embedding-bearing records.
	CountEmbeddings(ctx context.Context) (int, error)
}
