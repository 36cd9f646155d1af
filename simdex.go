package simdex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/smartwardrobe/simdex/blobstore"
	"github.com/smartwardrobe/simdex/catalog"
	"github.com/smartwardrobe/simdex/flat"
	"github.com/smartwardrobe/simdex/ownership"
)

// Result is one search hit: an item id and its cosine similarity to the
// query, nominally in [-1, 1].
type Result struct {
	ItemID int64
	Score  float32
}

// state is the (vector store, id list, ownership map) triple. The three parts
// are always mutated together under the index write lock; rebuilds construct
// a replacement state on the side and swap it in whole, so readers never
// observe a partially rebuilt index.
type state struct {
	vectors *flat.Index
	ids     []int64 // ordinal -> item id
	byItem  map[int64]uint32
	owners  *ownership.Map
}

// Index is the similarity index over per-item embeddings with per-owner
// isolation. It is a derived cache of a catalog.Catalog and is always
// reconstructible from the catalog alone.
//
// Index is safe for concurrent use: searches run in parallel with each other,
// while Add and Remove are exclusive with everything for their full duration,
// including the rebuild path. All operations are synchronous and
// run-to-completion.
type Index struct {
	mu      sync.RWMutex
	st      *state
	catalog catalog.Catalog
	blobs   blobstore.Store
	opts    options
}

// Open loads the persisted snapshot if present, or creates an empty index.
//
// The snapshot holds only vectors; item ids and ownership are rederived from
// the catalog in ascending item-id order, the canonical ordinal assignment.
// If the snapshot's vector count disagrees with the catalog — records were
// deleted or added without going through this index — the index is rebuilt
// from the catalog before Open returns. The mismatch is logged, not surfaced.
func Open(ctx context.Context, cat catalog.Catalog, blobs blobstore.Store, optFns ...Option) (*Index, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.dimension <= 0 {
		return nil, fmt.Errorf("simdex: invalid dimension: %d", opts.dimension)
	}

	idx := &Index{catalog: cat, blobs: blobs, opts: opts}

	// The snapshot blob and the catalog listing are independent reads.
	var (
		snapshot []byte
		records  []catalog.Record
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rc, err := blobs.Open(gctx, opts.snapshotName)
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("simdex: open snapshot: %w", err)
		}
		defer rc.Close()
		snapshot, err = io.ReadAll(rc)
		if err != nil {
			return fmt.Errorf("simdex: read snapshot: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		records, err = cat.ListEmbeddings(gctx, 0)
		if err != nil {
			return fmt.Errorf("simdex: list catalog: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if snapshot != nil {
		vectors, err := decodeSnapshot(snapshot)
		switch {
		case err != nil:
			opts.logger.WarnContext(ctx, "snapshot unreadable, rebuilding from catalog", "error", err)
		case vectors.Dimension() != opts.dimension:
			opts.logger.WarnContext(ctx, "snapshot dimension differs, rebuilding from catalog",
				"snapshot_dimension", vectors.Dimension(), "dimension", opts.dimension)
		case vectors.Size() != len(records):
			opts.logger.LogReconcile(ctx, vectors.Size(), len(records))
		default:
			idx.st = attachIdentity(vectors, records)
			return idx, nil
		}
	}

	st, err := buildState(opts.dimension, records)
	if err != nil {
		return nil, err
	}
	idx.st = st

	// Refresh the snapshot only if there is something to record or a stale
	// snapshot to replace; a brand-new empty index persists on first mutation.
	if snapshot != nil || len(records) > 0 {
		if err := idx.persistLocked(ctx); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// attachIdentity pairs loaded vectors with identity rederived from the
// catalog. Records arrive ascending by item id, matching the order vectors
// were appended in.
func attachIdentity(vectors *flat.Index, records []catalog.Record) *state {
	st := &state{
		vectors: vectors,
		ids:     make([]int64, 0, len(records)),
		byItem:  make(map[int64]uint32, len(records)),
		owners:  ownership.New(),
	}
	for i, rec := range records {
		ordinal := uint32(i)
		st.ids = append(st.ids, rec.ItemID)
		st.byItem[rec.ItemID] = ordinal
		st.owners.Set(rec.ItemID, ordinal, rec.OwnerID)
	}
	return st
}

// buildState constructs a fresh state from catalog records.
func buildState(dimension int, records []catalog.Record) (*state, error) {
	vectors, err := flat.New(func(o *flat.Options) { o.Dimension = dimension })
	if err != nil {
		return nil, err
	}

	st := &state{
		vectors: vectors,
		ids:     make([]int64, 0, len(records)),
		byItem:  make(map[int64]uint32, len(records)),
		owners:  ownership.New(),
	}
	for _, rec := range records {
		ordinal, err := vectors.Append(rec.Vector)
		if err != nil {
			return nil, fmt.Errorf("simdex: rebuild item %d: %w", rec.ItemID, translateError(err))
		}
		st.ids = append(st.ids, rec.ItemID)
		st.byItem[rec.ItemID] = ordinal
		st.owners.Set(rec.ItemID, ordinal, rec.OwnerID)
	}
	return st, nil
}

// Add appends one item to the index and persists the snapshot.
//
// Shape errors and duplicate ids are rejected before any state mutation.
// A persistence failure is returned wrapped in ErrPersistence; the in-memory
// state is already mutated at that point (see ErrPersistence).
func (x *Index) Add(ctx context.Context, rec catalog.Record) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	err := x.addLocked(ctx, rec)
	x.opts.logger.LogAdd(ctx, rec.ItemID, len(rec.Vector), err)
	return err
}

func (x *Index) addLocked(ctx context.Context, rec catalog.Record) error {
	if _, dup := x.st.byItem[rec.ItemID]; dup {
		return &ErrDuplicateItem{ItemID: rec.ItemID}
	}

	ordinal, err := x.st.vectors.Append(rec.Vector)
	if err != nil {
		return translateError(err)
	}
	x.st.ids = append(x.st.ids, rec.ItemID)
	x.st.byItem[rec.ItemID] = ordinal
	x.st.owners.Set(rec.ItemID, ordinal, rec.OwnerID)

	return x.persistLocked(ctx)
}

// Remove deletes one item by rebuilding the index from the catalog without
// it, then persists the new snapshot. Removing an absent id is a no-op, not
// an error.
//
// Cost is O(N) in catalog size — an accepted tradeoff over incremental
// tombstoning for wardrobe-sized corpora. If the catalog read fails the
// prior state remains fully servable.
func (x *Index) Remove(ctx context.Context, itemID int64) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.st.byItem[itemID]; !ok {
		x.opts.logger.LogRemove(ctx, itemID, false, nil)
		return nil
	}

	records, err := x.catalog.ListEmbeddings(ctx, itemID)
	if err != nil {
		err = fmt.Errorf("simdex: list catalog: %w", err)
		x.opts.logger.LogRemove(ctx, itemID, true, err)
		return err
	}

	st, err := buildState(x.opts.dimension, records)
	if err != nil {
		x.opts.logger.LogRemove(ctx, itemID, true, err)
		return err
	}
	x.st = st

	err = x.persistLocked(ctx)
	x.opts.logger.LogRemove(ctx, itemID, true, err)
	return err
}

// Search returns up to k items ordered by descending similarity to query.
//
// The store over-fetches min(k*overfetch, size) raw candidates to absorb
// post-filtering losses. If filters eat through the whole batch the short
// list is returned rather than re-querying with a larger one — a deliberate
// precision/performance tradeoff.
func (x *Index) Search(ctx context.Context, query []float32, k int, optFns ...SearchOption) ([]Result, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}
	var so searchOptions
	for _, fn := range optFns {
		fn(&so)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	size := x.st.vectors.Size()
	if size == 0 {
		return nil, nil
	}

	n := k * x.opts.overfetch
	if n <= 0 || n > size { // n <= 0 catches multiplication overflow
		n = size
	}

	var filter func(uint32) bool
	if so.ownerID != nil {
		visible := x.st.owners.Visible(*so.ownerID)
		filter = visible.Contains
	}

	candidates, err := x.st.vectors.Search(query, n, filter)
	if err != nil {
		err = translateError(err)
		x.opts.logger.LogSearch(ctx, k, 0, err)
		return nil, err
	}

	results := make([]Result, 0, min(k, len(candidates)))
	for _, c := range candidates {
		if int(c.Ordinal) >= len(x.st.ids) {
			continue
		}
		itemID := x.st.ids[c.Ordinal]
		if so.excludeID != 0 && itemID == so.excludeID {
			continue
		}
		results = append(results, Result{ItemID: itemID, Score: c.Score})
		if len(results) == k {
			break
		}
	}

	x.opts.logger.LogSearch(ctx, k, len(results), nil)
	return results, nil
}

// Count returns the number of indexed items.
func (x *Index) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.st.vectors.Size()
}

// Dimension returns the fixed embedding dimensionality.
func (x *Index) Dimension() int {
	return x.opts.dimension
}

// persistLocked encodes and stores the snapshot. Callers hold the write lock,
// so persistence is ordered after the in-memory mutation it records.
func (x *Index) persistLocked(ctx context.Context) error {
	data, err := encodeSnapshot(x.st.vectors, x.opts.compression)
	if err == nil {
		err = x.blobs.Put(ctx, x.opts.snapshotName, data)
	}
	x.opts.logger.LogSnapshot(ctx, x.opts.snapshotName, len(data), err)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}
