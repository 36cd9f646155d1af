// Package simdex implements the wardrobe similarity index: per-item CLIP
// embeddings with exact cosine nearest-neighbor search and per-owner
// isolation.
//
// The index is a derived cache over a catalog.Catalog, the authoritative
// store of items and embeddings. Adds append to a flat vector store and
// persist a snapshot; removes rebuild the whole index from the catalog
// without the target and republish atomically; on startup the snapshot is
// reconciled against the catalog and rebuilt if they disagree.
//
// Basic usage:
//
//	cat, _ := sqlite.Open("wardrobe.db")
//	blobs, _ := blobstore.NewLocal("data")
//
//	idx, err := simdex.Open(ctx, cat, blobs)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	_ = idx.Add(ctx, catalog.Record{ItemID: item.ID, Vector: embedding, OwnerID: &userID})
//
//	results, _ := idx.Search(ctx, embedding, 5,
//	    simdex.WithExcludeID(item.ID),
//	    simdex.WithOwner(userID),
//	)
//
// Construct one Index per process at application startup and pass the handle
// to request handlers; there is no implicit global instance.
package simdex
