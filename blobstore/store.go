// Package blobstore abstracts where index snapshots live: local disk for the
// single-process default, S3/MinIO for deployments that want the snapshot off
// the box, memory for tests.
//
// A snapshot is a single small blob read once at startup and replaced whole
// after every mutation, so the interface is deliberately coarse: open for
// reading, atomic put.
package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction for reading and atomically replacing named blobs.
type Store interface {
	// Open opens a blob for reading. The caller closes the returned reader.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Put atomically replaces the blob contents. Readers never observe a
	// partially written blob.
	Put(ctx context.Context, name string, data []byte) error
}
