package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Compile-time check.
var _ Store = (*Local)(nil)

// Local implements Store using the local file system.
type Local struct {
	root string
}

// NewLocal creates a Local store rooted at the given directory, creating it
// if necessary.
func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("blobstore: creating root: %w", err)
	}
	return &Local{root: root}, nil
}

// Open opens a blob for reading. os.Open's not-exist error satisfies
// errors.Is(err, ErrNotFound).
func (s *Local) Open(_ context.Context, name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.root, name))
}

// Put writes the blob through a temp file and renames it into place, so the
// target path always holds either the old or the new complete snapshot.
func (s *Local) Put(_ context.Context, name string, data []byte) error {
	target := filepath.Join(s.root, name)
	dir := filepath.Dir(target)

	// Temp file in the same directory so the rename is atomic.
	tmp, err := os.CreateTemp(dir, filepath.Base(name)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	_ = tmp.Chmod(0o644)

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpName, target); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	// Success: prevent deferred cleanup from removing the final file.
	tmpName = ""
	return nil
}
