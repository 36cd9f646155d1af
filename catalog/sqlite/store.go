// Package sqlite provides the SQLite-backed wardrobe catalog.
//
// The items table is the source of truth the vector index is derived from.
// Embeddings are stored as little-endian float32 BLOBs; rows without an
// embedding exist (items whose classification failed) and are skipped by the
// index-facing queries.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/smartwardrobe/simdex/catalog"
)

// Compile-time check.
var _ catalog.Catalog = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS items (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	owner_id      INTEGER,
	name          TEXT NOT NULL DEFAULT '',
	category      TEXT NOT NULL DEFAULT '',
	color         TEXT NOT NULL DEFAULT '',
	season        TEXT NOT NULL DEFAULT '',
	occasion_tags TEXT NOT NULL DEFAULT '[]',
	vector        BLOB,
	created_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_items_owner ON items(owner_id);
`

// Item is a wardrobe item row. Only ID, OwnerID and Vector matter to the
// vector index; the remaining columns belong to the application layer.
type Item struct {
	ID           int64
	OwnerID      *int64
	Name         string
	Category     string
	Color        string
	Season       string
	OccasionTags []string
	Vector       []float32
	CreatedAt    time.Time
}

// Store is a SQLite-backed catalog.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the catalog database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	// WAL mode for concurrent readers, busy timeout for writer contention.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// PutItem inserts item. When item.ID is zero the assigned row id is written
// back into item.ID.
func (s *Store) PutItem(ctx context.Context, item *Item) error {
	tags, err := json.Marshal(item.OccasionTags)
	if err != nil {
		return fmt.Errorf("encoding occasion tags: %w", err)
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	var id any
	if item.ID != 0 {
		id = item.ID
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO items (id, owner_id, name, category, color, season, occasion_tags, vector, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, ownerArg(item.OwnerID), item.Name, item.Category, item.Color, item.Season,
		string(tags), encodeVector(item.Vector), item.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("inserting item: %w", err)
	}

	if item.ID == 0 {
		item.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading assigned id: %w", err)
		}
	}
	return nil
}

// GetItem returns the item with the given id.
func (s *Store) GetItem(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, category, color, season, occasion_tags, vector, created_at
		FROM items WHERE id = ?`, id)

	var (
		item    Item
		owner   sql.NullInt64
		tags    string
		blob    []byte
		created int64
	)
	err := row.Scan(&item.ID, &owner, &item.Name, &item.Category, &item.Color,
		&item.Season, &tags, &blob, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning item: %w", err)
	}

	if owner.Valid {
		item.OwnerID = &owner.Int64
	}
	if err := json.Unmarshal([]byte(tags), &item.OccasionTags); err != nil {
		return nil, fmt.Errorf("decoding occasion tags: %w", err)
	}
	item.Vector, err = decodeVector(blob)
	if err != nil {
		return nil, err
	}
	item.CreatedAt = time.Unix(created, 0).UTC()
	return &item, nil
}

// DeleteItem removes the item with the given id.
func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// ListEmbeddings implements catalog.Catalog. Records come back ascending by
// item id, which is the canonical ordinal assignment after a rebuild.
func (s *Store) ListEmbeddings(ctx context.Context, excludeID int64) ([]catalog.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, vector FROM items
		WHERE vector IS NOT NULL AND (?1 = 0 OR id != ?1)
		ORDER BY id ASC`, excludeID)
	if err != nil {
		return nil, fmt.Errorf("listing embeddings: %w", err)
	}
	defer rows.Close()

	var records []catalog.Record
	for rows.Next() {
		var (
			rec   catalog.Record
			owner sql.NullInt64
			blob  []byte
		)
		if err := rows.Scan(&rec.ItemID, &owner, &blob); err != nil {
			return nil, fmt.Errorf("scanning embedding row: %w", err)
		}
		if owner.Valid {
			rec.OwnerID = &owner.Int64
		}
		rec.Vector, err = decodeVector(blob)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountEmbeddings implements catalog.Catalog.
func (s *Store) CountEmbeddings(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE vector IS NOT NULL`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting embeddings: %w", err)
	}
	return count, nil
}

func ownerArg(ownerID *int64) any {
	if ownerID == nil {
		return nil
	}
	return *ownerID
}

// encodeVector packs v as a little-endian float32 BLOB. Nil and empty vectors
// are stored as SQL NULL so embedding-bearing queries can filter on it.
func encodeVector(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(blob []byte) ([]float32, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("malformed vector blob: %d bytes", len(blob))
	}
	v := make([]float32, len(blob)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[4*i:]))
	}
	return v, nil
}
