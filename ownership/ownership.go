// Package ownership tracks which owner, if any, an indexed item belongs to,
// and maintains roaring bitmaps of vector ordinals per owner for search-time
// filtering.
//
// Absence of an owner means "unowned / legacy public item", not an error:
// such items remain visible to every owner-scoped search.
package ownership

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Map records item ownership alongside ordinal filter bitmaps.
//
// Map is maintained only by the index manager, in lockstep with the id list:
// entries never exist for items absent from the index, and the whole Map is
// rebuilt from the catalog on every index rebuild.
type Map struct {
	owners   map[int64]int64  // itemID -> ownerID
	ordinals map[int64]uint32 // itemID -> ordinal

	byOwner map[int64]*roaring.Bitmap // ownerID -> owned ordinals
	public  *roaring.Bitmap           // ordinals with no recorded owner
}

// New creates an empty ownership map.
func New() *Map {
	return &Map{
		owners:   make(map[int64]int64),
		ordinals: make(map[int64]uint32),
		byOwner:  make(map[int64]*roaring.Bitmap),
		public:   roaring.New(),
	}
}

// Set records the ownership of itemID stored at the given ordinal.
// A nil ownerID files the item as public.
func (m *Map) Set(itemID int64, ordinal uint32, ownerID *int64) {
	m.ordinals[itemID] = ordinal

	if ownerID == nil {
		m.public.Add(ordinal)
		return
	}

	m.owners[itemID] = *ownerID
	bm, ok := m.byOwner[*ownerID]
	if !ok {
		bm = roaring.New()
		m.byOwner[*ownerID] = bm
	}
	bm.Add(ordinal)
}

// Get returns the recorded owner of itemID. The second return value is false
// when the item is unowned or unknown.
func (m *Map) Get(itemID int64) (int64, bool) {
	owner, ok := m.owners[itemID]
	return owner, ok
}

// Remove drops all ownership records for itemID.
func (m *Map) Remove(itemID int64) {
	ordinal, tracked := m.ordinals[itemID]
	if !tracked {
		return
	}
	delete(m.ordinals, itemID)

	owner, owned := m.owners[itemID]
	if !owned {
		m.public.Remove(ordinal)
		return
	}
	delete(m.owners, itemID)
	if bm, ok := m.byOwner[owner]; ok {
		bm.Remove(ordinal)
		if bm.IsEmpty() {
			delete(m.byOwner, owner)
		}
	}
}

// Len returns the number of tracked items, owned and public.
func (m *Map) Len() int {
	return len(m.ordinals)
}

// Visible returns the set of ordinals an owner-scoped search may see: the
// owner's items plus all public items (legacy-public policy).
// The returned bitmap is a copy and safe to use after further mutation.
func (m *Map) Visible(ownerID int64) *roaring.Bitmap {
	visible := m.public.Clone()
	if bm, ok := m.byOwner[ownerID]; ok {
		visible.Or(bm)
	}
	return visible
}
