package observation

// InsertedIndex marks an IndexMap slot holding a newly inserted item.
const InsertedIndex = -2

// IndexMap records, for every slot of a collection after a series of
// mutations, the slot the item occupied before them, or InsertedIndex.
// DeletedIndices and DeletedItems list the removed pre-mutation slots and
// their items.
type IndexMap struct {
	Entries        []int
	DeletedIndices []int
	DeletedItems   []interface{}
}

// NewIndexMap returns the identity map for a collection of the given length.
func NewIndexMap(length int) *IndexMap {
	entries := make([]int, length)
	for i := range entries {
		entries[i] = i
	}
	return &IndexMap{Entries: entries}
}

// Len returns the number of slots.
func (m *IndexMap) Len() int { return len(m.Entries) }

// HasChanges reports whether the map differs from the identity map.
func (m *IndexMap) HasChanges() bool {
	if len(m.DeletedIndices) > 0 {
		return true
	}
	for i, e := range m.Entries {
		if e != i {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of m.
func (m *IndexMap) Clone() *IndexMap {
	c := &IndexMap{
		Entries:        make([]int, len(m.Entries)),
		DeletedIndices: make([]int, len(m.DeletedIndices)),
		DeletedItems:   make([]interface{}, len(m.DeletedItems)),
	}
	copy(c.Entries, m.Entries)
	copy(c.DeletedIndices, m.DeletedIndices)
	copy(c.DeletedItems, m.DeletedItems)
	return c
}

func (m *IndexMap) recordDeleted(slot int, item interface{}) {
	if idx := m.Entries[slot]; idx > -1 {
		m.DeletedIndices = append(m.DeletedIndices, idx)
		m.DeletedItems = append(m.DeletedItems, item)
	}
}

func insertedSlots(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = InsertedIndex
	}
	return s
}
