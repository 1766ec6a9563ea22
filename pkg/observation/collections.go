package observation

// CollectionKind identifies the collection type behind a Collection.
type CollectionKind uint8

const (
	KindArray CollectionKind = iota + 1
	KindMap
	KindSet
)

// String returns the kind name.
func (k CollectionKind) String() string {
	switch k {
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindSet:
		return "set"
	default:
		return "unknown"
	}
}

// Collection is implemented by *Array, *Map and *Set.
type Collection interface {
	Len() int
	CollectionKind() CollectionKind
}

// Array is an observable ordered list.
// Mutating methods update the attached ArrayObserver, if any.
type Array struct {
	items    []interface{}
	observer *ArrayObserver
}

// NewArray creates an array holding items.
func NewArray(items ...interface{}) *Array {
	return &Array{items: items}
}

// CollectionKind implements Collection.
func (a *Array) CollectionKind() CollectionKind { return KindArray }

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.items) }

// At returns the element at i, or nil when i is out of range.
func (a *Array) At(i int) interface{} {
	if i < 0 || i >= len(a.items) {
		return nil
	}
	return a.items[i]
}

// Items returns the backing slice. Callers must not modify it.
func (a *Array) Items() []interface{} { return a.items }

// Push appends values and returns the new length.
func (a *Array) Push(values ...interface{}) int {
	if o := a.observer; o != nil {
		return o.push(values)
	}
	a.items = append(a.items, values...)
	return len(a.items)
}

// Pop removes and returns the last element.
func (a *Array) Pop() interface{} {
	if o := a.observer; o != nil {
		return o.pop()
	}
	if len(a.items) == 0 {
		return nil
	}
	v := a.items[len(a.items)-1]
	a.items = a.items[:len(a.items)-1]
	return v
}

// Shift removes and returns the first element.
func (a *Array) Shift() interface{} {
	if o := a.observer; o != nil {
		return o.shift()
	}
	if len(a.items) == 0 {
		return nil
	}
	v := a.items[0]
	a.items = a.items[1:]
	return v
}

// Unshift prepends values and returns the new length.
func (a *Array) Unshift(values ...interface{}) int {
	if o := a.observer; o != nil {
		return o.unshift(values)
	}
	a.items = append(append(make([]interface{}, 0, len(a.items)+len(values)), values...), a.items...)
	return len(a.items)
}

// Splice removes deleteCount elements at start, inserts values in their place
// and returns the removed elements. A negative start counts from the end and a
// negative deleteCount removes everything after start.
func (a *Array) Splice(start, deleteCount int, values ...interface{}) *Array {
	if o := a.observer; o != nil {
		return NewArray(o.splice(start, deleteCount, values)...)
	}
	return NewArray(spliceSlice(&a.items, start, deleteCount, values)...)
}

// Reverse reverses the array in place.
func (a *Array) Reverse() *Array {
	if o := a.observer; o != nil {
		o.reverse()
		return a
	}
	for i, j := 0, len(a.items)-1; i < j; i, j = i+1, j-1 {
		a.items[i], a.items[j] = a.items[j], a.items[i]
	}
	return a
}

// Sort sorts the array in place. A nil compare orders elements by their
// string form; undefined elements always sort last.
func (a *Array) Sort(compare func(x, y interface{}) int) *Array {
	if o := a.observer; o != nil {
		o.sort(compare)
		return a
	}
	idx := make([]int, len(a.items))
	sortWithIndexMap(a.items, idx, compare)
	return a
}

// SetAt writes v at index i, growing the array with undefined when needed.
func (a *Array) SetAt(i int, v interface{}) {
	if i < 0 {
		return
	}
	if o := a.observer; o != nil {
		o.setAt(i, v)
		return
	}
	for len(a.items) <= i {
		a.items = append(a.items, nil)
	}
	a.items[i] = v
}

// SetLength truncates or extends the array with undefined.
func (a *Array) SetLength(n int) {
	if n < 0 {
		n = 0
	}
	if o := a.observer; o != nil {
		o.setLength(n)
		return
	}
	if n < len(a.items) {
		a.items = a.items[:n]
		return
	}
	for len(a.items) < n {
		a.items = append(a.items, nil)
	}
}

// normalizeSpliceArgs clamps start and deleteCount the way splice does.
func normalizeSpliceArgs(length, start, deleteCount int) (int, int) {
	if start < 0 {
		start = length + start
		if start < 0 {
			start = 0
		}
	} else if start > length {
		start = length
	}
	if deleteCount < 0 || start+deleteCount > length {
		deleteCount = length - start
	}
	return start, deleteCount
}

func spliceSlice(items *[]interface{}, start, deleteCount int, values []interface{}) []interface{} {
	s := *items
	start, deleteCount = normalizeSpliceArgs(len(s), start, deleteCount)
	removed := make([]interface{}, deleteCount)
	copy(removed, s[start:start+deleteCount])
	out := make([]interface{}, 0, len(s)-deleteCount+len(values))
	out = append(out, s[:start]...)
	out = append(out, values...)
	out = append(out, s[start+deleteCount:]...)
	*items = out
	return removed
}

func spliceInts(items *[]int, start, deleteCount int, values []int) {
	s := *items
	start, deleteCount = normalizeSpliceArgs(len(s), start, deleteCount)
	out := make([]int, 0, len(s)-deleteCount+len(values))
	out = append(out, s[:start]...)
	out = append(out, values...)
	out = append(out, s[start+deleteCount:]...)
	*items = out
}

// Map is an observable insertion-ordered map with arbitrary comparable keys.
type Map struct {
	keys     []interface{}
	values   map[interface{}]interface{}
	observer *MapObserver
}

// NewMap creates an empty map.
func NewMap() *Map {
	return &Map{values: make(map[interface{}]interface{})}
}

// CollectionKind implements Collection.
func (m *Map) CollectionKind() CollectionKind { return KindMap }

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.keys) }

// Get returns the value stored under key.
func (m *Map) Get(key interface{}) interface{} {
	return m.values[mapKey(key)]
}

// Has reports whether key is present.
func (m *Map) Has(key interface{}) bool {
	_, ok := m.values[mapKey(key)]
	return ok
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []interface{} {
	keys := make([]interface{}, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Set stores value under key and returns m.
func (m *Map) Set(key, value interface{}) *Map {
	key = mapKey(key)
	if o := m.observer; o != nil {
		o.set(key, value)
		return m
	}
	m.setRaw(key, value)
	return m
}

// Delete removes key and reports whether it was present.
func (m *Map) Delete(key interface{}) bool {
	key = mapKey(key)
	if o := m.observer; o != nil {
		return o.delete(key)
	}
	return m.deleteRaw(key) >= 0
}

// Clear removes every entry.
func (m *Map) Clear() {
	if o := m.observer; o != nil {
		o.clear()
		return
	}
	m.clearRaw()
}

func (m *Map) setRaw(key, value interface{}) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *Map) indexOf(key interface{}) int {
	for i, k := range m.keys {
		if SameValue(k, key) {
			return i
		}
	}
	return -1
}

// deleteRaw removes key and returns its former position, or -1.
func (m *Map) deleteRaw(key interface{}) int {
	if _, ok := m.values[key]; !ok {
		return -1
	}
	i := m.indexOf(key)
	delete(m.values, key)
	if i >= 0 {
		m.keys = append(m.keys[:i], m.keys[i+1:]...)
	}
	return i
}

func (m *Map) clearRaw() {
	m.keys = nil
	m.values = make(map[interface{}]interface{})
}

// Set is an observable insertion-ordered set.
type Set struct {
	items    []interface{}
	members  map[interface{}]struct{}
	observer *SetObserver
}

// NewSet creates a set holding the distinct values.
func NewSet(values ...interface{}) *Set {
	s := &Set{members: make(map[interface{}]struct{})}
	for _, v := range values {
		s.addRaw(mapKey(v))
	}
	return s
}

// CollectionKind implements Collection.
func (s *Set) CollectionKind() CollectionKind { return KindSet }

// Len returns the number of members.
func (s *Set) Len() int { return len(s.items) }

// Has reports whether v is a member.
func (s *Set) Has(v interface{}) bool {
	_, ok := s.members[mapKey(v)]
	return ok
}

// Values returns the members in insertion order.
func (s *Set) Values() []interface{} {
	out := make([]interface{}, len(s.items))
	copy(out, s.items)
	return out
}

// Add inserts v and returns s.
func (s *Set) Add(v interface{}) *Set {
	v = mapKey(v)
	if o := s.observer; o != nil {
		o.add(v)
		return s
	}
	s.addRaw(v)
	return s
}

// Delete removes v and reports whether it was present.
func (s *Set) Delete(v interface{}) bool {
	v = mapKey(v)
	if o := s.observer; o != nil {
		return o.delete(v)
	}
	return s.deleteRaw(v) >= 0
}

// Clear removes every member.
func (s *Set) Clear() {
	if o := s.observer; o != nil {
		o.clear()
		return
	}
	s.clearRaw()
}

func (s *Set) addRaw(v interface{}) bool {
	if _, ok := s.members[v]; ok {
		return false
	}
	s.members[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

func (s *Set) deleteRaw(v interface{}) int {
	if _, ok := s.members[v]; !ok {
		return -1
	}
	delete(s.members, v)
	for i, item := range s.items {
		if SameValue(item, v) {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return i
		}
	}
	return -1
}

func (s *Set) clearRaw() {
	s.items = nil
	s.members = make(map[interface{}]struct{})
}

// mapKey normalizes numeric keys to float64 so that 1 and 1.0 collide.
// Non-comparable keys cannot be stored in a Go map and are replaced by their
// identity handle.
func mapKey(k interface{}) interface{} {
	if f, ok := toFloat(k); ok {
		return f
	}
	if !isComparable(k) {
		return identityOf(k)
	}
	return k
}
