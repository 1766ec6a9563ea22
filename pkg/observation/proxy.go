package observation

// Wrap returns a tracking proxy for *Object, *Array, *Map and *Set values and
// returns every other value unchanged. Proxies are cached per tracker, so
// wrapping the same value twice yields the same proxy.
func (t *Tracker) Wrap(v interface{}) interface{} {
	switch raw := v.(type) {
	case *Object:
		if p, ok := t.proxies[raw]; ok {
			return p
		}
		p := newObjectProxy(raw, t)
		t.proxies[raw] = p
		return p
	case *Array:
		if p, ok := t.proxies[raw]; ok {
			return p
		}
		p := &ArrayProxy{raw: raw, tracker: t}
		t.proxies[raw] = p
		return p
	case *Map:
		if p, ok := t.proxies[raw]; ok {
			return p
		}
		p := &MapProxy{raw: raw, tracker: t}
		t.proxies[raw] = p
		return p
	case *Set:
		if p, ok := t.proxies[raw]; ok {
			return p
		}
		p := &SetProxy{raw: raw, tracker: t}
		t.proxies[raw] = p
		return p
	}
	return v
}

// Release drops the cached proxy of v.
func (t *Tracker) Release(v interface{}) {
	delete(t.proxies, Unwrap(v))
}

// Unwrap returns the raw value behind a proxy, or v itself.
func Unwrap(v interface{}) interface{} {
	switch p := v.(type) {
	case *ObjectProxy:
		return p.raw
	case *ArrayProxy:
		return p.raw
	case *MapProxy:
		return p.raw
	case *SetProxy:
		return p.raw
	}
	return v
}

func unwrapAll(values []interface{}) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = Unwrap(v)
	}
	return out
}

// observe registers obj[key] with the active connectable, if any.
func (t *Tracker) observe(obj interface{}, key string) {
	if c := t.Current(); c != nil {
		t.report(c.Observe(obj, key))
	}
}

func (t *Tracker) observeCollection(col Collection) {
	if c := t.Current(); c != nil {
		t.report(c.ObserveCollection(col))
	}
}

func (t *Tracker) wrap(v interface{}) interface{} {
	if t == nil {
		return v
	}
	return t.Wrap(v)
}

// ObjectProxy is a tracking view of an *Object. A proxy with a nil tracker
// passes every read straight through.
type ObjectProxy struct {
	raw     *Object
	tracker *Tracker
}

func newObjectProxy(raw *Object, t *Tracker) *ObjectProxy {
	return &ObjectProxy{raw: raw, tracker: t}
}

// Raw returns the proxied object.
func (p *ObjectProxy) Raw() *Object { return p.raw }

// Get reads key, registering the read with the active connectable.
func (p *ObjectProxy) Get(key string) interface{} {
	if p.tracker != nil {
		p.tracker.observe(p.raw, key)
	}
	return p.tracker.wrap(p.raw.Get(key))
}

// Set writes key on the raw object.
func (p *ObjectProxy) Set(key string, value interface{}) error {
	return p.raw.Set(key, Unwrap(value))
}

// Has reports whether key is an own or inherited property.
func (p *ObjectProxy) Has(key string) bool { return p.raw.Has(key) }

// Keys returns the own property names.
func (p *ObjectProxy) Keys() []string { return p.raw.Keys() }

// ArrayProxy is a tracking view of an *Array. Every read observes the
// whole collection.
type ArrayProxy struct {
	raw     *Array
	tracker *Tracker
}

// Raw returns the proxied array.
func (p *ArrayProxy) Raw() *Array { return p.raw }

// Len returns the length.
func (p *ArrayProxy) Len() int {
	p.tracker.observeCollection(p.raw)
	return p.raw.Len()
}

// At returns the element at i.
func (p *ArrayProxy) At(i int) interface{} {
	p.tracker.observeCollection(p.raw)
	return p.tracker.wrap(p.raw.At(i))
}

// Items returns the wrapped elements.
func (p *ArrayProxy) Items() []interface{} {
	p.tracker.observeCollection(p.raw)
	out := make([]interface{}, p.raw.Len())
	for i, v := range p.raw.items {
		out[i] = p.tracker.wrap(v)
	}
	return out
}

// Push appends values to the raw array.
func (p *ArrayProxy) Push(values ...interface{}) int { return p.raw.Push(unwrapAll(values)...) }

// Pop removes the last element of the raw array.
func (p *ArrayProxy) Pop() interface{} { return p.raw.Pop() }

// Shift removes the first element of the raw array.
func (p *ArrayProxy) Shift() interface{} { return p.raw.Shift() }

// Unshift prepends values to the raw array.
func (p *ArrayProxy) Unshift(values ...interface{}) int { return p.raw.Unshift(unwrapAll(values)...) }

// Splice splices the raw array.
func (p *ArrayProxy) Splice(start, deleteCount int, values ...interface{}) *Array {
	return p.raw.Splice(start, deleteCount, unwrapAll(values)...)
}

// MapProxy is a tracking view of a *Map.
type MapProxy struct {
	raw     *Map
	tracker *Tracker
}

// Raw returns the proxied map.
func (p *MapProxy) Raw() *Map { return p.raw }

// Get returns the value for key.
func (p *MapProxy) Get(key interface{}) interface{} {
	p.tracker.observeCollection(p.raw)
	return p.tracker.wrap(p.raw.Get(Unwrap(key)))
}

// Has reports whether key is present.
func (p *MapProxy) Has(key interface{}) bool {
	p.tracker.observeCollection(p.raw)
	return p.raw.Has(Unwrap(key))
}

// Len returns the size.
func (p *MapProxy) Len() int {
	p.tracker.observeCollection(p.raw)
	return p.raw.Len()
}

// Keys returns the keys in insertion order.
func (p *MapProxy) Keys() []interface{} {
	p.tracker.observeCollection(p.raw)
	return p.raw.Keys()
}

// Set stores value under key in the raw map.
func (p *MapProxy) Set(key, value interface{}) { p.raw.Set(Unwrap(key), Unwrap(value)) }

// Delete removes key from the raw map.
func (p *MapProxy) Delete(key interface{}) bool { return p.raw.Delete(Unwrap(key)) }

// Clear empties the raw map.
func (p *MapProxy) Clear() { p.raw.Clear() }

// SetProxy is a tracking view of a *Set.
type SetProxy struct {
	raw     *Set
	tracker *Tracker
}

// Raw returns the proxied set.
func (p *SetProxy) Raw() *Set { return p.raw }

// Has reports whether v is a member.
func (p *SetProxy) Has(v interface{}) bool {
	p.tracker.observeCollection(p.raw)
	return p.raw.Has(Unwrap(v))
}

// Len returns the size.
func (p *SetProxy) Len() int {
	p.tracker.observeCollection(p.raw)
	return p.raw.Len()
}

// Values returns the wrapped members.
func (p *SetProxy) Values() []interface{} {
	p.tracker.observeCollection(p.raw)
	vals := p.raw.Values()
	for i, v := range vals {
		vals[i] = p.tracker.wrap(v)
	}
	return vals
}

// Add inserts v into the raw set.
func (p *SetProxy) Add(v interface{}) { p.raw.Add(Unwrap(v)) }

// Delete removes v from the raw set.
func (p *SetProxy) Delete(v interface{}) bool { return p.raw.Delete(Unwrap(v)) }

// Clear empties the raw set.
func (p *SetProxy) Clear() { p.raw.Clear() }
