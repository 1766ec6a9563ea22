package observation

// MapObserver intercepts the mutating methods of a *Map.
type MapObserver struct {
	m            *Map
	queue        *FlushQueue
	subs         collectionSubscribers
	indexMap     *IndexMap
	queued       bool
	sizeObserver *CollectionLengthObserver
}

func newMapObserver(m *Map, queue *FlushQueue) *MapObserver {
	o := &MapObserver{m: m, queue: queue, indexMap: NewIndexMap(m.Len())}
	m.observer = o
	return o
}

// Collection returns the observed map.
func (o *MapObserver) Collection() Collection { return o.m }

// IndexMap returns the changes accumulated since the last flush.
func (o *MapObserver) IndexMap() *IndexMap { return o.indexMap }

// Subscribe adds a collection subscriber.
func (o *MapObserver) Subscribe(s CollectionSubscriber) { o.subs.Add(s) }

// Unsubscribe removes a collection subscriber.
func (o *MapObserver) Unsubscribe(s CollectionSubscriber) { o.subs.Remove(s) }

// SizeObserver returns the observer of the map size.
func (o *MapObserver) SizeObserver() *CollectionLengthObserver {
	if o.sizeObserver == nil {
		o.sizeObserver = newCollectionLengthObserver(o, o.queue)
	}
	return o.sizeObserver
}

func (o *MapObserver) notify() {
	o.queued = true
	o.queue.Add(o)
}

// Flush hands the accumulated IndexMap to subscribers and starts a fresh one.
func (o *MapObserver) Flush() {
	if !o.queued {
		return
	}
	o.queued = false
	indexMap := o.indexMap
	o.indexMap = NewIndexMap(o.m.Len())
	o.subs.notify(o.m, indexMap)
}

func (o *MapObserver) set(key, value interface{}) {
	if i := o.m.indexOf(key); i >= 0 {
		old := o.m.values[key]
		if SameValue(old, value) {
			return
		}
		o.indexMap.recordDeleted(i, NewArray(key, old))
		o.indexMap.Entries[i] = InsertedIndex
		o.m.values[key] = value
		o.notify()
		return
	}
	o.m.setRaw(key, value)
	o.indexMap.Entries = append(o.indexMap.Entries, InsertedIndex)
	o.notify()
}

func (o *MapObserver) delete(key interface{}) bool {
	i := o.m.indexOf(key)
	if i < 0 {
		return false
	}
	o.indexMap.recordDeleted(i, key)
	spliceInts(&o.indexMap.Entries, i, 1, nil)
	o.m.deleteRaw(key)
	o.notify()
	return true
}

func (o *MapObserver) clear() {
	if o.m.Len() == 0 {
		return
	}
	for i, key := range o.m.keys {
		o.indexMap.recordDeleted(i, key)
	}
	o.m.clearRaw()
	o.indexMap.Entries = o.indexMap.Entries[:0]
	o.notify()
}

// SetObserver intercepts the mutating methods of a *Set.
type SetObserver struct {
	s            *Set
	queue        *FlushQueue
	subs         collectionSubscribers
	indexMap     *IndexMap
	queued       bool
	sizeObserver *CollectionLengthObserver
}

func newSetObserver(s *Set, queue *FlushQueue) *SetObserver {
	o := &SetObserver{s: s, queue: queue, indexMap: NewIndexMap(s.Len())}
	s.observer = o
	return o
}

// Collection returns the observed set.
func (o *SetObserver) Collection() Collection { return o.s }

// IndexMap returns the changes accumulated since the last flush.
func (o *SetObserver) IndexMap() *IndexMap { return o.indexMap }

// Subscribe adds a collection subscriber.
func (o *SetObserver) Subscribe(s CollectionSubscriber) { o.subs.Add(s) }

// Unsubscribe removes a collection subscriber.
func (o *SetObserver) Unsubscribe(s CollectionSubscriber) { o.subs.Remove(s) }

// SizeObserver returns the observer of the set size.
func (o *SetObserver) SizeObserver() *CollectionLengthObserver {
	if o.sizeObserver == nil {
		o.sizeObserver = newCollectionLengthObserver(o, o.queue)
	}
	return o.sizeObserver
}

func (o *SetObserver) notify() {
	o.queued = true
	o.queue.Add(o)
}

// Flush hands the accumulated IndexMap to subscribers and starts a fresh one.
func (o *SetObserver) Flush() {
	if !o.queued {
		return
	}
	o.queued = false
	indexMap := o.indexMap
	o.indexMap = NewIndexMap(o.s.Len())
	o.subs.notify(o.s, indexMap)
}

func (o *SetObserver) add(v interface{}) {
	if !o.s.addRaw(v) {
		return
	}
	o.indexMap.Entries = append(o.indexMap.Entries, InsertedIndex)
	o.notify()
}

func (o *SetObserver) delete(v interface{}) bool {
	if !o.s.Has(v) {
		return false
	}
	i := o.s.deleteRaw(v)
	if i >= 0 {
		o.indexMap.recordDeleted(i, v)
		spliceInts(&o.indexMap.Entries, i, 1, nil)
	}
	o.notify()
	return true
}

func (o *SetObserver) clear() {
	if o.s.Len() == 0 {
		return
	}
	for i, v := range o.s.items {
		o.indexMap.recordDeleted(i, v)
	}
	o.s.clearRaw()
	o.indexMap.Entries = o.indexMap.Entries[:0]
	o.notify()
}
