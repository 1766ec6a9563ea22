package observation

// ArrayObserver intercepts the mutating methods of an *Array, keeps its
// IndexMap up to date and notifies collection subscribers once per flush.
type ArrayObserver struct {
	arr      *Array
	queue    *FlushQueue
	subs     collectionSubscribers
	indexMap *IndexMap
	queued   bool

	lengthObserver *CollectionLengthObserver
	indexObservers map[int]*ArrayIndexObserver
}

func newArrayObserver(arr *Array, queue *FlushQueue) *ArrayObserver {
	o := &ArrayObserver{
		arr:      arr,
		queue:    queue,
		indexMap: NewIndexMap(arr.Len()),
	}
	arr.observer = o
	return o
}

// Collection returns the observed array.
func (o *ArrayObserver) Collection() Collection { return o.arr }

// IndexMap returns the changes accumulated since the last flush.
func (o *ArrayObserver) IndexMap() *IndexMap { return o.indexMap }

// Subscribe adds a collection subscriber.
func (o *ArrayObserver) Subscribe(s CollectionSubscriber) { o.subs.Add(s) }

// Unsubscribe removes a collection subscriber.
func (o *ArrayObserver) Unsubscribe(s CollectionSubscriber) { o.subs.Remove(s) }

// SubscriberCount returns the number of subscribers.
func (o *ArrayObserver) SubscriberCount() int { return o.subs.Count() }

// LengthObserver returns the observer of the array length.
func (o *ArrayObserver) LengthObserver() *CollectionLengthObserver {
	if o.lengthObserver == nil {
		o.lengthObserver = newCollectionLengthObserver(o, o.queue)
	}
	return o.lengthObserver
}

// IndexObserver returns the observer of a single slot.
func (o *ArrayObserver) IndexObserver(index int) *ArrayIndexObserver {
	if o.indexObservers == nil {
		o.indexObservers = make(map[int]*ArrayIndexObserver)
	}
	io, ok := o.indexObservers[index]
	if !ok {
		io = newArrayIndexObserver(o, index)
		o.indexObservers[index] = io
	}
	return io
}

// notify schedules a flush of the accumulated changes.
func (o *ArrayObserver) notify() {
	o.queued = true
	o.queue.Add(o)
}

// Flush hands the accumulated IndexMap to subscribers and starts a fresh one.
func (o *ArrayObserver) Flush() {
	if !o.queued {
		return
	}
	o.queued = false
	indexMap := o.indexMap
	o.indexMap = NewIndexMap(o.arr.Len())
	o.subs.notify(o.arr, indexMap)
}

func (o *ArrayObserver) push(values []interface{}) int {
	if len(values) == 0 {
		return o.arr.Len()
	}
	o.arr.items = append(o.arr.items, values...)
	o.indexMap.Entries = append(o.indexMap.Entries, insertedSlots(len(values))...)
	o.notify()
	return o.arr.Len()
}

func (o *ArrayObserver) unshift(values []interface{}) int {
	if len(values) == 0 {
		return o.arr.Len()
	}
	spliceInts(&o.indexMap.Entries, 0, 0, insertedSlots(len(values)))
	spliceSlice(&o.arr.items, 0, 0, values)
	o.notify()
	return o.arr.Len()
}

func (o *ArrayObserver) pop() interface{} {
	n := o.arr.Len()
	if n == 0 {
		return nil
	}
	item := o.arr.items[n-1]
	o.indexMap.recordDeleted(n-1, item)
	o.arr.items = o.arr.items[:n-1]
	o.indexMap.Entries = o.indexMap.Entries[:n-1]
	o.notify()
	return item
}

func (o *ArrayObserver) shift() interface{} {
	if o.arr.Len() == 0 {
		return nil
	}
	item := o.arr.items[0]
	o.indexMap.recordDeleted(0, item)
	o.arr.items = o.arr.items[1:]
	o.indexMap.Entries = o.indexMap.Entries[1:]
	o.notify()
	return item
}

func (o *ArrayObserver) splice(start, deleteCount int, values []interface{}) []interface{} {
	start, deleteCount = normalizeSpliceArgs(o.arr.Len(), start, deleteCount)
	for i := start; i < start+deleteCount; i++ {
		o.indexMap.recordDeleted(i, o.arr.items[i])
	}
	spliceInts(&o.indexMap.Entries, start, deleteCount, insertedSlots(len(values)))
	removed := spliceSlice(&o.arr.items, start, deleteCount, values)
	if deleteCount > 0 || len(values) > 0 {
		o.notify()
	}
	return removed
}

func (o *ArrayObserver) reverse() {
	if o.arr.Len() < 2 {
		return
	}
	items, idx := o.arr.items, o.indexMap.Entries
	for lower, upper := 0, len(items)-1; lower < upper; lower, upper = lower+1, upper-1 {
		items[lower], items[upper] = items[upper], items[lower]
		idx[lower], idx[upper] = idx[upper], idx[lower]
	}
	o.notify()
}

func (o *ArrayObserver) sort(compare func(a, b interface{}) int) {
	if o.arr.Len() < 2 {
		return
	}
	sortWithIndexMap(o.arr.items, o.indexMap.Entries, compare)
	o.notify()
}

func (o *ArrayObserver) setAt(i int, v interface{}) {
	n := o.arr.Len()
	if i >= n {
		pad := make([]interface{}, i-n+1)
		pad[len(pad)-1] = v
		o.push(pad)
		return
	}
	if SameValue(o.arr.items[i], v) {
		return
	}
	o.indexMap.recordDeleted(i, o.arr.items[i])
	o.indexMap.Entries[i] = InsertedIndex
	o.arr.items[i] = v
	o.notify()
}

func (o *ArrayObserver) setLength(n int) {
	cur := o.arr.Len()
	switch {
	case n < cur:
		o.splice(n, cur-n, nil)
	case n > cur:
		o.push(make([]interface{}, n-cur))
	}
}
