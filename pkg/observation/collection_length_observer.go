package observation

// CollectionLengthObserver observes the length of an array, or the size of a
// map or set. It listens to the collection observer and only notifies when the
// count actually changed.
type CollectionLengthObserver struct {
	owner    CollectionObserver
	queue    *FlushQueue
	subs     propertySubscribers
	value    int
	oldValue int
	queued   bool
}

func newCollectionLengthObserver(owner CollectionObserver, queue *FlushQueue) *CollectionLengthObserver {
	return &CollectionLengthObserver{
		owner: owner,
		queue: queue,
		value: owner.Collection().Len(),
	}
}

// GetValue returns the current count. It reflects mutations immediately.
func (o *CollectionLengthObserver) GetValue() interface{} {
	return float64(o.owner.Collection().Len())
}

// SetValue resizes an array. Maps and sets cannot be resized.
func (o *CollectionLengthObserver) SetValue(value interface{}) error {
	arr, ok := o.owner.Collection().(*Array)
	if !ok {
		return nil
	}
	n, ok := toFloat(value)
	if !ok || n < 0 || n != float64(int(n)) {
		return nil
	}
	arr.SetLength(int(n))
	return nil
}

// HandleCollectionChange schedules a notification when the count changed.
func (o *CollectionLengthObserver) HandleCollectionChange(c Collection, _ *IndexMap) {
	n := c.Len()
	if n == o.value {
		return
	}
	if !o.queued {
		o.oldValue = o.value
		o.queued = true
	}
	o.value = n
	o.queue.Add(o)
}

// Flush notifies subscribers.
func (o *CollectionLengthObserver) Flush() {
	if !o.queued {
		return
	}
	o.queued = false
	if o.value == o.oldValue {
		return
	}
	o.subs.notify(float64(o.value), float64(o.oldValue))
}

// Subscribe adds s; the first subscriber attaches to the collection observer.
func (o *CollectionLengthObserver) Subscribe(s Subscriber) {
	if o.subs.Add(s) && o.subs.Count() == 1 {
		o.value = o.owner.Collection().Len()
		o.owner.Subscribe(o)
	}
}

// Unsubscribe removes s; the last one detaches from the collection observer.
func (o *CollectionLengthObserver) Unsubscribe(s Subscriber) {
	if o.subs.Remove(s) && o.subs.Count() == 0 {
		o.owner.Unsubscribe(o)
	}
}

// SubscriberCount returns the number of subscribers.
func (o *CollectionLengthObserver) SubscriberCount() int { return o.subs.Count() }

// ArrayIndexObserver observes a single slot of an array.
type ArrayIndexObserver struct {
	owner *ArrayObserver
	index int
	subs  propertySubscribers
	value interface{}
}

func newArrayIndexObserver(owner *ArrayObserver, index int) *ArrayIndexObserver {
	return &ArrayIndexObserver{owner: owner, index: index}
}

// GetValue returns the element at the observed index.
func (o *ArrayIndexObserver) GetValue() interface{} {
	return o.owner.arr.At(o.index)
}

// SetValue replaces the element at the observed index.
func (o *ArrayIndexObserver) SetValue(value interface{}) error {
	o.owner.setAt(o.index, value)
	return nil
}

// HandleCollectionChange notifies when the slot now holds a different value.
func (o *ArrayIndexObserver) HandleCollectionChange(_ Collection, indexMap *IndexMap) {
	if o.index < indexMap.Len() && indexMap.Entries[o.index] == o.index {
		return
	}
	prev := o.value
	cur := o.GetValue()
	o.value = cur
	if !SameValue(prev, cur) {
		o.subs.notify(cur, prev)
	}
}

// Subscribe adds s; the first subscriber attaches to the array observer.
func (o *ArrayIndexObserver) Subscribe(s Subscriber) {
	if o.subs.Add(s) && o.subs.Count() == 1 {
		o.value = o.GetValue()
		o.owner.Subscribe(o)
	}
}

// Unsubscribe removes s; the last one detaches from the array observer.
func (o *ArrayIndexObserver) Unsubscribe(s Subscriber) {
	if o.subs.Remove(s) && o.subs.Count() == 0 {
		o.owner.Unsubscribe(o)
	}
}
