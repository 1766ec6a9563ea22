package observation

// SetterObserver observes a data property of an *Object. While it has
// subscribers it owns the property value: reads and writes of the property go
// through the observer, and each change enqueues it on the flush queue.
type SetterObserver struct {
	obj       *Object
	key       string
	queue     *FlushQueue
	subs      propertySubscribers
	value     interface{}
	oldValue  interface{}
	observing bool
	queued    bool
}

func newSetterObserver(obj *Object, key string, queue *FlushQueue) *SetterObserver {
	return &SetterObserver{obj: obj, key: key, queue: queue}
}

func (o *SetterObserver) intercepting() bool { return o.observing }

// GetValue returns the current property value.
func (o *SetterObserver) GetValue() interface{} {
	if o.observing {
		return o.value
	}
	return o.obj.getRaw(o.key)
}

// SetValue writes the property and schedules a notification when it changed.
func (o *SetterObserver) SetValue(value interface{}) error {
	if !o.observing {
		return o.obj.setThrough(o.key, value)
	}
	if SameValue(value, o.value) {
		return nil
	}
	if !o.queued {
		o.oldValue = o.value
		o.queued = true
	}
	o.value = value
	o.obj.setRaw(o.key, value)
	o.queue.Add(o)
	return nil
}

// Flush notifies subscribers of the accumulated change.
func (o *SetterObserver) Flush() {
	if !o.queued {
		return
	}
	o.queued = false
	oldValue := o.oldValue
	o.oldValue = nil
	if SameValue(o.value, oldValue) {
		return
	}
	o.subs.notify(o.value, oldValue)
}

// Subscribe adds s and starts intercepting the property.
func (o *SetterObserver) Subscribe(s Subscriber) {
	if !o.observing {
		o.start()
	}
	o.subs.Add(s)
}

// Unsubscribe removes s and stops intercepting once nobody listens.
func (o *SetterObserver) Unsubscribe(s Subscriber) {
	if o.subs.Remove(s) && o.subs.Count() == 0 {
		o.stop()
	}
}

// SubscriberCount returns the number of subscribers.
func (o *SetterObserver) SubscriberCount() int { return o.subs.Count() }

func (o *SetterObserver) start() {
	o.observing = true
	o.value = o.obj.getRaw(o.key)
	if !o.obj.HasOwn(o.key) {
		o.obj.setRaw(o.key, o.value)
	}
}

func (o *SetterObserver) stop() {
	o.observing = false
	o.queued = false
	o.oldValue = nil
}
