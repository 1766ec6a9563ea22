package observation

import (
	"github.com/sandrolain/gobinding/pkg/types"
)

// DefaultMaxRunCount caps how many times a computed property or an effect
// may re-run itself within one flush before it is considered runaway.
const DefaultMaxRunCount = 10

// ComputedObserver observes an accessor property. Without subscribers it calls
// the getter on every read and tracks nothing. Once subscribed it computes
// eagerly, caches the value and recomputes only when a dependency read by the
// getter changes.
type ComputedObserver struct {
	obj     *Object
	key     string
	get     Getter
	set     Setter
	locator *ObserverLocator
	subs    propertySubscribers
	record  *ObserverRecord

	value    interface{}
	dirty    bool
	running  bool
	queued   bool
	runCount int
	runEpoch uint64
}

func newComputedObserver(obj *Object, key string, d *Descriptor, l *ObserverLocator) *ComputedObserver {
	c := &ComputedObserver{
		obj:     obj,
		key:     key,
		get:     d.Get,
		set:     d.Set,
		locator: l,
		dirty:   true,
	}
	c.record = NewObserverRecord(l, c)
	return c
}

func (c *ComputedObserver) intercepting() bool { return c.subs.Any() }

// GetValue returns the property value.
func (c *ComputedObserver) GetValue() interface{} {
	if !c.subs.Any() {
		return c.get(newObjectProxy(c.obj, nil))
	}
	if c.dirty {
		c.compute()
		c.dirty = false
	}
	return c.value
}

// SetValue calls the property setter and recomputes.
func (c *ComputedObserver) SetValue(value interface{}) error {
	if c.set == nil {
		return types.Errorf(types.ErrNoSetter, "property %q is read-only", c.key)
	}
	if c.subs.Any() && SameValue(value, c.value) {
		return nil
	}
	if err := c.set(newObjectProxy(c.obj, nil), value); err != nil {
		return err
	}
	if c.subs.Any() {
		return c.run()
	}
	return nil
}

// Observe implements Connectable for reads made by the getter.
func (c *ComputedObserver) Observe(obj interface{}, key string) error {
	return c.record.Observe(obj, key)
}

// ObserveCollection implements Connectable for reads made by the getter.
func (c *ComputedObserver) ObserveCollection(col Collection) error {
	return c.record.ObserveCollection(col)
}

// HandleChange marks the value stale and schedules a recomputation.
func (c *ComputedObserver) HandleChange(_, _ interface{}) {
	c.dirty = true
	if c.subs.Any() {
		c.locator.queue.Add(c)
	}
}

// HandleCollectionChange marks the value stale and schedules a recomputation.
func (c *ComputedObserver) HandleCollectionChange(Collection, *IndexMap) {
	c.HandleChange(nil, nil)
}

// Flush recomputes and notifies subscribers when the value changed.
func (c *ComputedObserver) Flush() {
	if err := c.run(); err != nil {
		c.locator.handleError("computed", err)
	}
}

// Subscribe adds s; the first subscriber triggers an eager computation.
func (c *ComputedObserver) Subscribe(s Subscriber) {
	if c.subs.Add(s) && c.subs.Count() == 1 {
		c.compute()
		c.dirty = false
	}
}

// Unsubscribe removes s; the last one releases every dependency.
func (c *ComputedObserver) Unsubscribe(s Subscriber) {
	if c.subs.Remove(s) && c.subs.Count() == 0 {
		c.dirty = true
		c.record.ClearAll()
	}
}

// SubscriberCount returns the number of subscribers.
func (c *ComputedObserver) SubscriberCount() int { return c.subs.Count() }

func (c *ComputedObserver) run() error {
	if c.running {
		c.queued = true
		return nil
	}
	epoch := c.locator.queue.Epoch()
	if epoch == 0 || epoch != c.runEpoch {
		c.runEpoch = epoch
		c.runCount = 0
	}
	for {
		c.runCount++
		if c.runCount > c.locator.opts.MaxRunCount {
			c.runCount = 0
			return types.Errorf(types.ErrComputedRunaway,
				"computed property %q exceeded %d re-evaluations", c.key, c.locator.opts.MaxRunCount)
		}
		c.queued = false
		oldValue := c.value
		newValue := c.compute()
		c.dirty = false
		if !SameValue(newValue, oldValue) {
			c.subs.notify(newValue, oldValue)
		}
		if !c.queued {
			return nil
		}
	}
}

func (c *ComputedObserver) compute() interface{} {
	c.running = true
	c.record.Next()
	tracker := c.locator.tracker
	tracker.Enter(c)
	defer func() {
		tracker.Exit(c)
		c.record.Clear()
		c.running = false
	}()
	c.value = Unwrap(c.get(newObjectProxy(c.obj, tracker)))
	return c.value
}
