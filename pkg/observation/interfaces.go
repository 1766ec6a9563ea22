package observation

// Subscriber receives property change notifications.
type Subscriber interface {
	HandleChange(newValue, oldValue interface{})
}

// CollectionSubscriber receives collection change notifications. indexMap
// describes how the current slots map back to the slots before the changes.
type CollectionSubscriber interface {
	HandleCollectionChange(collection Collection, indexMap *IndexMap)
}

// Accessor reads and writes a single property.
type Accessor interface {
	GetValue() interface{}
	SetValue(value interface{}) error
}

// Observer is an Accessor that publishes changes to subscribers.
type Observer interface {
	Accessor
	Subscribe(s Subscriber)
	Unsubscribe(s Subscriber)
}

// CollectionObserver publishes collection changes.
type CollectionObserver interface {
	Collection() Collection
	Subscribe(s CollectionSubscriber)
	Unsubscribe(s CollectionSubscriber)
}

// Connectable accumulates the dependencies read during one evaluation.
type Connectable interface {
	Observe(obj interface{}, key string) error
	ObserveCollection(c Collection) error
}

// Flushable is an item of the FlushQueue.
type Flushable interface {
	Flush()
}

// HostObserverLocator lets an environment supply its own observers, for
// example for DOM nodes. It gets first refusal on every lookup.
type HostObserverLocator interface {
	Handles(obj interface{}, key string, l *ObserverLocator) bool
	GetObserver(obj interface{}, key string, l *ObserverLocator) (Observer, error)
	GetAccessor(obj interface{}, key string, l *ObserverLocator) (Accessor, error)
}
