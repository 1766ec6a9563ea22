package observation

// ObserverRecord is the set of observers a connectable is subscribed to.
// Every Observe/ObserveCollection stamps the observer with the current
// version; Clear unsubscribes from observers not stamped since the last Next,
// which prunes dependencies that the latest evaluation no longer read.
//
// The record subscribes itself and forwards notifications to its owner.
type ObserverRecord struct {
	locator     *ObserverLocator
	owner       Subscriber
	version     int
	observers   map[Observer]int
	collections map[CollectionObserver]int
}

// NewObserverRecord creates a record forwarding notifications to owner.
// If owner also implements CollectionSubscriber, collection changes are
// forwarded to it; otherwise they arrive as HandleChange(collection, nil).
func NewObserverRecord(l *ObserverLocator, owner Subscriber) *ObserverRecord {
	return &ObserverRecord{
		locator:     l,
		owner:       owner,
		observers:   make(map[Observer]int),
		collections: make(map[CollectionObserver]int),
	}
}

// Version returns the current version stamp.
func (r *ObserverRecord) Version() int { return r.version }

// Next starts a new evaluation pass.
func (r *ObserverRecord) Next() { r.version++ }

// Count returns the number of observers subscribed to.
func (r *ObserverRecord) Count() int { return len(r.observers) + len(r.collections) }

// Observe subscribes to the observer of obj[key].
func (r *ObserverRecord) Observe(obj interface{}, key string) error {
	obs, err := r.locator.GetObserver(obj, key)
	if err != nil {
		return err
	}
	r.Add(obs)
	return nil
}

// ObserveCollection subscribes to the collection observer of c.
func (r *ObserverRecord) ObserveCollection(c Collection) error {
	obs, err := r.locator.CollectionObserver(c)
	if err != nil {
		return err
	}
	r.AddCollection(obs)
	return nil
}

// Add subscribes to obs and stamps it with the current version.
func (r *ObserverRecord) Add(obs Observer) {
	if _, ok := r.observers[obs]; !ok {
		obs.Subscribe(r)
	}
	r.observers[obs] = r.version
}

// AddCollection subscribes to obs and stamps it with the current version.
func (r *ObserverRecord) AddCollection(obs CollectionObserver) {
	if _, ok := r.collections[obs]; !ok {
		obs.Subscribe(r)
	}
	r.collections[obs] = r.version
}

// Clear unsubscribes from every observer with a stale version stamp.
func (r *ObserverRecord) Clear() {
	for obs, v := range r.observers {
		if v != r.version {
			obs.Unsubscribe(r)
			delete(r.observers, obs)
		}
	}
	for obs, v := range r.collections {
		if v != r.version {
			obs.Unsubscribe(r)
			delete(r.collections, obs)
		}
	}
}

// ClearAll unsubscribes from every observer.
func (r *ObserverRecord) ClearAll() {
	for obs := range r.observers {
		obs.Unsubscribe(r)
	}
	for obs := range r.collections {
		obs.Unsubscribe(r)
	}
	clear(r.observers)
	clear(r.collections)
}

// HandleChange forwards to the owner.
func (r *ObserverRecord) HandleChange(newValue, oldValue interface{}) {
	r.owner.HandleChange(newValue, oldValue)
}

// HandleCollectionChange forwards to the owner.
func (r *ObserverRecord) HandleCollectionChange(c Collection, indexMap *IndexMap) {
	if cs, ok := r.owner.(CollectionSubscriber); ok {
		cs.HandleCollectionChange(c, indexMap)
		return
	}
	r.owner.HandleChange(c, nil)
}
