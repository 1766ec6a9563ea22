// Package observation implements the observable value model and the observer
// machinery that keeps bindings synchronized with their data.
//
// # Value model
//
// Expressions operate on a small set of dynamic values: nil (undefined),
// types.NullValue, bool, float64, string, *Object, *Array, *Map, *Set and
// Func. Plain Go maps, slices and struct pointers are also readable; they are
// observed by dirty checking since their writes cannot be intercepted.
//
// # Observers
//
// An ObserverLocator picks the cheapest strategy able to observe a given
// object and key:
//
//   - a host-provided observer (HostObserverLocator)
//   - length/size observers backed by collection observers
//   - per-index array observers
//   - SetterObserver for data properties of *Object
//   - ComputedObserver for configurable accessor properties
//   - DirtyCheckProperty as a last resort
//
// Observers enqueue themselves on the locator's FlushQueue when their value
// changes; the queue drains synchronously and each observer notifies its
// subscribers once per drain.
//
// # Concurrency
//
// The core is single-threaded. A locator and every value it observes must be
// confined to one goroutine, or externally serialized.
package observation
