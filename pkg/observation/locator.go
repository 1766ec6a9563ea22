package observation

import (
	"context"
	"log/slog"
	"reflect"

	"github.com/sandrolain/gobinding/pkg/observability"
	"github.com/sandrolain/gobinding/pkg/types"
)

// Options configures an ObserverLocator.
type Options struct {
	// Logger receives observer errors and dirty-check diagnostics.
	// Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics records flushes, dirty checks and observer creation.
	Metrics observability.MetricsRecorder

	// MaxRunCount caps how often a computed property or an effect may
	// re-run within one flush.
	MaxRunCount int

	// DirtyCheck tunes the dirty checker.
	DirtyCheck DirtyCheckSettings

	// Scheduler drives dirty checking. Without one, Check must be called
	// explicitly.
	Scheduler Scheduler

	// Hosts get first refusal on every observer lookup.
	Hosts []HostObserverLocator

	// ErrorHandler receives errors raised during a flush. When nil they are
	// logged.
	ErrorHandler func(error)
}

// Option configures an ObserverLocator.
type Option func(*Options)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(o *Options) {
		o.Metrics = m
	}
}

// WithMaxRunCount sets the computed and effect re-run cap.
func WithMaxRunCount(n int) Option {
	return func(o *Options) {
		o.MaxRunCount = n
	}
}

// WithDirtyCheck sets the dirty checker settings.
func WithDirtyCheck(settings DirtyCheckSettings) Option {
	return func(o *Options) {
		o.DirtyCheck = settings
	}
}

// WithScheduler sets the dirty checker scheduler.
func WithScheduler(s Scheduler) Option {
	return func(o *Options) {
		o.Scheduler = s
	}
}

// WithHostObserverLocator registers a host observer locator.
func WithHostObserverLocator(h HostObserverLocator) Option {
	return func(o *Options) {
		o.Hosts = append(o.Hosts, h)
	}
}

// WithErrorHandler sets the handler for errors raised during a flush.
func WithErrorHandler(fn func(error)) Option {
	return func(o *Options) {
		o.ErrorHandler = fn
	}
}

// ObserverLocator chooses and caches the observer of a property.
//
// A locator owns the flush queue, the active-connectable tracker and the
// dirty checker shared by every observer it creates. It is not safe for
// concurrent use.
type ObserverLocator struct {
	opts    Options
	queue   *FlushQueue
	tracker *Tracker
	dirty   *DirtyChecker
	natives map[interface{}]map[string]Observer
}

// NewObserverLocator creates a locator.
func NewObserverLocator(opts ...Option) *ObserverLocator {
	o := Options{
		Logger:      slog.Default(),
		Metrics:     observability.NoopMetrics{},
		MaxRunCount: DefaultMaxRunCount,
		DirtyCheck:  DefaultDirtyCheckSettings(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Metrics == nil {
		o.Metrics = observability.NoopMetrics{}
	}
	if o.MaxRunCount <= 0 {
		o.MaxRunCount = DefaultMaxRunCount
	}
	l := &ObserverLocator{
		opts:    o,
		queue:   NewFlushQueue(o.Metrics),
		tracker: NewTracker(),
		natives: make(map[interface{}]map[string]Observer),
	}
	l.tracker.onError = func(err error) { l.handleError("proxy", err) }
	l.dirty = newDirtyChecker(o.DirtyCheck, o.Scheduler, l.queue, o.Logger, o.Metrics)
	return l
}

// FlushQueue returns the queue shared by every observer of the locator.
func (l *ObserverLocator) FlushQueue() *FlushQueue { return l.queue }

// Tracker returns the active-connectable tracker.
func (l *ObserverLocator) Tracker() *Tracker { return l.tracker }

// DirtyChecker returns the dirty checker.
func (l *ObserverLocator) DirtyChecker() *DirtyChecker { return l.dirty }

// MaxRunCount returns the computed and effect re-run cap.
func (l *ObserverLocator) MaxRunCount() int { return l.opts.MaxRunCount }

// GetObserver returns the observer of obj[key].
func (l *ObserverLocator) GetObserver(obj interface{}, key string) (Observer, error) {
	for _, h := range l.opts.Hosts {
		if h.Handles(obj, key, l) {
			return h.GetObserver(obj, key, l)
		}
	}
	obj = Unwrap(obj)
	switch v := obj.(type) {
	case nil, types.Null:
		return nil, types.Errorf(types.ErrNotObservable, "cannot observe %q of %s", key, describe(obj))
	case *Array:
		if key == "length" {
			return l.GetArrayObserver(v).LengthObserver(), nil
		}
		if i, ok := ArrayIndex(key); ok {
			return l.GetArrayObserver(v).IndexObserver(i), nil
		}
		return &PrimitiveObserver{obj: v, key: key}, nil
	case *Map:
		if key == "size" {
			return l.GetMapObserver(v).SizeObserver(), nil
		}
		return &PrimitiveObserver{obj: v, key: key}, nil
	case *Set:
		if key == "size" {
			return l.GetSetObserver(v).SizeObserver(), nil
		}
		return &PrimitiveObserver{obj: v, key: key}, nil
	case *Object:
		if obs, ok := v.Observer(key); ok {
			return obs, nil
		}
		obs, err := l.createObjectObserver(v, key)
		if err != nil {
			return nil, err
		}
		v.cacheObserver(key, obs)
		return obs, nil
	case float64, string, bool, int, Func:
		return &PrimitiveObserver{obj: v, key: key}, nil
	}
	return l.nativeObserver(obj, key)
}

// GetAccessor returns a value-only accessor of obj[key]. Properties that are
// already observed are accessed through their observer.
func (l *ObserverLocator) GetAccessor(obj interface{}, key string) (Accessor, error) {
	for _, h := range l.opts.Hosts {
		if h.Handles(obj, key, l) {
			return h.GetAccessor(obj, key, l)
		}
	}
	obj = Unwrap(obj)
	switch v := obj.(type) {
	case *Object:
		if obs, ok := v.Observer(key); ok {
			return obs, nil
		}
	case *Array:
		if key == "length" && v.observer != nil {
			return v.observer.LengthObserver(), nil
		}
	}
	return &PropertyAccessor{obj: obj, key: key}, nil
}

// GetArrayObserver returns the observer of arr, installing it on first use.
func (l *ObserverLocator) GetArrayObserver(arr *Array) *ArrayObserver {
	if arr.observer == nil {
		newArrayObserver(arr, l.queue)
		l.created("array")
	}
	return arr.observer
}

// GetMapObserver returns the observer of m, installing it on first use.
func (l *ObserverLocator) GetMapObserver(m *Map) *MapObserver {
	if m.observer == nil {
		newMapObserver(m, l.queue)
		l.created("map")
	}
	return m.observer
}

// GetSetObserver returns the observer of s, installing it on first use.
func (l *ObserverLocator) GetSetObserver(s *Set) *SetObserver {
	if s.observer == nil {
		newSetObserver(s, l.queue)
		l.created("set")
	}
	return s.observer
}

// CollectionObserver returns the observer of any collection.
func (l *ObserverLocator) CollectionObserver(c Collection) (CollectionObserver, error) {
	switch v := c.(type) {
	case *Array:
		return l.GetArrayObserver(v), nil
	case *Map:
		return l.GetMapObserver(v), nil
	case *Set:
		return l.GetSetObserver(v), nil
	}
	return nil, types.Errorf(types.ErrNotObservable, "unsupported collection %T", c)
}

// Dispose drops the observers cached for obj. Go values outside the
// observable model are tracked in a side table and must be disposed
// explicitly once nothing binds to them.
func (l *ObserverLocator) Dispose(obj interface{}) {
	obj = Unwrap(obj)
	l.tracker.Release(obj)
	if o, ok := obj.(*Object); ok {
		o.observers = nil
		return
	}
	if !isComparable(obj) {
		return
	}
	id := identityOf(obj)
	for _, obs := range l.natives[id] {
		if p, ok := obs.(*DirtyCheckProperty); ok && p.subs.Any() {
			l.dirty.RemoveProperty(p)
		}
	}
	delete(l.natives, id)
}

// Effect runs fn immediately and again whenever something it read changes.
func (l *ObserverLocator) Effect(fn EffectFunc) (*Effect, error) {
	e := newEffect(l, fn)
	if err := e.Run(); err != nil {
		e.Stop()
		return nil, err
	}
	return e, nil
}

func (l *ObserverLocator) createObjectObserver(obj *Object, key string) (Observer, error) {
	d := obj.lookup(key)
	if d == nil || !d.IsAccessor() {
		l.created("setter")
		return newSetterObserver(obj, key, l.queue), nil
	}
	if d.Configurable {
		l.created("computed")
		return newComputedObserver(obj, key, d, l), nil
	}
	p, err := l.dirty.CreateProperty(obj, key)
	if err != nil {
		return nil, err
	}
	l.created("dirty")
	return p, nil
}

func (l *ObserverLocator) nativeObserver(obj interface{}, key string) (Observer, error) {
	switch reflect.ValueOf(obj).Kind() {
	case reflect.Pointer, reflect.Map:
	default:
		// Non-reference values are copies: nothing can change them in place.
		return &PrimitiveObserver{obj: obj, key: key}, nil
	}
	id := identityOf(obj)
	byKey := l.natives[id]
	if obs, ok := byKey[key]; ok {
		return obs, nil
	}
	p, err := l.dirty.CreateProperty(obj, key)
	if err != nil {
		return nil, err
	}
	if byKey == nil {
		byKey = make(map[string]Observer)
		l.natives[id] = byKey
	}
	byKey[key] = p
	l.created("dirty")
	return p, nil
}

func (l *ObserverLocator) created(kind string) {
	l.opts.Metrics.RecordObserverCreated(context.Background(), kind)
}

func (l *ObserverLocator) handleError(kind string, err error) {
	if err == nil {
		return
	}
	if l.opts.ErrorHandler != nil {
		l.opts.ErrorHandler(err)
		return
	}
	observability.LogObserverError(l.opts.Logger, kind, err)
}

func describe(v interface{}) string {
	if v == nil {
		return "undefined"
	}
	if _, ok := v.(types.Null); ok {
		return "null"
	}
	return reflect.TypeOf(v).String()
}
