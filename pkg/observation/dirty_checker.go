package observation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sandrolain/gobinding/pkg/observability"
	"github.com/sandrolain/gobinding/pkg/types"
)

// DirtyCheckSettings tunes the dirty checker.
type DirtyCheckSettings struct {
	// Disabled makes the locator refuse to create dirty-checked properties.
	Disabled bool
	// TimeoutsPerCheck is the number of scheduler ticks between two checks.
	TimeoutsPerCheck int
}

// DefaultDirtyCheckSettings returns the default settings.
func DefaultDirtyCheckSettings() DirtyCheckSettings {
	return DirtyCheckSettings{TimeoutsPerCheck: 25}
}

// Scheduler drives the dirty checker. Start is called when the first property
// is tracked and Stop when the last one is released.
type Scheduler interface {
	Start(tick func())
	Stop()
}

// DirtyChecker polls properties whose writes cannot be intercepted.
type DirtyChecker struct {
	settings  DirtyCheckSettings
	scheduler Scheduler
	queue     *FlushQueue
	logger    *slog.Logger
	metrics   observability.MetricsRecorder
	tracked   []*DirtyCheckProperty
	elapsed   int
}

func newDirtyChecker(settings DirtyCheckSettings, scheduler Scheduler, queue *FlushQueue, logger *slog.Logger, metrics observability.MetricsRecorder) *DirtyChecker {
	if settings.TimeoutsPerCheck <= 0 {
		settings.TimeoutsPerCheck = DefaultDirtyCheckSettings().TimeoutsPerCheck
	}
	return &DirtyChecker{
		settings:  settings,
		scheduler: scheduler,
		queue:     queue,
		logger:    logger,
		metrics:   metrics,
	}
}

// Settings returns the active settings.
func (d *DirtyChecker) Settings() DirtyCheckSettings { return d.settings }

// CreateProperty returns a dirty-checked observer for obj[key].
func (d *DirtyChecker) CreateProperty(obj interface{}, key string) (*DirtyCheckProperty, error) {
	if d.settings.Disabled {
		return nil, types.Errorf(types.ErrDirtyCheckOff,
			"property %q of %T cannot be observed without dirty checking, which is disabled", key, obj)
	}
	return &DirtyCheckProperty{checker: d, obj: obj, key: key}, nil
}

// AddProperty starts polling p.
func (d *DirtyChecker) AddProperty(p *DirtyCheckProperty) {
	d.tracked = append(d.tracked, p)
	if len(d.tracked) == 1 && d.scheduler != nil {
		d.scheduler.Start(d.Tick)
	}
}

// RemoveProperty stops polling p.
func (d *DirtyChecker) RemoveProperty(p *DirtyCheckProperty) {
	for i, t := range d.tracked {
		if t == p {
			d.tracked = append(d.tracked[:i], d.tracked[i+1:]...)
			break
		}
	}
	if len(d.tracked) == 0 && d.scheduler != nil {
		d.scheduler.Stop()
	}
}

// Tracked returns the number of polled properties.
func (d *DirtyChecker) Tracked() int { return len(d.tracked) }

// Tick advances the frame counter and checks every TimeoutsPerCheck ticks.
func (d *DirtyChecker) Tick() {
	if d.settings.Disabled {
		return
	}
	d.elapsed++
	if d.elapsed < d.settings.TimeoutsPerCheck {
		return
	}
	d.elapsed = 0
	d.Check()
}

// Check compares every tracked property with its last seen value and flushes
// the changed ones in a single drain.
func (d *DirtyChecker) Check() int {
	tracked := make([]*DirtyCheckProperty, len(d.tracked))
	copy(tracked, d.tracked)
	changed := 0
	d.queue.Batch(func() {
		for _, p := range tracked {
			if p.IsDirty() {
				changed++
				d.queue.Add(p)
			}
		}
	})
	observability.LogDirtyCheck(d.logger, len(tracked), changed)
	d.metrics.RecordDirtyCheck(context.Background(), len(tracked), changed)
	return changed
}

// DirtyCheckProperty is a polled observer.
type DirtyCheckProperty struct {
	checker  *DirtyChecker
	obj      interface{}
	key      string
	subs     propertySubscribers
	oldValue interface{}
}

// GetValue reads the property.
func (p *DirtyCheckProperty) GetValue() interface{} {
	return GetProperty(p.obj, p.key)
}

// SetValue writes the property; the change is picked up by the next check.
func (p *DirtyCheckProperty) SetValue(value interface{}) error {
	return SetProperty(p.obj, p.key, value)
}

// IsDirty reports whether the value changed since the last flush.
func (p *DirtyCheckProperty) IsDirty() bool {
	return !SameValue(p.oldValue, p.GetValue())
}

// Flush notifies subscribers and records the new value.
func (p *DirtyCheckProperty) Flush() {
	oldValue := p.oldValue
	newValue := p.GetValue()
	p.oldValue = newValue
	if !SameValue(oldValue, newValue) {
		p.subs.notify(newValue, oldValue)
	}
}

// Subscribe adds s; the first subscriber starts polling.
func (p *DirtyCheckProperty) Subscribe(s Subscriber) {
	if p.subs.Add(s) && p.subs.Count() == 1 {
		p.oldValue = p.GetValue()
		p.checker.AddProperty(p)
	}
}

// Unsubscribe removes s; the last one stops polling.
func (p *DirtyCheckProperty) Unsubscribe(s Subscriber) {
	if p.subs.Remove(s) && p.subs.Count() == 0 {
		p.checker.RemoveProperty(p)
	}
}

// TickerScheduler drives a dirty checker from a time.Ticker. Ticks run on the
// ticker goroutine while holding Lock, which must also guard every other use
// of the locator.
type TickerScheduler struct {
	Interval time.Duration
	Lock     sync.Locker

	mu   sync.Mutex
	stop chan struct{}
}

// NewTickerScheduler creates a scheduler ticking every interval.
func NewTickerScheduler(interval time.Duration, lock sync.Locker) *TickerScheduler {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return &TickerScheduler{Interval: interval, Lock: lock}
}

// Start begins ticking.
func (s *TickerScheduler) Start(tick func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	stop := make(chan struct{})
	s.stop = stop
	go func() {
		t := time.NewTicker(s.Interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				if s.Lock != nil {
					s.Lock.Lock()
				}
				tick()
				if s.Lock != nil {
					s.Lock.Unlock()
				}
			}
		}
	}()
}

// Stop ends ticking. It does not wait for a tick in progress, since Stop may
// be called from within a tick.
func (s *TickerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return
	}
	close(s.stop)
	s.stop = nil
}
