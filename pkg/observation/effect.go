package observation

import (
	"github.com/sandrolain/gobinding/pkg/types"
)

// EffectFunc is the body of an effect. Reads made through e.Wrap proxies or
// explicit e.Observe calls become dependencies of the effect.
type EffectFunc func(e *Effect) error

// Effect re-runs a function whenever a dependency read during its last run
// changes. An effect that keeps re-triggering itself within one flush is
// stopped with a runaway error.
type Effect struct {
	locator *ObserverLocator
	fn      EffectFunc
	record  *ObserverRecord

	stopped  bool
	running  bool
	queued   bool
	runCount int
	runEpoch uint64
}

func newEffect(l *ObserverLocator, fn EffectFunc) *Effect {
	e := &Effect{locator: l, fn: fn}
	e.record = NewObserverRecord(l, e)
	return e
}

// Observe implements Connectable.
func (e *Effect) Observe(obj interface{}, key string) error {
	return e.record.Observe(obj, key)
}

// ObserveCollection implements Connectable.
func (e *Effect) ObserveCollection(c Collection) error {
	return e.record.ObserveCollection(c)
}

// Wrap returns a tracking proxy for v.
func (e *Effect) Wrap(v interface{}) interface{} {
	return e.locator.tracker.Wrap(v)
}

// Dependencies returns the number of observers the effect is subscribed to.
func (e *Effect) Dependencies() int { return e.record.Count() }

// HandleChange schedules a re-run.
func (e *Effect) HandleChange(_, _ interface{}) {
	if e.stopped {
		return
	}
	if e.running {
		e.queued = true
		return
	}
	e.locator.queue.Add(e)
}

// HandleCollectionChange schedules a re-run.
func (e *Effect) HandleCollectionChange(Collection, *IndexMap) {
	e.HandleChange(nil, nil)
}

// Flush re-runs the effect.
func (e *Effect) Flush() {
	if err := e.Run(); err != nil {
		e.locator.handleError("effect", err)
	}
}

// Run executes the effect body now.
func (e *Effect) Run() error {
	if e.stopped {
		return nil
	}
	if e.running {
		e.queued = true
		return nil
	}
	epoch := e.locator.queue.Epoch()
	if epoch == 0 || epoch != e.runEpoch {
		e.runEpoch = epoch
		e.runCount = 0
	}
	for {
		e.runCount++
		if e.runCount > e.locator.opts.MaxRunCount {
			e.runCount = 0
			e.Stop()
			return types.Errorf(types.ErrEffectRunaway,
				"effect exceeded %d re-runs", e.locator.opts.MaxRunCount)
		}
		e.queued = false
		if err := e.runOnce(); err != nil {
			return err
		}
		if !e.queued || e.stopped {
			return nil
		}
	}
}

func (e *Effect) runOnce() error {
	e.running = true
	e.record.Next()
	tracker := e.locator.tracker
	tracker.Enter(e)
	defer func() {
		tracker.Exit(e)
		e.record.Clear()
		e.running = false
	}()
	return e.fn(e)
}

// Stop releases every dependency. A stopped effect never runs again.
func (e *Effect) Stop() {
	e.stopped = true
	e.record.ClearAll()
}

// Stopped reports whether the effect was stopped.
func (e *Effect) Stopped() bool { return e.stopped }
