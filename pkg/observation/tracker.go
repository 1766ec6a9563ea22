package observation

import (
	"log/slog"

	"github.com/sandrolain/gobinding/pkg/observability"
)

// Tracker is the stack of connectables currently evaluating. Reads made
// through proxies register with the topmost entry. Each locator owns one
// tracker, so separate runtimes never share tracking state.
type Tracker struct {
	stack   []Connectable
	proxies map[interface{}]interface{}
	onError func(error)
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{proxies: make(map[interface{}]interface{})}
}

// Enter makes c the active connectable.
func (t *Tracker) Enter(c Connectable) {
	t.stack = append(t.stack, c)
}

// Exit pops c. It panics when c is not the topmost connectable, which means
// Enter and Exit calls were not paired.
func (t *Tracker) Exit(c Connectable) {
	n := len(t.stack)
	if n == 0 || t.stack[n-1] != c {
		panic("observation: tracker exit does not match the active connectable")
	}
	t.stack[n-1] = nil
	t.stack = t.stack[:n-1]
}

// Current returns the topmost connectable, or nil.
func (t *Tracker) Current() Connectable {
	if t == nil || len(t.stack) == 0 {
		return nil
	}
	return t.stack[len(t.stack)-1]
}

// report delivers an error raised while registering a proxied read. A
// tracker owned by a locator hands it to the locator's error handler.
func (t *Tracker) report(err error) {
	if err == nil {
		return
	}
	if t.onError != nil {
		t.onError(err)
		return
	}
	observability.LogObserverError(slog.Default(), "proxy", err)
}

// Depth returns the number of active connectables.
func (t *Tracker) Depth() int { return len(t.stack) }

// Pause runs fn with no active connectable, so reads made by fn are not
// tracked.
func (t *Tracker) Pause(fn func()) {
	saved := t.stack
	t.stack = nil
	defer func() { t.stack = saved }()
	fn()
}
