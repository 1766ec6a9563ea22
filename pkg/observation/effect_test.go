package observation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gobinding/pkg/types"
)

func TestEffectReRunsOnDependencyChange(t *testing.T) {
	l := NewObserverLocator()
	state := ObjectOf("count", 1.0)
	var seen []interface{}

	e, err := l.Effect(func(e *Effect) error {
		seen = append(seen, e.Wrap(state).(*ObjectProxy).Get("count"))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{1.0}, seen, "effects run immediately")
	assert.Equal(t, 1, e.Dependencies())

	require.NoError(t, state.Set("count", 2.0))
	assert.Equal(t, []interface{}{1.0, 2.0}, seen)

	e.Stop()
	assert.True(t, e.Stopped())
	require.NoError(t, state.Set("count", 3.0))
	assert.Len(t, seen, 2)
}

func TestEffectPrunesStaleDependencies(t *testing.T) {
	l := NewObserverLocator()
	state := ObjectOf("useA", true, "a", "A", "b", "B")
	var seen []interface{}

	_, err := l.Effect(func(e *Effect) error {
		p := e.Wrap(state).(*ObjectProxy)
		if p.Get("useA") == true {
			seen = append(seen, p.Get("a"))
		} else {
			seen = append(seen, p.Get("b"))
		}
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, state.Set("useA", false))
	require.Equal(t, []interface{}{"A", "B"}, seen)

	require.NoError(t, state.Set("a", "A2"))
	assert.Len(t, seen, 2, "a is no longer a dependency")

	require.NoError(t, state.Set("b", "B2"))
	assert.Equal(t, []interface{}{"A", "B", "B2"}, seen)
}

func TestEffectExplicitObserve(t *testing.T) {
	l := NewObserverLocator()
	arr := NewArray()
	runs := 0
	_, err := l.Effect(func(e *Effect) error {
		runs++
		return e.ObserveCollection(arr)
	})
	require.NoError(t, err)

	l.FlushQueue().Batch(func() {
		arr.Push(1.0)
		arr.Push(2.0)
	})
	assert.Equal(t, 2, runs, "one re-run per flush")
}

func TestEffectErrorOnFirstRun(t *testing.T) {
	l := NewObserverLocator()
	boom := errors.New("boom")
	e, err := l.Effect(func(*Effect) error { return boom })
	assert.Nil(t, e)
	assert.ErrorIs(t, err, boom)
}

func TestEffectRunawayCap(t *testing.T) {
	var errs []error
	l := NewObserverLocator(
		WithMaxRunCount(4),
		WithErrorHandler(func(err error) { errs = append(errs, err) }),
	)
	state := ObjectOf("n", 0.0)
	runs := 0

	e, err := l.Effect(func(e *Effect) error {
		runs++
		p := e.Wrap(state).(*ObjectProxy)
		n := p.Get("n").(float64)
		return p.Set("n", n+1)
	})

	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrEffectRunaway))
	assert.Nil(t, e)
	assert.Equal(t, 4, runs)
	assert.Empty(t, errs)
}
