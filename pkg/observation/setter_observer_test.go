package observation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gobinding/pkg/types"
)

func TestSetterObserverNotifiesOnFlush(t *testing.T) {
	l := NewObserverLocator()
	obj := ObjectOf("name", "ann")
	obs, err := l.GetObserver(obj, "name")
	require.NoError(t, err)
	require.IsType(t, &SetterObserver{}, obs)

	r := &recorder{}
	obs.Subscribe(r)

	require.NoError(t, obj.Set("name", "bob"))
	require.Len(t, r.changes, 1)
	assert.Equal(t, change{"bob", "ann"}, r.changes[0])
	assert.Equal(t, "bob", obj.Get("name"))
}

func TestSetterObserverBatchesToOneNotification(t *testing.T) {
	l := NewObserverLocator()
	obj := ObjectOf("n", 1.0)
	obs, err := l.GetObserver(obj, "n")
	require.NoError(t, err)
	r := &recorder{}
	obs.Subscribe(r)

	l.FlushQueue().Batch(func() {
		require.NoError(t, obj.Set("n", 2.0))
		require.NoError(t, obj.Set("n", 3.0))
		assert.Equal(t, 3.0, obj.Get("n"), "reads see the latest value before the flush")
	})

	require.Len(t, r.changes, 1)
	assert.Equal(t, change{3.0, 1.0}, r.changes[0], "old value is the one before the first write")
}

func TestSetterObserverRevertIsSilent(t *testing.T) {
	l := NewObserverLocator()
	obj := ObjectOf("n", 1.0)
	obs, _ := l.GetObserver(obj, "n")
	r := &recorder{}
	obs.Subscribe(r)

	l.FlushQueue().Batch(func() {
		_ = obj.Set("n", 2.0)
		_ = obj.Set("n", 1.0)
	})
	assert.Empty(t, r.changes)
}

func TestSetterObserverIsCachedOnObject(t *testing.T) {
	l := NewObserverLocator()
	obj := NewObject()
	a, err := l.GetObserver(obj, "missing")
	require.NoError(t, err)
	b, err := l.GetObserver(obj, "missing")
	require.NoError(t, err)
	assert.Same(t, a, b)

	cached, ok := obj.Observer("missing")
	require.True(t, ok)
	assert.Same(t, a, cached)

	l.Dispose(obj)
	_, ok = obj.Observer("missing")
	assert.False(t, ok)
}

func TestSetterObserverStopsInterceptingWhenUnsubscribed(t *testing.T) {
	l := NewObserverLocator()
	obj := ObjectOf("n", 1.0)
	obs, _ := l.GetObserver(obj, "n")
	r := &recorder{}
	obs.Subscribe(r)
	obs.Unsubscribe(r)

	require.NoError(t, obj.Set("n", 5.0))
	assert.Empty(t, r.changes)
	assert.Equal(t, 5.0, obj.Get("n"))
	assert.Equal(t, 5.0, obs.GetValue())
}

func TestObjectPrototypeChain(t *testing.T) {
	proto := ObjectOf("greeting", "hi")
	obj := NewObject().WithProto(proto)

	assert.Equal(t, "hi", obj.Get("greeting"))
	assert.True(t, obj.Has("greeting"))
	assert.False(t, obj.HasOwn("greeting"))

	require.NoError(t, obj.Set("greeting", "hello"))
	assert.True(t, obj.HasOwn("greeting"), "writes create an own property")
	assert.Equal(t, "hi", proto.Get("greeting"))
}

func fullName() Descriptor {
	return Descriptor{
		Get: func(this *ObjectProxy) interface{} {
			first, _ := this.Get("first").(string)
			last, _ := this.Get("last").(string)
			return first + " " + last
		},
		Configurable: true,
	}
}

func TestComputedObserverLazyWithoutSubscribers(t *testing.T) {
	l := NewObserverLocator()
	calls := 0
	obj := ObjectOf("first", "ada", "last", "lovelace")
	d := fullName()
	get := d.Get
	d.Get = func(this *ObjectProxy) interface{} {
		calls++
		return get(this)
	}
	obj.DefineProperty("full", d)

	obs, err := l.GetObserver(obj, "full")
	require.NoError(t, err)
	c, ok := obs.(*ComputedObserver)
	require.True(t, ok)

	assert.Equal(t, "ada lovelace", obs.GetValue())
	assert.Equal(t, "ada lovelace", obs.GetValue())
	assert.Equal(t, 2, calls, "no caching without subscribers")
	assert.Zero(t, c.record.Count(), "no dependencies without subscribers")
}

func TestComputedObserverCachesOnceSubscribed(t *testing.T) {
	l := NewObserverLocator()
	calls := 0
	obj := ObjectOf("first", "ada", "last", "lovelace")
	d := fullName()
	get := d.Get
	d.Get = func(this *ObjectProxy) interface{} {
		calls++
		return get(this)
	}
	obj.DefineProperty("full", d)
	obs, _ := l.GetObserver(obj, "full")
	c := obs.(*ComputedObserver)

	r := &recorder{}
	obs.Subscribe(r)
	assert.Equal(t, 1, calls, "first subscriber computes eagerly")
	assert.Equal(t, 2, c.record.Count(), "getter reads are tracked")

	assert.Equal(t, "ada lovelace", obs.GetValue())
	assert.Equal(t, "ada lovelace", obj.Get("full"))
	assert.Equal(t, 1, calls, "cached while dependencies are unchanged")

	require.NoError(t, obj.Set("last", "byron"))
	assert.Equal(t, 2, calls)
	require.Len(t, r.changes, 1)
	assert.Equal(t, change{"ada byron", "ada lovelace"}, r.changes[0])

	obs.Unsubscribe(r)
	assert.Zero(t, c.record.Count(), "last unsubscribe releases dependencies")
}

func TestComputedObserverReadOnly(t *testing.T) {
	l := NewObserverLocator()
	obj := ObjectOf("first", "a", "last", "b")
	obj.DefineProperty("full", fullName())
	obs, _ := l.GetObserver(obj, "full")

	err := obs.SetValue("x y")
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrNoSetter))

	err = obj.Set("full", "x y")
	assert.True(t, types.IsCode(err, types.ErrNoSetter))
}

func TestComputedObserverSetter(t *testing.T) {
	l := NewObserverLocator()
	obj := ObjectOf("first", "a", "last", "b")
	d := fullName()
	d.Set = func(this *ObjectProxy, v interface{}) error {
		return this.Set("first", v)
	}
	obj.DefineProperty("full", d)
	obs, _ := l.GetObserver(obj, "full")
	r := &recorder{}
	obs.Subscribe(r)

	require.NoError(t, obs.SetValue("z"))
	assert.Equal(t, "z b", obs.GetValue())
	require.NotEmpty(t, r.changes)
	assert.Equal(t, "z b", r.last().newValue)
}

func TestComputedObserverRunawayCap(t *testing.T) {
	var errs []error
	l := NewObserverLocator(
		WithMaxRunCount(5),
		WithErrorHandler(func(err error) { errs = append(errs, err) }),
	)
	obj := ObjectOf("n", 0.0)
	obj.DefineProperty("loop", Descriptor{
		Get: func(this *ObjectProxy) interface{} {
			n, _ := this.Get("n").(float64)
			_ = this.Set("n", n+1)
			return n
		},
		Configurable: true,
	})
	obs, err := l.GetObserver(obj, "loop")
	require.NoError(t, err)
	obs.Subscribe(&recorder{})

	require.NoError(t, obj.Set("n", 100.0))

	require.NotEmpty(t, errs)
	assert.True(t, types.IsCode(errs[0], types.ErrComputedRunaway))
}

func TestNonConfigurableAccessorFallsBackToDirtyChecking(t *testing.T) {
	l := NewObserverLocator()
	obj := NewObject()
	obj.DefineProperty("fixed", Descriptor{
		Get: func(*ObjectProxy) interface{} { return 1.0 },
	})
	obs, err := l.GetObserver(obj, "fixed")
	require.NoError(t, err)
	assert.IsType(t, &DirtyCheckProperty{}, obs)
}
