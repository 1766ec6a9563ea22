package binding

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gobinding/pkg/ast"
	"github.com/sandrolain/gobinding/pkg/observation"
	"github.com/sandrolain/gobinding/pkg/parser"
	"github.com/sandrolain/gobinding/pkg/scope"
	"github.com/sandrolain/gobinding/pkg/types"
)

// resources is a minimal service locator for tests.
type resources struct {
	converters map[string]ast.Converter
	behaviors  map[string]ast.Behavior
}

func (r *resources) ValueConverter(name string) (ast.Converter, bool) {
	c, ok := r.converters[name]
	return c, ok
}

func (r *resources) BindingBehavior(name string) (ast.Behavior, bool) {
	b, ok := r.behaviors[name]
	return b, ok
}

type upper struct{}

func (upper) ToView(v interface{}, _ ...interface{}) (interface{}, error) {
	return strings.ToUpper(ast.ToString(v)), nil
}

func (upper) FromView(v interface{}, _ ...interface{}) (interface{}, error) {
	return strings.ToLower(ast.ToString(v)), nil
}

// shout only converts toward the view.
type shout struct{}

func (shout) ToView(v interface{}, _ ...interface{}) (interface{}, error) {
	return strings.ToUpper(ast.ToString(v)) + "!", nil
}

// modeBehavior forces a mode for as long as it is attached.
type modeBehavior struct {
	mode    Mode
	unbinds int
}

func (m *modeBehavior) Bind(_ types.Flags, _ *scope.Scope, b ast.Binding, _ ...interface{}) error {
	b.(*PropertyBinding).OverrideMode(m.mode)
	return nil
}

func (m *modeBehavior) Unbind(_ types.Flags, _ *scope.Scope, b ast.Binding) error {
	m.unbinds++
	b.(*PropertyBinding).RestoreMode()
	return nil
}

type fixture struct {
	locator *observation.ObserverLocator
	vm      *observation.Object
	target  *observation.Object
	scope   *scope.Scope
}

func newFixture(kv ...interface{}) *fixture {
	vm := observation.ObjectOf(kv...)
	return &fixture{
		locator: observation.NewObserverLocator(),
		vm:      vm,
		target:  observation.ObjectOf("value", nil),
		scope:   scope.Create(vm, nil, false),
	}
}

func (f *fixture) bind(t *testing.T, source string, mode Mode, opts ...Option) *PropertyBinding {
	t.Helper()
	expr, err := parser.Parse(source, parser.BindCommand)
	require.NoError(t, err)
	b := NewPropertyBinding(expr, f.target, "value", mode, f.locator, opts...)
	require.NoError(t, b.Bind(f.scope))
	return b
}

func TestToViewFollowsDependencies(t *testing.T) {
	f := newFixture("first", "Ada", "last", "Lovelace")
	b := f.bind(t, "first + ' ' + last", ToView)

	assert.True(t, b.IsBound())
	assert.Equal(t, "Ada Lovelace", f.target.Get("value"))
	assert.Equal(t, 2, b.Dependencies())

	require.NoError(t, f.vm.Set("first", "Augusta"))
	assert.Equal(t, "Augusta Lovelace", f.target.Get("value"))
}

func TestOneTimeDoesNotObserve(t *testing.T) {
	f := newFixture("name", "a")
	b := f.bind(t, "name", OneTime)

	assert.Equal(t, "a", f.target.Get("value"))
	assert.Zero(t, b.Dependencies())

	require.NoError(t, f.vm.Set("name", "b"))
	assert.Equal(t, "a", f.target.Get("value"))
}

func TestTwoWayWritesBack(t *testing.T) {
	f := newFixture("name", "a")
	b := f.bind(t, "name", TwoWay)

	require.NoError(t, f.target.Set("value", "typed"))
	assert.Equal(t, "typed", f.vm.Get("name"))
	assert.Equal(t, "typed", f.target.Get("value"))
	assert.NoError(t, b.LastError())

	require.NoError(t, f.vm.Set("name", "model"))
	assert.Equal(t, "model", f.target.Get("value"))
}

func TestFromViewPushesInitialTargetValue(t *testing.T) {
	f := newFixture("name", "model")
	require.NoError(t, f.target.Set("value", "view"))
	f.bind(t, "name", FromView)

	assert.Equal(t, "view", f.vm.Get("name"))

	require.NoError(t, f.vm.Set("name", "ignored"))
	assert.Equal(t, "view", f.target.Get("value"))

	require.NoError(t, f.target.Set("value", "again"))
	assert.Equal(t, "again", f.vm.Get("name"))
}

func TestStaleDependenciesArePruned(t *testing.T) {
	f := newFixture("useA", true, "a", "A", "b", "B")
	b := f.bind(t, "useA ? a : b", ToView)
	assert.Equal(t, "A", f.target.Get("value"))
	assert.Equal(t, 2, b.Dependencies())

	require.NoError(t, f.vm.Set("useA", false))
	assert.Equal(t, "B", f.target.Get("value"))
	assert.Equal(t, 2, b.Dependencies())

	require.NoError(t, f.target.Set("value", "untouched"))
	require.NoError(t, f.vm.Set("a", "changed"))
	assert.Equal(t, "untouched", f.target.Get("value"), "a is no longer a dependency")

	require.NoError(t, f.vm.Set("b", "B2"))
	assert.Equal(t, "B2", f.target.Get("value"))
}

func TestCollectionChangeRefreshesTarget(t *testing.T) {
	items := observation.NewArray("a", "b")
	f := newFixture("items", items)
	f.bind(t, "items.join(',')", ToView)
	assert.Equal(t, "a,b", f.target.Get("value"))

	items.Push("c")
	assert.Equal(t, "a,b,c", f.target.Get("value"))

	items.Reverse()
	assert.Equal(t, "c,b,a", f.target.Get("value"))
}

func TestUnbindReleasesObservers(t *testing.T) {
	f := newFixture("name", "a")
	b := f.bind(t, "name", TwoWay)
	require.Equal(t, 1, b.Dependencies())

	b.Unbind()
	assert.False(t, b.IsBound())
	assert.Zero(t, b.Dependencies())

	require.NoError(t, f.vm.Set("name", "b"))
	assert.Equal(t, "a", f.target.Get("value"))
	require.NoError(t, f.target.Set("value", "c"))
	assert.Equal(t, "b", f.vm.Get("name"))

	obs, ok := f.vm.Observer("name")
	require.True(t, ok)
	assert.Zero(t, obs.(*observation.SetterObserver).SubscriberCount())
}

func TestRebind(t *testing.T) {
	f := newFixture("name", "a")
	b := f.bind(t, "name", ToView)
	require.NoError(t, b.Bind(f.scope))
	assert.Equal(t, 1, b.Dependencies())

	other := scope.Create(observation.ObjectOf("name", "other"), nil, false)
	require.NoError(t, b.Bind(other))
	assert.Equal(t, "other", f.target.Get("value"))

	require.NoError(t, f.vm.Set("name", "stale"))
	assert.Equal(t, "other", f.target.Get("value"))
}

func TestBindWithoutScope(t *testing.T) {
	f := newFixture()
	b := NewPropertyBinding(ast.EmptyString, f.target, "value", ToView, f.locator)
	err := b.Bind(nil)
	assert.True(t, types.IsCode(err, types.ErrNilScope))
	assert.False(t, b.IsBound())
}

func TestUpdateErrorsAreRecorded(t *testing.T) {
	boom := errors.New("boom")
	check := observation.Func(func(_ interface{}, args ...interface{}) (interface{}, error) {
		if args[0] == "bad" {
			return nil, boom
		}
		return args[0], nil
	})
	f := newFixture("v", "ok", "check", check)
	b := f.bind(t, "check(v)", ToView)
	assert.Equal(t, "ok", f.target.Get("value"))

	require.NoError(t, f.vm.Set("v", "bad"))
	assert.ErrorIs(t, b.LastError(), boom)
	assert.Equal(t, "ok", f.target.Get("value"))

	require.NoError(t, f.vm.Set("v", "fine"))
	assert.Equal(t, "fine", f.target.Get("value"))
}

func TestBindErrorIsReturned(t *testing.T) {
	f := newFixture()
	expr, err := parser.Parse("name | missing", parser.BindCommand)
	require.NoError(t, err)
	b := NewPropertyBinding(expr, f.target, "value", ToView, f.locator, WithResources(&resources{}))
	err = b.Bind(f.scope)
	assert.True(t, types.IsCode(err, types.ErrConverterNotFound))
	assert.False(t, b.IsBound())
	assert.Zero(t, b.Dependencies())
}

func TestConverterRoundTrip(t *testing.T) {
	res := &resources{converters: map[string]ast.Converter{"upper": upper{}}}
	f := newFixture("name", "ada")
	f.bind(t, "name | upper", TwoWay, WithResources(res))
	assert.Equal(t, "ADA", f.target.Get("value"))

	require.NoError(t, f.target.Set("value", "GRACE"))
	assert.Equal(t, "grace", f.vm.Get("name"))
	assert.Equal(t, "GRACE", f.target.Get("value"))
}

func TestTwoWaySourceChangeKeepsSource(t *testing.T) {
	res := &resources{converters: map[string]ast.Converter{"shout": shout{}, "upper": upper{}}}

	f := newFixture("msg", "ok")
	b := f.bind(t, "msg | shout", TwoWay, WithResources(res))
	assert.Equal(t, "OK!", f.target.Get("value"))

	require.NoError(t, f.vm.Set("msg", "hello"))
	assert.Equal(t, "hello", f.vm.Get("msg"))
	assert.Equal(t, "HELLO!", f.target.Get("value"))
	assert.NoError(t, b.LastError())

	require.NoError(t, f.target.Set("value", "typed"))
	assert.Equal(t, "typed", f.vm.Get("msg"))
	assert.Equal(t, "TYPED!", f.target.Get("value"))

	g := newFixture("name", "Ada")
	g.bind(t, "name | upper", TwoWay, WithResources(res))
	require.NoError(t, g.vm.Set("name", "Grace"))
	assert.Equal(t, "Grace", g.vm.Get("name"))
	assert.Equal(t, "GRACE", g.target.Get("value"))
}

func TestTwoWaySourceChangeInBatch(t *testing.T) {
	res := &resources{converters: map[string]ast.Converter{"shout": shout{}}}
	f := newFixture("msg", "a")
	f.bind(t, "msg | shout", TwoWay, WithResources(res))

	f.locator.FlushQueue().Batch(func() {
		require.NoError(t, f.vm.Set("msg", "b"))
		require.NoError(t, f.vm.Set("msg", "c"))
	})
	assert.Equal(t, "c", f.vm.Get("msg"))
	assert.Equal(t, "C!", f.target.Get("value"))
}

func TestBehaviorOverridesMode(t *testing.T) {
	once := &modeBehavior{mode: OneTime}
	res := &resources{behaviors: map[string]ast.Behavior{"once": once}}
	f := newFixture("name", "a")
	b := f.bind(t, "name & once", ToView, WithResources(res))

	assert.Equal(t, OneTime, b.Mode())
	assert.Zero(t, b.Dependencies())
	require.NoError(t, f.vm.Set("name", "b"))
	assert.Equal(t, "a", f.target.Get("value"))

	_, attached := b.Behavior("behavior:once")
	assert.True(t, attached)

	b.Unbind()
	assert.Equal(t, 1, once.unbinds)
	assert.Equal(t, ToView, b.Mode())
	_, attached = b.Behavior("behavior:once")
	assert.False(t, attached)
}

func TestBehaviorAppliedTwice(t *testing.T) {
	res := &resources{behaviors: map[string]ast.Behavior{"once": &modeBehavior{mode: OneTime}}}
	f := newFixture("name", "a")
	expr, err := parser.Parse("name & once & once", parser.BindCommand)
	require.NoError(t, err)
	b := NewPropertyBinding(expr, f.target, "value", ToView, f.locator, WithResources(res))
	err = b.Bind(f.scope)
	assert.True(t, types.IsCode(err, types.ErrBehaviorAlreadyBound))
}

func TestUpdateSource(t *testing.T) {
	f := newFixture("user", observation.ObjectOf("name", "a"))
	b := f.bind(t, "user.name", ToView)

	require.NoError(t, b.UpdateSource("b"))
	assert.Equal(t, "b", f.target.Get("value"))

	b.Unbind()
	assert.True(t, types.IsCode(b.UpdateSource("c"), types.ErrInvalidAssignment))
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "two-way", TwoWay.String())
	assert.Equal(t, "one-time", OneTime.String())
	assert.Equal(t, "unknown", Mode(0).String())
}
