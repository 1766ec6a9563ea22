package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gobinding/pkg/observation"
	"github.com/sandrolain/gobinding/pkg/types"
)

// chain builds A -> B -> C and returns C.
func chain() (a, b, c *Scope) {
	a = Create(observation.ObjectOf("x", "A", "onlyA", 1.0), nil, false)
	b = FromParent(a, observation.ObjectOf("x", "B"))
	c = FromParent(b, observation.ObjectOf("y", "C"))
	return a, b, c
}

func TestResolveNearestContext(t *testing.T) {
	a, b, c := chain()

	ctx, err := Resolve(c, "y", 0, types.FlagNone)
	require.NoError(t, err)
	assert.Same(t, c.BindingContext, ctx)

	ctx, err = Resolve(c, "x", 0, types.FlagNone)
	require.NoError(t, err)
	assert.Same(t, b.BindingContext, ctx)

	ctx, err = Resolve(c, "onlyA", 0, types.FlagNone)
	require.NoError(t, err)
	assert.Same(t, a.BindingContext, ctx)
}

func TestResolveFallsBackToOriginatingContext(t *testing.T) {
	_, _, c := chain()

	ctx, err := Resolve(c, "missing", 0, types.FlagNone)
	require.NoError(t, err)
	assert.Same(t, c.BindingContext, ctx, "unknown names resolve locally")

	ctx, err = Resolve(c, "missing", 0, types.FlagTraversingParentScope)
	require.NoError(t, err)
	assert.Same(t, Marker, ctx)
}

func TestResolveAncestors(t *testing.T) {
	a, b, c := chain()

	tests := []struct {
		ancestor int
		want     interface{}
	}{
		{1, b.BindingContext},
		{2, a.BindingContext},
		{3, nil},
		{10, nil},
	}
	for _, tt := range tests {
		ctx, err := Resolve(c, "x", tt.ancestor, types.FlagNone)
		require.NoError(t, err)
		assert.Equal(t, tt.want, ctx, "ancestor %d", tt.ancestor)
	}

	// $parent lookups trust the count and do not search by name.
	ctx, err := Resolve(c, "missing", 1, types.FlagNone)
	require.NoError(t, err)
	assert.Same(t, b.BindingContext, ctx)
}

func TestResolveOverrideContextWins(t *testing.T) {
	_, b, c := chain()
	require.NoError(t, b.OverrideContext.Set("$index", 3.0))
	require.NoError(t, b.OverrideContext.Set("x", "override"))

	ctx, err := Resolve(c, "$index", 0, types.FlagNone)
	require.NoError(t, err)
	assert.Same(t, b.OverrideContext.Object, ctx)

	ctx, err = Resolve(c, "x", 1, types.FlagNone)
	require.NoError(t, err)
	assert.Same(t, b.OverrideContext.Object, ctx)
}

func TestResolveStopsAtBoundary(t *testing.T) {
	a := Create(observation.ObjectOf("outer", 1.0), nil, false)
	boundary := FromParent(a, observation.NewObject())
	boundary.IsBoundary = true
	inner := FromParent(boundary, observation.NewObject())

	ctx, err := Resolve(inner, "outer", 0, types.FlagNone)
	require.NoError(t, err)
	assert.Same(t, boundary.BindingContext, ctx, "lookups do not leak past a boundary")

	ctx, err = Resolve(inner, "outer", 2, types.FlagNone)
	require.NoError(t, err)
	assert.Nil(t, ctx, "$parent hops cannot cross a boundary")

	ctx, err = Resolve(inner, "outer", 1, types.FlagNone)
	require.NoError(t, err)
	assert.Same(t, boundary.BindingContext, ctx)
}

func TestResolveNativeContexts(t *testing.T) {
	type model struct {
		Name string `json:"name"`
	}
	root := Create(&model{Name: "ann"}, nil, false)
	child := FromParent(root, map[string]interface{}{"age": 3})

	ctx, err := Resolve(child, "name", 0, types.FlagNone)
	require.NoError(t, err)
	assert.Same(t, root.BindingContext, ctx)

	ctx, err = Resolve(child, "age", 0, types.FlagNone)
	require.NoError(t, err)
	assert.Equal(t, child.BindingContext, ctx)
}

func TestResolveNilScope(t *testing.T) {
	_, err := Resolve(nil, "x", 0, types.FlagNone)
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrNilScope))
}

func TestNewBindingContext(t *testing.T) {
	bc := NewBindingContext("item", 1.0)
	assert.Equal(t, []string{"item"}, bc.Keys())

	src := observation.ObjectOf("a", 1.0, "b", 2.0)
	copied := NewBindingContext(src, nil)
	assert.Equal(t, []string{"a", "b"}, copied.Keys())
	assert.NotSame(t, src, copied)

	fromMap := NewBindingContext(map[string]interface{}{"k": "v"}, nil)
	assert.Equal(t, "v", fromMap.Get("k"))

	assert.Zero(t, NewBindingContext(nil, nil).Len())
}
