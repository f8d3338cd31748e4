package proxy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/nodefacade/host"
	"github.com/vk/nodefacade/hosts/memhost"
	"github.com/vk/nodefacade/proxy"
)

func newTupleScene(t *testing.T, ctx context.Context) *proxy.Tuple {
	t.Helper()
	sess, _ := newScene(t)
	n, err := proxy.New(ctx, sess, "/obj/geo1")
	require.NoError(t, err)
	tup, err := n.ParmTuple(ctx, "t")
	require.NoError(t, err)
	return tup
}

func TestTupleComponents(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tup := newTupleScene(t, ctx)

	assert.Equal(t, "t", tup.Name())
	require.Equal(t, 3, tup.Len())

	// Components are addressable both through the tuple and as suffixed
	// parameters on the node.
	comp := tup.At(1)
	assert.Equal(t, "t2", comp.Name())

	viaNode, err := tup.Node().Parm(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, comp.Path(), viaNode.Path())
}

func TestTupleSet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("writes all components", func(t *testing.T) {
		tup := newTupleScene(t, ctx)
		require.NoError(t, tup.Set(ctx, 1, 2, 3))

		v, err := tup.Value(ctx)
		require.NoError(t, err)
		native, err := proxy.NativeValue(ctx, v)
		require.NoError(t, err)
		assert.Equal(t, []any{1.0, 2.0, 3.0}, native)
	})

	t.Run("rejects a component count mismatch", func(t *testing.T) {
		tup := newTupleScene(t, ctx)
		err := tup.Set(ctx, 1, 2)
		var invalid *host.InvalidValueError
		assert.ErrorAs(t, err, &invalid)
	})

	t.Run("SetValue broadcasts a scalar", func(t *testing.T) {
		tup := newTupleScene(t, ctx)
		require.NoError(t, tup.SetValue(ctx, 7))

		native, err := tup.Native(ctx)
		require.NoError(t, err)
		assert.Equal(t, []any{7.0, 7.0, 7.0}, native)
	})

	t.Run("SetValue accepts a cty aggregate", func(t *testing.T) {
		tup := newTupleScene(t, ctx)
		value := cty.TupleVal([]cty.Value{
			cty.NumberIntVal(4), cty.NumberIntVal(5), cty.NumberIntVal(6),
		})
		require.NoError(t, tup.SetValue(ctx, value))

		native, err := tup.Native(ctx)
		require.NoError(t, err)
		assert.Equal(t, []any{4.0, 5.0, 6.0}, native)
	})

	t.Run("a locked component blocks the whole write", func(t *testing.T) {
		sess, node := newScene(t)
		n, err := proxy.New(ctx, sess, "/obj/geo1")
		require.NoError(t, err)

		hp, err := node.Parm("t2")
		require.NoError(t, err)
		hp.(*memhost.Parm).Lock()

		tup, err := n.ParmTuple(ctx, "t")
		require.NoError(t, err)
		err = tup.Set(ctx, 1, 2, 3)
		var readOnly *host.ReadOnlyError
		require.ErrorAs(t, err, &readOnly)

		// Nothing was partially written.
		first, err := tup.At(0).Float64(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0.0, first)
	})
}
