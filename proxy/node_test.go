package proxy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/nodefacade/host"
	"github.com/vk/nodefacade/hosts/memhost"
	"github.com/vk/nodefacade/proxy"
)

// Asset is the canonical wrapper used throughout these tests: a declared
// field, a declared method, and everything else delegated to the host.
type Asset struct {
	*proxy.Node
	Artist string
}

func (a *Asset) Describe() string {
	return "asset by " + a.Artist
}

func newScene(t *testing.T) (*memhost.Session, *memhost.Node) {
	t.Helper()
	sess := memhost.New()
	node := sess.MustCreateNode("/obj/geo1", "geo")
	node.SetAttr("artist", cty.StringVal("vlad"))
	node.AddParm("scale", cty.Number, cty.NumberFloatVal(1.5))
	node.AddParm("file", cty.String, cty.StringVal("$HIP/render/out.exr"))
	node.AddTuple("t", cty.Number, []cty.Value{
		cty.NumberIntVal(0), cty.NumberIntVal(0), cty.NumberIntVal(0),
	})
	node.BindMethod("cook", func(ctx context.Context, args ...cty.Value) (cty.Value, error) {
		node.SetAttr("cooked", cty.True)
		return cty.StringVal("ok"), nil
	})
	return sess, node
}

func TestNew(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("resolves an existing path", func(t *testing.T) {
		sess, _ := newScene(t)
		n, err := proxy.New(ctx, sess, "/obj/geo1")
		require.NoError(t, err)
		assert.Equal(t, "/obj/geo1", n.Path())
		assert.Equal(t, "geo", n.Host().Type())
	})

	t.Run("fails with ResolutionError for a bad path", func(t *testing.T) {
		sess, _ := newScene(t)
		n, err := proxy.New(ctx, sess, "/obj/missing")
		assert.Nil(t, n)

		var resErr *proxy.ResolutionError
		require.ErrorAs(t, err, &resErr)
		assert.Equal(t, "/obj/missing", resErr.Path)

		var notFound *host.NotFoundError
		assert.ErrorAs(t, err, &notFound, "the host error should stay reachable through Unwrap")
	})
}

func TestNodeGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("host attribute resolves to its value", func(t *testing.T) {
		sess, _ := newScene(t)
		n, err := proxy.New(ctx, sess, "/obj/geo1")
		require.NoError(t, err)

		v, err := n.Get(ctx, "artist")
		require.NoError(t, err)
		assert.Equal(t, cty.StringVal("vlad"), v)
	})

	t.Run("parameter name resolves to a handle, not a scalar", func(t *testing.T) {
		sess, _ := newScene(t)
		n, err := proxy.New(ctx, sess, "/obj/geo1")
		require.NoError(t, err)

		v, err := n.Get(ctx, "scale")
		require.NoError(t, err)
		p, ok := v.(*proxy.Parm)
		require.True(t, ok, "expected a *proxy.Parm, got %T", v)

		f, err := p.Float64(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1.5, f)
	})

	t.Run("tuple name resolves to a tuple handle", func(t *testing.T) {
		sess, _ := newScene(t)
		n, err := proxy.New(ctx, sess, "/obj/geo1")
		require.NoError(t, err)

		v, err := n.Get(ctx, "t")
		require.NoError(t, err)
		tup, ok := v.(*proxy.Tuple)
		require.True(t, ok, "expected a *proxy.Tuple, got %T", v)
		assert.Equal(t, 3, tup.Len())
	})

	t.Run("host method resolves to a callable", func(t *testing.T) {
		sess, _ := newScene(t)
		n, err := proxy.New(ctx, sess, "/obj/geo1")
		require.NoError(t, err)

		v, err := n.Get(ctx, "cook")
		require.NoError(t, err)
		m, ok := v.(host.Method)
		require.True(t, ok, "expected a host.Method, got %T", v)

		result, err := m(ctx)
		require.NoError(t, err)
		assert.Equal(t, cty.StringVal("ok"), result)
	})

	t.Run("unknown name fails with UnknownAttributeError", func(t *testing.T) {
		sess, _ := newScene(t)
		n, err := proxy.New(ctx, sess, "/obj/geo1")
		require.NoError(t, err)

		_, err = n.Get(ctx, "no_such_thing")
		var unknown *proxy.UnknownAttributeError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "no_such_thing", unknown.Attr)
	})

	t.Run("stale handle surfaces the host deletion error", func(t *testing.T) {
		sess, _ := newScene(t)
		n, err := proxy.New(ctx, sess, "/obj/geo1")
		require.NoError(t, err)
		require.NoError(t, sess.DeleteNode("/obj/geo1"))

		_, err = n.Get(ctx, "artist")
		var deleted *host.ObjectDeletedError
		require.ErrorAs(t, err, &deleted, "deletion must not be masked as an unknown attribute")

		var unknown *proxy.UnknownAttributeError
		assert.False(t, errors.As(err, &unknown))
	})
}

func TestNodeGetDeclared(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("declared field shadows the host attribute", func(t *testing.T) {
		sess, _ := newScene(t)
		n, err := proxy.New(ctx, sess, "/obj/geo1")
		require.NoError(t, err)

		a := &Asset{Node: n, Artist: "override"}
		n.BindOwner(a)

		v, err := n.Get(ctx, "Artist")
		require.NoError(t, err)
		assert.Equal(t, "override", v)

		// Case-folded access reaches the same field, still shadowing the
		// host attribute of the same spelling.
		v, err = n.Get(ctx, "artist")
		require.NoError(t, err)
		assert.Equal(t, "override", v)
	})

	t.Run("declared method resolves bound to the owner", func(t *testing.T) {
		sess, _ := newScene(t)
		n, err := proxy.New(ctx, sess, "/obj/geo1")
		require.NoError(t, err)

		a := &Asset{Node: n, Artist: "vlad"}
		n.BindOwner(a)

		v, err := n.Get(ctx, "describe")
		require.NoError(t, err)
		fn, ok := v.(func() string)
		require.True(t, ok, "expected a bound func() string, got %T", v)
		assert.Equal(t, "asset by vlad", fn())
	})

	t.Run("binding a non-struct owner panics", func(t *testing.T) {
		sess, _ := newScene(t)
		n, err := proxy.New(ctx, sess, "/obj/geo1")
		require.NoError(t, err)

		assert.Panics(t, func() { n.BindOwner(42) })
		assert.Panics(t, func() { n.BindOwner(nil) })
	})
}

func TestNodeSet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("parameter writes reach the host", func(t *testing.T) {
		sess, _ := newScene(t)
		n, err := proxy.New(ctx, sess, "/obj/geo1")
		require.NoError(t, err)

		require.NoError(t, n.Set(ctx, "scale", 3.0))

		other, err := proxy.New(ctx, sess, "/obj/geo1")
		require.NoError(t, err)
		p, err := other.Parm(ctx, "scale")
		require.NoError(t, err)
		f, err := p.Float64(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3.0, f, "a second proxy over the same node sees the write")
	})

	t.Run("parameter names are never shadowed by dynamic attributes", func(t *testing.T) {
		sess, _ := newScene(t)
		n, err := proxy.New(ctx, sess, "/obj/geo1")
		require.NoError(t, err)

		require.NoError(t, n.Set(ctx, "scale", 2.0))
		v, err := n.Get(ctx, "scale")
		require.NoError(t, err)
		p, ok := v.(*proxy.Parm)
		require.True(t, ok, "scale must still resolve to the parameter handle")
		f, err := p.Float64(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2.0, f)
	})

	t.Run("declared field assignment stays local", func(t *testing.T) {
		sess, _ := newScene(t)
		n, err := proxy.New(ctx, sess, "/obj/geo1")
		require.NoError(t, err)
		a := &Asset{Node: n}
		n.BindOwner(a)

		require.NoError(t, n.Set(ctx, "artist", "someone"))
		assert.Equal(t, "someone", a.Artist)

		// The host attribute of the same name is untouched.
		raw, err := n.Host().Attr("artist")
		require.NoError(t, err)
		assert.Equal(t, cty.StringVal("vlad"), raw)
	})

	t.Run("unknown names become local dynamic attributes", func(t *testing.T) {
		sess, node := newScene(t)
		n, err := proxy.New(ctx, sess, "/obj/geo1")
		require.NoError(t, err)

		require.NoError(t, n.Set(ctx, "note", "wip"))
		v, err := n.Get(ctx, "note")
		require.NoError(t, err)
		assert.Equal(t, "wip", v)

		// The host never saw the name.
		_, err = node.Attr("note")
		var noAttr *host.NoSuchAttributeError
		assert.ErrorAs(t, err, &noAttr)
	})

	t.Run("a handle source is evaluated before writing", func(t *testing.T) {
		sess, node := newScene(t)
		node.AddParm("scale_ref", cty.Number, cty.NumberFloatVal(5))

		n, err := proxy.New(ctx, sess, "/obj/geo1")
		require.NoError(t, err)
		src, err := n.Parm(ctx, "scale_ref")
		require.NoError(t, err)

		require.NoError(t, n.Set(ctx, "scale", src))
		p, err := n.Parm(ctx, "scale")
		require.NoError(t, err)
		f, err := p.Float64(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5.0, f)
	})

	t.Run("tuple writes accept aggregates", func(t *testing.T) {
		sess, _ := newScene(t)
		n, err := proxy.New(ctx, sess, "/obj/geo1")
		require.NoError(t, err)

		require.NoError(t, n.Set(ctx, "t", []any{1.0, 2.0, 3.0}))
		tup, err := n.ParmTuple(ctx, "t")
		require.NoError(t, err)
		v, err := tup.Value(ctx)
		require.NoError(t, err)
		native, err := proxy.NativeValue(ctx, v)
		require.NoError(t, err)
		assert.Equal(t, []any{1.0, 2.0, 3.0}, native)
	})
}

func TestNodeCall(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("invokes a bound host method", func(t *testing.T) {
		sess, node := newScene(t)
		n, err := proxy.New(ctx, sess, "/obj/geo1")
		require.NoError(t, err)

		result, err := n.Call(ctx, "cook")
		require.NoError(t, err)
		assert.Equal(t, cty.StringVal("ok"), result)

		cooked, err := node.Attr("cooked")
		require.NoError(t, err)
		assert.Equal(t, cty.True, cooked)
	})

	t.Run("unknown method fails with UnknownAttributeError", func(t *testing.T) {
		sess, _ := newScene(t)
		n, err := proxy.New(ctx, sess, "/obj/geo1")
		require.NoError(t, err)

		_, err = n.Call(ctx, "explode")
		var unknown *proxy.UnknownAttributeError
		assert.ErrorAs(t, err, &unknown)
	})
}

func TestNodeOptions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("WithParmRead(false) hides parameters from Get", func(t *testing.T) {
		sess, _ := newScene(t)
		n, err := proxy.New(ctx, sess, "/obj/geo1", proxy.WithParmRead(false))
		require.NoError(t, err)

		_, err = n.Get(ctx, "scale")
		var unknown *proxy.UnknownAttributeError
		assert.ErrorAs(t, err, &unknown)
	})

	t.Run("WithParmWrite(false) keeps writes local", func(t *testing.T) {
		sess, node := newScene(t)
		n, err := proxy.New(ctx, sess, "/obj/geo1", proxy.WithParmWrite(false))
		require.NoError(t, err)

		require.NoError(t, n.Set(ctx, "scale", 9.0))

		hp, err := node.Parm("scale")
		require.NoError(t, err)
		v, err := hp.Eval(ctx)
		require.NoError(t, err)
		assert.Equal(t, cty.NumberFloatVal(1.5), v, "the host parameter must be untouched")
	})

	t.Run("WithParmNames restricts the projection", func(t *testing.T) {
		sess, _ := newScene(t)
		n, err := proxy.New(ctx, sess, "/obj/geo1", proxy.WithParmNames("scale"))
		require.NoError(t, err)

		_, err = n.Get(ctx, "scale")
		require.NoError(t, err)

		_, err = n.Get(ctx, "file")
		var unknown *proxy.UnknownAttributeError
		assert.ErrorAs(t, err, &unknown)
	})

	t.Run("RefreshParms picks up spare parameters", func(t *testing.T) {
		sess, node := newScene(t)
		n, err := proxy.New(ctx, sess, "/obj/geo1")
		require.NoError(t, err)

		node.AddParm("spare", cty.String, cty.StringVal("x"))
		_, err = n.Get(ctx, "spare")
		var unknown *proxy.UnknownAttributeError
		require.ErrorAs(t, err, &unknown, "the snapshot predates the spare parameter")

		n.RefreshParms()
		v, err := n.Get(ctx, "spare")
		require.NoError(t, err)
		assert.IsType(t, &proxy.Parm{}, v)
	})
}
