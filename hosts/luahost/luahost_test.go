package luahost_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/nodefacade/host"
	"github.com/vk/nodefacade/hosts/luahost"
	"github.com/vk/nodefacade/proxy"
)

const sampleScript = `
scene.var("HIP", "/projects/demo")
scene.bundle("heroes", {"/obj/geo1"})

scene.node("/obj/geo1", "geo")
scene.attr("/obj/geo1", "artist", "vlad")
scene.parm("/obj/geo1", "scale", "number", 1.5)
scene.parm("/obj/geo1", "file", "string", "$HIP/out.exr")
scene.tuple("/obj/geo1", "t", "number", {0, 0, 0})

scene.parm("/obj/geo1", "frozen", "number", 1)
scene.lock("/obj/geo1", "frozen")

scene.parm("/obj/geo1", "resx", "number", 256)
scene.expression("/obj/geo1", "resx", "$RES")

scene.method("/obj/geo1", "double_scale", function(path, factor)
  return (factor or 2) * 1.5
end)
`

func loadSample(t *testing.T, ctx context.Context) *luahost.Session {
	t.Helper()
	sess, err := luahost.LoadString(ctx, sampleScript)
	require.NoError(t, err)
	t.Cleanup(sess.Close)
	return sess
}

func TestLoadString(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess := loadSample(t, ctx)

	t.Run("variables and bundles register on the session", func(t *testing.T) {
		v, ok := sess.Var("HIP")
		require.True(t, ok)
		assert.Equal(t, "/projects/demo", v)

		paths, err := sess.Bundle("heroes")
		require.NoError(t, err)
		assert.Equal(t, []string{"/obj/geo1"}, paths)
	})

	t.Run("nodes carry their attrs and parms", func(t *testing.T) {
		n, err := proxy.New(ctx, sess, "/obj/geo1")
		require.NoError(t, err)

		artist, err := n.Host().Attr("artist")
		require.NoError(t, err)
		assert.Equal(t, cty.StringVal("vlad"), artist)

		p, err := n.Parm(ctx, "scale")
		require.NoError(t, err)
		f, err := p.Float64(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1.5, f)

		tup, err := n.ParmTuple(ctx, "t")
		require.NoError(t, err)
		assert.Equal(t, 3, tup.Len())
	})

	t.Run("locked parms reject writes", func(t *testing.T) {
		n, err := proxy.New(ctx, sess, "/obj/geo1")
		require.NoError(t, err)
		p, err := n.Parm(ctx, "frozen")
		require.NoError(t, err)

		err = p.Set(ctx, 2)
		var readOnly *host.ReadOnlyError
		assert.ErrorAs(t, err, &readOnly)
	})

	t.Run("expression parms carry their expression", func(t *testing.T) {
		n, err := proxy.New(ctx, sess, "/obj/geo1")
		require.NoError(t, err)
		p, err := n.Parm(ctx, "resx")
		require.NoError(t, err)

		expr, ok := p.Expression()
		require.True(t, ok)
		assert.Equal(t, "$RES", expr)
	})
}

func TestLuaMethods(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess := loadSample(t, ctx)

	n, err := proxy.New(ctx, sess, "/obj/geo1")
	require.NoError(t, err)

	t.Run("dispatches into the lua function", func(t *testing.T) {
		result, err := n.Call(ctx, "double_scale")
		require.NoError(t, err)
		f, _ := result.AsBigFloat().Float64()
		assert.Equal(t, 3.0, f)
	})

	t.Run("passes arguments after the node path", func(t *testing.T) {
		result, err := n.Call(ctx, "double_scale", cty.NumberIntVal(4))
		require.NoError(t, err)
		f, _ := result.AsBigFloat().Float64()
		assert.Equal(t, 6.0, f)
	})

	t.Run("a closed session fails method calls", func(t *testing.T) {
		closable, err := luahost.LoadString(ctx, sampleScript)
		require.NoError(t, err)
		m, err := proxy.New(ctx, closable, "/obj/geo1")
		require.NoError(t, err)

		closable.Close()
		_, err = m.Call(ctx, "double_scale")
		assert.Error(t, err)
	})
}

func TestLoadStringErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cases := []struct {
		name   string
		script string
	}{
		{"syntax error", `scene.node(`},
		{"runtime error", `error("boom")`},
		{"duplicate node path", `
scene.node("/obj/geo1", "geo")
scene.node("/obj/geo1", "geo")
`},
		{"unknown parm type", `
scene.node("/obj/geo1", "geo")
scene.parm("/obj/geo1", "scale", "vector", 1)
`},
		{"attr on a missing node", `scene.attr("/obj/nope", "artist", "x")`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := luahost.LoadString(ctx, tc.script)
			assert.Error(t, err)
		})
	}
}
