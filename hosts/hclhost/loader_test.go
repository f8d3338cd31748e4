package hclhost_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/nodefacade/host"
	"github.com/vk/nodefacade/hosts/hclhost"
	"github.com/vk/nodefacade/proxy"
)

const sampleScene = `
variable "HIP" {
  value = "/projects/demo"
}

bundle "heroes" {
  paths = ["/obj/geo1"]
}

node "/obj/geo1" "geo" {
  attr "artist" {
    value = "vlad"
  }

  parm "scale" {
    type    = number
    default = 1.5
  }

  parm "file" {
    default = "$HIP/out.exr"
  }

  parm "frozen" {
    type    = number
    default = 1
    locked  = true
  }

  parm "resx" {
    type       = number
    expression = "$RES"
  }

  tuple "t" {
    default = [0, 0, 0]
  }
}
`

func TestLoadString(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	sess, err := hclhost.LoadString(ctx, sampleScene)
	require.NoError(t, err)

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
		assert.Equal(t, "geo", n.Host().Type())

		artist, err := n.Host().Attr("artist")
		require.NoError(t, err)
		assert.Equal(t, cty.StringVal("vlad"), artist)

		p, err := n.Parm(ctx, "scale")
		require.NoError(t, err)
		assert.Equal(t, cty.Number, p.Type())
		f, err := p.Float64(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1.5, f)
	})

	t.Run("untyped parms infer their type from the default", func(t *testing.T) {
		n, err := proxy.New(ctx, sess, "/obj/geo1")
		require.NoError(t, err)
		p, err := n.Parm(ctx, "file")
		require.NoError(t, err)
		assert.Equal(t, cty.String, p.Type())
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

	t.Run("tuples default to number components", func(t *testing.T) {
		n, err := proxy.New(ctx, sess, "/obj/geo1")
		require.NoError(t, err)
		tup, err := n.ParmTuple(ctx, "t")
		require.NoError(t, err)
		assert.Equal(t, 3, tup.Len())
	})
}

func TestLoadStringErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cases := []struct {
		name  string
		scene string
	}{
		{"syntax error", `node "/obj/geo1" "geo" {`},
		{"duplicate node path", `
node "/obj/geo1" "geo" {}
node "/obj/geo1" "geo" {}
`},
		{"default does not fit declared type", `
node "/obj/geo1" "geo" {
  parm "scale" {
    type    = number
    default = "nope"
  }
}
`},
		{"tuple default must be a list", `
node "/obj/geo1" "geo" {
  tuple "t" {
    default = 5
  }
}
`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := hclhost.LoadString(ctx, tc.scene)
			assert.Error(t, err)
		})
	}
}

func TestLoadDirectory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	dir := t.TempDir()
	writeFile := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
	}
	writeFile("vars.hcl", `
variable "HIP" {
  value = "/projects/demo"
}
`)
	writeFile("geo.hcl", `
node "/obj/geo1" "geo" {
  parm "scale" {
    default = 1
  }
}
`)
	writeFile("notes.txt", `not a scene file`)

	sess, err := hclhost.Load(ctx, dir)
	require.NoError(t, err)

	_, ok := sess.Var("HIP")
	assert.True(t, ok)
	_, err = sess.Resolve(ctx, "/obj/geo1")
	assert.NoError(t, err)
}
