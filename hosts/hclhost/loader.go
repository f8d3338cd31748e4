package hclhost

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/nodefacade/hosts/memhost"
	"github.com/vk/nodefacade/internal/ctxlog"
	"github.com/vk/nodefacade/internal/fsutil"
)

// fileRoot is the top-level shape every scene file decodes into.
type fileRoot struct {
	Variables []*variableBlock `hcl:"variable,block"`
	Bundles   []*bundleBlock   `hcl:"bundle,block"`
	Nodes     []*nodeBlock     `hcl:"node,block"`
	Remain    hcl.Body         `hcl:",remain"`
}

type variableBlock struct {
	Name  string `hcl:"name,label"`
	Value string `hcl:"value"`
}

type bundleBlock struct {
	Name  string   `hcl:"name,label"`
	Paths []string `hcl:"paths"`
}

type nodeBlock struct {
	Path   string        `hcl:"path,label"`
	Type   string        `hcl:"type,label"`
	Attrs  []*attrBlock  `hcl:"attr,block"`
	Parms  []*parmBlock  `hcl:"parm,block"`
	Tuples []*tupleBlock `hcl:"tuple,block"`
}

type attrBlock struct {
	Name  string         `hcl:"name,label"`
	Value hcl.Expression `hcl:"value"`
}

type parmBlock struct {
	Name       string         `hcl:"name,label"`
	Type       hcl.Expression `hcl:"type,optional"`
	Default    hcl.Expression `hcl:"default,optional"`
	Locked     bool           `hcl:"locked,optional"`
	Expression string         `hcl:"expression,optional"`
}

type tupleBlock struct {
	Name    string         `hcl:"name,label"`
	Type    hcl.Expression `hcl:"type,optional"`
	Default hcl.Expression `hcl:"default"`
}

// Load parses every .hcl file reachable from the given paths (files or
// directories) and builds the described scene in a fresh memhost session.
func Load(ctx context.Context, paths ...string) (*memhost.Session, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := findSceneFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered scene files.", "count", len(files))

	parser := hclparse.NewParser()
	sess := memhost.New()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse scene file %s: %w", file, diags)
		}
		if err := loadFile(ctx, sess, hclFile.Body, file); err != nil {
			return nil, err
		}
	}

	return sess, nil
}

// LoadString builds a scene from a single in-memory HCL document. Tests and
// embedded scenes use this.
func LoadString(ctx context.Context, src string) (*memhost.Session, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL([]byte(src), "scene.hcl")
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse scene: %w", diags)
	}
	sess := memhost.New()
	if err := loadFile(ctx, sess, hclFile.Body, "scene.hcl"); err != nil {
		return nil, err
	}
	return sess, nil
}

func loadFile(ctx context.Context, sess *memhost.Session, body hcl.Body, filename string) error {
	logger := ctxlog.FromContext(ctx)

	var root fileRoot
	diags := gohcl.DecodeBody(body, nil, &root)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode scene file %s: %w", filename, diags)
	}

	for _, v := range root.Variables {
		sess.SetVar(v.Name, v.Value)
	}
	for _, b := range root.Bundles {
		sess.SetBundle(b.Name, b.Paths)
	}

	for _, nb := range root.Nodes {
		node, err := sess.CreateNode(nb.Path, nb.Type)
		if err != nil {
			return fmt.Errorf("in scene file %s: %w", filename, err)
		}
		logger.Debug("Building node from scene.", "path", nb.Path, "type", nb.Type)

		for _, ab := range nb.Attrs {
			val, diags := ab.Value.Value(nil)
			if diags.HasErrors() {
				return fmt.Errorf("invalid value for attr %q on node %q: %w", ab.Name, nb.Path, diags)
			}
			node.SetAttr(ab.Name, val)
		}
		for _, pb := range nb.Parms {
			if err := buildParm(ctx, node, pb); err != nil {
				return fmt.Errorf("on node %q: %w", nb.Path, err)
			}
		}
		for _, tb := range nb.Tuples {
			if err := buildTuple(ctx, node, tb); err != nil {
				return fmt.Errorf("on node %q: %w", nb.Path, err)
			}
		}
	}
	return nil
}

func buildParm(ctx context.Context, node *memhost.Node, pb *parmBlock) error {
	ty, err := typeExprToCtyType(ctx, pb.Type)
	if err != nil {
		return fmt.Errorf("parm %q: %w", pb.Name, err)
	}

	def := cty.NullVal(ty)
	if exprDefined(pb.Default) {
		raw, diags := pb.Default.Value(nil)
		if diags.HasErrors() {
			return fmt.Errorf("invalid default for parm %q: %w", pb.Name, diags)
		}
		if ty == cty.DynamicPseudoType {
			// No declared type: the default's own type becomes the
			// parameter's type, like hosts infer from templates.
			ty = raw.Type()
			def = raw
		} else {
			def, err = convert.Convert(raw, ty)
			if err != nil {
				return fmt.Errorf("default for parm %q does not fit type: %w", pb.Name, err)
			}
		}
	}

	parm := node.AddParm(pb.Name, ty, def)
	if pb.Expression != "" {
		if err := parm.SetExpression(pb.Expression); err != nil {
			return fmt.Errorf("parm %q: %w", pb.Name, err)
		}
	}
	if pb.Locked {
		parm.Lock()
	}
	return nil
}

func buildTuple(ctx context.Context, node *memhost.Node, tb *tupleBlock) error {
	ty, err := typeExprToCtyType(ctx, tb.Type)
	if err != nil {
		return fmt.Errorf("tuple %q: %w", tb.Name, err)
	}
	if ty == cty.DynamicPseudoType {
		ty = cty.Number
	}

	raw, diags := tb.Default.Value(nil)
	if diags.HasErrors() {
		return fmt.Errorf("invalid default for tuple %q: %w", tb.Name, diags)
	}
	if !raw.Type().IsTupleType() && !raw.Type().IsListType() {
		return fmt.Errorf("default for tuple %q must be a list", tb.Name)
	}

	var defs []cty.Value
	it := raw.ElementIterator()
	for it.Next() {
		_, ev := it.Element()
		cv, err := convert.Convert(ev, ty)
		if err != nil {
			return fmt.Errorf("default component for tuple %q does not fit type: %w", tb.Name, err)
		}
		defs = append(defs, cv)
	}

	node.AddTuple(tb.Name, ty, defs)
	return nil
}

// exprDefined reports whether an optional HCL attribute was physically
// present in the source. The decoder populates omitted optional fields with
// zero-width placeholder expressions, so a nil check is not enough.
func exprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	return r.End.Byte > r.Start.Byte
}

// findSceneFiles walks the given paths and returns every .hcl file found,
// deduplicated, in walk order.
func findSceneFiles(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})

	add := func(p string) {
		if _, ok := seen[p]; !ok {
			files = append(files, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing scene path %s: %w", path, err)
		}
		if !info.IsDir() {
			if filepath.Ext(path) == ".hcl" {
				add(path)
			}
			continue
		}
		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			add(p)
		}
	}
	return files, nil
}
