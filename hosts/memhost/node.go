package memhost

import (
	"sort"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/nodefacade/host"
	"github.com/vk/nodefacade/internal/nodepath"
)

// Node is one in-memory host node. It implements host.Node and additionally
// exposes scene-construction methods (SetAttr, BindMethod, AddParm) used by
// the HCL and Lua loaders and by tests.
type Node struct {
	sess     *Session
	path     string
	nodeType string
	deleted  bool

	attrs   map[string]cty.Value
	methods map[string]host.Method
	parms   map[string]*Parm
	tuples  map[string]*Tuple
}

// Path implements host.Node.
func (n *Node) Path() string { return n.path }

// Name implements host.Node.
func (n *Node) Name() string { return nodepath.Base(n.path) }

// Type implements host.Node.
func (n *Node) Type() string { return n.nodeType }

// stale is the single staleness check every handle operation goes through.
func (n *Node) stale() error {
	if n.deleted {
		return &host.ObjectDeletedError{Path: n.path}
	}
	return nil
}

// Attr implements host.Node.
func (n *Node) Attr(name string) (cty.Value, error) {
	if err := n.stale(); err != nil {
		return cty.NilVal, err
	}
	v, ok := n.attrs[name]
	if !ok {
		return cty.NilVal, &host.NoSuchAttributeError{Path: n.path, Attr: name}
	}
	return v, nil
}

// Method implements host.Node. A handle from a deleted node reports no
// methods; the deletion error surfaces when the Attr lookup preceding a
// method lookup runs, mirroring how real bindings behave.
func (n *Node) Method(name string) (host.Method, bool) {
	if n.deleted {
		return nil, false
	}
	m, ok := n.methods[name]
	return m, ok
}

// Parm implements host.Node.
func (n *Node) Parm(name string) (host.Parm, error) {
	if err := n.stale(); err != nil {
		return nil, err
	}
	p, ok := n.parms[name]
	if !ok {
		return nil, &host.NoSuchParameterError{Path: n.path, Parm: name}
	}
	return p, nil
}

// ParmTuple implements host.Node.
func (n *Node) ParmTuple(name string) (host.ParmTuple, error) {
	if err := n.stale(); err != nil {
		return nil, err
	}
	t, ok := n.tuples[name]
	if !ok {
		return nil, &host.NoSuchParameterError{Path: n.path, Parm: name}
	}
	return t, nil
}

// ParmNames implements host.Node: the union of single parameter names and
// tuple base names, sorted for determinism.
func (n *Node) ParmNames() []string {
	if n.deleted {
		return nil
	}
	names := make([]string, 0, len(n.parms)+len(n.tuples))
	for name := range n.parms {
		names = append(names, name)
	}
	for name := range n.tuples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetAttr defines a plain attribute on the node.
func (n *Node) SetAttr(name string, value cty.Value) {
	n.attrs[name] = value
}

// BindMethod attaches a callable to the node.
func (n *Node) BindMethod(name string, m host.Method) {
	n.methods[name] = m
}

// AddParm defines a single parameter with a declared type and default value.
func (n *Node) AddParm(name string, ty cty.Type, def cty.Value) *Parm {
	p := &Parm{
		node:  n,
		name:  name,
		ty:    ty,
		value: def,
	}
	n.parms[name] = p
	return p
}

// AddTuple defines a multi-component parameter. Components are registered
// both under the tuple and as individually addressable parameters named
// name1..nameN, the way hosts expose vector components.
func (n *Node) AddTuple(name string, ty cty.Type, defs []cty.Value) *Tuple {
	t := &Tuple{node: n, name: name}
	for i, def := range defs {
		comp := n.AddParm(componentName(name, i), ty, def)
		t.comps = append(t.comps, comp)
	}
	n.tuples[name] = t
	return t
}
