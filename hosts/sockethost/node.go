// This file contains the remote handle types: Node, Parm, and Tuple views
// over the bridge protocol.

package sockethost

import (
	"context"
	"slices"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/nodefacade/host"
)

// Resolve implements host.Session.
func (s *Session) Resolve(ctx context.Context, path string) (host.Node, error) {
	resp, err := s.call(ctx, &request{Op: "resolve", Path: path})
	if err != nil {
		return nil, err
	}
	if resp.Node == nil {
		return nil, &host.NotFoundError{Path: path}
	}
	return &Node{sess: s, meta: resp.Node}, nil
}

// Var implements host.Session.
func (s *Session) Var(name string) (string, bool) {
	resp, err := s.call(s.bg(), &request{Op: "var", Name: name})
	if err != nil || !resp.OK {
		return "", false
	}
	return resp.Text, true
}

// Bundle implements the optional host.BundleResolver capability.
func (s *Session) Bundle(name string) ([]string, error) {
	resp, err := s.call(s.bg(), &request{Op: "bundle", Name: name})
	if err != nil {
		return nil, err
	}
	return resp.Names, nil
}

// Node is a remote host node handle. Identity metadata and the method list
// are captured at resolve time; everything value-shaped goes to the wire.
type Node struct {
	sess *Session
	meta *wireNode
}

// Path implements host.Node.
func (n *Node) Path() string { return n.meta.Path }

// Name implements host.Node.
func (n *Node) Name() string { return n.meta.Name }

// Type implements host.Node.
func (n *Node) Type() string { return n.meta.Type }

// Attr implements host.Node.
func (n *Node) Attr(name string) (cty.Value, error) {
	resp, err := n.sess.call(n.sess.bg(), &request{Op: "attr", Path: n.meta.Path, Name: name})
	if err != nil {
		return cty.NilVal, err
	}
	return decodeValue(resp.Value)
}

// Method implements host.Node, against the method list captured at resolve
// time. The returned callable round-trips through the bridge.
func (n *Node) Method(name string) (host.Method, bool) {
	if !slices.Contains(n.meta.Methods, name) {
		return nil, false
	}
	return func(ctx context.Context, args ...cty.Value) (cty.Value, error) {
		encoded, err := encodeArgs(args)
		if err != nil {
			return cty.NilVal, err
		}
		resp, err := n.sess.call(ctx, &request{Op: "call", Path: n.meta.Path, Name: name, Args: encoded})
		if err != nil {
			return cty.NilVal, err
		}
		return decodeValue(resp.Value)
	}, true
}

// Parm implements host.Node.
func (n *Node) Parm(name string) (host.Parm, error) {
	resp, err := n.sess.call(n.sess.bg(), &request{Op: "parm", Path: n.meta.Path, Name: name})
	if err != nil {
		return nil, err
	}
	return newRemoteParm(n.sess, resp.Parm)
}

// ParmTuple implements host.Node.
func (n *Node) ParmTuple(name string) (host.ParmTuple, error) {
	resp, err := n.sess.call(n.sess.bg(), &request{Op: "parm_tuple", Path: n.meta.Path, Name: name})
	if err != nil {
		return nil, err
	}
	t := &Tuple{sess: n.sess, name: name}
	for _, comp := range resp.Parm.Comps {
		p, err := newRemoteParm(n.sess, comp)
		if err != nil {
			return nil, err
		}
		t.comps = append(t.comps, p)
	}
	return t, nil
}

// ParmNames implements host.Node. It re-queries the bridge so spare
// parameters added host-side show up; the resolve-time snapshot is the
// fallback when the bridge is unreachable.
func (n *Node) ParmNames() []string {
	resp, err := n.sess.call(n.sess.bg(), &request{Op: "parm_names", Path: n.meta.Path})
	if err != nil {
		return n.meta.Parms
	}
	return resp.Names
}

// Parm is a remote parameter handle.
type Parm struct {
	sess *Session
	meta *wireParm
	ty   cty.Type
}

func newRemoteParm(s *Session, meta *wireParm) (*Parm, error) {
	if meta == nil {
		return nil, &host.NoSuchParameterError{}
	}
	ty, err := decodeType(meta.Type)
	if err != nil {
		return nil, err
	}
	return &Parm{sess: s, meta: meta, ty: ty}, nil
}

// Name implements host.Parm.
func (p *Parm) Name() string { return p.meta.Name }

// Path implements host.Parm.
func (p *Parm) Path() string { return p.meta.Path }

// Type implements host.Parm.
func (p *Parm) Type() cty.Type { return p.ty }

// Eval implements host.Parm.
func (p *Parm) Eval(ctx context.Context) (cty.Value, error) {
	resp, err := p.sess.call(ctx, &request{Op: "eval", Path: p.meta.Path})
	if err != nil {
		return cty.NilVal, err
	}
	return decodeValue(resp.Value)
}

// Set implements host.Parm.
func (p *Parm) Set(ctx context.Context, value cty.Value) error {
	encoded, err := encodeValue(value)
	if err != nil {
		return &host.InvalidValueError{Path: p.meta.Path, Reason: err.Error()}
	}
	_, err = p.sess.call(ctx, &request{Op: "set", Path: p.meta.Path, Args: []*wireValue{encoded}})
	return err
}

// Expression implements host.Parm.
func (p *Parm) Expression() (string, bool) {
	resp, err := p.sess.call(p.sess.bg(), &request{Op: "expression", Path: p.meta.Path})
	if err != nil || !resp.OK {
		return "", false
	}
	return resp.Text, true
}

// SetExpression implements host.Parm.
func (p *Parm) SetExpression(expr string) error {
	_, err := p.sess.call(p.sess.bg(), &request{Op: "set_expression", Path: p.meta.Path, Name: expr})
	return err
}

// Tuple is a remote multi-component parameter handle. Component operations
// go through the individual remote parms, so one tuple write is N wire
// writes; the shim is free to batch differently behind the same events.
type Tuple struct {
	sess  *Session
	name  string
	comps []*Parm
}

// Name implements host.ParmTuple.
func (t *Tuple) Name() string { return t.name }

// Len implements host.ParmTuple.
func (t *Tuple) Len() int { return len(t.comps) }

// Parm implements host.ParmTuple.
func (t *Tuple) Parm(i int) host.Parm { return t.comps[i] }

// Eval implements host.ParmTuple.
func (t *Tuple) Eval(ctx context.Context) (cty.Value, error) {
	values := make([]cty.Value, len(t.comps))
	for i, comp := range t.comps {
		v, err := comp.Eval(ctx)
		if err != nil {
			return cty.NilVal, err
		}
		values[i] = v
	}
	if len(values) == 0 {
		return cty.EmptyTupleVal, nil
	}
	return cty.TupleVal(values), nil
}

// Set implements host.ParmTuple.
func (t *Tuple) Set(ctx context.Context, values []cty.Value) error {
	if len(values) != len(t.comps) {
		return &host.InvalidValueError{Path: t.name, Reason: "component count mismatch"}
	}
	for i, comp := range t.comps {
		if err := comp.Set(ctx, values[i]); err != nil {
			return err
		}
	}
	return nil
}
