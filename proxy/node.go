package proxy

import (
	"context"
	"errors"
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/nodefacade/host"
	"github.com/vk/nodefacade/internal/ctxlog"
)

// Node wraps one host node and presents it as an extensible Go object. The
// wrapped handle is resolved once at construction and never rebound; build a
// new Node to point somewhere else.
type Node struct {
	session host.Session
	path    string
	hn      host.Node
	opts    settings

	// parms is the snapshot of projected parameter names, taken at
	// construction and refreshed on demand.
	parms map[string]struct{}

	owner *ownerBinding

	// locals holds dynamic attributes assigned through Set for names that
	// are neither declared members nor parameters.
	locals map[string]any
}

// New resolves path through the session and wraps the resulting node.
// It fails with a *ResolutionError when the path does not resolve; the
// returned Node is nil in that case, never partially usable.
func New(ctx context.Context, sess host.Session, path string, opts ...Option) (*Node, error) {
	logger := ctxlog.FromContext(ctx)

	hn, err := sess.Resolve(ctx, path)
	if err != nil {
		return nil, &ResolutionError{Path: path, Err: err}
	}
	logger.Debug("Resolved host node.", "path", path, "type", hn.Type())

	return Wrap(sess, hn, opts...), nil
}

// Wrap builds a Node around an already-resolved host handle. Use this when
// the host hands you a node through some other channel (callbacks, child
// listings) and you still want the proxy behavior.
func Wrap(sess host.Session, hn host.Node, opts ...Option) *Node {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}

	n := &Node{
		session: sess,
		path:    hn.Path(),
		hn:      hn,
		opts:    s,
		locals:  make(map[string]any),
	}
	n.RefreshParms()
	return n
}

// BindOwner registers the user's outer struct. Its exported fields and
// methods become the declared attributes that shadow all host delegation.
// owner must be a non-nil pointer to a struct; anything else is a
// programmer error and panics.
func (n *Node) BindOwner(owner any) *Node {
	n.owner = bindOwner(owner)
	return n
}

// Session returns the host session this proxy was constructed with.
func (n *Node) Session() host.Session { return n.session }

// Path returns the host path the proxy was resolved from.
func (n *Node) Path() string { return n.path }

// Host returns the naked host handle, bypassing all proxy behavior.
func (n *Node) Host() host.Node { return n.hn }

// RefreshParms re-snapshots the node's parameter names. Call it after host
// operations that add or remove spare parameters.
func (n *Node) RefreshParms() {
	names := n.opts.parmNames
	if names == nil {
		names = n.hn.ParmNames()
	}
	n.parms = make(map[string]struct{}, len(names))
	for _, name := range names {
		n.parms[name] = struct{}{}
	}
}

// hasParm reports whether name is in the projected parameter set.
func (n *Node) hasParm(name string) bool {
	_, ok := n.parms[name]
	return ok
}

// proxyName identifies this proxy in error messages: the owner's type when
// one is bound, otherwise the plain proxy type.
func (n *Node) proxyName() string {
	if n.owner != nil {
		return n.owner.typeName()
	}
	return "proxy.Node"
}

// Get resolves a dynamic attribute read. Resolution order: declared owner
// members and previously assigned dynamic attributes, then host attributes
// and bound host methods, then parameters (as *Parm or *Tuple handles).
// Host failures other than "no such attribute" propagate untouched.
func (n *Node) Get(ctx context.Context, name string) (any, error) {
	if n.owner != nil {
		if v, ok := n.owner.lookup(name); ok {
			return v, nil
		}
	}
	if v, ok := n.locals[name]; ok {
		return v, nil
	}

	v, err := n.hn.Attr(name)
	if err == nil {
		return v, nil
	}
	var noAttr *host.NoSuchAttributeError
	if !errors.As(err, &noAttr) {
		// Staleness and other host-side failures are not ours to reinterpret.
		return nil, err
	}

	if m, ok := n.hn.Method(name); ok {
		return m, nil
	}

	if n.opts.parmRead && n.hasParm(name) {
		return n.parmHandle(ctx, name)
	}

	return nil, &UnknownAttributeError{Attr: name, Proxy: n.proxyName()}
}

// Set resolves a dynamic attribute write. A declared owner field is assigned
// locally; an existing parameter name is always routed to the host, never
// shadowed; everything else becomes a dynamic attribute on this proxy.
func (n *Node) Set(ctx context.Context, name string, value any) error {
	if n.owner != nil {
		if done, err := n.owner.assign(name, value); done {
			return err
		}
	}

	if n.opts.parmWrite && n.hasParm(name) {
		return n.setParmValue(ctx, name, value)
	}

	n.locals[name] = value
	return nil
}

// Parm returns the wrapped handle for a single parameter, independent of the
// projection toggles.
func (n *Node) Parm(ctx context.Context, name string) (*Parm, error) {
	hp, err := n.hn.Parm(name)
	if err != nil {
		return nil, err
	}
	return newParm(n, hp), nil
}

// ParmTuple returns the wrapped handle for a multi-component parameter.
func (n *Node) ParmTuple(ctx context.Context, name string) (*Tuple, error) {
	ht, err := n.hn.ParmTuple(name)
	if err != nil {
		return nil, err
	}
	return newTuple(n, ht), nil
}

// Call invokes a host method by name. It fails with *UnknownAttributeError
// when the node exposes no such method.
func (n *Node) Call(ctx context.Context, name string, args ...cty.Value) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	m, ok := n.hn.Method(name)
	if !ok {
		return cty.NilVal, &UnknownAttributeError{Attr: name, Proxy: n.proxyName()}
	}
	logger.Debug("Calling host method.", "path", n.path, "method", name, "argc", len(args))
	return m(ctx, args...)
}

// parmHandle wraps name as a *Parm, falling back to *Tuple for
// multi-component parameters.
func (n *Node) parmHandle(ctx context.Context, name string) (any, error) {
	hp, err := n.hn.Parm(name)
	if err == nil {
		return newParm(n, hp), nil
	}
	var noParm *host.NoSuchParameterError
	if !errors.As(err, &noParm) {
		return nil, err
	}
	ht, terr := n.hn.ParmTuple(name)
	if terr != nil {
		// The snapshot said this name is a parameter; surface the original
		// lookup failure rather than the tuple one.
		return nil, err
	}
	return newTuple(n, ht), nil
}

// setParmValue routes a write to the host, evaluating handle values first so
// that `a.Set(ctx, "scale", otherParm)` copies the source's current value.
func (n *Node) setParmValue(ctx context.Context, name string, value any) error {
	switch v := value.(type) {
	case *Parm:
		ev, err := v.Value(ctx)
		if err != nil {
			return fmt.Errorf("evaluating source parameter %q: %w", v.Name(), err)
		}
		value = ev
	case *Tuple:
		ev, err := v.Value(ctx)
		if err != nil {
			return fmt.Errorf("evaluating source tuple %q: %w", v.Name(), err)
		}
		value = ev
	}

	h, err := n.parmHandle(ctx, name)
	if err != nil {
		return err
	}
	switch p := h.(type) {
	case *Parm:
		return p.Set(ctx, value)
	case *Tuple:
		return p.SetValue(ctx, value)
	default:
		panic(fmt.Sprintf("unexpected parameter handle type %T", h))
	}
}

func (n *Node) String() string {
	return fmt.Sprintf("<%s %q>", n.proxyName(), n.path)
}
