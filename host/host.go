package host

import (
	"context"

	"github.com/zclconf/go-cty/cty"
)

// Method is a callable bound to the host node it was resolved from. Calling
// it operates on the underlying host object, never on the proxy that handed
// it out.
type Method func(ctx context.Context, args ...cty.Value) (cty.Value, error)

// Session is the injected factory handle for one host scripting session.
// The proxy layer never reaches for an ambient global; every proxy carries
// the Session it was constructed with.
type Session interface {
	// Resolve returns the node at the given path, or a *NotFoundError if no
	// such node exists at call time.
	Resolve(ctx context.Context, path string) (Node, error)

	// Var looks up a session-level global variable (the `$JOB`, `$HIP` kind).
	// The second return value reports whether the variable is defined.
	Var(name string) (string, bool)
}

// Node is one handle into the host's graph. Handles do not own the node's
// lifecycle: the host may delete the underlying object at any time, after
// which every method returns a *ObjectDeletedError (or whatever the host
// binding raises for an invalid handle).
type Node interface {
	// Path is the absolute path this handle was resolved from.
	Path() string

	// Name is the node's leaf name.
	Name() string

	// Type is the host-side type name of the node (e.g. "geo", "ifd").
	Type() string

	// Attr reads a plain attribute on the node. Fails with a
	// *NoSuchAttributeError when the node has no attribute of that name.
	Attr(name string) (cty.Value, error)

	// Method returns the bound callable of the given name, if the node
	// exposes one.
	Method(name string) (Method, bool)

	// Parm looks up a named parameter handle. Fails with a
	// *NoSuchParameterError when the node has no such parameter.
	Parm(name string) (Parm, error)

	// ParmTuple looks up a multi-component parameter (e.g. a translate
	// vector). Fails with a *NoSuchParameterError.
	ParmTuple(name string) (ParmTuple, error)

	// ParmNames lists the names of every parameter and parameter tuple on
	// the node. Used by the proxy layer to decide whether an attribute name
	// projects onto a parameter.
	ParmNames() []string
}

// Parm is a handle to one named, typed, host-managed value.
type Parm interface {
	// Name is the parameter's name on its node.
	Name() string

	// Path is the full path of the parameter ("<node path>/<name>").
	Path() string

	// Type is the parameter's declared value type.
	Type() cty.Type

	// Eval returns the parameter's current evaluated value.
	Eval(ctx context.Context) (cty.Value, error)

	// Set writes a new value. The value must already conform to Type; hosts
	// reject mismatches with a *InvalidValueError and locked or
	// expression-driven parameters with a *ReadOnlyError.
	Set(ctx context.Context, value cty.Value) error

	// Expression returns the raw, unexpanded expression text driving the
	// parameter, if any.
	Expression() (string, bool)

	// SetExpression replaces the parameter's expression. Fails with a
	// *ReadOnlyError on locked parameters.
	SetExpression(expr string) error
}

// ParmTuple is a handle to a multi-component parameter. Components are
// ordinary Parm handles addressed by index.
type ParmTuple interface {
	// Name is the tuple's base name on its node.
	Name() string

	// Len is the number of components.
	Len() int

	// Parm returns the i-th component handle. Panics if i is out of range,
	// matching slice indexing.
	Parm(i int) Parm

	// Eval evaluates every component and returns them as a cty tuple value.
	Eval(ctx context.Context) (cty.Value, error)

	// Set writes all components at once. len(values) must equal Len.
	Set(ctx context.Context, values []cty.Value) error
}

// BundleResolver is an optional Session capability for hosts that support
// named node bundles ("@cache_nodes" style references). Sessions that do not
// implement it simply cannot expand bundle references.
type BundleResolver interface {
	// Bundle returns the node paths collected in the named bundle.
	Bundle(name string) ([]string, error)
}
