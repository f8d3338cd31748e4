package proxy

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/nodefacade/host"
)

// Tuple wraps a multi-component parameter (a translate vector, an RGB
// triple). Components are ordinary *Parm handles addressed by index.
type Tuple struct {
	node *Node
	ht   host.ParmTuple
}

func newTuple(n *Node, ht host.ParmTuple) *Tuple {
	return &Tuple{node: n, ht: ht}
}

// Name is the tuple's base name on its node.
func (t *Tuple) Name() string { return t.ht.Name() }

// Node is the proxy that produced this handle.
func (t *Tuple) Node() *Node { return t.node }

// Raw is the escape hatch to the naked host handle.
func (t *Tuple) Raw() host.ParmTuple { return t.ht }

// Len is the number of components.
func (t *Tuple) Len() int { return t.ht.Len() }

// At returns the i-th component as a *Parm.
func (t *Tuple) At(i int) *Parm {
	return newParm(t.node, t.ht.Parm(i))
}

// Value evaluates every component, returned as a cty tuple.
func (t *Tuple) Value(ctx context.Context) (cty.Value, error) {
	return t.ht.Eval(ctx)
}

// Native evaluates the tuple and converts it to a []any of Go values.
func (t *Tuple) Native(ctx context.Context) (any, error) {
	v, err := t.ht.Eval(ctx)
	if err != nil {
		return nil, err
	}
	return fromCty(v)
}

// Set writes all components at once.
func (t *Tuple) Set(ctx context.Context, values ...any) error {
	if len(values) != t.ht.Len() {
		return &host.InvalidValueError{
			Path:   t.node.Path() + "/" + t.Name(),
			Reason: fmt.Sprintf("tuple has %d components, got %d values", t.ht.Len(), len(values)),
		}
	}
	converted := make([]cty.Value, len(values))
	for i, v := range values {
		cv, err := toCty(v)
		if err != nil {
			return &host.InvalidValueError{
				Path:   t.node.Path() + "/" + t.Name(),
				Reason: err.Error(),
			}
		}
		converted[i] = cv
	}
	return t.ht.Set(ctx, converted)
}

// SetValue writes the tuple from a single aggregate value: a []any, a
// *Tuple's evaluated cty tuple, or any cty list/tuple value. Scalars are
// broadcast to every component, matching how hosts fill uniform vectors.
func (t *Tuple) SetValue(ctx context.Context, value any) error {
	switch v := value.(type) {
	case []any:
		return t.Set(ctx, v...)
	case cty.Value:
		if v.Type().IsTupleType() || v.Type().IsListType() {
			parts := make([]any, 0, v.LengthInt())
			it := v.ElementIterator()
			for it.Next() {
				_, ev := it.Element()
				parts = append(parts, ev)
			}
			return t.Set(ctx, parts...)
		}
		// scalar broadcast
		parts := make([]any, t.ht.Len())
		for i := range parts {
			parts[i] = v
		}
		return t.Set(ctx, parts...)
	default:
		parts := make([]any, t.ht.Len())
		for i := range parts {
			parts[i] = value
		}
		return t.Set(ctx, parts...)
	}
}

func (t *Tuple) String() string {
	return fmt.Sprintf("<proxy.Tuple %q len=%d>", t.node.Path()+"/"+t.Name(), t.ht.Len())
}
