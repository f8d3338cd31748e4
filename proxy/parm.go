package proxy

import (
	"context"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/nodefacade/host"
	"github.com/vk/nodefacade/internal/ctxlog"
)

// Parm wraps one host parameter handle. Bare attribute access on a Node
// yields a *Parm, never the scalar; the scalar lives behind Value and the
// typed accessors. Parm instances are built lazily, one per access, and two
// handles for the same parameter are equal in effect but not in identity.
type Parm struct {
	node *Node
	hp   host.Parm
}

func newParm(n *Node, hp host.Parm) *Parm {
	return &Parm{node: n, hp: hp}
}

// Name is the parameter's name on its node.
func (p *Parm) Name() string { return p.hp.Name() }

// Path is the parameter's full host path.
func (p *Parm) Path() string { return p.hp.Path() }

// Type is the parameter's declared value type.
func (p *Parm) Type() cty.Type { return p.hp.Type() }

// Node is the proxy that produced this handle.
func (p *Parm) Node() *Node { return p.node }

// Raw is the escape hatch to the naked host handle.
func (p *Parm) Raw() host.Parm { return p.hp }

// Value evaluates the parameter. This is the one explicit step between a
// handle and its scalar.
func (p *Parm) Value(ctx context.Context) (cty.Value, error) {
	return p.hp.Eval(ctx)
}

// Native evaluates the parameter and converts the result to its natural Go
// representation (float64 for numbers, map[string]any for objects, and so
// on).
func (p *Parm) Native(ctx context.Context) (any, error) {
	v, err := p.hp.Eval(ctx)
	if err != nil {
		return nil, err
	}
	return fromCty(v)
}

// Int evaluates the parameter as an integer.
func (p *Parm) Int(ctx context.Context) (int64, error) {
	var out int64
	err := p.evalAs(ctx, cty.Number, &out)
	return out, err
}

// Float64 evaluates the parameter as a float.
func (p *Parm) Float64(ctx context.Context) (float64, error) {
	var out float64
	err := p.evalAs(ctx, cty.Number, &out)
	return out, err
}

// Bool evaluates the parameter as a boolean.
func (p *Parm) Bool(ctx context.Context) (bool, error) {
	var out bool
	err := p.evalAs(ctx, cty.Bool, &out)
	return out, err
}

// String evaluates the parameter as a string.
func (p *Parm) String(ctx context.Context) (string, error) {
	var out string
	err := p.evalAs(ctx, cty.String, &out)
	return out, err
}

func (p *Parm) evalAs(ctx context.Context, ty cty.Type, out any) error {
	v, err := p.hp.Eval(ctx)
	if err != nil {
		return err
	}
	cv, err := convert.Convert(v, ty)
	if err != nil {
		return fmt.Errorf("parameter %q: %w", p.Path(), err)
	}
	return gocty.FromCtyValue(cv, out)
}

// Set writes a new value, accepting native Go values or cty.Value. The value
// is converted to the parameter's declared type first; this conversion is the
// only coercion the proxy layer performs, and a failure surfaces as the
// host's invalid-value error. Host rejections (locked or expression-driven
// parameters) propagate untouched.
func (p *Parm) Set(ctx context.Context, value any) error {
	logger := ctxlog.FromContext(ctx)

	cv, err := toCty(value)
	if err != nil {
		return &host.InvalidValueError{Path: p.Path(), Reason: err.Error()}
	}
	if ty := p.hp.Type(); ty != cty.DynamicPseudoType && !cv.IsNull() {
		converted, err := convert.Convert(cv, ty)
		if err != nil {
			return &host.InvalidValueError{Path: p.Path(), Reason: err.Error()}
		}
		cv = converted
	}
	logger.Debug("Writing parameter.", "path", p.Path(), "type", p.hp.Type().FriendlyName())
	return p.hp.Set(ctx, cv)
}

// Expression returns the raw expression text driving the parameter, if any.
func (p *Parm) Expression() (string, bool) {
	return p.hp.Expression()
}

// SetExpression replaces the parameter's expression.
func (p *Parm) SetExpression(expr string) error {
	return p.hp.SetExpression(expr)
}

// Get resolves handle-level attribute access by name, for callers that hold
// a Parm the way they hold a Node: dynamically. Names map onto the handle's
// own operations; anything else fails with *UnknownAttributeError.
func (p *Parm) Get(ctx context.Context, name string) (any, error) {
	switch strings.ToLower(name) {
	case "name":
		return p.Name(), nil
	case "path":
		return p.Path(), nil
	case "type":
		return p.Type(), nil
	case "value", "eval":
		return p.Value(ctx)
	case "expression":
		expr, ok := p.hp.Expression()
		if !ok {
			return nil, &UnknownAttributeError{Attr: name, Proxy: p.proxyName()}
		}
		return expr, nil
	case "node":
		return p.node, nil
	default:
		return nil, &UnknownAttributeError{Attr: name, Proxy: p.proxyName()}
	}
}

func (p *Parm) proxyName() string {
	return "proxy.Parm"
}

// GoString renders the handle with its current path for debugging output.
func (p *Parm) GoString() string {
	return fmt.Sprintf("<proxy.Parm %q>", p.Path())
}
