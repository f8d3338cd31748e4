package memhost

import (
	"context"
	"strconv"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/nodefacade/host"
)

// Parm is one in-memory parameter. It implements host.Parm.
type Parm struct {
	node  *Node
	name  string
	ty    cty.Type
	value cty.Value

	locked  bool
	expr    string
	hasExpr bool
}

// Name implements host.Parm.
func (p *Parm) Name() string { return p.name }

// Path implements host.Parm.
func (p *Parm) Path() string { return p.node.path + "/" + p.name }

// Type implements host.Parm.
func (p *Parm) Type() cty.Type { return p.ty }

// Eval implements host.Parm. An expression-driven parameter evaluates its
// expression against the session's variables; everything else returns the
// stored value.
func (p *Parm) Eval(ctx context.Context) (cty.Value, error) {
	if err := p.node.stale(); err != nil {
		return cty.NilVal, err
	}
	if p.hasExpr {
		return p.evalExpression()
	}
	return p.value, nil
}

// Set implements host.Parm. Locked and expression-driven parameters are
// read-only; values that do not conform to the declared type are rejected.
func (p *Parm) Set(ctx context.Context, value cty.Value) error {
	if err := p.node.stale(); err != nil {
		return err
	}
	if p.locked || p.hasExpr {
		return &host.ReadOnlyError{Path: p.Path()}
	}
	converted, err := convert.Convert(value, p.ty)
	if err != nil {
		return &host.InvalidValueError{Path: p.Path(), Reason: err.Error()}
	}
	p.value = converted
	return nil
}

// Expression implements host.Parm.
func (p *Parm) Expression() (string, bool) {
	return p.expr, p.hasExpr
}

// SetExpression implements host.Parm.
func (p *Parm) SetExpression(expr string) error {
	if err := p.node.stale(); err != nil {
		return err
	}
	if p.locked {
		return &host.ReadOnlyError{Path: p.Path()}
	}
	p.expr = expr
	p.hasExpr = expr != ""
	return nil
}

// Lock marks the parameter read-only, the way artists lock channels.
func (p *Parm) Lock() { p.locked = true }

// Unlock clears the read-only flag.
func (p *Parm) Unlock() { p.locked = false }

// evalExpression is the fake host's stand-in for an expression engine: a
// `$VAR` reference resolves through session variables and converts to the
// declared type. Anything it cannot make sense of evaluates to the raw
// expression text.
func (p *Parm) evalExpression() (cty.Value, error) {
	text := p.expr
	if len(text) > 1 && text[0] == '$' {
		if v, ok := p.node.sess.Var(text[1:]); ok {
			text = v
		}
	}
	converted, err := convert.Convert(cty.StringVal(text), p.ty)
	if err != nil {
		return cty.NilVal, &host.InvalidValueError{Path: p.Path(), Reason: err.Error()}
	}
	return converted, nil
}

// Tuple is one in-memory multi-component parameter. It implements
// host.ParmTuple over its component Parms.
type Tuple struct {
	node  *Node
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
	if err := t.node.stale(); err != nil {
		return cty.NilVal, err
	}
	values := make([]cty.Value, len(t.comps))
	for i, comp := range t.comps {
		v, err := comp.Eval(ctx)
		if err != nil {
			return cty.NilVal, err
		}
		values[i] = v
	}
	return cty.TupleVal(values), nil
}

// Set implements host.ParmTuple.
func (t *Tuple) Set(ctx context.Context, values []cty.Value) error {
	if err := t.node.stale(); err != nil {
		return err
	}
	if len(values) != len(t.comps) {
		return &host.InvalidValueError{
			Path:   t.node.path + "/" + t.name,
			Reason: "component count mismatch",
		}
	}
	// Validate every component before writing any, so a rejected write
	// leaves the tuple untouched.
	converted := make([]cty.Value, len(values))
	for i, v := range values {
		if t.comps[i].locked || t.comps[i].hasExpr {
			return &host.ReadOnlyError{Path: t.comps[i].Path()}
		}
		cv, err := convert.Convert(v, t.comps[i].ty)
		if err != nil {
			return &host.InvalidValueError{Path: t.comps[i].Path(), Reason: err.Error()}
		}
		converted[i] = cv
	}
	for i, comp := range t.comps {
		comp.value = converted[i]
	}
	return nil
}

// componentName follows the host convention of numeric component suffixes:
// t -> t1, t2, t3.
func componentName(base string, i int) string {
	return base + strconv.Itoa(i+1)
}
