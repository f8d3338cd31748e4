// This file contains the Go side of the `scene` Lua API and the value
// bridging between Lua and cty.

package luahost

import (
	"context"
	"fmt"

	"github.com/Shopify/go-lua"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/nodefacade/host"
	"github.com/vk/nodefacade/hosts/memhost"
)

func (s *Session) luaVar(l *lua.State) int {
	name := lua.CheckString(l, 1)
	value := lua.CheckString(l, 2)
	s.SetVar(name, value)
	return 0
}

func (s *Session) luaBundle(l *lua.State) int {
	name := lua.CheckString(l, 1)
	lua.CheckType(l, 2, lua.TypeTable)

	var paths []string
	for i := 1; ; i++ {
		l.RawGetInt(2, i)
		if l.TypeOf(-1) == lua.TypeNil {
			l.Pop(1)
			break
		}
		p, ok := l.ToString(-1)
		l.Pop(1)
		if !ok {
			lua.Errorf(l, "scene.bundle: entry %d is not a string", i)
		}
		paths = append(paths, p)
	}
	s.SetBundle(name, paths)
	return 0
}

func (s *Session) luaNode(l *lua.State) int {
	path := lua.CheckString(l, 1)
	nodeType := lua.CheckString(l, 2)
	if _, err := s.CreateNode(path, nodeType); err != nil {
		lua.Errorf(l, "scene.node: %s", err.Error())
	}
	return 0
}

func (s *Session) luaAttr(l *lua.State) int {
	node := s.checkNode(l, 1)
	name := lua.CheckString(l, 2)
	value, err := luaToCty(l, 3)
	if err != nil {
		lua.Errorf(l, "scene.attr: %s", err.Error())
	}
	node.SetAttr(name, value)
	return 0
}

func (s *Session) luaParm(l *lua.State) int {
	node := s.checkNode(l, 1)
	name := lua.CheckString(l, 2)
	ty := checkTypeName(l, 3)

	def := cty.NullVal(ty)
	if l.Top() >= 4 {
		raw, err := luaToCty(l, 4)
		if err != nil {
			lua.Errorf(l, "scene.parm: %s", err.Error())
		}
		def = raw
	}
	node.AddParm(name, ty, def)
	return 0
}

func (s *Session) luaTuple(l *lua.State) int {
	node := s.checkNode(l, 1)
	name := lua.CheckString(l, 2)
	ty := checkTypeName(l, 3)
	lua.CheckType(l, 4, lua.TypeTable)

	var defs []cty.Value
	for i := 1; ; i++ {
		l.RawGetInt(4, i)
		if l.TypeOf(-1) == lua.TypeNil {
			l.Pop(1)
			break
		}
		v, err := luaToCty(l, -1)
		l.Pop(1)
		if err != nil {
			lua.Errorf(l, "scene.tuple: component %d: %s", i, err.Error())
		}
		defs = append(defs, v)
	}
	node.AddTuple(name, ty, defs)
	return 0
}

func (s *Session) luaLock(l *lua.State) int {
	node := s.checkNode(l, 1)
	name := lua.CheckString(l, 2)
	hp, err := node.Parm(name)
	if err != nil {
		lua.Errorf(l, "scene.lock: %s", err.Error())
	}
	hp.(*memhost.Parm).Lock()
	return 0
}

func (s *Session) luaExpression(l *lua.State) int {
	node := s.checkNode(l, 1)
	name := lua.CheckString(l, 2)
	expr := lua.CheckString(l, 3)
	hp, err := node.Parm(name)
	if err != nil {
		lua.Errorf(l, "scene.expression: %s", err.Error())
	}
	if err := hp.SetExpression(expr); err != nil {
		lua.Errorf(l, "scene.expression: %s", err.Error())
	}
	return 0
}

func (s *Session) luaMethod(l *lua.State) int {
	node := s.checkNode(l, 1)
	name := lua.CheckString(l, 2)
	lua.CheckType(l, 3, lua.TypeFunction)

	key := node.Path() + "\x00" + name
	l.Global(methodsTable)
	l.PushString(key)
	l.PushValue(3)
	l.SetTable(-3)
	l.Pop(1)

	node.BindMethod(name, s.boundMethod(key, node.Path()))
	return 0
}

// checkNode resolves the node path argument at index, raising a Lua error if
// it does not exist.
func (s *Session) checkNode(l *lua.State, index int) *memhost.Node {
	path := lua.CheckString(l, index)
	node, ok := s.Session.Node(path)
	if !ok {
		lua.Errorf(l, "no node exists at path %q", path)
	}
	return node
}

// boundMethod builds a host.Method that dispatches into the stored Lua
// function. The node's path is always the first argument, playing the role
// of self.
func (s *Session) boundMethod(key, nodePath string) host.Method {
	return func(ctx context.Context, args ...cty.Value) (cty.Value, error) {
		l := s.state
		if l == nil {
			return cty.NilVal, fmt.Errorf("lua session is closed")
		}
		base := l.Top()

		l.Global(methodsTable)
		l.Field(-1, key)
		if l.TypeOf(-1) != lua.TypeFunction {
			l.SetTop(base)
			return cty.NilVal, fmt.Errorf("lua method %q is no longer registered", key)
		}
		l.Remove(-2)

		l.PushString(nodePath)
		for _, arg := range args {
			if err := pushCty(l, arg); err != nil {
				l.SetTop(base)
				return cty.NilVal, err
			}
		}

		if err := l.ProtectedCall(1+len(args), 1, 0); err != nil {
			return cty.NilVal, fmt.Errorf("lua method on %q failed: %w", nodePath, err)
		}
		result, err := luaToCty(l, -1)
		l.Pop(1)
		return result, err
	}
}

func checkTypeName(l *lua.State, index int) cty.Type {
	switch name := lua.CheckString(l, index); name {
	case "string":
		return cty.String
	case "number":
		return cty.Number
	case "bool":
		return cty.Bool
	case "any":
		return cty.DynamicPseudoType
	default:
		lua.Errorf(l, "unknown parameter type %q", name)
		panic("unreachable")
	}
}

// luaToCty converts the Lua value at index into a cty.Value. Sequence
// tables become cty tuples; anything fancier has no place in a parameter
// value.
func luaToCty(l *lua.State, index int) (cty.Value, error) {
	switch l.TypeOf(index) {
	case lua.TypeNil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case lua.TypeBoolean:
		return cty.BoolVal(l.ToBoolean(index)), nil
	case lua.TypeNumber:
		n, _ := l.ToNumber(index)
		return cty.NumberFloatVal(n), nil
	case lua.TypeString:
		str, _ := l.ToString(index)
		return cty.StringVal(str), nil
	case lua.TypeTable:
		abs := l.AbsIndex(index)
		var elems []cty.Value
		for i := 1; ; i++ {
			l.RawGetInt(abs, i)
			if l.TypeOf(-1) == lua.TypeNil {
				l.Pop(1)
				break
			}
			v, err := luaToCty(l, -1)
			l.Pop(1)
			if err != nil {
				return cty.NilVal, err
			}
			elems = append(elems, v)
		}
		if len(elems) == 0 {
			return cty.EmptyTupleVal, nil
		}
		return cty.TupleVal(elems), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported lua value of type %s", lua.TypeNameOf(l, index))
	}
}

// pushCty pushes a cty.Value onto the Lua stack.
func pushCty(l *lua.State, v cty.Value) error {
	if v.IsNull() {
		l.PushNil()
		return nil
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		l.PushString(v.AsString())
	case ty == cty.Number:
		f, _ := v.AsBigFloat().Float64()
		l.PushNumber(f)
	case ty == cty.Bool:
		l.PushBoolean(v.True())
	case ty.IsTupleType() || ty.IsListType():
		l.NewTable()
		i := 0
		it := v.ElementIterator()
		for it.Next() {
			_, ev := it.Element()
			if err := pushCty(l, ev); err != nil {
				return err
			}
			i++
			l.RawSetInt(-2, i)
		}
	default:
		return fmt.Errorf("cannot pass %s value to lua", ty.FriendlyName())
	}
	return nil
}
