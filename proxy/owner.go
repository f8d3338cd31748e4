// This file contains the reflection binding for owner structs. The owner is
// the user's "subclass": a plain Go struct, usually embedding *Node, whose
// exported fields and methods are the declared attributes of the proxy.

package proxy

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

var nodeType = reflect.TypeOf(Node{})

// ownerBinding captures the reflective view of a bound owner struct.
type ownerBinding struct {
	ptr  reflect.Value
	elem reflect.Value
	typ  reflect.Type
}

func bindOwner(owner any) *ownerBinding {
	if owner == nil {
		panic("proxy: BindOwner called with nil owner")
	}
	v := reflect.ValueOf(owner)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("proxy: owner must be a non-nil pointer to a struct, got %T", owner))
	}
	return &ownerBinding{
		ptr:  v,
		elem: v.Elem(),
		typ:  v.Elem().Type(),
	}
}

func (b *ownerBinding) typeName() string {
	return b.typ.String()
}

// field finds a declared field by name: exact match first, then a
// case-insensitive fold so that pythonic names ("artist") reach exported Go
// fields ("Artist"). The embedded proxy Node itself is never a declared
// attribute.
func (b *ownerBinding) field(name string) (reflect.Value, bool) {
	fold := reflect.Value{}
	for i := 0; i < b.typ.NumField(); i++ {
		def := b.typ.Field(i)
		if !def.IsExported() {
			continue
		}
		if def.Anonymous {
			t := def.Type
			if t.Kind() == reflect.Pointer {
				t = t.Elem()
			}
			if t == nodeType {
				continue
			}
		}
		if def.Name == name {
			return b.elem.Field(i), true
		}
		if !fold.IsValid() && strings.EqualFold(def.Name, name) {
			fold = b.elem.Field(i)
		}
	}
	return fold, fold.IsValid()
}

// method finds a declared (or promoted) method by name, bound to the owner
// pointer. Exact match first, then a case-insensitive fold.
func (b *ownerBinding) method(name string) (any, bool) {
	pt := b.ptr.Type()
	if m, ok := pt.MethodByName(name); ok {
		return b.ptr.Method(m.Index).Interface(), true
	}
	for i := 0; i < pt.NumMethod(); i++ {
		if strings.EqualFold(pt.Method(i).Name, name) {
			return b.ptr.Method(i).Interface(), true
		}
	}
	return nil, false
}

// lookup resolves name against the owner's declared members.
func (b *ownerBinding) lookup(name string) (any, bool) {
	if f, ok := b.field(name); ok {
		return f.Interface(), true
	}
	if m, ok := b.method(name); ok {
		return m, true
	}
	return nil, false
}

// assign writes value into the declared field of the given name. The first
// return value reports whether such a field exists; when it does, the write
// either succeeds or the error explains why the value does not fit.
func (b *ownerBinding) assign(name string, value any) (bool, error) {
	f, ok := b.field(name)
	if !ok {
		return false, nil
	}
	if !f.CanSet() {
		return true, fmt.Errorf("declared attribute %q on %s is not settable", name, b.typeName())
	}
	return true, assignValue(f, value)
}

// assignValue converts value into the field's type. cty values decode
// through gocty unless the field itself holds cty.Value; native values go
// through ordinary reflection, with string<->numeric conversions rejected
// because Go's string(int) rune conversion is never what a caller means.
func assignValue(field reflect.Value, value any) error {
	if value == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	if cv, ok := value.(cty.Value); ok && field.Type() != reflect.TypeOf(cty.Value{}) {
		target := reflect.New(field.Type())
		if err := gocty.FromCtyValue(cv, target.Interface()); err != nil {
			return fmt.Errorf("cannot decode %s into field of type %s: %w",
				cv.Type().FriendlyName(), field.Type(), err)
		}
		field.Set(target.Elem())
		return nil
	}

	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(field.Type()) {
		field.Set(v)
		return nil
	}
	if v.Type().ConvertibleTo(field.Type()) {
		vIsString := v.Kind() == reflect.String
		fIsString := field.Kind() == reflect.String
		if vIsString != fIsString {
			return fmt.Errorf("cannot assign %T to field of type %s", value, field.Type())
		}
		field.Set(v.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to field of type %s", value, field.Type())
}
