// Package types defines the Braid source type system as seen by the
// backend: the small tree of types the checker attaches to every IR node.
package types

import (
	"fmt"
	"strings"
)

// Kind discriminates the type tree.
type Kind uint8

const (
	// KindInt is a 32-bit signed integer.
	KindInt Kind = iota
	// KindFloat is a 64-bit IEEE float.
	KindFloat
	// KindFun is a function type with parameter and return types.
	KindFun
	// KindCode is the type of a quoted expression.
	KindCode
	// KindAny is the checker's top type.
	KindAny
	// KindVoid is the unit/absence type.
	KindVoid
	// KindParameterized is an unresolved type parameter.
	KindParameterized
	// KindInstance is an applied type constructor.
	KindInstance
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindFun:
		return "Fun"
	case KindCode:
		return "Code"
	case KindAny:
		return "Any"
	case KindVoid:
		return "Void"
	case KindParameterized:
		return "Parameterized"
	case KindInstance:
		return "Instance"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Type is one node of the type tree. Types are plain values shared by
// reference; the backend never mutates a Type after construction.
type Type struct {
	Kind   Kind    `msgpack:"kind"`
	Params []*Type `msgpack:"params,omitempty"` // Fun parameters
	Ret    *Type   `msgpack:"ret,omitempty"`    // Fun return
	Inner  *Type   `msgpack:"inner,omitempty"`  // Code payload, Instance argument
	Name   string  `msgpack:"name,omitempty"`   // Parameterized name, Instance constructor
}

func Int() *Type   { return &Type{Kind: KindInt} }
func Float() *Type { return &Type{Kind: KindFloat} }
func Any() *Type   { return &Type{Kind: KindAny} }
func Void() *Type  { return &Type{Kind: KindVoid} }

// Fun builds a function type.
func Fun(params []*Type, ret *Type) *Type {
	return &Type{Kind: KindFun, Params: params, Ret: ret}
}

// Code builds the type of a quote over inner.
func Code(inner *Type) *Type {
	return &Type{Kind: KindCode, Inner: inner}
}

// Parameterized builds a named type parameter.
func Parameterized(name string) *Type {
	return &Type{Kind: KindParameterized, Name: name}
}

// Instance builds an applied constructor cons<arg>.
func Instance(cons string, arg *Type) *Type {
	return &Type{Kind: KindInstance, Name: cons, Inner: arg}
}

// IsNumeric reports whether t participates in arithmetic.
func (t *Type) IsNumeric() bool {
	if t == nil {
		return false
	}
	return t.Kind == KindInt || t.Kind == KindFloat
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindFun:
		parts := make([]string, 0, len(t.Params))
		for _, p := range t.Params {
			parts = append(parts, p.String())
		}
		return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), t.Ret.String())
	case KindCode:
		return fmt.Sprintf("<%s>", t.Inner.String())
	case KindParameterized:
		return t.Name
	case KindInstance:
		return fmt.Sprintf("%s<%s>", t.Name, t.Inner.String())
	default:
		return t.Kind.String()
	}
}

// Equal compares two type trees structurally.
func Equal(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Name != b.Name {
		return false
	}
	if len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if !Equal(a.Params[i], b.Params[i]) {
			return false
		}
	}
	return Equal(a.Ret, b.Ret) && Equal(a.Inner, b.Inner)
}
