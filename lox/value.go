package lox

import (
	"fmt"
	"math"
	"strconv"
)

type ValueKind int

const (
	KindNil ValueKind = iota
	KindBool
	KindNumber
	KindString
	KindFunction
	KindNative
	KindClass
	KindInstance
)

// Value is a runtime Lox value. The zero Value is nil.
type Value struct {
	kind ValueKind
	data any
}

func NewNil() Value                  { return Value{kind: KindNil} }
func NewBool(b bool) Value           { return Value{kind: KindBool, data: b} }
func NewNumber(f float64) Value      { return Value{kind: KindNumber, data: f} }
func NewString(s string) Value       { return Value{kind: KindString, data: s} }
func NewFunction(fn *Function) Value { return Value{kind: KindFunction, data: fn} }
func NewNative(n *Native) Value      { return Value{kind: KindNative, data: n} }
func NewClass(c *Class) Value        { return Value{kind: KindClass, data: c} }
func NewInstance(i *Instance) Value  { return Value{kind: KindInstance, data: i} }

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsNil() bool { return v.kind == KindNil }

func (v Value) Bool() bool {
	if v.kind == KindBool {
		return v.data.(bool)
	}
	return false
}

func (v Value) Number() float64 {
	if v.kind == KindNumber {
		return v.data.(float64)
	}
	return 0
}

func (v Value) Function() *Function {
	if v.kind != KindFunction {
		return nil
	}
	return v.data.(*Function)
}

func (v Value) Native() *Native {
	if v.kind != KindNative {
		return nil
	}
	return v.data.(*Native)
}

func (v Value) Class() *Class {
	if v.kind != KindClass {
		return nil
	}
	return v.data.(*Class)
}

func (v Value) Instance() *Instance {
	if v.kind != KindInstance {
		return nil
	}
	return v.data.(*Instance)
}

// Callable reports the call capability of functions, natives and classes.
func (v Value) Callable() (Callable, bool) {
	switch v.kind {
	case KindFunction, KindNative, KindClass:
		return v.data.(Callable), true
	default:
		return nil, false
	}
}

func (k ValueKind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindFunction:
		return "function"
	case KindNative:
		return "native"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// String renders v the way print shows it.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.data.(float64))
	case KindString:
		return v.data.(string)
	case KindFunction, KindNative, KindClass:
		return v.data.(Callable).String()
	case KindInstance:
		return v.data.(*Instance).String()
	default:
		return fmt.Sprintf("<%v>", v.kind)
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Truthy treats nil and false as false and everything else as true.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNil:
		return false
	case KindBool:
		return v.Bool()
	default:
		return true
	}
}

// Equal implements ==. Numbers follow IEEE-754, so NaN is not equal to
// itself; heap objects compare by identity.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return v.Bool() == other.Bool()
	case KindNumber:
		return v.data.(float64) == other.data.(float64)
	case KindString:
		return v.data.(string) == other.data.(string)
	default:
		return v.data == other.data
	}
}
