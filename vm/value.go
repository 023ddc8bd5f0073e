package vm

import (
	"strconv"

	"phase/diagnostics"
	"phase/source"
)

// Kind tags which field of a Value is live.
type Kind int

const (
	KindVoid Kind = iota
	KindInt
	KindFloat
	KindBool
	KindStr
)

// Value is the VM's tagged-union runtime representation of the five
// primitive types. A Str value is a non-owning view into the constant
// pool's string: Go strings already share their backing array on copy, so
// assigning one onto the stack costs no allocation and the pool remains
// the sole owner for as long as the VM runs.
type Value struct {
	Kind  Kind
	Int   int32
	Float float64
	Bool  bool
	Str   string
}

func IntValue(v int32) Value     { return Value{Kind: KindInt, Int: v} }
func FloatValue(v float64) Value { return Value{Kind: KindFloat, Float: v} }
func BoolValue(v bool) Value     { return Value{Kind: KindBool, Bool: v} }
func StrValue(v string) Value    { return Value{Kind: KindStr, Str: v} }

func (v Value) AsBool() (bool, bool) {
	if v.Kind != KindBool {
		return false, false
	}
	return v.Bool, true
}

func (v Value) AsInt() (int32, bool) {
	if v.Kind != KindInt {
		return 0, false
	}
	return v.Int, true
}

// Format renders v the way PRINT writes it to stdout: int in decimal,
// float in its shortest round-tripping form, bool as the literal
// "true"/"false", str verbatim.
func (v Value) Format() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(int64(v.Int), 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindStr:
		return v.Str
	default:
		return ""
	}
}

// Equal implements EQUAL: a runtime type guard, since the emitter already
// guarantees both sides share a type for any program that compiled.
func (v Value) Equal(other Value) (bool, error) {
	if v.Kind != other.Kind {
		return false, diagnostics.RuntimeTypeGuard(source.NoLocation, "EQUAL")
	}
	switch v.Kind {
	case KindInt:
		return v.Int == other.Int, nil
	case KindFloat:
		return v.Float == other.Float, nil
	case KindBool:
		return v.Bool == other.Bool, nil
	case KindStr:
		return v.Str == other.Str, nil
	default:
		return false, diagnostics.RuntimeTypeGuard(source.NoLocation, "EQUAL")
	}
}

// Compare implements LESS/GREATER/LESS_EQUAL/GREATER_EQUAL, returning a
// negative, zero, or positive int the way bytes.Compare does.
func (v Value) Compare(other Value) (int, error) {
	if v.Kind != other.Kind {
		return 0, diagnostics.RuntimeTypeGuard(source.NoLocation, "comparison")
	}
	switch v.Kind {
	case KindInt:
		switch {
		case v.Int < other.Int:
			return -1, nil
		case v.Int > other.Int:
			return 1, nil
		default:
			return 0, nil
		}
	case KindFloat:
		switch {
		case v.Float < other.Float:
			return -1, nil
		case v.Float > other.Float:
			return 1, nil
		default:
			return 0, nil
		}
	default:
		return 0, diagnostics.RuntimeTypeGuard(source.NoLocation, "comparison")
	}
}

// valueFromConstant converts a constant-pool entry - produced by the
// emitter as an untyped any holding int32, float64, bool, or string - into
// its typed Value.
func valueFromConstant(c any) Value {
	switch x := c.(type) {
	case int32:
		return IntValue(x)
	case float64:
		return FloatValue(x)
	case bool:
		return BoolValue(x)
	case string:
		return StrValue(x)
	default:
		return Value{}
	}
}
