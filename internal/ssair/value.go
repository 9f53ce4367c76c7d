package ssair

import (
	"math/big"

	"github.com/cthulhu-go/cthulhu/internal/hlir"
)

// ValueKind discriminates the payload variants of a Value.
type ValueKind int

const (
	ValueBool ValueKind = iota
	ValueDigit
	ValueString
	ValueArray
)

func (k ValueKind) String() string {
	switch k {
	case ValueBool:
		return "bool"
	case ValueDigit:
		return "digit"
	case ValueString:
		return "string"
	case ValueArray:
		return "array"
	default:
		return "value?"
	}
}

// Value is a typed, possibly-uninitialized constant: a global's
// initializer, an Imm operand's payload, or ssaopt's folded result for a
// step (§3).
type Value struct {
	Type        hlir.Type
	Initialized bool
	Kind        ValueKind

	Bool   bool     // ValueBool
	Digit  *big.Int // ValueDigit (arbitrary-precision, per §4.4 "implementations may also keep mpz wide")
	String string   // ValueString
	Length int      // ValueString: byte length, tracked independently of Go's len(String) for NUL-containing literals
	Array  []Value  // ValueArray
}

// Uninitialized constructs a Value of type t with no payload, used for a
// tentative (uninitialized) global definition.
func Uninitialized(t hlir.Type) Value {
	return Value{Type: t, Initialized: false}
}

// BoolValue constructs an initialized boolean value.
func BoolValue(b bool) Value {
	return Value{Type: hlir.Bool(), Initialized: true, Kind: ValueBool, Bool: b}
}

// DigitValue constructs an initialized arbitrary-precision integer value
// of the given digit type.
func DigitValue(t hlir.Type, v *big.Int) Value {
	return Value{Type: t, Initialized: true, Kind: ValueDigit, Digit: v}
}

// StringValue constructs an initialized string value, recording its byte
// length explicitly (so a literal containing an embedded NUL still
// round-trips through emission).
func StringValue(s string) Value {
	return Value{Type: hlir.Str(), Initialized: true, Kind: ValueString, String: s, Length: len(s)}
}

// ArrayValue constructs an initialized aggregate value from element
// values, all of which must already be folded/initialized (§4 supplement:
// array/record literal values).
func ArrayValue(t hlir.Type, elems []Value) Value {
	return Value{Type: t, Initialized: true, Kind: ValueArray, Array: elems}
}
