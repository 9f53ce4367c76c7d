package hlir

import (
	"testing"

	"github.com/cthulhu-go/cthulhu/internal/ops"
)

func TestTypeEqualDigit(t *testing.T) {
	a := Digit(ops.DigitInt, ops.Signed)
	b := Digit(ops.DigitInt, ops.Signed)
	c := Digit(ops.DigitInt, ops.Unsigned)

	if !TypeEqual(a, b) {
		t.Fatal("expected identical digit types to be equal")
	}
	if TypeEqual(a, c) {
		t.Fatal("expected differing sign to make digit types unequal")
	}
}

func TestTypeEqualIgnoresQualifiers(t *testing.T) {
	base := Digit(ops.DigitInt, ops.Signed)
	qualified := Qualify(base, ops.QualConst)

	if !TypeEqual(base, qualified) {
		t.Fatal("expected qualifiers to not participate in type equality")
	}
}

func TestTypeEqualClosure(t *testing.T) {
	intT := Digit(ops.DigitInt, ops.Signed)
	a := Closure([]Type{intT, intT}, Bool(), false)
	b := Closure([]Type{intT, intT}, Bool(), false)
	c := Closure([]Type{intT}, Bool(), false)
	d := Closure([]Type{intT, intT}, Bool(), true)

	if !TypeEqual(a, b) {
		t.Fatal("expected matching closures to be equal")
	}
	if TypeEqual(a, c) {
		t.Fatal("expected differing arity to make closures unequal")
	}
	if TypeEqual(a, d) {
		t.Fatal("expected differing variadic flag to make closures unequal")
	}
}

func TestTypeEqualStructByDeclIdentity(t *testing.T) {
	d1 := OpenStruct(NoPos, "Point", nil)
	BuildStruct(d1, []Field{{Name: "x", Type: Digit(ops.DigitInt, ops.Signed)}})
	d2 := OpenStruct(NoPos, "Point", nil)
	BuildStruct(d2, []Field{{Name: "x", Type: Digit(ops.DigitInt, ops.Signed)}})

	if TypeEqual(d1.Typ, d2.Typ) {
		t.Fatal("expected distinct struct declarations of the same name to be unequal")
	}
	if !TypeEqual(d1.Typ, d1.Typ) {
		t.Fatal("expected a struct type to equal itself")
	}
}

func TestFollowTypeStripsQualifiers(t *testing.T) {
	base := Bool()
	wrapped := Qualify(Qualify(base, ops.QualConst), ops.QualVolatile)
	if FollowType(wrapped) != base {
		t.Fatalf("FollowType did not strip nested qualifiers: got %v", FollowType(wrapped))
	}
}
