package hlir

import (
	"fmt"
	"strings"

	"github.com/cthulhu-go/cthulhu/internal/ops"
)

// Type is the common interface implemented by every HLIR type node.
// Mirrors the typedast package's base-embedding pattern: a small common
// struct (TypeBase) plus a per-variant concrete struct, rather than a
// class hierarchy.
type Type interface {
	Kind() TypeKind
	String() string
	typeNode()
}

// TypeBase carries the fields every type variant shares.
type TypeBase struct {
	K TypeKind
}

func (t TypeBase) Kind() TypeKind { return t.K }
func (TypeBase) typeNode()        {}

// EmptyType is the type of the Error poison node and of unreachable code.
type EmptyType struct{ TypeBase }

func (EmptyType) String() string { return "empty" }

// UnitType is the type with exactly one value (C `void`).
type UnitType struct{ TypeBase }

func (UnitType) String() string { return "unit" }

// BoolType is the boolean type.
type BoolType struct{ TypeBase }

func (BoolType) String() string { return "bool" }

// DigitType is a native integer type of a given width and signedness.
type DigitType struct {
	TypeBase
	Width ops.Digit
	Sign  ops.Sign
}

func (t DigitType) String() string {
	return fmt.Sprintf("%s %s", t.Sign, t.Width)
}

// StringType is the built-in immutable string type (C `const char *`).
type StringType struct{ TypeBase }

func (StringType) String() string { return "string" }

// PointerType points at Target. Indexable marks pointers usable with `[]`
// (distinguishing `int *` from an opaque handle pointer for mangling and
// emission purposes).
type PointerType struct {
	TypeBase
	Target    Type
	Indexable bool
}

func (t PointerType) String() string {
	return fmt.Sprintf("*%s", t.Target)
}

// ArrayType is a fixed-length homogeneous array.
type ArrayType struct {
	TypeBase
	Elem   Type
	Length int64
}

func (t ArrayType) String() string {
	return fmt.Sprintf("[%d]%s", t.Length, t.Elem)
}

// ClosureType is a function (pointer) type.
type ClosureType struct {
	TypeBase
	Params   []Type
	Result   Type
	Variadic bool
}

func (t ClosureType) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	variadic := ""
	if t.Variadic {
		if len(parts) > 0 {
			variadic = ", ..."
		} else {
			variadic = "..."
		}
	}
	return fmt.Sprintf("(%s%s) -> %s", strings.Join(parts, ", "), variadic, t.Result)
}

// Field is a named, typed member of a struct or union.
type Field struct {
	Name string
	Type Type
}

// StructType is a named record type with ordered fields. Named struct
// types are compared by declaration identity (§4.1 type equality), so
// Decl points back at the declaring Decl.
type StructType struct {
	TypeBase
	Name   string
	Fields []Field
	Decl   Decl
}

func (t StructType) String() string { return t.Name }

// UnionType is a named variant type with ordered fields, compared by
// declaration identity like StructType.
type UnionType struct {
	TypeBase
	Name   string
	Fields []Field
	Decl   Decl
}

func (t UnionType) String() string { return t.Name }

// QualifyType wraps Inner with a qualifier bitset (const/volatile/atomic/
// mutable). Qualifiers do not participate in type equality (§4.1).
type QualifyType struct {
	TypeBase
	Inner Type
	Tags  ops.Qualifier
}

func (t QualifyType) String() string {
	return fmt.Sprintf("qualify(%s)", t.Inner)
}

// OpaqueType is a named type whose representation is unknown to this
// compilation unit (e.g. a newtype alias target not yet resolved).
type OpaqueType struct {
	TypeBase
	Name string
}

func (t OpaqueType) String() string { return t.Name }

// --- Constructors -----------------------------------------------------

func Empty() Type  { return EmptyType{TypeBase{TypeEmpty}} }
func Unit() Type   { return UnitType{TypeBase{TypeUnit}} }
func Bool() Type   { return BoolType{TypeBase{TypeBool}} }
func Str() Type    { return StringType{TypeBase{TypeString}} }

// Digit constructs a native integer type of the given width and sign.
func Digit(width ops.Digit, sign ops.Sign) Type {
	return DigitType{TypeBase{TypeDigit}, width, sign}
}

// Pointer constructs a pointer-to-Target type.
func Pointer(target Type, indexable bool) Type {
	return PointerType{TypeBase{TypePointer}, target, indexable}
}

// Array constructs a fixed-length array type.
func Array(elem Type, length int64) Type {
	return ArrayType{TypeBase{TypeArray}, elem, length}
}

// Closure constructs a function type.
func Closure(params []Type, result Type, variadic bool) Type {
	return ClosureType{TypeBase{TypeClosure}, params, result, variadic}
}

// Struct constructs a named struct type. decl should be the owning
// Decl once known (may be nil during forward declaration).
func Struct(name string, fields []Field, decl Decl) Type {
	return StructType{TypeBase{TypeStruct}, name, fields, decl}
}

// Union constructs a named union type.
func Union(name string, fields []Field, decl Decl) Type {
	return UnionType{TypeBase{TypeUnion}, name, fields, decl}
}

// Qualify wraps inner with the given qualifier bitset.
func Qualify(inner Type, tags ops.Qualifier) Type {
	return QualifyType{TypeBase{TypeQualify}, inner, tags}
}

// Opaque constructs a named opaque type.
func Opaque(name string) Type {
	return OpaqueType{TypeBase{TypeOpaque}, name}
}

// --- Queries ------------------------------------------------------------

// FollowType strips Qualify wrappers, returning the first non-qualified
// type reached (§4.1 "strip aliases").
func FollowType(t Type) Type {
	for {
		q, ok := t.(QualifyType)
		if !ok {
			return t
		}
		t = q.Inner
	}
}

// RealType returns the underlying representation type (§4.1 "strip aliases
// ignoring newtypes"). It is the same as FollowType: Qualify wrappers are
// stripped, and an Opaque type (which carries only a Name) is returned
// as-is.
func RealType(t Type) Type {
	return FollowType(t)
}

// TypeEqual implements the structural type-equality rule of §4.1.
// Qualifiers never participate.
func TypeEqual(a, b Type) bool {
	a = FollowType(a)
	b = FollowType(b)
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case EmptyType, UnitType, BoolType, StringType:
		return true
	case DigitType:
		bv := b.(DigitType)
		return av.Width == bv.Width && av.Sign == bv.Sign
	case PointerType:
		bv := b.(PointerType)
		return av.Indexable == bv.Indexable && TypeEqual(av.Target, bv.Target)
	case ArrayType:
		bv := b.(ArrayType)
		return av.Length == bv.Length && TypeEqual(av.Elem, bv.Elem)
	case ClosureType:
		bv := b.(ClosureType)
		if av.Variadic != bv.Variadic || len(av.Params) != len(bv.Params) {
			return false
		}
		if !TypeEqual(av.Result, bv.Result) {
			return false
		}
		for i := range av.Params {
			if !TypeEqual(av.Params[i], bv.Params[i]) {
				return false
			}
		}
		return true
	case StructType:
		bv := b.(StructType)
		return sameRecordDecl(av.Decl, bv.Decl, av.Name, bv.Name)
	case UnionType:
		bv := b.(UnionType)
		return sameRecordDecl(av.Decl, bv.Decl, av.Name, bv.Name)
	case OpaqueType:
		bv := b.(OpaqueType)
		return av.Name == bv.Name
	default:
		return false
	}
}

// sameRecordDecl compares struct/union types by the identity of their
// declaring Decl when both are known, falling back to name comparison for
// forward-declared records that have not yet been attached to a Decl.
func sameRecordDecl(a, b Decl, nameA, nameB string) bool {
	if a != nil && b != nil {
		return a == b
	}
	return nameA == nameB
}
