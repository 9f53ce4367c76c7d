package hlir

import (
	"fmt"
	"math/big"

	"github.com/cthulhu-go/cthulhu/internal/ops"
)

// Expr is the common interface for every HLIR expression node.
type Expr interface {
	Kind() ExprKind
	Pos() Pos
	Type() Type
	exprNode()
}

// ExprBase carries the fields every expression variant shares: its source
// position and its (already-resolved) type.
type ExprBase struct {
	NodePos Pos
	Typ     Type
}

func (e ExprBase) Pos() Pos   { return e.NodePos }
func (e ExprBase) Type() Type { return e.Typ }

// --- Literal expressions -------------------------------------------------

// DigitLit is a literal arbitrary-precision integer value.
type DigitLit struct {
	ExprBase
	Value *big.Int
}

func (e *DigitLit) exprNode()      {}
func (e *DigitLit) Kind() ExprKind { return ExprDigit }

// DigitLiteral constructs a digit literal expression of type t (which must
// be a DigitType).
func DigitLiteral(pos Pos, t Type, value *big.Int) Expr {
	return &DigitLit{ExprBase{pos, t}, value}
}

// BoolLit is a literal boolean value.
type BoolLit struct {
	ExprBase
	Value bool
}

func (e *BoolLit) exprNode()      {}
func (e *BoolLit) Kind() ExprKind { return ExprBool }

func BoolLiteral(pos Pos, value bool) Expr {
	return &BoolLit{ExprBase{pos, Bool()}, value}
}

// StringLit is a literal string value.
type StringLit struct {
	ExprBase
	Value string
}

func (e *StringLit) exprNode()      {}
func (e *StringLit) Kind() ExprKind { return ExprString }

func StringLiteral(pos Pos, value string) Expr {
	return &StringLit{ExprBase{pos, Str()}, value}
}

// UnitLit is the sole value of the unit type.
type UnitLit struct{ ExprBase }

func (e *UnitLit) exprNode()      {}
func (e *UnitLit) Kind() ExprKind { return ExprUnit }

func UnitLiteral(pos Pos) Expr {
	return &UnitLit{ExprBase{pos, Unit()}}
}

// EmptyLit marks an expression position that produces no value (e.g. the
// operand of a bare `return;`).
type EmptyLit struct{ ExprBase }

func (e *EmptyLit) exprNode()      {}
func (e *EmptyLit) Kind() ExprKind { return ExprEmpty }

func EmptyLiteral(pos Pos) Expr {
	return &EmptyLit{ExprBase{pos, Empty()}}
}

// --- Computed expressions -------------------------------------------------

// Load reads the current value of a declaration (global, local, param, or
// function-as-value).
type Load struct {
	ExprBase
	Decl Decl
}

func (e *Load) exprNode()      {}
func (e *Load) Kind() ExprKind { return ExprLoad }

// NewLoad constructs a Load of decl, inheriting its type.
func NewLoad(pos Pos, decl Decl) Expr {
	return &Load{ExprBase{pos, decl.Type()}, decl}
}

// Unary applies a unary operator to Operand. The result type is inherited
// from the operand's type (§4.1).
type Unary struct {
	ExprBase
	Op      ops.UnaryOp
	Operand Expr
}

func (e *Unary) exprNode()      {}
func (e *Unary) Kind() ExprKind { return ExprUnary }

func NewUnary(pos Pos, op ops.UnaryOp, operand Expr) Expr {
	return &Unary{ExprBase{pos, operand.Type()}, op, operand}
}

// Binary applies a binary operator to Left and Right, producing a value of
// the explicitly supplied result type (§4.1: "binary... require a result
// type").
type Binary struct {
	ExprBase
	Op          ops.BinaryOp
	Left, Right Expr
}

func (e *Binary) exprNode()      {}
func (e *Binary) Kind() ExprKind { return ExprBinary }

func NewBinary(pos Pos, resultType Type, op ops.BinaryOp, left, right Expr) Expr {
	return &Binary{ExprBase{pos, resultType}, op, left, right}
}

// Compare applies a comparison operator, always producing Bool but still
// taking an explicit result type parameter for symmetry with Binary.
type Compare struct {
	ExprBase
	Op          ops.CompareOp
	Left, Right Expr
}

func (e *Compare) exprNode()      {}
func (e *Compare) Kind() ExprKind { return ExprCompare }

func NewCompare(pos Pos, resultType Type, op ops.CompareOp, left, right Expr) Expr {
	return &Compare{ExprBase{pos, resultType}, op, left, right}
}

// Cast converts Operand to a new type.
type Cast struct {
	ExprBase
	Op      ops.CastOp
	Operand Expr
}

func (e *Cast) exprNode()      {}
func (e *Cast) Kind() ExprKind { return ExprCast }

func NewCast(pos Pos, target Type, op ops.CastOp, operand Expr) Expr {
	return &Cast{ExprBase{pos, target}, op, operand}
}

// Call invokes Func (whose type must be Closure) with Args. Its result
// type is inherited from the closure's declared result (§4.1 "call
// inherits the closure result type").
type Call struct {
	ExprBase
	Func Expr
	Args []Expr
}

func (e *Call) exprNode()      {}
func (e *Call) Kind() ExprKind { return ExprCall }

// NewCall constructs a Call expression. When fn.Type() does not resolve to
// a ClosureType, NewCall returns an Error poison node instead of a Call
// (§4.1 "Error HLIR").
func NewCall(pos Pos, fn Expr, args []Expr) Expr {
	closure, ok := FollowType(fn.Type()).(ClosureType)
	if !ok {
		return Error(pos, fmt.Sprintf("call target has non-closure type %s", fn.Type()))
	}
	return &Call{ExprBase{pos, closure.Result}, fn, args}
}

// Member accesses a named field of Record (whose type must be Struct or
// Union).
type Member struct {
	ExprBase
	Record Expr
	Field  string
}

func (e *Member) exprNode()      {}
func (e *Member) Kind() ExprKind { return ExprMember }

// NewMember constructs a Member access, resolving the field's type from
// the record's declared fields.
func NewMember(pos Pos, record Expr, field string) Expr {
	fields, ok := recordFields(record.Type())
	if !ok {
		return Error(pos, fmt.Sprintf("member access on non-record type %s", record.Type()))
	}
	for _, f := range fields {
		if f.Name == field {
			return &Member{ExprBase{pos, f.Type}, record, field}
		}
	}
	return Error(pos, fmt.Sprintf("no field %q on type %s", field, record.Type()))
}

func recordFields(t Type) ([]Field, bool) {
	switch rt := FollowType(t).(type) {
	case StructType:
		return rt.Fields, true
	case UnionType:
		return rt.Fields, true
	default:
		return nil, false
	}
}

// Index accesses an element of Array at position IndexExpr.
type Index struct {
	ExprBase
	Array     Expr
	IndexExpr Expr
}

func (e *Index) exprNode()      {}
func (e *Index) Kind() ExprKind { return ExprIndex }

// NewIndex constructs an Index expression, resolving the element type
// from the array or indexable-pointer type of arr.
func NewIndex(pos Pos, arr, idx Expr) Expr {
	switch t := FollowType(arr.Type()).(type) {
	case ArrayType:
		return &Index{ExprBase{pos, t.Elem}, arr, idx}
	case PointerType:
		if t.Indexable {
			return &Index{ExprBase{pos, t.Target}, arr, idx}
		}
	}
	return Error(pos, fmt.Sprintf("index on non-indexable type %s", arr.Type()))
}

// Addr takes the address of Operand, producing a pointer type.
type Addr struct {
	ExprBase
	Operand Expr
}

func (e *Addr) exprNode()      {}
func (e *Addr) Kind() ExprKind { return ExprAddr }

func NewAddr(pos Pos, operand Expr) Expr {
	return &Addr{ExprBase{pos, Pointer(operand.Type(), false)}, operand}
}
