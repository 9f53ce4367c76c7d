package ssair

import (
	"github.com/cthulhu-go/cthulhu/internal/hlir"
	"github.com/cthulhu-go/cthulhu/internal/ops"
)

// Opcode discriminates the variants of a Step (§3).
type Opcode int

const (
	OpLoad Opcode = iota
	OpStore
	OpUnary
	OpBinary
	OpCompare
	OpCast
	OpCall
	OpAddr
	OpOffset
	OpMember
	OpJump
	OpBranch
	OpReturn
)

func (op Opcode) String() string {
	switch op {
	case OpLoad:
		return "Load"
	case OpStore:
		return "Store"
	case OpUnary:
		return "Unary"
	case OpBinary:
		return "Binary"
	case OpCompare:
		return "Compare"
	case OpCast:
		return "Cast"
	case OpCall:
		return "Call"
	case OpAddr:
		return "Addr"
	case OpOffset:
		return "Offset"
	case OpMember:
		return "Member"
	case OpJump:
		return "Jump"
	case OpBranch:
		return "Branch"
	case OpReturn:
		return "Return"
	default:
		return "Op?"
	}
}

// IsTerminator reports whether this opcode ends a basic block (§3
// invariant 2).
func (op Opcode) IsTerminator() bool {
	switch op {
	case OpJump, OpBranch, OpReturn:
		return true
	default:
		return false
	}
}

// Step is the common interface for every SSA step variant.
type Step interface {
	Opcode() Opcode
	ResultType() hlir.Type
	IsPreserved() bool
	stepNode()
}

// StepBase carries the fields every step shares: its result type (Unit for
// steps that produce no vreg) and whether DCE should keep it regardless of
// use (the "preserve" attribute, §4.4).
type StepBase struct {
	Op       Opcode
	Result   hlir.Type
	Preserve bool
}

func (s StepBase) Opcode() Opcode        { return s.Op }
func (s StepBase) ResultType() hlir.Type { return s.Result }
func (s StepBase) IsPreserved() bool     { return s.Preserve }
func (StepBase) stepNode()               {}

// LoadStep reads the value currently held by Src (a place operand).
type LoadStep struct {
	StepBase
	Src Operand
}

func NewLoad(result hlir.Type, src Operand) *LoadStep {
	return &LoadStep{StepBase{OpLoad, result, false}, src}
}

// StoreStep writes Src into the place denoted by Dst. Produces no vreg.
type StoreStep struct {
	StepBase
	Dst Operand
	Src Operand
}

func NewStore(dst, src Operand) *StoreStep {
	return &StoreStep{StepBase{OpStore, hlir.Unit(), false}, dst, src}
}

// UnaryStep applies a unary operator to X.
type UnaryStep struct {
	StepBase
	UOp ops.UnaryOp
	X   Operand
}

func NewUnary(result hlir.Type, op ops.UnaryOp, x Operand) *UnaryStep {
	return &UnaryStep{StepBase{OpUnary, result, false}, op, x}
}

// BinaryStep applies a binary operator to L and R.
type BinaryStep struct {
	StepBase
	BOp  ops.BinaryOp
	L, R Operand
}

func NewBinary(result hlir.Type, op ops.BinaryOp, l, r Operand) *BinaryStep {
	return &BinaryStep{StepBase{OpBinary, result, false}, op, l, r}
}

// CompareStep applies a comparison operator, producing a bool result.
type CompareStep struct {
	StepBase
	COp  ops.CompareOp
	L, R Operand
}

func NewCompare(op ops.CompareOp, l, r Operand) *CompareStep {
	return &CompareStep{StepBase{OpCompare, hlir.Bool(), false}, op, l, r}
}

// CastStep converts X to Result's type.
type CastStep struct {
	StepBase
	CastOp ops.CastOp
	X      Operand
}

func NewCast(result hlir.Type, op ops.CastOp, x Operand) *CastStep {
	return &CastStep{StepBase{OpCast, result, false}, op, x}
}

// CallStep invokes Func with Args. Result is Unit/Empty when the callee
// returns no usable value (§4.3: "later steps may not reference the
// vreg").
type CallStep struct {
	StepBase
	Func Operand
	Args []Operand
}

func NewCall(result hlir.Type, fn Operand, args []Operand) *CallStep {
	return &CallStep{StepBase{OpCall, result, false}, fn, args}
}

// AddrStep takes the address of X, producing a pointer value.
type AddrStep struct {
	StepBase
	X Operand
}

func NewAddr(result hlir.Type, x Operand) *AddrStep {
	return &AddrStep{StepBase{OpAddr, result, false}, x}
}

// OffsetStep computes the address of Base advanced by Index elements
// (array/pointer indexing lvalue lowering).
type OffsetStep struct {
	StepBase
	Base  Operand
	Index Operand
}

func NewOffset(result hlir.Type, base, index Operand) *OffsetStep {
	return &OffsetStep{StepBase{OpOffset, result, false}, base, index}
}

// MemberStep computes the address of a named field of Base (struct/union
// field-access lvalue lowering).
type MemberStep struct {
	StepBase
	Base  Operand
	Field string
}

func NewMember(result hlir.Type, base Operand, field string) *MemberStep {
	return &MemberStep{StepBase{OpMember, result, false}, base, field}
}

// JumpStep unconditionally transfers control to Target.
type JumpStep struct {
	StepBase
	Target Operand
}

func NewJump(target Operand) *JumpStep {
	return &JumpStep{StepBase{OpJump, hlir.Unit(), false}, target}
}

// BranchStep transfers control to Then if Cond holds, else Other (Other
// may be Empty, meaning fall through to the following block — §3
// invariant 3: Cond must resolve to bool, Then/Other must be Block
// operands when present).
type BranchStep struct {
	StepBase
	Cond  Operand
	Then  Operand
	Other Operand
}

func NewBranch(cond, then, other Operand) *BranchStep {
	return &BranchStep{StepBase{OpBranch, hlir.Unit(), false}, cond, then, other}
}

// ReturnStep ends the current function, yielding Value (Empty for a bare
// return).
type ReturnStep struct {
	StepBase
	Value Operand
}

func NewReturn(value Operand) *ReturnStep {
	return &ReturnStep{StepBase{OpReturn, hlir.Unit(), false}, value}
}
