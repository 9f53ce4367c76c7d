package ssabuild

import (
	"fmt"

	"github.com/cthulhu-go/cthulhu/internal/diagnostics"
	"github.com/cthulhu-go/cthulhu/internal/hlir"
	"github.com/cthulhu-go/cthulhu/internal/ssair"
)

// funcCtx threads the state needed to lower one function body: which
// symbol/dependency-ref it is building, the block under construction, and
// the local-index table (parameters carry their own Index already).
type funcCtx struct {
	b        *Builder
	ref      ssair.SymbolRef
	sym      *ssair.Symbol
	localIdx map[*hlir.Local]int
	blockSeq int
	cur      *ssair.Block
}

func (fc *funcCtx) newBlock(hint string) *ssair.Block {
	id := fmt.Sprintf("bb%d", fc.blockSeq)
	fc.blockSeq++
	b := ssair.NewBlock(id, hint)
	fc.sym.Blocks = append(fc.sym.Blocks, b)
	return b
}

func (fc *funcCtx) reg(idx int) ssair.Operand {
	return ssair.Reg(fc.cur.ID, idx)
}

// append appends step to the current block and returns a Reg operand
// referring to it.
func (fc *funcCtx) append(step ssair.Step) ssair.Operand {
	fc.cur.Append(step)
	return fc.reg(len(fc.cur.Steps) - 1)
}

func (fc *funcCtx) recordDep(target hlir.Decl, sym *ssair.Symbol) {
	fc.b.deps.add(fc.ref, refOf(target, sym))
}

func (fc *funcCtx) internal(pos hlir.Pos, format string, args ...any) {
	fc.b.sink.Report(diagnostics.New(diagnostics.SSA001, "ssabuild", diagnostics.Internal,
		fmt.Sprintf(format, args...)).At(posOf(pos)))
}

// --- Statements -------------------------------------------------------

func (fc *funcCtx) lowerStmt(s hlir.Stmt) {
	if fc.cur.Terminated() {
		return
	}
	switch st := s.(type) {
	case *hlir.Block:
		for _, sub := range st.Stmts {
			if fc.cur.Terminated() {
				break
			}
			fc.lowerStmt(sub)
		}
	case *hlir.Return:
		val := ssair.Empty()
		if _, empty := st.Value.(*hlir.EmptyLit); !empty {
			val = fc.lowerExpr(st.Value)
		}
		fc.cur.Append(ssair.NewReturn(val))
	case *hlir.Assign:
		dst := fc.lowerPlace(st.Dst)
		src := fc.lowerExpr(st.Src)
		fc.cur.Append(ssair.NewStore(dst, src))
	case *hlir.ExprStmt:
		fc.lowerExpr(st.Value)
	case *hlir.Branch:
		fc.lowerBranch(st)
	case *hlir.Loop:
		fc.lowerLoop(st)
	default:
		fc.internal(s.Pos(), "unhandled statement kind %s", s.Kind())
	}
}

func (fc *funcCtx) lowerBranch(st *hlir.Branch) {
	cond := fc.lowerExpr(st.Cond)
	thenBlk := fc.newBlock("then")
	var otherBlk *ssair.Block
	otherTarget := ssair.Empty()
	if st.Other != nil {
		otherBlk = fc.newBlock("else")
		otherTarget = ssair.BlockOperand(otherBlk.ID)
	}
	tailBlk := fc.newBlock("tail")
	if otherBlk == nil {
		otherTarget = ssair.BlockOperand(tailBlk.ID)
	}

	fc.cur.Append(ssair.NewBranch(cond, ssair.BlockOperand(thenBlk.ID), otherTarget))

	fc.cur = thenBlk
	fc.lowerStmt(st.Then)
	if !fc.cur.Terminated() {
		fc.cur.Append(ssair.NewJump(ssair.BlockOperand(tailBlk.ID)))
	}

	if otherBlk != nil {
		fc.cur = otherBlk
		fc.lowerStmt(st.Other)
		if !fc.cur.Terminated() {
			fc.cur.Append(ssair.NewJump(ssair.BlockOperand(tailBlk.ID)))
		}
	}

	fc.cur = tailBlk
}

func (fc *funcCtx) lowerLoop(st *hlir.Loop) {
	headBlk := fc.newBlock("loop_head")
	fc.cur.Append(ssair.NewJump(ssair.BlockOperand(headBlk.ID)))

	fc.cur = headBlk
	cond := fc.lowerExpr(st.Cond)
	bodyBlk := fc.newBlock("loop_body")
	tailBlk := fc.newBlock("tail")
	fc.cur.Append(ssair.NewBranch(cond, ssair.BlockOperand(bodyBlk.ID), ssair.BlockOperand(tailBlk.ID)))

	fc.cur = bodyBlk
	fc.lowerStmt(st.Body)
	if !fc.cur.Terminated() {
		fc.cur.Append(ssair.NewJump(ssair.BlockOperand(headBlk.ID)))
	}

	fc.cur = tailBlk
	if st.Other != nil {
		fc.lowerStmt(st.Other)
	}
}

// --- Expressions --------------------------------------------------------

// lowerExpr lowers e to a value-producing operand, inserting a Load step
// when e denotes a place (Load/Member/Index) rather than already carrying
// its value (a literal, or a direct function reference).
func (fc *funcCtx) lowerExpr(e hlir.Expr) ssair.Operand {
	switch ex := e.(type) {
	case *hlir.DigitLit:
		return ssair.Imm(ssair.DigitValue(ex.Type(), ex.Value))
	case *hlir.BoolLit:
		return ssair.Imm(ssair.BoolValue(ex.Value))
	case *hlir.StringLit:
		return ssair.Imm(ssair.StringValue(ex.Value))
	case *hlir.UnitLit, *hlir.EmptyLit:
		return ssair.Empty()
	case *hlir.Load:
		return fc.lowerLoad(ex)
	case *hlir.Unary:
		x := fc.lowerExpr(ex.Operand)
		return fc.append(ssair.NewUnary(ex.Type(), ex.Op, x))
	case *hlir.Binary:
		l := fc.lowerExpr(ex.Left)
		r := fc.lowerExpr(ex.Right)
		return fc.append(ssair.NewBinary(ex.Type(), ex.Op, l, r))
	case *hlir.Compare:
		l := fc.lowerExpr(ex.Left)
		r := fc.lowerExpr(ex.Right)
		return fc.append(ssair.NewCompare(ex.Op, l, r))
	case *hlir.Cast:
		x := fc.lowerExpr(ex.Operand)
		return fc.append(ssair.NewCast(ex.Type(), ex.Op, x))
	case *hlir.Call:
		fn := fc.lowerExpr(ex.Func)
		args := make([]ssair.Operand, len(ex.Args))
		for i, a := range ex.Args {
			args[i] = fc.lowerExpr(a)
		}
		return fc.append(ssair.NewCall(ex.Type(), fn, args))
	case *hlir.Member, *hlir.Index:
		addr := fc.lowerPlace(e)
		return fc.append(ssair.NewLoad(e.Type(), addr))
	case *hlir.Addr:
		addr := fc.lowerPlace(ex.Operand)
		return fc.append(ssair.NewAddr(ex.Type(), addr))
	case *hlir.ErrorExpr:
		fc.internal(e.Pos(), "lowered a poison expression")
		return ssair.Empty()
	default:
		fc.internal(e.Pos(), "unhandled expression kind %s", e.Kind())
		return ssair.Empty()
	}
}

// lowerLoad lowers a Load of decl: a direct reference to a function needs
// no memory read (the symbol operand carries the value directly); a
// global, param or local is read via an explicit Load step.
func (fc *funcCtx) lowerLoad(ex *hlir.Load) ssair.Operand {
	switch d := ex.Decl.(type) {
	case *hlir.Function:
		sym := fc.b.symbolOf[d]
		fc.recordDep(d, sym)
		return ssair.Function(sym)
	case *hlir.Global:
		sym := fc.b.symbolOf[d]
		fc.recordDep(d, sym)
		return fc.append(ssair.NewLoad(ex.Type(), ssair.Global(sym)))
	case *hlir.Param:
		return fc.append(ssair.NewLoad(ex.Type(), ssair.Param(d.Index)))
	case *hlir.Local:
		return fc.append(ssair.NewLoad(ex.Type(), ssair.Local(fc.localIdx[d])))
	default:
		fc.internal(ex.Pos(), "load of unsupported decl kind %s", d.Kind())
		return ssair.Empty()
	}
}

// lowerPlace lowers e to an address-bearing operand without an implicit
// read: a direct place (Local/Param/Global) for a Load, or a Member/Offset
// step chain for nested field/element access (§4 supplement: Offset/Member
// lvalue lowering). Assign's Dst, and the base of a further Member/Index,
// both go through this path.
func (fc *funcCtx) lowerPlace(e hlir.Expr) ssair.Operand {
	switch ex := e.(type) {
	case *hlir.Load:
		switch d := ex.Decl.(type) {
		case *hlir.Global:
			sym := fc.b.symbolOf[d]
			fc.recordDep(d, sym)
			return ssair.Global(sym)
		case *hlir.Param:
			return ssair.Param(d.Index)
		case *hlir.Local:
			return ssair.Local(fc.localIdx[d])
		default:
			fc.internal(ex.Pos(), "place load of unsupported decl kind %s", d.Kind())
			return ssair.Empty()
		}
	case *hlir.Member:
		base := fc.lowerPlace(ex.Record)
		return fc.append(ssair.NewMember(ex.Type(), base, ex.Field))
	case *hlir.Index:
		base := fc.lowerPlace(ex.Array)
		idx := fc.lowerExpr(ex.IndexExpr)
		return fc.append(ssair.NewOffset(ex.Type(), base, idx))
	default:
		fc.internal(e.Pos(), "expression is not a valid place: %s", e.Kind())
		return ssair.Empty()
	}
}
