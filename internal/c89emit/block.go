package c89emit

import (
	"fmt"
	"strings"

	"github.com/cthulhu-go/cthulhu/internal/hlir"
	"github.com/cthulhu-go/cthulhu/internal/ops"
	"github.com/cthulhu-go/cthulhu/internal/ssair"
)

// ctx threads the per-function rendering state (name cache plus the
// owning symbol's locals/params, needed to resolve Local/Param operand
// text) through block and step rendering.
type ctx struct {
	names  *nameCache
	locals []ssair.Var
	params []ssair.Var
}

func (c *ctx) text(op ssair.Operand) string {
	return operandText(op, c.names, c.locals, c.params)
}

// renderFunctionBody renders every block of sym in order, starting with
// the `goto bb<entry>;` jump §4.5 step 4 requires before the first block
// label. Callers must reset names for this function once, before both
// declareVregs and this function scan the same steps in the same order, so
// the two passes agree on every vreg's name (writeFunctionDefinition does
// so).
func renderFunctionBody(sym *ssair.Symbol, names *nameCache) string {
	c := &ctx{names: names, locals: sym.Locals, params: sym.Params}

	var b strings.Builder
	if len(sym.Blocks) > 0 {
		fmt.Fprintf(&b, "\tgoto %s;\n", sym.Blocks[0].ID)
	}
	for _, blk := range sym.Blocks {
		fmt.Fprintf(&b, "%s: /* len = %d */\n", blk.ID, len(blk.Steps))
		for idx, step := range blk.Steps {
			vreg := names.vregName(blk.ID, idx)
			b.WriteString(renderStep(step, c, vreg))
		}
	}
	return b.String()
}

// renderStep renders one step to its single C89 statement (§4.5 step 5).
// vreg is this step's own pre-assigned result name (empty for steps that
// produce no value). Cast, Addr, Member, and Offset are not in the base
// spec's enumerated form list (it covers Load/Store/Unary/Binary/Compare/
// Call/Jump/Branch/Return); their renderings here are a supplemented
// extension, built from
// exactly the same operand table so no opcode needs special-cased operand
// handling.
func renderStep(step ssair.Step, c *ctx, vreg string) string {
	switch s := step.(type) {
	case *ssair.LoadStep:
		return fmt.Sprintf("\t%s = %s[0];\n", vreg, c.text(s.Src))
	case *ssair.StoreStep:
		return fmt.Sprintf("\t%s[0] = %s;\n", c.text(s.Dst), c.text(s.Src))
	case *ssair.UnaryStep:
		if s.UOp == ops.UnaryAbs {
			x := c.text(s.X)
			return fmt.Sprintf("\t%s = ((%s) < 0 ? -(%s) : (%s));\n", vreg, x, x, x)
		}
		return fmt.Sprintf("\t%s = (%s %s);\n", vreg, unarySymbol(s.UOp), c.text(s.X))
	case *ssair.BinaryStep:
		return fmt.Sprintf("\t%s = (%s %s %s);\n", vreg, c.text(s.L), s.BOp.Symbol(), c.text(s.R))
	case *ssair.CompareStep:
		return fmt.Sprintf("\t%s = (%s %s %s);\n", vreg, c.text(s.L), s.COp.Symbol(), c.text(s.R))
	case *ssair.CastStep:
		return fmt.Sprintf("\t%s = (%s)%s;\n", vreg, printType(s.Result), c.text(s.X))
	case *ssair.CallStep:
		args := make([]string, len(s.Args))
		for i, a := range s.Args {
			args[i] = c.text(a)
		}
		call := fmt.Sprintf("%s(%s)", c.text(s.Func), strings.Join(args, ", "))
		if isVoidResult(s.Result) {
			return fmt.Sprintf("\t%s;\n", call)
		}
		return fmt.Sprintf("\t%s = %s;\n", vreg, call)
	case *ssair.AddrStep:
		return fmt.Sprintf("\t%s = (%s);\n", vreg, c.text(s.X))
	case *ssair.OffsetStep:
		return fmt.Sprintf("\t%s = (&(%s)[%s]);\n", vreg, c.text(s.Base), c.text(s.Index))
	case *ssair.MemberStep:
		return fmt.Sprintf("\t%s = (&(%s)->%s);\n", vreg, c.text(s.Base), s.Field)
	case *ssair.JumpStep:
		return fmt.Sprintf("\tgoto %s;\n", c.text(s.Target))
	case *ssair.BranchStep:
		return renderBranch(s, c)
	case *ssair.ReturnStep:
		return renderReturn(s, c)
	default:
		return "\t/* unhandled step */\n"
	}
}

func renderBranch(s *ssair.BranchStep, c *ctx) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\tif (%s) { goto %s; }", c.text(s.Cond), c.text(s.Then))
	if s.Other.Kind != ssair.OperandEmpty {
		fmt.Fprintf(&b, " else { goto %s; }", c.text(s.Other))
	}
	b.WriteString("\n")
	return b.String()
}

func renderReturn(s *ssair.ReturnStep, c *ctx) string {
	if s.Value.Kind == ssair.OperandEmpty {
		return "\treturn;\n"
	}
	return fmt.Sprintf("\treturn %s;\n", c.text(s.Value))
}

// isVoidResult reports whether a Call step's result type should be
// dropped from its C rendering (§4.5 step 5: "omitting the vreg when the
// result type is unit/empty").
func isVoidResult(t hlir.Type) bool {
	switch hlir.FollowType(t).(type) {
	case hlir.UnitType, hlir.EmptyType:
		return true
	default:
		return false
	}
}

// declareVregs scans sym's steps in the same order renderFunctionBody
// walks them and returns one `<type> vregN;` declaration per step that
// produces a value, so every vreg used later in the body is declared
// before the function's first goto (C89 requires block-scope declarations
// to precede statements, and a goto/label body is a single block for this
// purpose - §4.5 is silent on this, so this declaration pass is a
// supplemented feature; see DESIGN.md). Steps whose result is unit/empty
// (Store, Jump, Branch, Return, and a void-typed Call) are skipped, since
// renderStep never writes to their vreg name. Unlike globals and locals, a
// vreg is a plain scalar, not the singleton-array storage form - it's never
// addressed, only read and written directly.
func declareVregs(sym *ssair.Symbol, names *nameCache) []string {
	var decls []string
	for _, blk := range sym.Blocks {
		for idx, step := range blk.Steps {
			t := step.ResultType()
			if isVoidResult(t) {
				continue
			}
			vreg := names.vregName(blk.ID, idx)
			decls = append(decls, fmt.Sprintf("\t%s %s;\n", printType(t), vreg))
		}
	}
	return decls
}

// unarySymbol maps a unary op to its single C89 prefix operator. UnaryAbs
// has no such operator (abs is not expressible as one prefix symbol glued
// between parens), so renderStep special-cases it into a ternary before
// ever reaching here.
func unarySymbol(op ops.UnaryOp) string {
	switch op {
	case ops.UnaryNot:
		return "!"
	case ops.UnaryNeg:
		return "-"
	case ops.UnaryFlip:
		return "~"
	default:
		return "?"
	}
}
