// Package ssaopt implements the fixed-point SSA optimiser of spec §4.4:
// constant folding over a per-symbol step -> value map, and an optional
// dead-code elimination pass. Both run to a fixed point, alternating until
// neither reports further progress (or an iteration ceiling is hit).
package ssaopt

import (
	"math/big"

	"github.com/cthulhu-go/cthulhu/internal/diagnostics"
	"github.com/cthulhu-go/cthulhu/internal/hlir"
	"github.com/cthulhu-go/cthulhu/internal/ops"
	"github.com/cthulhu-go/cthulhu/internal/ssair"
)

// regKey addresses one step by its owning block and position, the unit
// constant folding tracks values against (Reg operands never cross block
// boundaries, per §3 invariant 1).
type regKey struct {
	block string
	index int
}

// Optimizer accumulates the folded-value map per symbol across
// fixed-point iterations, and a report-once set for recurring errors
// (division by zero) so a stuck, unfoldable step does not spam the sink on
// every iteration.
type Optimizer struct {
	sink     diagnostics.Sink
	values   map[*ssair.Symbol]map[regKey]ssair.Value
	reported map[*ssair.Symbol]map[regKey]bool
}

// New constructs an Optimizer that pushes diagnostics to sink.
func New(sink diagnostics.Sink) *Optimizer {
	return &Optimizer{
		sink:     sink,
		values:   make(map[*ssair.Symbol]map[regKey]ssair.Value),
		reported: make(map[*ssair.Symbol]map[regKey]bool),
	}
}

// Run drives constant folding over every symbol in mod that has blocks
// (and, if enableDCE, dead-code elimination over every function) until a
// full round reports no further
// progress, or maxIterations rounds have run - a safety bound against a
// pathological or buggy fold rule oscillating forever.
func (o *Optimizer) Run(mod *ssair.Module, enableDCE bool, maxIterations int) {
	if maxIterations <= 0 {
		maxIterations = 32
	}
	for i := 0; i < maxIterations; i++ {
		dirty := o.foldPass(mod)
		if enableDCE && o.dcePass(mod) {
			dirty = true
		}
		if !dirty {
			break
		}
	}
	o.reportUnfoldedGlobals(mod)
}

// reportUnfoldedGlobals flags a global whose initializer was lowered to a
// block (buildGlobalInit's non-literal path) but never consolidated to a
// value by the time the fold/DCE loop stopped - a global initializer that
// is not, after all, a constant expression (§7 "type mismatch ... fatal").
func (o *Optimizer) reportUnfoldedGlobals(mod *ssair.Module) {
	for _, g := range mod.Globals {
		if g.Value == nil && len(g.Blocks) > 0 && !g.IsImported() {
			o.sink.Report(diagnostics.New(diagnostics.SSA001, "ssaopt", diagnostics.Fatal,
				"global initializer for "+g.Name+" did not fold to a constant expression"))
		}
	}
}

func (o *Optimizer) foldPass(mod *ssair.Module) bool {
	dirty := false
	for _, sym := range mod.AllSymbols() {
		if len(sym.Blocks) > 0 && o.foldSymbol(sym) {
			dirty = true
		}
	}
	return dirty
}

// foldSymbol folds every step of sym's blocks and, when sym is a global
// with a block-lowered initializer (§8 scenario 1), consolidates the
// result into sym.Value exactly as it would for a function's constant
// result (consolidateConstantResult makes no distinction between the two
// kinds).
func (o *Optimizer) foldSymbol(sym *ssair.Symbol) bool {
	vals, ok := o.values[sym]
	if !ok {
		vals = make(map[regKey]ssair.Value)
		o.values[sym] = vals
	}
	reported, ok := o.reported[sym]
	if !ok {
		reported = make(map[regKey]bool)
		o.reported[sym] = reported
	}

	dirty := false
	for _, b := range sym.Blocks {
		for idx, step := range b.Steps {
			key := regKey{b.ID, idx}
			if _, known := vals[key]; known {
				continue
			}
			v, ok := o.tryFold(sym, vals, key, step, reported)
			if ok {
				vals[key] = v
				dirty = true
			}
		}
	}

	if consolidateConstantResult(sym, vals) {
		dirty = true
	}
	return dirty
}

// consolidateConstantResult implements the narrow case spec §4.4 calls
// "eligible": a symbol (function or global) with a single block whose last
// step is a Return of an operand with a now-known value gets that value
// recorded on the symbol, mirroring how a constant global's initializer is
// recorded. The block
// list itself is left intact - c89emit still renders the body - since nothing
// in this IR depends on a symbol with a body also being callable normally.
func consolidateConstantResult(sym *ssair.Symbol, vals map[regKey]ssair.Value) bool {
	if sym.Value != nil || len(sym.Blocks) != 1 {
		return false
	}
	b := sym.Blocks[0]
	if len(b.Steps) == 0 {
		return false
	}
	ret, ok := b.Steps[len(b.Steps)-1].(*ssair.ReturnStep)
	if !ok {
		return false
	}
	v, ok := resolveOperand(sym, vals, ret.Value)
	if !ok {
		return false
	}
	sym.Value = &v
	return true
}

// resolveOperand looks up the currently-known value of op, if any. Local
// and Param operands are never foldable here: their storage is mutated by
// Store steps this pass does not track flow-sensitively.
func resolveOperand(sym *ssair.Symbol, vals map[regKey]ssair.Value, op ssair.Operand) (ssair.Value, bool) {
	switch op.Kind {
	case ssair.OperandImm:
		return op.Imm, true
	case ssair.OperandReg:
		v, ok := vals[regKey{op.RegBlock, op.RegIndex}]
		return v, ok
	case ssair.OperandGlobal:
		if op.Global.Value != nil && isConstQualified(op.Global.Type) {
			return *op.Global.Value, true
		}
		return ssair.Value{}, false
	default:
		return ssair.Value{}, false
	}
}

func isConstQualified(t hlir.Type) bool {
	q, ok := t.(hlir.QualifyType)
	return ok && q.Tags.Has(ops.QualConst)
}

// tryFold computes step's folded value, if its fold rule applies and every
// operand it needs is already known (§4.4's per-rule table). reported
// suppresses repeat FOLD001 reports for the same step across iterations.
func (o *Optimizer) tryFold(sym *ssair.Symbol, vals map[regKey]ssair.Value, key regKey, step ssair.Step, reported map[regKey]bool) (ssair.Value, bool) {
	switch s := step.(type) {
	case *ssair.LoadStep:
		return resolveOperand(sym, vals, s.Src)
	case *ssair.UnaryStep:
		return foldUnary(sym, vals, s)
	case *ssair.BinaryStep:
		return o.foldBinary(sym, vals, key, s, reported)
	case *ssair.CompareStep:
		return foldCompare(sym, vals, s)
	case *ssair.CastStep:
		return foldCast(sym, vals, s)
	default:
		return ssair.Value{}, false
	}
}

func foldUnary(sym *ssair.Symbol, vals map[regKey]ssair.Value, s *ssair.UnaryStep) (ssair.Value, bool) {
	x, ok := resolveOperand(sym, vals, s.X)
	if !ok {
		return ssair.Value{}, false
	}
	switch s.UOp {
	case ops.UnaryNot:
		if x.Kind != ssair.ValueBool {
			return ssair.Value{}, false
		}
		return ssair.BoolValue(!x.Bool), true
	case ops.UnaryAbs:
		if x.Kind != ssair.ValueDigit {
			return ssair.Value{}, false
		}
		return ssair.DigitValue(s.Result, wrapDigit(new(big.Int).Abs(x.Digit), s.Result)), true
	case ops.UnaryNeg:
		if x.Kind != ssair.ValueDigit {
			return ssair.Value{}, false
		}
		return ssair.DigitValue(s.Result, wrapDigit(new(big.Int).Neg(x.Digit), s.Result)), true
	case ops.UnaryFlip:
		if x.Kind != ssair.ValueDigit {
			return ssair.Value{}, false
		}
		return ssair.DigitValue(s.Result, wrapDigit(new(big.Int).Not(x.Digit), s.Result)), true
	default:
		return ssair.Value{}, false
	}
}

// foldBinary implements the digit arithmetic/bitwise table. A division or
// remainder by the immediate zero is fatal (FOLD001) and is reported once,
// not folded; the step then surfaces unresolved to any later consumer,
// which in turn leaves that consumer unfolded too.
func (o *Optimizer) foldBinary(sym *ssair.Symbol, vals map[regKey]ssair.Value, key regKey, s *ssair.BinaryStep, reported map[regKey]bool) (ssair.Value, bool) {
	l, lok := resolveOperand(sym, vals, s.L)
	r, rok := resolveOperand(sym, vals, s.R)
	if !lok || !rok || l.Kind != ssair.ValueDigit || r.Kind != ssair.ValueDigit {
		return ssair.Value{}, false
	}
	a, b := l.Digit, r.Digit
	var out big.Int
	switch s.BOp {
	case ops.BinaryAdd:
		out.Add(a, b)
	case ops.BinarySub:
		out.Sub(a, b)
	case ops.BinaryMul:
		out.Mul(a, b)
	case ops.BinaryDiv:
		if b.Sign() == 0 {
			o.reportDivZero(sym, key, reported)
			return ssair.Value{}, false
		}
		out.Quo(a, b)
	case ops.BinaryRem:
		if b.Sign() == 0 {
			o.reportDivZero(sym, key, reported)
			return ssair.Value{}, false
		}
		out.Rem(a, b)
	case ops.BinaryAnd:
		out.And(a, b)
	case ops.BinaryOr:
		out.Or(a, b)
	case ops.BinaryXor:
		out.Xor(a, b)
	case ops.BinaryShl:
		out.Lsh(a, uint(shiftAmount(b)))
	case ops.BinaryShr:
		out.Rsh(a, uint(shiftAmount(b)))
	default:
		return ssair.Value{}, false
	}
	return ssair.DigitValue(s.Result, wrapDigit(&out, s.Result)), true
}

func (o *Optimizer) reportDivZero(sym *ssair.Symbol, key regKey, reported map[regKey]bool) {
	if reported[key] {
		return
	}
	reported[key] = true
	o.sink.Report(diagnostics.New(diagnostics.FOLD001, "ssaopt", diagnostics.Fatal,
		"division or remainder by zero in symbol "+sym.Name).WithData(map[string]any{
		"block": key.block, "step": key.index,
	}))
}

// shiftAmount reads the right operand of a shift as unsigned, per §4.4.
func shiftAmount(v *big.Int) int64 {
	if v.Sign() < 0 {
		return 0
	}
	if !v.IsInt64() {
		return 1 << 20 // effectively "shift everything out"
	}
	return v.Int64()
}

func foldCompare(sym *ssair.Symbol, vals map[regKey]ssair.Value, s *ssair.CompareStep) (ssair.Value, bool) {
	l, lok := resolveOperand(sym, vals, s.L)
	r, rok := resolveOperand(sym, vals, s.R)
	if !lok || !rok || l.Kind != r.Kind {
		return ssair.Value{}, false
	}
	switch l.Kind {
	case ssair.ValueDigit:
		return ssair.BoolValue(compareOrdering(s.COp, l.Digit.Cmp(r.Digit))), true
	case ssair.ValueBool:
		switch s.COp {
		case ops.CompareEq:
			return ssair.BoolValue(l.Bool == r.Bool), true
		case ops.CompareNe:
			return ssair.BoolValue(l.Bool != r.Bool), true
		default:
			return ssair.Value{}, false
		}
	case ssair.ValueString:
		// String/pointer comparisons fold only when both sides are
		// identical literals (§4.4) - equality/inequality only.
		switch s.COp {
		case ops.CompareEq:
			return ssair.BoolValue(l.String == r.String), true
		case ops.CompareNe:
			return ssair.BoolValue(l.String != r.String), true
		default:
			return ssair.Value{}, false
		}
	default:
		return ssair.Value{}, false
	}
}

func compareOrdering(op ops.CompareOp, cmp int) bool {
	switch op {
	case ops.CompareEq:
		return cmp == 0
	case ops.CompareNe:
		return cmp != 0
	case ops.CompareLt:
		return cmp < 0
	case ops.CompareLe:
		return cmp <= 0
	case ops.CompareGt:
		return cmp > 0
	case ops.CompareGe:
		return cmp >= 0
	default:
		return false
	}
}

func foldCast(sym *ssair.Symbol, vals map[regKey]ssair.Value, s *ssair.CastStep) (ssair.Value, bool) {
	x, ok := resolveOperand(sym, vals, s.X)
	if !ok || x.Kind != ssair.ValueDigit {
		return ssair.Value{}, false
	}
	switch s.CastOp {
	case ops.CastSignExtend, ops.CastZeroExtend, ops.CastTruncate:
		return ssair.DigitValue(s.Result, wrapDigit(new(big.Int).Set(x.Digit), s.Result)), true
	default:
		// CastBit (pointer<->digit reinterpretation) is not a constant
		// fold this pass performs.
		return ssair.Value{}, false
	}
}

// digitBits gives the natural width, in bits, folding wraps arithmetic
// results to (§4.4 "overflow wraps at the digit's natural size"). size_t
// and ptrdiff_t are treated as 64-bit, matching a typical LP64 target; a
// 32-bit target would need this table parameterised, out of scope here.
func digitBits(d ops.Digit) uint {
	switch d {
	case ops.DigitChar:
		return 8
	case ops.DigitShort:
		return 16
	case ops.DigitInt:
		return 32
	case ops.DigitLong, ops.DigitSize, ops.DigitPtrDiff:
		return 64
	default:
		return 32
	}
}

// wrapDigit truncates v to t's natural width and sign, two's-complement
// style. t must be (or resolve to) a DigitType; any other type leaves v
// unwrapped (defensive - callers only ever pass a digit Result type here).
func wrapDigit(v *big.Int, t hlir.Type) *big.Int {
	dt, ok := hlir.FollowType(t).(hlir.DigitType)
	if !ok {
		return v
	}
	bits := digitBits(dt.Width)
	mod := new(big.Int).Lsh(big.NewInt(1), bits)
	v.Mod(v, mod)
	if dt.Sign == ops.Unsigned {
		return v
	}
	half := new(big.Int).Lsh(big.NewInt(1), bits-1)
	if v.Cmp(half) >= 0 {
		v.Sub(v, mod)
	}
	return v
}
