package ssaopt

import (
	"math/big"
	"testing"

	"github.com/cthulhu-go/cthulhu/internal/diagnostics"
	"github.com/cthulhu-go/cthulhu/internal/hlir"
	"github.com/cthulhu-go/cthulhu/internal/ops"
	"github.com/cthulhu-go/cthulhu/internal/ssabuild"
	"github.com/cthulhu-go/cthulhu/internal/ssair"
)

func intType() hlir.Type { return hlir.Digit(ops.DigitInt, ops.Signed) }

func singleBlockFunction(steps ...ssair.Step) *ssair.Symbol {
	b := ssair.NewBlock("bb0", "entry")
	for _, s := range steps {
		b.Append(s)
	}
	return &ssair.Symbol{Kind: ssair.SymbolFunction, Name: "f", Type: intType(), Blocks: []*ssair.Block{b}}
}

func TestFoldBinaryAddConsolidatesConstantResult(t *testing.T) {
	two := ssair.Imm(ssair.DigitValue(intType(), big.NewInt(2)))
	three := ssair.Imm(ssair.DigitValue(intType(), big.NewInt(3)))
	sum := ssair.NewBinary(intType(), ops.BinaryAdd, two, three)
	ret := ssair.NewReturn(ssair.Reg("bb0", 0))
	sym := singleBlockFunction(sum, ret)
	mod := &ssair.Module{Functions: []*ssair.Symbol{sym}}

	o := New(diagnostics.NewCollectingSink())
	o.Run(mod, false, 4)

	if sym.Value == nil {
		t.Fatal("expected symbol to consolidate to a constant value")
	}
	if sym.Value.Digit.Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("expected folded value 5, got %v", sym.Value.Digit)
	}
}

func TestFoldDivisionByZeroReportsFatalAndLeavesUnfolded(t *testing.T) {
	five := ssair.Imm(ssair.DigitValue(intType(), big.NewInt(5)))
	zero := ssair.Imm(ssair.DigitValue(intType(), big.NewInt(0)))
	div := ssair.NewBinary(intType(), ops.BinaryDiv, five, zero)
	ret := ssair.NewReturn(ssair.Reg("bb0", 0))
	sym := singleBlockFunction(div, ret)
	mod := &ssair.Module{Functions: []*ssair.Symbol{sym}}

	sink := diagnostics.NewCollectingSink()
	o := New(sink)
	o.Run(mod, false, 4)

	if sym.Value != nil {
		t.Fatal("did not expect a folded value for a division by zero")
	}
	if !sink.HasFatal() {
		t.Fatal("expected a fatal FOLD001 report")
	}
	count := 0
	for _, r := range sink.Reports {
		if r.Code == diagnostics.FOLD001 {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one FOLD001 report across fixed-point iterations, got %d", count)
	}
}

func TestFoldOverflowWrapsAtDigitWidth(t *testing.T) {
	charType := hlir.Digit(ops.DigitChar, ops.Unsigned)
	max := ssair.Imm(ssair.DigitValue(charType, big.NewInt(250)))
	ten := ssair.Imm(ssair.DigitValue(charType, big.NewInt(10)))
	add := ssair.NewBinary(charType, ops.BinaryAdd, max, ten)
	ret := ssair.NewReturn(ssair.Reg("bb0", 0))
	sym := singleBlockFunction(add, ret)
	mod := &ssair.Module{Functions: []*ssair.Symbol{sym}}

	o := New(diagnostics.NewCollectingSink())
	o.Run(mod, false, 4)

	// 250 + 10 = 260, wraps to 260 - 256 = 4 in an unsigned 8-bit digit.
	if sym.Value == nil || sym.Value.Digit.Cmp(big.NewInt(4)) != 0 {
		t.Fatalf("expected wrapped value 4, got %v", sym.Value)
	}
}

// TestFoldGlobalInitializerEndToEnd is §8 scenario 1 run through the real
// pipeline: ssabuild.Build lowers `let x: int = 2 + 3;` to a block (it is
// not a literal), and this fold pass is what is supposed to consolidate
// that block down to x.value = 5.
func TestFoldGlobalInitializerEndToEnd(t *testing.T) {
	mod := hlir.NewModule(hlir.NoPos, []string{"consts"})
	two := hlir.DigitLiteral(hlir.NoPos, intType(), big.NewInt(2))
	three := hlir.DigitLiteral(hlir.NoPos, intType(), big.NewInt(3))
	sum := hlir.NewBinary(hlir.NoPos, intType(), ops.BinaryAdd, two, three)
	x := hlir.OpenGlobal(hlir.NoPos, "x", hlir.Attrib{Linkage: ops.Export, Visibility: ops.Public}, intType(), mod)
	hlir.BuildGlobal(x, sum)
	mod.Values["x"] = x

	sink := diagnostics.NewCollectingSink()
	out, _ := ssabuild.Build(mod, sink)

	o := New(sink)
	o.Run(out, false, 4)

	if sink.HasFatal() {
		t.Fatalf("unexpected fatal reports: %+v", sink.Reports)
	}
	g := out.Globals[0]
	if g.Value == nil {
		t.Fatal("expected the global initializer to fold to a constant value")
	}
	if g.Value.Digit.Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("expected folded value 5, got %v", g.Value.Digit)
	}
}

func TestDCERemovesUnusedPureStepButKeepsSideEffects(t *testing.T) {
	imm := ssair.Imm(ssair.DigitValue(intType(), big.NewInt(1)))
	dead := ssair.NewUnary(intType(), ops.UnaryNeg, imm) // index 0, never referenced
	store := ssair.NewStore(ssair.Local(0), imm)         // index 1, side-effecting
	ret := ssair.NewReturn(ssair.Empty())                // index 2, terminator
	sym := singleBlockFunction(dead, store, ret)
	mod := &ssair.Module{Functions: []*ssair.Symbol{sym}}

	o := New(diagnostics.NewCollectingSink())
	o.Run(mod, true, 4)

	steps := sym.Blocks[0].Steps
	if len(steps) != 2 {
		t.Fatalf("expected the dead Unary step removed, got %d steps", len(steps))
	}
	if steps[0].Opcode() != ssair.OpStore || steps[1].Opcode() != ssair.OpReturn {
		t.Fatalf("expected Store then Return to survive, got %s then %s", steps[0].Opcode(), steps[1].Opcode())
	}
}

// TestDCEEliminatesOverwrittenDeadStore is §8 scenario 6: `let a = 1;
// let a = 2; return a;` - only the second Store to local 0 survives, and
// the Return loads local 0 once.
func TestDCEEliminatesOverwrittenDeadStore(t *testing.T) {
	one := ssair.Imm(ssair.DigitValue(intType(), big.NewInt(1)))
	twoLit := ssair.Imm(ssair.DigitValue(intType(), big.NewInt(2)))
	firstStore := ssair.NewStore(ssair.Local(0), one)     // index 0, dead: overwritten before any read
	secondStore := ssair.NewStore(ssair.Local(0), twoLit) // index 1, survives
	load := ssair.NewLoad(intType(), ssair.Local(0))      // index 2
	ret := ssair.NewReturn(ssair.Reg("bb0", 2))           // index 3
	sym := singleBlockFunction(firstStore, secondStore, load, ret)
	mod := &ssair.Module{Functions: []*ssair.Symbol{sym}}

	o := New(diagnostics.NewCollectingSink())
	o.Run(mod, true, 4)

	steps := sym.Blocks[0].Steps
	if len(steps) != 3 {
		t.Fatalf("expected the first Store removed, got %d steps: %v", len(steps), steps)
	}
	store, ok := steps[0].(*ssair.StoreStep)
	if !ok || store.Src.Kind != ssair.OperandImm || store.Src.Imm.Digit.Cmp(big.NewInt(2)) != 0 {
		t.Fatalf("expected the surviving Store to write 2, got %+v", steps[0])
	}
	if steps[1].Opcode() != ssair.OpLoad || steps[2].Opcode() != ssair.OpReturn {
		t.Fatalf("expected Load then Return to follow, got %s then %s", steps[1].Opcode(), steps[2].Opcode())
	}
}

// TestDCEKeepsStoreReadBeforeOverwritten ensures deadStores does not
// eliminate a store that is actually read before the place is overwritten.
func TestDCEKeepsStoreReadBeforeOverwritten(t *testing.T) {
	one := ssair.Imm(ssair.DigitValue(intType(), big.NewInt(1)))
	two := ssair.Imm(ssair.DigitValue(intType(), big.NewInt(2)))
	firstStore := ssair.NewStore(ssair.Local(0), one)          // index 0, read below - must survive
	load := ssair.NewLoad(intType(), ssair.Local(0))           // index 1
	secondStore := ssair.NewStore(ssair.Local(0), two)         // index 2, survives
	ret := ssair.NewReturn(ssair.Reg("bb0", 1))                // index 3, keeps the Load live
	sym := singleBlockFunction(firstStore, load, secondStore, ret)
	mod := &ssair.Module{Functions: []*ssair.Symbol{sym}}

	o := New(diagnostics.NewCollectingSink())
	o.Run(mod, true, 4)

	steps := sym.Blocks[0].Steps
	if len(steps) != 4 {
		t.Fatalf("expected all 4 steps to survive (the first Store was read), got %d: %v", len(steps), steps)
	}
}

func TestDCEKeepsPreservedStepEvenWhenUnused(t *testing.T) {
	imm := ssair.Imm(ssair.DigitValue(intType(), big.NewInt(1)))
	preserved := ssair.NewUnary(intType(), ops.UnaryNeg, imm)
	preserved.Preserve = true
	ret := ssair.NewReturn(ssair.Empty())
	sym := singleBlockFunction(preserved, ret)
	mod := &ssair.Module{Functions: []*ssair.Symbol{sym}}

	o := New(diagnostics.NewCollectingSink())
	o.Run(mod, true, 4)

	if len(sym.Blocks[0].Steps) != 2 {
		t.Fatalf("expected the preserved step to survive DCE, got %d steps", len(sym.Blocks[0].Steps))
	}
}

func TestDCERenumbersSurvivingRegOperands(t *testing.T) {
	imm := ssair.Imm(ssair.DigitValue(intType(), big.NewInt(1)))
	dead := ssair.NewUnary(intType(), ops.UnaryNeg, imm)           // index 0, dead
	live := ssair.NewUnary(intType(), ops.UnaryAbs, imm)           // index 1, feeds Store
	store := ssair.NewStore(ssair.Local(0), ssair.Reg("bb0", 1))   // index 2, refers to index 1
	ret := ssair.NewReturn(ssair.Empty())                          // index 3
	sym := singleBlockFunction(dead, live, store, ret)
	mod := &ssair.Module{Functions: []*ssair.Symbol{sym}}

	o := New(diagnostics.NewCollectingSink())
	o.Run(mod, true, 4)

	steps := sym.Blocks[0].Steps
	if len(steps) != 3 {
		t.Fatalf("expected 3 surviving steps, got %d", len(steps))
	}
	st, ok := steps[1].(*ssair.StoreStep)
	if !ok {
		t.Fatalf("expected Store at index 1 after renumbering, got %T", steps[1])
	}
	if st.Src.Kind != ssair.OperandReg || st.Src.RegIndex != 0 {
		t.Fatalf("expected Store's Src reg renumbered to index 0, got %+v", st.Src)
	}
}
