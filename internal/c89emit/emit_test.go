package c89emit

import (
	"math/big"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/cthulhu-go/cthulhu/internal/diagnostics"
	"github.com/cthulhu-go/cthulhu/internal/hlir"
	"github.com/cthulhu-go/cthulhu/internal/ops"
	"github.com/cthulhu-go/cthulhu/internal/ssabuild"
	"github.com/cthulhu-go/cthulhu/internal/ssair"
	"github.com/cthulhu-go/cthulhu/internal/vfs"
	"github.com/cthulhu-go/cthulhu/testutil"
)

// constantGlobalModule builds the §8 scenario 1 fixture: module "m" with
// one exported `const int x[1] = { 5 };` global.
func constantGlobalModule() *ssair.Module {
	intType := hlir.Digit(ops.DigitInt, ops.Signed)
	constInt := hlir.Qualify(intType, ops.QualConst)

	x := &ssair.Symbol{
		Kind:       ssair.SymbolGlobal,
		Name:       "x",
		Linkage:    ops.Export,
		Visibility: ops.Public,
		Type:       constInt,
		Value:      ptrValue(ssair.DigitValue(constInt, big.NewInt(5))),
	}
	return &ssair.Module{Name: "m", Path: []string{"m"}, Globals: []*ssair.Symbol{x}}
}

// TestConstantInitGlobal covers §8 scenario 1: a folded constant global
// reads `extern const int x[1];` in the header and `const int x[1] = { 5 };`
// in the source.
func TestConstantInitGlobal(t *testing.T) {
	fs := vfs.NewMem()
	sink := diagnostics.NewCollectingSink()

	err := Emit([]*ssair.Module{constantGlobalModule()}, ssabuild.DepMap{}, fs, sink)
	require.NoError(t, err)
	require.False(t, sink.HasFatal())

	header, ok := fs.File("include/m.h")
	require.True(t, ok)
	require.Contains(t, string(header), "extern const int x[1];")

	source, ok := fs.File("src/m.c")
	require.True(t, ok)
	require.Contains(t, string(source), "const int x[1] = { 5 };")
}

// TestConstantInitGlobalGoldenTree covers the same scenario against a
// full captured file tree rather than substring checks, per DESIGN.md's
// golden-tree convention (testutil.AssertGoldenTree). Run with
// UPDATE_GOLDENS=true to regenerate testdata/emit/constant-global/golden.
func TestConstantInitGlobalGoldenTree(t *testing.T) {
	fs := vfs.NewMem()
	sink := diagnostics.NewCollectingSink()

	err := Emit([]*ssair.Module{constantGlobalModule()}, ssabuild.DepMap{}, fs, sink)
	require.NoError(t, err)
	require.False(t, sink.HasFatal())

	actual := make(map[string]string)
	for _, p := range fs.Paths() {
		b, _ := fs.File(p)
		actual[p] = string(b)
	}
	testutil.AssertGoldenTree(t, "emit", "constant-global", actual)
}

// TestEmitIsDeterministic covers §8's emission-determinism property: two
// Emit runs over the same SSA module list produce byte-identical trees.
func TestEmitIsDeterministic(t *testing.T) {
	fsA, fsB := vfs.NewMem(), vfs.NewMem()
	sinkA, sinkB := diagnostics.NewCollectingSink(), diagnostics.NewCollectingSink()

	require.NoError(t, Emit([]*ssair.Module{constantGlobalModule()}, ssabuild.DepMap{}, fsA, sinkA))
	require.NoError(t, Emit([]*ssair.Module{constantGlobalModule()}, ssabuild.DepMap{}, fsB, sinkB))

	toMap := func(fs *vfs.Mem) map[string]string {
		out := make(map[string]string)
		for _, p := range fs.Paths() {
			b, _ := fs.File(p)
			out[p] = string(b)
		}
		return out
	}

	if diff := cmp.Diff(toMap(fsA), toMap(fsB)); diff != "" {
		t.Fatalf("expected byte-identical trees across two Emit runs (-first +second):\n%s", diff)
	}
}

// TestEntryFunction covers §8 scenario 2: an entry function whose body is a
// single printf call followed by a bare return.
func TestEntryFunction(t *testing.T) {
	printf := &ssair.Symbol{
		Kind:    ssair.SymbolFunction,
		Name:    "printf",
		Linkage: ops.Import,
		Type: hlir.Closure([]hlir.Type{hlir.Pointer(hlir.Str(), false)}, hlir.Digit(ops.DigitInt, ops.Signed), true),
	}

	entry := ssair.NewBlock("bb0", "entry")
	fmtArg := ssair.Imm(ssair.StringValue("%d\n"))
	intArg := ssair.Imm(ssair.DigitValue(hlir.Digit(ops.DigitInt, ops.Signed), big.NewInt(42)))
	// The call step's own result type - not printf's declared closure type -
	// is what the emitter checks (§4.5 step 5's literal "omitting the vreg
	// when the result type is unit/empty" rule is type-based, not a
	// liveness check), so a call used for its side effect alone is built
	// with a unit result here, same as a statement-position call coming out
	// of the front end would be.
	entry.Append(ssair.NewCall(hlir.Unit(), ssair.Function(printf), []ssair.Operand{fmtArg, intArg}))
	entry.Append(ssair.NewReturn(ssair.Empty()))

	main := &ssair.Symbol{
		Kind:    ssair.SymbolFunction,
		Name:    "main",
		Linkage: ops.EntryCli,
		Type:    hlir.Closure(nil, hlir.Digit(ops.DigitInt, ops.Signed), false),
		Blocks:  []*ssair.Block{entry},
	}

	mod := &ssair.Module{Name: "main", Path: []string{"main"}, Functions: []*ssair.Symbol{main, printf}}

	fs := vfs.NewMem()
	sink := diagnostics.NewCollectingSink()

	err := Emit([]*ssair.Module{mod}, ssabuild.DepMap{}, fs, sink)
	require.NoError(t, err)
	require.False(t, sink.HasFatal())

	source, ok := fs.File("src/main.c")
	require.True(t, ok)
	body := string(source)

	require.Contains(t, body, "int main(void) {")
	require.Contains(t, body, "goto bb0;")
	require.Contains(t, body, "bb0: /* len = 2 */")
	require.Contains(t, body, `printf("%d\n", 42);`)
	require.Contains(t, body, "return;")
	require.Contains(t, body, "}\n")
}

// TestVregDeclaration covers the supplemented declaration pass: a function
// whose body loads a local and returns it needs the load's vreg declared
// before the function's first goto, since the body is one C89 block scope.
func TestVregDeclaration(t *testing.T) {
	intType := hlir.Digit(ops.DigitInt, ops.Signed)

	entry := ssair.NewBlock("bb0", "entry")
	entry.Append(ssair.NewLoad(intType, ssair.Local(0)))
	entry.Append(ssair.NewReturn(ssair.Reg("bb0", 0)))

	get := &ssair.Symbol{
		Kind:    ssair.SymbolFunction,
		Name:    "get",
		Linkage: ops.ModulePrivate,
		Type:    hlir.Closure(nil, intType, false),
		Locals:  []ssair.Var{{Name: "n", Type: intType}},
		Blocks:  []*ssair.Block{entry},
	}

	mod := &ssair.Module{Name: "m", Path: []string{"m"}, Functions: []*ssair.Symbol{get}}

	fs := vfs.NewMem()
	sink := diagnostics.NewCollectingSink()

	err := Emit([]*ssair.Module{mod}, ssabuild.DepMap{}, fs, sink)
	require.NoError(t, err)
	require.False(t, sink.HasFatal())

	source, ok := fs.File("src/m.c")
	require.True(t, ok)
	body := string(source)

	declIdx := strings.Index(body, "int vreg0;")
	gotoIdx := strings.Index(body, "goto bb0;")
	loadIdx := strings.Index(body, "vreg0 = n[0];")
	require.True(t, declIdx >= 0, "expected vreg0 declaration, got:\n%s", body)
	require.True(t, gotoIdx > declIdx, "declaration must precede the first goto")
	require.True(t, loadIdx > gotoIdx, "load must come after the goto, in the block body")
}

// TestUnaryAbsEmitsTernary covers a non-foldable abs (its operand is a
// parameter, so ssaopt's constant fold never touches it): the emitted C89
// must branch on sign rather than render the bare `+` a naive prefix-symbol
// lookup would produce, which silently miscompiles negative inputs.
func TestUnaryAbsEmitsTernary(t *testing.T) {
	intType := hlir.Digit(ops.DigitInt, ops.Signed)

	entry := ssair.NewBlock("bb0", "entry")
	entry.Append(ssair.NewLoad(intType, ssair.Param(0)))
	entry.Append(ssair.NewUnary(intType, ops.UnaryAbs, ssair.Reg("bb0", 0)))
	entry.Append(ssair.NewReturn(ssair.Reg("bb0", 1)))

	abs := &ssair.Symbol{
		Kind:    ssair.SymbolFunction,
		Name:    "abs_of",
		Linkage: ops.ModulePrivate,
		Type:    hlir.Closure([]hlir.Type{intType}, intType, false),
		Params:  []ssair.Var{{Name: "n", Type: intType}},
		Blocks:  []*ssair.Block{entry},
	}

	mod := &ssair.Module{Name: "m", Path: []string{"m"}, Functions: []*ssair.Symbol{abs}}

	fs := vfs.NewMem()
	sink := diagnostics.NewCollectingSink()

	err := Emit([]*ssair.Module{mod}, ssabuild.DepMap{}, fs, sink)
	require.NoError(t, err)
	require.False(t, sink.HasFatal())

	source, ok := fs.File("src/m.c")
	require.True(t, ok)
	body := string(source)

	require.Contains(t, body, "vreg1 = ((vreg0) < 0 ? -(vreg0) : (vreg0));")
	require.NotContains(t, body, "(+vreg0)")
}

func ptrValue(v ssair.Value) *ssair.Value { return &v }
