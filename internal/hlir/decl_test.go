package hlir

import (
	"math/big"
	"testing"

	"github.com/cthulhu-go/cthulhu/internal/ops"
)

func TestGlobalForwardThenBuild(t *testing.T) {
	intT := Digit(ops.DigitInt, ops.Signed)
	attr := Attrib{Linkage: ops.Export, Visibility: ops.Public}
	g := OpenGlobal(NoPos, "x", attr, intT, nil)

	if g.State() != Forward {
		t.Fatal("expected newly opened global to be Forward")
	}

	BuildGlobal(g, DigitLiteral(NoPos, intT, big.NewInt(5)))

	if g.State() != Complete {
		t.Fatal("expected global to be Complete after BuildGlobal")
	}
	if g.Value == nil {
		t.Fatal("expected global to carry a value after BuildGlobal")
	}
}

func TestBuildGlobalTwicePanics(t *testing.T) {
	intT := Digit(ops.DigitInt, ops.Signed)
	g := OpenGlobal(NoPos, "x", Attrib{}, intT, nil)
	BuildGlobal(g, DigitLiteral(NoPos, intT, big.NewInt(5)))

	defer func() {
		if recover() == nil {
			t.Fatal("expected a second BuildGlobal to panic (contract violation)")
		}
	}()
	BuildGlobal(g, DigitLiteral(NoPos, intT, big.NewInt(5)))
}

func TestAppendLocalAfterCompleteFunctionPanics(t *testing.T) {
	unit := Unit()
	closureT := Closure(nil, unit, false)
	f := OpenFunction(NoPos, "f", Attrib{}, closureT, nil, nil)
	BuildFunction(f, NewReturn(NoPos, nil))

	defer func() {
		if recover() == nil {
			t.Fatal("expected AppendLocal on a completed function to panic")
		}
	}()
	AppendLocal(f, NewLocal(NoPos, "tmp", unit, f))
}

func TestModuleSubMaps(t *testing.T) {
	m := NewModule(NoPos, []string{"pl0", "lang"})
	if m.Name() != "lang" {
		t.Fatalf("expected module name %q, got %q", "lang", m.Name())
	}
	if len(m.Values) != 0 || len(m.Procs) != 0 || len(m.Types) != 0 {
		t.Fatal("expected freshly constructed module to have empty sub-maps")
	}
}

