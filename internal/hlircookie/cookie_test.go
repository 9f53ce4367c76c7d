package hlircookie

import (
	"testing"

	"github.com/cthulhu-go/cthulhu/internal/hlir"
	"github.com/cthulhu-go/cthulhu/internal/ops"
)

func TestSetIdempotentOnSameDecl(t *testing.T) {
	c := New()
	g := hlir.OpenGlobal(hlir.NoPos, "x", hlir.Attrib{}, hlir.Digit(ops.DigitInt, ops.Signed), nil)

	if _, failed := Set(c, TagValue, "x", g); failed {
		t.Fatal("first Set should succeed")
	}
	if _, failed := Set(c, TagValue, "x", g); failed {
		t.Fatal("re-Set with the identical decl should be idempotent, not fail")
	}
}

func TestSetShadowFails(t *testing.T) {
	c := New()
	intT := hlir.Digit(ops.DigitInt, ops.Signed)
	g1 := hlir.OpenGlobal(hlir.NoPos, "x", hlir.Attrib{}, intT, nil)
	g2 := hlir.OpenGlobal(hlir.NoPos, "x", hlir.Attrib{}, intT, nil)

	if _, failed := Set(c, TagValue, "x", g1); failed {
		t.Fatal("first Set should succeed")
	}
	report, failed := Set(c, TagValue, "x", g2)
	if !failed {
		t.Fatal("expected a shadow report when redefining with a different decl")
	}
	if report.Code != "HLIR001" {
		t.Fatalf("expected HLIR001, got %s", report.Code)
	}
}

func TestGetWalksParentScope(t *testing.T) {
	root := New()
	intT := hlir.Digit(ops.DigitInt, ops.Signed)
	g := hlir.OpenGlobal(hlir.NoPos, "x", hlir.Attrib{}, intT, nil)
	Set(root, TagValue, "x", g)

	child := Nested(root)
	decl, ok := Get(child, TagValue, "x")
	if !ok || decl != g {
		t.Fatal("expected child scope to resolve x through parent")
	}
	if _, ok := Get(child, TagValue, "y"); ok {
		t.Fatal("did not expect y to resolve anywhere")
	}
}

func TestCloseFunctionAppendsImplicitReturn(t *testing.T) {
	unit := hlir.Unit()
	closureT := hlir.Closure(nil, unit, false)
	f := hlir.OpenFunction(hlir.NoPos, "f", hlir.Attrib{}, closureT, nil, nil)

	body := hlir.NewBlock(hlir.NoPos, nil)
	CloseFunction(f, body)

	block, ok := f.Body.(*hlir.Block)
	if !ok {
		t.Fatalf("expected function body to remain a Block, got %T", f.Body)
	}
	if len(block.Stmts) != 1 {
		t.Fatalf("expected implicit return appended, got %d statements", len(block.Stmts))
	}
	if _, ok := block.Stmts[0].(*hlir.Return); !ok {
		t.Fatalf("expected appended statement to be Return, got %T", block.Stmts[0])
	}
}

func TestCloseFunctionDoesNotDoubleTerminate(t *testing.T) {
	unit := hlir.Unit()
	closureT := hlir.Closure(nil, unit, false)
	f := hlir.OpenFunction(hlir.NoPos, "f", hlir.Attrib{}, closureT, nil, nil)

	body := hlir.NewBlock(hlir.NoPos, []hlir.Stmt{hlir.NewReturn(hlir.NoPos, nil)})
	CloseFunction(f, body)

	block := f.Body.(*hlir.Block)
	if len(block.Stmts) != 1 {
		t.Fatalf("expected no implicit return appended, got %d statements", len(block.Stmts))
	}
}
