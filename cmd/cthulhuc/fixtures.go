package main

import (
	"math/big"

	"github.com/cthulhu-go/cthulhu/internal/hlir"
	"github.com/cthulhu-go/cthulhu/internal/ops"
)

// No front-end parser ships with this core (spec §9: "front-end parsers
// ... an external collaborator"), so the demo build this CLI drives is a
// pair of hand-built HLIR modules exercising the two documented scenarios
// directly, the same way a real front end's elaborator would have
// constructed them.

// constantModule builds the §8 scenario 1 fixture: a single exported
// const int global initialised with `2 + 3`, lowered to a block and
// folded by ssaopt down to the constant 5 (not hand-folded here).
func constantModule() *hlir.Module {
	mod := hlir.NewModule(hlir.NoPos, []string{"consts"})

	intType := hlir.Digit(ops.DigitInt, ops.Signed)
	constInt := hlir.Qualify(intType, ops.QualConst)

	attr := hlir.Attrib{Linkage: ops.Export, Visibility: ops.Public}
	x := hlir.OpenGlobal(hlir.NoPos, "x", attr, constInt, mod)
	two := hlir.DigitLiteral(hlir.NoPos, intType, big.NewInt(2))
	three := hlir.DigitLiteral(hlir.NoPos, intType, big.NewInt(3))
	sum := hlir.NewBinary(hlir.NoPos, intType, ops.BinaryAdd, two, three)
	hlir.BuildGlobal(x, sum)

	mod.Values["x"] = x
	return mod
}

// entryModule builds the §8 scenario 2 fixture: an EntryCli main whose
// body is a single discarded printf call followed by a bare return.
// printf is modelled with a unit result - this toy dialect's builtin
// Print(), unlike libc's printf, exposes no return value to the caller -
// so the call's HLIR type is unit at construction, not just at the
// statement site that discards it (see DESIGN.md).
func entryModule() *hlir.Module {
	mod := hlir.NewModule(hlir.NoPos, []string{"main"})

	strPtr := hlir.Pointer(hlir.Str(), false)
	intType := hlir.Digit(ops.DigitInt, ops.Signed)
	printfType := hlir.Closure([]hlir.Type{strPtr}, hlir.Unit(), true)

	printfAttr := hlir.Attrib{Linkage: ops.Import, Visibility: ops.Public}
	printf := hlir.OpenFunction(hlir.NoPos, "printf", printfAttr, printfType, nil, mod)
	hlir.CompleteImportedFunction(printf)
	mod.Procs["printf"] = printf

	printfLoad := hlir.NewLoad(hlir.NoPos, printf)
	fmtArg := hlir.StringLiteral(hlir.NoPos, "%d\n")
	intArg := hlir.DigitLiteral(hlir.NoPos, intType, big.NewInt(42))
	call := hlir.NewCall(hlir.NoPos, printfLoad, []hlir.Expr{fmtArg, intArg})

	body := hlir.NewBlock(hlir.NoPos, []hlir.Stmt{
		hlir.NewExprStmt(hlir.NoPos, call),
		hlir.NewReturn(hlir.NoPos, nil),
	})

	mainAttr := hlir.Attrib{Linkage: ops.EntryCli, Visibility: ops.Public}
	mainType := hlir.Closure(nil, intType, false)
	main := hlir.OpenFunction(hlir.NoPos, "main", mainAttr, mainType, nil, mod)
	hlir.BuildFunction(main, body)
	mod.Procs["main"] = main

	return mod
}

// demoModules returns the fixture set the `build` subcommand compiles when
// no manifest is given.
func demoModules() []*hlir.Module {
	return []*hlir.Module{constantModule(), entryModule()}
}
