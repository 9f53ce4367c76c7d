// Package ssabuild lowers a completed HLIR module into SSA form (§4.3): a
// forward pass synthesises one ssair.Symbol per module-level declaration
// (mangled name, resolved type, linkage/visibility), and a body pass
// structurally lowers each function's HLIR statements and expressions into
// basic blocks of Steps. A separate symbol -> set<symbol> dependency map
// is recorded alongside the module, for the driver to merge and c89emit's
// include graph to consume.
package ssabuild

import (
	"sort"
	"strings"

	"github.com/cthulhu-go/cthulhu/internal/diagnostics"
	"github.com/cthulhu-go/cthulhu/internal/hlir"
	"github.com/cthulhu-go/cthulhu/internal/mangle"
	"github.com/cthulhu-go/cthulhu/internal/ssair"
)

// DepMap records, for every symbol built so far, the set of other symbols
// its body or initializer references (§3 "a separate dependency map
// symbol -> set<symbol>").
type DepMap map[ssair.SymbolRef]map[ssair.SymbolRef]struct{}

func (d DepMap) add(from, to ssair.SymbolRef) {
	set, ok := d[from]
	if !ok {
		set = make(map[ssair.SymbolRef]struct{})
		d[from] = set
	}
	set[to] = struct{}{}
}

// Builder holds the cross-declaration state a single Build needs: the
// decl -> symbol table populated by the forward pass, and the dependency
// map accumulated during the body pass.
type Builder struct {
	sink     diagnostics.Sink
	symbolOf map[hlir.Decl]*ssair.Symbol
	deps     DepMap
}

// Build lowers mod into an SSA module plus its dependency map. Reports are
// pushed to sink rather than returned; a forward-pass mangling failure
// produces one Report but does not stop the build (the affected symbol
// gets a best-effort fallback name so later passes still see a
// structurally complete module). Every global initializer is lowered
// without a report here; one that never folds to a value is reported
// later, by ssaopt.
func Build(mod *hlir.Module, sink diagnostics.Sink) (*ssair.Module, DepMap) {
	b := &Builder{
		sink:     sink,
		symbolOf: make(map[hlir.Decl]*ssair.Symbol),
		deps:     make(DepMap),
	}
	out := ssair.NewModule(mod.Path)
	b.forwardDeclare(mod, out)
	b.buildBodies(mod, out)
	return out, b.deps
}

func (b *Builder) forwardDeclare(mod *hlir.Module, out *ssair.Module) {
	for _, name := range sortedKeys(mod.Values) {
		g, ok := mod.Values[name].(*hlir.Global)
		if !ok {
			continue
		}
		sym := b.declareGlobal(mod, g)
		out.Globals = append(out.Globals, sym)
	}
	for _, name := range sortedKeys(mod.Procs) {
		f, ok := mod.Procs[name].(*hlir.Function)
		if !ok {
			continue
		}
		sym := b.declareFunction(mod, f)
		out.Functions = append(out.Functions, sym)
	}
}

func sortedKeys(m map[string]hlir.Decl) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (b *Builder) declareGlobal(mod *hlir.Module, g *hlir.Global) *ssair.Symbol {
	name := b.mangled(mangle.Input{
		ModulePath:   mod.Path,
		Name:         g.Name(),
		ExternalName: g.Attribs().ExternalName,
	}, g)
	sym := &ssair.Symbol{
		Kind:         ssair.SymbolGlobal,
		Name:         name,
		Linkage:      g.Attribs().Linkage,
		Visibility:   g.Attribs().Visibility,
		ExternalName: g.Attribs().ExternalName,
		Type:         g.Type(),
	}
	b.symbolOf[g] = sym
	return sym
}

func (b *Builder) declareFunction(mod *hlir.Module, f *hlir.Function) *ssair.Symbol {
	paramTypes := make([]hlir.Type, len(f.Params))
	params := make([]ssair.Var, len(f.Params))
	for i, p := range f.Params {
		paramTypes[i] = p.Type()
		params[i] = ssair.Var{Name: p.Name(), Type: p.Type(), Storage: ssair.StorageAuto}
	}
	locals := make([]ssair.Var, len(f.Locals))
	for i, l := range f.Locals {
		locals[i] = ssair.Var{Name: l.Name(), Type: l.Type(), Storage: ssair.StorageAuto}
	}
	variadic := hlir.ClosureVariadic(f.Type())
	name := b.mangled(mangle.Input{
		ModulePath:   mod.Path,
		Name:         f.Name(),
		ExternalName: f.Attribs().ExternalName,
		IsFunction:   true,
		ParamTypes:   paramTypes,
		Variadic:     variadic,
	}, f)
	sym := &ssair.Symbol{
		Kind:         ssair.SymbolFunction,
		Name:         name,
		Linkage:      f.Attribs().Linkage,
		Visibility:   f.Attribs().Visibility,
		ExternalName: f.Attribs().ExternalName,
		Type:         f.Type(),
		Params:       params,
		Locals:       locals,
		Variadic:     variadic,
	}
	b.symbolOf[f] = sym
	return sym
}

// mangled computes the symbol's link name, falling back to the declared
// (unmangled) name and pushing an SSA002 report if mangling fails - an
// unresolved struct/union parameter type, most commonly.
func (b *Builder) mangled(in mangle.Input, d hlir.Decl) string {
	name, err := mangle.Mangle(in)
	if err != nil {
		b.sink.Report(diagnostics.New(diagnostics.SSA002, "ssabuild", diagnostics.Fatal,
			err.Error()).At(posOf(d.Pos())))
		return d.Name()
	}
	return name
}

func (b *Builder) buildBodies(mod *hlir.Module, out *ssair.Module) {
	for _, name := range sortedKeys(mod.Values) {
		g, ok := mod.Values[name].(*hlir.Global)
		if !ok || hlir.IsImported(g) || g.Value == nil {
			continue
		}
		b.buildGlobalInit(out, g)
	}
	for _, name := range sortedKeys(mod.Procs) {
		f, ok := mod.Procs[name].(*hlir.Function)
		if !ok || hlir.IsImported(f) || f.Body == nil {
			continue
		}
		b.buildFunctionBody(out, f)
	}
}

// buildGlobalInit lowers g's initializer. A bare literal folds in place
// with no block needed; any other expression (e.g. `2 + 3`) is lowered
// into an entry block that computes it and returns it, the same way a
// function body is, leaving ssaopt's constant-fold pass to consolidate
// that block back down to sym.Value once every step in it is known
// (§4.4's "eligible" rule; §8 scenario 1's `let x: int = 2 + 3;`).
func (b *Builder) buildGlobalInit(out *ssair.Module, g *hlir.Global) {
	sym := b.symbolOf[g]
	if v, ok := constEval(g.Value); ok {
		sym.Value = &v
		return
	}
	fc := &funcCtx{
		b:        b,
		ref:      out.Ref(sym),
		sym:      sym,
		localIdx: map[*hlir.Local]int{},
	}
	fc.cur = fc.newBlock("entry")
	val := fc.lowerExpr(g.Value)
	fc.cur.Append(ssair.NewReturn(val))
}

func (b *Builder) buildFunctionBody(out *ssair.Module, f *hlir.Function) {
	sym := b.symbolOf[f]
	fc := &funcCtx{
		b:        b,
		ref:      out.Ref(sym),
		sym:      sym,
		localIdx: make(map[*hlir.Local]int, len(f.Locals)),
	}
	for i, l := range f.Locals {
		fc.localIdx[l] = i
	}
	fc.cur = fc.newBlock("entry")
	fc.lowerStmt(f.Body)
	if !fc.cur.Terminated() {
		fc.cur.Append(ssair.NewReturn(ssair.Empty()))
	}
}

// constEval is buildGlobalInit's fast path for the literal forms, avoiding
// a trivial one-step block (and a wasted fold-pass iteration) when the
// initializer is already a literal. Anything else falls through to
// buildGlobalInit's block-lowering path instead of being rejected here.
func constEval(e hlir.Expr) (ssair.Value, bool) {
	switch v := e.(type) {
	case *hlir.DigitLit:
		return ssair.DigitValue(v.Type(), v.Value), true
	case *hlir.BoolLit:
		return ssair.BoolValue(v.Value), true
	case *hlir.StringLit:
		return ssair.StringValue(v.Value), true
	default:
		return ssair.Value{}, false
	}
}

// modulePathOf walks a declaration's parent chain to the owning module, so
// a dependency recorded against a Load/Call target can be keyed by that
// target's own module path rather than the referencing symbol's.
func modulePathOf(d hlir.Decl) []string {
	for d != nil {
		if m, ok := d.(*hlir.Module); ok {
			return m.Path
		}
		d = d.Parent()
	}
	return nil
}

func refOf(d hlir.Decl, sym *ssair.Symbol) ssair.SymbolRef {
	return ssair.SymbolRef{ModulePath: strings.Join(modulePathOf(d), "."), Name: sym.Name}
}

func posOf(p hlir.Pos) diagnostics.Pos {
	return diagnostics.Pos{File: p.Scan, Line: p.Where.Line, Column: p.Where.Column}
}
