package c89emit

import (
	"fmt"

	"github.com/cthulhu-go/cthulhu/internal/diagnostics"
	"github.com/cthulhu-go/cthulhu/internal/hlir"
	"github.com/cthulhu-go/cthulhu/internal/ops"
	"github.com/cthulhu-go/cthulhu/internal/ssair"
	"github.com/cthulhu-go/cthulhu/internal/vfs"
)

// writePrototypes implements §4.5 step 3: a forward declaration for every
// global, and for every non-entry function, routed to the header when
// public and the source otherwise.
func writePrototypes(mf *modFile, mod *ssair.Module, sink diagnostics.Sink) error {
	for _, g := range mod.Globals {
		line := fmt.Sprintf("%s%s;\n", globalProtoKeyword(g, g.Visibility == ops.Public), singletonDecl(g.Type, g.Name))
		if err := writeAll(target(mf, g.Visibility), line); err != nil {
			return err
		}
	}
	for _, f := range mod.Functions {
		if f.Linkage.IsEntry() {
			continue
		}
		line := fmt.Sprintf("%s%s %s(%s);\n", f.Linkage.Keyword(), printType(hlir.ClosureResult(f.Type)), f.Name, printParamsNamed(f.Params, f.Variadic))
		if err := writeAll(target(mf, f.Visibility), line); err != nil {
			return err
		}
	}
	return nil
}

// globalProtoKeyword resolves a global's prototype storage-class keyword.
// module-private always gets `static`, wherever its visibility places it.
// Any other prototype placed into the shared header must read `extern`
// regardless of its own HLIR linkage -
// otherwise an export-linkage global's header-side forward declaration
// would be a second tentative definition in every translation unit that
// includes the header (§8 scenario 1 shows this: an export-linkage
// constant global's header reads `extern const int x[1];`, not the bare
// `ops.Export.Keyword()` empty string). This resolves an ambiguity the
// base spec's keyword table leaves implicit; see DESIGN.md.
func globalProtoKeyword(g *ssair.Symbol, inHeader bool) string {
	if g.Linkage == ops.ModulePrivate {
		return "static "
	}
	if inHeader {
		return "extern "
	}
	return g.Linkage.Keyword()
}

func target(mf *modFile, vis ops.Visibility) vfs.Handle {
	if vis == ops.Public {
		return mf.header
	}
	return mf.source
}

// writeDefinitions implements §4.5 step 4: the actual storage/body for
// every non-imported global and function, always into the source file.
func writeDefinitions(mf *modFile, mod *ssair.Module, sink diagnostics.Sink) error {
	for _, g := range mod.Globals {
		if g.IsImported() {
			continue
		}
		var line string
		if g.Value != nil {
			line = fmt.Sprintf("%s = { %s };\n", singletonDecl(g.Type, g.Name), renderImm(*g.Value))
		} else {
			line = singletonDecl(g.Type, g.Name) + ";\n"
		}
		if err := writeAll(mf.source, line); err != nil {
			return err
		}
	}
	for _, f := range mod.Functions {
		if f.IsImported() {
			continue
		}
		if err := writeFunctionDefinition(mf, f); err != nil {
			return err
		}
	}
	return nil
}

func writeFunctionDefinition(mf *modFile, f *ssair.Symbol) error {
	header := fmt.Sprintf("%s%s %s(%s) {\n", f.Linkage.Keyword(), printType(hlir.ClosureResult(f.Type)), f.Name, printParamsNamed(f.Params, f.Variadic))
	if err := writeAll(mf.source, header); err != nil {
		return err
	}
	for _, l := range f.Locals {
		if err := writeAll(mf.source, "\t"+singletonDecl(l.Type, l.Name)+";\n"); err != nil {
			return err
		}
	}
	mf.names.resetFunction()
	for _, line := range declareVregs(f, mf.names) {
		if err := writeAll(mf.source, line); err != nil {
			return err
		}
	}
	if err := writeAll(mf.source, renderFunctionBody(f, mf.names)); err != nil {
		return err
	}
	return writeAll(mf.source, "}\n")
}
