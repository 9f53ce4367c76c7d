// Package driver wires the compiler pipeline together: HLIR modules in,
// SSA lowering, the constant-fold/DCE fixed point, and C89 emission out,
// all against one diagnostics.Sink and vfs.FileSystem (§6, §9 "reports as
// an explicit parameter").
package driver

import (
	"path/filepath"

	"github.com/cthulhu-go/cthulhu/internal/c89emit"
	"github.com/cthulhu-go/cthulhu/internal/diagnostics"
	"github.com/cthulhu-go/cthulhu/internal/hlir"
	"github.com/cthulhu-go/cthulhu/internal/ssabuild"
	"github.com/cthulhu-go/cthulhu/internal/ssaopt"
	"github.com/cthulhu-go/cthulhu/internal/ssair"
	"github.com/cthulhu-go/cthulhu/internal/vfs"
)

// Options configures one build run. Mirrors cmd/cthulhuc's flag set (§1.3):
// no viper/yaml for this struct itself, since it's populated directly from
// flag.Parse results.
type Options struct {
	OutDir         string
	DCE            bool
	FoldIterations int // 0 means "use the symbol-count default"
	Verbose        bool
}

// Result summarizes one Build call for cmd/cthulhuc's pass-summary report.
type Result struct {
	Modules []*ssair.Module
	Deps    ssabuild.DepMap
}

// Build runs every HLIR module through ssabuild, ssaopt, and c89emit in
// turn, against fs. When sink is a *diagnostics.CollectingSink, Build stops
// after ssabuild, or after ssaopt, if a fatal diagnostic has been reported
// by then (§7 "the driver ... chooses whether to continue"); with any other
// Sink it cannot inspect the reports and runs every phase.
func Build(mods []*hlir.Module, opts Options, fs vfs.FileSystem, sink diagnostics.Sink) (*Result, error) {
	collecting, ownSink := sink.(*diagnostics.CollectingSink)

	var ssaModules []*ssair.Module
	merged := ssabuild.DepMap{}

	for _, m := range mods {
		ssaMod, deps := ssabuild.Build(m, sink)
		ssaModules = append(ssaModules, ssaMod)
		for from, tos := range deps {
			set, ok := merged[from]
			if !ok {
				set = make(map[ssair.SymbolRef]struct{})
				merged[from] = set
			}
			for to := range tos {
				set[to] = struct{}{}
			}
		}
	}

	if ownSink && collecting.HasFatal() {
		return &Result{Modules: ssaModules, Deps: merged}, nil
	}

	maxIter := opts.FoldIterations
	if maxIter <= 0 {
		maxIter = totalSymbols(ssaModules)
		if maxIter == 0 {
			maxIter = 1
		}
	}
	opt := ssaopt.New(sink)
	for _, ssaMod := range ssaModules {
		opt.Run(ssaMod, opts.DCE, maxIter)
	}

	if ownSink && collecting.HasFatal() {
		return &Result{Modules: ssaModules, Deps: merged}, nil
	}

	outFS := fs
	if opts.OutDir != "" {
		outFS = &rootedFS{root: opts.OutDir, inner: fs}
	}
	if err := c89emit.Emit(ssaModules, merged, outFS, sink); err != nil {
		return &Result{Modules: ssaModules, Deps: merged}, err
	}
	return &Result{Modules: ssaModules, Deps: merged}, nil
}

// rootedFS rejoins every path c89emit hands it under root before delegating
// to inner, so a vfs.OS-backed build can be pointed at an -out directory
// without the emitter itself knowing about one (it only ever writes
// module-relative include/ and src/ paths, per §4.5 step 1).
type rootedFS struct {
	root  string
	inner vfs.FileSystem
}

func (r *rootedFS) DirCreate(path string) error { return r.inner.DirCreate(filepath.Join(r.root, path)) }
func (r *rootedFS) FileCreate(path string) error {
	return r.inner.FileCreate(filepath.Join(r.root, path))
}
func (r *rootedFS) Open(path string, mode vfs.OpenMode) (vfs.Handle, error) {
	return r.inner.Open(filepath.Join(r.root, path), mode)
}

func totalSymbols(mods []*ssair.Module) int {
	n := 0
	for _, m := range mods {
		n += len(m.AllSymbols())
	}
	return n
}
