// Package c89emit renders a set of lowered and optimised SSA modules to a
// tree of C89 source and header files (§4.5). Each module becomes one
// `.h`/`.c` pair under include/ and src/, mirroring its dotted module path;
// cross-module references become `#include` directives derived from the
// dependency map ssabuild produces alongside the module set.
package c89emit

import (
	"fmt"
	"path"
	"strings"

	"github.com/cthulhu-go/cthulhu/internal/diagnostics"
	"github.com/cthulhu-go/cthulhu/internal/ssabuild"
	"github.com/cthulhu-go/cthulhu/internal/ssair"
	"github.com/cthulhu-go/cthulhu/internal/vfs"
)

// Emit renders every module in mods to fs, using deps to resolve each
// module's #include graph (§4.5 "Collect dependencies"). Reports are pushed
// to sink; a filesystem failure is reported as EMIT001 and stops emission:
// the failing module's open handles are closed and Emit returns the error
// without emitting the modules after it.
func Emit(mods []*ssair.Module, deps ssabuild.DepMap, fs vfs.FileSystem, sink diagnostics.Sink) error {
	index := buildModuleIndex(mods)

	if err := fs.DirCreate("include"); err != nil {
		return reportIO(sink, "include", err)
	}
	if err := fs.DirCreate("src"); err != nil {
		return reportIO(sink, "src", err)
	}

	for _, mod := range mods {
		if err := emitModule(mod, deps, index, fs, sink); err != nil {
			return err
		}
	}
	return nil
}

// modFile groups the two open handles (and the name caches that must stay
// stable across both passes) for one module's emission.
type modFile struct {
	mod        *ssair.Module
	headerPath string
	sourcePath string
	header     vfs.Handle
	source     vfs.Handle
	names      *nameCache
}

func emitModule(mod *ssair.Module, deps ssabuild.DepMap, index moduleIndex, fs vfs.FileSystem, sink diagnostics.Sink) error {
	dirParts := onDiskDir(mod)
	headerPath := path.Join(append(append([]string{"include"}, dirParts...), mod.Name+".h")...)
	sourcePath := path.Join(append(append([]string{"src"}, dirParts...), mod.Name+".c")...)

	if len(dirParts) > 0 {
		if err := fs.DirCreate(path.Join(append([]string{"include"}, dirParts...)...)); err != nil {
			return reportIO(sink, headerPath, err)
		}
		if err := fs.DirCreate(path.Join(append([]string{"src"}, dirParts...)...)); err != nil {
			return reportIO(sink, sourcePath, err)
		}
	}

	headerHandle, err := fs.Open(headerPath, vfs.ModeWrite|vfs.ModeText)
	if err != nil {
		return reportIO(sink, headerPath, err)
	}
	sourceHandle, err := fs.Open(sourcePath, vfs.ModeWrite|vfs.ModeText)
	if err != nil {
		headerHandle.Close()
		return reportIO(sink, sourcePath, err)
	}

	mf := &modFile{
		mod:        mod,
		headerPath: headerPath,
		sourcePath: sourcePath,
		header:     headerHandle,
		source:     sourceHandle,
		names:      newNameCache(),
	}
	defer func() {
		mf.header.Close()
		mf.source.Close()
	}()

	if err := writeBegin(mf, mod, dirParts, deps, index); err != nil {
		return reportIO(sink, headerPath, err)
	}
	if err := writePrototypes(mf, mod, sink); err != nil {
		return reportIO(sink, sourcePath, err)
	}
	if err := writeDefinitions(mf, mod, sink); err != nil {
		return reportIO(sink, sourcePath, err)
	}
	return nil
}

// onDiskDir computes a module's directory components per §4.5 step 1: the
// module's dotted path with the trailing component dropped when it repeats
// the module's own name (the common case where a module's path already
// ends in its leaf name).
func onDiskDir(mod *ssair.Module) []string {
	if len(mod.Path) == 0 {
		return nil
	}
	if mod.Path[len(mod.Path)-1] == mod.Name {
		return mod.Path[:len(mod.Path)-1]
	}
	return mod.Path
}

func writeBegin(mf *modFile, mod *ssair.Module, dirParts []string, deps ssabuild.DepMap, index moduleIndex) error {
	if err := writeAll(mf.header, "#pragma once\n#include <stdbool.h>\n#include <stdint.h>\n"); err != nil {
		return err
	}
	for _, inc := range includesFor(mod, deps, index) {
		if err := writeAll(mf.header, fmt.Sprintf("#include %q\n", inc)); err != nil {
			return err
		}
	}
	if err := writeAll(mf.header, "\n"); err != nil {
		return err
	}
	headerName := mf.mod.Name + ".h"
	if len(dirParts) > 0 {
		headerName = path.Join(append(append([]string{}, dirParts...), headerName)...)
	}
	return writeAll(mf.source, fmt.Sprintf("#include %q\n\n", headerName))
}

func writeAll(h vfs.Handle, s string) error {
	_, err := h.Write([]byte(s))
	return err
}

func reportIO(sink diagnostics.Sink, path string, err error) error {
	sink.Report(diagnostics.New(diagnostics.EMIT001, "c89emit", diagnostics.Fatal,
		fmt.Sprintf("write %s: %v", path, err)))
	return err
}

// moduleIndex maps a dot-joined module path to its module, for resolving
// the on-disk location of a dependency target (§4.5 step 2).
type moduleIndex map[string]*ssair.Module

func buildModuleIndex(mods []*ssair.Module) moduleIndex {
	idx := make(moduleIndex, len(mods))
	for _, m := range mods {
		idx[strings.Join(m.Path, ".")] = m
	}
	return idx
}
