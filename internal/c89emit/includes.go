package c89emit

import (
	"path"
	"sort"

	"github.com/cthulhu-go/cthulhu/internal/ssabuild"
	"github.com/cthulhu-go/cthulhu/internal/ssair"
)

// includesFor computes the sorted, de-duplicated set of header paths mod
// must #include, by unioning the containing modules of every symbol mod's
// own symbols depend on (§4.5 step 2), excluding mod itself.
func includesFor(mod *ssair.Module, deps ssabuild.DepMap, index moduleIndex) []string {
	selfPath := joinDots(mod.Path)

	seen := make(map[string]bool)
	var out []string
	for _, sym := range mod.AllSymbols() {
		ref := mod.Ref(sym)
		for target := range deps[ref] {
			if target.ModulePath == selfPath {
				continue
			}
			other, ok := index[target.ModulePath]
			if !ok {
				continue
			}
			inc := includePathFor(other)
			if !seen[inc] {
				seen[inc] = true
				out = append(out, inc)
			}
		}
	}
	sort.Strings(out)
	return out
}

func joinDots(p []string) string {
	out := ""
	for i, s := range p {
		if i > 0 {
			out += "."
		}
		out += s
	}
	return out
}

// includePathFor returns the slash-joined header path used in another
// module's #include directive, mirroring its on-disk location (§4.5 step 1
// reused for step 2's include graph, and scenario 4's "a/a.h" form).
func includePathFor(mod *ssair.Module) string {
	dir := onDiskDir(mod)
	return path.Join(append(append([]string{}, dir...), mod.Name+".h")...)
}
