package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// AssertGoldenTree compares a map of relative path -> file content (as
// produced by an in-memory vfs.Mem, for instance) against the files under
// testdata/<feature>/<name>/golden/. Run with UPDATE_GOLDENS=true to write
// actual into that directory instead of comparing against it.
func AssertGoldenTree(t *testing.T, feature, name string, actual map[string]string) {
	t.Helper()

	dir := filepath.Join("testdata", feature, name, "golden")

	if UpdateGoldens {
		if err := os.RemoveAll(dir); err != nil {
			t.Fatalf("failed to clear golden dir: %v", err)
		}
		for rel, content := range actual {
			full := filepath.Join(dir, filepath.FromSlash(rel))
			if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
				t.Fatalf("failed to create golden dir: %v", err)
			}
			if err := os.WriteFile(full, []byte(content), 0644); err != nil {
				t.Fatalf("failed to write golden file %s: %v", full, err)
			}
		}
		t.Logf("Updated golden tree: %s", dir)
		return
	}

	expected := make(map[string]string)
	filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return relErr
		}
		b, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		expected[filepath.ToSlash(rel)] = string(b)
		return nil
	})

	var paths []string
	for p := range union(expected, actual) {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		exp, inExp := expected[p]
		act, inAct := actual[p]
		switch {
		case !inExp:
			t.Errorf("golden tree %s/%s: unexpected file %s\n%s", feature, name, p, act)
		case !inAct:
			t.Errorf("golden tree %s/%s: missing expected file %s", feature, name, p)
		case exp != act:
			t.Errorf("golden tree %s/%s: mismatch in %s\nexpected:\n%s\nactual:\n%s", feature, name, p, exp, act)
		}
	}
}

func union(a, b map[string]string) map[string]struct{} {
	out := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}
