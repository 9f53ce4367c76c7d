package mangle

import (
	"regexp"
	"testing"

	"github.com/cthulhu-go/cthulhu/internal/hlir"
	"github.com/cthulhu-go/cthulhu/internal/ops"
)

// mangleRegex is the round-trip shape required by Testable Properties §8:
// _Z(N<seg>+E|<seg>) with <seg> := \d+[^\d].*
var mangleRegex = regexp.MustCompile(`^_Z(N(\d+\D.*)+E|\d+\D.*)$`)

func TestMangleNoParamsMatchesRegex(t *testing.T) {
	got, err := Mangle(Input{ModulePath: nil, Name: "main", IsFunction: false})
	if err != nil {
		t.Fatalf("Mangle: %v", err)
	}
	if !mangleRegex.MatchString(got) {
		t.Fatalf("mangled name %q does not match required shape", got)
	}
}

func TestMangleSingleSegmentNoNWrapper(t *testing.T) {
	got, err := Mangle(Input{ModulePath: nil, Name: "x"})
	if err != nil {
		t.Fatalf("Mangle: %v", err)
	}
	want := "_Z1x"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMangleNestedPathUsesNWrapper(t *testing.T) {
	got, err := Mangle(Input{ModulePath: []string{"pl0", "lang"}, Name: "foo"})
	if err != nil {
		t.Fatalf("Mangle: %v", err)
	}
	want := "_ZN3pl04lang3fooE"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMangleEmbeddedSeparatorsSplitWithoutNestedWrapper(t *testing.T) {
	got, err := Mangle(Input{ModulePath: []string{"a.b-c/d"}, Name: "foo"})
	if err != nil {
		t.Fatalf("Mangle: %v", err)
	}
	// "a.b-c/d" splits into a, b, c, d - four sub-segments, plus "foo":
	// one N...E wrapper around all five, no nested wrapper per sub-segment.
	want := "_ZN1a1b1c1d3fooE"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMangleExternalNameVerbatim(t *testing.T) {
	got, err := Mangle(Input{ModulePath: []string{"libc"}, Name: "myPrintf", ExternalName: "printf"})
	if err != nil {
		t.Fatalf("Mangle: %v", err)
	}
	if got != "printf" {
		t.Fatalf("got %q, want verbatim external name %q", got, "printf")
	}
}

func TestMangleFunctionArgTypes(t *testing.T) {
	intT := hlir.Digit(ops.DigitInt, ops.Signed)
	got, err := Mangle(Input{
		Name:       "add",
		IsFunction: true,
		ParamTypes: []hlir.Type{intT, intT},
	})
	if err != nil {
		t.Fatalf("Mangle: %v", err)
	}
	want := "_Z3addii"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMangleFunctionNoParams(t *testing.T) {
	got, err := Mangle(Input{Name: "main", IsFunction: true})
	if err != nil {
		t.Fatalf("Mangle: %v", err)
	}
	want := "_Z4mainv"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMangleUnresolvedStructIsError(t *testing.T) {
	unresolved := hlir.Struct("Point", nil, nil)
	_, err := Mangle(Input{
		Name:       "dist",
		IsFunction: true,
		ParamTypes: []hlir.Type{unresolved},
	})
	if err == nil {
		t.Fatal("expected an error mangling a struct with no resolved declaration")
	}
}

func TestMangleResolvedStruct(t *testing.T) {
	decl := hlir.OpenStruct(hlir.NoPos, "Point", nil)
	hlir.BuildStruct(decl, []hlir.Field{{Name: "x", Type: hlir.Digit(ops.DigitInt, ops.Signed)}})
	got, err := Mangle(Input{
		Name:       "dist",
		IsFunction: true,
		ParamTypes: []hlir.Type{decl.Typ},
	})
	if err != nil {
		t.Fatalf("Mangle: %v", err)
	}
	want := "_Z4dist5Point"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestManglePointerType(t *testing.T) {
	intT := hlir.Digit(ops.DigitInt, ops.Signed)
	got, err := Mangle(Input{
		Name:       "deref",
		IsFunction: true,
		ParamTypes: []hlir.Type{hlir.Pointer(intT, true)},
	})
	if err != nil {
		t.Fatalf("Mangle: %v", err)
	}
	want := "_Z5derefPi"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
