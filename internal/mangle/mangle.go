// Package mangle implements the Itanium-style name mangling described in
// spec §4.3: a symbol's module path and name compose into a nested-name
// specifier, and a function's parameter types append an argument-type
// suffix. The newer ssa_build mangling rule is canonical (§9 REDESIGN
// FLAGS): embedded '-', '.', '/' within one path segment split into
// further <len><name> runs without a nested N...E wrapper.
package mangle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cthulhu-go/cthulhu/internal/hlir"
)

// Input describes everything mangle needs about one symbol: its module
// path, its own name, an optional external-link override, and (for
// functions) its fully resolved parameter types.
type Input struct {
	ModulePath   []string
	Name         string
	ExternalName string // non-empty overrides mangling entirely
	IsFunction   bool
	ParamTypes   []hlir.Type
	Variadic     bool
}

// embeddedSeparators splits a single path/name component on '.', '-', and
// '/' into the further <len><name> runs required by the canonical rule.
var embeddedSeparators = func(r rune) bool {
	return r == '.' || r == '-' || r == '/'
}

// Mangle computes the mangled name for in. If in.ExternalName is set it
// is returned verbatim (§4.3 "use it verbatim").
func Mangle(in Input) (string, error) {
	if in.ExternalName != "" {
		return in.ExternalName, nil
	}

	var segs []string
	for _, component := range in.ModulePath {
		segs = append(segs, splitSegment(component)...)
	}
	segs = append(segs, splitSegment(in.Name)...)
	if len(segs) == 0 {
		return "", fmt.Errorf("mangle: symbol %q has no nameable segments", in.Name)
	}

	var b strings.Builder
	b.WriteString("_Z")
	if len(segs) == 1 {
		writeLengthPrefixed(&b, segs[0])
	} else {
		b.WriteByte('N')
		for _, s := range segs {
			writeLengthPrefixed(&b, s)
		}
		b.WriteByte('E')
	}

	if in.IsFunction {
		argString, err := mangleArgs(in.ParamTypes, in.Variadic)
		if err != nil {
			return "", err
		}
		b.WriteString(argString)
	}
	return b.String(), nil
}

func splitSegment(s string) []string {
	parts := strings.FieldsFunc(s, embeddedSeparators)
	if len(parts) == 0 {
		return []string{s}
	}
	return parts
}

func writeLengthPrefixed(b *strings.Builder, s string) {
	b.WriteString(strconv.Itoa(len(s)))
	b.WriteString(s)
}

// mangleArgs renders the Itanium argument-type string for a function's
// parameters. A variadic closure with zero fixed parameters mangles as
// "v" (matching the Itanium convention for a parameterless signature)
// followed by nothing further - C variadic trailing args carry no
// mangling of their own.
func mangleArgs(params []hlir.Type, variadic bool) (string, error) {
	if len(params) == 0 {
		return "v", nil
	}
	var b strings.Builder
	for _, p := range params {
		code, err := mangleType(p)
		if err != nil {
			return "", err
		}
		b.WriteString(code)
	}
	return b.String(), nil
}

// mangleType renders one parameter type to its Itanium-ish code. Named
// struct/union types require a fully resolved declaration; an unresolved
// one is an Invariant error per §9's Open Question resolution, not a
// guess.
func mangleType(t hlir.Type) (string, error) {
	switch tt := hlir.FollowType(t).(type) {
	case hlir.BoolType:
		return "b", nil
	case hlir.UnitType:
		return "v", nil
	case hlir.StringType:
		return "PKc", nil
	case hlir.DigitType:
		return digitCode(tt)
	case hlir.PointerType:
		inner, err := mangleType(tt.Target)
		if err != nil {
			return "", err
		}
		return "P" + inner, nil
	case hlir.StructType:
		if tt.Decl == nil {
			return "", fmt.Errorf("mangle: struct %q has no resolved declaration", tt.Name)
		}
		return fmt.Sprintf("%d%s", len(tt.Name), tt.Name), nil
	case hlir.UnionType:
		if tt.Decl == nil {
			return "", fmt.Errorf("mangle: union %q has no resolved declaration", tt.Name)
		}
		return fmt.Sprintf("%d%s", len(tt.Name), tt.Name), nil
	default:
		return "", fmt.Errorf("mangle: cannot mangle unresolved type %s", t)
	}
}
