package c89emit

import (
	"fmt"
	"strings"

	"github.com/cthulhu-go/cthulhu/internal/hlir"
	"github.com/cthulhu-go/cthulhu/internal/ops"
	"github.com/cthulhu-go/cthulhu/internal/ssair"
)

// printType renders t's base C89 spelling with no trailing name (§4.5 step
// 6). Qualifiers are NOT stripped here (unlike hlir.FollowType, which is a
// type-equality helper) since they are exactly what this function must
// print; the switch matches on the concrete Go type rather than calling
// FollowType.
func printType(t hlir.Type) string {
	switch tt := t.(type) {
	case hlir.EmptyType:
		return "void"
	case hlir.UnitType:
		return "void"
	case hlir.BoolType:
		return "bool"
	case hlir.StringType:
		return "const char *"
	case hlir.DigitType:
		return tt.Width.CName(tt.Sign)
	case hlir.PointerType:
		return printType(tt.Target) + " *"
	case hlir.ArrayType:
		return printType(tt.Elem)
	case hlir.ClosureType:
		return printClosure(tt, "")
	case hlir.QualifyType:
		return qualifierPrefix(tt.Tags) + printType(tt.Inner)
	case hlir.StructType:
		return tt.Name
	case hlir.UnionType:
		return tt.Name
	case hlir.OpaqueType:
		return tt.Name
	default:
		return "void"
	}
}

// qualifierPrefix renders the C89 qualifier keywords ahead of the inner
// type, in the fixed const/volatile/_Atomic order the original emitter
// uses regardless of how the bitset was built (§4 supplement). QualMutable
// has no C89 keyword and is silently dropped - mutability is a source-level
// concept the C89 backend cannot express.
func qualifierPrefix(q ops.Qualifier) string {
	var parts []string
	if q.Has(ops.QualConst) {
		parts = append(parts, "const")
	}
	if q.Has(ops.QualVolatile) {
		parts = append(parts, "volatile")
	}
	if q.Has(ops.QualAtomic) {
		parts = append(parts, "_Atomic")
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, " ") + " "
}

// printTypeWithName renders t followed by name, in C89 declarator order
// (§4.5 step 6): a closure needs the `(*name)(params)` function-pointer
// form, an array needs the trailing `[N]`, everything else is just
// "<type> <name>".
func printTypeWithName(t hlir.Type, name string) string {
	switch tt := t.(type) {
	case hlir.ClosureType:
		return printClosure(tt, name)
	case hlir.ArrayType:
		return fmt.Sprintf("%s %s[%d]", printType(tt.Elem), name, tt.Length)
	case hlir.QualifyType:
		if arr, ok := tt.Inner.(hlir.ArrayType); ok {
			return fmt.Sprintf("%s%s %s[%d]", qualifierPrefix(tt.Tags), printType(arr.Elem), name, arr.Length)
		}
		return qualifierPrefix(tt.Tags) + printTypeWithName(tt.Inner, name)
	default:
		base := printType(t)
		if name == "" {
			return base
		}
		return base + " " + name
	}
}

func printClosure(t hlir.ClosureType, name string) string {
	params := printParamTypes(t.Params, t.Variadic)
	return fmt.Sprintf("%s (*%s)(%s)", printType(t.Result), name, params)
}

// printParamTypes renders a parameter-type list with no parameter names,
// for a closure-typed declarator (§4.5 step 6: empty -> void unless
// variadic, trailing variadic appends ", ...").
func printParamTypes(params []hlir.Type, variadic bool) string {
	if len(params) == 0 {
		if variadic {
			return "..."
		}
		return "void"
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = printType(p)
	}
	s := strings.Join(parts, ", ")
	if variadic {
		s += ", ..."
	}
	return s
}

// printParamsNamed renders a function symbol's parameter list with names,
// for its own prototype/definition signature.
func printParamsNamed(params []ssair.Var, variadic bool) string {
	if len(params) == 0 {
		if variadic {
			return "..."
		}
		return "void"
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = printTypeWithName(p.Type, p.Name)
	}
	s := strings.Join(parts, ", ")
	if variadic {
		s += ", ..."
	}
	return s
}

// singletonDecl renders the "<type-with-name>[1]" spelling §4.5 steps 3-4
// use uniformly for globals and locals (the single-element-array storage
// convention, §4.5 step 5 preamble). Declared separately from
// printTypeWithName rather than just appending "[1]" to its result, since
// an already-array-shaped t needs the 1 on the outermost dimension (C
// declares outer-to-inner left to right): "int g[1][3]", not "int g[3][1]".
func singletonDecl(t hlir.Type, name string) string {
	switch tt := t.(type) {
	case hlir.ArrayType:
		return fmt.Sprintf("%s %s[1][%d]", printType(tt.Elem), name, tt.Length)
	case hlir.ClosureType:
		return printClosure(tt, name+"[1]")
	default:
		return printType(t) + " " + name + "[1]"
	}
}
