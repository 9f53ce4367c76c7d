package ssair

import (
	"github.com/cthulhu-go/cthulhu/internal/hlir"
	"github.com/cthulhu-go/cthulhu/internal/ops"
)

// VarStorage distinguishes how a local/param is stored. The source
// compiler only ever uses automatic (stack) storage for these; the field
// exists so c89emit and a future register-allocator stage (explicitly
// out of scope, §1 Non-goals) have a place to record storage-class
// decisions without changing the Var shape.
type VarStorage int

const (
	StorageAuto VarStorage = iota
)

func (s VarStorage) String() string {
	switch s {
	case StorageAuto:
		return "auto"
	default:
		return "storage?"
	}
}

// Var is a function-local or parameter slot: a name, type, and storage
// class (§3).
type Var struct {
	Name    string
	Type    hlir.Type
	Storage VarStorage
}

// SymbolKind distinguishes a global variable from a function, since both
// share one Symbol shape per §3.
type SymbolKind int

const (
	SymbolGlobal SymbolKind = iota
	SymbolFunction
)

func (k SymbolKind) String() string {
	if k == SymbolFunction {
		return "function"
	}
	return "global"
}

// Symbol is a module-level global or function (§3). Blocks is empty and
// Value is nil for an imported declaration (§3 invariant 5).
type Symbol struct {
	Kind         SymbolKind
	Name         string
	Linkage      ops.Linkage
	Visibility   ops.Visibility
	ExternalName string // empty unless an explicit external link name was set
	Type         hlir.Type
	Value        *Value // non-nil only for globals with a folded/initialized payload
	Blocks       []*Block
	Locals       []Var // functions only
	Params       []Var // functions only
	Variadic     bool  // functions only: closure type accepts trailing args
}

// IsFunction reports whether this symbol is a function.
func (s *Symbol) IsFunction() bool {
	return s.Kind == SymbolFunction
}

// IsImported reports whether the symbol carries import linkage (no body,
// no value, per §3 invariant 5).
func (s *Symbol) IsImported() bool {
	return s.Linkage == ops.Import
}

// Module is one SSA translation unit: a dotted path, and its ordered
// globals and functions (§3).
type Module struct {
	Name      string
	Path      []string
	Globals   []*Symbol
	Functions []*Symbol
}

// NewModule constructs an empty module for the given dotted path.
func NewModule(path []string) *Module {
	name := ""
	if len(path) > 0 {
		name = path[len(path)-1]
	}
	return &Module{Name: name, Path: path}
}

// SymbolRef uniquely identifies a symbol across the whole module set, for
// use as a dependency-map key (§3 "a separate dependency map
// symbol -> set<symbol>").
type SymbolRef struct {
	ModulePath string // "." joined Path
	Name       string
}

// Ref returns this module's path-joined key paired with sym's name.
func (m *Module) Ref(sym *Symbol) SymbolRef {
	return SymbolRef{ModulePath: joinPath(m.Path), Name: sym.Name}
}

func joinPath(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}

// AllSymbols returns Globals followed by Functions, the iteration order
// ssaopt and c89emit use whenever "every symbol" is specified.
func (m *Module) AllSymbols() []*Symbol {
	out := make([]*Symbol, 0, len(m.Globals)+len(m.Functions))
	out = append(out, m.Globals...)
	out = append(out, m.Functions...)
	return out
}
