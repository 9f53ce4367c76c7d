package hlir

import "fmt"

// Decl is the common interface for every HLIR declaration node.
type Decl interface {
	Kind() DeclKind
	Name() string
	Attribs() Attrib
	Type() Type
	Pos() Pos
	Parent() Decl
	State() BuildState
	declNode()
}

// DeclBase carries the fields every declaration variant shares: name,
// attribute record, resolved type, source position, parent pointer, and
// forward/complete state (§4.1).
type DeclBase struct {
	NodePos    Pos
	Nam        string
	Attr       Attrib
	Typ        Type
	ParentDecl Decl
	St         BuildState
}

func (d DeclBase) Name() string      { return d.Nam }
func (d DeclBase) Attribs() Attrib   { return d.Attr }
func (d DeclBase) Type() Type        { return d.Typ }
func (d DeclBase) Pos() Pos          { return d.NodePos }
func (d DeclBase) Parent() Decl      { return d.ParentDecl }
func (d DeclBase) State() BuildState { return d.St }
func (DeclBase) declNode()           {}

// contractViolation panics with an Invariant/contract-class message,
// matching §7's "internal severity, surfaces as a panic-equivalent in the
// host language" policy for broken build-protocol invariants.
func contractViolation(format string, args ...any) {
	panic(fmt.Sprintf("hlir: contract violation: "+format, args...))
}

// --- Global ---------------------------------------------------------------

// Global is a module-level variable declaration.
type Global struct {
	DeclBase
	Value Expr // nil until BuildGlobal attaches an initializer
}

// OpenGlobal forward-declares a global, returning a mutable handle. The
// handle's State is Forward until BuildGlobal (or CompleteImportedGlobal,
// for a global with no initializer) completes it.
func OpenGlobal(pos Pos, name string, attr Attrib, typ Type, parent Decl) *Global {
	return &Global{DeclBase: DeclBase{pos, name, attr, typ, parent, Forward}}
}

// BuildGlobal attaches value as the global's initializer and completes it.
// Calling it twice, or on an already-complete global, is a contract
// violation (§4.1 "a completed declaration may never revert").
func BuildGlobal(g *Global, value Expr) {
	if g.St == Complete {
		contractViolation("global %q already completed", g.Nam)
	}
	g.Value = value
	g.St = Complete
}

// CompleteImportedGlobal finalises a global with no local initializer,
// per §3 invariant 5 (an import-linkage global carries no value payload).
func CompleteImportedGlobal(g *Global) {
	if g.St == Complete {
		contractViolation("global %q already completed", g.Nam)
	}
	g.St = Complete
}

func (*Global) Kind() DeclKind { return DeclGlobal }

// --- Local / Param ----------------------------------------------------------

// Local is a function-local variable. Locals are append-only: once a
// function is opened, locals may be appended by AppendLocal until the
// function is completed.
type Local struct {
	DeclBase
}

func (*Local) Kind() DeclKind { return DeclLocal }

// NewLocal constructs a local declaration. It is always "complete" on
// construction since it carries no body of its own; completeness here
// tracks only whether it has been registered into its owning function.
func NewLocal(pos Pos, name string, typ Type, parent Decl) *Local {
	return &Local{DeclBase{pos, name, Attrib{}, typ, parent, Complete}}
}

// Param is a function parameter.
type Param struct {
	DeclBase
	Index int
}

func (*Param) Kind() DeclKind { return DeclParam }

// NewParam constructs a parameter declaration at the given index within
// its owning function's parameter list.
func NewParam(pos Pos, name string, typ Type, index int, parent Decl) *Param {
	return &Param{DeclBase{pos, name, Attrib{}, typ, parent, Complete}, index}
}

// --- Function ---------------------------------------------------------------

// Function is a module-level function declaration.
type Function struct {
	DeclBase
	Params []*Param
	Locals []*Local
	Body   Stmt // nil for imported functions, or before BuildFunction
}

// OpenFunction forward-declares a function with its already-resolved
// closure type and parameter list, returning a mutable handle.
func OpenFunction(pos Pos, name string, attr Attrib, closureType Type, params []*Param, parent Decl) *Function {
	return &Function{
		DeclBase: DeclBase{pos, name, attr, closureType, parent, Forward},
		Params:   params,
	}
}

// AppendLocal appends a local to a function that has not yet been
// completed (§4.1 mutation rule (b): "appending locals to a function").
func AppendLocal(f *Function, l *Local) {
	if f.St == Complete {
		contractViolation("function %q already completed, cannot append local %q", f.Nam, l.Nam)
	}
	f.Locals = append(f.Locals, l)
}

// BuildFunction attaches body and completes the function.
func BuildFunction(f *Function, body Stmt) {
	if f.St == Complete {
		contractViolation("function %q already completed", f.Nam)
	}
	f.Body = body
	f.St = Complete
}

// CompleteImportedFunction finalises a function with no body (§3
// invariant 5 analogue for functions: import-linkage carries no blocks).
func CompleteImportedFunction(f *Function) {
	if f.St == Complete {
		contractViolation("function %q already completed", f.Nam)
	}
	f.St = Complete
}

func (*Function) Kind() DeclKind { return DeclFunction }

// attribuable is implemented by the declarations SetAttribs can update
// (§4.1 mutation rule (c)): *Function and *Global.
type attribuable interface {
	setAttribs(Attrib)
}

func (f *Function) setAttribs(a Attrib) { f.Attr = a }
func (g *Global) setAttribs(a Attrib)   { g.Attr = a }

// SetAttribs applies attribute mutation rule (c): it may be called at any
// point, forward or complete, since attributes (linkage/visibility/link
// name) are metadata rather than the declaration's body.
func SetAttribs(d Decl, a Attrib) {
	if settable, ok := d.(attribuable); ok {
		settable.setAttribs(a)
		return
	}
	contractViolation("%s %q does not support attribute mutation", d.Kind(), d.Name())
}

// --- Struct / Union -----------------------------------------------------

// StructDecl is a named struct type declaration.
type StructDecl struct {
	DeclBase
	Fields []Field
}

func (*StructDecl) Kind() DeclKind { return DeclStruct }

// OpenStruct forward-declares a struct (fields unknown yet, e.g. during
// mutual recursion through pointers).
func OpenStruct(pos Pos, name string, parent Decl) *StructDecl {
	d := &StructDecl{DeclBase: DeclBase{pos, name, Attrib{}, nil, parent, Forward}}
	d.Typ = Struct(name, nil, d)
	return d
}

// BuildStruct attaches fields and completes the declaration.
func BuildStruct(d *StructDecl, fields []Field) {
	if d.St == Complete {
		contractViolation("struct %q already completed", d.Nam)
	}
	d.Fields = fields
	d.Typ = Struct(d.Nam, fields, d)
	d.St = Complete
}

// UnionDecl is a named union type declaration.
type UnionDecl struct {
	DeclBase
	Fields []Field
}

func (*UnionDecl) Kind() DeclKind { return DeclUnion }

func OpenUnion(pos Pos, name string, parent Decl) *UnionDecl {
	d := &UnionDecl{DeclBase: DeclBase{pos, name, Attrib{}, nil, parent, Forward}}
	d.Typ = Union(name, nil, d)
	return d
}

func BuildUnion(d *UnionDecl, fields []Field) {
	if d.St == Complete {
		contractViolation("union %q already completed", d.Nam)
	}
	d.Fields = fields
	d.Typ = Union(d.Nam, fields, d)
	d.St = Complete
}

// --- Alias ---------------------------------------------------------------

// Alias is a type alias declaration. Its Type() is Target itself, so a
// type read through an alias is already the target type; FollowType and
// RealType strip only Qualify wrappers and have no Alias case.
type Alias struct {
	DeclBase
	Target Type
}

func (*Alias) Kind() DeclKind { return DeclAlias }

// NewAlias constructs a completed alias declaration (aliases have no
// forward form: their target must be known at construction).
func NewAlias(pos Pos, name string, target Type, parent Decl) *Alias {
	return &Alias{DeclBase{pos, name, Attrib{}, target, parent, Complete}, target}
}

// --- Module ---------------------------------------------------------------

// Module owns three tag-indexed sub-maps (values, procs, types) per §3.
type Module struct {
	DeclBase
	Path   []string
	Values map[string]Decl
	Procs  map[string]Decl
	Types  map[string]Decl
}

func (*Module) Kind() DeclKind { return DeclModule }

// NewModule constructs an empty module declaration for the given dotted
// path (e.g. []string{"pl0", "lang"}).
func NewModule(pos Pos, path []string) *Module {
	name := ""
	if len(path) > 0 {
		name = path[len(path)-1]
	}
	return &Module{
		DeclBase: DeclBase{pos, name, Attrib{}, Unit(), nil, Complete},
		Path:     path,
		Values:   make(map[string]Decl),
		Procs:    make(map[string]Decl),
		Types:    make(map[string]Decl),
	}
}
