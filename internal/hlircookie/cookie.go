// Package hlircookie implements the HLIR module/scope cookie: per-module
// tag-indexed symbol tables with a shadow-detecting Set and a
// scope-chain-walking Get, plus the close_function completion protocol
// (§4.2).
package hlircookie

import (
	"fmt"

	"github.com/cthulhu-go/cthulhu/internal/diagnostics"
	"github.com/cthulhu-go/cthulhu/internal/hlir"
)

// Tag selects which of a Cookie's three independent maps a name belongs
// to: value bindings (globals/locals/params), procedures (functions), or
// types (struct/union/alias declarations).
type Tag int

const (
	TagValue Tag = iota
	TagProc
	TagType
)

func (t Tag) String() string {
	switch t {
	case TagValue:
		return "value"
	case TagProc:
		return "proc"
	case TagType:
		return "type"
	default:
		return "tag?"
	}
}

// Cookie is the scope for one HLIR module (or nested block scope): three
// independent name->decl maps, plus an optional enclosing scope to walk
// on a local miss.
type Cookie struct {
	parent *Cookie
	values map[string]hlir.Decl
	procs  map[string]hlir.Decl
	types  map[string]hlir.Decl
}

// New creates a root cookie with no enclosing scope (typically one per
// module).
func New() *Cookie {
	return &Cookie{
		values: make(map[string]hlir.Decl),
		procs:  make(map[string]hlir.Decl),
		types:  make(map[string]hlir.Decl),
	}
}

// Nested creates a child cookie whose Get falls back to parent on a local
// miss (used for block-scoped locals inside a function body).
func Nested(parent *Cookie) *Cookie {
	c := New()
	c.parent = parent
	return c
}

func (c *Cookie) mapFor(tag Tag) map[string]hlir.Decl {
	switch tag {
	case TagValue:
		return c.values
	case TagProc:
		return c.procs
	case TagType:
		return c.types
	default:
		panic(fmt.Sprintf("hlircookie: unknown tag %v", tag))
	}
}

// Set binds name to decl under tag in the local scope. A conflicting
// re-definition (a different decl already owns the name) fails with a
// *shadow* diagnostic; re-setting the identical decl is idempotent (§4.2).
func Set(c *Cookie, tag Tag, name string, decl hlir.Decl) (diagnostics.Report, bool) {
	m := c.mapFor(tag)
	if existing, ok := m[name]; ok {
		if existing == decl {
			return diagnostics.Report{}, false
		}
		report := diagnostics.New(diagnostics.HLIR001, "hlircookie", diagnostics.Fatal,
			fmt.Sprintf("%s %q is already defined in this scope", tag, name))
		return report, true
	}
	m[name] = decl
	return diagnostics.Report{}, false
}

// Get walks the enclosing scope chain when no local binding exists,
// returning (decl, true) on success (§4.2).
func Get(c *Cookie, tag Tag, name string) (hlir.Decl, bool) {
	for scope := c; scope != nil; scope = scope.parent {
		if decl, ok := scope.mapFor(tag)[name]; ok {
			return decl, true
		}
	}
	return nil, false
}

// CloseFunction finalises a function: if body does not already end in a
// terminating statement (Return, or a Block whose last statement is a
// terminator), an implicit `return unit` is appended before the function
// is completed (§4.2).
func CloseFunction(f *hlir.Function, body hlir.Stmt) {
	body = ensureTerminated(body)
	hlir.BuildFunction(f, body)
}

// ensureTerminated appends an implicit unit return to body if it does not
// already end in one.
func ensureTerminated(body hlir.Stmt) hlir.Stmt {
	if isTerminated(body) {
		return body
	}
	block, ok := body.(*hlir.Block)
	if !ok {
		return hlir.NewBlock(body.Pos(), []hlir.Stmt{body, hlir.NewReturn(body.Pos(), nil)})
	}
	block.Stmts = append(block.Stmts, hlir.NewReturn(block.Pos(), nil))
	return block
}

// isTerminated reports whether stmt already ends in a Return (directly,
// or as the last statement of a Block).
func isTerminated(stmt hlir.Stmt) bool {
	switch s := stmt.(type) {
	case *hlir.Return:
		return true
	case *hlir.Block:
		if len(s.Stmts) == 0 {
			return false
		}
		return isTerminated(s.Stmts[len(s.Stmts)-1])
	default:
		return false
	}
}
