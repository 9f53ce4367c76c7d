package hlir

import "github.com/cthulhu-go/cthulhu/internal/ops"

// Attrib is the attribute record every declaration carries: its linkage,
// visibility, and an optional external link-name override used verbatim by
// mangle (§4.3 "if the symbol carries an explicit external link name, use
// it verbatim").
type Attrib struct {
	Linkage      ops.Linkage
	Visibility   ops.Visibility
	ExternalName string // empty means "no override"
}

// HasExternalName reports whether an explicit external link name was set.
func (a Attrib) HasExternalName() bool {
	return a.ExternalName != ""
}

// IsImported reports whether this attribute set marks a declaration as
// defined elsewhere (§4.1 "is_imported").
func (a Attrib) IsImported() bool {
	return a.Linkage == ops.Import
}
