// Package diagnostics provides the structured reporting sink threaded
// through the compiler pipeline: construction, lowering, folding, and
// emission all push Report values rather than formatting text themselves.
package diagnostics

// Error code constants, organised by owning phase. A specific code is a
// stable, greppable handle on one error condition; the Message on a Report
// carries the human-readable detail.
const (
	// ============================================================================
	// HLIR construction errors
	// ============================================================================

	// HLIR001 indicates a name was defined twice in the same scope (shadow).
	HLIR001 = "HLIR001"

	// HLIR002 indicates a name reference has no binding (unresolved).
	HLIR002 = "HLIR002"

	// HLIR003 indicates a construction contract was violated: wrong operand
	// type, wrong arity, or assignment to a non-mutable place.
	HLIR003 = "HLIR003"

	// HLIR004 indicates a forward declaration was finalised with a kind
	// that does not match its opened kind.
	HLIR004 = "HLIR004"

	// ============================================================================
	// SSA builder / invariant errors
	// ============================================================================

	// SSA001 indicates an internal invariant broke: unexpected HLIR kind,
	// missing type, or a malformed operand. ssaopt also reports it, at Fatal
	// severity, for a global initializer that never folds to a constant.
	SSA001 = "SSA001"

	// SSA002 indicates an attempt to mangle a symbol whose parameter types
	// are not fully resolved.
	SSA002 = "SSA002"

	// ============================================================================
	// Constant-folding errors
	// ============================================================================

	// FOLD001 indicates a division or remainder by the immediate zero.
	FOLD001 = "FOLD001"

	// FOLD002 indicates a folded value overflowed its digit's declared
	// width under a narrow (non-mpz) folding policy.
	FOLD002 = "FOLD002"

	// ============================================================================
	// Emitter errors
	// ============================================================================

	// EMIT001 indicates a filesystem write failed during emission.
	EMIT001 = "EMIT001"
)
