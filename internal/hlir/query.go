package hlir

// ClosureParams returns the parameter types of a closure type, or nil if
// t does not resolve (via FollowType) to a ClosureType.
func ClosureParams(t Type) []Type {
	if c, ok := FollowType(t).(ClosureType); ok {
		return c.Params
	}
	return nil
}

// ClosureVariadic reports whether a closure type accepts extra trailing
// arguments beyond its declared parameters.
func ClosureVariadic(t Type) bool {
	c, ok := FollowType(t).(ClosureType)
	return ok && c.Variadic
}

// ClosureResult returns the result type of a closure type, or Empty if t
// is not a closure.
func ClosureResult(t Type) Type {
	if c, ok := FollowType(t).(ClosureType); ok {
		return c.Result
	}
	return Empty()
}

// IsImported reports whether decl's attributes mark it as defined
// elsewhere (§4.1).
func IsImported(d Decl) bool {
	return d.Attribs().IsImported()
}
