package hlir

// ErrorExpr participates wherever an Expr is expected; it poisons further
// checks rather than aborting construction, so callers should propagate it
// instead of rejecting it (§4.1 "Error HLIR").
type ErrorExpr struct {
	ExprBase
	Message string
}

func (e *ErrorExpr) exprNode()    {}
func (e *ErrorExpr) Kind() ExprKind { return ExprError }

// Error constructs a poison expression carrying a diagnostic message. Its
// type is Empty, so a type-equality check against any non-Empty type fails.
func Error(pos Pos, message string) Expr {
	return &ErrorExpr{ExprBase{NodePos: pos, Typ: Empty()}, message}
}

// IsError reports whether e is an error poison node.
func IsError(e Expr) bool {
	_, ok := e.(*ErrorExpr)
	return ok
}
