// Package diag defines the diagnostic model shared by the backend and the
// driver: severities, stable numeric codes, the Error type codegen aborts
// with, and a Bag for collecting results across builds. Rendering lives in
// internal/diagfmt; this package does no formatting or IO.
package diag

import (
	"fmt"

	"braid/internal/ir"
)

// Diagnostic is one reportable finding. Codegen diagnostics carry the id
// of the offending IR node instead of a source span; the front end owns
// source positions and the IR is assumed well-typed.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Node     ir.NodeID
}

// Error is the failure value of a codegen pass. Errors are fatal to the
// invocation; the partially built module is discarded by the caller.
type Error struct {
	Code    Code
	Node    ir.NodeID
	Message string
}

func (e *Error) Error() string {
	if e.Node == ir.NoNodeID {
		return fmt.Sprintf("%s %s: %s", e.Code.ID(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s %s: %s (node %d)", e.Code.ID(), e.Code, e.Message, e.Node)
}

// Errorf builds an Error for the given code and node.
func Errorf(code Code, node ir.NodeID, format string, args ...any) *Error {
	return &Error{Code: code, Node: node, Message: fmt.Sprintf(format, args...)}
}

// Diagnostic converts the error into a reportable record.
func (e *Error) Diagnostic() Diagnostic {
	return Diagnostic{Severity: SevError, Code: e.Code, Message: e.Message, Node: e.Node}
}
