package ir

import "fmt"

// ScopeID identifies a Proc or Prog. Proc and Prog ids share one namespace:
// resolution checks procs first, then progs.
type ScopeID int32

// NoScopeID marks the module entry Proc, which has no id and is always
// emitted under the symbol "main".
const NoScopeID ScopeID = -1

// Scope is the structure shared by Procs and Progs.
type Scope struct {
	ID ScopeID `msgpack:"id"`

	// Body is the expression the emitted function evaluates and returns.
	Body *Node `msgpack:"body"`

	// Free lists ids captured from enclosing scopes, in environment order.
	Free []NodeID `msgpack:"free,omitempty"`

	// Bound lists ids of local variables introduced inside this scope.
	Bound []NodeID `msgpack:"bound,omitempty"`

	// Persist lists cross-stage persisted values. Recognized but must be
	// empty; a non-empty list aborts code generation.
	Persist []NodeID `msgpack:"persist,omitempty"`

	// Children lists nested scope ids emitted before this scope's body.
	Children []ScopeID `msgpack:"children,omitempty"`
}

// Proc is a first-class function of the source language.
type Proc struct {
	Scope  `msgpack:",inline"`
	Params []NodeID `msgpack:"params,omitempty"`
}

// Prog is a quoted block of code, compiled as a zero-argument closure.
type Prog struct {
	Scope `msgpack:",inline"`

	// OwnedPersist lists persisted values this quote owns. They precede
	// Free in the quote's environment struct.
	OwnedPersist []NodeID `msgpack:"owned_persist,omitempty"`
}

// EnvIDs returns the ids packed into a Proc's environment, in field order.
func (p *Proc) EnvIDs() []NodeID {
	return p.Free
}

// EnvIDs returns the ids packed into a Prog's environment: owned persists
// first, then free variables.
func (g *Prog) EnvIDs() []NodeID {
	ids := make([]NodeID, 0, len(g.OwnedPersist)+len(g.Free))
	ids = append(ids, g.OwnedPersist...)
	ids = append(ids, g.Free...)
	return ids
}

// SymbolName returns the deterministic module-level symbol for a scope id:
// procN/progN, or "main" for the entry Proc.
func SymbolName(id ScopeID, prog bool) string {
	if id == NoScopeID {
		return "main"
	}
	if prog {
		return fmt.Sprintf("prog%d", id)
	}
	return fmt.Sprintf("proc%d", id)
}

// Variant is an overlay of specialized Proc/Prog definitions. At most one
// variant is consulted during a codegen run; it overrides scope resolution
// but never symbol naming.
type Variant struct {
	Name  string            `msgpack:"name,omitempty"`
	Procs map[ScopeID]*Proc `msgpack:"procs,omitempty"`
	Progs map[ScopeID]*Prog `msgpack:"progs,omitempty"`
}
