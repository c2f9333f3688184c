package llvm

import (
	"braid/internal/diag"
	"braid/internal/ir"
)

// resolveScope picks the definition to materialize for a scope id: the
// active variant overrides the generic IR, Procs shadow Progs. Exactly one
// of the returned pointers is non-nil on success.
//
// Resolution affects which body is emitted and, for quote/fun references,
// which environment ids are packed; symbol names stay fixed by id and
// never depend on the variant.
func (e *Emitter) resolveScope(id ir.ScopeID) (*ir.Proc, *ir.Prog, error) {
	if e.variant != nil {
		if p, ok := e.variant.Procs[id]; ok {
			return p, nil, nil
		}
	}
	if p, ok := e.in.Procs[id]; ok {
		return p, nil, nil
	}
	if e.variant != nil {
		if g, ok := e.variant.Progs[id]; ok {
			return nil, g, nil
		}
	}
	if g, ok := e.in.Progs[id]; ok {
		return nil, g, nil
	}
	return nil, nil, diag.Errorf(diag.CgenUnknownScope, ir.NoNodeID, "scope %d not found in variant or base IR", id)
}
