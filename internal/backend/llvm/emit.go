// Package llvm lowers Braid's typed IR into an LLVM module: a closure
// conversion ABI over Procs, Progs, and extern runtime functions, one
// top-level LLVM function per scope.
package llvm

import (
	"fmt"

	"braid/internal/diag"
	"braid/internal/ir"
	"braid/internal/types"

	"tinygo.org/x/go-llvm"
)

// Emitter holds the mutable state of one codegen run. It owns exactly one
// live builder at any time; scope entry swaps the builder and the
// named-value map via pushScope, and scopeFrame.restore reinstates both.
type Emitter struct {
	ctx     llvm.Context
	mod     llvm.Module
	builder llvm.Builder

	// named maps definition ids to the alloca holding that variable's
	// storage in the scope currently being emitted.
	named map[ir.NodeID]llvm.Value

	// variant is the active specialization overlay, fixed at
	// construction. May be nil.
	variant *ir.Variant

	in *ir.CompilerIR

	// wrapperTys records the LLVM function type of each runtime wrapper,
	// keyed by the bare extern name.
	wrapperTys  map[string]llvm.Type
	preludeDone bool
}

func newEmitter(ctx llvm.Context, mod llvm.Module, in *ir.CompilerIR, variant *ir.Variant) *Emitter {
	return &Emitter{
		ctx:        ctx,
		mod:        mod,
		builder:    ctx.NewBuilder(),
		named:      make(map[ir.NodeID]llvm.Value),
		variant:    variant,
		in:         in,
		wrapperTys: make(map[string]llvm.Type),
	}
}

// dispose releases the top-level builder.
func (e *Emitter) dispose() {
	e.builder.Dispose()
}

// scopeFrame captures the builder and named-value map of the enclosing
// scope. restore runs on every exit path; failing to reinstate either
// corrupts all subsequent emission.
type scopeFrame struct {
	e       *Emitter
	builder llvm.Builder
	named   map[ir.NodeID]llvm.Value
}

func (e *Emitter) pushScope() *scopeFrame {
	f := &scopeFrame{e: e, builder: e.builder, named: e.named}
	e.builder = e.ctx.NewBuilder()
	e.named = make(map[ir.NodeID]llvm.Value)
	return f
}

func (f *scopeFrame) restore() {
	f.e.builder.Dispose()
	f.e.builder = f.builder
	f.e.named = f.named
}

func (e *Emitter) typeOf(id ir.NodeID) (*types.Type, error) {
	if t := e.in.TypeOf(id); t != nil {
		return t, nil
	}
	return nil, diag.Errorf(diag.CgenBadInput, id, "node missing from type table")
}

// allocaName labels a variable slot with its source name where known.
func (e *Emitter) allocaName(def ir.NodeID) string {
	if name := e.in.NameOf(def); name != "" {
		return name
	}
	return fmt.Sprintf("v%d", def)
}
