package llvm

import (
	"braid/internal/diag"
	"braid/internal/ir"

	"tinygo.org/x/go-llvm"
)

// emitScope materializes the LLVM function for a scope id, resolving the
// definition through the active variant. Idempotent: an already-emitted
// symbol is returned as is.
func (e *Emitter) emitScope(id ir.ScopeID) (llvm.Value, error) {
	proc, prog, err := e.resolveScope(id)
	if err != nil {
		return llvm.Value{}, err
	}
	if proc != nil {
		return e.emitProc(proc, ir.SymbolName(id, false))
	}
	return e.emitProg(prog, ir.SymbolName(id, true))
}

func (e *Emitter) emitProc(p *ir.Proc, name string) (llvm.Value, error) {
	return e.emitFunction(&p.Scope, p.Params, p.EnvIDs(), name)
}

func (e *Emitter) emitProg(g *ir.Prog, name string) (llvm.Value, error) {
	return e.emitFunction(&g.Scope, nil, g.EnvIDs(), name)
}

// emitFunction compiles one scope into a top-level function
// (lower(params)..., i8* env) -> lower(body). Child scopes are emitted
// first, so quote/fun nodes in the body find their targets in the module.
func (e *Emitter) emitFunction(s *ir.Scope, params, envIDs []ir.NodeID, name string) (llvm.Value, error) {
	if existing := e.mod.NamedFunction(name); !existing.IsNil() {
		return existing, nil
	}
	if len(s.Persist) > 0 {
		return llvm.Value{}, diag.Errorf(diag.CgenNotImplemented, ir.NoNodeID, "cross-stage persist in scope %s", name)
	}
	for _, child := range s.Children {
		if _, err := e.emitScope(child); err != nil {
			return llvm.Value{}, err
		}
	}

	paramTys := make([]llvm.Type, 0, len(params)+1)
	for _, pid := range params {
		t, err := e.typeOf(pid)
		if err != nil {
			return llvm.Value{}, err
		}
		lowered, err := e.lowerType(t, pid)
		if err != nil {
			return llvm.Value{}, err
		}
		paramTys = append(paramTys, lowered)
	}
	paramTys = append(paramTys, e.i8Ptr())

	bodyTy, err := e.typeOf(s.Body.ID)
	if err != nil {
		return llvm.Value{}, err
	}
	retTy, err := e.lowerType(bodyTy, s.Body.ID)
	if err != nil {
		return llvm.Value{}, err
	}

	fnTy := llvm.FunctionType(retTy, paramTys, false)
	fn := llvm.AddFunction(e.mod, name, fnTy)
	entry := e.ctx.AddBasicBlock(fn, "entry")

	frame := e.pushScope()
	defer frame.restore()
	e.builder.SetInsertPointAtEnd(entry)

	// User parameters: spill each into a stack slot so later assigns and
	// closure packing see one storage location per variable.
	for i, pid := range params {
		label := e.allocaName(pid)
		fn.Param(i).SetName(label)
		slot := e.builder.CreateAlloca(paramTys[i], label)
		e.builder.CreateStore(fn.Param(i), slot)
		e.named[pid] = slot
	}

	// Captured variables: copy each environment field into a local slot.
	envParam := fn.Param(len(params))
	envParam.SetName("env")
	if len(envIDs) > 0 {
		envTy, err := e.envStructType(envIDs)
		if err != nil {
			return llvm.Value{}, err
		}
		envPtr := e.builder.CreateBitCast(envParam, llvm.PointerType(envTy, 0), "env_frame")
		for i, fid := range envIDs {
			t, err := e.typeOf(fid)
			if err != nil {
				return llvm.Value{}, err
			}
			lowered, err := e.lowerType(t, fid)
			if err != nil {
				return llvm.Value{}, err
			}
			label := e.allocaName(fid)
			slot := e.builder.CreateAlloca(lowered, label)
			fieldAddr := e.builder.CreateStructGEP(envTy, envPtr, i, label+"_addr")
			field := e.builder.CreateLoad(lowered, fieldAddr, label+"_cap")
			e.builder.CreateStore(field, slot)
			e.named[fid] = slot
		}
	}

	// Locals: slot only, stores come from let/assign.
	for _, bid := range s.Bound {
		t, err := e.typeOf(bid)
		if err != nil {
			return llvm.Value{}, err
		}
		lowered, err := e.lowerType(t, bid)
		if err != nil {
			return llvm.Value{}, err
		}
		e.named[bid] = e.builder.CreateAlloca(lowered, e.allocaName(bid))
	}

	body, err := e.emitExpr(s.Body)
	if err != nil {
		return llvm.Value{}, err
	}
	e.builder.CreateRet(body)
	return fn, nil
}
