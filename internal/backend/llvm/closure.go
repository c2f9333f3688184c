package llvm

import (
	"braid/internal/diag"
	"braid/internal/ir"

	"tinygo.org/x/go-llvm"
)

// envStructType computes the packed environment layout for a scope's
// captured ids, in the order the scope declares them.
func (e *Emitter) envStructType(envIDs []ir.NodeID) (llvm.Type, error) {
	fields := make([]llvm.Type, 0, len(envIDs))
	for _, id := range envIDs {
		t, err := e.typeOf(id)
		if err != nil {
			return llvm.Type{}, err
		}
		lowered, err := e.lowerType(t, id)
		if err != nil {
			return llvm.Type{}, err
		}
		fields = append(fields, lowered)
	}
	return e.ctx.StructType(fields, true), nil
}

// packClosure builds a closure value over fn: the captured variables are
// loaded from their allocas into a fresh environment struct on the current
// stack frame, and paired with the function pointer. closTy is the lowered
// Fun/Code type of the referencing node.
func (e *Emitter) packClosure(fn llvm.Value, envIDs []ir.NodeID, closTy llvm.Type, node ir.NodeID) (llvm.Value, error) {
	envTy, err := e.envStructType(envIDs)
	if err != nil {
		return llvm.Value{}, err
	}
	env := llvm.Undef(envTy)
	for i, id := range envIDs {
		slot, ok := e.named[id]
		if !ok {
			return llvm.Value{}, diag.Errorf(diag.CgenUnknownVariable, node, "captured variable %s has no slot", e.allocaName(id))
		}
		t, err := e.typeOf(id)
		if err != nil {
			return llvm.Value{}, err
		}
		lowered, err := e.lowerType(t, id)
		if err != nil {
			return llvm.Value{}, err
		}
		v := e.builder.CreateLoad(lowered, slot, e.allocaName(id))
		env = e.builder.CreateInsertValue(env, v, i, "")
	}

	envSlot := e.builder.CreateAlloca(envTy, "env")
	e.builder.CreateStore(env, envSlot)
	envPtr := e.builder.CreateBitCast(envSlot, e.i8Ptr(), "env_ptr")

	clos := llvm.Undef(closTy)
	clos = e.builder.CreateInsertValue(clos, fn, 0, "")
	clos = e.builder.CreateInsertValue(clos, envPtr, 1, "")
	return clos, nil
}

// unpackClosure splits a closure value into its function and environment
// pointers. The value is spilled to a slot and read back through GEPs so
// the aggregate never needs to stay addressable across blocks; mem2reg
// folds the slot away.
func (e *Emitter) unpackClosure(clos llvm.Value, closTy, fnTy llvm.Type) (fn, env llvm.Value) {
	slot := e.builder.CreateAlloca(closTy, "clos")
	e.builder.CreateStore(clos, slot)
	fnAddr := e.builder.CreateStructGEP(closTy, slot, 0, "fn_addr")
	fn = e.builder.CreateLoad(llvm.PointerType(fnTy, 0), fnAddr, "fn")
	envAddr := e.builder.CreateStructGEP(closTy, slot, 1, "env_addr")
	env = e.builder.CreateLoad(e.i8Ptr(), envAddr, "env")
	return fn, env
}
