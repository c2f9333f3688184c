package llvm

import (
	"braid/internal/diag"
	"braid/internal/ir"
	"braid/internal/types"

	"tinygo.org/x/go-llvm"
)

// lowerType maps a source type to its LLVM lowering:
//
//	Int          -> i32
//	Float        -> double
//	Fun(ps, r)   -> <{ (lower(ps)..., i8*) -> lower(r) *, i8* }>
//	Code(inner)  -> <{ (i8*) -> lower(inner) *, i8* }>
//
// Fun and Code lower to the same packed closure shape; both are callable
// through unpackClosure. node identifies the offender in errors.
func (e *Emitter) lowerType(t *types.Type, node ir.NodeID) (llvm.Type, error) {
	if t == nil {
		return llvm.Type{}, diag.Errorf(diag.CgenBadInput, node, "missing type")
	}
	switch t.Kind {
	case types.KindInt:
		return e.ctx.Int32Type(), nil
	case types.KindFloat:
		return e.ctx.DoubleType(), nil
	case types.KindFun:
		fnTy, err := e.funType(t, node)
		if err != nil {
			return llvm.Type{}, err
		}
		return e.closureType(fnTy), nil
	case types.KindCode:
		fnTy, err := e.codeFnType(t, node)
		if err != nil {
			return llvm.Type{}, err
		}
		return e.closureType(fnTy), nil
	default:
		return llvm.Type{}, diag.Errorf(diag.CgenUnsupportedType, node, "cannot lower %s", t)
	}
}

// funType builds the LLVM function type behind a Fun closure: the user
// parameters followed by the i8* environment, returning the lowered result.
func (e *Emitter) funType(t *types.Type, node ir.NodeID) (llvm.Type, error) {
	params := make([]llvm.Type, 0, len(t.Params)+1)
	for _, p := range t.Params {
		lowered, err := e.lowerType(p, node)
		if err != nil {
			return llvm.Type{}, err
		}
		params = append(params, lowered)
	}
	params = append(params, e.i8Ptr())
	ret, err := e.lowerType(t.Ret, node)
	if err != nil {
		return llvm.Type{}, err
	}
	return llvm.FunctionType(ret, params, false), nil
}

// codeFnType builds the LLVM function type behind a Code closure: the i8*
// environment alone, returning the lowered inner type.
func (e *Emitter) codeFnType(t *types.Type, node ir.NodeID) (llvm.Type, error) {
	ret, err := e.lowerType(t.Inner, node)
	if err != nil {
		return llvm.Type{}, err
	}
	return llvm.FunctionType(ret, []llvm.Type{e.i8Ptr()}, false), nil
}

// closureType is the uniform callable value: a packed pair of function
// pointer and opaque environment pointer.
func (e *Emitter) closureType(fnTy llvm.Type) llvm.Type {
	return e.ctx.StructType([]llvm.Type{llvm.PointerType(fnTy, 0), e.i8Ptr()}, true)
}

func (e *Emitter) i8Ptr() llvm.Type {
	return llvm.PointerType(e.ctx.Int8Type(), 0)
}
