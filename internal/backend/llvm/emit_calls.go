package llvm

import (
	"braid/internal/diag"
	"braid/internal/ir"
	"braid/internal/types"

	"tinygo.org/x/go-llvm"
)

// emitCall compiles f(a1, ..., an): the callee yields a closure, which is
// unpacked into (fn, env) and called as fn(a1, ..., an, env). A callee
// that resolves to an extern runtime symbol short-circuits to its wrapper
// with a null environment; the call shape stays identical.
func (e *Emitter) emitCall(n *ir.Node) (llvm.Value, error) {
	if n.Callee == nil {
		return llvm.Value{}, diag.Errorf(diag.CgenBadInput, n.ID, "call without callee")
	}
	if n.Callee.Kind == ir.ExprLookup {
		if sym, ok := e.in.ExternOf(e.in.DefOf(n.Callee.ID)); ok {
			return e.emitExternCall(n, sym)
		}
	}

	calleeTy, err := e.typeOf(n.Callee.ID)
	if err != nil {
		return llvm.Value{}, err
	}
	if calleeTy.Kind != types.KindFun {
		return llvm.Value{}, diag.Errorf(diag.CgenBadInput, n.ID, "callee typed %s", calleeTy)
	}
	fnTy, err := e.funType(calleeTy, n.Callee.ID)
	if err != nil {
		return llvm.Value{}, err
	}
	closTy, err := e.lowerType(calleeTy, n.Callee.ID)
	if err != nil {
		return llvm.Value{}, err
	}

	clos, err := e.emitExpr(n.Callee)
	if err != nil {
		return llvm.Value{}, err
	}
	fn, env := e.unpackClosure(clos, closTy, fnTy)

	args := make([]llvm.Value, 0, len(n.Args)+1)
	for _, arg := range n.Args {
		v, err := e.emitExpr(arg)
		if err != nil {
			return llvm.Value{}, err
		}
		args = append(args, v)
	}
	args = append(args, env)
	return e.builder.CreateCall(fnTy, fn, args, ""), nil
}

func (e *Emitter) emitExternCall(n *ir.Node, sym string) (llvm.Value, error) {
	wrap, wrapTy, err := e.wrapper(sym, n.ID)
	if err != nil {
		return llvm.Value{}, err
	}
	args := make([]llvm.Value, 0, len(n.Args)+1)
	for _, arg := range n.Args {
		v, err := e.emitExpr(arg)
		if err != nil {
			return llvm.Value{}, err
		}
		args = append(args, v)
	}
	args = append(args, llvm.ConstNull(e.i8Ptr()))
	return e.builder.CreateCall(wrapTy, wrap, args, ""), nil
}

// emitRun compiles !e: unpack the Code closure and call fn(env).
func (e *Emitter) emitRun(n *ir.Node) (llvm.Value, error) {
	codeTy, err := e.typeOf(n.Expr.ID)
	if err != nil {
		return llvm.Value{}, err
	}
	if codeTy.Kind != types.KindCode {
		return llvm.Value{}, diag.Errorf(diag.CgenBadInput, n.ID, "run operand typed %s", codeTy)
	}
	fnTy, err := e.codeFnType(codeTy, n.Expr.ID)
	if err != nil {
		return llvm.Value{}, err
	}
	closTy, err := e.lowerType(codeTy, n.Expr.ID)
	if err != nil {
		return llvm.Value{}, err
	}
	clos, err := e.emitExpr(n.Expr)
	if err != nil {
		return llvm.Value{}, err
	}
	fn, env := e.unpackClosure(clos, closTy, fnTy)
	return e.builder.CreateCall(fnTy, fn, []llvm.Value{env}, ""), nil
}
